package train

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/gorgonia/cellnet/builder"
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/engine"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	G "gorgonia.org/gorgonia"
)

type generator interface {
	Generate() (*engine.Network, error)
}

func mustNet(t *testing.T, g generator) *engine.Network {
	net, err := g.Generate()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return net
}

func xorNet(t *testing.T) *engine.Network {
	m := builder.NewMLP(builder.DefaultConfig())
	m.InputLayer(2)
	m.HiddenLayer(4, cell.TanhCell, 1)
	m.OutputLayer(1, cell.SigmoidCell, 1)
	return mustNet(t, m)
}

func xorSet() SampleSet {
	return SampleSet{
		NewSample([]float64{0, 0}, []float64{0}),
		NewSample([]float64{0, 1}, []float64{1}),
		NewSample([]float64{1, 0}, []float64{1}),
		NewSample([]float64{1, 1}, []float64{0}),
	}
}

func rnnNet(t *testing.T, frames int, offline bool) *engine.Network {
	r := builder.NewRNN(builder.Config{Frames: frames, Offline: offline})
	r.InputLayer(2)
	r.HiddenLayer(3, cell.TanhCell, 1)
	r.OutputLayer(1, cell.LinearCell)
	return mustNet(t, r)
}

func brnnNet(t *testing.T, frames int) *engine.Network {
	b := builder.New(builder.Config{Frames: frames})
	in := builder.InputLayer(b, 1)
	fw := builder.HiddenLayer(b, 2, cell.TanhCell, 1)
	bw := builder.HiddenLayer(b, 2, cell.TanhCell, 1)
	out := builder.OutputLayer(b, 1, cell.LinearCell)
	b.WeightedLinkLayer(in, fw)
	b.WeightedLinkLayer(in, bw)
	b.WeightedLinkLayer(fw, fw)
	b.WeightedLinkLayer(bw, bw)
	b.WeightedLinkLayer(fw, out)
	b.WeightedLinkLayer(bw, out)
	b.DefineLayerAsReversed(bw)
	return mustNet(t, b)
}

func sequence(t *testing.T, in, tgt []float64, inSize, tgtSize int) *Sample {
	s, err := NewSequenceSample(in, tgt, inSize, tgtSize)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return s
}

func TestSample(t *testing.T) {
	assert := assert.New(t)
	s := sequence(t, []float64{1, 2, 3, 4, 5, 6}, []float64{7, 8}, 2, 1)
	assert.Equal(3, s.InputLength())
	assert.Equal(2, s.InputSize())
	assert.Equal(2, s.TargetLength())
	assert.Equal(1, s.TargetSize())

	c := s.Copy()
	c.Inputs()[0] = 100
	assert.Equal(1.0, s.Inputs()[0])

	_, err := NewSequenceSample([]float64{1, 2, 3}, []float64{1}, 2, 1)
	assert.Equal(ErrSampleShape, errors.Cause(err))
	_, err = NewSequenceSample([]float64{1, 2}, nil, 2, 1)
	assert.Equal(ErrSampleShape, errors.Cause(err))
	assert.Panics(func() { NewSample(nil, []float64{1}) })
}

type recorder struct {
	in, tgt []float64
}

func (r *recorder) Input(buf []float64, off int) { r.in = append([]float64(nil), buf[off:off+2]...) }
func (r *recorder) InputSelected(buf []float64, off int, sel []int) {
	r.in = r.in[:0]
	for _, s := range sel {
		r.in = append(r.in, buf[off+s])
	}
}
func (r *recorder) Target(buf []float64, off int) { r.tgt = append([]float64(nil), buf[off:off+1]...) }
func (r *recorder) TargetSelected(buf []float64, off int, sel []int) {
	r.tgt = r.tgt[:0]
	for _, s := range sel {
		r.tgt = append(r.tgt, buf[off+s])
	}
}

func TestSampleMapping(t *testing.T) {
	assert := assert.New(t)
	s := sequence(t, []float64{1, 2, 3, 4, 5, 6}, []float64{7, 8}, 2, 1)
	var r recorder
	s.MapInput(&r, 1)
	assert.Equal([]float64{3, 4}, r.in)
	s.MapInput(&r, 2, 1)
	assert.Equal([]float64{6}, r.in)
	s.MapTarget(&r, 0)
	assert.Equal([]float64{7}, r.tgt)
	s.MapFinalTarget(&r)
	assert.Equal([]float64{8}, r.tgt)
}

func TestSampleSet(t *testing.T) {
	assert := assert.New(t)
	r := rand.New(rand.NewSource(1))
	set := xorSet()
	set = append(set, sequence(t, make([]float64, 10), []float64{1}, 2, 1))
	assert.Equal(5, set.MaxSequenceLength())

	orig := append(SampleSet(nil), set...)
	picked := set.Split(3, r)
	assert.True(len(picked) >= 1 && len(picked) <= 3)
	assert.Equal(len(orig), len(picked)+len(set))
	joined := Join(picked, set)
	assert.ElementsMatch(orig, joined)

	all := append(SampleSet(nil), orig...)
	taken := all.Split(100, r)
	assert.Equal(len(orig), len(taken)+len(all))

	shuffled := append(SampleSet(nil), orig...)
	shuffled.Shuffle(r)
	assert.ElementsMatch(orig, shuffled)

	var empty SampleSet
	assert.Empty(empty.Split(3, r))
	assert.Equal(0, empty.MaxSequenceLength())
}

func TestNormalize(t *testing.T) {
	assert := assert.New(t)
	set := SampleSet{
		NewSample([]float64{1, 10}, []float64{0}),
		NewSample([]float64{3, 10}, []float64{0}),
		sequence(t, []float64{5, 10, 7, 10}, []float64{0}, 2, 1),
	}
	mean := set.Mean()
	assert.InDeltaSlice([]float64{4, 10}, mean, 1e-12)
	sd := set.StdDev(mean)
	assert.InDelta(math.Sqrt(20.0/3), sd[0], 1e-12)
	assert.Equal(0.0, sd[1])

	set.Normalize(0)
	mean = set.Mean()
	assert.InDelta(0, mean[0], 1e-12)
	assert.InDelta(1, set.StdDev(mean)[0], 1e-12)
	assert.Equal(10.0, mean[1])

	// constant features are centered only
	set.Normalize(1)
	for _, s := range set {
		in := s.Inputs()
		for off := 1; off < len(in); off += 2 {
			assert.Equal(0.0, in[off])
		}
	}

	single := SampleSet{NewSample([]float64{2, -1}, []float64{0})}
	mean = single.Mean()
	assert.Equal([]float64{0, 0}, single.StdDev(mean))
	single.Normalize(0, 1)
	assert.Equal([]float64{0, 0}, single[0].Inputs())
}

func TestReadWriteSamples(t *testing.T) {
	assert := assert.New(t)
	input := `# two samples
0 0
0

1 0; 0.5 0.25, 1
1 1`
	set, err := ReadSamples(strings.NewReader(input))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Len(set, 2)
	s := set[1]
	assert.Equal(3, s.InputLength())
	assert.Equal(2, s.InputSize())
	assert.Equal([]float64{1, 0, 0.5, 0.25, 1, 0}, s.Inputs())
	assert.Equal([]float64{1, 1}, s.Targets())

	var buf bytes.Buffer
	if err := WriteSamples(&buf, set); err != nil {
		t.Fatal(err)
	}
	again, err := ReadSamples(&buf)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Len(again, 2)
	for i := range set {
		assert.Equal(set[i].Inputs(), again[i].Inputs())
		assert.Equal(set[i].Targets(), again[i].Targets())
	}

	_, err = ReadSamples(strings.NewReader("1 x\n1\n"))
	assert.Error(err)
}

// checkGradient compares the accumulated weight deltas with the finite differences of PerformForward.
func checkGradient(t *testing.T, net *engine.Network, s *Sample) {
	gd := NewGradientDescent(net, DefaultConfig())
	net.Reset()
	PerformForward(net, s)
	last := net.FrameIdx()
	PerformBackward(net)
	gd.resetDiffs()
	gd.accumulate(last)
	scale := -2 / float64(net.OutputCells()*s.TargetLength())

	w := net.Weights()
	errAt := func() float64 {
		net.Reset()
		return PerformForward(net, s)
	}
	const h = 1e-6
	for i := 1; i < len(w); i++ {
		orig := w[i]
		w[i] = orig + h
		ep := errAt()
		w[i] = orig - h
		em := errAt()
		w[i] = orig
		numeric := (ep - em) / (2 * h)
		if analytic := scale * gd.dw[i]; math.Abs(numeric-analytic) > 1e-6 {
			t.Errorf("%v weight %d: numeric %v, analytic %v", net.Kind(), i, numeric, analytic)
		}
	}
}

func TestGradientOnlineRecurrent(t *testing.T) {
	net := rnnNet(t, 4, false)
	net.InitializeWeights(rand.New(rand.NewSource(11)))
	w := net.Weights()
	for i := 1; i < len(w); i++ {
		w[i] *= 8
	}
	s := sequence(t, []float64{1, 0, 0, 1, -1, 0.5, 0.5, 0.5}, []float64{0.2, -0.4}, 2, 1)
	checkGradient(t, net, s)
}

func TestGradientBidirectional(t *testing.T) {
	net := brnnNet(t, 5)
	assert.Equal(t, engine.Bidirectional, net.Kind())
	net.InitializeWeights(rand.New(rand.NewSource(5)))
	w := net.Weights()
	for i := 1; i < len(w); i++ {
		w[i] *= 8
	}
	s := sequence(t, []float64{1, -0.5, 0.25, 0, 0.75}, []float64{0.1, 0.3, -0.2}, 1, 1)
	checkGradient(t, net, s)
}

func TestPerformForwardRebuffers(t *testing.T) {
	assert := assert.New(t)
	net := rnnNet(t, 1, false)
	s := sequence(t, make([]float64, 12), []float64{0}, 2, 1)
	PerformForward(net, s)
	assert.Equal(6, net.FrameWidth())
	assert.Equal(5, net.FrameIdx())
}

func TestOnlineOfflineForward(t *testing.T) {
	assert := assert.New(t)
	online := rnnNet(t, 5, false)
	offline := rnnNet(t, 5, true)
	online.InitializeWeights(rand.New(rand.NewSource(3)))
	buf := make([]float64, online.WeightsNum())
	online.ReadWeights(buf, 0)
	offline.WriteWeights(buf, 0)

	s := sequence(t, []float64{1, 0, 0, 1, -1, 0.5, 0.5, 0.5, 0, 0}, []float64{0.1, 0.2, 0.3}, 2, 1)
	online.Reset()
	offline.Reset()
	assert.Equal(PerformForward(online, s), PerformForward(offline, s))
	PerformBackward(online)
	PerformBackward(offline)
	for f := 0; f < 5; f++ {
		assert.Equal(online.GradOutputBuffer(f), offline.GradOutputBuffer(f), "frame %d", f)
	}
}

func TestXOR(t *testing.T) {
	assert := assert.New(t)
	net := xorNet(t)
	net.InitializeWeights(rand.New(rand.NewSource(1337)))
	set := xorSet()

	conf := DefaultConfig()
	conf.Epochs = 5000
	conf.Online = false
	conf.LearningRate = 0.5
	conf.ValidationInterval = 1
	conf.TargetError = 0.001
	gd := NewGradientDescent(net, conf, WithRand(rand.New(rand.NewSource(1))))
	if err := gd.Train(set, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	e := ComputeError(net, set)
	assert.True(e < 0.05, "xor error %v after %d epochs", e, gd.Epoch())
	assert.Equal(1.0, ClassificationRatio(net, set, 0.5))
	assert.Equal(1.0, RegressionRatio(net, set, 0.25))
	assert.Equal(len(gd.Statistics.Epochs), len(gd.Statistics.Train))
	assert.Contains(gd.Log(), "gradient descent")
}

func TestBatchDescentImproves(t *testing.T) {
	net := xorNet(t)
	net.InitializeWeights(rand.New(rand.NewSource(42)))
	set := xorSet()
	before := ComputeError(net, set)

	conf := DefaultConfig()
	conf.Epochs = 200
	conf.Online = false
	conf.LearningRate = 0.05
	conf.ValidationInterval = 1
	gd := NewGradientDescent(net, conf, WithRand(rand.New(rand.NewSource(1))))
	if err := gd.Train(set, set); err != nil {
		t.Fatalf("%+v", err)
	}
	after := ComputeError(net, set)
	if after >= before {
		t.Errorf("batch descent did not improve: %v -> %v", before, after)
	}
	assert.InDelta(t, after, gd.ValidationError(), 1e-12)
}

func TestSolverDescentImproves(t *testing.T) {
	net := xorNet(t)
	net.InitializeWeights(rand.New(rand.NewSource(42)))
	set := xorSet()
	before := ComputeError(net, set)

	conf := DefaultConfig()
	conf.Epochs = 100
	conf.ValidationInterval = 1
	solver := G.NewVanillaSolver(G.WithLearnRate(0.05))
	gd := NewGradientDescent(net, conf, WithSolver(solver), WithRand(rand.New(rand.NewSource(1))))
	if err := gd.Train(set, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	if after := ComputeError(net, set); after >= before {
		t.Errorf("solver descent did not improve: %v -> %v", before, after)
	}
}

type countingListener struct {
	epochs  []int
	flushed int
}

func (l *countingListener) Encode(p Progress) error { l.epochs = append(l.epochs, p.Epoch); return nil }
func (l *countingListener) Flush() error            { l.flushed++; return nil }

func TestRandomSearch(t *testing.T) {
	assert := assert.New(t)
	net := xorNet(t)
	set := xorSet()
	var l countingListener

	conf := DefaultConfig()
	conf.Epochs = 50
	conf.SearchLo, conf.SearchHi = -5, 5
	rs := NewRandomSearch(net, conf, WithRand(rand.New(rand.NewSource(9))), WithListener(&l))
	if err := rs.Train(set); err != nil {
		t.Fatalf("%+v", err)
	}
	best := rs.Statistics.Train[0]
	for _, e := range rs.Statistics.Train {
		best = math.Min(best, e)
	}
	assert.InDelta(best, ComputeError(net, set), 1e-12)
	assert.InDelta(best, rs.TrainError(), 1e-12)
	assert.Len(l.epochs, len(rs.Statistics.Epochs))
	assert.Equal(1, l.flushed)
	for _, w := range net.Weights()[1:] {
		assert.True(w >= -5 && w <= 5)
	}
}

func TestDifferentialEvolution(t *testing.T) {
	for _, m := range []Mutation{RandOne, BestOne, RandTwo, BestTwo, RandToBestOne} {
		t.Run(m.String(), func(t *testing.T) {
			assert := assert.New(t)
			net := xorNet(t)
			set := xorSet()
			var l countingListener

			conf := DefaultConfig()
			conf.Epochs = 100
			conf.PopSize = 20
			conf.Mutation = m
			de := NewDifferentialEvolution(net, conf, WithRand(rand.New(rand.NewSource(3))), WithListener(&l))
			if err := de.Train(set); err != nil {
				t.Fatalf("%+v", err)
			}

			errs := de.Statistics.Train
			for i := 1; i < len(errs); i++ {
				assert.True(errs[i] <= errs[i-1], "epoch %d got worse: %v > %v", i, errs[i], errs[i-1])
			}
			assert.True(errs[len(errs)-1] < errs[0])

			w, e := de.Best()
			assert.Equal(w, net.Weights()[1:])
			assert.Equal(e, de.TrainError())
			assert.InDelta(e, ComputeError(net, set), 1e-12)
			assert.Len(l.epochs, len(de.Statistics.Epochs))
			assert.Equal(1, l.flushed)
			assert.Contains(de.Log(), m.String())
		})
	}
}

func TestDifferentialEvolutionTarget(t *testing.T) {
	assert := assert.New(t)
	net := xorNet(t)
	conf := DefaultConfig()
	conf.Epochs = 50
	conf.PopSize = 10
	conf.TargetError = math.Inf(1)
	de := NewDifferentialEvolution(net, conf, WithRand(rand.New(rand.NewSource(1))))
	if err := de.Train(xorSet()); err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(0, de.Epoch())
	assert.Len(de.Statistics.Epochs, 1)

	assert.Equal(ErrEmptySet, errors.Cause(de.Train(nil)))
	conf.PopSize = 5
	assert.Panics(func() { NewDifferentialEvolution(net, conf) })
	conf = DefaultConfig()
	conf.Mutation = RandToBestOne + 1
	assert.Panics(func() { NewDifferentialEvolution(net, conf) })
	assert.Equal("Mutation(5)", conf.Mutation.String())
}

func TestTrainErrors(t *testing.T) {
	assert := assert.New(t)
	net := xorNet(t)
	gd := NewGradientDescent(net, DefaultConfig())
	assert.Equal(ErrEmptySet, errors.Cause(gd.Train(nil, nil)))

	conf := DefaultConfig()
	conf.ValidationInterval = 0
	assert.Panics(func() { NewGradientDescent(net, conf) })
	conf = DefaultConfig()
	conf.SearchLo = conf.SearchHi
	assert.Panics(func() { NewRandomSearch(net, conf) })

	// broken weights are caught after the epoch
	w := net.Weights()
	for i := range w[1:] {
		w[i+1] = math.NaN()
	}
	conf = DefaultConfig()
	conf.Epochs = 1
	gd = NewGradientDescent(net, conf)
	assert.Equal(engine.ErrNumerical, errors.Cause(gd.Train(xorSet(), nil)))
}

func TestStatisticsCSV(t *testing.T) {
	assert := assert.New(t)
	var s Statistics
	s.update(Progress{Epoch: 0, TrainError: 0.5, ValidationError: 0.25})
	s.update(Progress{Epoch: 1, TrainError: 0.125, ValidationError: 0.0625})
	var buf bytes.Buffer
	if err := s.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	assert.Equal("epoch,train,validation\n0,0.500000,0.250000\n1,0.125000,0.062500\n", buf.String())
}
