package cellnet

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/gorgonia/cellnet/builder"
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/engine"
	"github.com/gorgonia/cellnet/train"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func xor(t *testing.T) *engine.Network {
	m := builder.NewMLP(builder.DefaultConfig())
	m.InputLayer(2)
	m.HiddenLayer(2, cell.SigmoidCell, 1)
	m.OutputLayer(1, cell.SigmoidCell, 1)
	net, err := m.Generate()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	net.WriteWeights([]float64{
		20, 20, -10,
		20, 20, -30,
		20, -20, -10,
	}, 0)
	return net
}

func xorSet() train.SampleSet {
	return train.SampleSet{
		train.NewSample([]float64{0, 0}, []float64{0}),
		train.NewSample([]float64{0, 1}, []float64{1}),
		train.NewSample([]float64{1, 0}, []float64{1}),
		train.NewSample([]float64{1, 1}, []float64{0}),
	}
}

func TestPoolInfer(t *testing.T) {
	assert := assert.New(t)
	p := NewPool(xor(t), 4)
	defer p.Close()
	assert.Equal(4, p.Size())

	table := []struct {
		x    []float32
		want float32
	}{
		{[]float32{0, 0}, 0},
		{[]float32{0, 1}, 1},
		{[]float32{1, 0}, 1},
		{[]float32{1, 1}, 0},
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		c := table[i%len(table)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.Infer(c.x)
			if assert.NoError(err) {
				assert.InDelta(c.want, out[0], 0.01, "%v", c.x)
			}
		}()
	}
	wg.Wait()

	_, err := p.Infer([]float32{1, 2, 3})
	assert.Equal(ErrInputSize, errors.Cause(err))
}

func TestPoolError(t *testing.T) {
	assert := assert.New(t)
	net := xor(t)
	net.Weights()[1] = 3
	set := xorSet()
	for i := 0; i < 6; i++ {
		set = append(set, set[i%4])
	}
	want := train.ComputeError(net.Copy(), set)

	p := NewPool(net, 3)
	got, err := p.Error(set)
	assert.NoError(err)
	assert.InDelta(want, got, 1e-12)

	got, err = p.Error(nil)
	assert.NoError(err)
	assert.Equal(0.0, got)
	assert.NoError(p.Close())

	_, err = p.Error(set)
	assert.Equal(ErrClosed, errors.Cause(err))
	_, err = p.Infer([]float32{0, 0})
	assert.Equal(ErrClosed, errors.Cause(err))
	assert.NoError(p.Close())
}

func TestPoolConcurrentError(t *testing.T) {
	assert := assert.New(t)
	net := xor(t)
	var set train.SampleSet
	for i := 0; i < 64; i++ {
		set = append(set, xorSet()[i%4])
	}
	want := train.ComputeError(net.Copy(), set)

	p := NewPool(net, 4)
	defer p.Close()
	for round := 0; round < 5; round++ {
		errs := make(chan error, 8)
		results := make(chan float64, 8)
		for i := 0; i < 8; i++ {
			go func() {
				e, err := p.Error(set)
				errs <- err
				results <- e
			}()
		}
		for i := 0; i < 8; i++ {
			select {
			case err := <-errs:
				assert.NoError(err)
				assert.InDelta(want, <-results, 1e-12)
			case <-time.After(10 * time.Second):
				t.Fatalf("round %d: concurrent calls to Error did not finish", round)
			}
		}
	}
}

func TestPoolClassify(t *testing.T) {
	assert := assert.New(t)
	b := builder.New(builder.DefaultConfig())
	builder.InputLayer(b, 3)
	builder.OutputLayer(b, 3, cell.LinearCell)
	b.LinkSymmetric(0, 3, 3)
	net, err := b.Generate()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	p := NewPool(net, 0)
	defer p.Close()

	idx, err := p.Classify([]float32{0.1, 0.7, 0.2})
	assert.NoError(err)
	assert.Equal(1, idx)
}

func TestPoolNumerical(t *testing.T) {
	assert := assert.New(t)
	net := xor(t)
	net.Weights()[1] = math.NaN()
	p := NewPool(net, 2)
	_, err := p.Infer([]float32{1, 1})
	assert.Equal(engine.ErrNumerical, errors.Cause(err))

	// every copy shares the broken weights
	err = p.Close()
	if assert.Error(err) {
		_, ok := err.(manyErr)
		assert.True(ok)
	}
}

func TestPoolSequence(t *testing.T) {
	assert := assert.New(t)
	r := builder.NewRNN(builder.Config{Frames: 2})
	r.InputLayer(1)
	r.HiddenLayer(2, cell.TanhCell, 1)
	r.OutputLayer(1, cell.LinearCell)
	net, err := r.Generate()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	net.InitializeWeights(rand.New(rand.NewSource(1)))

	seq := []float32{0.5, -0.25, 1, 0}
	ref := net.Copy()
	ref.Reset()
	x := []float64{0.5, -0.25, 1, 0}
	sample, err := train.NewSequenceSample(x, []float64{0}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	train.PerformForward(ref, sample)
	want := make([]float64, 1)
	ref.Output(want, 0)

	p := NewPool(net, 1)
	defer p.Close()
	out, err := p.Infer(seq)
	assert.NoError(err)
	assert.Equal(float32(want[0]), out[0])
	assert.Equal(4, p.copies[0].FrameWidth())
}
