package train

import (
	"math"

	"github.com/gorgonia/cellnet/engine"
	"github.com/gorgonia/cellnet/link"
	"github.com/gorgonia/cellnet/topology"
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// frame offsets of the source activation a link read in the forward pass
const (
	sameFrame = iota
	prevFrame
	nextFrame
	unread
)

// GradientDescent trains a network by backpropagation (through time, for recurrent networks) with
// momentum.
type GradientDescent struct {
	trainer

	weights []float64
	dw      []float64 // accumulated deltas, later the update
	last    []float64 // previous update
	frames  []uint8   // per link

	grad  []float64 // -dw, for the solver
	model []G.ValueGrad
}

// NewGradientDescent creates a trainer for net. It panics if conf is not valid.
func NewGradientDescent(net *engine.Network, conf Config, opts ...Option) *GradientDescent {
	gd := &GradientDescent{trainer: makeTrainer("gradient descent", net, conf, opts...)}
	gd.init()
	return gd
}

// weightGrad exposes the trainable weights and their gradient to a gorgonia solver. Both tensors alias
// the network's and the trainer's buffers.
type weightGrad struct {
	w, g *tensor.Dense
}

func (wg weightGrad) Value() G.Value         { return wg.w }
func (wg weightGrad) Grad() (G.Value, error) { return wg.g, nil }

func (gd *GradientDescent) init() {
	n := gd.net.WeightsNum()
	gd.weights = gd.net.Weights()
	gd.dw = make([]float64, n+1)
	gd.last = make([]float64, n+1)
	gd.frames = linkFrames(gd.net.Topology())
	if gd.solver != nil && n > 0 {
		gd.grad = make([]float64, n)
		gd.model = []G.ValueGrad{weightGrad{
			w: tensor.New(tensor.WithShape(n), tensor.WithBacking(gd.weights[1:])),
			g: tensor.New(tensor.WithShape(n), tensor.WithBacking(gd.grad)),
		}}
	}
}

// linkFrames finds, for every link, which frame's source activation the forward pass read when it
// computed the destination at frame t.
func linkFrames(topo *topology.Topology) []uint8 {
	retVal := make([]uint8, topo.LinksNum)
	for i := range retVal {
		src, dst := topo.Links.Src(i), topo.Links.Dst(i)
		if !topo.Delayed(src, dst) {
			continue
		}
		if !topo.Bidirectional {
			retVal[i] = prevFrame
			continue
		}
		// layers sweep all frames one after the other
		sl, dl := topo.LayerOf(src), topo.LayerOf(dst)
		switch {
		case sl != dl:
			retVal[i] = unread
		case topo.Layers[dl].Dir == topology.Reversed:
			retVal[i] = nextFrame
		default:
			retVal[i] = prevFrame
		}
	}
	return retVal
}

// Train fits the weights of the network to set. If validation is empty the training error is used to
// select the best weights, which are restored at the end.
func (gd *GradientDescent) Train(set, validation SampleSet) error {
	if err := gd.started(set); err != nil {
		return err
	}
	conf := gd.conf
	n := gd.net.WeightsNum()
	for i := range gd.dw {
		gd.dw[i], gd.last[i] = 0, 0
	}

	perm := make([]int, len(set))
	for i := range perm {
		perm[i] = i
	}
	best := make([]float64, n)
	gd.net.ReadWeights(best, 0)
	minErr := math.MaxFloat64
	var count, notBetter int

	for gd.epoch = 0; gd.epoch < conf.Epochs; gd.epoch++ {
		if conf.Permute {
			gd.r.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		}
		if !conf.Online {
			gd.resetDiffs()
		}
		var e float64
		for _, idx := range perm {
			gd.net.Reset()
			e += PerformForward(gd.net, set[idx], conf.Features...)
			last := gd.net.FrameIdx()
			PerformBackward(gd.net)
			if conf.Online {
				gd.resetDiffs()
			}
			gd.accumulate(last)
			if conf.Online {
				if err := gd.step(); err != nil {
					return err
				}
			}
		}
		if !conf.Online {
			if err := gd.step(); err != nil {
				return err
			}
		}
		gd.trainErr = e / float64(len(set))

		validate := gd.epoch%conf.ValidationInterval == 0
		switch {
		case len(validation) == 0:
			gd.validErr = gd.trainErr
		case validate:
			gd.validErr = ComputeError(gd.net, validation, conf.Features...)
		}
		if validate {
			if gd.validErr < minErr {
				minErr = gd.validErr
				gd.net.ReadWeights(best, 0)
				notBetter = 0
			} else {
				notBetter++
			}
		}

		if err := gd.epochDone(); err != nil {
			return err
		}
		if conf.EarlyStopping && notBetter > conf.EarlyStoppingCount {
			gd.logger.Printf("early stopping at epoch %d", gd.epoch)
			break
		}
		if gd.validErr < conf.TargetError {
			break
		}
		count++
	}

	if count > 0 {
		gd.validErr = minErr
		gd.net.WriteWeights(best, 0)
	}
	return gd.finished()
}

func (gd *GradientDescent) resetDiffs() {
	for i := 1; i < len(gd.dw); i++ {
		gd.dw[i] = 0
	}
}

// accumulate adds delta(dst) * x(src) of every weighted link over frames 0..last.
func (gd *GradientDescent) accumulate(last int) {
	links := link.Table(gd.net.Links())
	for t := 0; t <= last; t++ {
		delta := gd.net.GradOutputBuffer(t)
		for i, fr := range gd.frames {
			w := links.Weight(i)
			if w <= 0 {
				continue
			}
			var x []float64
			switch {
			case fr == sameFrame:
				x = gd.net.OutputBuffer(t)
			case fr == prevFrame && t > 0:
				x = gd.net.OutputBuffer(t - 1)
			case fr == nextFrame && t < last:
				x = gd.net.OutputBuffer(t + 1)
			default:
				continue
			}
			gd.dw[w] += delta[links.Dst(i)] * x[links.Src(i)]
		}
	}
}

// step applies the accumulated update.
func (gd *GradientDescent) step() error {
	if gd.model != nil {
		for i := range gd.grad {
			gd.grad[i] = -gd.dw[i+1]
		}
		if err := gd.solver.Step(gd.model); err != nil {
			return errors.Wrapf(err, "solver step at epoch %d", gd.epoch)
		}
		return nil
	}
	mu, alpha := gd.conf.LearningRate, gd.conf.Momentum
	for i := 1; i < len(gd.dw); i++ {
		d := mu*gd.dw[i] + alpha*gd.last[i]
		gd.last[i] = d
		gd.weights[i] += d
	}
	return nil
}
