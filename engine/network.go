// Package engine executes compiled networks.
//
// A Network replays forward and backward passes over a topology.Topology using a topology.Buffers for
// its state. All four iteration schemes (see Kind) share the same per-layer primitives; they differ only
// in how they walk the time frames.
//
// A Network is not safe for concurrent use. Shared copies (see SharedCopy) may be used concurrently as
// long as nobody writes the weights at the same time.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/topology"
	"github.com/pkg/errors"
)

const initWeightRange = 0.1

// ErrNumerical is returned by NumericalCheck.
var ErrNumerical = errors.New("numerical instability")

// Network is an executable network.
type Network struct {
	topo *topology.Topology
	data *topology.Buffers
	kind Kind

	frame int

	lumberjack
}

// New wraps a compiled topology and its buffers. The kind is derived from the topology flags.
func New(topo *topology.Topology, data *topology.Buffers) *Network {
	retVal := &Network{
		topo:       topo,
		data:       data,
		kind:       KindOf(topo),
		lumberjack: makeLumberJack(),
	}
	return retVal
}

// Kind returns the iteration scheme of the network.
func (n *Network) Kind() Kind { return n.kind }

// Topology returns the compiled topology. It must not be modified.
func (n *Network) Topology() *topology.Topology { return n.topo }

// Reset clears every frame, reapplies the assignments and moves to frame 0.
func (n *Network) Reset() {
	n.data.Clear()
	n.frame = 0
	n.resetLog()
}

// InitializeWeights draws every trainable weight uniformly from [-0.1, 0.1].
// A nil r uses a generator seeded from the clock.
func (n *Network) InitializeWeights(r *rand.Rand) {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	w := n.data.Weights
	for i := 1; i < len(w); i++ {
		w[i] = (r.Float64()*2 - 1) * initWeightRange
	}
}

// Input writes InputCells values from buf[off:] into the input cells of the current frame.
func (n *Network) Input(buf []float64, off int) {
	t := n.topo
	copy(n.data.Output[n.frame][t.InLo:t.InLo+t.InNum], buf[off:off+t.InNum])
}

// InputSelected writes buf[off+sel[i]] into input cell i of the current frame.
func (n *Network) InputSelected(buf []float64, off int, sel []int) {
	dst := n.data.Output[n.frame][n.topo.InLo:]
	for i, s := range sel {
		dst[i] = buf[off+s]
	}
}

// Output reads the output cells of the current frame into buf[off:].
func (n *Network) Output(buf []float64, off int) {
	t := n.topo
	copy(buf[off:off+t.OutNum], n.data.Output[n.frame][t.OutLo:t.OutLo+t.OutNum])
}

// OutputSelected reads output cell sel[i] of the current frame into buf[off+i].
func (n *Network) OutputSelected(buf []float64, off int, sel []int) {
	src := n.data.Output[n.frame][n.topo.OutLo:]
	for i, s := range sel {
		buf[off+i] = src[s]
	}
}

// Target sets the desired output of the current frame from buf[off:]. The target is consumed by Error.
func (n *Network) Target(buf []float64, off int) {
	t := n.topo
	copy(n.data.GradInput[n.frame][t.OutLo:t.OutLo+t.OutNum], buf[off:off+t.OutNum])
}

// TargetSelected sets the desired value of output cell i to buf[off+sel[i]].
func (n *Network) TargetSelected(buf []float64, off int, sel []int) {
	dst := n.data.GradInput[n.frame][n.topo.OutLo:]
	for i, s := range sel {
		dst[i] = buf[off+s]
	}
}

// Error replaces the target of the current frame with target - output, which seeds the backward pass,
// and returns the mean squared difference over the output cells.
func (n *Network) Error() float64 {
	t := n.topo
	if t.OutNum == 0 {
		return 0
	}
	out := n.data.Output[n.frame]
	gin := n.data.GradInput[n.frame]
	var sum float64
	for c := t.OutLo; c <= t.OutHi; c++ {
		d := gin[c] - out[c]
		gin[c] = d
		sum += d * d
	}
	return sum / float64(t.OutNum)
}

// FrameIdx returns the current frame.
func (n *Network) FrameIdx() int { return n.frame }

// FrameWidth returns the number of allocated frames.
func (n *Network) FrameWidth() int { return n.data.Frames }

// IncrFrameIdx moves to the next frame. It stays on the last frame.
func (n *Network) IncrFrameIdx() {
	if n.frame < n.data.Frames-1 {
		n.frame++
	}
}

// DecrFrameIdx moves to the previous frame. It stays on frame 0.
func (n *Network) DecrFrameIdx() {
	if n.frame > 0 {
		n.frame--
	}
}

// SetFrameIdx moves to frame f, clamped to the allocated frames.
func (n *Network) SetFrameIdx(f int) {
	switch {
	case f < 0:
		f = 0
	case f >= n.data.Frames:
		f = n.data.Frames - 1
	}
	n.frame = f
}

// Rebuffer reallocates the frame buffers for frames frames and resets the network. Weights are kept.
func (n *Network) Rebuffer(frames int) {
	n.data.Alloc(frames)
	n.Reset()
}

// Weights returns the live weight slice. Index 0 holds the constant 1.0 of unweighted links.
func (n *Network) Weights() []float64 { return n.data.Weights }

// WeightsNum returns the number of trainable weights.
func (n *Network) WeightsNum() int { return n.topo.WeightsNum }

// WriteWeights copies WeightsNum values from buf[off:] into the network.
func (n *Network) WriteWeights(buf []float64, off int) {
	copy(n.data.Weights[1:], buf[off:off+n.topo.WeightsNum])
}

// ReadWeights copies the trainable weights into buf[off:].
func (n *Network) ReadWeights(buf []float64, off int) {
	copy(buf[off:off+n.topo.WeightsNum], n.data.Weights[1:])
}

func (n *Network) Links() []int    { return n.topo.Links }
func (n *Network) LinksRev() []int { return n.topo.LinksRev }
func (n *Network) LinksNum() int   { return n.topo.LinksNum }

func (n *Network) IsRecurrent() bool     { return n.topo.Recurrent }
func (n *Network) IsOnline() bool        { return !n.topo.Offline }
func (n *Network) IsOffline() bool       { return n.topo.Offline }
func (n *Network) IsBidirectional() bool { return n.topo.Bidirectional }

func (n *Network) InputCells() int     { return n.topo.InNum }
func (n *Network) OutputCells() int    { return n.topo.OutNum }
func (n *Network) ValueCells() int     { return n.topo.ValueCellsNum }
func (n *Network) ComputingCells() int { return n.topo.ComputingCellsNum }

// OutputBuffer returns the outputs of all cells at frame t.
func (n *Network) OutputBuffer(t int) []float64 { return n.data.Output[t] }

// GradOutputBuffer returns the backpropagated deltas of all cells at frame t.
func (n *Network) GradOutputBuffer(t int) []float64 { return n.data.GradOutput[t] }

// GradInputBuffer returns the gathered gradients of all cells at frame t.
func (n *Network) GradInputBuffer(t int) []float64 { return n.data.GradInput[t] }

// Copy returns an independent network with the same topology.
func (n *Network) Copy() *Network {
	return &Network{
		topo:       n.topo,
		data:       n.data.Copy(),
		kind:       n.kind,
		frame:      n.frame,
		lumberjack: makeLumberJack(),
	}
}

// SharedCopy returns a network with its own frame state that shares topology, weights and assignments
// with n.
func (n *Network) SharedCopy() *Network {
	return &Network{
		topo:       n.topo,
		data:       n.data.SharedCopy(),
		kind:       n.kind,
		frame:      n.frame,
		lumberjack: makeLumberJack(),
	}
}

// NumericalCheck returns an error wrapping ErrNumerical if any buffer or weight holds NaN or Inf.
func (n *Network) NumericalCheck() error {
	bufs := []struct {
		name string
		data [][]float64
	}{
		{"input", n.data.Input},
		{"output", n.data.Output},
		{"gradinput", n.data.GradInput},
		{"gradoutput", n.data.GradOutput},
	}
	for _, b := range bufs {
		for t, frame := range b.data {
			for c, v := range frame {
				if isBad(v) {
					return errors.Wrapf(ErrNumerical, "%s[%d][%d] = %v", b.name, t, c, v)
				}
			}
		}
	}
	for i, v := range n.data.Weights {
		if isBad(v) {
			return errors.Wrapf(ErrNumerical, "weight %d = %v", i, v)
		}
	}
	return nil
}

func (n *Network) String() string {
	return fmt.Sprintf("%v network: %d cells, %d links, %d weights, %d frames", n.kind, n.topo.CellsNum, n.topo.LinksNum, n.topo.WeightsNum, n.data.Frames)
}

func isBad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// computeLayerActivations runs the forward pass of layer l at frame f, one computation package at a time:
// first every block of the package integrates its predecessors, then every block applies its activation.
func (n *Network) computeLayerActivations(l, f int) {
	layer := &n.topo.Layers[l]
	in, out := n.data.Input[f], n.data.Output[f]
	w, links := n.data.Weights, n.topo.Links
	for c := 0; c < layer.CompWidth; c++ {
		lo, hi := layer.CompLo[c], layer.CompHi[c]
		for a := lo; a <= hi; a++ {
			b := &n.topo.Blocks[a]
			cell.Integrate(b.Type.Integration, out, in, b.Lo, b.Num, w, links, b.PredsLo, b.PredsNum)
		}
		for a := lo; a <= hi; a++ {
			b := &n.topo.Blocks[a]
			cell.Perform(b.Type.Activation, in, b.Lo, out, b.Lo, b.Num)
		}
	}
}

// computeLayerGradients runs the backward pass of layer l at frame f, packages in descending order.
func (n *Network) computeLayerGradients(l, f int) {
	layer := &n.topo.Layers[l]
	in := n.data.Input[f]
	gin, gout := n.data.GradInput[f], n.data.GradOutput[f]
	w, links := n.data.Weights, n.topo.LinksRev
	for c := layer.CompWidth - 1; c >= 0; c-- {
		lo, hi := layer.CompLo[c], layer.CompHi[c]
		for a := hi; a >= lo; a-- {
			b := &n.topo.Blocks[a]
			cell.Integrate(b.Type.RevIntegration, gout, gin, b.Lo, b.Num, w, links, b.SuccsLo, b.SuccsNum)
		}
		for a := hi; a >= lo; a-- {
			b := &n.topo.Blocks[a]
			cell.Perform(b.Type.RevActivation, in, b.Lo, gout, b.Lo, b.Num)
			for i := b.Lo; i <= b.Hi; i++ {
				gout[i] *= gin[i]
			}
		}
	}
}
