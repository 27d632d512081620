package builder

import (
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/engine"
)

// RNN builds simple recurrent networks: like MLP, but every hidden layer is also fully connected to
// itself.
type RNN struct {
	stack
}

// NewRNN creates an RNN builder. conf.Offline selects the computation mode.
func NewRNN(conf Config) *RNN { return &RNN{stack: newStack(conf)} }

func (r *RNN) InputLayer(n int) int { return r.inputLayer(n) }

// HiddenLayer adds a self connected perceptron layer.
func (r *RNN) HiddenLayer(n int, typ cell.Type, bias ...float64) int {
	if !r.check() {
		return -1
	}
	l := HiddenLayer(r.Builder, n, typ, bias...)
	r.connect(l)
	if l >= 0 {
		r.WeightedLinkLayer(l, l)
	}
	return l
}

// OutputLayer adds the output layer. No layer may be added afterwards.
func (r *RNN) OutputLayer(n int, typ cell.Type, bias ...float64) int {
	if !r.check() {
		return -1
	}
	l := OutputLayer(r.Builder, n, typ, bias...)
	r.connect(l)
	r.sealed = true
	return l
}

func (r *RNN) Generate() (*engine.Network, error) { return r.Builder.Generate() }
