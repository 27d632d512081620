package builder

import (
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/engine"
	"github.com/pkg/errors"
)

// stack is the layer bookkeeping shared by the macros: every new layer is fully connected to the previous
// one, and the output layer seals the stack.
type stack struct {
	*Builder
	last   int
	sealed bool
}

func newStack(conf Config) stack {
	return stack{Builder: New(conf), last: -1}
}

// Clear discards the recorded network.
func (s *stack) Clear() {
	s.Builder.Clear()
	s.last = -1
	s.sealed = false
}

func (s *stack) inputLayer(n int) int {
	if s.sealed {
		s.fail(errors.WithStack(ErrNoModificationAllowed))
		return -1
	}
	l := InputLayer(s.Builder, n)
	s.last = l
	return l
}

// check guards hidden and output layers.
func (s *stack) check() bool {
	if s.err != nil {
		return false
	}
	if s.last < 0 {
		s.fail(errors.WithStack(ErrNoInputLayer))
		return false
	}
	if s.sealed {
		s.fail(errors.WithStack(ErrNoModificationAllowed))
		return false
	}
	return true
}

func (s *stack) connect(l int) {
	if l < 0 {
		return
	}
	s.WeightedLinkLayer(s.last, l)
	s.last = l
}

// MLP builds multilayer perceptrons: an input layer, any number of hidden layers and an output layer,
// each fully connected to the next. The generated network is guaranteed to be feed-forward.
type MLP struct {
	stack
}

// NewMLP creates an MLP builder.
func NewMLP(conf Config) *MLP { return &MLP{stack: newStack(conf)} }

func (m *MLP) InputLayer(n int) int { return m.inputLayer(n) }

// HiddenLayer adds a perceptron layer. See the package level HiddenLayer for the bias.
func (m *MLP) HiddenLayer(n int, typ cell.Type, bias ...float64) int {
	if !m.check() {
		return -1
	}
	l := HiddenLayer(m.Builder, n, typ, bias...)
	m.connect(l)
	return l
}

// OutputLayer adds the output layer. No layer may be added afterwards.
func (m *MLP) OutputLayer(n int, typ cell.Type, bias ...float64) int {
	if !m.check() {
		return -1
	}
	l := OutputLayer(m.Builder, n, typ, bias...)
	m.connect(l)
	m.sealed = true
	return l
}

// Generate compiles the perceptron. It fails with ErrGeneratingFailed if the result is recurrent.
func (m *MLP) Generate() (*engine.Network, error) {
	net, err := m.Builder.Generate()
	if err != nil {
		return nil, err
	}
	if net.IsRecurrent() {
		return nil, errors.Wrap(ErrGeneratingFailed, "perceptron is recurrent")
	}
	return net, nil
}
