package builder

import (
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/engine"
)

// LSTMBias is an optional bias of an LSTM layer. The zero value means no bias.
type LSTMBias struct {
	On    bool
	Value float64
}

// WithBias returns a bias fixed to v.
func WithBias(v float64) LSTMBias { return LSTMBias{On: true, Value: v} }

// LSTMConfig describes the memory blocks of an LSTM layer.
type LSTMConfig struct {
	Gates  cell.Type // input, forget and output gates
	NetIn  cell.Type // squash of the block input
	NetOut cell.Type // squash of the cell state

	Peepholes bool

	GatesBias  LSTMBias
	InputBias  LSTMBias
	OutputBias LSTMBias
}

// DefaultLSTMConfig returns sigmoid gates, tanh squashes, peepholes and gate and input biases.
func DefaultLSTMConfig() LSTMConfig {
	return LSTMConfig{
		Gates:     cell.SigmoidCell,
		NetIn:     cell.TanhCell,
		NetOut:    cell.TanhCell,
		Peepholes: true,
		GatesBias: WithBias(1),
		InputBias: WithBias(1),
	}
}

// LSTMLayer adds a layer of n LSTM memory blocks.
//
// The gates and the block input take the layer's input; the block output is the gated squashed state.
// Products are built from multiplicative cells fed by dmultiplicative cells, one per factor, so that the
// backward pass can divide each factor back out. The blocks are computed in seven steps:
//	0: input gate, forget gate, net input
//	1: dmul cells for the forget product and the input product
//	2: forget product (state(t-1) * forget gate), input product (net input * input gate)
//	3: state = sum of both products
//	4: output squash, output gate
//	5: dmul cells for the output product
//	6: output product
func LSTMLayer(b *Builder, n int, conf LSTMConfig) int {
	layer := b.BeginLayer()

	b.InputConnectors()
	inputGates := b.Cells(n, conf.Gates)
	forgetGates := b.Cells(n, conf.Gates)
	inputCells := b.Cells(n, conf.NetIn)
	b.ShiftComputationIndex()

	b.NonConnectors()
	dmul11 := b.DMultiplicativeCells(n)
	dmul12 := b.DMultiplicativeCells(n)
	dmul21 := b.DMultiplicativeCells(n)
	dmul22 := b.DMultiplicativeCells(n)
	b.ShiftComputationIndex()

	mul1 := b.MultiplicativeCells(n)
	mul2 := b.MultiplicativeCells(n)
	b.ShiftComputationIndex()

	state := b.LinearCells(n)
	b.ShiftComputationIndex()

	squash := b.Cells(n, conf.NetOut)
	b.InputConnectors()
	outputGates := b.Cells(n, conf.Gates)
	b.ShiftComputationIndex()

	b.NonConnectors()
	dmul31 := b.DMultiplicativeCells(n)
	dmul32 := b.DMultiplicativeCells(n)
	b.ShiftComputationIndex()

	b.OutputConnectors()
	mul3 := b.MultiplicativeCells(n)

	b.LinkSymmetric(forgetGates, dmul11, n)
	b.LinkSymmetric(inputGates, dmul21, n)
	b.LinkSymmetric(inputCells, dmul22, n)

	b.LinkSymmetric(dmul11, mul1, n)
	b.LinkSymmetric(dmul12, mul1, n)
	b.LinkSymmetric(mul1, state, n)
	b.LinkSymmetric(state, dmul12, n)

	b.LinkSymmetric(dmul21, mul2, n)
	b.LinkSymmetric(dmul22, mul2, n)
	b.LinkSymmetric(mul2, state, n)

	b.LinkSymmetric(state, squash, n)
	b.LinkSymmetric(squash, dmul31, n)
	b.LinkSymmetric(outputGates, dmul32, n)
	b.LinkSymmetric(dmul31, mul3, n)
	b.LinkSymmetric(dmul32, mul3, n)

	if conf.Peepholes {
		b.WeightedLinkSymmetric(state, forgetGates, n)
		b.WeightedLinkSymmetric(state, inputGates, n)
		b.WeightedLinkSymmetric(state, outputGates, n)
	}

	// bias cells live inside the layer but must not take part in layer to layer links
	b.NonConnectors()
	if conf.GatesBias.On {
		c := Bias(b, conf.GatesBias.Value, forgetGates, n)
		b.WeightedLinkRange(c, 1, inputGates, n)
		b.WeightedLinkRange(c, 1, outputGates, n)
	}
	if conf.InputBias.On {
		Bias(b, conf.InputBias.Value, inputCells, n)
	}
	if conf.OutputBias.On {
		Bias(b, conf.OutputBias.Value, squash, n)
	}

	b.EndLayer()
	return layer
}

// LSTM builds networks of LSTM layers. Every LSTM layer is fully connected to the previous layer and
// to itself.
type LSTM struct {
	stack
}

// NewLSTM creates an LSTM builder. conf.Offline selects the computation mode.
func NewLSTM(conf Config) *LSTM { return &LSTM{stack: newStack(conf)} }

func (m *LSTM) InputLayer(n int) int { return m.inputLayer(n) }

// HiddenLayer adds a layer of n memory blocks.
func (m *LSTM) HiddenLayer(n int, conf LSTMConfig) int {
	if !m.check() {
		return -1
	}
	l := LSTMLayer(m.Builder, n, conf)
	m.connect(l)
	if l >= 0 {
		m.WeightedLinkLayer(l, l)
	}
	return l
}

// OutputLayer adds a perceptron output layer. No layer may be added afterwards.
func (m *LSTM) OutputLayer(n int, typ cell.Type, bias ...float64) int {
	if !m.check() {
		return -1
	}
	l := OutputLayer(m.Builder, n, typ, bias...)
	m.connect(l)
	m.sealed = true
	return l
}

func (m *LSTM) Generate() (*engine.Network, error) { return m.Builder.Generate() }
