package builder

import (
	"github.com/gorgonia/cellnet/cell"
	"github.com/pkg/errors"
)

// InputLayer adds a layer of n value cells and defines it as the input layer.
func InputLayer(b *Builder, n int) int {
	l := b.BeginLayer()
	b.ValueCells(n)
	b.EndLayer()
	b.DefineInputLayer(l)
	return l
}

// HiddenLayer adds a layer of n perceptrons of type typ. An optional bias value adds a bias cell outside
// the layer with a weighted link to every cell of the layer.
func HiddenLayer(b *Builder, n int, typ cell.Type, bias ...float64) int {
	if !typ.Perceptron {
		b.fail(errors.Wrapf(ErrOnlyPerceptrons, "%v", typ))
		return -1
	}
	l := b.BeginLayer()
	first := b.Cells(n, typ)
	b.EndLayer()
	if len(bias) > 0 {
		Bias(b, bias[0], first, n)
	}
	return l
}

// OutputLayer is HiddenLayer that also defines the new layer as the output layer.
func OutputLayer(b *Builder, n int, typ cell.Type, bias ...float64) int {
	l := HiddenLayer(b, n, typ, bias...)
	if l >= 0 {
		b.DefineOutputLayer(l)
	}
	return l
}

// Bias adds a value cell fixed to value with a weighted link to each of the n cells starting at to.
// It returns the bias cell.
func Bias(b *Builder, value float64, to, n int) int {
	c := b.ValueCell()
	b.Assign(c, value)
	b.WeightedLinkRange(c, 1, to, n)
	return c
}
