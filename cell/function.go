package cell

import (
	"fmt"
	"math"
)

// Function identifies a scalar function applied elementwise to a range of cells.
// Derivatives take the same argument as their primitive (the cell input), not its output.
type Function uint8

const (
	None Function = iota
	ConstOne
	ID
	Sigmoid
	SigmoidDx
	Sigmoid1
	Sigmoid1Dx
	Sigmoid2
	Sigmoid2Dx
	Tanh
	TanhDx
	Invert

	MAXFUNCTION // sentinel
)

var functionNames = [...]string{
	"none", "one", "id",
	"sigmoid", "sigmoid'",
	"sigmoid1", "sigmoid1'",
	"sigmoid2", "sigmoid2'",
	"tanh", "tanh'",
	"invert",
}

func (f Function) String() string {
	if f >= MAXFUNCTION {
		return fmt.Sprintf("Function(%d)", uint8(f))
	}
	return functionNames[f]
}

// Apply evaluates f at x.
func (f Function) Apply(x float64) float64 {
	switch f {
	case ConstOne:
		return 1
	case ID:
		return x
	case Sigmoid:
		return sigmoid(x)
	case SigmoidDx:
		return sigmoidDx(x)
	case Sigmoid1:
		return sigmoid1(x)
	case Sigmoid1Dx:
		return sigmoid1Dx(x)
	case Sigmoid2:
		return sigmoid2(x)
	case Sigmoid2Dx:
		return sigmoid2Dx(x)
	case Tanh:
		return math.Tanh(x)
	case TanhDx:
		return tanhDx(x)
	case Invert:
		return invert(x)
	}
	return x
}

// Perform applies f to data[dataOff:dataOff+n] and writes into result[resultOff:resultOff+n].
// None leaves result untouched.
func Perform(f Function, data []float64, dataOff int, result []float64, resultOff, n int) {
	src := data[dataOff : dataOff+n]
	dst := result[resultOff : resultOff+n]
	switch f {
	case None:
	case ConstOne:
		for i := range dst {
			dst[i] = 1
		}
	case ID:
		copy(dst, src)
	case Sigmoid:
		for i, x := range src {
			dst[i] = sigmoid(x)
		}
	case SigmoidDx:
		for i, x := range src {
			dst[i] = sigmoidDx(x)
		}
	case Sigmoid1:
		for i, x := range src {
			dst[i] = sigmoid1(x)
		}
	case Sigmoid1Dx:
		for i, x := range src {
			dst[i] = sigmoid1Dx(x)
		}
	case Sigmoid2:
		for i, x := range src {
			dst[i] = sigmoid2(x)
		}
	case Sigmoid2Dx:
		for i, x := range src {
			dst[i] = sigmoid2Dx(x)
		}
	case Tanh:
		for i, x := range src {
			dst[i] = math.Tanh(x)
		}
	case TanhDx:
		for i, x := range src {
			dst[i] = tanhDx(x)
		}
	case Invert:
		for i, x := range src {
			dst[i] = invert(x)
		}
	default:
		panic(fmt.Sprintf("cell: unknown function %v", f))
	}
}

func sigmoid(x float64) float64 { return 1.0 / (1.0 + exp(-x)) }

func sigmoidDx(x float64) float64 {
	s := sigmoid(x)
	return s * (1.0 - s)
}

func sigmoid1(x float64) float64 { return 2.0/(1.0+exp(-x)) - 1.0 }

func sigmoid1Dx(x float64) float64 {
	e := exp(x)
	d := 1.0 + e
	return (2.0 * e) / (d * d)
}

func sigmoid2(x float64) float64 { return 4.0/(1.0+exp(-x)) - 2.0 }

func sigmoid2Dx(x float64) float64 {
	e := exp(x)
	d := 1.0 + e
	return (4.0 * e) / (d * d)
}

func tanhDx(x float64) float64 {
	t := math.Tanh(x)
	return 1.0 - t*t
}

func invert(x float64) float64 {
	if x == 0 {
		return 0
	}
	return 1.0 / x
}
