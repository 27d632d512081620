package cell

import "fmt"

// Type bundles the forward and reverse behaviour of a block of cells.
//
// The reverse pass of a cell computes
//	gradInput  = RevIntegration over successors' gradOutput
//	gradOutput = RevActivation(input) * gradInput
type Type struct {
	Integration    Integration
	Activation     Function
	RevIntegration Integration
	RevActivation  Function

	Name string

	// Perceptron types may appear in perceptron style layers (weighted sum followed by a squash).
	Perceptron bool
	Linear     bool
}

var (
	Value = Type{
		Name:       "value",
		Perceptron: true,
		Linear:     true,
	}
	SigmoidCell = Type{
		Integration: Sum, Activation: Sigmoid,
		RevIntegration: Sum, RevActivation: SigmoidDx,
		Name:       "sigmoid",
		Perceptron: true,
	}
	Sigmoid1Cell = Type{
		Integration: Sum, Activation: Sigmoid1,
		RevIntegration: Sum, RevActivation: Sigmoid1Dx,
		Name:       "sigmoid[-1,1]",
		Perceptron: true,
	}
	Sigmoid2Cell = Type{
		Integration: Sum, Activation: Sigmoid2,
		RevIntegration: Sum, RevActivation: Sigmoid2Dx,
		Name:       "sigmoid[-2,2]",
		Perceptron: true,
	}
	TanhCell = Type{
		Integration: Sum, Activation: Tanh,
		RevIntegration: Sum, RevActivation: TanhDx,
		Name:       "tanh",
		Perceptron: true,
	}
	LinearCell = Type{
		Integration: Sum, Activation: ID,
		RevIntegration: Sum, RevActivation: ConstOne,
		Name:       "linear",
		Perceptron: true,
		Linear:     true,
	}
	// MultiplicativeCell multiplies its weighted inputs. Its reverse activation is ID so that the
	// gradient leaving the cell is scaled by the full product; the DMultiplicative cells in front of
	// it divide their own factor back out.
	MultiplicativeCell = Type{
		Integration: Mult, Activation: ID,
		RevIntegration: Sum, RevActivation: ID,
		Name: "multiplicative",
	}
	// DMultiplicativeCell passes its single input through and inverts it on the way back.
	DMultiplicativeCell = Type{
		Integration: LastID, Activation: ID,
		RevIntegration: LastID, RevActivation: Invert,
		Name: "dmultiplicative",
	}
)

// IsValue reports whether t holds externally assigned values rather than computed ones.
func (t Type) IsValue() bool {
	return t.Integration == NoIntegration && t.Activation == None
}

func (t Type) String() string { return t.Name }

// Format implements fmt.Formatter. %+v prints the full function table.
func (t Type) Format(s fmt.State, c rune) {
	if c == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s{%v/%v rev %v/%v}", t.Name, t.Integration, t.Activation, t.RevIntegration, t.RevActivation)
		return
	}
	fmt.Fprint(s, t.Name)
}
