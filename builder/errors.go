package builder

import "github.com/pkg/errors"

var (
	// ErrNoModificationAllowed is recorded when a compiled builder (or a sealed macro) is modified.
	ErrNoModificationAllowed = errors.New("no modification allowed")
	// ErrNoInputLayer is recorded when no input layer has been defined.
	ErrNoInputLayer = errors.New("no input layer defined")
	// ErrNoOutputLayer is recorded when no output layer has been defined.
	ErrNoOutputLayer = errors.New("no output layer defined")
	// ErrOnlyPerceptrons is recorded when a perceptron layer is given a non-perceptron cell type.
	ErrOnlyPerceptrons = errors.New("only perceptron cell types allowed")
	// ErrGeneratingFailed is returned when the generated network does not have the required shape.
	ErrGeneratingFailed = errors.New("generating failed")
	// ErrOpenLayer is returned by Generate while a layer is still open.
	ErrOpenLayer = errors.New("layer not closed")
	// ErrInvalidLayer is recorded when an operation names a layer that does not exist.
	ErrInvalidLayer = errors.New("invalid layer")
	// ErrInvalidCell is recorded when a link or assignment refers to a cell that does not exist.
	ErrInvalidCell = errors.New("invalid cell")
)
