package train

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// InputWriter is anything that takes input values for its current frame.
type InputWriter interface {
	Input(buf []float64, off int)
	InputSelected(buf []float64, off int, sel []int)
}

// TargetWriter is anything that takes target values for its current frame.
type TargetWriter interface {
	Target(buf []float64, off int)
	TargetSelected(buf []float64, off int, sel []int)
}

// Sample is an input sequence with its target sequence. Input and Target are matrices with one row per
// time frame.
type Sample struct {
	Tag    string
	Input  *tensor.Dense
	Target *tensor.Dense
}

// NewSample creates a single frame sample. It panics if input or target is empty.
func NewSample(input, target []float64) *Sample {
	s, err := NewSequenceSample(input, target, len(input), len(target))
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return s
}

// NewSequenceSample creates a sample from flat sequences of inSize and tgtSize wide vectors.
// The backing slices are not copied.
func NewSequenceSample(input, target []float64, inSize, tgtSize int) (*Sample, error) {
	if inSize <= 0 || len(input) == 0 || len(input)%inSize != 0 {
		return nil, errors.Wrapf(ErrSampleShape, "input of %d values with vectors of %d", len(input), inSize)
	}
	if tgtSize <= 0 || len(target) == 0 || len(target)%tgtSize != 0 {
		return nil, errors.Wrapf(ErrSampleShape, "target of %d values with vectors of %d", len(target), tgtSize)
	}
	return &Sample{
		Input:  tensor.New(tensor.WithShape(len(input)/inSize, inSize), tensor.WithBacking(input)),
		Target: tensor.New(tensor.WithShape(len(target)/tgtSize, tgtSize), tensor.WithBacking(target)),
	}, nil
}

func (s *Sample) InputLength() int  { return s.Input.Shape()[0] }
func (s *Sample) InputSize() int    { return s.Input.Shape()[1] }
func (s *Sample) TargetLength() int { return s.Target.Shape()[0] }
func (s *Sample) TargetSize() int   { return s.Target.Shape()[1] }

// Inputs returns the flat input sequence.
func (s *Sample) Inputs() []float64 { return s.Input.Data().([]float64) }

// Targets returns the flat target sequence.
func (s *Sample) Targets() []float64 { return s.Target.Data().([]float64) }

// MapInput writes input frame t into w. With a selection only the selected features are written.
func (s *Sample) MapInput(w InputWriter, t int, sel ...int) {
	off := t * s.InputSize()
	if len(sel) > 0 {
		w.InputSelected(s.Inputs(), off, sel)
		return
	}
	w.Input(s.Inputs(), off)
}

// MapTarget writes target frame t into w.
func (s *Sample) MapTarget(w TargetWriter, t int, sel ...int) {
	off := t * s.TargetSize()
	if len(sel) > 0 {
		w.TargetSelected(s.Targets(), off, sel)
		return
	}
	w.Target(s.Targets(), off)
}

// MapFinalTarget writes the last target frame into w.
func (s *Sample) MapFinalTarget(w TargetWriter) { s.MapTarget(w, s.TargetLength()-1) }

// Copy returns a deep copy.
func (s *Sample) Copy() *Sample {
	return &Sample{
		Tag:    s.Tag,
		Input:  s.Input.Clone().(*tensor.Dense),
		Target: s.Target.Clone().(*tensor.Dense),
	}
}

func (s *Sample) String() string {
	var buf bytes.Buffer
	if s.Tag != "" {
		fmt.Fprintf(&buf, "%s ", s.Tag)
	}
	fmt.Fprintf(&buf, "input %dx%d %v target %dx%d %v", s.InputLength(), s.InputSize(), s.Inputs(), s.TargetLength(), s.TargetSize(), s.Targets())
	return buf.String()
}
