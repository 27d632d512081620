package topology

// Assignment is a constant written into a cell's output on every frame when the buffers are cleared.
type Assignment struct {
	Cell  int
	Value float64
}

// Buffers holds the per-frame state of a network together with its weights.
//
// The four frame buffers are indexed [frame][cell]. Weights[0] is always 1.0 and is the weight of every
// unweighted link. Weights and Assigns are shared between a network and its shared copies.
type Buffers struct {
	Input      [][]float64
	Output     [][]float64
	GradInput  [][]float64
	GradOutput [][]float64

	Frames int
	Cells  int

	Weights []float64
	Assigns []Assignment
}

// NewBuffers allocates buffers for cells cells over frames frames with weightsNum trainable weights.
func NewBuffers(cells, frames, weightsNum int, assigns []Assignment) *Buffers {
	retVal := &Buffers{
		Cells:   cells,
		Weights: make([]float64, weightsNum+1),
		Assigns: assigns,
	}
	retVal.Weights[0] = 1.0
	retVal.Alloc(frames)
	return retVal
}

// Alloc (re)allocates the frame buffers. Previous frame contents are lost; weights are kept.
func (b *Buffers) Alloc(frames int) {
	if frames < 1 {
		frames = 1
	}
	b.Frames = frames
	b.Input = make2D(frames, b.Cells)
	b.Output = make2D(frames, b.Cells)
	b.GradInput = make2D(frames, b.Cells)
	b.GradOutput = make2D(frames, b.Cells)
}

// Clear zeroes every frame and reapplies the assignments.
func (b *Buffers) Clear() {
	for t := 0; t < b.Frames; t++ {
		zero(b.Input[t])
		zero(b.Output[t])
		zero(b.GradInput[t])
		zero(b.GradOutput[t])
		for _, a := range b.Assigns {
			b.Output[t][a.Cell] = a.Value
		}
	}
}

// SharedCopy returns buffers with their own frame state but the same weights and assignments.
func (b *Buffers) SharedCopy() *Buffers {
	return &Buffers{
		Input:      clone2D(b.Input),
		Output:     clone2D(b.Output),
		GradInput:  clone2D(b.GradInput),
		GradOutput: clone2D(b.GradOutput),
		Frames:     b.Frames,
		Cells:      b.Cells,
		Weights:    b.Weights,
		Assigns:    b.Assigns,
	}
}

// Copy returns a deep copy.
func (b *Buffers) Copy() *Buffers {
	retVal := b.SharedCopy()
	retVal.Weights = make([]float64, len(b.Weights))
	copy(retVal.Weights, b.Weights)
	retVal.Assigns = make([]Assignment, len(b.Assigns))
	copy(retVal.Assigns, b.Assigns)
	return retVal
}

// make2D allocates rows that share one backing slice.
func make2D(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	retVal := make([][]float64, rows)
	for i := range retVal {
		retVal[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return retVal
}

func clone2D(a [][]float64) [][]float64 {
	cols := 0
	if len(a) > 0 {
		cols = len(a[0])
	}
	retVal := make2D(len(a), cols)
	for i := range a {
		copy(retVal[i], a[i])
	}
	return retVal
}

func zero(a []float64) {
	for i := range a {
		a[i] = 0
	}
}
