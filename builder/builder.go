// Package builder records network topologies and compiles them into executable networks.
//
// A Builder is used in three phases: cells and links are recorded (optionally grouped into layers),
// Generate compiles the record, and from then on the Builder refuses further modification.
//
// Errors are sticky. The first failing call records its error, every following call is a no-op and
// Generate returns the recorded error. This keeps long building sequences free of error checks.
package builder

import (
	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/link"
	"github.com/gorgonia/cellnet/topology"
	"github.com/pkg/errors"
)

type state byte

const (
	idle state = iota
	inLayer
	compiled
)

// Builder records cells, layers and links.
type Builder struct {
	conf    Config
	state   state
	err     error
	offline bool

	cellsNum          int
	valueCellsNum     int
	computingCellsNum int

	blocks []topology.Block
	layers []topology.Layer
	links  link.Table

	assigns     map[int]float64
	assignOrder []int

	conn    topology.Connector
	compIdx int
	compCtr int

	inputLayer  int
	outputLayer int
}

// New creates a Builder. It panics if conf is not valid.
func New(conf Config) *Builder {
	if !conf.IsValid() {
		panic("builder config is not valid")
	}
	retVal := &Builder{conf: conf}
	retVal.Clear()
	return retVal
}

// Clear discards everything recorded so far, including a previous compilation and any recorded error.
func (b *Builder) Clear() {
	b.state = idle
	b.err = nil
	b.offline = b.conf.Offline
	b.cellsNum = 0
	b.valueCellsNum = 0
	b.computingCellsNum = 0
	b.blocks = b.blocks[:0]
	b.layers = b.layers[:0]
	b.links = link.Make(64)
	b.assigns = make(map[int]float64)
	b.assignOrder = b.assignOrder[:0]
	b.conn = topology.ConnBoth
	b.compIdx = 0
	b.compCtr = 0
	b.inputLayer = topology.NoLayer
	b.outputLayer = topology.NoLayer
}

// Err returns the first recorded error.
func (b *Builder) Err() error { return b.err }

// fail records err unless an error has already been recorded.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// mutable reports whether recording may proceed.
func (b *Builder) mutable() bool {
	if b.err != nil {
		return false
	}
	if b.state == compiled {
		b.fail(errors.WithStack(ErrNoModificationAllowed))
		return false
	}
	return true
}

// CellsNum returns the number of cells recorded so far.
func (b *Builder) CellsNum() int { return b.cellsNum }

// LayersNum returns the number of layers recorded so far, including an open one.
func (b *Builder) LayersNum() int { return len(b.layers) }

// BeginLayer opens a new layer and returns its index. If a layer is already open its index is returned.
// Connectors are reset to ConnBoth.
func (b *Builder) BeginLayer() int {
	if !b.mutable() {
		return topology.NoLayer
	}
	if b.state == inLayer {
		return len(b.layers) - 1
	}
	b.layers = append(b.layers, topology.Layer{
		Lo:       b.cellsNum,
		BlocksLo: len(b.blocks),
		Dir:      topology.Forward,
	})
	b.conn = topology.ConnBoth
	b.compIdx = 0
	b.compCtr = 0
	b.state = inLayer
	return len(b.layers) - 1
}

// EndLayer closes the open layer and returns its index.
func (b *Builder) EndLayer() int {
	if !b.mutable() {
		return topology.NoLayer
	}
	idx := len(b.layers) - 1
	if b.state != inLayer {
		return idx
	}
	l := &b.layers[idx]
	l.BlocksNum = len(b.blocks) - l.BlocksLo
	l.BlocksHi = l.BlocksLo + l.BlocksNum - 1
	l.Num = b.cellsNum - l.Lo
	l.Hi = l.Lo + l.Num - 1

	b.compIdx = 0
	b.compCtr = 0
	b.state = idle
	return idx
}

// Cells allocates n cells of the given type as one block and returns the index of the first cell.
//
// Inside a layer the block belongs to the layer, carries the current connector tag and, unless it is a
// value block, the current computation index.
func (b *Builder) Cells(n int, typ cell.Type) int {
	if !b.mutable() {
		return -1
	}
	if n < 0 {
		b.fail(errors.Errorf("cannot allocate %d cells", n))
		return -1
	}
	first := b.cellsNum
	b.cellsNum += n

	blk := topology.Block{
		Lo:      first,
		Hi:      first + n - 1,
		Num:     n,
		Layer:   topology.NoLayer,
		CompIdx: b.compIdx,
		Conn:    b.conn,
		Type:    typ,
	}
	if b.state == inLayer {
		blk.Layer = len(b.layers) - 1
	}
	if typ.IsValue() {
		blk.CompIdx = topology.NoComputation
		b.valueCellsNum += n
	} else {
		b.computingCellsNum += n
		if b.state == inLayer {
			b.compCtr++
		}
	}
	b.blocks = append(b.blocks, blk)
	return first
}

// Cell allocates a single cell.
func (b *Builder) Cell(typ cell.Type) int { return b.Cells(1, typ) }

func (b *Builder) ValueCell() int                { return b.Cells(1, cell.Value) }
func (b *Builder) ValueCells(n int) int          { return b.Cells(n, cell.Value) }
func (b *Builder) SigmoidCells(n int) int        { return b.Cells(n, cell.SigmoidCell) }
func (b *Builder) TanhCells(n int) int           { return b.Cells(n, cell.TanhCell) }
func (b *Builder) LinearCells(n int) int         { return b.Cells(n, cell.LinearCell) }
func (b *Builder) MultiplicativeCells(n int) int { return b.Cells(n, cell.MultiplicativeCell) }
func (b *Builder) DMultiplicativeCells(n int) int {
	return b.Cells(n, cell.DMultiplicativeCell)
}

// InputConnectors tags the following blocks as inputs of their layer.
func (b *Builder) InputConnectors() { b.connectors(topology.ConnIn) }

// OutputConnectors tags the following blocks as outputs of their layer.
func (b *Builder) OutputConnectors() { b.connectors(topology.ConnOut) }

// NonConnectors tags the following blocks as internal to their layer.
func (b *Builder) NonConnectors() { b.connectors(topology.ConnNone) }

// InputOutputConnectors tags the following blocks as both inputs and outputs of their layer.
func (b *Builder) InputOutputConnectors() { b.connectors(topology.ConnBoth) }

func (b *Builder) connectors(c topology.Connector) {
	if b.mutable() {
		b.conn = c
	}
}

// ShiftComputationIndex makes the following blocks of the open layer depend on the blocks created so far.
// It has no effect outside a layer or when no computing block was added since the last shift.
func (b *Builder) ShiftComputationIndex() {
	if !b.mutable() {
		return
	}
	if b.state == inLayer && b.compCtr > 0 {
		b.compIdx++
		b.compCtr = 0
	}
}

// Link adds an unweighted link from cell i to cell j.
func (b *Builder) Link(i, j int) {
	if b.mutable() {
		b.links.Add(i, j, link.NoWeight)
	}
}

// WeightedLink adds a link from cell i to cell j with its own trainable weight.
func (b *Builder) WeightedLink(i, j int) {
	if b.mutable() {
		b.links.Add(i, j, link.WeightNeeded)
	}
}

// LinkRange fully connects the ni cells starting at i with the nj cells starting at j.
func (b *Builder) LinkRange(i, ni, j, nj int) { b.linkRange(i, ni, j, nj, link.NoWeight) }

// WeightedLinkRange is LinkRange with weighted links.
func (b *Builder) WeightedLinkRange(i, ni, j, nj int) { b.linkRange(i, ni, j, nj, link.WeightNeeded) }

// LinkSymmetric links cell i+k to cell j+k for k in [0, n).
func (b *Builder) LinkSymmetric(i, j, n int) { b.linkSymmetric(i, j, n, link.NoWeight) }

// WeightedLinkSymmetric is LinkSymmetric with weighted links.
func (b *Builder) WeightedLinkSymmetric(i, j, n int) { b.linkSymmetric(i, j, n, link.WeightNeeded) }

// LinkLayer fully connects every output connector block of layer l1 with every input connector block of
// layer l2.
func (b *Builder) LinkLayer(l1, l2 int) { b.linkLayer(l1, l2, link.NoWeight) }

// WeightedLinkLayer is LinkLayer with weighted links.
func (b *Builder) WeightedLinkLayer(l1, l2 int) { b.linkLayer(l1, l2, link.WeightNeeded) }

func (b *Builder) linkRange(i, ni, j, nj, w int) {
	if !b.mutable() {
		return
	}
	for jj := j; jj < j+nj; jj++ {
		for ii := i; ii < i+ni; ii++ {
			b.links.Add(ii, jj, w)
		}
	}
}

func (b *Builder) linkSymmetric(i, j, n, w int) {
	if !b.mutable() {
		return
	}
	for k := 0; k < n; k++ {
		b.links.Add(i+k, j+k, w)
	}
}

func (b *Builder) linkLayer(l1, l2, w int) {
	if !b.mutable() || !b.checkLayer(l1) || !b.checkLayer(l2) {
		return
	}
	from, to := &b.layers[l1], &b.layers[l2]
	for i := from.BlocksLo; i < b.blocksEnd(l1); i++ {
		a1 := &b.blocks[i]
		if !a1.Conn.IsOut() {
			continue
		}
		for j := to.BlocksLo; j < b.blocksEnd(l2); j++ {
			a2 := &b.blocks[j]
			if !a2.Conn.IsIn() {
				continue
			}
			b.linkRange(a1.Lo, a1.Num, a2.Lo, a2.Num, w)
		}
	}
}

// blocksEnd returns one past the last block of layer l, which may still be open.
func (b *Builder) blocksEnd(l int) int {
	if b.state == inLayer && l == len(b.layers)-1 {
		return len(b.blocks)
	}
	return b.layers[l].BlocksLo + b.layers[l].BlocksNum
}

// Assign fixes the output of cell c to value on every frame. Later assignments to the same cell win.
func (b *Builder) Assign(c int, value float64) {
	if !b.mutable() {
		return
	}
	if c < 0 {
		b.fail(errors.Wrapf(ErrInvalidCell, "assign to %d", c))
		return
	}
	if _, ok := b.assigns[c]; !ok {
		b.assignOrder = append(b.assignOrder, c)
	}
	b.assigns[c] = value
}

func (b *Builder) DefineInputLayer(l int) {
	if b.mutable() && b.checkLayer(l) {
		b.inputLayer = l
	}
}

func (b *Builder) DefineOutputLayer(l int) {
	if b.mutable() && b.checkLayer(l) {
		b.outputLayer = l
	}
}

// DefineLayerAsReversed makes layer l visit frames last to first. It only has an effect on recurrent
// networks, which then become bidirectional.
func (b *Builder) DefineLayerAsReversed(l int) {
	if b.mutable() && b.checkLayer(l) {
		b.layers[l].Dir = topology.Reversed
	}
}

func (b *Builder) DefineLayerAsRegular(l int) {
	if b.mutable() && b.checkLayer(l) {
		b.layers[l].Dir = topology.Forward
	}
}

// LayerCells returns the first cell and the number of cells of layer l.
func (b *Builder) LayerCells(l int) (first, num int) {
	if l < 0 || l >= len(b.layers) {
		return -1, 0
	}
	first = b.layers[l].Lo
	if b.state == inLayer && l == len(b.layers)-1 {
		return first, b.cellsNum - first
	}
	return first, b.layers[l].Num
}

// ComputeOnline makes recurrent networks compute one frame per call.
func (b *Builder) ComputeOnline() {
	if b.mutable() {
		b.offline = false
	}
}

// ComputeOffline makes recurrent networks compute whole sequences per call.
func (b *Builder) ComputeOffline() {
	if b.mutable() {
		b.offline = true
	}
}

func (b *Builder) checkLayer(l int) bool {
	if l < 0 || l >= len(b.layers) {
		b.fail(errors.Wrapf(ErrInvalidLayer, "layer %d of %d", l, len(b.layers)))
		return false
	}
	return true
}
