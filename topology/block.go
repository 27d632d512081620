package topology

import (
	"fmt"

	"github.com/gorgonia/cellnet/cell"
)

const (
	// NoLayer is the layer of cells created outside of any layer.
	NoLayer = -1
	// NoBlock is returned by BlockOf for cells that are not part of the topology.
	NoBlock = -1
	// NoComputation is the computation index of value blocks.
	NoComputation = -1
)

// Connector tags a block as a connection point when whole layers are linked together.
type Connector uint8

const (
	ConnNone Connector = iota
	ConnIn
	ConnOut
	ConnBoth
)

func (c Connector) IsIn() bool  { return c&ConnIn != 0 }
func (c Connector) IsOut() bool { return c&ConnOut != 0 }

func (c Connector) String() string {
	switch c {
	case ConnNone:
		return "none"
	case ConnIn:
		return "in"
	case ConnOut:
		return "out"
	case ConnBoth:
		return "in/out"
	}
	return fmt.Sprintf("Connector(%d)", uint8(c))
}

// Block is a contiguous range of cells of one cell type.
//
// Preds* address the block's incoming links in Topology.Links, Succs* its outgoing links in
// Topology.LinksRev. Both are flat offsets (multiples of link.Size); *Num is a link count.
type Block struct {
	Lo, Hi, Num int

	InDeg, OutDeg int

	PredsLo, PredsHi, PredsNum int
	SuccsLo, SuccsHi, SuccsNum int

	Layer   int
	CompIdx int
	Conn    Connector
	Type    cell.Type
}

// Contains reports whether cell c is part of the block.
func (b *Block) Contains(c int) bool { return c >= b.Lo && c <= b.Hi }

func (b Block) String() string {
	return fmt.Sprintf("%v[%d..%d] layer %d comp %d conn %v in %d out %d", b.Type, b.Lo, b.Hi, b.Layer, b.CompIdx, b.Conn, b.InDeg, b.OutDeg)
}
