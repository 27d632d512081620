package topology

import "fmt"

// Direction is the order in which a layer visits time frames in a bidirectional network.
type Direction uint8

const (
	Forward Direction = iota
	Reversed
)

func (d Direction) String() string {
	if d == Reversed {
		return "reversed"
	}
	return "forward"
}

// Layer groups contiguous blocks that are computed together.
//
// Blocks sharing a computation index form a computation package: package i covers the blocks
// CompLo[i]..CompHi[i] (inclusive). Packages are computed in ascending order on the forward pass and
// in descending order on the backward pass.
type Layer struct {
	Lo, Hi, Num int

	BlocksLo, BlocksHi, BlocksNum int

	CompLo, CompHi []int
	CompWidth      int

	InDeg, OutDeg int
	Dir           Direction
}

func (l Layer) String() string {
	return fmt.Sprintf("cells [%d..%d] blocks [%d..%d] packages %d %v", l.Lo, l.Hi, l.BlocksLo, l.BlocksHi, l.CompWidth, l.Dir)
}
