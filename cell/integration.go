package cell

import "fmt"

// Integration identifies how a cell combines its incoming links.
type Integration uint8

const (
	NoIntegration Integration = iota
	Sum
	Mult
	LastID
)

func (i Integration) String() string {
	switch i {
	case NoIntegration:
		return "none"
	case Sum:
		return "sum"
	case Mult:
		return "mult"
	case LastID:
		return "lastid"
	}
	return fmt.Sprintf("Integration(%d)", uint8(i))
}

// Integrate reads linksNum triples from links starting at the flat offset linksOff and accumulates
// src values into the destination cells dst[cellsOff:cellsOff+cellsNum].
//
// With no links the destination range is left as is. This is what lets a recurrent cell without
// predecessors keep the value carried over from the previous frame.
func Integrate(kind Integration, src, dst []float64, cellsOff, cellsNum int, weights []float64, links []int, linksOff, linksNum int) {
	if linksNum == 0 {
		return
	}
	end := linksOff + linksNum*3
	switch kind {
	case NoIntegration:
	case Sum:
		out := dst[cellsOff : cellsOff+cellsNum]
		for i := range out {
			out[i] = 0
		}
		for l := linksOff; l < end; l += 3 {
			dst[links[l+1]] += src[links[l]] * weights[links[l+2]]
		}
	case Mult:
		out := dst[cellsOff : cellsOff+cellsNum]
		for i := range out {
			out[i] = 1
		}
		for l := linksOff; l < end; l += 3 {
			dst[links[l+1]] *= src[links[l]] * weights[links[l+2]]
		}
	case LastID:
		for l := linksOff; l < end; l += 3 {
			dst[links[l+1]] = src[links[l]]
		}
	default:
		panic(fmt.Sprintf("cell: unknown integration %v", kind))
	}
}
