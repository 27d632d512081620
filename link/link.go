// Package link implements the flat link table shared by the builder and the execution engine.
//
// A link is a triple (src, dst, weight) of cell indices and a weight index. Triples are stored
// back to back in a single []int so that the hot loops of the engine walk a contiguous slice.
package link

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// Size is the number of ints per link.
	Size = 3

	Src    = 0
	Dst    = 1
	Weight = 2

	// NoWeight marks an unweighted link before compilation. Compiled unweighted links refer to
	// weight slot 0, which always holds 1.0.
	NoWeight = -1
	// WeightNeeded marks a weighted link before compilation.
	WeightNeeded = -2
)

// ErrCorrupt is returned when a table's length is not a multiple of Size.
var ErrCorrupt = errors.New("link array corrupt")

// Table is a flat sequence of link triples.
type Table []int

// Make creates an empty table with room for n links.
func Make(n int) Table { return make(Table, 0, n*Size) }

// Add appends a link.
func (t *Table) Add(src, dst, weight int) { *t = append(*t, src, dst, weight) }

// Len returns the number of links.
func (t Table) Len() int { return len(t) / Size }

func (t Table) Src(i int) int    { return t[i*Size+Src] }
func (t Table) Dst(i int) int    { return t[i*Size+Dst] }
func (t Table) Weight(i int) int { return t[i*Size+Weight] }

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	retVal := make(Table, len(t))
	copy(retVal, t)
	return retVal
}

// Check returns ErrCorrupt if t does not hold whole triples.
func (t Table) Check() error {
	if len(t)%Size != 0 {
		return errors.Wrapf(ErrCorrupt, "length %d", len(t))
	}
	return nil
}

// SwapEndpoints exchanges src and dst of every link in place.
func SwapEndpoints(t Table) {
	for i := 0; i+Size <= len(t); i += Size {
		t[i+Src], t[i+Dst] = t[i+Dst], t[i+Src]
	}
}

// Reverse returns the reversed view of a compiled table: sorted by source, with src and dst exchanged,
// so that the dst field of the result holds the original source cell.
func Reverse(t Table) Table {
	retVal := t.Clone()
	SortSrcMajor(retVal)
	SwapEndpoints(retVal)
	return retVal
}

// Dedup removes links whose (src, dst) pair equals the previously kept one. The table must be sorted.
// The first occurrence wins, weight marker included.
func Dedup(t Table) Table {
	if len(t) < Size {
		return t
	}
	w := Size
	for r := Size; r+Size <= len(t); r += Size {
		last := w - Size
		if t[r+Src] == t[last+Src] && t[r+Dst] == t[last+Dst] {
			continue
		}
		if w != r {
			copy(t[w:w+Size], t[r:r+Size])
		}
		w += Size
	}
	return t[:w]
}

func (t Table) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i+Size <= len(t); i += Size {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "(%d,%d,%d)", t[i+Src], t[i+Dst], t[i+Weight])
	}
	buf.WriteByte(']')
	return buf.String()
}
