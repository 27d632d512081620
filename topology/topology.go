// Package topology holds the compiled form of a network: cell blocks, layers, link tables and the
// per-frame data buffers the engine computes on.
package topology

import (
	"bytes"
	"fmt"

	"github.com/gorgonia/cellnet/link"
)

// Topology is the immutable result of compiling a network. It is shared read-only by all copies of a
// network.
type Topology struct {
	CellsNum          int
	ValueCellsNum     int
	ComputingCellsNum int

	InLo, InHi, InNum    int
	OutLo, OutHi, OutNum int

	InputLayer  int
	OutputLayer int

	Layers []Layer
	Blocks []Block

	// Links is sorted by (dst, src). LinksRev is sorted by source and has src and dst exchanged.
	Links      link.Table
	LinksRev   link.Table
	LinksNum   int
	WeightsNum int

	Recurrent     bool
	Offline       bool
	Bidirectional bool

	blockOf []int
}

// Index rebuilds the cell to block map. It must be called once the blocks are final.
func (t *Topology) Index() {
	t.blockOf = make([]int, t.CellsNum)
	for i := range t.blockOf {
		t.blockOf[i] = NoBlock
	}
	for b := range t.Blocks {
		for c := t.Blocks[b].Lo; c <= t.Blocks[b].Hi; c++ {
			t.blockOf[c] = b
		}
	}
}

// BlockOf returns the index of the block holding cell c.
func (t *Topology) BlockOf(c int) int {
	if c < 0 || c >= len(t.blockOf) {
		return NoBlock
	}
	return t.blockOf[c]
}

// LayerOf returns the layer of cell c, or NoLayer.
func (t *Topology) LayerOf(c int) int {
	b := t.BlockOf(c)
	if b == NoBlock {
		return NoLayer
	}
	return t.Blocks[b].Layer
}

// Delayed reports whether the forward pass reads src from the neighbouring frame when computing dst.
// That is the case when dst is computed before src within a frame: src lives in a later layer, or in the
// same layer at an equal or higher computation index.
func (t *Topology) Delayed(src, dst int) bool {
	bs, bd := t.BlockOf(src), t.BlockOf(dst)
	if bs == NoBlock || bd == NoBlock {
		return false
	}
	s, d := &t.Blocks[bs], &t.Blocks[bd]
	if s.Type.IsValue() {
		return false
	}
	switch {
	case s.Layer > d.Layer:
		return true
	case s.Layer < d.Layer:
		return false
	}
	return s.CompIdx >= d.CompIdx
}

// IsOutputCell reports whether cell c is in the output range.
func (t *Topology) IsOutputCell(c int) bool { return c >= t.OutLo && c <= t.OutHi && t.OutNum > 0 }

func (t *Topology) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "cells: %d (value %d, computing %d)\n", t.CellsNum, t.ValueCellsNum, t.ComputingCellsNum)
	fmt.Fprintf(&buf, "input: [%d..%d] layer %d\n", t.InLo, t.InHi, t.InputLayer)
	fmt.Fprintf(&buf, "output: [%d..%d] layer %d\n", t.OutLo, t.OutHi, t.OutputLayer)
	fmt.Fprintf(&buf, "links: %d, weights: %d\n", t.LinksNum, t.WeightsNum)
	fmt.Fprintf(&buf, "recurrent: %t, offline: %t, bidirectional: %t\n", t.Recurrent, t.Offline, t.Bidirectional)
	for i, l := range t.Layers {
		fmt.Fprintf(&buf, "layer %d: %v\n", i, l)
		for b := l.BlocksLo; b <= l.BlocksHi && b < len(t.Blocks); b++ {
			fmt.Fprintf(&buf, "\tblock %d: %v\n", b, t.Blocks[b])
		}
	}
	for b := range t.Blocks {
		if t.Blocks[b].Layer == NoLayer {
			fmt.Fprintf(&buf, "block %d: %v\n", b, t.Blocks[b])
		}
	}
	return buf.String()
}
