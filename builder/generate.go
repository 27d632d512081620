package builder

import (
	"github.com/gorgonia/cellnet/engine"
	"github.com/gorgonia/cellnet/link"
	"github.com/gorgonia/cellnet/topology"
	"github.com/pkg/errors"
)

// Generate compiles the recorded topology into a reset network. After Generate the builder accepts no
// further modification until Clear is called.
func (b *Builder) Generate() (*engine.Network, error) {
	if b.err != nil {
		return nil, b.err
	}
	switch {
	case b.state == compiled:
		return nil, errors.WithStack(ErrNoModificationAllowed)
	case b.state == inLayer:
		return nil, errors.WithStack(ErrOpenLayer)
	case b.inputLayer == topology.NoLayer:
		return nil, errors.WithStack(ErrNoInputLayer)
	case b.outputLayer == topology.NoLayer:
		return nil, errors.WithStack(ErrNoOutputLayer)
	}

	t := &topology.Topology{
		CellsNum:          b.cellsNum,
		ValueCellsNum:     b.valueCellsNum,
		ComputingCellsNum: b.computingCellsNum,
		InputLayer:        b.inputLayer,
		OutputLayer:       b.outputLayer,
		Layers:            make([]topology.Layer, len(b.layers)),
		Blocks:            make([]topology.Block, len(b.blocks)),
	}
	copy(t.Layers, b.layers)
	copy(t.Blocks, b.blocks)
	t.Index()

	assigns := make([]topology.Assignment, 0, len(b.assignOrder))
	for _, c := range b.assignOrder {
		if c >= b.cellsNum {
			return nil, errors.Wrapf(ErrInvalidCell, "assign to %d of %d cells", c, b.cellsNum)
		}
		assigns = append(assigns, topology.Assignment{Cell: c, Value: b.assigns[c]})
	}

	if err := setupLinks(t, b.links); err != nil {
		return nil, err
	}
	setupBlocks(t)
	setupLayers(t, b.offline)

	frames := b.conf.Frames
	if !t.Recurrent {
		frames = 1
	}
	data := topology.NewBuffers(t.CellsNum, frames, t.WeightsNum, assigns)
	net := engine.New(t, data)
	net.Reset()

	b.state = compiled
	return net, nil
}

// setupLinks sorts and deduplicates the recorded links, assigns weight indices, detects recurrence and
// builds the reversed table.
func setupLinks(t *topology.Topology, recorded link.Table) error {
	links := recorded.Clone()
	if err := links.Check(); err != nil {
		return err
	}
	link.SortDstMajor(links)
	links = link.Dedup(links)
	if err := links.Check(); err != nil {
		return err
	}

	inDeg := make([]int, t.CellsNum)
	outDeg := make([]int, t.CellsNum)
	woff := 1
	for l := 0; l < len(links); l += link.Size {
		src, dst := links[l+link.Src], links[l+link.Dst]
		if src < 0 || src >= t.CellsNum || dst < 0 || dst >= t.CellsNum {
			return errors.Wrapf(ErrInvalidCell, "link (%d,%d) with %d cells", src, dst, t.CellsNum)
		}
		inDeg[dst]++
		outDeg[src]++
		if t.LayerOf(src) >= t.LayerOf(dst) {
			t.Recurrent = true
		}
		switch links[l+link.Weight] {
		case link.WeightNeeded:
			links[l+link.Weight] = woff
			woff++
		case link.NoWeight:
			links[l+link.Weight] = 0
		}
	}
	t.WeightsNum = woff - 1
	t.Links = links
	t.LinksNum = links.Len()
	t.LinksRev = link.Reverse(links)

	for a := range t.Blocks {
		blk := &t.Blocks[a]
		for c := blk.Lo; c <= blk.Hi; c++ {
			blk.InDeg += inDeg[c]
			blk.OutDeg += outDeg[c]
		}
	}
	return nil
}

// setupBlocks locates every block's predecessor range in Links and successor range in LinksRev.
// Blocks are ordered by cell index, so one resumable scan per table suffices.
func setupBlocks(t *topology.Topology) {
	links := t.Links
	l := 0
	for a := range t.Blocks {
		blk := &t.Blocks[a]
		if blk.Num <= 0 || blk.InDeg == 0 {
			continue
		}
		for l < len(links) && links[l+link.Dst] < blk.Lo {
			l += link.Size
		}
		blk.PredsLo = l
		for l < len(links) && links[l+link.Dst] <= blk.Hi {
			l += link.Size
			blk.PredsNum++
		}
		blk.PredsHi = l - link.Size
	}

	// after the swap the dst field of LinksRev holds the original source
	rev := t.LinksRev
	l = 0
	for a := range t.Blocks {
		blk := &t.Blocks[a]
		if blk.Num <= 0 || blk.OutDeg == 0 {
			continue
		}
		for l < len(rev) && rev[l+link.Dst] < blk.Lo {
			l += link.Size
		}
		blk.SuccsLo = l
		for l < len(rev) && rev[l+link.Dst] <= blk.Hi {
			l += link.Size
			blk.SuccsNum++
		}
		blk.SuccsHi = l - link.Size
	}
}

// setupLayers computes the computation packages and degrees of every layer, settles the execution flags
// and copies the input and output ranges.
func setupLayers(t *topology.Topology, offline bool) {
	reversed := false
	for i := range t.Layers {
		layer := &t.Layers[i]
		if layer.Dir == topology.Reversed {
			reversed = true
		}

		width := 0
		for a := layer.BlocksLo; a <= layer.BlocksHi; a++ {
			blk := &t.Blocks[a]
			layer.InDeg += blk.InDeg
			layer.OutDeg += blk.OutDeg
			if blk.CompIdx+1 > width {
				width = blk.CompIdx + 1
			}
		}
		layer.CompWidth = width
		layer.CompLo = make([]int, width)
		layer.CompHi = make([]int, width)

		// value blocks carry no computation index and join the package in front of them
		cidx, idx := -1, -1
		for a := layer.BlocksLo; a <= layer.BlocksHi; a++ {
			ci := t.Blocks[a].CompIdx
			switch {
			case ci > cidx:
				cidx, idx = ci, ci
				layer.CompLo[idx] = a
				layer.CompHi[idx] = a
			case idx >= 0:
				layer.CompHi[idx]++
			}
		}
	}

	t.Offline = t.Recurrent && offline
	t.Bidirectional = t.Recurrent && reversed
	if t.Bidirectional {
		t.Offline = true
	} else {
		for i := range t.Layers {
			t.Layers[i].Dir = topology.Forward
		}
	}

	in, out := &t.Layers[t.InputLayer], &t.Layers[t.OutputLayer]
	t.InLo, t.InHi, t.InNum = in.Lo, in.Hi, in.Num
	t.OutLo, t.OutHi, t.OutNum = out.Lo, out.Hi, out.Num
}
