package topology

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

type blockPair struct{ src, dst int }

type edgeStat struct {
	links    int
	weighted bool
}

// ToDot renders the block graph of t in the Graphviz dot language. Every layer becomes a cluster,
// every block a node, and all links between two blocks a single edge labelled with the link count.
func ToDot(t *Topology) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.AddAttr("G", "rankdir", "LR"); err != nil {
		return "", errors.WithStack(err)
	}

	for i, l := range t.Layers {
		label := fmt.Sprintf("layer %d", i)
		switch i {
		case t.InputLayer:
			label += " (input)"
		case t.OutputLayer:
			label += " (output)"
		}
		if l.Dir == Reversed {
			label += " reversed"
		}
		attrs := map[string]string{
			"label": strconv.Quote(label),
			"style": "rounded",
		}
		if err := g.AddSubGraph("G", clusterName(i), attrs); err != nil {
			return "", errors.Wrapf(err, "layer %d", i)
		}
	}

	for i, b := range t.Blocks {
		parent := "G"
		if b.Layer != NoLayer {
			parent = clusterName(b.Layer)
		}
		shape := "box"
		if b.Type.IsValue() {
			shape = "ellipse"
		}
		label := fmt.Sprintf("%v\n[%d..%d]", b.Type, b.Lo, b.Hi)
		if b.CompIdx != NoComputation {
			label += fmt.Sprintf("\nc%d", b.CompIdx)
		}
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    shape,
			"label":    strconv.Quote(label),
		}
		if err := g.AddNode(parent, blockName(i), attrs); err != nil {
			return "", errors.Wrapf(err, "block %d", i)
		}
	}

	edges := make(map[blockPair]*edgeStat)
	var order []blockPair
	for i := 0; i < t.Links.Len(); i++ {
		k := blockPair{t.BlockOf(t.Links.Src(i)), t.BlockOf(t.Links.Dst(i))}
		if k.src == NoBlock || k.dst == NoBlock {
			continue
		}
		s, ok := edges[k]
		if !ok {
			s = new(edgeStat)
			edges[k] = s
			order = append(order, k)
		}
		s.links++
		s.weighted = s.weighted || t.Links.Weight(i) > 0
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].src != order[j].src {
			return order[i].src < order[j].src
		}
		return order[i].dst < order[j].dst
	})
	for _, k := range order {
		s := edges[k]
		label := strconv.Itoa(s.links)
		if s.weighted {
			label += "w"
		}
		attrs := map[string]string{"label": strconv.Quote(label)}
		if !s.weighted {
			attrs["style"] = "dashed"
		}
		if err := g.AddEdge(blockName(k.src), blockName(k.dst), true, attrs); err != nil {
			return "", errors.WithStack(err)
		}
	}
	return g.String(), nil
}

func clusterName(layer int) string { return "cluster_" + strconv.Itoa(layer) }

func blockName(b int) string { return "b" + strconv.Itoa(b) }
