package topology

import (
	"strings"
	"testing"

	"github.com/gorgonia/cellnet/cell"
	"github.com/gorgonia/cellnet/link"
	"github.com/stretchr/testify/assert"
)

// tiny builds a two layer topology by hand:
//	layer 0: value cells 0,1 (input)
//	layer 1: tanh cell 2 (comp 0), linear cell 3 (comp 1) (output)
//	bias cell 4 outside any layer
func tiny() *Topology {
	t := &Topology{
		CellsNum:          5,
		ValueCellsNum:     3,
		ComputingCellsNum: 2,
		InLo:              0, InHi: 1, InNum: 2,
		OutLo: 3, OutHi: 3, OutNum: 1,
		InputLayer:  0,
		OutputLayer: 1,
		Layers: []Layer{
			{Lo: 0, Hi: 1, Num: 2, BlocksLo: 0, BlocksHi: 0, BlocksNum: 1},
			{Lo: 2, Hi: 3, Num: 2, BlocksLo: 1, BlocksHi: 2, BlocksNum: 2, CompLo: []int{1, 2}, CompHi: []int{1, 2}, CompWidth: 2},
		},
		Blocks: []Block{
			{Lo: 0, Hi: 1, Num: 2, Layer: 0, CompIdx: NoComputation, Type: cell.Value, Conn: ConnBoth},
			{Lo: 2, Hi: 2, Num: 1, Layer: 1, CompIdx: 0, Type: cell.TanhCell, Conn: ConnIn},
			{Lo: 3, Hi: 3, Num: 1, Layer: 1, CompIdx: 1, Type: cell.LinearCell, Conn: ConnOut},
			{Lo: 4, Hi: 4, Num: 1, Layer: NoLayer, CompIdx: NoComputation, Type: cell.Value},
		},
		Links: link.Table{
			0, 2, 1,
			1, 2, 2,
			4, 2, 0,
			3, 2, 3,
			2, 3, 4,
		},
		LinksNum:   5,
		WeightsNum: 4,
		Recurrent:  true,
	}
	t.Index()
	return t
}

func TestBlockOf(t *testing.T) {
	assert := assert.New(t)
	topo := tiny()
	assert.Equal([]int{0, 0, 1, 2, 3}, []int{topo.BlockOf(0), topo.BlockOf(1), topo.BlockOf(2), topo.BlockOf(3), topo.BlockOf(4)})
	assert.Equal(NoBlock, topo.BlockOf(5))
	assert.Equal(NoBlock, topo.BlockOf(-1))
	assert.Equal(NoLayer, topo.LayerOf(4))
	assert.Equal(1, topo.LayerOf(3))
	assert.True(topo.IsOutputCell(3))
	assert.False(topo.IsOutputCell(2))
}

func TestDelayed(t *testing.T) {
	assert := assert.New(t)
	topo := tiny()
	assert.False(topo.Delayed(0, 2), "input to hidden")
	assert.False(topo.Delayed(4, 2), "bias")
	assert.False(topo.Delayed(2, 3), "lower computation index")
	assert.True(topo.Delayed(3, 2), "higher computation index")
	assert.True(topo.Delayed(2, 2), "self")
}

func TestBuffers(t *testing.T) {
	assert := assert.New(t)
	b := NewBuffers(3, 2, 4, []Assignment{{Cell: 2, Value: 1}})
	assert.Equal(5, len(b.Weights))
	assert.Equal(1.0, b.Weights[0])
	assert.Equal(2, b.Frames)

	b.Output[1][0] = 42
	b.GradInput[0][1] = 7
	b.Clear()
	assert.Equal([]float64{0, 0, 1}, b.Output[0])
	assert.Equal([]float64{0, 0, 1}, b.Output[1])
	assert.Equal([]float64{0, 0, 0}, b.GradInput[0])

	shared := b.SharedCopy()
	shared.Output[0][0] = 3
	assert.Equal(0.0, b.Output[0][0])
	shared.Weights[1] = 0.5
	assert.Equal(0.5, b.Weights[1])

	deep := b.Copy()
	deep.Weights[1] = -1
	assert.Equal(0.5, b.Weights[1])

	// rows do not bleed into each other
	b.Output[0] = append(b.Output[0], 9)
	assert.Equal(0.0, b.Output[1][0])

	b.Alloc(0)
	assert.Equal(1, b.Frames)
	assert.Equal(0.5, b.Weights[1])
}

func TestToDot(t *testing.T) {
	assert := assert.New(t)
	dot, err := ToDot(tiny())
	if !assert.NoError(err) {
		return
	}
	assert.True(strings.Contains(dot, "cluster_0"))
	assert.True(strings.Contains(dot, "cluster_1"))
	assert.True(strings.Contains(dot, "b3"))
	assert.True(strings.Contains(dot, "b0->b1"))
	assert.True(strings.Contains(dot, "b2->b1"))
}

func TestString(t *testing.T) {
	s := tiny().String()
	for _, want := range []string{"cells: 5", "links: 5, weights: 4", "recurrent: true", "layer 1:", "block 3:"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in\n%s", want, s)
		}
	}
}
