package cellnet

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/gorgonia/cellnet/builder"
	"github.com/gorgonia/cellnet/cell"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWeightsPersistence(t *testing.T) {
	assert := assert.New(t)
	a := xor(t)
	b := xor(t)
	b.InitializeWeights(rand.New(rand.NewSource(1)))
	assert.NotEqual(a.Weights(), b.Weights())

	var buf bytes.Buffer
	if err := WriteWeights(&buf, a); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := ReadWeights(&buf, b); err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(a.Weights(), b.Weights())

	filename := filepath.Join(t.TempDir(), "xor.weights")
	a.Weights()[3] = 42
	if err := Save(filename, a); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := Load(filename, b); err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(42.0, b.Weights()[3])
}

func TestWeightsIncompatible(t *testing.T) {
	assert := assert.New(t)
	m := builder.NewMLP(builder.DefaultConfig())
	m.InputLayer(2)
	m.HiddenLayer(3, cell.TanhCell)
	m.OutputLayer(1, cell.SigmoidCell)
	other, err := m.Generate()
	if err != nil {
		t.Fatalf("%+v", err)
	}

	var buf bytes.Buffer
	if err := WriteWeights(&buf, xor(t)); err != nil {
		t.Fatalf("%+v", err)
	}
	assert.Equal(ErrIncompatible, errors.Cause(ReadWeights(&buf, other)))
	assert.Error(Load(filepath.Join(t.TempDir(), "missing"), other))
}
