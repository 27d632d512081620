package cellnet

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/gorgonia/cellnet/engine"
	"github.com/pkg/errors"
)

// snapshot is the persisted form of a network's weights. The shape fields guard against loading into a
// different network.
type snapshot struct {
	Cells   int
	Links   int
	Weights []float64
}

// WriteWeights gob encodes the trainable weights of net into w.
func WriteWeights(w io.Writer, net *engine.Network) error {
	s := snapshot{
		Cells:   net.Topology().CellsNum,
		Links:   net.LinksNum(),
		Weights: make([]float64, net.WeightsNum()),
	}
	net.ReadWeights(s.Weights, 0)
	return errors.WithStack(gob.NewEncoder(w).Encode(s))
}

// ReadWeights decodes weights written by WriteWeights into net.
func ReadWeights(r io.Reader, net *engine.Network) error {
	var s snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return errors.WithStack(err)
	}
	if s.Cells != net.Topology().CellsNum || s.Links != net.LinksNum() || len(s.Weights) != net.WeightsNum() {
		return errors.Wrapf(ErrIncompatible, "%d cells, %d links, %d weights into %v", s.Cells, s.Links, len(s.Weights), net)
	}
	net.WriteWeights(s.Weights, 0)
	return nil
}

// Save writes the weights of net into filename.
func Save(filename string, net *engine.Network) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return WriteWeights(f, net)
}

// Load reads the weights of net from filename.
func Load(filename string, net *engine.Network) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return ReadWeights(f, net)
}
