// Package cellnet serves compiled networks to concurrent callers and persists their weights.
//
// Networks are described with package builder, executed by package engine and trained by package train.
// A typical program builds a network, trains it, then hands it to a Pool:
//
//	m := builder.NewMLP(builder.DefaultConfig())
//	m.InputLayer(2)
//	m.HiddenLayer(4, cell.TanhCell, 1)
//	m.OutputLayer(1, cell.SigmoidCell, 1)
//	net, err := m.Generate()
//	...
//	pool := cellnet.NewPool(net, 0)
//	defer pool.Close()
//	out, err := pool.Infer([]float32{0, 1})
package cellnet

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrClosed       = errors.New("pool is closed")
	ErrInputSize    = errors.New("input size mismatch")
	ErrIncompatible = errors.New("weights do not fit the network")
)

// ExecLogger is anything that can return the execution log.
type ExecLogger interface {
	ExecLog() string
}

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintf(&buf, "%v\n", e)
	}
	return buf.String()
}
