package train

import (
	"bytes"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gorgonia/cellnet/engine"
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
)

// Option configures a trainer.
type Option func(t *trainer)

// WithRand sets the random source used for permutations and searches.
func WithRand(r *rand.Rand) Option {
	return func(t *trainer) { t.r = r }
}

// WithListener adds a listener.
func WithListener(l Listener) Option {
	return func(t *trainer) { t.listeners = append(t.listeners, l) }
}

// WithSolver makes GradientDescent update the weights with s instead of its own momentum rule.
// Random search ignores it.
func WithSolver(s G.Solver) Option {
	return func(t *trainer) { t.solver = s }
}

// trainer holds what both trainers share.
type trainer struct {
	name string
	net  *engine.Network
	conf Config

	r         *rand.Rand
	listeners []Listener
	solver    G.Solver

	// state
	epoch      int
	trainErr   float64
	validErr   float64
	Statistics Statistics

	buf    bytes.Buffer
	logger *log.Logger
}

func makeTrainer(name string, net *engine.Network, conf Config, opts ...Option) trainer {
	if !conf.IsValid() {
		panic("training config is not valid. Unable to proceed")
	}
	t := trainer{
		name: name,
		net:  net,
		conf: conf,
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.r == nil {
		t.r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return t
}

// Epoch returns the last epoch run.
func (t *trainer) Epoch() int { return t.epoch }

// TrainError returns the training error of the last epoch, or the best error once training is done.
func (t *trainer) TrainError() float64 { return t.trainErr }

// ValidationError returns the validation error of the last epoch, or the best one once training is done.
func (t *trainer) ValidationError() float64 { return t.validErr }

// Log returns the log of the last training run.
func (t *trainer) Log() string { return t.buf.String() }

func (t *trainer) started(set SampleSet) error {
	if len(set) == 0 {
		return errors.Wrapf(ErrEmptySet, "%s", t.name)
	}
	t.buf.Reset()
	t.logger = log.New(&t.buf, "", log.Ltime)
	t.Statistics.reset()
	t.epoch, t.trainErr, t.validErr = 0, 0, 0
	t.logger.Printf("%s on %v: %d samples, %d epochs", t.name, t.net, len(set), t.conf.Epochs)
	return nil
}

func (t *trainer) progress() Progress {
	return Progress{
		Trainer:         t.name,
		Epoch:           t.epoch,
		Epochs:          t.conf.Epochs,
		TrainError:      t.trainErr,
		ValidationError: t.validErr,
	}
}

// epochDone records the epoch and notifies the listeners. A numerically broken network aborts training.
func (t *trainer) epochDone() error {
	p := t.progress()
	t.Statistics.update(p)
	t.logger.Printf("%v", p)
	if err := t.net.NumericalCheck(); err != nil {
		return errors.WithMessage(err, fmt.Sprintf("%s epoch %d", t.name, t.epoch))
	}
	for _, l := range t.listeners {
		if err := l.Encode(p); err != nil {
			return errors.WithMessage(err, "listener failed")
		}
	}
	return nil
}

func (t *trainer) finished() error {
	t.logger.Printf("%s finished after epoch %d: train %v validation %v", t.name, t.epoch, t.trainErr, t.validErr)
	var allErrs manyErr
	for _, l := range t.listeners {
		if err := l.Flush(); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	if len(allErrs) > 0 {
		return allErrs
	}
	return nil
}

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintf(&buf, "%v\n", e)
	}
	return buf.String()
}
