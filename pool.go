package cellnet

import (
	"log"
	"math"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/gorgonia/cellnet/engine"
	"github.com/gorgonia/cellnet/train"
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"
)

// Pool hands out shared copies of one network. Every copy has its own frame buffers while the weights
// are shared, so the weights must not be written while pool work is in flight.
type Pool struct {
	net     *engine.Network
	copies  []*engine.Network
	inferer chan *engine.Network

	sync.RWMutex
	closed bool
}

// NewPool creates a pool of n shared copies of net. n <= 0 means one per CPU.
func NewPool(net *engine.Network, n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{
		net:     net,
		inferer: make(chan *engine.Network, n),
	}
	for i := 0; i < n; i++ {
		c := net.SharedCopy()
		p.copies = append(p.copies, c)
		p.inferer <- c
	}
	return p
}

// Size returns the number of copies.
func (p *Pool) Size() int { return len(p.copies) }

// Infer feeds input to a copy and returns the outputs of the last frame. The input may hold several
// frames back to back, which recurrent networks see as a sequence.
func (p *Pool) Infer(input []float32) ([]float32, error) {
	p.RLock()
	defer p.RUnlock()
	if p.closed {
		return nil, errors.WithStack(ErrClosed)
	}
	inNum, outNum := p.net.InputCells(), p.net.OutputCells()
	if len(input) == 0 || len(input)%inNum != 0 {
		return nil, errors.Wrapf(ErrInputSize, "%d values for %d input cells", len(input), inNum)
	}
	x := make([]float64, len(input))
	for i, v := range input {
		x[i] = float64(v)
	}
	s, err := train.NewSequenceSample(x, make([]float64, outNum), inNum, outNum)
	if err != nil {
		return nil, err
	}

	net := <-p.inferer
	defer func() { p.inferer <- net }()

	net.Reset()
	train.PerformForward(net, s)
	out := make([]float64, outNum)
	net.Output(out, 0)

	retVal := make([]float32, outNum)
	for i, v := range out {
		f := float32(v)
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			if el, ok := interface{}(net).(ExecLogger); ok && el.ExecLog() != "" {
				log.Println(el.ExecLog())
			}
			return nil, errors.Wrapf(engine.ErrNumerical, "output %d = %v", i, f)
		}
		retVal[i] = f
	}
	return retVal, nil
}

// Classify returns the index of the strongest output.
func (p *Pool) Classify(input []float32) (int, error) {
	out, err := p.Infer(input)
	if err != nil {
		return -1, err
	}
	return vecf32.Argmax(out), nil
}

// Error computes the mean error over set, spreading the samples over the copies.
func (p *Pool) Error(set train.SampleSet) (float64, error) {
	p.RLock()
	defer p.RUnlock()
	if p.closed {
		return 0, errors.WithStack(ErrClosed)
	}
	if len(set) == 0 {
		return 0, nil
	}

	workers := len(p.copies)
	if len(set) < workers {
		workers = len(set)
	}
	jobs := make(chan *train.Sample)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var sum float64
	// workers wait for their copy on their own, so concurrent callers never hold part of the pool
	// while waiting for the rest
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			net := <-p.inferer
			var e float64
			for s := range jobs {
				net.Reset()
				e += train.PerformForward(net, s)
			}
			p.inferer <- net
			mu.Lock()
			sum += e
			mu.Unlock()
		}()
	}
	for _, s := range set {
		jobs <- s
	}
	close(jobs)
	wg.Wait()

	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, errors.Wrapf(engine.ErrNumerical, "error over %d samples", len(set))
	}
	return sum / float64(len(set)), nil
}

// Close waits for outstanding work, then reports every copy left in a numerically broken state.
func (p *Pool) Close() error {
	p.Lock()
	defer p.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for range p.copies {
		<-p.inferer
	}
	close(p.inferer)

	var allErrs manyErr
	for _, c := range p.copies {
		if err := c.NumericalCheck(); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	if len(allErrs) > 0 {
		return allErrs
	}
	return nil
}
