package train

import (
	"fmt"
	"math"

	"github.com/gorgonia/cellnet/engine"
)

// Mutation selects how differential evolution builds the mutant of a member x. a, b, c, d and e are
// distinct random members other than x (and other than best, where best takes part).
type Mutation byte

const (
	RandOne       Mutation = iota // a + F(b-c)
	BestOne                       // best + F(a-b)
	RandTwo                       // a + F(b-c) + F2(d-e)
	BestTwo                       // best + F(a+b-c-d)
	RandToBestOne                 // x + F(best-a) + F2(b-c)
)

// RandTwo needs five members besides x.
const minPopSize = 6

var mutationNames = [...]string{"rand/1", "best/1", "rand/2", "best/2", "rand-to-best/1"}

func (m Mutation) String() string {
	if int(m) < len(mutationNames) {
		return mutationNames[m]
	}
	return fmt.Sprintf("Mutation(%d)", byte(m))
}

// DifferentialEvolution searches the weights with a population of candidate weight vectors. It needs no
// gradient, so it also trains networks whose error is not differentiable in practice.
//
// Every epoch is one generation: each member is mutated, crossed over with its mutant and replaced by the
// result if that has a lower error on the training set.
type DifferentialEvolution struct {
	trainer

	n       int       // weights per member
	pop     []float64 // PopSize rows of n weights
	next    []float64
	fitness []float64
	trial   []float64
	best    int
	picks   []int
}

// NewDifferentialEvolution creates a differential evolution for net. It panics if conf is not valid.
func NewDifferentialEvolution(net *engine.Network, conf Config, opts ...Option) *DifferentialEvolution {
	return &DifferentialEvolution{trainer: makeTrainer("differential evolution", net, conf, opts...)}
}

// Best returns the weights of the best member and their error.
func (de *DifferentialEvolution) Best() ([]float64, float64) {
	if de.pop == nil {
		return nil, math.Inf(1)
	}
	retVal := make([]float64, de.n)
	copy(retVal, de.row(de.pop, de.best))
	return retVal, de.fitness[de.best]
}

// Train evolves a fresh population on set. The weights of the best member are written into the network at
// the end.
func (de *DifferentialEvolution) Train(set SampleSet) error {
	if err := de.started(set); err != nil {
		return err
	}
	conf := de.conf
	de.init()
	for i := range de.pop {
		de.pop[i] = conf.InitLo + de.r.Float64()*(conf.InitHi-conf.InitLo)
	}
	de.best = 0
	for i := range de.fitness {
		de.fitness[i] = de.evaluate(de.row(de.pop, i), set)
		if de.fitness[i] < de.fitness[de.best] {
			de.best = i
		}
	}
	de.logger.Printf("%d members, %d weights each, %v mutation: initial best %v", conf.PopSize, de.n, conf.Mutation, de.fitness[de.best])

	for de.epoch = 0; de.epoch < conf.Epochs; de.epoch++ {
		best := de.best
		for i := range de.fitness {
			de.mutate(i)
			de.crossover(i)
			x := de.row(de.next, i)
			if f := de.evaluate(de.trial, set); f < de.fitness[i] {
				de.fitness[i] = f
				copy(x, de.trial)
				if f < de.fitness[best] {
					best = i
				}
			} else {
				copy(x, de.row(de.pop, i))
			}
		}
		de.pop, de.next = de.next, de.pop
		de.best = best

		de.trainErr = de.fitness[de.best]
		de.validErr = de.trainErr
		de.net.WriteWeights(de.pop, de.best*de.n)
		if err := de.epochDone(); err != nil {
			return err
		}
		if de.validErr < conf.TargetError {
			break
		}
	}

	de.trainErr = de.fitness[de.best]
	de.validErr = de.trainErr
	de.net.WriteWeights(de.pop, de.best*de.n)
	return de.finished()
}

func (de *DifferentialEvolution) init() {
	de.n = de.net.WeightsNum()
	p := de.conf.PopSize
	if len(de.pop) != p*de.n {
		de.pop = make([]float64, p*de.n)
		de.next = make([]float64, p*de.n)
		de.fitness = make([]float64, p)
		de.trial = make([]float64, de.n)
	}
}

func (de *DifferentialEvolution) row(pop []float64, i int) []float64 {
	return pop[i*de.n : (i+1)*de.n]
}

// evaluate returns the error of the network carrying w. A broken candidate is never selected.
func (de *DifferentialEvolution) evaluate(w []float64, set SampleSet) float64 {
	de.net.WriteWeights(w, 0)
	e := ComputeError(de.net, set, de.conf.Features...)
	if math.IsNaN(e) {
		return math.Inf(1)
	}
	return e
}

// pick draws k distinct members, none of them in exclude.
func (de *DifferentialEvolution) pick(k int, exclude ...int) []int {
	de.picks = de.picks[:0]
outer:
	for len(de.picks) < k {
		c := de.r.Intn(de.conf.PopSize)
		for _, e := range exclude {
			if c == e {
				continue outer
			}
		}
		for _, e := range de.picks {
			if c == e {
				continue outer
			}
		}
		de.picks = append(de.picks, c)
	}
	return de.picks
}

// mutate writes the mutant of member i into trial.
func (de *DifferentialEvolution) mutate(i int) {
	f, f2 := de.conf.Scale, de.conf.Scale2
	row := func(k int) []float64 { return de.row(de.pop, k) }
	v := de.trial
	switch de.conf.Mutation {
	case RandOne:
		p := de.pick(3, i)
		a, b, c := row(p[0]), row(p[1]), row(p[2])
		for j := range v {
			v[j] = a[j] + f*(b[j]-c[j])
		}
	case BestOne:
		p := de.pick(2, i, de.best)
		best, a, b := row(de.best), row(p[0]), row(p[1])
		for j := range v {
			v[j] = best[j] + f*(a[j]-b[j])
		}
	case RandTwo:
		p := de.pick(5, i)
		a, b, c, d, e := row(p[0]), row(p[1]), row(p[2]), row(p[3]), row(p[4])
		for j := range v {
			v[j] = a[j] + f*(b[j]-c[j]) + f2*(d[j]-e[j])
		}
	case BestTwo:
		p := de.pick(4, i, de.best)
		best, a, b, c, d := row(de.best), row(p[0]), row(p[1]), row(p[2]), row(p[3])
		for j := range v {
			v[j] = best[j] + f*(a[j]+b[j]-c[j]-d[j])
		}
	case RandToBestOne:
		p := de.pick(3, i, de.best)
		x, best, a, b, c := row(i), row(de.best), row(p[0]), row(p[1]), row(p[2])
		for j := range v {
			v[j] = x[j] + f*(best[j]-a[j]) + f2*(b[j]-c[j])
		}
	}
}

// crossover takes every weight of trial from the mutant with probability Crossover and from member i
// otherwise. One randomly chosen weight always comes from the mutant.
func (de *DifferentialEvolution) crossover(i int) {
	if de.n == 0 {
		return
	}
	x := de.row(de.pop, i)
	keep := de.r.Intn(de.n)
	for j := range de.trial {
		if j != keep && de.r.Float64() >= de.conf.Crossover {
			de.trial[j] = x[j]
		}
	}
}
