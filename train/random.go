package train

import (
	"math"

	"github.com/gorgonia/cellnet/engine"
)

// RandomSearch draws every weight uniformly from [SearchLo, SearchHi] each epoch and keeps the best draw.
// It is a baseline: on most problems gradient descent is far better.
type RandomSearch struct {
	trainer
}

// NewRandomSearch creates a random search for net. It panics if conf is not valid.
func NewRandomSearch(net *engine.Network, conf Config, opts ...Option) *RandomSearch {
	return &RandomSearch{trainer: makeTrainer("random search", net, conf, opts...)}
}

// Train searches weights for set. The best weights found are restored at the end.
func (rs *RandomSearch) Train(set SampleSet) error {
	if err := rs.started(set); err != nil {
		return err
	}
	conf := rs.conf
	w := rs.net.Weights()
	best := make([]float64, rs.net.WeightsNum())
	rs.net.ReadWeights(best, 0)
	minErr := math.MaxFloat64
	var count int

	for rs.epoch = 0; rs.epoch < conf.Epochs; rs.epoch++ {
		for i := 1; i < len(w); i++ {
			w[i] = conf.SearchLo + rs.r.Float64()*(conf.SearchHi-conf.SearchLo)
		}
		rs.trainErr = ComputeError(rs.net, set, conf.Features...)
		rs.validErr = rs.trainErr
		if rs.trainErr < minErr {
			minErr = rs.trainErr
			rs.net.ReadWeights(best, 0)
		}
		if err := rs.epochDone(); err != nil {
			return err
		}
		if rs.validErr < conf.TargetError {
			break
		}
		count++
	}

	if count > 0 {
		rs.trainErr, rs.validErr = minErr, minErr
		rs.net.WriteWeights(best, 0)
	}
	return rs.finished()
}
