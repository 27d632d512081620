// Package train drives compiled networks over samples and fits their weights.
package train

import (
	"github.com/gorgonia/cellnet/engine"
	"github.com/pkg/errors"
)

var (
	ErrSampleShape = errors.New("sample shape mismatch")
	ErrEmptySet    = errors.New("empty sample set")
)

// Net is what the forward and backward drivers need from a network.
type Net interface {
	InputWriter
	TargetWriter
	Output(buf []float64, off int)
	OutputCells() int

	Reset()
	Compute()
	ComputeGradient()
	Error() float64

	FrameIdx() int
	FrameWidth() int
	IncrFrameIdx()
	SetFrameIdx(f int)
	Rebuffer(frames int)
	IsOnline() bool
}

var _ Net = (*engine.Network)(nil)

// PerformForward feeds the input sequence of s and places its target sequence, aligned to the last
// frames of the input. It returns the mean error per target frame and leaves the network on the last
// input frame, ready for PerformBackward. The network is grown if the sequence does not fit.
//
// Online networks compute every frame as it is fed. Offline networks are fed every frame first and then
// compute the whole sequence at once.
func PerformForward(net Net, s *Sample, features ...int) float64 {
	inLen, tgtLen := s.InputLength(), s.TargetLength()
	if inLen > net.FrameWidth() {
		net.Rebuffer(inLen)
	}
	last := inLen - 1
	online := net.IsOnline()

	net.SetFrameIdx(0)
	for t := 0; t <= last; t++ {
		s.MapInput(net, t, features...)
		if online {
			net.Compute()
		}
		if t < last {
			net.IncrFrameIdx()
		}
	}
	if !online {
		net.Compute()
	}

	first := last - tgtLen + 1
	if first < 0 {
		first = 0
	}
	var e float64
	k := tgtLen - 1
	for t := last; t >= first; t-- {
		net.SetFrameIdx(t)
		s.MapTarget(net, k)
		e += net.Error()
		k--
	}
	net.SetFrameIdx(last)
	return e / float64(tgtLen)
}

// PerformBackward propagates the error placed by PerformForward back through every frame.
func PerformBackward(net Net) {
	if !net.IsOnline() {
		net.ComputeGradient()
		return
	}
	last := net.FrameIdx()
	for t := last; t >= 0; t-- {
		net.SetFrameIdx(t)
		net.ComputeGradient()
	}
	net.SetFrameIdx(last)
}

// ComputeError returns the mean error of net over set. The network is reset before every sample.
func ComputeError(net Net, set SampleSet, features ...int) float64 {
	if len(set) == 0 {
		return 0
	}
	var e float64
	for _, s := range set {
		net.Reset()
		e += PerformForward(net, s, features...)
	}
	return e / float64(len(set))
}

// ClassificationRatio returns the share of samples in set that net classifies correctly. With a single
// output cell a sample is correct if the output is within threshold of the final target. Otherwise the
// final target value at the strongest output must exceed threshold.
func ClassificationRatio(net Net, set SampleSet, threshold float64, features ...int) float64 {
	if len(set) == 0 {
		return 0
	}
	out := make([]float64, net.OutputCells())
	var good int
	for _, s := range set {
		net.Reset()
		PerformForward(net, s, features...)
		net.Output(out, 0)
		tgt := s.Targets()[(s.TargetLength()-1)*s.TargetSize():]
		if len(out) == 1 {
			if d := tgt[0] - out[0]; d < threshold && d > -threshold {
				good++
			}
			continue
		}
		if tgt[argmax(out)] > threshold {
			good++
		}
	}
	return float64(good) / float64(len(set))
}

// RegressionRatio returns the share of samples in set whose error is below threshold.
func RegressionRatio(net Net, set SampleSet, threshold float64, features ...int) float64 {
	if len(set) == 0 {
		return 0
	}
	var good int
	for _, s := range set {
		net.Reset()
		if PerformForward(net, s, features...) < threshold {
			good++
		}
	}
	return float64(good) / float64(len(set))
}

func argmax(a []float64) int {
	var idx int
	for i, v := range a {
		if v > a[idx] {
			idx = i
		}
	}
	return idx
}
