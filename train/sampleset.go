package train

import (
	"math"
	"math/rand"
)

// SampleSet is an ordered collection of samples.
type SampleSet []*Sample

// MaxSequenceLength returns the longest input or target sequence in the set.
func (set SampleSet) MaxSequenceLength() int {
	var max int
	for _, s := range set {
		if l := s.InputLength(); l > max {
			max = l
		}
		if l := s.TargetLength(); l > max {
			max = l
		}
	}
	return max
}

// Split draws n random samples (fewer if the set is smaller) out of the set and returns them.
// A sample drawn twice is moved once.
func (set *SampleSet) Split(n int, r *rand.Rand) SampleSet {
	s := *set
	if n > len(s) {
		n = len(s)
	}
	picked := make(map[int]bool, n)
	var retVal SampleSet
	for i := 0; i < n; i++ {
		idx := r.Intn(len(s))
		if picked[idx] {
			continue
		}
		picked[idx] = true
		retVal = append(retVal, s[idx])
	}
	rest := s[:0:0]
	for i, smp := range s {
		if !picked[i] {
			rest = append(rest, smp)
		}
	}
	*set = rest
	return retVal
}

// Shuffle permutes the set in place.
func (set SampleSet) Shuffle(r *rand.Rand) {
	r.Shuffle(len(set), func(i, j int) { set[i], set[j] = set[j], set[i] })
}

// Join concatenates sets into a new set.
func Join(sets ...SampleSet) SampleSet {
	var n int
	for _, s := range sets {
		n += len(s)
	}
	retVal := make(SampleSet, 0, n)
	for _, s := range sets {
		retVal = append(retVal, s...)
	}
	return retVal
}

// Mean returns the mean of every input feature over all frames of all samples.
func (set SampleSet) Mean() []float64 {
	if len(set) == 0 {
		return nil
	}
	size := set[0].InputSize()
	retVal := make([]float64, size)
	var ctr int
	for _, s := range set {
		in := s.Inputs()
		for off := 0; off+size <= len(in); off += size {
			for i := range retVal {
				retVal[i] += in[off+i]
			}
			ctr++
		}
	}
	for i := range retVal {
		retVal[i] /= float64(ctr)
	}
	return retVal
}

// StdDev returns the sample standard deviation of every input feature given its mean.
func (set SampleSet) StdDev(mean []float64) []float64 {
	if len(set) == 0 {
		return nil
	}
	size := set[0].InputSize()
	retVal := make([]float64, size)
	var ctr int
	for _, s := range set {
		in := s.Inputs()
		for off := 0; off+size <= len(in); off += size {
			for i := range retVal {
				d := mean[i] - in[off+i]
				retVal[i] += d * d
			}
			ctr++
		}
	}
	if ctr < 2 {
		// a single frame has no spread
		for i := range retVal {
			retVal[i] = 0
		}
		return retVal
	}
	for i := range retVal {
		retVal[i] = math.Sqrt(retVal[i] / float64(ctr-1))
	}
	return retVal
}

// Normalize standardizes the input features idxs in place using the set's own mean and deviation.
func (set SampleSet) Normalize(idxs ...int) {
	if len(set) == 0 {
		return
	}
	mean := set.Mean()
	set.NormalizeWith(mean, set.StdDev(mean), idxs...)
}

// NormalizeWith standardizes the input features idxs in place using the given mean and deviation, so that
// a validation set can be scaled like its training set. Features without spread are only centered.
func (set SampleSet) NormalizeWith(mean, stddev []float64, idxs ...int) {
	for _, s := range set {
		in := s.Inputs()
		size := s.InputSize()
		for off := 0; off+size <= len(in); off += size {
			for _, i := range idxs {
				in[off+i] -= mean[i]
				if stddev[i] != 0 {
					in[off+i] /= stddev[i]
				}
			}
		}
	}
}
