// +build fastexp

package cell

import "math"

// Schraudolph's approximation: writes a scaled x straight into the exponent bits of an IEEE 754 double.
// Relative error is a few percent, which is tolerable for squashing functions but not for gradient checks.
const (
	expA = 1048576 / math.Ln2
	expC = 60801
)

func exp(x float64) float64 {
	if x < -700 {
		return 0
	}
	if x > 700 {
		return math.Inf(1)
	}
	hi := int64(expA*x) + (1072693248 - expC)
	return math.Float64frombits(uint64(hi) << 32)
}
