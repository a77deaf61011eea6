// Package scale maps data values onto drawing coordinates.
package scale

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear creates a linear scale from [d0, d1] to [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Map returns the range value for v. A zero-width domain maps every value to
// the start of the range.
func (l Linear) Map(v float64) float64 {
	span := l.d1 - l.d0
	if span == 0 {
		return l.r0
	}
	return l.r0 + (v-l.d0)/span*(l.r1-l.r0)
}

// Domain returns the scale's domain bounds
func (l Linear) Domain() (float64, float64) {
	return l.d0, l.d1
}
