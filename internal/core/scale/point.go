package scale

// Point places a list of distinct labels at evenly spaced positions. Padding is
// expressed in steps and is kept between the outer labels and the range ends.
type Point struct {
	index map[string]int
	start float64
	step  float64
}

// NewPoint creates a point scale over labels spread across [r0, r1]. Duplicate
// labels keep their first position.
func NewPoint(labels []string, r0, r1, padding float64) Point {
	index := make(map[string]int, len(labels))
	for _, label := range labels {
		if _, ok := index[label]; !ok {
			index[label] = len(index)
		}
	}

	n := float64(len(index))
	span := n - 1 + 2*padding
	if span < 1 {
		span = 1
	}
	step := (r1 - r0) / span
	start := r0 + (r1-r0-step*(n-1))/2
	if len(index) == 0 {
		start, step = r0, 0
	}

	return Point{index: index, start: start, step: step}
}

// Map returns the position of label and whether the label belongs to the domain.
func (p Point) Map(label string) (float64, bool) {
	i, ok := p.index[label]
	if !ok {
		return 0, false
	}
	return p.start + p.step*float64(i), true
}

// Step returns the distance between neighbouring labels
func (p Point) Step() float64 {
	return p.step
}

// Len returns the number of distinct labels
func (p Point) Len() int {
	return len(p.index)
}
