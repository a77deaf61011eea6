package timeline

import "math"

// MonotoneX builds a smooth path through points that never overshoots in y
// between two neighbours, assuming x is non-decreasing. Consecutive
// coincident points are dropped; two points give a straight line.
func MonotoneX(points []Point) []PathCommand {
	var (
		cmds           []PathCommand
		x0, y0, x1, y1 float64
		t0             float64
		state          int
	)

	for _, p := range points {
		x, y := p.X, p.Y
		t1 := math.NaN()

		if state > 0 && x == x1 && y == y1 {
			continue
		}

		switch state {
		case 0:
			state = 1
			cmds = append(cmds, PathCommand{Op: OpMoveTo, To: Point{X: x, Y: y}})
		case 1:
			state = 2
		case 2:
			state = 3
			t1 = slope3(x0, y0, x1, y1, x, y)
			cmds = append(cmds, hermite(x0, y0, x1, y1, slope2(x0, y0, x1, y1, t1), t1))
		default:
			t1 = slope3(x0, y0, x1, y1, x, y)
			cmds = append(cmds, hermite(x0, y0, x1, y1, t0, t1))
		}

		x0, x1 = x1, x
		y0, y1 = y1, y
		t0 = t1
	}

	switch state {
	case 2:
		cmds = append(cmds, PathCommand{Op: OpLineTo, To: Point{X: x1, Y: y1}})
	case 3:
		cmds = append(cmds, hermite(x0, y0, x1, y1, t0, slope2(x0, y0, x1, y1, t0)))
	}

	return cmds
}

// hermite converts the segment (x0,y0)-(x1,y1) with end tangents t0 and t1
// into a cubic Bezier.
func hermite(x0, y0, x1, y1, t0, t1 float64) PathCommand {
	dx := (x1 - x0) / 3
	return PathCommand{
		Op: OpCurveTo,
		C1: Point{X: x0 + dx, Y: y0 + dx*t0},
		C2: Point{X: x1 - dx, Y: y1 - dx*t1},
		To: Point{X: x1, Y: y1},
	}
}

// slope3 is the tangent at (x1,y1) given its two neighbours (Steffen 1990).
func slope3(x0, y0, x1, y1, x2, y2 float64) float64 {
	h0 := x1 - x0
	h1 := x2 - x1
	s0 := (y1 - y0) / signedStep(h0, h1)
	s1 := (y2 - y1) / signedStep(h1, h0)
	p := (s0*h1 + s1*h0) / (h0 + h1)

	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) {
		return 0
	}
	return t
}

// slope2 is the one-sided tangent at an end point
func slope2(x0, y0, x1, y1, t float64) float64 {
	h := x1 - x0
	if h == 0 {
		return t
	}
	return (3*(y1-y0)/h - t) / 2
}

// signedStep returns h, or a zero carrying the sign of other when h is zero.
func signedStep(h, other float64) float64 {
	if h != 0 {
		return h
	}
	if other < 0 {
		return math.Copysign(0, -1)
	}
	return 0
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
