package main

import "math"

type Point struct {
	X, Y float64
}

// arc is a circular arc in center form. Angles are in radians with y down,
// so an increasing angle runs clockwise on screen.
type arc struct {
	CX, CY, R float64
	A1, A2    float64
}

// arcFromEndpoints converts an SVG-style arc (small arc, no rotation) from
// p0 to the command's end point into center form. A radius too small to
// span the chord is scaled up, as SVG renderers do. ok is false for
// degenerate arcs, which should be drawn as straight lines.
func arcFromEndpoints(p0 Point, c PathCommand) (arc, bool) {
	r := math.Abs(c.Radius)
	if r == 0 || (p0.X == c.X && p0.Y == c.Y) {
		return arc{}, false
	}
	hx := (p0.X - c.X) / 2
	hy := (p0.Y - c.Y) / 2
	if lambda := (hx*hx + hy*hy) / (r * r); lambda > 1 {
		r *= math.Sqrt(lambda)
	}
	num := r*r - hx*hx - hy*hy
	den := hx*hx + hy*hy
	coef := math.Sqrt(math.Max(0, num/den))
	if !c.Sweep {
		coef = -coef
	}
	cxp := coef * hy
	cyp := -coef * hx
	a := arc{
		CX: cxp + (p0.X+c.X)/2,
		CY: cyp + (p0.Y+c.Y)/2,
		R:  r,
	}
	ux, uy := (hx-cxp)/r, (hy-cyp)/r
	vx, vy := (-hx-cxp)/r, (-hy-cyp)/r
	a.A1 = math.Atan2(uy, ux)
	sweep := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if c.Sweep && sweep < 0 {
		sweep += 2 * math.Pi
	} else if !c.Sweep && sweep > 0 {
		sweep -= 2 * math.Pi
	}
	a.A2 = a.A1 + sweep
	return a, true
}

func (a arc) at(angle float64) Point {
	return Point{X: a.CX + a.R*math.Cos(angle), Y: a.CY + a.R*math.Sin(angle)}
}

// pathSegment is one drawable piece of a RoutePath.
type pathSegment struct {
	Op       PathOp
	From, To Point
	Arc      arc
}

// segments resolves a path into absolute segments. Degenerate arcs come
// back as lines; zero-length lines are kept so segment counts stay stable.
func segments(p RoutePath) []pathSegment {
	var out []pathSegment
	var pen Point
	for _, c := range p.Commands {
		to := Point{X: c.X, Y: c.Y}
		switch c.Op {
		case PathMove:
		case PathLine:
			out = append(out, pathSegment{Op: PathLine, From: pen, To: to})
		case PathArc:
			if a, ok := arcFromEndpoints(pen, c); ok {
				out = append(out, pathSegment{Op: PathArc, From: pen, To: to, Arc: a})
			} else {
				out = append(out, pathSegment{Op: PathLine, From: pen, To: to})
			}
		}
		pen = to
	}
	return out
}

// sample returns points along the segment no more than step apart,
// including both ends.
func (s pathSegment) sample(step float64) []Point {
	var length float64
	if s.Op == PathArc {
		length = math.Abs(s.Arc.A2-s.Arc.A1) * s.Arc.R
	} else {
		length = math.Hypot(s.To.X-s.From.X, s.To.Y-s.From.Y)
	}
	n := int(math.Ceil(length / step))
	if n < 1 {
		n = 1
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		if s.Op == PathArc {
			pts = append(pts, s.Arc.at(s.Arc.A1+(s.Arc.A2-s.Arc.A1)*t))
			continue
		}
		pts = append(pts, Point{
			X: s.From.X + (s.To.X-s.From.X)*t,
			Y: s.From.Y + (s.To.Y-s.From.Y)*t,
		})
	}
	return pts
}
