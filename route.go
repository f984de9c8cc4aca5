package main

import (
	"log"
	"math"
	"strconv"
	"strings"
)

// Anchor is the point where a connector attaches to a field. X and Y are
// screen positions (the owning table's left edge and the field's center
// row); Width is the owning table's unscaled width, 0 meaning tableWidth.
type Anchor struct {
	X     float64
	Y     float64
	Width float64
}

// AnchorFor returns the diagram-space anchor of the field at fieldIndex.
func AnchorFor(t Table, fieldIndex int) Anchor {
	return Anchor{
		X: t.X,
		Y: t.Y + tableColorStripHeight + tableHeaderHeight +
			float64(fieldIndex)*tableFieldHeight + tableFieldHeight/2,
		Width: t.CurrentWidth(),
	}
}

func (a Anchor) valid() bool {
	for _, v := range []float64{a.X, a.Y, a.Width} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return a.Width >= 0
}

func (a Anchor) width() float64 {
	if a.Width == 0 {
		return tableWidth
	}
	return a.Width
}

type PathOp int

const (
	PathMove PathOp = iota
	PathLine
	PathArc
)

// PathCommand is one drawing primitive. Radius and Sweep are only
// meaningful for arcs; Sweep true draws clockwise on screen (SVG sweep-flag 1).
type PathCommand struct {
	Op     PathOp
	X, Y   float64
	Radius float64
	Sweep  bool
}

// RoutePath is the drawing description of one connector. An empty path
// means "draw nothing this frame".
type RoutePath struct {
	Commands []PathCommand
}

func (p RoutePath) IsEmpty() bool {
	return len(p.Commands) == 0
}

// Arcs returns the number of arc commands in the path.
func (p RoutePath) Arcs() int {
	n := 0
	for _, c := range p.Commands {
		if c.Op == PathArc {
			n++
		}
	}
	return n
}

// String renders the path as an SVG path "d" attribute.
func (p RoutePath) String() string {
	var b strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch c.Op {
		case PathMove:
			b.WriteString("M ")
		case PathLine:
			b.WriteString("L ")
		case PathArc:
			sweep := "0"
			if c.Sweep {
				sweep = "1"
			}
			b.WriteString("A " + formatUnit(c.Radius) + " " + formatUnit(c.Radius) + " 0 0 " + sweep + " ")
		}
		b.WriteString(formatUnit(c.X) + " " + formatUnit(c.Y))
	}
	return b.String()
}

func formatUnit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func moveTo(x, y float64) PathCommand { return PathCommand{Op: PathMove, X: x, Y: y} }
func lineTo(x, y float64) PathCommand { return PathCommand{Op: PathLine, X: x, Y: y} }

func arcTo(r float64, clockwise bool, x, y float64) PathCommand {
	return PathCommand{Op: PathArc, X: x, Y: y, Radius: r, Sweep: clockwise}
}

func routePath(cmds ...PathCommand) RoutePath {
	return RoutePath{Commands: cmds}
}

// routeGeometry holds the values every routing case is computed from.
type routeGeometry struct {
	x1, y1, x2, y2       float64
	widthStart, widthEnd float64
	radius               float64
	midX, endX           float64
	nearHorizontal       bool
}

func newRouteGeometry(start, end Anchor, zoom float64) routeGeometry {
	g := routeGeometry{
		x1:         start.X,
		y1:         start.Y,
		x2:         end.X,
		y2:         end.Y,
		widthStart: start.width() * zoom,
		widthEnd:   end.width() * zoom,
		radius:     cornerRadius * zoom,
	}
	g.midX = (g.x2 + g.x1 + math.Max(g.widthStart, g.widthEnd)) / 2
	g.endX = g.x2
	if g.x2+g.widthEnd < g.x1 {
		g.endX = g.x2 + g.widthEnd
	}
	if math.Abs(g.y1-g.y2) <= nearHorizontalSpan*zoom {
		g.nearHorizontal = true
		g.radius = math.Abs(g.y2-g.y1) / 3
	}
	return g
}

func (g routeGeometry) startRight() float64 { return g.x1 + g.widthStart }
func (g routeGeometry) endRight() float64   { return g.x2 + g.widthEnd }

// endIsRight reports whether the end table lies entirely right of the start.
func (g routeGeometry) endIsRight() bool { return g.startRight() <= g.x2 }

func (g routeGeometry) straight() bool {
	return g.nearHorizontal && g.radius <= minCornerRadius &&
		(g.endIsRight() || g.endRight() < g.x1)
}

type routeCase int

const (
	caseDownStraight routeCase = iota
	caseDownEndRight
	caseDownEndLeftEdgeInside
	caseDownEndRightEdgeInside
	caseDownFallback
	caseUpStraight
	caseUpEndRight
	caseUpStartRightEdgeInside
	caseUpStartLeftEdgeInside
	caseUpFallback
)

var routeCaseNames = map[routeCase]string{
	caseDownStraight:           "down/straight",
	caseDownEndRight:           "down/end-right",
	caseDownEndLeftEdgeInside:  "down/end-left-edge-inside",
	caseDownEndRightEdgeInside: "down/end-right-edge-inside",
	caseDownFallback:           "down/fallback",
	caseUpStraight:             "up/straight",
	caseUpEndRight:             "up/end-right",
	caseUpStartRightEdgeInside: "up/start-right-edge-inside",
	caseUpStartLeftEdgeInside:  "up/start-left-edge-inside",
	caseUpFallback:             "up/fallback",
}

func (c routeCase) String() string {
	return routeCaseNames[c]
}

type routeRule struct {
	name  routeCase
	match func(g routeGeometry) bool
	build func(g routeGeometry) RoutePath
}

func always(routeGeometry) bool { return true }

func buildStraight(g routeGeometry) RoutePath {
	if g.endIsRight() {
		return routePath(moveTo(g.startRight(), g.y1), lineTo(g.x2, g.y2))
	}
	return routePath(moveTo(g.x1, g.y1), lineTo(g.endRight(), g.y2))
}

// Rules are evaluated in order; the last rule of each list always matches.
var downRules = []routeRule{
	{caseDownStraight, routeGeometry.straight, buildStraight},
	{caseDownEndRight, routeGeometry.endIsRight, func(g routeGeometry) RoutePath {
		r := g.radius
		return routePath(
			moveTo(g.startRight(), g.y1),
			lineTo(g.midX-r, g.y1),
			arcTo(r, true, g.midX, g.y1+r),
			lineTo(g.midX, g.y2-r),
			arcTo(r, false, g.midX+r, g.y2),
			lineTo(g.endX, g.y2),
		)
	}},
	{caseDownEndLeftEdgeInside, func(g routeGeometry) bool {
		return g.x2 <= g.startRight() && g.x1 <= g.x2
	}, func(g routeGeometry) RoutePath {
		r := g.radius
		right := g.endRight()
		return routePath(
			moveTo(g.startRight(), g.y1),
			lineTo(right, g.y1),
			arcTo(r, true, right+r, g.y1+r),
			lineTo(right+r, g.y2-r),
			arcTo(r, true, right, g.y2),
			lineTo(right, g.y2),
		)
	}},
	{caseDownEndRightEdgeInside, func(g routeGeometry) bool {
		return g.endRight() >= g.x1 && g.endRight() <= g.startRight()
	}, func(g routeGeometry) RoutePath {
		r := g.radius
		return routePath(
			moveTo(g.x1, g.y1),
			lineTo(g.x2-r, g.y1),
			arcTo(r, false, g.x2-2*r, g.y1+r),
			lineTo(g.x2-2*r, g.y2-r),
			arcTo(r, false, g.x2-r, g.y2),
			lineTo(g.x2, g.y2),
		)
	}},
	{caseDownFallback, always, func(g routeGeometry) RoutePath {
		r := g.radius
		return routePath(
			moveTo(g.x1, g.y1),
			lineTo(g.midX+r, g.y1),
			arcTo(r, false, g.midX, g.y1+r),
			lineTo(g.midX, g.y2-r),
			arcTo(r, true, g.midX-r, g.y2),
			lineTo(g.endX, g.y2),
		)
	}},
}

var upRules = []routeRule{
	{caseUpStraight, routeGeometry.straight, buildStraight},
	{caseUpEndRight, routeGeometry.endIsRight, func(g routeGeometry) RoutePath {
		r := g.radius
		return routePath(
			moveTo(g.startRight(), g.y1),
			lineTo(g.midX-r, g.y1),
			arcTo(r, false, g.midX, g.y1-r),
			lineTo(g.midX, g.y2+r),
			arcTo(r, true, g.midX+r, g.y2),
			lineTo(g.endX, g.y2),
		)
	}},
	{caseUpStartRightEdgeInside, func(g routeGeometry) bool {
		return g.startRight() >= g.x2 && g.startRight() <= g.endRight()
	}, func(g routeGeometry) RoutePath {
		r := g.radius
		return routePath(
			moveTo(g.x1, g.y1),
			lineTo(g.x1-2*r, g.y1),
			arcTo(r, true, g.x1-3*r, g.y1-r),
			lineTo(g.x1-3*r, g.y2+r),
			arcTo(r, true, g.x1-2*r, g.y2),
			lineTo(g.endX, g.y2),
		)
	}},
	{caseUpStartLeftEdgeInside, func(g routeGeometry) bool {
		return g.x1 >= g.x2 && g.x1 <= g.endRight()
	}, func(g routeGeometry) RoutePath {
		r := g.radius
		right := g.startRight()
		return routePath(
			moveTo(right, g.y1),
			lineTo(right+r, g.y1),
			arcTo(r, false, right+2*r, g.y1-r),
			lineTo(right+2*r, g.y2+r),
			arcTo(r, false, right+r, g.y2),
			lineTo(g.endRight(), g.y2),
		)
	}},
	{caseUpFallback, always, func(g routeGeometry) RoutePath {
		r := g.radius
		return routePath(
			moveTo(g.x1, g.y1),
			lineTo(g.midX+r, g.y1),
			arcTo(r, true, g.midX, g.y1-r),
			lineTo(g.midX, g.y2+r),
			arcTo(r, false, g.midX-r, g.y2),
			lineTo(g.endX, g.y2),
		)
	}},
}

func classifyRoute(g routeGeometry) routeRule {
	rules := downRules
	if g.y1 > g.y2 {
		rules = upRules
	}
	for _, rule := range rules {
		if rule.match(g) {
			return rule
		}
	}
	return rules[len(rules)-1]
}

// Route computes the connector between two anchors. Anchor positions are in
// screen units; widths are scaled by zoom, as are the corner radius and the
// near-horizontal threshold. Malformed input yields an empty path.
func Route(start, end *Anchor, zoom float64) RoutePath {
	if start == nil || end == nil {
		log.Printf("route: missing anchor (start=%t end=%t)", start != nil, end != nil)
		return RoutePath{}
	}
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom <= 0 || !start.valid() || !end.valid() {
		log.Printf("route: malformed input start=%+v end=%+v zoom=%v", *start, *end, zoom)
		return RoutePath{}
	}
	g := newRouteGeometry(*start, *end, zoom)
	return classifyRoute(g).build(g)
}
