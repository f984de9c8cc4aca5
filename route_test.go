package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anchor(x, y float64) *Anchor {
	return &Anchor{X: x, Y: y, Width: tableWidth}
}

func TestAnchorFor(t *testing.T) {
	tbl := Table{X: 10, Y: 20, Fields: make([]Field, 3)}

	a := AnchorFor(tbl, 2)
	assert.Equal(t, 10.0, a.X)
	assert.Equal(t, 160.0, a.Y)
	assert.Equal(t, tableWidth, a.Width)

	tbl.Width = 250
	assert.Equal(t, 250.0, AnchorFor(tbl, 0).Width)
}

func TestRouteSameRowIsStraight(t *testing.T) {
	d := NewDiagram("example")
	a := d.AddTable(Table{Name: "a", X: 0, Y: 0, Fields: []Field{{Name: "id"}}})
	b := d.AddTable(Table{Name: "b", X: 400, Y: 0, Fields: []Field{{Name: "a_id"}}})
	ta, _ := d.Table(a)
	tb, _ := d.Table(b)

	start, end := AnchorFor(ta, 0), AnchorFor(tb, 0)
	p := Route(&start, &end, 1)

	require.Len(t, p.Commands, 2)
	assert.Equal(t, "M 200 68 L 400 68", p.String())
	assert.Zero(t, p.Arcs())
}

func TestRouteCases(t *testing.T) {
	tests := []struct {
		name       string
		start, end *Anchor
		want       routeCase
		path       string
	}{
		{
			name:  "down straight to the right",
			start: anchor(0, 68), end: anchor(400, 71),
			want: caseDownStraight,
			path: "M 200 68 L 400 71",
		},
		{
			name:  "down straight to the left",
			start: anchor(400, 68), end: anchor(0, 71),
			want: caseDownStraight,
			path: "M 400 68 L 200 71",
		},
		{
			name:  "down end right",
			start: anchor(0, 68), end: anchor(400, 268),
			want: caseDownEndRight,
			path: "M 200 68 L 290 68 A 10 10 0 0 1 300 78 L 300 258 A 10 10 0 0 0 310 268 L 400 268",
		},
		{
			name:  "down end left edge inside",
			start: anchor(0, 68), end: anchor(100, 268),
			want: caseDownEndLeftEdgeInside,
			path: "M 200 68 L 300 68 A 10 10 0 0 1 310 78 L 310 258 A 10 10 0 0 1 300 268 L 300 268",
		},
		{
			name:  "down end right edge inside",
			start: anchor(100, 68), end: anchor(0, 268),
			want: caseDownEndRightEdgeInside,
			path: "M 100 68 L -10 68 A 10 10 0 0 0 -20 78 L -20 258 A 10 10 0 0 0 -10 268 L 0 268",
		},
		{
			name:  "down fallback",
			start: anchor(400, 68), end: anchor(0, 268),
			want: caseDownFallback,
			path: "M 400 68 L 310 68 A 10 10 0 0 0 300 78 L 300 258 A 10 10 0 0 1 290 268 L 200 268",
		},
		{
			name:  "up straight",
			start: anchor(0, 71), end: anchor(400, 68),
			want: caseUpStraight,
			path: "M 200 71 L 400 68",
		},
		{
			name:  "up end right",
			start: anchor(0, 268), end: anchor(400, 68),
			want: caseUpEndRight,
			path: "M 200 268 L 290 268 A 10 10 0 0 0 300 258 L 300 78 A 10 10 0 0 1 310 68 L 400 68",
		},
		{
			name:  "up start right edge inside",
			start: anchor(0, 268), end: anchor(100, 68),
			want: caseUpStartRightEdgeInside,
			path: "M 0 268 L -20 268 A 10 10 0 0 1 -30 258 L -30 78 A 10 10 0 0 1 -20 68 L 100 68",
		},
		{
			name:  "up start left edge inside",
			start: anchor(100, 268), end: anchor(0, 68),
			want: caseUpStartLeftEdgeInside,
			path: "M 300 268 L 310 268 A 10 10 0 0 0 320 258 L 320 78 A 10 10 0 0 0 310 68 L 200 68",
		},
		{
			name:  "up fallback",
			start: anchor(400, 268), end: anchor(0, 68),
			want: caseUpFallback,
			path: "M 400 268 L 310 268 A 10 10 0 0 1 300 258 L 300 78 A 10 10 0 0 0 290 68 L 200 68",
		},
	}

	seen := map[routeCase]bool{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newRouteGeometry(*tt.start, *tt.end, 1)
			assert.Equal(t, tt.want.String(), classifyRoute(g).name.String())
			assert.Equal(t, tt.path, Route(tt.start, tt.end, 1).String())
		})
		seen[tt.want] = true
	}
	assert.Len(t, seen, len(routeCaseNames), "every routing case is exercised")
}

func TestRouteScalesWithZoom(t *testing.T) {
	p := Route(anchor(0, 0), anchor(800, 400), 2)
	assert.Equal(t, "M 400 0 L 580 0 A 20 20 0 0 1 600 20 L 600 380 A 20 20 0 0 0 620 400 L 800 400", p.String())
}

func TestRouteUsesAnchorWidths(t *testing.T) {
	start := &Anchor{X: 0, Y: 68, Width: 300}
	end := &Anchor{X: 500, Y: 68}

	assert.Equal(t, "M 300 68 L 500 68", Route(start, end, 1).String())
}

func TestRouteNearHorizontalUsesSmallRadius(t *testing.T) {
	p := Route(anchor(0, 68), anchor(400, 92), 1)

	assert.Equal(t, "M 200 68 L 292 68 A 8 8 0 0 1 300 76 L 300 84 A 8 8 0 0 0 308 92 L 400 92", p.String())
	for _, c := range p.Commands {
		if c.Op == PathArc {
			assert.Equal(t, 8.0, c.Radius)
		}
	}
}

func TestRouteFastPathThreshold(t *testing.T) {
	for _, zoom := range []float64{0.5, 1, 2} {
		straight := Route(anchor(0, 100), anchor(600*zoom, 106), zoom)
		assert.Len(t, straight.Commands, 2, "zoom %v: radius at or below the minimum draws a line", zoom)
		assert.Zero(t, straight.Arcs())

		far := Route(anchor(0, 100), anchor(600*zoom, 100+nearHorizontalSpan*zoom+1), zoom)
		assert.Positive(t, far.Arcs(), "zoom %v: beyond the near-horizontal span there are corners", zoom)
	}
}

func TestRouteOverlappingNearHorizontalIsNotStraight(t *testing.T) {
	p := Route(anchor(0, 68), anchor(100, 71), 1)

	assert.Equal(t, 2, p.Arcs())
	assert.Len(t, p.Commands, 6)
}

func TestRouteSymmetry(t *testing.T) {
	pairs := [][2]*Anchor{
		{anchor(0, 68), anchor(400, 268)},
		{anchor(0, 68), anchor(100, 268)},
		{anchor(100, 68), anchor(0, 268)},
		{anchor(-300, 500), anchor(250, 20)},
	}
	for _, p := range pairs {
		forward := Route(p[0], p[1], 1)
		backward := Route(p[1], p[0], 1)

		assert.Equal(t, len(forward.Commands), len(backward.Commands))
		assert.Positive(t, forward.Arcs())
		assert.Positive(t, backward.Arcs())
	}
}

func TestRouteMalformedInput(t *testing.T) {
	tests := []struct {
		name       string
		start, end *Anchor
		zoom       float64
	}{
		{"missing start", nil, anchor(0, 0), 1},
		{"missing end", anchor(0, 0), nil, 1},
		{"zero zoom", anchor(0, 0), anchor(400, 0), 0},
		{"negative zoom", anchor(0, 0), anchor(400, 0), -1},
		{"NaN zoom", anchor(0, 0), anchor(400, 0), math.NaN()},
		{"infinite zoom", anchor(0, 0), anchor(400, 0), math.Inf(1)},
		{"NaN coordinate", &Anchor{X: math.NaN()}, anchor(400, 0), 1},
		{"infinite coordinate", anchor(0, 0), &Anchor{Y: math.Inf(-1)}, 1},
		{"negative width", &Anchor{Width: -1}, anchor(400, 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Route(tt.start, tt.end, tt.zoom)
			assert.True(t, p.IsEmpty())
			assert.Empty(t, p.String())
		})
	}
}

func TestRouteDoesNotMutateAnchors(t *testing.T) {
	start, end := anchor(0, 68), anchor(400, 268)
	before := [2]Anchor{*start, *end}

	Route(start, end, 1.5)

	assert.Equal(t, before, [2]Anchor{*start, *end})
}
