package main

import (
	"math"
	"strings"
)

// viewport maps diagram units to screen units: screen = (diagram - pan) * zoom.
type viewport struct {
	panX, panY float64
	zoom       float64
}

func (v viewport) toScreen(x, y float64) (float64, float64) {
	return (x - v.panX) * v.zoom, (y - v.panY) * v.zoom
}

func (v viewport) toDiagram(sx, sy float64) (float64, float64) {
	return sx/v.zoom + v.panX, sy/v.zoom + v.panY
}

// anchor moves a diagram-space anchor to screen space. Width stays unscaled;
// Route applies zoom to it.
func (v viewport) anchor(a *Anchor) *Anchor {
	if a == nil {
		return nil
	}
	x, y := v.toScreen(a.X, a.Y)
	return &Anchor{X: x, Y: y, Width: a.Width}
}

func cellOf(sx, sy float64) (col, row int) {
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

type connector struct {
	Relationship Relationship
	Path         RoutePath
}

// Routes computes every relationship's connector in the viewport's screen
// space. Relationships whose anchors cannot be resolved are skipped.
func (d *Diagram) Routes(v viewport) []connector {
	var out []connector
	for _, r := range d.relationships {
		start, end := d.Anchors(r)
		p := Route(v.anchor(start), v.anchor(end), v.zoom)
		if p.IsEmpty() {
			continue
		}
		out = append(out, connector{Relationship: r, Path: p})
	}
	return out
}

// tableBox is a table's frame in terminal cells, inclusive on all sides.
type tableBox struct {
	left, top, right, bottom int
}

func (b tableBox) contains(col, row int) bool {
	return col >= b.left && col <= b.right && row >= b.top && row <= b.bottom
}

func (b tableBox) handleRow() int {
	return (b.top + b.bottom) / 2
}

func (v viewport) tableBox(t Table) tableBox {
	sx, sy := v.toScreen(t.X, t.Y)
	ex, ey := v.toScreen(t.X+t.CurrentWidth(), t.Y+t.Height())
	left, top := cellOf(sx, sy)
	right, bottom := cellOf(ex, ey)
	if right < left+2 {
		right = left + 2
	}
	if bottom < top+2 {
		bottom = top + 2
	}
	return tableBox{left: left, top: top, right: right, bottom: bottom}
}

// fieldRow returns the terminal row of a field, which is the row its
// connectors attach to.
func (v viewport) fieldRow(t Table, index int) int {
	a := AnchorFor(t, index)
	_, row := cellOf(v.toScreen(a.X, a.Y))
	return row
}

// tableAtCell returns the topmost table whose frame covers the cell, or -1.
func (v viewport) tableAtCell(d *Diagram, col, row int) int {
	for i := len(d.tables) - 1; i >= 0; i-- {
		if v.tableBox(d.tables[i]).contains(col, row) {
			return d.tables[i].ID
		}
	}
	return -1
}

// handleAt reports the resize handle under a cell. The left and right frame
// columns of a resizable table act as its handles.
func (v viewport) handleAt(d *Diagram, rc *ResizeController, col, row int) (int, Handle, bool) {
	id := v.tableAtCell(d, col, row)
	if id < 0 {
		return -1, HandleRight, false
	}
	t, _ := d.Table(id)
	if !rc.Enabled(t) {
		return -1, HandleRight, false
	}
	b := v.tableBox(t)
	switch col {
	case b.left:
		return id, HandleLeft, true
	case b.right:
		return id, HandleRight, true
	}
	return -1, HandleRight, false
}

// fieldAtCell returns the field index under a cell of table id, or -1.
func (v viewport) fieldAtCell(d *Diagram, id, row int) int {
	t, ok := d.Table(id)
	if !ok {
		return -1
	}
	for i := range t.Fields {
		if v.fieldRow(t, i) == row {
			return i
		}
	}
	return -1
}

type grid [][]rune

func newGrid(width, height int) grid {
	g := make(grid, height)
	for y := range g {
		g[y] = []rune(strings.Repeat(" ", width))
	}
	return g
}

func (g grid) set(col, row int, r rune) {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return
	}
	g[row][col] = r
}

func (g grid) text(col, row int, s string, limit int) {
	for _, r := range s {
		if limit <= 0 {
			return
		}
		g.set(col, row, r)
		col++
		limit--
	}
}

func (g grid) lines() []string {
	out := make([]string, len(g))
	for i, row := range g {
		out[i] = string(row)
	}
	return out
}

type direction int

const (
	dirEast direction = iota
	dirWest
	dirSouth
	dirNorth
)

var cornerGlyphs = map[[2]direction]rune{
	{dirEast, dirSouth}:  '╮',
	{dirEast, dirNorth}:  '╯',
	{dirWest, dirSouth}:  '╭',
	{dirWest, dirNorth}:  '╰',
	{dirSouth, dirEast}:  '╰',
	{dirSouth, dirWest}:  '╯',
	{dirNorth, dirEast}:  '╭',
	{dirNorth, dirWest}:  '╮',
}

func horizontal(dx float64) direction {
	if dx < 0 {
		return dirWest
	}
	return dirEast
}

func vertical(dy float64) direction {
	if dy < 0 {
		return dirNorth
	}
	return dirSouth
}

// cornerCell returns the cell and glyph an arc is drawn as. An arc whose
// tangent at the start is horizontal turns at (end.x, start.y).
func cornerCell(s pathSegment) (col, row int, glyph rune) {
	dx, dy := s.To.X-s.From.X, s.To.Y-s.From.Y
	if math.Abs(s.Arc.CX-s.From.X) < math.Abs(s.Arc.CY-s.From.Y) {
		col, row = cellOf(s.To.X, s.From.Y)
		return col, row, cornerGlyphs[[2]direction{horizontal(dx), vertical(dy)}]
	}
	col, row = cellOf(s.From.X, s.To.Y)
	return col, row, cornerGlyphs[[2]direction{vertical(dy), horizontal(dx)}]
}

func (g grid) drawPath(p RoutePath) {
	segs := segments(p)
	for _, s := range segs {
		if s.Op != PathLine {
			continue
		}
		glyph := '─'
		if math.Abs(s.To.Y-s.From.Y) > math.Abs(s.To.X-s.From.X) {
			glyph = '│'
		}
		for _, pt := range s.sample(cellWidth / 2) {
			col, row := cellOf(pt.X, pt.Y)
			g.set(col, row, glyph)
		}
	}
	for _, s := range segs {
		if s.Op != PathArc {
			continue
		}
		col, row, glyph := cornerCell(s)
		g.set(col, row, glyph)
	}
}

func (g grid) drawTable(t Table, b tableBox, v viewport, selected, handles bool) {
	h, vert := '─', '│'
	tl, tr, bl, br, ml, mr := '┌', '┐', '└', '┘', '├', '┤'
	if selected {
		h, vert = '═', '║'
		tl, tr, bl, br, ml, mr = '╔', '╗', '╚', '╝', '╠', '╣'
	}
	for row := b.top; row <= b.bottom; row++ {
		for col := b.left; col <= b.right; col++ {
			g.set(col, row, ' ')
		}
		g.set(b.left, row, vert)
		g.set(b.right, row, vert)
	}
	for col := b.left + 1; col < b.right; col++ {
		g.set(col, b.top, h)
		g.set(col, b.bottom, h)
	}
	g.set(b.left, b.top, tl)
	g.set(b.right, b.top, tr)
	g.set(b.left, b.bottom, bl)
	g.set(b.right, b.bottom, br)

	inner := b.right - b.left - 1
	name := t.Name
	if t.Locked {
		name = "* " + name
	}
	g.text(b.left+1, b.top+1, name, inner)

	last := b.top + 1
	if b.top+2 < b.bottom {
		for col := b.left + 1; col < b.right; col++ {
			g.set(col, b.top+2, h)
		}
		g.set(b.left, b.top+2, ml)
		g.set(b.right, b.top+2, mr)
		last = b.top + 2
	}
	for i, f := range t.Fields {
		row := v.fieldRow(t, i)
		if row <= last || row >= b.bottom {
			continue
		}
		g.text(b.left+1, row, fieldLabel(f), inner)
		last = row
	}

	if handles {
		g.set(b.left, b.handleRow(), '●')
		g.set(b.right, b.handleRow(), '●')
	}
}

func fieldLabel(f Field) string {
	marker := " "
	if f.Primary {
		marker = "#"
	}
	label := marker + f.Name
	if f.Type != "" {
		label += " " + f.Type
	}
	return label
}

// renderDiagram draws connectors first and tables over them in paint order.
func renderDiagram(d *Diagram, rc *ResizeController, v viewport, width, height, selected int) []string {
	g := newGrid(width, height)
	for _, c := range d.Routes(v) {
		g.drawPath(c.Path)
	}
	for _, t := range d.tables {
		handles := rc.Enabled(t) && rc.ShowResizers(t.ID)
		g.drawTable(t, v.tableBox(t), v, t.ID == selected, handles)
	}
	return g.lines()
}
