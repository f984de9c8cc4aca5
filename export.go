package main

import (
	"errors"
	"fmt"
	"html"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var errNothingToExport = errors.New("nothing to export")

// Connectors can leave a table by up to three corner radii, so the exported
// image keeps a margin wider than that around the tables.
const exportMargin = 60.0

const (
	connectorColor = "#5c5c5c"
	borderColor    = "#2f2f2f"
	textColor      = "#1b1b1b"
	typeColor      = "#7a7a7a"
)

// exportViewport frames every table of d with exportMargin on each side.
func exportViewport(d *Diagram, scale float64) (viewport, int, int, error) {
	minX, minY, maxX, maxY, ok := d.Bounds()
	if !ok {
		return viewport{}, 0, 0, errNothingToExport
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = defaultZoom
	}
	v := viewport{panX: minX - exportMargin, panY: minY - exportMargin, zoom: scale}
	width := int(math.Ceil((maxX - minX + 2*exportMargin) * scale))
	height := int(math.Ceil((maxY - minY + 2*exportMargin) * scale))
	return v, width, height, nil
}

func loadFontFace(size float64) (font.Face, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(ttfFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func renderPNG(d *Diagram, scale float64) (*gg.Context, error) {
	v, width, height, err := exportViewport(d, scale)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	face, err := loadFontFace(12 * v.zoom)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	// Connectors first so tables paint over their ends.
	for _, c := range d.Routes(v) {
		drawPathPNG(dc, c.Path, v.zoom)
	}
	for _, t := range d.tables {
		drawTablePNG(dc, t, v)
	}
	return dc, nil
}

// ExportPNG renders the whole diagram at scale and writes it to filename.
func ExportPNG(d *Diagram, filename string, scale float64) error {
	dc, err := renderPNG(d, scale)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func drawPathPNG(dc *gg.Context, p RoutePath, zoom float64) {
	segs := segments(p)
	if len(segs) == 0 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(segs[0].From.X, segs[0].From.Y)
	for _, s := range segs {
		if s.Op == PathArc {
			dc.DrawArc(s.Arc.CX, s.Arc.CY, s.Arc.R, s.Arc.A1, s.Arc.A2)
			continue
		}
		dc.LineTo(s.To.X, s.To.Y)
	}
	dc.SetHexColor(connectorColor)
	dc.SetLineWidth(1.5 * zoom)
	dc.Stroke()
}

func drawTablePNG(dc *gg.Context, t Table, v viewport) {
	z := v.zoom
	x, y := v.toScreen(t.X, t.Y)
	w, h := t.CurrentWidth()*z, t.Height()*z
	strip, header, row := tableColorStripHeight*z, tableHeaderHeight*z, tableFieldHeight*z

	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(x, y, w, h, 4*z)
	dc.Fill()

	dc.SetHexColor(t.Color)
	dc.DrawRectangle(x, y, w, strip)
	dc.Fill()

	dc.SetHexColor(textColor)
	name := t.Name
	if t.Locked {
		name += " (locked)"
	}
	dc.DrawStringAnchored(name, x+10*z, y+strip+header/2, 0, 0.35)

	dc.SetHexColor(borderColor)
	dc.SetLineWidth(1)
	for i, f := range t.Fields {
		rowY := y + strip + header + float64(i)*row
		dc.DrawLine(x, rowY, x+w, rowY)
		dc.Stroke()

		label := f.Name
		if f.Primary {
			label = "# " + label
		}
		dc.SetHexColor(textColor)
		dc.DrawStringAnchored(label, x+10*z, rowY+row/2, 0, 0.35)
		dc.SetHexColor(typeColor)
		dc.DrawStringAnchored(f.Type, x+w-10*z, rowY+row/2, 1, 0.35)
		dc.SetHexColor(borderColor)
	}

	dc.DrawRoundedRectangle(x, y, w, h, 4*z)
	dc.Stroke()
}

// ExportSVG writes the diagram as a standalone SVG document. Connector paths
// are emitted exactly as routed.
func ExportSVG(d *Diagram, w io.Writer, scale float64) error {
	v, width, height, err := exportViewport(d, scale)
	if err != nil {
		return err
	}
	z := v.zoom

	ew := &errWriter{w: w}
	ew.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="%s">`+"\n",
		width, height, width, height, formatUnit(12*z))
	ew.printf(`<rect width="100%%" height="100%%" fill="white"/>` + "\n")
	for _, c := range d.Routes(v) {
		ew.printf(`<path class="relationship" data-id="%d" d="%s" fill="none" stroke="%s" stroke-width="%s"/>`+"\n",
			c.Relationship.ID, c.Path.String(), connectorColor, formatUnit(1.5*z))
	}
	for _, t := range d.tables {
		x, y := v.toScreen(t.X, t.Y)
		tw, th := t.CurrentWidth()*z, t.Height()*z
		strip, header, row := tableColorStripHeight*z, tableHeaderHeight*z, tableFieldHeight*z

		ew.printf(`<g class="table" data-id="%d">`+"\n", t.ID)
		ew.printf(`<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="white" stroke="%s"/>`+"\n",
			formatUnit(x), formatUnit(y), formatUnit(tw), formatUnit(th), formatUnit(4*z), borderColor)
		ew.printf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			formatUnit(x), formatUnit(y), formatUnit(tw), formatUnit(strip), html.EscapeString(t.Color))
		ew.printf(`<text x="%s" y="%s" dominant-baseline="middle" font-weight="bold">%s</text>`+"\n",
			formatUnit(x+10*z), formatUnit(y+strip+header/2), html.EscapeString(t.Name))
		for i, f := range t.Fields {
			rowY := y + strip + header + float64(i)*row
			ew.printf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
				formatUnit(x), formatUnit(rowY), formatUnit(x+tw), formatUnit(rowY), borderColor)
			ew.printf(`<text x="%s" y="%s" dominant-baseline="middle">%s</text>`+"\n",
				formatUnit(x+10*z), formatUnit(rowY+row/2), html.EscapeString(f.Name))
			ew.printf(`<text x="%s" y="%s" dominant-baseline="middle" text-anchor="end" fill="%s">%s</text>`+"\n",
				formatUnit(x+tw-10*z), formatUnit(rowY+row/2), typeColor, html.EscapeString(f.Type))
		}
		ew.printf("</g>\n")
	}
	ew.printf("</svg>\n")
	return ew.err
}

func ExportSVGFile(d *Diagram, filename string, scale float64) error {
	if d.IsEmpty() {
		return errNothingToExport
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := ExportSVG(d, file, scale); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// errWriter keeps the first write error and turns later writes into no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
