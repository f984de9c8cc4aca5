package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSVG(t *testing.T) {
	d := twoTables(t)

	var buf bytes.Buffer
	require.NoError(t, ExportSVG(d, &buf, 1))
	svg := buf.String()

	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="720" height="206"`))
	assert.Contains(t, svg, `d="M 260 128 L 460 128"`)
	assert.Contains(t, svg, `<g class="table" data-id="1">`)
	assert.Equal(t, 1, strings.Count(svg, `class="relationship"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

func TestExportSVGEscapesText(t *testing.T) {
	d := NewDiagram("escape")
	d.AddTable(Table{Name: "a<b>&c", Fields: []Field{{Name: `"q"`, Type: "int"}}})

	var buf bytes.Buffer
	require.NoError(t, ExportSVG(d, &buf, 1))
	assert.Contains(t, buf.String(), "a&lt;b&gt;&amp;c")
	assert.Contains(t, buf.String(), "&#34;q&#34;")
	assert.NotContains(t, buf.String(), "a<b>")
}

func TestExportSVGScale(t *testing.T) {
	d := twoTables(t)

	var buf bytes.Buffer
	require.NoError(t, ExportSVG(d, &buf, 2))
	assert.Contains(t, buf.String(), `width="1440" height="412"`)
	assert.Contains(t, buf.String(), `d="M 520 256 L 920 256"`)
}

func TestExportEmptyDiagram(t *testing.T) {
	d := NewDiagram("empty")
	dir := t.TempDir()

	assert.ErrorIs(t, ExportSVG(d, &bytes.Buffer{}, 1), errNothingToExport)
	assert.ErrorIs(t, ExportSVGFile(d, filepath.Join(dir, "empty.svg"), 1), errNothingToExport)
	assert.ErrorIs(t, ExportPNG(d, filepath.Join(dir, "empty.png"), 1), errNothingToExport)

	_, err := os.Stat(filepath.Join(dir, "empty.svg"))
	assert.True(t, os.IsNotExist(err), "nothing is written for an empty diagram")
}

func TestRenderPNGSize(t *testing.T) {
	dc, err := renderPNG(twoTables(t), 1)
	require.NoError(t, err)
	assert.Equal(t, 720, dc.Width())
	assert.Equal(t, 206, dc.Height())

	dc, err = renderPNG(twoTables(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 720, dc.Width(), "invalid scale falls back to 1")
}

func TestExportFiles(t *testing.T) {
	d := twoTables(t)
	dir := t.TempDir()

	png := filepath.Join(dir, "pair.png")
	require.NoError(t, ExportPNG(d, png, 1))
	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	svg := filepath.Join(dir, "pair.svg")
	require.NoError(t, ExportSVGFile(d, svg, 1))
	data, err = os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `d="M 260 128 L 460 128"`)

	err = ExportSVGFile(d, filepath.Join(dir, "missing", "pair.svg"), 1)
	assert.Error(t, err)
}

func TestExportFromModel(t *testing.T) {
	d := twoTables(t)
	cfg := defaultConfig()
	cfg.SaveDirectory = t.TempDir()
	m := newModel(d, cfg)

	m.exportFile("svg")
	assert.Equal(t, "Exported to "+filepath.Join(cfg.SaveDirectory, "pair.svg"), m.successMessage)
	assert.FileExists(t, filepath.Join(cfg.SaveDirectory, "pair.svg"))
}
