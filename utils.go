package main

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

var errNoClipboard = errors.New("no clipboard utility available")

// copyToClipboard places the diagram's SVG rendering on the system clipboard.
func copyToClipboard(d *Diagram) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	var b strings.Builder
	if err := ExportSVG(d, &b, defaultZoom); err != nil {
		return err
	}
	return clipboard.WriteAll(b.String())
}

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// sanitizeFilename turns a diagram name into something safe to save under.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "diagram"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < ' ' {
			return -1
		}
		return r
	}, name)
}
