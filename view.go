package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	mode    lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
	title   lipgloss.Style
}

func newStyles(theme string) styles {
	fg, accent := lipgloss.Color("252"), lipgloss.Color("#175e7a")
	if theme == "light" {
		fg = lipgloss.Color("235")
	}
	return styles{
		mode:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(accent).Padding(0, 1),
		status:  lipgloss.NewStyle().Foreground(fg),
		err:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
	}
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	renderWidth := m.width
	if renderWidth < 1 {
		renderWidth = 1
	}
	renderHeight := m.height - 1
	if renderHeight < 1 {
		renderHeight = 1
	}

	selected := -1
	if m.mode != ModeNormal || m.dragTable >= 0 {
		selected = m.selectedTable
	}
	canvas := renderDiagram(m.diagram, m.resize, m.viewport(), renderWidth, renderHeight, selected)

	if m.cursorY >= 0 && m.cursorY < len(canvas) {
		line := []rune(canvas[m.cursorY])
		if m.cursorX >= 0 && m.cursorX < len(line) {
			line[m.cursorX] = '█'
			canvas[m.cursorY] = string(line)
		}
	}

	var result strings.Builder
	for _, line := range canvas {
		result.WriteString(line)
		result.WriteString("\n")
	}
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) statusLine() string {
	modeStr := m.modeString()
	if m.zPanMode && m.mode == ModeNormal {
		modeStr = "PAN"
	}
	status := fmt.Sprintf("Cursor: (%d,%d) | Zoom: %d%%", m.cursorX, m.cursorY, int(m.zoom*100+0.5))

	switch m.mode {
	case ModeResize:
		status += " | h/l resize, H/L faster, Enter=confirm, Esc=cancel"
	case ModeMove:
		status += " | hjkl move, Enter=confirm, Esc=cancel"
	case ModeLink:
		if t, ok := m.diagram.Table(m.linkFrom.TableID); ok {
			status += fmt.Sprintf(" | Linking from %s (select target field, a=link)", t.Name)
		}
	}
	if m.dragTable >= 0 {
		if s, ok := m.resize.Session(m.dragTable); ok {
			if t, ok := m.diagram.Table(m.dragTable); ok {
				status += fmt.Sprintf(" | Resizing %s (%s) width %s", t.Name, s.Handle, formatUnit(t.CurrentWidth()))
			}
		}
	}
	if m.config.ReadOnly {
		status += " | READ-ONLY"
	}

	line := m.styles.mode.Render(modeStr) + " " + m.styles.status.Render(status)
	if m.successMessage != "" {
		line += " | " + m.styles.success.Render(m.successMessage)
	}
	if m.errorMessage != "" {
		line += " | " + m.styles.err.Render("ERROR: "+m.errorMessage)
	} else if m.successMessage == "" {
		line += m.styles.status.Render(" | ? for help | q to quit")
	}
	return line
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeResize:
		return "RESIZE"
	case ModeMove:
		return "MOVE"
	case ModeLink:
		return "LINK"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"erdraw Help",
	"===========",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor around the screen",
	"  Shift+h/j/k      Move cursor 2x faster",
	"  z                Toggle pan mode (direction keys scroll the diagram)",
	"  +/-              Zoom in/out",
	"",
	"Mouse:",
	"------",
	"  Hover a table    Show its resize handles (●)",
	"  Drag a handle    Resize the table, released drags are one undo step",
	"",
	"Table Operations:",
	"-----------------",
	"  r                Resize table under cursor from its right edge",
	"  R                Resize table under cursor from its left edge",
	"  m                Move table under cursor",
	"  a                Link the field under cursor to another field",
	"  d                Delete table under cursor",
	"  x                Delete field under cursor",
	"  L                Lock/unlock table under cursor",
	"",
	"Resize Mode:",
	"------------",
	"  h/l              Shrink/grow by one cell",
	"  H/L              Shrink/grow by two cells",
	"  Enter            Confirm resize",
	"  Esc              Cancel and restore the original width",
	"",
	"History and Export:",
	"-------------------",
	"  u                Undo",
	"  U                Redo",
	"  S                Export PNG",
	"  s                Export SVG",
	"  y                Copy SVG to clipboard",
	"",
	"  ?                Toggle this help",
	"  q                Quit",
}

func (m model) helpView() string {
	height := m.height - 1
	if height < 1 {
		height = len(helpLines)
	}
	start := m.helpScroll
	if maxStart := len(helpLines) - height; start > maxStart {
		start = max(0, maxStart)
	}
	end := min(len(helpLines), start+height)

	var b strings.Builder
	for i, line := range helpLines[start:end] {
		if start+i == 0 {
			line = m.styles.title.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.styles.status.Render("j/k scroll | Esc/?/q close help"))
	return b.String()
}
