package main

import tea "github.com/charmbracelet/bubbletea"

func (m model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	if m.zPanMode {
		m.handlePan(key, speed)
		return m, nil
	}
	m.handleCursorMove(key, speed)
	return m, nil
}

// handlePan scrolls the view by whole cells, converted to diagram units at
// the current zoom.
func (m *model) handlePan(key string, speed int) {
	dx := float64(speed) * cellWidth / m.zoom
	dy := float64(speed) * cellHeight / m.zoom
	switch key {
	case "h", "left", "H", "shift+left":
		m.panX -= dx
	case "l", "right", "L", "shift+right":
		m.panX += dx
	case "k", "up", "K", "shift+up":
		m.panY -= dy
	case "j", "down", "J", "shift+down":
		m.panY += dy
	}
}

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
}

func (m model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}
