package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

var errReadOnly = errors.New("diagram is read-only")

// terminalCapture grants pointer capture unconditionally: the terminal
// already reports every motion event to the program.
type terminalCapture struct{}

func (terminalCapture) SetPointerCapture(int) error     { return nil }
func (terminalCapture) ReleasePointerCapture(int) error { return nil }

func newModel(d *Diagram, cfg *Config) model {
	if cfg == nil {
		cfg = defaultConfig()
	}
	zoom := cfg.Zoom
	if zoom <= 0 {
		zoom = defaultZoom
	}
	return model{
		diagram:       d,
		history:       NewHistory(historyCapacity),
		resize:        NewResizeController(cfg.ReadOnly),
		capture:       terminalCapture{},
		zoom:          zoom,
		mode:          ModeNormal,
		selectedTable: -1,
		dragTable:     -1,
		hoverTable:    -1,
		config:        cfg,
		styles:        newStyles(cfg.Theme),
	}
}

func (m model) viewport() viewport {
	return viewport{panX: m.panX, panY: m.panY, zoom: m.zoom}
}

func (m *model) ensureCursorInBounds() {
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if m.width > 0 && m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	maxY := m.height - 2
	if maxY < 0 {
		maxY = 0
	}
	if m.cursorY > maxY {
		m.cursorY = maxY
	}
}

// applyIntents performs the store and history writes requested by the
// resize controller.
func (m *model) applyIntents(intents []Intent) {
	for _, in := range intents {
		switch in := in.(type) {
		case PatchRequest:
			if err := m.diagram.UpdateTable(in.TableID, in.Patch); err != nil {
				m.errorMessage = err.Error()
			}
		case HistoryRequest:
			m.history.Append(in.Action)
			m.successMessage = in.Action.Message
		case ClearRedoRequest:
			m.history.ClearRedo()
		}
	}
}

// abandonResize drops any drag in progress, restoring the table it was
// resizing. Used when the terminal can no longer deliver the drag's events.
func (m *model) abandonResize() {
	ids := []int{m.dragTable}
	if m.mode == ModeResize {
		ids = append(ids, m.selectedTable)
	}
	for _, id := range ids {
		if id < 0 {
			continue
		}
		if t, ok := m.diagram.Table(id); ok {
			m.applyIntents(m.resize.LostPointerCapture(t))
		}
	}
	m.dragTable = -1
	if m.mode == ModeResize {
		m.mode = ModeNormal
		m.selectedTable = -1
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.dragTable >= 0 || m.mode == ModeResize {
			m.abandonResize()
			m.errorMessage = "Resize cancelled"
		}
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}
		if m.help {
			switch key {
			case "esc", "q", "?":
				m.help = false
				m.helpScroll = 0
			case "j", "down":
				m.helpScroll++
			case "k", "up":
				if m.helpScroll > 0 {
					m.helpScroll--
				}
			}
			return m, nil
		}

		switch m.mode {
		case ModeResize:
			return m.updateResize(key)
		case ModeMove:
			return m.updateMove(key)
		case ModeLink:
			return m.updateLink(key)
		}
		return m.updateNormal(key)
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	d, v := m.diagram, m.viewport()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.cursorX, m.cursorY = msg.X, msg.Y
		m.ensureCursorInBounds()
		if m.mode != ModeNormal || m.dragTable >= 0 {
			return
		}
		id, h, ok := v.handleAt(d, m.resize, msg.X, msg.Y)
		if !ok {
			return
		}
		t, _ := d.Table(id)
		if m.resize.PointerDown(t, h, mousePointerID, m.capture) == nil {
			return
		}
		m.dragTable = id
		m.selectedTable = id
		m.lastMouseX = msg.X
		m.errorMessage = ""
		m.successMessage = ""

	case tea.MouseActionMotion:
		if m.dragTable >= 0 {
			dx := msg.X - m.lastMouseX
			m.lastMouseX = msg.X
			if dx == 0 {
				return
			}
			t, ok := d.Table(m.dragTable)
			if !ok {
				m.dragTable = -1
				return
			}
			m.applyIntents(m.resize.PointerMove(t, float64(dx)*cellWidth, m.zoom))
			return
		}
		m.updateHover(msg.X, msg.Y)

	case tea.MouseActionRelease:
		if m.dragTable < 0 {
			return
		}
		if t, ok := d.Table(m.dragTable); ok {
			m.applyIntents(m.resize.PointerUp(t, m.capture))
		}
		m.dragTable = -1
		m.selectedTable = -1
		m.updateHover(msg.X, msg.Y)
	}
}

func (m *model) updateHover(col, row int) {
	id := m.viewport().tableAtCell(m.diagram, col, row)
	if id == m.hoverTable {
		return
	}
	if m.hoverTable >= 0 {
		m.resize.PointerLeave(m.hoverTable)
	}
	if id >= 0 {
		m.resize.PointerEnter(id)
	}
	m.hoverTable = id
}

func (m model) tableUnderCursor() (Table, bool) {
	id := m.viewport().tableAtCell(m.diagram, m.cursorX, m.cursorY)
	if id < 0 {
		return Table{}, false
	}
	return m.diagram.Table(id)
}

func (m model) fieldUnderCursor() (Table, int, bool) {
	t, ok := m.tableUnderCursor()
	if !ok {
		return Table{}, -1, false
	}
	idx := m.viewport().fieldAtCell(m.diagram, t.ID, m.cursorY)
	if idx < 0 {
		return Table{}, -1, false
	}
	return t, idx, true
}

// editable reports whether the table may be changed, setting the status
// line when it may not.
func (m *model) editable(t Table) bool {
	if m.config.ReadOnly {
		m.errorMessage = errReadOnly.Error()
		return false
	}
	if t.Locked {
		m.errorMessage = fmt.Sprintf("Table %s is locked", t.Name)
		return false
	}
	return true
}

func (m model) updateNormal(key string) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.help = true
		return m, nil
	case "z":
		m.zPanMode = !m.zPanMode
		return m, nil
	case "h", "j", "k", "l", "left", "right", "up", "down",
		"H", "J", "K", "shift+left", "shift+right", "shift+up", "shift+down":
		return m.handleNavigation(key, m.getMoveSpeed(key))
	case "+", "=":
		m.setZoom(m.zoom + zoomStep)
		return m, nil
	case "-":
		m.setZoom(m.zoom - zoomStep)
		return m, nil
	case "u":
		m.abandonResize()
		if m.config.ReadOnly {
			m.errorMessage = errReadOnly.Error()
			return m, nil
		}
		m.undo()
		return m, nil
	case "U":
		m.abandonResize()
		if m.config.ReadOnly {
			m.errorMessage = errReadOnly.Error()
			return m, nil
		}
		m.redo()
		return m, nil
	case "r", "R":
		m.startKeyboardResize(key)
		return m, nil
	case "m":
		t, ok := m.tableUnderCursor()
		if !ok || !m.editable(t) {
			return m, nil
		}
		m.selectedTable = t.ID
		m.originalMoveX, m.originalMoveY = t.X, t.Y
		m.mode = ModeMove
		return m, nil
	case "a":
		if m.config.ReadOnly {
			m.errorMessage = errReadOnly.Error()
			return m, nil
		}
		t, idx, ok := m.fieldUnderCursor()
		if !ok {
			m.errorMessage = "No field under cursor"
			return m, nil
		}
		m.linkFrom = fieldRef{TableID: t.ID, FieldID: t.Fields[idx].ID}
		m.selectedTable = t.ID
		m.mode = ModeLink
		return m, nil
	case "d":
		t, ok := m.tableUnderCursor()
		if !ok || !m.editable(t) {
			return m, nil
		}
		m.deleteTable(t)
		return m, nil
	case "x":
		t, idx, ok := m.fieldUnderCursor()
		if !ok || !m.editable(t) {
			return m, nil
		}
		m.deleteField(t, t.Fields[idx])
		return m, nil
	case "L":
		m.toggleLock()
		return m, nil
	case "S":
		m.exportFile("png")
		return m, nil
	case "s":
		m.exportFile("svg")
		return m, nil
	case "y":
		if err := copyToClipboard(m.diagram); err != nil {
			m.errorMessage = fmt.Sprintf("Error copying diagram: %s", err.Error())
		} else {
			m.successMessage = "Copied SVG to clipboard"
		}
		return m, nil
	}
	return m, nil
}

func (m *model) setZoom(z float64) {
	m.zoom = min(maxZoom, max(minZoom, z))
}

func (m *model) startKeyboardResize(key string) {
	if m.dragTable >= 0 {
		return
	}
	t, ok := m.tableUnderCursor()
	if !ok || !m.editable(t) {
		return
	}
	h := HandleRight
	if key == "R" {
		h = HandleLeft
	}
	if m.resize.PointerDown(t, h, keyboardPointerID, m.capture) == nil {
		m.errorMessage = fmt.Sprintf("Table %s is already being resized", t.Name)
		return
	}
	m.selectedTable = t.ID
	m.mode = ModeResize
}

func (m model) updateResize(key string) (tea.Model, tea.Cmd) {
	t, ok := m.diagram.Table(m.selectedTable)
	if !ok {
		m.mode = ModeNormal
		m.selectedTable = -1
		return m, nil
	}
	var cells float64
	switch key {
	case "esc":
		m.abandonResize()
		return m, nil
	case "enter":
		m.applyIntents(m.resize.PointerUp(t, m.capture))
		m.mode = ModeNormal
		m.selectedTable = -1
		return m, nil
	case "h", "left":
		cells = -1
	case "H", "shift+left":
		cells = -2
	case "l", "right":
		cells = 1
	case "L", "shift+right":
		cells = 2
	default:
		return m, nil
	}
	m.applyIntents(m.resize.PointerMove(t, cells*cellWidth, m.zoom))
	return m, nil
}

func (m model) updateMove(key string) (tea.Model, tea.Cmd) {
	t, ok := m.diagram.Table(m.selectedTable)
	if !ok {
		m.mode = ModeNormal
		m.selectedTable = -1
		return m, nil
	}
	switch key {
	case "esc":
		m.diagram.MoveTable(t.ID, m.originalMoveX, m.originalMoveY)
		m.mode = ModeNormal
		m.selectedTable = -1
		return m, nil
	case "enter":
		if t.X != m.originalMoveX || t.Y != m.originalMoveY {
			m.recordAction(ActionMoveTable,
				MoveTableData{TableID: t.ID, X: t.X, Y: t.Y},
				MoveTableData{TableID: t.ID, X: m.originalMoveX, Y: m.originalMoveY},
				fmt.Sprintf("move table %s", t.Name))
		}
		m.mode = ModeNormal
		m.selectedTable = -1
		return m, nil
	}

	speed := float64(m.getMoveSpeed(key))
	dx, dy := 0.0, 0.0
	switch key {
	case "h", "left", "H", "shift+left":
		dx = -speed * cellWidth
	case "l", "right", "L", "shift+right":
		dx = speed * cellWidth
	case "k", "up", "K", "shift+up":
		dy = -speed * cellHeight
	case "j", "down", "J", "shift+down":
		dy = speed * cellHeight
	default:
		return m, nil
	}
	m.diagram.MoveTable(t.ID, t.X+dx/m.zoom, t.Y+dy/m.zoom)
	return m, nil
}

func (m model) updateLink(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = ModeNormal
		m.selectedTable = -1
		return m, nil
	case "a", "enter":
		t, idx, ok := m.fieldUnderCursor()
		if !ok {
			m.errorMessage = "No field under cursor"
			return m, nil
		}
		rel, err := m.diagram.AddRelationship(Relationship{
			StartTableID: m.linkFrom.TableID,
			StartFieldID: m.linkFrom.FieldID,
			EndTableID:   t.ID,
			EndFieldID:   t.Fields[idx].ID,
		})
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		from, _ := m.diagram.Table(rel.StartTableID)
		m.recordAction(ActionAddRelationship, RelationshipData{Relationship: rel}, nil,
			fmt.Sprintf("link %s to %s", from.Name, t.Name))
		m.successMessage = fmt.Sprintf("Linked %s to %s", from.Name, t.Name)
		m.mode = ModeNormal
		m.selectedTable = -1
		return m, nil
	}
	return m.handleNavigation(key, m.getMoveSpeed(key))
}

func (m *model) deleteTable(t Table) {
	if m.dragTable == t.ID {
		m.abandonResize()
	}
	removed, index, rels, err := m.diagram.DeleteTable(t.ID)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.recordAction(ActionDeleteTable,
		DeleteTableData{Table: removed, Index: index, Relationships: rels}, nil,
		fmt.Sprintf("delete table %s", t.Name))
	if m.hoverTable == t.ID {
		m.hoverTable = -1
	}
	m.successMessage = fmt.Sprintf("Deleted table %s", t.Name)
}

func (m *model) deleteField(t Table, f Field) {
	removed, index, rels, err := m.diagram.DeleteField(t.ID, f.ID)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.recordAction(ActionDeleteField,
		DeleteFieldData{TableID: t.ID, Field: removed, Index: index, Relationships: rels}, nil,
		fmt.Sprintf("delete field %s.%s", t.Name, f.Name))
	m.successMessage = fmt.Sprintf("Deleted field %s.%s", t.Name, f.Name)
}

func (m *model) toggleLock() {
	if m.config.ReadOnly {
		m.errorMessage = errReadOnly.Error()
		return
	}
	t, ok := m.tableUnderCursor()
	if !ok {
		return
	}
	if m.dragTable == t.ID {
		m.abandonResize()
	}
	m.diagram.SetLocked(t.ID, !t.Locked)
	verb, done := "lock", "Locked"
	if t.Locked {
		verb, done = "unlock", "Unlocked"
	}
	m.recordAction(ActionLockTable,
		LockTableData{TableID: t.ID, Locked: !t.Locked},
		LockTableData{TableID: t.ID, Locked: t.Locked},
		fmt.Sprintf("%s table %s", verb, t.Name))
	m.successMessage = fmt.Sprintf("%s table %s", done, t.Name)
}

func (m *model) exportFile(kind string) {
	path := m.config.GetSavePath(sanitizeFilename(m.diagram.Name) + "." + kind)
	var err error
	if kind == "png" {
		err = ExportPNG(m.diagram, path, defaultZoom)
	} else {
		err = ExportSVGFile(m.diagram, path, defaultZoom)
	}
	if err != nil {
		m.errorMessage = fmt.Sprintf("Error exporting %s: %s", kind, err.Error())
		return
	}
	m.successMessage = fmt.Sprintf("Exported to %s", path)
}
