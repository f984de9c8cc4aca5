package main

import (
	"fmt"
	"log"
	"strings"
)

type Handle int

const (
	HandleLeft Handle = iota
	HandleRight
)

func (h Handle) String() string {
	if h == HandleLeft {
		return "left"
	}
	return "right"
}

// GeometryPatch is a partial table geometry update; nil fields are untouched.
type GeometryPatch struct {
	X     *float64
	Width *float64
}

func widthPatch(width float64) GeometryPatch {
	return GeometryPatch{Width: &width}
}

func widthXPatch(width, x float64) GeometryPatch {
	return GeometryPatch{Width: &width, X: &x}
}

func (p GeometryPatch) IsEmpty() bool {
	return p.X == nil && p.Width == nil
}

func (p GeometryPatch) String() string {
	var parts []string
	if p.Width != nil {
		parts = append(parts, "width:"+formatUnit(*p.Width))
	}
	if p.X != nil {
		parts = append(parts, "x:"+formatUnit(*p.X))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Intent is a request from the resize core for the host to apply.
type Intent interface {
	isIntent()
}

type PatchRequest struct {
	TableID int
	Patch   GeometryPatch
}

type HistoryRequest struct {
	Action Action
}

type ClearRedoRequest struct{}

func (PatchRequest) isIntent()     {}
func (HistoryRequest) isIntent()   {}
func (ClearRedoRequest) isIntent() {}

// PointerCapturer routes a pointer's events to the active handle.
type PointerCapturer interface {
	SetPointerCapture(pointerID int) error
	ReleasePointerCapture(pointerID int) error
}

// ResizeSession is the state of one drag, from pointer-down to pointer-up.
type ResizeSession struct {
	TableID    int
	Handle     Handle
	PointerID  int
	StartWidth float64
	StartX     float64
	Captured   bool
}

// ResizeController runs the left/right handle state machine for every table.
// At most one session exists per table.
type ResizeController struct {
	ReadOnly bool
	sessions map[int]*ResizeSession
	hovered  map[int]bool
}

func NewResizeController(readOnly bool) *ResizeController {
	return &ResizeController{
		ReadOnly: readOnly,
		sessions: make(map[int]*ResizeSession),
		hovered:  make(map[int]bool),
	}
}

// Enabled reports whether t may be resized at all.
func (rc *ResizeController) Enabled(t Table) bool {
	return !rc.ReadOnly && !t.Locked
}

func (rc *ResizeController) Resizing(tableID int) bool {
	_, ok := rc.sessions[tableID]
	return ok
}

// Session returns a copy of the active session for a table.
func (rc *ResizeController) Session(tableID int) (ResizeSession, bool) {
	s, ok := rc.sessions[tableID]
	if !ok {
		return ResizeSession{}, false
	}
	return *s, true
}

func (rc *ResizeController) ShowResizers(tableID int) bool {
	return rc.hovered[tableID] || rc.Resizing(tableID)
}

func (rc *ResizeController) PointerEnter(tableID int) {
	rc.hovered[tableID] = true
}

// PointerLeave hides the handles unless a drag is in progress.
func (rc *ResizeController) PointerLeave(tableID int) {
	if rc.Resizing(tableID) {
		return
	}
	delete(rc.hovered, tableID)
}

// PointerDown starts a drag on one of t's handles. It returns nil when the
// table cannot be resized or already has a session.
func (rc *ResizeController) PointerDown(t Table, h Handle, pointerID int, capturer PointerCapturer) *ResizeSession {
	if !rc.Enabled(t) || rc.Resizing(t.ID) {
		return nil
	}
	s := &ResizeSession{
		TableID:    t.ID,
		Handle:     h,
		PointerID:  pointerID,
		StartWidth: t.CurrentWidth(),
		StartX:     t.X,
	}
	if capturer != nil {
		if err := capturer.SetPointerCapture(pointerID); err != nil {
			log.Printf("resize: %s drag on %s continues without pointer capture: %v", h, t.Name, err)
		} else {
			s.Captured = true
		}
	}
	rc.sessions[t.ID] = s
	log.Printf("resize: %s drag start on %s width=%s x=%s", h, t.Name, formatUnit(s.StartWidth), formatUnit(s.StartX))
	return s
}

// PointerMove applies one frame of movement. t must be the table's current
// geometry; movementX is in screen units.
func (rc *ResizeController) PointerMove(t Table, movementX, zoom float64) []Intent {
	s, ok := rc.sessions[t.ID]
	if !ok || !rc.Enabled(t) {
		return nil
	}
	if zoom <= 0 {
		zoom = 1
	}
	delta := movementX / zoom
	current := t.CurrentWidth()

	if s.Handle == HandleRight {
		next := max(minTableWidth, current+delta)
		if next == current {
			return nil
		}
		return []Intent{PatchRequest{TableID: t.ID, Patch: widthPatch(next)}}
	}

	width := current - delta
	x := t.X + delta
	if width < minTableWidth {
		width = minTableWidth
		x = t.X + (current - minTableWidth)
	}
	if width == current && x == t.X {
		return nil
	}
	return []Intent{PatchRequest{TableID: t.ID, Patch: widthXPatch(width, x)}}
}

// PointerUp ends the drag. When the final geometry differs from the session
// baseline it yields one history entry followed by a redo clear.
func (rc *ResizeController) PointerUp(t Table, capturer PointerCapturer) []Intent {
	s, ok := rc.sessions[t.ID]
	if !ok {
		return nil
	}
	delete(rc.sessions, t.ID)
	if s.Captured && capturer != nil {
		if err := capturer.ReleasePointerCapture(s.PointerID); err != nil {
			log.Printf("resize: release pointer capture on %s: %v", t.Name, err)
		}
	}

	finalWidth := max(minTableWidth, t.CurrentWidth())
	finalX := t.X
	log.Printf("resize: %s drag end on %s width %s->%s x %s->%s", s.Handle, t.Name,
		formatUnit(s.StartWidth), formatUnit(finalWidth), formatUnit(s.StartX), formatUnit(finalX))

	var undo, redo GeometryPatch
	var extra string
	switch s.Handle {
	case HandleLeft:
		if finalWidth == s.StartWidth && finalX == s.StartX {
			return nil
		}
		undo, redo = widthXPatch(s.StartWidth, s.StartX), widthXPatch(finalWidth, finalX)
		extra = "[width/x]"
	default:
		if finalWidth == s.StartWidth {
			return nil
		}
		undo, redo = widthPatch(s.StartWidth), widthPatch(finalWidth)
		extra = "[width]"
	}

	action := Action{
		Type:    ActionResizeTable,
		Data:    ResizeTableData{TableID: t.ID, Patch: redo},
		Inverse: ResizeTableData{TableID: t.ID, Patch: undo},
		Message: fmt.Sprintf("edit table %s %s", t.Name, extra),
	}
	return []Intent{HistoryRequest{Action: action}, ClearRedoRequest{}}
}

// LostPointerCapture abandons the drag: the table is put back to the session
// baseline and nothing is written to history.
func (rc *ResizeController) LostPointerCapture(t Table) []Intent {
	s, ok := rc.sessions[t.ID]
	if !ok {
		return nil
	}
	delete(rc.sessions, t.ID)
	log.Printf("resize: %s drag on %s abandoned, pointer capture lost", s.Handle, t.Name)

	if s.Handle == HandleLeft {
		if t.CurrentWidth() == s.StartWidth && t.X == s.StartX {
			return nil
		}
		return []Intent{PatchRequest{TableID: t.ID, Patch: widthXPatch(s.StartWidth, s.StartX)}}
	}
	if t.CurrentWidth() == s.StartWidth {
		return nil
	}
	return []Intent{PatchRequest{TableID: t.ID, Patch: widthPatch(s.StartWidth)}}
}
