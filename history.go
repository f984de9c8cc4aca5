package main

// History is the diagram's transaction log. Appending never rewrites past
// entries; the oldest entry is dropped once max is exceeded.
type History struct {
	undoStack []Action
	redoStack []Action
	max       int
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = historyCapacity
	}
	return &History{
		undoStack: make([]Action, 0, max),
		redoStack: make([]Action, 0),
		max:       max,
	}
}

func (h *History) Append(a Action) {
	h.undoStack = append(h.undoStack, a)
	if len(h.undoStack) > h.max {
		h.undoStack = h.undoStack[1:]
	}
}

func (h *History) ClearRedo() {
	h.redoStack = h.redoStack[:0]
}

func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Stats returns the number of undoable and redoable entries.
func (h *History) Stats() (undo, redo int) {
	return len(h.undoStack), len(h.redoStack)
}

// Last returns the most recent undoable entry.
func (h *History) Last() (Action, bool) {
	if len(h.undoStack) == 0 {
		return Action{}, false
	}
	return h.undoStack[len(h.undoStack)-1], true
}

func (h *History) popUndo() (Action, bool) {
	a, ok := h.Last()
	if ok {
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
	}
	return a, ok
}

func (h *History) popRedo() (Action, bool) {
	if len(h.redoStack) == 0 {
		return Action{}, false
	}
	last := len(h.redoStack) - 1
	a := h.redoStack[last]
	h.redoStack = h.redoStack[:last]
	return a, true
}

func (h *History) pushRedo(a Action) {
	h.redoStack = append(h.redoStack, a)
}

// pushUndo re-records a redone action without touching the redo stack.
func (h *History) pushUndo(a Action) {
	h.undoStack = append(h.undoStack, a)
}
