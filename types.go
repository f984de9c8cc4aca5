package main

type model struct {
	width          int
	height         int
	cursorX        int
	cursorY        int
	zPanMode       bool
	diagram        *Diagram
	history        *History
	resize         *ResizeController
	capture        PointerCapturer
	zoom           float64
	panX           float64
	panY           float64
	mode           Mode
	help           bool
	helpScroll     int
	selectedTable  int
	dragTable      int // table with an active mouse drag, -1 when idle
	lastMouseX     int
	hoverTable     int
	linkFrom       fieldRef
	originalMoveX  float64
	originalMoveY  float64
	errorMessage   string
	successMessage string
	config         *Config
	styles         styles
}

type fieldRef struct {
	TableID int
	FieldID int
}

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
	Message string
}

type ResizeTableData struct {
	TableID int
	Patch   GeometryPatch
}

type MoveTableData struct {
	TableID int
	X       float64
	Y       float64
}

type RelationshipData struct {
	Relationship Relationship
}

type DeleteTableData struct {
	Table         Table
	Index         int
	Relationships []Relationship
}

type DeleteFieldData struct {
	TableID       int
	Field         Field
	Index         int
	Relationships []Relationship
}

type LockTableData struct {
	TableID int
	Locked  bool
}
