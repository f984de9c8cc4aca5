package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeResize
	ModeMove
	ModeLink
)

type ActionType int

const (
	ActionResizeTable ActionType = iota
	ActionMoveTable
	ActionAddRelationship
	ActionDeleteTable
	ActionDeleteField
	ActionLockTable
)

// Table geometry in diagram units.
const (
	tableWidth            = 200.0
	minTableWidth         = 180.0
	tableHeaderHeight     = 40.0
	tableColorStripHeight = 10.0
	tableFieldHeight      = 36.0
)

// Router constants. The radius and span are scaled by zoom at call time;
// minCornerRadius is in screen units.
const (
	cornerRadius       = 10.0
	nearHorizontalSpan = 36.0 // vertical distance treated as "same row"
	minCornerRadius    = 2.0
)

// Terminal cell size in screen units.
const (
	cellWidth  = 10.0
	cellHeight = 18.0
)

const (
	defaultZoom       = 1.0
	minZoom           = 0.25
	maxZoom           = 4.0
	zoomStep          = 0.25
	historyCapacity   = 100
	defaultColor      = "#175e7a"
	importColumns     = 4
	importGap         = 80.0
	mousePointerID    = 1
	keyboardPointerID = 2
)
