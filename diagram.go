package main

import (
	"errors"
	"fmt"
)

var (
	errUnknownTable = errors.New("unknown table")
	errUnknownField = errors.New("unknown field")
)

type Field struct {
	ID      int
	Name    string
	Type    string
	Primary bool
	NotNull bool
	Unique  bool
	Default string
	Comment string
}

type Table struct {
	ID      int
	Name    string
	Comment string
	Color   string
	X       float64
	Y       float64
	Width   float64 // 0 means tableWidth
	Fields  []Field
	Locked  bool
}

// CurrentWidth returns the table width, falling back to tableWidth when unset.
func (t Table) CurrentWidth() float64 {
	if t.Width <= 0 {
		return tableWidth
	}
	return t.Width
}

func (t Table) Height() float64 {
	return tableColorStripHeight + tableHeaderHeight + float64(len(t.Fields))*tableFieldHeight
}

func (t Table) Contains(x, y float64) bool {
	return x >= t.X && x <= t.X+t.CurrentWidth() && y >= t.Y && y <= t.Y+t.Height()
}

func (t Table) fieldIndex(fieldID int) int {
	for i, f := range t.Fields {
		if f.ID == fieldID {
			return i
		}
	}
	return -1
}

type Relationship struct {
	ID           int
	Name         string
	StartTableID int
	StartFieldID int
	EndTableID   int
	EndFieldID   int
	Cardinality  string
}

func (r Relationship) touches(tableID int) bool {
	return r.StartTableID == tableID || r.EndTableID == tableID
}

func (r Relationship) touchesField(tableID, fieldID int) bool {
	return (r.StartTableID == tableID && r.StartFieldID == fieldID) ||
		(r.EndTableID == tableID && r.EndFieldID == fieldID)
}

// Diagram owns the tables and relationships being edited. Tables are kept in
// paint order; later tables draw over earlier ones.
type Diagram struct {
	Name          string
	tables        []Table
	relationships []Relationship
	nextTableID   int
	nextFieldID   int
	nextRelID     int
}

func NewDiagram(name string) *Diagram {
	return &Diagram{
		Name:          name,
		tables:        make([]Table, 0),
		relationships: make([]Relationship, 0),
	}
}

func (d *Diagram) Tables() []Table {
	out := make([]Table, len(d.tables))
	copy(out, d.tables)
	return out
}

func (d *Diagram) Relationships() []Relationship {
	out := make([]Relationship, len(d.relationships))
	copy(out, d.relationships)
	return out
}

func (d *Diagram) IsEmpty() bool {
	return len(d.tables) == 0
}

// AddTable appends a table and assigns fresh ids to it and its fields.
func (d *Diagram) AddTable(t Table) int {
	t.ID = d.nextTableID
	d.nextTableID++
	fields := make([]Field, len(t.Fields))
	for i, f := range t.Fields {
		f.ID = d.nextFieldID
		d.nextFieldID++
		fields[i] = f
	}
	t.Fields = fields
	if t.Color == "" {
		t.Color = defaultColor
	}
	d.tables = append(d.tables, t)
	return t.ID
}

func (d *Diagram) indexOf(id int) int {
	for i := range d.tables {
		if d.tables[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Diagram) Table(id int) (Table, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return Table{}, false
	}
	return d.tables[i], true
}

// UpdateTable applies a partial geometry update. Calling it with the same
// patch twice leaves the table unchanged.
func (d *Diagram) UpdateTable(id int, p GeometryPatch) error {
	i := d.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update table %d: %w", id, errUnknownTable)
	}
	if p.X != nil {
		d.tables[i].X = *p.X
	}
	if p.Width != nil {
		d.tables[i].Width = *p.Width
	}
	return nil
}

func (d *Diagram) MoveTable(id int, x, y float64) error {
	i := d.indexOf(id)
	if i < 0 {
		return fmt.Errorf("move table %d: %w", id, errUnknownTable)
	}
	d.tables[i].X = x
	d.tables[i].Y = y
	return nil
}

func (d *Diagram) SetLocked(id int, locked bool) error {
	i := d.indexOf(id)
	if i < 0 {
		return fmt.Errorf("lock table %d: %w", id, errUnknownTable)
	}
	d.tables[i].Locked = locked
	return nil
}

// DeleteTable removes a table together with every relationship touching it.
// The returned index and relationships are what RestoreTable needs.
func (d *Diagram) DeleteTable(id int) (Table, int, []Relationship, error) {
	i := d.indexOf(id)
	if i < 0 {
		return Table{}, -1, nil, fmt.Errorf("delete table %d: %w", id, errUnknownTable)
	}
	removed := d.tables[i]
	d.tables = append(d.tables[:i:i], d.tables[i+1:]...)

	var detached []Relationship
	kept := make([]Relationship, 0, len(d.relationships))
	for _, r := range d.relationships {
		if r.touches(id) {
			detached = append(detached, r)
			continue
		}
		kept = append(kept, r)
	}
	d.relationships = kept
	return removed, i, detached, nil
}

func (d *Diagram) RestoreTable(t Table, index int) {
	if index < 0 || index > len(d.tables) {
		index = len(d.tables)
	}
	d.tables = append(d.tables, Table{})
	copy(d.tables[index+1:], d.tables[index:])
	d.tables[index] = t
}

// DeleteField removes a field and the relationships attached to it.
func (d *Diagram) DeleteField(tableID, fieldID int) (Field, int, []Relationship, error) {
	i := d.indexOf(tableID)
	if i < 0 {
		return Field{}, -1, nil, fmt.Errorf("delete field %d: %w", fieldID, errUnknownTable)
	}
	t := &d.tables[i]
	fi := t.fieldIndex(fieldID)
	if fi < 0 {
		return Field{}, -1, nil, fmt.Errorf("delete field %d of %s: %w", fieldID, t.Name, errUnknownField)
	}
	removed := t.Fields[fi]
	fields := make([]Field, 0, len(t.Fields)-1)
	fields = append(fields, t.Fields[:fi]...)
	t.Fields = append(fields, t.Fields[fi+1:]...)

	var detached []Relationship
	kept := make([]Relationship, 0, len(d.relationships))
	for _, r := range d.relationships {
		if r.touchesField(tableID, fieldID) {
			detached = append(detached, r)
			continue
		}
		kept = append(kept, r)
	}
	d.relationships = kept
	return removed, fi, detached, nil
}

func (d *Diagram) RestoreField(tableID int, f Field, index int) error {
	i := d.indexOf(tableID)
	if i < 0 {
		return fmt.Errorf("restore field %d: %w", f.ID, errUnknownTable)
	}
	t := &d.tables[i]
	if index < 0 || index > len(t.Fields) {
		index = len(t.Fields)
	}
	fields := make([]Field, 0, len(t.Fields)+1)
	fields = append(fields, t.Fields[:index]...)
	fields = append(fields, f)
	t.Fields = append(fields, t.Fields[index:]...)
	return nil
}

// AddRelationship validates both ends and assigns the relationship an id.
func (d *Diagram) AddRelationship(r Relationship) (Relationship, error) {
	for _, end := range [][2]int{{r.StartTableID, r.StartFieldID}, {r.EndTableID, r.EndFieldID}} {
		t, ok := d.Table(end[0])
		if !ok {
			return Relationship{}, fmt.Errorf("add relationship: table %d: %w", end[0], errUnknownTable)
		}
		if t.fieldIndex(end[1]) < 0 {
			return Relationship{}, fmt.Errorf("add relationship: field %d of %s: %w", end[1], t.Name, errUnknownField)
		}
	}
	r.ID = d.nextRelID
	d.nextRelID++
	if r.Cardinality == "" {
		r.Cardinality = "N:1"
	}
	d.relationships = append(d.relationships, r)
	return r, nil
}

func (d *Diagram) RemoveRelationship(id int) (Relationship, bool) {
	for i, r := range d.relationships {
		if r.ID == id {
			d.relationships = append(d.relationships[:i:i], d.relationships[i+1:]...)
			return r, true
		}
	}
	return Relationship{}, false
}

func (d *Diagram) RestoreRelationship(r Relationship) {
	d.relationships = append(d.relationships, r)
}

// TableAt returns the id of the topmost table containing the point, or -1.
func (d *Diagram) TableAt(x, y float64) int {
	for i := len(d.tables) - 1; i >= 0; i-- {
		if d.tables[i].Contains(x, y) {
			return d.tables[i].ID
		}
	}
	return -1
}

// FieldAt returns the index of the field row at diagram y, or -1.
func (d *Diagram) FieldAt(tableID int, y float64) int {
	t, ok := d.Table(tableID)
	if !ok {
		return -1
	}
	offset := y - t.Y - tableColorStripHeight - tableHeaderHeight
	if offset < 0 {
		return -1
	}
	idx := int(offset / tableFieldHeight)
	if idx >= len(t.Fields) {
		return -1
	}
	return idx
}

// Anchors returns the diagram-space anchors of a relationship. A missing
// table or field yields a nil anchor.
func (d *Diagram) Anchors(r Relationship) (start, end *Anchor) {
	anchor := func(tableID, fieldID int) *Anchor {
		t, ok := d.Table(tableID)
		if !ok {
			return nil
		}
		fi := t.fieldIndex(fieldID)
		if fi < 0 {
			return nil
		}
		a := AnchorFor(t, fi)
		return &a
	}
	return anchor(r.StartTableID, r.StartFieldID), anchor(r.EndTableID, r.EndFieldID)
}

// Bounds returns the extent of all tables in diagram units.
func (d *Diagram) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	for i, t := range d.tables {
		right, bottom := t.X+t.CurrentWidth(), t.Y+t.Height()
		if i == 0 {
			minX, minY, maxX, maxY = t.X, t.Y, right, bottom
			continue
		}
		minX = min(minX, t.X)
		minY = min(minY, t.Y)
		maxX = max(maxX, right)
		maxY = max(maxY, bottom)
	}
	return minX, minY, maxX, maxY, len(d.tables) > 0
}
