package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shopDiagram has customers <- orders -> products, each with an id first.
func shopDiagram(t *testing.T) (*Diagram, map[string]Table) {
	t.Helper()
	d := NewDiagram("shop")
	d.AddTable(Table{Name: "customers", X: 0, Y: 0, Fields: []Field{
		{Name: "id", Type: "int", Primary: true}, {Name: "email", Type: "text"},
	}})
	d.AddTable(Table{Name: "orders", X: 400, Y: 200, Fields: []Field{
		{Name: "id", Type: "int", Primary: true}, {Name: "customer_id", Type: "int"}, {Name: "product_id", Type: "int"},
	}})
	d.AddTable(Table{Name: "products", X: 800, Y: 0, Width: 240, Fields: []Field{
		{Name: "id", Type: "int", Primary: true},
	}})

	byName := map[string]Table{}
	for _, tbl := range d.Tables() {
		byName[tbl.Name] = tbl
	}
	link := func(from string, fromField int, to string, toField int) {
		_, err := d.AddRelationship(Relationship{
			StartTableID: byName[from].ID, StartFieldID: byName[from].Fields[fromField].ID,
			EndTableID: byName[to].ID, EndFieldID: byName[to].Fields[toField].ID,
		})
		require.NoError(t, err)
	}
	link("orders", 1, "customers", 0)
	link("orders", 2, "products", 0)
	return d, byName
}

func TestAddTableAssignsIDs(t *testing.T) {
	d, tables := shopDiagram(t)

	assert.Len(t, d.Tables(), 3)
	assert.Equal(t, 0, tables["customers"].ID)
	assert.Equal(t, 1, tables["orders"].ID)
	assert.Equal(t, defaultColor, tables["orders"].Color)

	seen := map[int]bool{}
	for _, tbl := range d.Tables() {
		for _, f := range tbl.Fields {
			assert.False(t, seen[f.ID], "field ids are unique across tables")
			seen[f.ID] = true
		}
	}
}

func TestTableGeometry(t *testing.T) {
	tbl := Table{X: 10, Y: 20, Fields: make([]Field, 2)}

	assert.Equal(t, tableWidth, tbl.CurrentWidth())
	assert.Equal(t, 122.0, tbl.Height())
	assert.True(t, tbl.Contains(210, 142))
	assert.False(t, tbl.Contains(211, 100))
}

func TestUpdateTable(t *testing.T) {
	d, tables := shopDiagram(t)
	id := tables["orders"].ID

	patch := widthXPatch(260, 340)
	require.NoError(t, d.UpdateTable(id, patch))
	require.NoError(t, d.UpdateTable(id, patch))

	got, _ := d.Table(id)
	assert.Equal(t, 260.0, got.Width)
	assert.Equal(t, 340.0, got.X)
	assert.Equal(t, 200.0, got.Y)

	err := d.UpdateTable(99, patch)
	assert.True(t, errors.Is(err, errUnknownTable))
}

func TestDeleteAndRestoreTable(t *testing.T) {
	d, tables := shopDiagram(t)

	removed, index, rels, err := d.DeleteTable(tables["customers"].ID)
	require.NoError(t, err)
	assert.Equal(t, "customers", removed.Name)
	assert.Equal(t, 0, index)
	assert.Len(t, rels, 1)
	assert.Len(t, d.Tables(), 2)
	assert.Len(t, d.Relationships(), 1)

	d.RestoreTable(removed, index)
	for _, r := range rels {
		d.RestoreRelationship(r)
	}
	assert.Equal(t, "customers", d.Tables()[0].Name)
	assert.Len(t, d.Relationships(), 2)

	_, _, _, err = d.DeleteTable(42)
	assert.ErrorIs(t, err, errUnknownTable)
}

func TestDeleteAndRestoreField(t *testing.T) {
	d, tables := shopDiagram(t)
	orders := tables["orders"]
	field := orders.Fields[1]

	removed, index, rels, err := d.DeleteField(orders.ID, field.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer_id", removed.Name)
	assert.Equal(t, 1, index)
	require.Len(t, rels, 1)
	assert.Equal(t, tables["customers"].ID, rels[0].EndTableID)

	got, _ := d.Table(orders.ID)
	assert.Len(t, got.Fields, 2)
	assert.Equal(t, "product_id", got.Fields[1].Name)

	require.NoError(t, d.RestoreField(orders.ID, removed, index))
	got, _ = d.Table(orders.ID)
	assert.Equal(t, orders.Fields, got.Fields)

	_, _, _, err = d.DeleteField(orders.ID, 999)
	assert.ErrorIs(t, err, errUnknownField)
}

func TestAddRelationshipValidatesEnds(t *testing.T) {
	d, tables := shopDiagram(t)
	orders := tables["orders"]

	_, err := d.AddRelationship(Relationship{StartTableID: orders.ID, StartFieldID: orders.Fields[0].ID, EndTableID: 77})
	assert.ErrorIs(t, err, errUnknownTable)

	_, err = d.AddRelationship(Relationship{
		StartTableID: orders.ID, StartFieldID: 999,
		EndTableID: orders.ID, EndFieldID: orders.Fields[0].ID,
	})
	assert.ErrorIs(t, err, errUnknownField)

	rel, err := d.AddRelationship(Relationship{
		StartTableID: orders.ID, StartFieldID: orders.Fields[0].ID,
		EndTableID: orders.ID, EndFieldID: orders.Fields[2].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "N:1", rel.Cardinality)

	removed, ok := d.RemoveRelationship(rel.ID)
	assert.True(t, ok)
	assert.Equal(t, rel, removed)
	_, ok = d.RemoveRelationship(rel.ID)
	assert.False(t, ok)
}

func TestTableAtPrefersTopmost(t *testing.T) {
	d := NewDiagram("overlap")
	bottom := d.AddTable(Table{Name: "bottom", X: 0, Y: 0})
	top := d.AddTable(Table{Name: "top", X: 100, Y: 0})

	assert.Equal(t, top, d.TableAt(150, 20))
	assert.Equal(t, bottom, d.TableAt(50, 20))
	assert.Equal(t, -1, d.TableAt(500, 20))
}

func TestFieldAt(t *testing.T) {
	d, tables := shopDiagram(t)
	orders := tables["orders"]

	assert.Equal(t, -1, d.FieldAt(orders.ID, orders.Y+20))
	assert.Equal(t, 0, d.FieldAt(orders.ID, orders.Y+60))
	assert.Equal(t, 2, d.FieldAt(orders.ID, orders.Y+130))
	assert.Equal(t, -1, d.FieldAt(orders.ID, orders.Y+200))
}

func TestAnchorsFollowGeometry(t *testing.T) {
	d, tables := shopDiagram(t)
	rels := d.Relationships()

	start, end := d.Anchors(rels[1])
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, Anchor{X: 400, Y: 200 + 50 + 72 + 18, Width: 200}, *start)
	assert.Equal(t, 240.0, end.Width)

	d.DeleteTable(tables["products"].ID)
	d.RestoreRelationship(rels[1])
	start, end = d.Anchors(rels[1])
	assert.NotNil(t, start)
	assert.Nil(t, end)
}

func TestBounds(t *testing.T) {
	_, _, _, _, ok := NewDiagram("empty").Bounds()
	assert.False(t, ok)

	d, _ := shopDiagram(t)
	minX, minY, maxX, maxY, ok := d.Bounds()
	require.True(t, ok)
	assert.Equal(t, 0.0, minX)
	assert.Equal(t, 0.0, minY)
	assert.Equal(t, 1040.0, maxX)
	assert.Equal(t, 358.0, maxY)
}
