package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(name, typ string) SchemaColumn {
	return SchemaColumn{Name: name, Type: typ}
}

func TestDiagramFromSchemaLayout(t *testing.T) {
	s := &Schema{}
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		st := SchemaTable{Name: name, Columns: []SchemaColumn{col("id", "int")}}
		if i == 2 {
			st.Columns = append(st.Columns, col("x", "int"), col("y", "int"))
		}
		s.Tables = append(s.Tables, st)
	}

	d := DiagramFromSchema("grid", s)
	tables := d.Tables()
	require.Len(t, tables, 5)

	for i := 0; i < importColumns; i++ {
		assert.Equal(t, float64(i)*(tableWidth+importGap), tables[i].X, tables[i].Name)
		assert.Equal(t, 0.0, tables[i].Y, tables[i].Name)
	}
	assert.Equal(t, 0.0, tables[4].X)
	assert.Equal(t, tables[2].Height()+importGap, tables[4].Y, "rows are spaced by the tallest table")
}

func TestDiagramFromSchemaRelations(t *testing.T) {
	s := &Schema{Tables: []SchemaTable{
		{
			Name:       "users",
			PrimaryKey: []string{"id"},
			Columns:    []SchemaColumn{col("id", "int"), col("email", "text")},
		},
		{
			Name:       "posts",
			PrimaryKey: []string{"id"},
			Columns:    []SchemaColumn{col("id", "int"), col("author_id", "int"), col("tag_id", "int"), col("editor", "text")},
			Relations: []SchemaRelation{
				{SourceColumn: "author_id", TargetTable: "users", Cardinality: "N:1"},
				{SourceColumn: "tag_id", TargetTable: "tags", TargetColumn: "id"},
				{SourceColumn: "editor", TargetTable: "users", TargetColumn: "email", Cardinality: "1:1"},
				{SourceColumn: "missing", TargetTable: "users", TargetColumn: "id"},
			},
		},
	}}

	d := DiagramFromSchema("blog", s)
	rels := d.Relationships()
	require.Len(t, rels, 2, "foreign keys to unknown tables or columns are skipped")

	users, _ := d.Table(0)
	posts, _ := d.Table(1)

	assert.Equal(t, "posts_author_id_fk", rels[0].Name)
	assert.Equal(t, posts.Fields[1].ID, rels[0].StartFieldID)
	assert.Equal(t, users.Fields[0].ID, rels[0].EndFieldID, "a missing target column means the primary key")
	assert.Equal(t, "N:1", rels[0].Cardinality)

	assert.Equal(t, users.Fields[1].ID, rels[1].EndFieldID)
	assert.Equal(t, "1:1", rels[1].Cardinality)
}

func TestDiagramFromNilSchema(t *testing.T) {
	d := DiagramFromSchema("nothing", nil)
	assert.True(t, d.IsEmpty())
	assert.Equal(t, "nothing", d.Name)
}

func TestFieldsFromColumns(t *testing.T) {
	def := "now()"
	st := SchemaTable{
		PrimaryKey: []string{"id"},
		Columns: []SchemaColumn{
			{Name: "id", Type: "int"},
			{Name: "email", Type: "text", IsUnique: true},
			{Name: "created", Type: "timestamp", Nullable: true, DefaultValue: &def},
		},
	}

	assert.Equal(t, []Field{
		{Name: "id", Type: "int", Primary: true, NotNull: true},
		{Name: "email", Type: "text", NotNull: true, Unique: true},
		{Name: "created", Type: "timestamp", Default: "now()"},
	}, fieldsFromColumns(st))
}

func TestImportOptionsSources(t *testing.T) {
	assert.Equal(t, 0, importOptions{}.sources())
	assert.Equal(t, 1, importOptions{sqlitePath: "x.db", schemaName: "public"}.sources())
	assert.Equal(t, 2, importOptions{dbURL: "postgres://", mysqlURL: "root@/db"}.sources())
}

func TestImportDiagramReportsConnectionErrors(t *testing.T) {
	_, err := importDiagram(context.Background(), "x", importOptions{dbURL: "not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to PostgreSQL")
}

func TestDemoDiagram(t *testing.T) {
	d := demoDiagram("demo")
	assert.Len(t, d.Tables(), 3)
	assert.Len(t, d.Relationships(), 3)
	assert.Len(t, d.Routes(viewport{zoom: 1}), 3)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"users", "posts"}, splitList(" users, ,posts ,"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"":              "diagram",
		"   ":           "diagram",
		"shop":          "shop",
		"a/b\\c:d*e?":   "a_b_c_d_e_",
		`"x"<y>|z`:      "_x__y__z",
		"tab\there\x00": "tabhere",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), "%q", in)
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"users"`, quoteIdent("users"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
