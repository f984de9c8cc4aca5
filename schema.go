package main

import (
	"context"
	"fmt"
	"log"
)

// Schema is a database schema as read by one of the extractors.
type Schema struct {
	Tables []SchemaTable
}

type SchemaTable struct {
	Name       string
	Columns    []SchemaColumn
	Relations  []SchemaRelation
	PrimaryKey []string
}

type SchemaColumn struct {
	Name         string
	Type         string
	Nullable     bool
	DefaultValue *string
	IsUnique     bool
}

// SchemaRelation is a foreign key from SourceColumn to TargetTable.TargetColumn.
type SchemaRelation struct {
	SourceColumn string
	TargetTable  string
	TargetColumn string
	Cardinality  string
}

// SchemaExtractor reads table definitions from a live database. An empty
// table list means every table.
type SchemaExtractor interface {
	ExtractSchema(ctx context.Context, tables []string) (*Schema, error)
	Close() error
}

type importOptions struct {
	sqlitePath string
	dbURL      string
	mysqlURL   string
	schemaName string
	tables     []string
}

func (o importOptions) sources() int {
	n := 0
	for _, s := range []string{o.sqlitePath, o.dbURL, o.mysqlURL} {
		if s != "" {
			n++
		}
	}
	return n
}

func openExtractor(ctx context.Context, o importOptions) (SchemaExtractor, error) {
	switch {
	case o.sqlitePath != "":
		e, err := newSQLiteExtractor(ctx, o.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return e, nil
	case o.mysqlURL != "":
		e, err := newMySQLExtractor(ctx, o.mysqlURL, o.schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return e, nil
	default:
		e, err := newPostgresExtractor(ctx, o.dbURL, o.schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return e, nil
	}
}

// importDiagram reads a schema from the configured database and lays it out.
func importDiagram(ctx context.Context, name string, o importOptions) (*Diagram, error) {
	e, err := openExtractor(ctx, o)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := e.Close(); err != nil {
			log.Printf("schema: failed to close connection: %v", err)
		}
	}()

	s, err := e.ExtractSchema(ctx, o.tables)
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}
	return DiagramFromSchema(name, s), nil
}

// DiagramFromSchema places the schema's tables on a grid, importColumns per
// row, and turns every foreign key into a relationship. Foreign keys to
// tables outside the schema are skipped.
func DiagramFromSchema(name string, s *Schema) *Diagram {
	d := NewDiagram(name)
	if s == nil {
		return d
	}

	type fieldKey struct{ table, column string }
	tableIDs := make(map[string]int, len(s.Tables))
	fieldIDs := make(map[fieldKey]int)
	primary := make(map[string]string, len(s.Tables))

	y, rowHeight := 0.0, 0.0
	for i, st := range s.Tables {
		col := i % importColumns
		if col == 0 && i > 0 {
			y += rowHeight + importGap
			rowHeight = 0
		}
		t := Table{
			Name:   st.Name,
			X:      float64(col) * (tableWidth + importGap),
			Y:      y,
			Fields: fieldsFromColumns(st),
		}
		rowHeight = max(rowHeight, t.Height())

		id := d.AddTable(t)
		tableIDs[st.Name] = id
		if len(st.PrimaryKey) > 0 {
			primary[st.Name] = st.PrimaryKey[0]
		}
		added, _ := d.Table(id)
		for _, f := range added.Fields {
			fieldIDs[fieldKey{st.Name, f.Name}] = f.ID
		}
	}

	for _, st := range s.Tables {
		for _, rel := range st.Relations {
			// A foreign key declared without a column references the primary key.
			if rel.TargetColumn == "" {
				rel.TargetColumn = primary[rel.TargetTable]
			}
			startField, ok := fieldIDs[fieldKey{st.Name, rel.SourceColumn}]
			endField, ok2 := fieldIDs[fieldKey{rel.TargetTable, rel.TargetColumn}]
			if !ok || !ok2 {
				log.Printf("schema: skipping foreign key %s.%s -> %s.%s", st.Name, rel.SourceColumn, rel.TargetTable, rel.TargetColumn)
				continue
			}
			_, err := d.AddRelationship(Relationship{
				Name:         fmt.Sprintf("%s_%s_fk", st.Name, rel.SourceColumn),
				StartTableID: tableIDs[st.Name],
				StartFieldID: startField,
				EndTableID:   tableIDs[rel.TargetTable],
				EndFieldID:   endField,
				Cardinality:  rel.Cardinality,
			})
			if err != nil {
				log.Printf("schema: %v", err)
			}
		}
	}
	return d
}

func fieldsFromColumns(st SchemaTable) []Field {
	pk := make(map[string]bool, len(st.PrimaryKey))
	for _, c := range st.PrimaryKey {
		pk[c] = true
	}
	fields := make([]Field, 0, len(st.Columns))
	for _, c := range st.Columns {
		f := Field{
			Name:    c.Name,
			Type:    c.Type,
			Primary: pk[c.Name],
			NotNull: !c.Nullable,
			Unique:  c.IsUnique,
		}
		if c.DefaultValue != nil {
			f.Default = *c.DefaultValue
		}
		fields = append(fields, f)
	}
	return fields
}
