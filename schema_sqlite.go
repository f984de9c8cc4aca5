package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteExtractor struct {
	db *sql.DB
}

func newSQLiteExtractor(ctx context.Context, path string) (*sqliteExtractor, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &sqliteExtractor{db: db}, nil
}

func (e *sqliteExtractor) Close() error {
	return e.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (e *sqliteExtractor) ExtractSchema(ctx context.Context, tables []string) (*Schema, error) {
	names, err := e.tableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	s := &Schema{}
	for _, name := range names {
		t, err := e.extractTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

func (e *sqliteExtractor) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (e *sqliteExtractor) extractTable(ctx context.Context, name string) (SchemaTable, error) {
	t := SchemaTable{Name: name}

	columns, pk, err := e.extractColumns(ctx, name)
	if err != nil {
		return t, fmt.Errorf("failed to extract columns: %w", err)
	}
	t.Columns = columns
	t.PrimaryKey = pk

	unique, err := e.uniqueColumns(ctx, name)
	if err != nil {
		return t, fmt.Errorf("failed to extract unique constraints: %w", err)
	}
	for i := range t.Columns {
		t.Columns[i].IsUnique = unique[t.Columns[i].Name]
	}

	relations, err := e.extractRelations(ctx, name)
	if err != nil {
		return t, fmt.Errorf("failed to extract relations: %w", err)
	}
	t.Relations = relations
	return t, nil
}

func (e *sqliteExtractor) extractColumns(ctx context.Context, table string) ([]SchemaColumn, []string, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []SchemaColumn
	pkOrder := map[int]string{}
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}
		col := SchemaColumn{Name: name, Type: colType, Nullable: notNull == 0}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		if pk > 0 {
			pkOrder[pk] = name
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pkColumns := make([]string, 0, len(pkOrder))
	for i := 1; i <= len(pkOrder); i++ {
		if name, ok := pkOrder[i]; ok {
			pkColumns = append(pkColumns, name)
		}
	}
	return columns, pkColumns, nil
}

// uniqueColumns returns the columns covered by a single-column unique index.
func (e *sqliteExtractor) uniqueColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA index_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}

	var indexes []string
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if unique == 1 && origin != "pk" {
			indexes = append(indexes, name)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := map[string]bool{}
	for _, index := range indexes {
		cols, err := e.indexColumns(ctx, index)
		if err != nil {
			return nil, err
		}
		if len(cols) == 1 {
			out[cols[0]] = true
		}
	}
	return out, nil
}

func (e *sqliteExtractor) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA index_info("+quoteIdent(index)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

func (e *sqliteExtractor) extractRelations(ctx context.Context, table string) ([]SchemaRelation, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []SchemaRelation
	for rows.Next() {
		var id, seq int
		var target, from, onUpdate, onDelete, match string
		var to sql.NullString
		if err := rows.Scan(&id, &seq, &target, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		relations = append(relations, SchemaRelation{
			SourceColumn: from,
			TargetTable:  target,
			TargetColumn: to.String,
			Cardinality:  "N:1",
		})
	}
	return relations, rows.Err()
}
