package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

type mysqlExtractor struct {
	db     *sql.DB
	schema string
}

// newMySQLExtractor connects to MySQL. An empty schema name, or the
// PostgreSQL default "public", selects the DSN's database.
func newMySQLExtractor(ctx context.Context, connString, schemaName string) (*mysqlExtractor, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if schemaName == "" || schemaName == "public" {
		var current sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to read current database: %w", err)
		}
		schemaName = current.String
	}
	return &mysqlExtractor{db: db, schema: schemaName}, nil
}

func (e *mysqlExtractor) Close() error {
	return e.db.Close()
}

func (e *mysqlExtractor) ExtractSchema(ctx context.Context, tables []string) (*Schema, error) {
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

func (e *mysqlExtractor) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	return e.strings(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, e.schema)
}

func (e *mysqlExtractor) strings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (e *mysqlExtractor) extractTable(ctx context.Context, name string) (SchemaTable, error) {
	t := SchemaTable{Name: name}

	columns, err := e.extractColumns(ctx, name)
	if err != nil {
		return t, fmt.Errorf("failed to extract columns: %w", err)
	}
	t.Columns = columns

	pk, err := e.strings(ctx, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`, e.schema, name)
	if err != nil {
		return t, fmt.Errorf("failed to extract primary key: %w", err)
	}
	t.PrimaryKey = pk

	relations, err := e.extractRelations(ctx, name)
	if err != nil {
		return t, fmt.Errorf("failed to extract relations: %w", err)
	}
	t.Relations = relations
	return t, nil
}

func (e *mysqlExtractor) extractColumns(ctx context.Context, table string) ([]SchemaColumn, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.table_schema = ?
					AND tc.table_name = ?
					AND tc.constraint_type = 'UNIQUE'
					AND kcu.column_name = c.column_name
			) THEN true ELSE false END as is_unique
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, e.schema, table, e.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []SchemaColumn
	for rows.Next() {
		var col SchemaColumn
		var nullable string
		var defaultVal sql.NullString
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal, &col.IsUnique); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (e *mysqlExtractor) extractRelations(ctx context.Context, table string) ([]SchemaRelation, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.ordinal_position
	`, e.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []SchemaRelation
	for rows.Next() {
		rel := SchemaRelation{Cardinality: "N:1"}
		if err := rows.Scan(&rel.SourceColumn, &rel.TargetTable, &rel.TargetColumn); err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}
