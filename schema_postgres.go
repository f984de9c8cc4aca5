package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type postgresExtractor struct {
	conn   *pgx.Conn
	schema string
}

func newPostgresExtractor(ctx context.Context, connString, schemaName string) (*postgresExtractor, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if schemaName == "" {
		schemaName = "public"
	}
	return &postgresExtractor{conn: conn, schema: schemaName}, nil
}

func (e *postgresExtractor) Close() error {
	return e.conn.Close(context.Background())
}

func (e *postgresExtractor) ExtractSchema(ctx context.Context, tables []string) (*Schema, error) {
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

func (e *postgresExtractor) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	return e.strings(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, e.schema)
}

// strings runs a query returning a single text column.
func (e *postgresExtractor) strings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := e.conn.Query(ctx, query, args...)
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

func (e *postgresExtractor) extractTable(ctx context.Context, name string) (SchemaTable, error) {
	t := SchemaTable{Name: name}

	columns, err := e.extractColumns(ctx, name)
	if err != nil {
		return t, fmt.Errorf("failed to extract columns: %w", err)
	}
	t.Columns = columns

	pk, err := e.strings(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
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

func (e *postgresExtractor) extractColumns(ctx context.Context, table string) ([]SchemaColumn, error) {
	rows, err := e.conn.Query(ctx, `
		SELECT
			column_name,
			data_type,
			is_nullable,
			column_default,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.constraint_column_usage ccu
					ON tc.constraint_name = ccu.constraint_name
					AND tc.table_schema = ccu.table_schema
				WHERE tc.table_schema = $1
					AND tc.table_name = $2
					AND tc.constraint_type = 'UNIQUE'
					AND ccu.column_name = c.column_name
			) THEN true ELSE false END as is_unique
		FROM information_schema.columns c
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, e.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []SchemaColumn
	for rows.Next() {
		var col SchemaColumn
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.DefaultValue, &col.IsUnique); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (e *postgresExtractor) extractRelations(ctx context.Context, table string) ([]SchemaRelation, error) {
	rows, err := e.conn.Query(ctx, `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
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
