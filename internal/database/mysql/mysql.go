// Package mysql implements database.Introspector for MySQL using
// database/sql with the go-sql-driver. Generated columns are detected from
// the catalog's extra field; auto_increment counts as a default because the
// engine accepts explicit values for it.
package mysql

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/typeshape/typeshape"
	"github.com/typeshape/typeshape/internal/database"
)

// Introspector is a MySQL implementation of database.Introspector.
// It is safe for concurrent use by multiple goroutines.
type Introspector struct {
	db *sql.DB
}

// New opens a MySQL connection pool using the provided Config and returns
// an Introspector. It pings before returning so a bad DSN fails fast.
func New(ctx context.Context, cfg *database.Config) (*Introspector, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, mapError(err, "invalid DSN")
	}

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	i := &Introspector{db: db}
	if err := i.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return i, nil
}

// Ping verifies the database is reachable.
func (i *Introspector) Ping(ctx context.Context) error {
	if err := i.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool.
func (i *Introspector) Close() {
	_ = i.db.Close()
}

// ListTables returns all user-defined tables and views in schemaName.
// An empty schemaName uses the connection's current database.
func (i *Introspector) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		  AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name`

	rows, err := i.db.QueryContext(ctx, q, schemaName)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "failed to scan table name")
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating tables")
	}
	return tables, nil
}

// InspectSchema walks the catalog of schemaName and builds the static
// schema description.
func (i *Introspector) InspectSchema(ctx context.Context, schemaName string) (*typeshape.Schema, error) {
	tables, err := i.fetchTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	schema := &typeshape.Schema{Name: schemaName, Tables: tables}

	fks, err := i.fetchForeignKeys(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	schema.Relationships = fks
	return schema, nil
}

func (i *Introspector) fetchTables(ctx context.Context, schemaName string) ([]typeshape.Table, error) {
	const q = `
		SELECT t.table_name,
		       t.table_type = 'VIEW'          AS is_view,
		       c.column_name,
		       c.data_type,
		       c.is_nullable = 'YES'          AS is_nullable,
		       c.column_default IS NOT NULL   AS has_default,
		       c.extra
		FROM information_schema.tables t
		JOIN information_schema.columns c
		  ON c.table_schema = t.table_schema
		 AND c.table_name   = t.table_name
		WHERE t.table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		  AND t.table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY t.table_name, c.ordinal_position`

	rows, err := i.db.QueryContext(ctx, q, schemaName)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var tables []typeshape.Table
	var current *typeshape.Table

	for rows.Next() {
		var (
			tableName, colName, dataType, extra string
			isView, nullable, hasDefault        bool
		)
		if err := rows.Scan(&tableName, &isView, &colName, &dataType,
			&nullable, &hasDefault, &extra); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}

		if current == nil || current.Name != tableName {
			tables = append(tables, typeshape.Table{Name: tableName, IsView: isView})
			current = &tables[len(tables)-1]
		}
		current.Columns = append(current.Columns,
			buildColumn(colName, dataType, nullable, hasDefault, extra))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return tables, nil
}

// buildColumn classifies one catalog row. VIRTUAL/STORED GENERATED columns
// are engine-supplied; auto_increment and expression defaults
// (DEFAULT_GENERATED) are defaults the caller may omit.
func buildColumn(name, dataType string, nullable, hasDefault bool, extra string) typeshape.Column {
	e := strings.ToUpper(extra)
	generated := strings.Contains(e, "VIRTUAL GENERATED") || strings.Contains(e, "STORED GENERATED")
	if strings.Contains(e, "AUTO_INCREMENT") || strings.Contains(e, "DEFAULT_GENERATED") {
		hasDefault = true
	}

	return typeshape.Column{
		Name:     name,
		DBType:   dataType,
		Domain:   typeshape.MapMySQLType(dataType),
		Nullable: nullable,
		Mode:     typeshape.ClassifyColumn(generated, nullable, hasDefault),
	}
}

func (i *Introspector) fetchForeignKeys(ctx context.Context, schemaName string) ([]typeshape.Relationship, error) {
	const q = `
		SELECT kcu.constraint_name,
		       kcu.table_name,
		       kcu.column_name,
		       kcu.referenced_table_name,
		       kcu.referenced_column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		  AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name`

	rows, err := i.db.QueryContext(ctx, q, schemaName)
	if err != nil {
		return nil, mapError(err, "failed to fetch foreign keys")
	}
	defer rows.Close()

	var rels []typeshape.Relationship
	for rows.Next() {
		var r typeshape.Relationship
		if err := rows.Scan(&r.Name, &r.Table, &r.Column, &r.RefTable, &r.RefColumn); err != nil {
			return nil, mapError(err, "failed to scan foreign key")
		}
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating foreign keys")
	}
	return rels, nil
}
