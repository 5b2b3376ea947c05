// Package postgres implements database.Introspector for PostgreSQL using
// pgxpool. It reads information_schema and classifies every column with
// typeshape.ClassifyColumn, including identity and generated columns.
package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/typeshape/typeshape"
	"github.com/typeshape/typeshape/internal/database"
)

// Introspector is a PostgreSQL implementation of database.Introspector.
// It is safe for concurrent use by multiple goroutines.
type Introspector struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL using the provided Config and returns an
// Introspector. It pings before returning so a bad DSN fails fast.
func New(ctx context.Context, cfg *database.Config) (*Introspector, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, mapError(err, "invalid DSN")
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create connection pool")
	}

	i := &Introspector{pool: pool}
	if err := i.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return i, nil
}

// Ping verifies the database is reachable.
func (i *Introspector) Ping(ctx context.Context) error {
	if err := i.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool.
func (i *Introspector) Close() {
	i.pool.Close()
}

// ListTables returns all user-defined tables and views in schemaName.
func (i *Introspector) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name`

	rows, err := i.pool.Query(ctx, q, schemaName)
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

// fetchTables reads every table and view with its columns in one pass,
// ordered by table name and ordinal position.
func (i *Introspector) fetchTables(ctx context.Context, schemaName string) ([]typeshape.Table, error) {
	const q = `
		SELECT t.table_name,
		       t.table_type = 'VIEW'                          AS is_view,
		       c.column_name,
		       c.data_type,
		       c.udt_name,
		       c.is_nullable = 'YES'                          AS is_nullable,
		       c.column_default IS NOT NULL                   AS has_default,
		       COALESCE(c.identity_generation, '')            AS identity_generation,
		       COALESCE(c.is_generated, 'NEVER') = 'ALWAYS'   AS is_stored_generated
		FROM information_schema.tables t
		JOIN information_schema.columns c
		  ON c.table_schema = t.table_schema
		 AND c.table_name   = t.table_name
		WHERE t.table_schema = $1
		  AND t.table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY t.table_name, c.ordinal_position`

	rows, err := i.pool.Query(ctx, q, schemaName)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var tables []typeshape.Table
	var current *typeshape.Table

	for rows.Next() {
		var (
			tableName, colName, dataType, udtName, identityGen string
			isView, nullable, hasDefault, storedGenerated      bool
		)
		if err := rows.Scan(&tableName, &isView, &colName, &dataType, &udtName,
			&nullable, &hasDefault, &identityGen, &storedGenerated); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}

		if current == nil || current.Name != tableName {
			tables = append(tables, typeshape.Table{Name: tableName, IsView: isView})
			current = &tables[len(tables)-1]
		}
		current.Columns = append(current.Columns, buildColumn(
			colName, dataType, udtName, nullable, hasDefault, identityGen, storedGenerated))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return tables, nil
}

// buildColumn classifies one catalog row. Identity ALWAYS and stored
// generated columns are engine-supplied; identity BY DEFAULT behaves like a
// default the caller may override.
func buildColumn(name, dataType, udtName string, nullable, hasDefault bool,
	identityGen string, storedGenerated bool) typeshape.Column {

	generated := storedGenerated || identityGen == "ALWAYS"
	if identityGen == "BY DEFAULT" {
		hasDefault = true
	}

	dbType := dataType
	array := false
	if dataType == "ARRAY" {
		array = true
		elem := strings.TrimPrefix(udtName, "_")
		dbType = elem + "[]"
		dataType = elem
	}

	return typeshape.Column{
		Name:     name,
		DBType:   dbType,
		Domain:   typeshape.MapPostgresType(dataType),
		Nullable: nullable,
		Array:    array,
		Mode:     typeshape.ClassifyColumn(generated, nullable, hasDefault),
	}
}

// fetchForeignKeys returns every FK edge in schemaName.
func (i *Introspector) fetchForeignKeys(ctx context.Context, schemaName string) ([]typeshape.Relationship, error) {
	const q = `
		SELECT tc.constraint_name,
		       kcu.table_name   AS from_table,
		       kcu.column_name  AS from_column,
		       ccu.table_name   AS to_table,
		       ccu.column_name  AS to_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema    = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema    = $1
		ORDER BY tc.constraint_name`

	rows, err := i.pool.Query(ctx, q, schemaName)
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
