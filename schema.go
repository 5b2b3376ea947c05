// Package typeshape derives the type shapes of relational tables from a
// static schema description.
//
// A schema description is produced once, by introspecting a live database
// with one of the drivers under internal/database or by loading a previously
// serialized description, and is immutable input to the mapper. For every
// table the mapper derives three shapes:
//
//   - Row: the type of a successfully read record,
//   - Insert: the payload accepted when creating a record,
//   - Update: the payload accepted when partially modifying a record,
//
// plus projected shapes for arbitrary column/relation selections. All
// derivations are pure functions over the description: no I/O, no shared
// state, safe for concurrent use.
//
// Quick start:
//
//	desc, err := typeshape.LoadSchema("schema.yaml")
//	if err != nil { ... }
//	table := desc.Table("movies")
//	row := typeshape.DeriveRowShape(table)
//	insert := typeshape.DeriveInsertShape(table)
package typeshape

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Column is one column of a table or view as captured by introspection.
type Column struct {
	// Name is the column name, unique within its table.
	Name string `yaml:"name" json:"name"`

	// DBType is the engine's spelling of the type (e.g. "bigint", "jsonb").
	// Kept for diagnostics and emitter comments; derivations use Domain.
	DBType string `yaml:"db_type" json:"db_type"`

	// Domain is the semantic value domain.
	Domain Domain `yaml:"domain" json:"domain"`

	// Nullable reports whether reads may observe an absent value.
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`

	// Array reports whether the column holds a sequence of Domain values.
	Array bool `yaml:"array,omitempty" json:"array,omitempty"`

	// Mode is the write-classification (see ClassifyColumn).
	Mode ColumnMode `yaml:"mode" json:"mode"`
}

// Table describes one table or view and its ordered columns.
type Table struct {
	Name    string   `yaml:"name" json:"name"`
	IsView  bool     `yaml:"view,omitempty" json:"view,omitempty"`
	Columns []Column `yaml:"columns" json:"columns"`
}

// Column returns the named column, or nil if the table has no such column.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Relationship records one foreign key edge between two tables. The table
// named by Table owns the constraint; RefTable is the referenced side.
// Cardinality is never stored; it falls out of which side owns the key
// relative to the table being projected.
type Relationship struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Table     string `yaml:"table" json:"table"`
	Column    string `yaml:"column" json:"column"`
	RefTable  string `yaml:"ref_table" json:"ref_table"`
	RefColumn string `yaml:"ref_column" json:"ref_column"`
}

// Schema is the full static schema description handed to the mapper.
// It is immutable once produced; regenerate it wholesale when the
// database schema changes.
type Schema struct {
	// Name is the database schema name, e.g. "public".
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Tables        []Table        `yaml:"tables" json:"tables"`
	Relationships []Relationship `yaml:"relationships,omitempty" json:"relationships,omitempty"`
}

// Table returns the named table, or nil if the schema has no such table.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// relationshipBetween finds the FK edge connecting base and related, in
// either direction. Returns the edge and whether the related side owns it
// (related owns the FK -> projecting it from base yields many rows).
func (s *Schema) relationshipBetween(base, related string) (*Relationship, bool) {
	for i := range s.Relationships {
		r := &s.Relationships[i]
		if r.Table == related && r.RefTable == base {
			return r, true
		}
	}
	for i := range s.Relationships {
		r := &s.Relationships[i]
		if r.Table == base && r.RefTable == related {
			return r, false
		}
	}
	return nil, false
}

// ParseSchema decodes a YAML schema description.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema description: %w", err)
	}
	return &s, nil
}

// LoadSchema reads and decodes a YAML schema description from disk.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema description: %w", err)
	}
	return ParseSchema(data)
}

// Encode serializes the schema description to YAML.
func (s *Schema) Encode() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode schema description: %w", err)
	}
	return data, nil
}
