package typeshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// moviesTable mirrors:
//
//	CREATE TABLE movies (
//	  id   bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	  name text NOT NULL,
//	  data jsonb NULL
//	);
func moviesTable() *Table {
	return &Table{
		Name: "movies",
		Columns: []Column{
			{Name: "id", DBType: "bigint", Domain: DomainInteger, Mode: ModeGenerated},
			{Name: "name", DBType: "text", Domain: DomainString, Mode: ModeRequired},
			{Name: "data", DBType: "jsonb", Domain: DomainJSON, Nullable: true, Mode: ModeNullable},
		},
	}
}

func TestClassifyColumn(t *testing.T) {
	tests := []struct {
		name       string
		generated  bool
		nullable   bool
		hasDefault bool
		want       ColumnMode
	}{
		{"identity always", true, false, false, ModeGenerated},
		{"generated wins over nullable", true, true, true, ModeGenerated},
		{"not null no default", false, false, false, ModeRequired},
		{"not null with default", false, false, true, ModeDefaulted},
		{"nullable", false, true, false, ModeNullable},
		{"nullable with default", false, true, true, ModeNullable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyColumn(tt.generated, tt.nullable, tt.hasDefault)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveRowShape(t *testing.T) {
	table := moviesTable()
	row := DeriveRowShape(table)

	require.Len(t, row.Fields, len(table.Columns))
	assert.Equal(t, KindRow, row.Kind)
	assert.Equal(t, "movies", row.Table)

	// Every column appears exactly once, nullability preserved.
	seen := map[string]int{}
	for _, f := range row.Fields {
		seen[f.Name]++
		assert.Equal(t, PresenceRequired, f.Presence)
	}
	for _, c := range table.Columns {
		assert.Equal(t, 1, seen[c.Name], "column %s", c.Name)
	}

	assert.False(t, row.Field("id").Nullable)
	assert.Equal(t, DomainInteger, row.Field("id").Domain)
	assert.False(t, row.Field("name").Nullable)
	assert.Equal(t, DomainString, row.Field("name").Domain)
	assert.True(t, row.Field("data").Nullable)
	assert.Equal(t, DomainJSON, row.Field("data").Domain)
}

func TestDeriveInsertShape(t *testing.T) {
	insert := DeriveInsertShape(moviesTable())

	assert.Equal(t, KindInsert, insert.Kind)
	assert.Equal(t, PresenceForbidden, insert.Field("id").Presence)
	assert.Equal(t, PresenceRequired, insert.Field("name").Presence)
	assert.Equal(t, PresenceOptional, insert.Field("data").Presence)
	assert.True(t, insert.Field("data").Nullable)
}

func TestDeriveUpdateShape(t *testing.T) {
	update := DeriveUpdateShape(moviesTable())

	assert.Equal(t, KindUpdate, update.Kind)
	assert.Equal(t, PresenceForbidden, update.Field("id").Presence)
	assert.Equal(t, PresenceOptional, update.Field("name").Presence)
	assert.Equal(t, PresenceOptional, update.Field("data").Presence)
}

func TestDeriveInsertShape_ModeMatrix(t *testing.T) {
	tests := []struct {
		name string
		mode ColumnMode
		want Presence
	}{
		{"generated is forbidden", ModeGenerated, PresenceForbidden},
		{"required stays required", ModeRequired, PresenceRequired},
		{"defaulted is optional", ModeDefaulted, PresenceOptional},
		{"nullable is optional", ModeNullable, PresenceOptional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &Table{Name: "t", Columns: []Column{
				{Name: "c", Domain: DomainString, Mode: tt.mode},
			}}
			got := DeriveInsertShape(table).Field("c").Presence
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every field required on insert must be optional on update, and forbidden
// fields stay forbidden.
func TestUpdateRelaxesInsert(t *testing.T) {
	table := &Table{Name: "t", Columns: []Column{
		{Name: "gen", Domain: DomainInteger, Mode: ModeGenerated},
		{Name: "req", Domain: DomainString, Mode: ModeRequired},
		{Name: "def", Domain: DomainTimestamp, Mode: ModeDefaulted},
		{Name: "opt", Domain: DomainJSON, Nullable: true, Mode: ModeNullable},
	}}

	insert := DeriveInsertShape(table)
	update := DeriveUpdateShape(table)

	for _, f := range insert.Fields {
		uf := update.Field(f.Name)
		require.NotNil(t, uf)
		switch f.Presence {
		case PresenceRequired:
			assert.Equal(t, PresenceOptional, uf.Presence, "field %s", f.Name)
		case PresenceForbidden:
			assert.Equal(t, PresenceForbidden, uf.Presence, "field %s", f.Name)
		default:
			assert.Equal(t, PresenceOptional, uf.Presence, "field %s", f.Name)
		}
	}
}

// Deriving twice from the same description yields structurally identical shapes.
func TestDeriveIdempotent(t *testing.T) {
	table := moviesTable()
	assert.Equal(t, DeriveRowShape(table), DeriveRowShape(table))
	assert.Equal(t, DeriveInsertShape(table), DeriveInsertShape(table))
	assert.Equal(t, DeriveUpdateShape(table), DeriveUpdateShape(table))
}

func TestDeriveRowShape_ArrayColumn(t *testing.T) {
	table := &Table{Name: "posts", Columns: []Column{
		{Name: "tags", DBType: "text[]", Domain: DomainString, Array: true, Mode: ModeNullable, Nullable: true},
	}}
	row := DeriveRowShape(table)
	assert.True(t, row.Field("tags").Array)
	assert.Equal(t, DomainString, row.Field("tags").Domain)
}
