package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeshape/typeshape"
)

func TestGoEmit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewGo(&buf, "dbtypes").Emit(moviesSchema()))
	out := buf.String()

	assert.Contains(t, out, "// Code generated by typeshape. DO NOT EDIT.")
	assert.Contains(t, out, "package dbtypes")
	assert.Contains(t, out, `"encoding/json"`)

	// Row keeps every column; generated id is readable.
	assert.Contains(t, out, "type MoviesRow struct")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "int64")

	// Insert omits the generated column entirely.
	assert.Contains(t, out, "type MoviesInsert struct")
	insertDecl := structBody(t, out, "MoviesInsert")
	assert.NotContains(t, insertDecl, "ID")
	assert.Contains(t, insertDecl, "Name string")
	assert.Contains(t, insertDecl, `json:"data,omitempty"`)

	// Update relaxes name to a pointer.
	updateDecl := structBody(t, out, "MoviesUpdate")
	assert.Contains(t, updateDecl, "Name *string")

	// Views get a Row struct only.
	assert.Contains(t, out, "type RecentMoviesRow struct")
	assert.NotContains(t, out, "RecentMoviesInsert")
	assert.NotContains(t, out, "RecentMoviesUpdate")
}

// structBody cuts the body of the named struct out of generated source.
func structBody(t *testing.T, src, name string) string {
	t.Helper()
	start := bytes.Index([]byte(src), []byte("type "+name+" struct {"))
	require.GreaterOrEqual(t, start, 0, "struct %s not found", name)
	end := bytes.Index([]byte(src[start:]), []byte("\n}"))
	require.GreaterOrEqual(t, end, 0)
	return src[start : start+end]
}

func TestGoEmit_DefaultPackage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewGo(&buf, "").Emit(&typeshape.Schema{}))
	assert.Contains(t, buf.String(), "package dbtypes")
}

func TestGoFieldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id", "ID"},
		{"name", "Name"},
		{"country_id", "CountryID"},
		{"api_url", "APIURL"},
		{"created_at", "CreatedAt"},
		{"user-uuid", "UserUUID"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, goFieldName(tt.in))
		})
	}
}

func TestGoFieldType(t *testing.T) {
	imports := map[string]bool{}

	tests := []struct {
		name  string
		field typeshape.Field
		want  string
	}{
		{
			name:  "plain string",
			field: typeshape.Field{Domain: typeshape.DomainString, Presence: typeshape.PresenceRequired},
			want:  "string",
		},
		{
			name:  "nullable integer",
			field: typeshape.Field{Domain: typeshape.DomainInteger, Nullable: true, Presence: typeshape.PresenceRequired},
			want:  "*int64",
		},
		{
			name:  "optional timestamp",
			field: typeshape.Field{Domain: typeshape.DomainTimestamp, Presence: typeshape.PresenceOptional},
			want:  "*time.Time",
		},
		{
			name:  "json stays a value type",
			field: typeshape.Field{Domain: typeshape.DomainJSON, Nullable: true, Presence: typeshape.PresenceOptional},
			want:  "json.RawMessage",
		},
		{
			name:  "array of strings",
			field: typeshape.Field{Domain: typeshape.DomainString, Array: true, Presence: typeshape.PresenceOptional},
			want:  "[]string",
		},
		{
			name:  "bytes stay a value type",
			field: typeshape.Field{Domain: typeshape.DomainBytes, Nullable: true, Presence: typeshape.PresenceRequired},
			want:  "[]byte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, goFieldType(tt.field, imports))
		})
	}

	assert.True(t, imports["time"])
	assert.True(t, imports["encoding/json"])
}
