package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeshape/typeshape"
)

func moviesSchema() *typeshape.Schema {
	return &typeshape.Schema{
		Name: "public",
		Tables: []typeshape.Table{
			{
				Name: "movies",
				Columns: []typeshape.Column{
					{Name: "id", DBType: "bigint", Domain: typeshape.DomainInteger, Mode: typeshape.ModeGenerated},
					{Name: "name", DBType: "text", Domain: typeshape.DomainString, Mode: typeshape.ModeRequired},
					{Name: "data", DBType: "jsonb", Domain: typeshape.DomainJSON, Nullable: true, Mode: typeshape.ModeNullable},
				},
			},
			{
				Name:   "recent_movies",
				IsView: true,
				Columns: []typeshape.Column{
					{Name: "id", DBType: "bigint", Domain: typeshape.DomainInteger, Nullable: true, Mode: typeshape.ModeNullable},
					{Name: "name", DBType: "text", Domain: typeshape.DomainString, Nullable: true, Mode: typeshape.ModeNullable},
				},
			},
		},
	}
}

const wantMoviesTS = `// Code generated by typeshape. DO NOT EDIT.

export type Json =
  | string
  | number
  | boolean
  | null
  | { [key: string]: Json | undefined }
  | Json[]

export interface Database {
  public: {
    Tables: {
      movies: {
        Row: {
          id: number
          name: string
          data: Json | null
        }
        Insert: {
          id?: never
          name: string
          data?: Json | null
        }
        Update: {
          id?: never
          name?: string
          data?: Json | null
        }
      }
    }
    Views: {
      recent_movies: {
        Row: {
          id: number | null
          name: string | null
        }
      }
    }
  }
}
`

func TestTypeScriptEmit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTypeScript(&buf).Emit(moviesSchema()))
	assert.Equal(t, wantMoviesTS, buf.String())
}

func TestTypeScriptEmit_DefaultSchemaName(t *testing.T) {
	var buf bytes.Buffer
	s := moviesSchema()
	s.Name = ""
	require.NoError(t, NewTypeScript(&buf).Emit(s))
	assert.Contains(t, buf.String(), "  public: {")
}

func TestTSField(t *testing.T) {
	tests := []struct {
		name  string
		field typeshape.Field
		want  string
	}{
		{
			name:  "required scalar",
			field: typeshape.Field{Name: "name", Domain: typeshape.DomainString, Presence: typeshape.PresenceRequired},
			want:  "name: string",
		},
		{
			name:  "optional nullable json",
			field: typeshape.Field{Name: "data", Domain: typeshape.DomainJSON, Nullable: true, Presence: typeshape.PresenceOptional},
			want:  "data?: Json | null",
		},
		{
			name:  "forbidden generated column",
			field: typeshape.Field{Name: "id", Domain: typeshape.DomainInteger, Presence: typeshape.PresenceForbidden},
			want:  "id?: never",
		},
		{
			name:  "array of numbers",
			field: typeshape.Field{Name: "scores", Domain: typeshape.DomainFloat, Array: true, Presence: typeshape.PresenceRequired},
			want:  "scores: number[]",
		},
		{
			name:  "nullable array",
			field: typeshape.Field{Name: "tags", Domain: typeshape.DomainString, Array: true, Nullable: true, Presence: typeshape.PresenceRequired},
			want:  "tags: string[] | null",
		},
		{
			name:  "key needing quotes",
			field: typeshape.Field{Name: "first name", Domain: typeshape.DomainString, Presence: typeshape.PresenceRequired},
			want:  `"first name": string`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tsField(tt.field))
		})
	}
}
