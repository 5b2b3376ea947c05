package emit

import (
	"fmt"
	"io"
	"regexp"

	"github.com/typeshape/typeshape"
)

// TypeScript emits a Database interface in the style consumed by
// typed query-builder clients: one entry per table with Row, Insert, and
// Update members, views under a separate section with Row only.
type TypeScript struct {
	writer io.Writer
}

// NewTypeScript creates a TypeScript emitter writing to w.
func NewTypeScript(w io.Writer) *TypeScript {
	return &TypeScript{writer: w}
}

const tsHeader = `// Code generated by typeshape. DO NOT EDIT.

export type Json =
  | string
  | number
  | boolean
  | null
  | { [key: string]: Json | undefined }
  | Json[]

`

// Emit writes the full Database interface for s.
func (e *TypeScript) Emit(s *typeshape.Schema) error {
	if _, err := fmt.Fprint(e.writer, tsHeader); err != nil {
		return err
	}

	schemaName := s.Name
	if schemaName == "" {
		schemaName = "public"
	}

	fmt.Fprintf(e.writer, "export interface Database {\n")
	fmt.Fprintf(e.writer, "  %s: {\n", tsKey(schemaName))

	fmt.Fprintf(e.writer, "    Tables: {\n")
	for i := range s.Tables {
		t := &s.Tables[i]
		if t.IsView {
			continue
		}
		e.emitTable(t)
	}
	fmt.Fprintf(e.writer, "    }\n")

	fmt.Fprintf(e.writer, "    Views: {\n")
	for i := range s.Tables {
		t := &s.Tables[i]
		if !t.IsView {
			continue
		}
		e.emitView(t)
	}
	fmt.Fprintf(e.writer, "    }\n")

	fmt.Fprintf(e.writer, "  }\n}\n")
	return nil
}

func (e *TypeScript) emitTable(t *typeshape.Table) {
	fmt.Fprintf(e.writer, "      %s: {\n", tsKey(t.Name))
	e.emitShape("Row", typeshape.DeriveRowShape(t))
	e.emitShape("Insert", typeshape.DeriveInsertShape(t))
	e.emitShape("Update", typeshape.DeriveUpdateShape(t))
	fmt.Fprintf(e.writer, "      }\n")
}

// emitView renders the read shape only; writes against a view go through
// its base tables.
func (e *TypeScript) emitView(t *typeshape.Table) {
	fmt.Fprintf(e.writer, "      %s: {\n", tsKey(t.Name))
	e.emitShape("Row", typeshape.DeriveRowShape(t))
	fmt.Fprintf(e.writer, "      }\n")
}

func (e *TypeScript) emitShape(member string, shape *typeshape.Shape) {
	fmt.Fprintf(e.writer, "        %s: {\n", member)
	for _, f := range shape.Fields {
		fmt.Fprintf(e.writer, "          %s\n", tsField(f))
	}
	fmt.Fprintf(e.writer, "        }\n")
}

// tsField renders one field line, e.g. `data?: Json | null`.
func tsField(f typeshape.Field) string {
	name := tsKey(f.Name)
	switch f.Presence {
	case typeshape.PresenceForbidden:
		return name + "?: never"
	case typeshape.PresenceOptional:
		return name + "?: " + tsType(f)
	default:
		return name + ": " + tsType(f)
	}
}

// tsType renders the value type of a field.
func tsType(f typeshape.Field) string {
	base := tsDomain(f.Domain)
	if f.Array {
		base += "[]"
	}
	if f.Nullable {
		base += " | null"
	}
	return base
}

func tsDomain(d typeshape.Domain) string {
	switch d {
	case typeshape.DomainBoolean:
		return "boolean"
	case typeshape.DomainInteger, typeshape.DomainFloat:
		return "number"
	case typeshape.DomainJSON:
		return "Json"
	case typeshape.DomainString, typeshape.DomainTimestamp, typeshape.DomainDate,
		typeshape.DomainTime, typeshape.DomainUUID, typeshape.DomainBytes:
		// Timestamps, dates, and binary data travel as strings over JSON.
		return "string"
	default:
		return "unknown"
	}
}

var tsIdent = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// tsKey quotes an object key unless it is a valid identifier.
func tsKey(name string) string {
	if tsIdent.MatchString(name) {
		return name
	}
	return fmt.Sprintf("%q", name)
}
