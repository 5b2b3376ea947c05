// Package emit renders derived type shapes as source text. Each emitter
// derives the Row/Insert/Update shapes itself, so callers only hand over
// the schema description.
package emit

import (
	"github.com/typeshape/typeshape"
)

// Emitter writes the generated type definitions for a full schema.
type Emitter interface {
	Emit(s *typeshape.Schema) error
}

// Language names a supported output language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
)
