package typeshape

import "fmt"

// ColumnMode is the write-classification of a column. It is derived once,
// when the schema description is produced, so the shape derivations can
// switch exhaustively instead of re-combining boolean flags.
type ColumnMode int

const (
	// ModeGenerated marks a column whose value is computed by the engine
	// (identity ALWAYS, stored generated column). Callers must never supply
	// it; insert and update shapes mark it forbidden.
	ModeGenerated ColumnMode = iota

	// ModeRequired marks a not-null column without a default. It must be
	// supplied on insert.
	ModeRequired

	// ModeDefaulted marks a not-null column with an engine default
	// (including serial / auto_increment). Omissible on insert.
	ModeDefaulted

	// ModeNullable marks a nullable column. Omissible on insert and may
	// carry null in any shape.
	ModeNullable
)

func (m ColumnMode) String() string {
	switch m {
	case ModeGenerated:
		return "generated"
	case ModeRequired:
		return "required"
	case ModeDefaulted:
		return "defaulted"
	case ModeNullable:
		return "nullable"
	default:
		return "unknown"
	}
}

// ParseColumnMode converts the serialized mode name back to a ColumnMode.
func ParseColumnMode(s string) (ColumnMode, error) {
	switch s {
	case "generated":
		return ModeGenerated, nil
	case "required":
		return ModeRequired, nil
	case "defaulted":
		return ModeDefaulted, nil
	case "nullable":
		return ModeNullable, nil
	default:
		return 0, fmt.Errorf("unknown column mode %q", s)
	}
}

// MarshalYAML serializes the mode as its lowercase name.
func (m ColumnMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML parses the lowercase mode name.
func (m *ColumnMode) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	mode, err := ParseColumnMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalJSON serializes the mode as its lowercase name.
func (m ColumnMode) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.String())), nil
}

// ClassifyColumn derives the write-classification from the three raw
// introspection facts. Generated wins over everything: an engine-computed
// value is forbidden regardless of nullability or defaults.
func ClassifyColumn(generated, nullable, hasDefault bool) ColumnMode {
	switch {
	case generated:
		return ModeGenerated
	case nullable:
		return ModeNullable
	case hasDefault:
		return ModeDefaulted
	default:
		return ModeRequired
	}
}
