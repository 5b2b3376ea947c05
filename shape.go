package typeshape

// Presence states whether a field may, must, or must never appear in a
// payload of the shape it belongs to.
type Presence int

const (
	// PresenceRequired fields must be supplied.
	PresenceRequired Presence = iota

	// PresenceOptional fields may be omitted.
	PresenceOptional

	// PresenceForbidden fields must be omitted; supplying one is a caller
	// error. Emitters render this as an unsatisfiable type (`never` in
	// TypeScript) rather than a runtime check.
	PresenceForbidden
)

func (p Presence) String() string {
	switch p {
	case PresenceRequired:
		return "required"
	case PresenceOptional:
		return "optional"
	case PresenceForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the presence as its lowercase name.
func (p Presence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// Field is one scalar field of a derived shape.
type Field struct {
	Name     string   `json:"name"`
	Domain   Domain   `json:"domain"`
	Array    bool     `json:"array,omitempty"`
	Nullable bool     `json:"nullable,omitempty"`
	Presence Presence `json:"presence"`
}

// ShapeKind names which derivation produced a shape.
type ShapeKind string

const (
	KindRow       ShapeKind = "row"
	KindInsert    ShapeKind = "insert"
	KindUpdate    ShapeKind = "update"
	KindProjected ShapeKind = "projected"
)

// Shape is a derived type shape: the fields of one table (or a projection
// of it), plus nested relation shapes for projected selections.
type Shape struct {
	Table     string     `json:"table"`
	Kind      ShapeKind  `json:"kind"`
	Fields    []Field    `json:"fields"`
	Relations []Relation `json:"relations,omitempty"`
}

// Relation is a nested shape reached through a foreign key edge.
// Many selects the sequence form (one-to-many); otherwise the relation is
// an optional singleton: absent when no matching row exists, as under
// outer-join semantics.
type Relation struct {
	Name  string `json:"name"`
	Many  bool   `json:"many"`
	Shape *Shape `json:"shape"`
}

// Field returns the named field, or nil if the shape has no such field.
func (s *Shape) Field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// DeriveRowShape derives the read shape of a table: every column appears
// exactly once with its domain, nullability preserved. Total over
// well-formed input: duplicate column names are an upstream contract
// violation and are not detected here.
func DeriveRowShape(t *Table) *Shape {
	shape := &Shape{Table: t.Name, Kind: KindRow, Fields: make([]Field, 0, len(t.Columns))}
	for _, c := range t.Columns {
		shape.Fields = append(shape.Fields, Field{
			Name:     c.Name,
			Domain:   c.Domain,
			Array:    c.Array,
			Nullable: c.Nullable,
			Presence: PresenceRequired,
		})
	}
	return shape
}

// DeriveInsertShape derives the creation payload shape. Generated columns
// are forbidden; not-null columns without a default are required; everything
// else is optional, keeping nullability.
func DeriveInsertShape(t *Table) *Shape {
	shape := &Shape{Table: t.Name, Kind: KindInsert, Fields: make([]Field, 0, len(t.Columns))}
	for _, c := range t.Columns {
		shape.Fields = append(shape.Fields, Field{
			Name:     c.Name,
			Domain:   c.Domain,
			Array:    c.Array,
			Nullable: c.Nullable,
			Presence: writePresence(c.Mode, false),
		})
	}
	return shape
}

// DeriveUpdateShape derives the partial-modification payload shape.
// Identical to the insert shape except that required columns become
// optional, since a partial update need not touch every column. Generated
// columns stay forbidden.
func DeriveUpdateShape(t *Table) *Shape {
	shape := &Shape{Table: t.Name, Kind: KindUpdate, Fields: make([]Field, 0, len(t.Columns))}
	for _, c := range t.Columns {
		shape.Fields = append(shape.Fields, Field{
			Name:     c.Name,
			Domain:   c.Domain,
			Array:    c.Array,
			Nullable: c.Nullable,
			Presence: writePresence(c.Mode, true),
		})
	}
	return shape
}

// writePresence maps a column mode to its presence in a write payload.
// The switch is exhaustive over ColumnMode.
func writePresence(m ColumnMode, partial bool) Presence {
	switch m {
	case ModeGenerated:
		return PresenceForbidden
	case ModeRequired:
		if partial {
			return PresenceOptional
		}
		return PresenceRequired
	case ModeDefaulted, ModeNullable:
		return PresenceOptional
	default:
		return PresenceOptional
	}
}
