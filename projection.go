package typeshape

import (
	"github.com/typeshape/typeshape/internal/errs"
)

// Projection selects a subset of a table's columns and, optionally, nested
// selections through its foreign key edges. A nil or empty Columns slice
// selects every column. Projections are structural values; parsing a query
// builder's select string into one belongs to the caller.
type Projection struct {
	Columns   []string             `json:"columns,omitempty"`
	Relations []RelationProjection `json:"relations,omitempty"`
}

// RelationProjection selects a related table by name, with an optional
// nested projection. A nil Projection selects the related table's full row.
type RelationProjection struct {
	Table      string      `json:"table"`
	Projection *Projection `json:"projection,omitempty"`
}

// DeriveProjectedShape restricts the row shape of the named table to the
// projected columns and recurses into nested relation projections. The
// cardinality of each relation is taken from the schema's relationship
// records: when the related table owns the foreign key pointing at the base
// table the relation is a sequence (one-to-many); when the base table owns
// the key the relation is an optional singleton (many-to-one, absent under
// outer-join semantics).
//
// References to unknown tables, columns, or relations return an error of
// kind ErrKindInvalidInput.
func DeriveProjectedShape(s *Schema, table string, p *Projection) (*Shape, error) {
	t := s.Table(table)
	if t == nil {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown table %q", table)
	}
	return deriveProjected(s, t, p)
}

func deriveProjected(s *Schema, t *Table, p *Projection) (*Shape, error) {
	shape := &Shape{Table: t.Name, Kind: KindProjected}

	if p == nil || len(p.Columns) == 0 {
		row := DeriveRowShape(t)
		shape.Fields = row.Fields
	} else {
		shape.Fields = make([]Field, 0, len(p.Columns))
		for _, name := range p.Columns {
			c := t.Column(name)
			if c == nil {
				return nil, errs.Newf(errs.ErrKindInvalidInput,
					"table %q has no column %q", t.Name, name)
			}
			shape.Fields = append(shape.Fields, Field{
				Name:     c.Name,
				Domain:   c.Domain,
				Array:    c.Array,
				Nullable: c.Nullable,
				Presence: PresenceRequired,
			})
		}
	}

	if p == nil {
		return shape, nil
	}

	for _, rp := range p.Relations {
		related := s.Table(rp.Table)
		if related == nil {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown table %q", rp.Table)
		}
		rel, many := s.relationshipBetween(t.Name, rp.Table)
		if rel == nil {
			return nil, errs.Newf(errs.ErrKindInvalidInput,
				"no relationship between %q and %q", t.Name, rp.Table)
		}
		nested, err := deriveProjected(s, related, rp.Projection)
		if err != nil {
			return nil, err
		}
		shape.Relations = append(shape.Relations, Relation{
			Name:  rp.Table,
			Many:  many,
			Shape: nested,
		})
	}
	return shape, nil
}
