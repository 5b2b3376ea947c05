package emit

import (
	"fmt"
	"go/format"
	"io"
	"sort"
	"strings"

	"github.com/typeshape/typeshape"
)

// Go emits one struct per derived shape: <Table>Row, <Table>Insert, and
// <Table>Update (views get the Row struct only). Optional and nullable
// fields become pointers so omission is distinguishable from the zero value;
// forbidden fields are left out entirely, which makes supplying a generated
// column a compile error at the call site.
type Go struct {
	writer io.Writer
	pkg    string
}

// NewGo creates a Go emitter writing to w, declaring package pkg.
func NewGo(w io.Writer, pkg string) *Go {
	if pkg == "" {
		pkg = "dbtypes"
	}
	return &Go{writer: w, pkg: pkg}
}

// Emit writes the generated structs for s.
func (e *Go) Emit(s *typeshape.Schema) error {
	var body strings.Builder
	imports := map[string]bool{}

	for i := range s.Tables {
		t := &s.Tables[i]
		writeGoShape(&body, imports, typeshape.DeriveRowShape(t),
			goTypeName(t.Name)+"Row",
			fmt.Sprintf("is the read shape of %s %q.", tableOrView(t), t.Name))
		if t.IsView {
			continue
		}
		writeGoShape(&body, imports, typeshape.DeriveInsertShape(t),
			goTypeName(t.Name)+"Insert",
			fmt.Sprintf("is the creation payload for table %q.", t.Name))
		writeGoShape(&body, imports, typeshape.DeriveUpdateShape(t),
			goTypeName(t.Name)+"Update",
			fmt.Sprintf("is the partial-update payload for table %q.", t.Name))
	}

	var src strings.Builder
	fmt.Fprintf(&src, "// Code generated by typeshape. DO NOT EDIT.\n\npackage %s\n", e.pkg)
	if len(imports) > 0 {
		paths := make([]string, 0, len(imports))
		for p := range imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		fmt.Fprintf(&src, "\nimport (\n")
		for _, p := range paths {
			fmt.Fprintf(&src, "\t%q\n", p)
		}
		fmt.Fprintf(&src, ")\n")
	}
	src.WriteString(body.String())

	out := []byte(src.String())
	if formatted, err := format.Source(out); err == nil {
		out = formatted
	}
	_, err := e.writer.Write(out)
	return err
}

func tableOrView(t *typeshape.Table) string {
	if t.IsView {
		return "view"
	}
	return "table"
}

func writeGoShape(b *strings.Builder, imports map[string]bool, shape *typeshape.Shape, name, doc string) {
	fmt.Fprintf(b, "\n// %s %s\n", name, doc)
	fmt.Fprintf(b, "type %s struct {\n", name)
	for _, f := range shape.Fields {
		if f.Presence == typeshape.PresenceForbidden {
			continue
		}
		fmt.Fprintf(b, "\t%s %s `json:%q`\n",
			goFieldName(f.Name), goFieldType(f, imports), jsonTag(f))
	}
	fmt.Fprintf(b, "}\n")
}

func jsonTag(f typeshape.Field) string {
	if f.Presence == typeshape.PresenceOptional {
		return f.Name + ",omitempty"
	}
	return f.Name
}

// goFieldType maps a field to its Go type, registering any import it needs.
// Slices and byte strings stay value types; nil already expresses absence.
func goFieldType(f typeshape.Field, imports map[string]bool) string {
	base := goDomain(f.Domain, imports)
	switch {
	case f.Array:
		return "[]" + base
	case f.Domain == typeshape.DomainBytes || f.Domain == typeshape.DomainJSON:
		return base
	case f.Nullable || f.Presence == typeshape.PresenceOptional:
		return "*" + base
	default:
		return base
	}
}

func goDomain(d typeshape.Domain, imports map[string]bool) string {
	switch d {
	case typeshape.DomainBoolean:
		return "bool"
	case typeshape.DomainInteger:
		return "int64"
	case typeshape.DomainFloat:
		return "float64"
	case typeshape.DomainTimestamp, typeshape.DomainDate:
		imports["time"] = true
		return "time.Time"
	case typeshape.DomainJSON:
		imports["encoding/json"] = true
		return "json.RawMessage"
	case typeshape.DomainBytes:
		return "[]byte"
	case typeshape.DomainString, typeshape.DomainTime, typeshape.DomainUUID:
		return "string"
	default:
		return "any"
	}
}

// commonInitialisms are field name parts spelled in full caps, following
// standard Go naming.
var commonInitialisms = map[string]string{
	"id": "ID", "url": "URL", "uri": "URI", "api": "API",
	"uuid": "UUID", "ip": "IP", "sql": "SQL", "html": "HTML",
}

// goFieldName converts a snake_case column name to an exported Go name.
func goFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return "Field"
	}
	var b strings.Builder
	for _, p := range parts {
		if up, ok := commonInitialisms[strings.ToLower(p)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// goTypeName converts a table name to the exported struct name prefix.
func goTypeName(name string) string {
	return goFieldName(name)
}
