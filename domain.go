package typeshape

import (
	"fmt"
	"strings"
)

// Domain is the semantic value domain of a column, independent of the
// database engine's spelling of the type. Emitters map domains to
// target-language types; the mapper itself never interprets values.
type Domain int

const (
	DomainUnknown Domain = iota
	DomainBoolean
	DomainInteger
	DomainFloat
	DomainString
	DomainTimestamp
	DomainDate
	DomainTime
	DomainUUID
	DomainJSON
	DomainBytes
)

func (d Domain) String() string {
	switch d {
	case DomainBoolean:
		return "boolean"
	case DomainInteger:
		return "integer"
	case DomainFloat:
		return "float"
	case DomainString:
		return "string"
	case DomainTimestamp:
		return "timestamp"
	case DomainDate:
		return "date"
	case DomainTime:
		return "time"
	case DomainUUID:
		return "uuid"
	case DomainJSON:
		return "json"
	case DomainBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// ParseDomain converts the serialized domain name back to a Domain.
// Unrecognised names map to DomainUnknown rather than failing, so schema
// descriptions written by newer versions still load.
func ParseDomain(s string) Domain {
	switch s {
	case "boolean":
		return DomainBoolean
	case "integer":
		return DomainInteger
	case "float":
		return DomainFloat
	case "string":
		return DomainString
	case "timestamp":
		return DomainTimestamp
	case "date":
		return DomainDate
	case "time":
		return DomainTime
	case "uuid":
		return DomainUUID
	case "json":
		return DomainJSON
	case "bytes":
		return DomainBytes
	default:
		return DomainUnknown
	}
}

// MarshalYAML serializes the domain as its lowercase name.
func (d Domain) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML parses the lowercase domain name.
func (d *Domain) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*d = ParseDomain(s)
	return nil
}

// MarshalJSON serializes the domain as its lowercase name.
func (d Domain) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// MapPostgresType converts an information_schema data_type (or udt_name for
// array element types) into a Domain. Unrecognised types map to DomainUnknown.
func MapPostgresType(dataType string) Domain {
	t := strings.ToLower(strings.TrimSpace(dataType))
	switch t {
	case "boolean", "bool":
		return DomainBoolean
	case "smallint", "integer", "bigint", "int2", "int4", "int8", "smallserial", "serial", "bigserial":
		return DomainInteger
	case "real", "double precision", "float4", "float8", "numeric", "decimal", "money":
		return DomainFloat
	case "uuid":
		return DomainUUID
	case "json", "jsonb":
		return DomainJSON
	case "bytea":
		return DomainBytes
	case "date":
		return DomainDate
	case "time", "time without time zone", "time with time zone", "timetz":
		return DomainTime
	case "timestamp", "timestamp without time zone", "timestamp with time zone", "timestamptz":
		return DomainTimestamp
	}
	switch {
	case strings.HasPrefix(t, "character"), t == "text", t == "varchar", t == "char",
		t == "name", t == "citext", strings.HasPrefix(t, "interval"):
		return DomainString
	case t == "inet", t == "cidr", t == "macaddr", t == "xml":
		return DomainString
	default:
		return DomainUnknown
	}
}

// MapMySQLType converts a MySQL information_schema data_type into a Domain.
func MapMySQLType(dataType string) Domain {
	t := strings.ToLower(strings.TrimSpace(dataType))
	switch t {
	case "tinyint", "smallint", "mediumint", "int", "integer", "bigint", "year":
		return DomainInteger
	case "float", "double", "decimal", "numeric":
		return DomainFloat
	case "bit", "boolean", "bool":
		return DomainBoolean
	case "json":
		return DomainJSON
	case "date":
		return DomainDate
	case "time":
		return DomainTime
	case "datetime", "timestamp":
		return DomainTimestamp
	case "binary", "varbinary", "tinyblob", "blob", "mediumblob", "longblob":
		return DomainBytes
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext", "enum", "set":
		return DomainString
	default:
		return DomainUnknown
	}
}
