package typeshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPostgresType(t *testing.T) {
	tests := []struct {
		in   string
		want Domain
	}{
		{"bigint", DomainInteger},
		{"int4", DomainInteger},
		{"serial", DomainInteger},
		{"numeric", DomainFloat},
		{"double precision", DomainFloat},
		{"text", DomainString},
		{"character varying", DomainString},
		{"boolean", DomainBoolean},
		{"uuid", DomainUUID},
		{"jsonb", DomainJSON},
		{"json", DomainJSON},
		{"bytea", DomainBytes},
		{"date", DomainDate},
		{"time without time zone", DomainTime},
		{"timestamp with time zone", DomainTimestamp},
		{"timestamptz", DomainTimestamp},
		{"inet", DomainString},
		{"geometry", DomainUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapPostgresType(tt.in))
		})
	}
}

func TestMapMySQLType(t *testing.T) {
	tests := []struct {
		in   string
		want Domain
	}{
		{"int", DomainInteger},
		{"bigint", DomainInteger},
		{"decimal", DomainFloat},
		{"varchar", DomainString},
		{"enum", DomainString},
		{"json", DomainJSON},
		{"datetime", DomainTimestamp},
		{"blob", DomainBytes},
		{"geometry", DomainUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapMySQLType(tt.in))
		})
	}
}

func TestDomainRoundTrip(t *testing.T) {
	domains := []Domain{
		DomainUnknown, DomainBoolean, DomainInteger, DomainFloat, DomainString,
		DomainTimestamp, DomainDate, DomainTime, DomainUUID, DomainJSON, DomainBytes,
	}
	for _, d := range domains {
		assert.Equal(t, d, ParseDomain(d.String()))
	}
}

func TestColumnModeParse(t *testing.T) {
	for _, m := range []ColumnMode{ModeGenerated, ModeRequired, ModeDefaulted, ModeNullable} {
		got, err := ParseColumnMode(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseColumnMode("whenever")
	assert.Error(t, err)
}
