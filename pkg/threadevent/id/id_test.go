package id_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/threadevent/pkg/threadevent/id"
)

func TestGeneratorsProduceDistinctIDs(t *testing.T) {
	for name, gen := range map[string]id.Generator{"uuid": id.UUID, "nuid": id.NUID} {
		t.Run(name, func(t *testing.T) {
			seen := make(map[string]struct{})
			for i := 0; i < 1000; i++ {
				v := gen.New()
				require.NotEmpty(t, v)
				_, dup := seen[v]
				require.False(t, dup, "duplicate id %s", v)
				seen[v] = struct{}{}
			}
		})
	}
}

func TestUUIDFormat(t *testing.T) {
	_, err := uuid.Parse(id.UUID.New())
	assert.NoError(t, err)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		want    id.Generator
		wantErr bool
	}{
		{"", id.UUID, false},
		{"uuid", id.UUID, false},
		{"UUID", id.UUID, false},
		{"nuid", id.NUID, false},
		{"snowflake", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := id.Lookup(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeneratorFunc(t *testing.T) {
	gen := id.GeneratorFunc(func() string { return "fixed" })
	assert.Equal(t, "fixed", gen.New())
}
