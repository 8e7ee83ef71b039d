package csapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"GET:/stats/dashboard":           "GET_/stats/dashboard",
		"GET:/items/expiring:days=7":     "GET_/items/expiring_days=7",
		"GET:/items?search=乙醇 95%":       "GET_/items_search=___95_",
		"already-valid_key.with/slashes": "already-valid_key.with/slashes",
	}

	for input, want := range tests {
		assert.Equal(t, want, natsKey(input), input)
	}
}

func TestNewNATSKVCache_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewNATSKVCache(nil)
	require.ErrorIs(t, err, ErrNATSConfigRequired)
}
