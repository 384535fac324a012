package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	for _, s := range []string{"True", "true", "1", "yes", "ON"} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"False", "0", "no", "off"} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
	_, err = ParseBool("tRuE")
	assert.Error(t, err)
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in  string
		out int64
	}{
		{"1024", 1024},
		{"2K", 2048},
		{"2KB", 2048},
		{"3M", 3 * 1024 * 1024},
		{"6G", 6 * 1024 * 1024 * 1024},
		{"1T", 1024 * 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		v, err := ParseBytes(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.out, v, tt.in)
	}
	_, err := ParseBytes("big")
	assert.Error(t, err)
	_, err = ParseBytes("-1")
	assert.Error(t, err)
}

func TestTypedGetters(t *testing.T) {
	c, err := load(t, `[[local|localrc]]
A=True
B=off
C=12
D=twelve
SIZE=6G
RANGE=10.1.0.0/24
BAD_RANGE=10.1.0.0
LIST="ipmi, fake-hardware,,redfish"
`)
	require.NoError(t, err)

	assert.True(t, c.GetBool("A", false))
	assert.False(t, c.GetBool("B", true))
	assert.True(t, c.GetBool("C", true))
	assert.False(t, c.GetBool("MISSING", false))

	assert.Equal(t, 12, c.GetInt("C", 0))
	assert.Equal(t, 9, c.GetInt("D", 9))
	assert.Equal(t, int64(6*1024*1024*1024), c.GetBytes("SIZE", 0))
	assert.Equal(t, int64(-1), c.GetBytes("D", -1))

	_, err = c.GetCIDR("RANGE")
	assert.NoError(t, err)
	_, err = c.GetCIDR("BAD_RANGE")
	assert.Error(t, err)
	_, err = c.GetCIDR("MISSING")
	assert.Error(t, err)

	assert.Equal(t, []string{"ipmi", "fake-hardware", "redfish"}, c.GetList("LIST"))
	assert.Empty(t, c.GetList("MISSING"))
	assert.True(t, c.HasParameter("A"))
	assert.False(t, c.HasParameter("MISSING"))
	assert.Equal(t, "def", c.GetString("MISSING", "def"))
}
