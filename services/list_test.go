package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListDropsDuplicates(t *testing.T) {
	l := ParseList("key,n-api,,key, g-api")
	assert.Equal(t, []string{"key", "n-api", "g-api"}, l.Names())
	assert.Equal(t, "key,n-api,g-api", l.String())
}

func TestParseListNegation(t *testing.T) {
	l := ParseList("key,n-net,n-api,-n-net")
	assert.Equal(t, []string{"key", "n-api"}, l.Names())
	assert.False(t, l.Contains("-n-net"))
}

func TestEnableDisable(t *testing.T) {
	l := NewList("key")
	l.Enable("ir-api", "ir-cond", "key")
	assert.Equal(t, 3, l.Len())
	l.Disable("key")
	assert.Equal(t, []string{"ir-api", "ir-cond"}, l.Names())
	l.Clear()
	assert.Equal(t, 0, l.Len())
}

func TestIsEnabledGroups(t *testing.T) {
	l := NewList("n-api", "ir-api", "s-proxy")
	tests := []struct {
		name    string
		enabled bool
	}{
		{"n-api", true},
		{"nova", true},
		{"ironic", true},
		{"swift", true},
		{"glance", false},
		{"n-cpu", false},
		{"unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, l.IsEnabled(tt.name))
		})
	}
}

func TestGroups(t *testing.T) {
	g := DefaultGroups()
	assert.Equal(t, "neutron", g.GetGroup("neutron-api", ""))
	assert.Equal(t, "neutron", g.GetGroup("q-svc", ""))
	assert.Equal(t, "other", g.GetGroup("tempest", "other"))
	assert.True(t, g.InGroup("c-vol", "cinder"))
	assert.False(t, g.InGroup("c-vol", "nova"))

	c := g.Clone()
	c.Add("octavia", "o-")
	assert.Contains(t, c.GetAllGroup(), "octavia")
	assert.NotContains(t, g.GetAllGroup(), "octavia")
}
