package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpanderForms(t *testing.T) {
	vars := map[string]string{"SET": "value", "EMPTY": ""}
	lookup := func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}

	tests := []struct {
		in  string
		out string
	}{
		{"$SET", "value"},
		{"${SET}x", "valuex"},
		{"${UNSET:-fallback}", "fallback"},
		{"${EMPTY:-fallback}", "fallback"},
		{"${EMPTY-fallback}", ""},
		{"${UNSET-fallback}", "fallback"},
		{"${SET:+alt}", "alt"},
		{"${EMPTY:+alt}", ""},
		{"${EMPTY+alt}", "alt"},
		{"${UNSET:-$SET/default}", "value/default"},
		{"cost$", "cost$"},
		{"${UNSET:-${SET}}", "value"},
		{"${UNSET:-${ALSO_UNSET:-${SET}}}/x", "value/x"},
		{"${SET:+[${SET}]}", "[value]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e := newExpander(lookup)
			out, err := e.Word(Word{{Text: tt.in, Quote: Unquoted}})
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)
			assert.Empty(t, e.missing)
		})
	}
}

func TestExpanderAssignDefault(t *testing.T) {
	vars := map[string]string{}
	e := newExpander(func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	})
	e.assign = func(name, value string) { vars[name] = value }

	out, err := e.Word(Word{{Text: "${DEST:=/opt/stack}", Quote: DoubleQuoted}})
	require.NoError(t, err)
	assert.Equal(t, "/opt/stack", out)
	assert.Equal(t, "/opt/stack", vars["DEST"])
}

func TestExpanderMissing(t *testing.T) {
	e := newExpander(func(string) (string, bool) { return "", false })
	out, err := e.Word(Word{{Text: "$A-${B:?need B}", Quote: Unquoted}})
	require.NoError(t, err)
	assert.Equal(t, "-", out)
	require.Len(t, e.missing, 2)
	assert.Equal(t, "A", e.missing[0].name)
	assert.Equal(t, "need B", e.missing[1].msg)
	assert.Equal(t, []string{"A", "B"}, e.refs)
}

func TestExpanderLiteralSegments(t *testing.T) {
	e := newExpander(func(string) (string, bool) { return "x", true })
	out, err := e.Word(Word{{Text: "$A", Quote: SingleQuoted}, {Text: "$", Quote: Escaped}, {Text: "$A", Quote: DoubleQuoted}})
	require.NoError(t, err)
	assert.Equal(t, "$A$x", out)
}

func TestExpanderUnsupported(t *testing.T) {
	e := newExpander(func(string) (string, bool) { return "x", true })
	_, err := e.Word(Word{{Text: "${A/x/y}", Quote: Unquoted}})
	assert.Error(t, err)

	e = newExpander(func(string) (string, bool) { return "x", true })
	_, err = e.Word(Word{{Text: "${#A}", Quote: Unquoted}})
	assert.Error(t, err)

	e = newExpander(func(string) (string, bool) { return "x", true })
	_, err = e.Word(Word{{Text: "${A:-${B}", Quote: Unquoted}})
	assert.Error(t, err)
}
