package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, content string) (*Document, error) {
	t.Helper()
	return Parse(strings.NewReader(content), "local.conf")
}

func TestParseSections(t *testing.T) {
	doc, err := parseString(t, Sample)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 2)

	assert.True(t, doc.Sections[0].IsLocalrc())
	assert.Equal(t, 1, doc.Sections[0].Line)
	assert.Equal(t, "post-config", doc.Sections[1].Phase)
	assert.Equal(t, "$IRONIC_CONF_FILE", doc.Sections[1].File)
	assert.Empty(t, doc.Sections[1].Statements)
	assert.Contains(t, doc.Sections[1].Content(), "automated_clean = False")
}

func TestParseStatements(t *testing.T) {
	doc, err := parseString(t, `# leading comment

[[local|localrc]]
export HOST_IP=10.0.0.5
ENABLED_SERVICES+=,ir-api
enable_plugin ironic https://opendev.org/openstack/ironic stable/2024.1
disable_all_services
`)
	require.NoError(t, err)
	stmts := doc.Localrc()
	require.Len(t, stmts, 4)

	assert.Equal(t, AssignmentStatement, stmts[0].Kind)
	assert.Equal(t, "HOST_IP", stmts[0].Name)
	assert.Equal(t, "10.0.0.5", stmts[0].Value.String())
	assert.Equal(t, 4, stmts[0].Line)

	assert.True(t, stmts[1].Append)
	assert.Equal(t, ",ir-api", stmts[1].Value.String())

	assert.Equal(t, DirectiveStatement, stmts[2].Kind)
	assert.Equal(t, EnablePlugin, stmts[2].Directive)
	assert.Len(t, stmts[2].Args, 3)

	assert.Equal(t, DisableAllService, stmts[3].Directive)
}

func TestParseContinuation(t *testing.T) {
	doc, err := parseString(t, "[[local|localrc]]\nenable_service \\\n  s-proxy s-object\nX=1\n")
	require.NoError(t, err)
	stmts := doc.Localrc()
	require.Len(t, stmts, 2)
	assert.Equal(t, 2, stmts[0].Line)
	assert.Len(t, stmts[0].Args, 2)
	assert.Equal(t, 4, stmts[1].Line)
}

func TestParseBackslashNotContinuing(t *testing.T) {
	doc, err := parseString(t, "[[local|localrc]]\nFOO=bar # see C:\\\nX=1\n")
	require.NoError(t, err)
	stmts := doc.Localrc()
	require.Len(t, stmts, 2)
	assert.Equal(t, "FOO", stmts[0].Name)
	assert.Equal(t, "X", stmts[1].Name)
	assert.Equal(t, 3, stmts[1].Line)

	_, err = parseString(t, "[[local|localrc]]\nA='x \\\nB=1\n")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)

	doc, err = parseString(t, "[[local|localrc]]\nA=\"x \\\ny\"\nB=1\n")
	require.NoError(t, err)
	require.Len(t, doc.Localrc(), 2)
	assert.Equal(t, "B", doc.Localrc()[1].Name)
}

func TestParseMultipleLocalrc(t *testing.T) {
	doc, err := parseString(t, "[[local|localrc]]\nA=1\n[[post-config|/etc/x.conf]]\n[DEFAULT]\na=b\n[[local|localrc]]\nB=2\n")
	require.NoError(t, err)
	stmts := doc.Localrc()
	require.Len(t, stmts, 2)
	assert.Equal(t, "A", stmts[0].Name)
	assert.Equal(t, "B", stmts[1].Name)
	assert.Equal(t, "A=1\nB=2\n", doc.LocalrcText())
	assert.Len(t, doc.Find("post-config", ""), 1)
	assert.Len(t, doc.Find("post-config", "/etc/y.conf"), 0)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"outside section", "A=1\n", 1},
		{"missing close", "[[local|localrc]\nA=1\n", 1},
		{"missing pipe", "[[local]]\n", 1},
		{"empty file", "[[local| ]]\n", 1},
		{"unknown statement", "[[local|localrc]]\nA=1\nrm -rf /\n", 3},
		{"two words", "[[local|localrc]]\nA=one two\n", 2},
		{"space after equals", "[[local|localrc]]\nA= two\n", 2},
		{"unterminated quote", "[[local|localrc]]\n\nA='x\n", 3},
		{"enable_service arity", "[[local|localrc]]\nenable_service\n", 2},
		{"enable_plugin arity", "[[local|localrc]]\nenable_plugin ironic\n", 2},
		{"disable_all arity", "[[local|localrc]]\ndisable_all_services now\n", 2},
		{"dangling continuation", "[[local|localrc]]\nA=1 \\\n", 2},
		{"command substitution", "[[local|localrc]]\nHOST_IP=$(hostname -i)\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, tt.content)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, "local.conf", pe.File)
		})
	}
}

func TestParseAllowsEmptyValue(t *testing.T) {
	doc, err := parseString(t, "[[local|localrc]]\nA=\nB=  # nothing\nC=''\n")
	require.NoError(t, err)
	stmts := doc.Localrc()
	require.Len(t, stmts, 3)
	for _, s := range stmts {
		assert.Equal(t, "", s.Value.String())
	}
}
