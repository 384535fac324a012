package config

import (
	"bytes"
	"os"
	"strings"
	"unicode"

	"github.com/ochinchina/go-ini"
)

// envMark stands in for "${" while a value is decoded by go-ini, which
// would otherwise substitute the process environment into it.
const envMark = "\x00{"

// IniKey is one key of an INI payload
type IniKey struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// line is the key as written, continuation lines included
	line string
}

type iniEntry struct {
	// key is empty for a comment or blank line kept verbatim in text
	key  string
	text string
}

// IniGroup is one [group] of an INI payload
type IniGroup struct {
	Name string   `json:"name"`
	Keys []IniKey `json:"keys"`

	header  string
	entries []iniEntry
}

func newIniGroup(name string, header string) *IniGroup {
	return &IniGroup{Name: name, Keys: make([]IniKey, 0), header: header, entries: make([]iniEntry, 0)}
}

// Get returns the value of key in the group
func (g *IniGroup) Get(key string) (string, bool) {
	for _, k := range g.Keys {
		if k.Name == key {
			return k.Value, true
		}
	}
	return "", false
}

// Set replaces the value of key in place or appends it
func (g *IniGroup) Set(key string, value string) {
	g.set(IniKey{Name: key, Value: value, line: key + " = " + value})
}

func (g *IniGroup) set(k IniKey) {
	for i := range g.Keys {
		if g.Keys[i].Name == k.Name {
			g.Keys[i] = k
			return
		}
	}
	g.Keys = append(g.Keys, k)

	// new keys go above the blank lines closing the group
	at := len(g.entries)
	for at > 0 && g.entries[at-1].key == "" && strings.TrimSpace(g.entries[at-1].text) == "" {
		at--
	}
	g.entries = append(g.entries, iniEntry{})
	copy(g.entries[at+1:], g.entries[at:])
	g.entries[at] = iniEntry{key: k.Name}
}

func (g *IniGroup) key(name string) *IniKey {
	for i := range g.Keys {
		if g.Keys[i].Name == name {
			return &g.Keys[i]
		}
	}
	return nil
}

// INI is an ordered set of INI groups. Comments, blank lines and key order
// of the parsed text are kept when it is written back.
type INI struct {
	Groups []*IniGroup `json:"groups"`

	preamble []string
}

func newINI() *INI {
	return &INI{Groups: make([]*IniGroup, 0), preamble: make([]string, 0)}
}

// Group returns the group named name
func (f *INI) Group(name string) (*IniGroup, bool) {
	for _, g := range f.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Get returns the value of key in group
func (f *INI) Get(group string, key string) (string, bool) {
	g, ok := f.Group(group)
	if !ok {
		return "", false
	}
	return g.Get(key)
}

// Merge copies every key of other over f, adding groups as needed. Keys
// of f keep their position, new keys and groups are appended.
func (f *INI) Merge(other *INI) {
	for _, og := range other.Groups {
		g, ok := f.Group(og.Name)
		if !ok {
			g = newIniGroup(og.Name, "")
			f.Groups = append(f.Groups, g)
		}
		for _, k := range og.Keys {
			g.set(k)
		}
	}
}

// String renders f in INI syntax
func (f *INI) String() string {
	buf := bytes.NewBuffer(make([]byte, 0))
	for _, line := range f.preamble {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	for _, g := range f.Groups {
		header := g.header
		if header == "" {
			if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n\n")) {
				buf.WriteString("\n")
			}
			header = "[" + g.Name + "]"
		}
		buf.WriteString(header)
		buf.WriteString("\n")
		for _, e := range g.entries {
			text := e.text
			if e.key != "" {
				text = g.key(e.key).line
			}
			buf.WriteString(text)
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

func indentOf(s string) int {
	return len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
}

// continues reports whether a value line ends with an odd run of
// backslashes, joining the next line to it
func continues(line string) bool {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func isINIComment(trimmed string) bool {
	return trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#'
}

// decodeINIValue decodes the value of one key as written, with go-ini's
// inline comment, escape and continuation rules but no environment
// substitution.
func decodeINIValue(name string, line string) string {
	myini := ini.NewIni()
	myini.LoadString("[v]\n" + strings.ReplaceAll(line, "${", envMark))
	section, err := myini.GetSection("v")
	if err != nil {
		return ""
	}
	value := section.Key(name).ValueWithDefault("")
	return strings.TrimSpace(strings.ReplaceAll(value, envMark, "${"))
}

// ParseINI parses INI content. Groups and keys keep their source order.
// A group repeated in the text is merged into its first occurrence.
func ParseINI(content string) *INI {
	result := newINI()
	if strings.TrimSpace(content) == "" {
		return result
	}

	var cur *IniGroup
	var prev *IniKey
	keyIndent := -1
	multiline, joined := false, false
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if multiline {
			prev.line += "\n" + line
			multiline = !strings.HasSuffix(trimmed, `"""`)
			continue
		}
		if joined {
			prev.line += "\n" + line
			joined = continues(line)
			continue
		}
		if prev != nil && trimmed != "" && indentOf(line) > keyIndent {
			prev.line += "\n" + line
			continue
		}
		if isINIComment(trimmed) {
			if cur == nil {
				result.preamble = append(result.preamble, line)
			} else {
				cur.entries = append(cur.entries, iniEntry{text: line})
			}
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if g, ok := result.Group(name); ok {
				cur = g
			} else {
				cur = newIniGroup(name, line)
				result.Groups = append(result.Groups, cur)
			}
			prev, keyIndent = nil, -1
			continue
		}
		pos := strings.IndexAny(line, "=:")
		if cur == nil || pos == -1 {
			if cur == nil {
				result.preamble = append(result.preamble, line)
			} else {
				cur.entries = append(cur.entries, iniEntry{text: line})
			}
			prev, keyIndent = nil, -1
			continue
		}

		name := strings.TrimSpace(line[:pos])
		cur.set(IniKey{Name: name, line: line})
		prev, keyIndent = cur.key(name), indentOf(line)

		value := strings.TrimSpace(line[pos+1:])
		if strings.HasPrefix(value, `"""`) {
			multiline = len(value) < 6 || !strings.HasSuffix(value, `"""`)
		} else {
			joined = continues(value)
		}
	}

	for _, g := range result.Groups {
		for i := range g.Keys {
			g.Keys[i].Value = decodeINIValue(g.Keys[i].Name, g.Keys[i].line)
		}
	}
	return result
}

// LoadINIFile parses the INI file at path. A missing file is an empty INI.
func LoadINIFile(path string) (*INI, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newINI(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseINI(string(b)), nil
}

// INI parses the section body as an INI payload
func (s *Section) INI() *INI {
	return ParseINI(s.Content())
}
