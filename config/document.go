package config

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Phases lists the meta-section phases DevStack processes
var Phases = []string{"local", "post-config", "extra", "post-extra", "test-config"}

const (
	localPhase   = "local"
	localrcFile  = "localrc"
	metaOpen     = "[["
	metaClose    = "]]"
	exportPrefix = "export"
)

// Directive names accepted in the localrc section
const (
	EnableService     = "enable_service"
	DisableService    = "disable_service"
	EnablePlugin      = "enable_plugin"
	DisableAllService = "disable_all_services"
)

var assignmentRegexp = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(\+?=)(.*)$`)

// StatementKind distinguishes assignments from directives
type StatementKind int

const (
	// AssignmentStatement is NAME=value or NAME+=value
	AssignmentStatement StatementKind = iota
	// DirectiveStatement is a service or plugin directive
	DirectiveStatement
)

// Statement is one logical line of the localrc section
type Statement struct {
	Kind StatementKind
	Line int
	Text string

	Name   string
	Append bool
	Value  Word

	Directive string
	Args      []Word
}

// Section is a [[phase|file]] meta-section
type Section struct {
	Phase string
	File  string
	// Line is the line of the header
	Line       int
	Lines      []string
	Statements []Statement
}

// IsLocalrc reports whether this is a [[local|localrc]] section
func (s *Section) IsLocalrc() bool {
	return s.Phase == localPhase && s.File == localrcFile
}

// Content returns the section body as written
func (s *Section) Content() string {
	if len(s.Lines) == 0 {
		return ""
	}
	return strings.Join(s.Lines, "\n") + "\n"
}

// Document is a parsed local.conf
type Document struct {
	Name     string
	Sections []*Section
}

// Localrc returns the statements of every localrc section in file order
func (d *Document) Localrc() []Statement {
	result := make([]Statement, 0)
	for _, sec := range d.Sections {
		if sec.IsLocalrc() {
			result = append(result, sec.Statements...)
		}
	}
	return result
}

// LocalrcText returns the concatenated body of the localrc sections
func (d *Document) LocalrcText() string {
	var b strings.Builder
	for _, sec := range d.Sections {
		if sec.IsLocalrc() {
			b.WriteString(sec.Content())
		}
	}
	return b.String()
}

// Find returns the sections matching phase and, if file is not empty, file
func (d *Document) Find(phase string, file string) []*Section {
	result := make([]*Section, 0)
	for _, sec := range d.Sections {
		if sec.Phase == phase && (file == "" || sec.File == file) {
			result = append(result, sec)
		}
	}
	return result
}

// Parse reads local.conf syntax from r. name is used in error messages.
func Parse(r io.Reader, name string) (*Document, error) {
	doc := &Document{Name: name, Sections: make([]*Section, 0)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *Section
	var pending strings.Builder
	pendingLine := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if pendingLine == 0 && strings.HasPrefix(trimmed, metaOpen) {
			sec, err := parseHeader(trimmed)
			if err != nil {
				return nil, &ParseError{File: name, Line: lineNo, Msg: err.Error()}
			}
			sec.Line = lineNo
			doc.Sections = append(doc.Sections, sec)
			cur = sec
			continue
		}

		if cur == nil {
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			return nil, &ParseError{File: name, Line: lineNo, Msg: "content outside of a [[phase|file]] section"}
		}

		cur.Lines = append(cur.Lines, line)
		if !cur.IsLocalrc() {
			continue
		}

		if pendingLine == 0 {
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			pendingLine = lineNo
		}
		if continued(pending.String() + line) {
			pending.WriteString(line[:len(line)-1])
			continue
		}
		pending.WriteString(line)
		stmt, err := parseStatement(pending.String())
		if err != nil {
			return nil, &ParseError{File: name, Line: pendingLine, Msg: err.Error()}
		}
		if stmt != nil {
			stmt.Line = pendingLine
			cur.Statements = append(cur.Statements, *stmt)
		}
		pending.Reset()
		pendingLine = 0
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if pendingLine != 0 {
		return nil, &ParseError{File: name, Line: pendingLine, Msg: "line continuation at end of file"}
	}

	log.WithFields(log.Fields{"file": name, "sections": len(doc.Sections)}).Debug("parsed local.conf")
	return doc, nil
}

// continued reports whether text ends with a backslash that escapes the
// newline. A backslash inside single quotes or a trailing comment does not.
func continued(text string) bool {
	inSingle, inDouble := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case c == '\\':
			if i == len(text)-1 {
				return true
			}
			i++
		case inDouble:
			if c == '"' {
				inDouble = false
			}
		case c == '\'':
			inSingle = true
		case c == '"':
			inDouble = true
		case c == '#' && (i == 0 || isBlank(text[i-1])):
			return false
		}
	}
	return false
}

func parseHeader(line string) (*Section, error) {
	if !strings.HasSuffix(line, metaClose) {
		return nil, fmt.Errorf("meta-section header %q is missing %q", line, metaClose)
	}
	inner := line[len(metaOpen) : len(line)-len(metaClose)]
	pos := strings.Index(inner, "|")
	if pos == -1 {
		return nil, fmt.Errorf("meta-section header %q must be [[phase|file]]", line)
	}
	phase := strings.TrimSpace(inner[:pos])
	file := strings.TrimSpace(inner[pos+1:])
	if phase == "" || file == "" {
		return nil, fmt.Errorf("meta-section header %q has an empty phase or file", line)
	}
	return &Section{Phase: phase, File: file, Lines: make([]string, 0), Statements: make([]Statement, 0)}, nil
}

// parseStatement parses one logical localrc line. It returns nil for a
// line holding only a comment.
func parseStatement(text string) (*Statement, error) {
	line := strings.TrimSpace(text)
	if strings.HasPrefix(line, exportPrefix) && len(line) > len(exportPrefix) && (line[len(exportPrefix)] == ' ' || line[len(exportPrefix)] == '\t') {
		line = strings.TrimSpace(line[len(exportPrefix):])
	}

	if m := assignmentRegexp.FindStringSubmatch(line); m != nil {
		rest := m[3]
		words, err := splitWords(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m[1], err)
		}
		if len(words) > 0 && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			return nil, fmt.Errorf("%s: unexpected whitespace after '='", m[1])
		}
		if len(words) > 1 {
			return nil, fmt.Errorf("%s: unexpected %q after value", m[1], words[1].String())
		}
		stmt := &Statement{Kind: AssignmentStatement, Text: text, Name: m[1], Append: m[2] == "+="}
		if len(words) == 1 {
			stmt.Value = words[0]
		}
		return stmt, nil
	}

	words, err := splitWords(line)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, nil
	}
	if !words[0].IsPlain() {
		return nil, fmt.Errorf("unsupported statement %q", line)
	}
	stmt := &Statement{Kind: DirectiveStatement, Text: text, Directive: words[0].String(), Args: words[1:]}
	if err := checkArity(stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}

func checkArity(stmt *Statement) error {
	n := len(stmt.Args)
	switch stmt.Directive {
	case EnableService, DisableService:
		if n == 0 {
			return fmt.Errorf("%s needs at least one service", stmt.Directive)
		}
	case EnablePlugin:
		if n < 2 || n > 3 {
			return fmt.Errorf("%s needs a name, a URL and an optional branch, got %d arguments", stmt.Directive, n)
		}
	case DisableAllService:
		if n != 0 {
			return fmt.Errorf("%s takes no arguments", stmt.Directive)
		}
	default:
		return fmt.Errorf("unsupported statement %q", stmt.Directive)
	}
	return nil
}
