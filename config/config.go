package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devstack-tools/localconf/services"
	log "github.com/sirupsen/logrus"
)

const (
	enabledServicesKey  = "ENABLED_SERVICES"
	disabledServicesKey = "DISABLED_SERVICES"
)

// Assignment is a resolved NAME=value statement
type Assignment struct {
	Key string `json:"key"`
	// Raw is the value as written, quotes included
	Raw    string `json:"raw"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Append bool   `json:"append,omitempty"`
	// Refs are the variables the value referenced
	Refs []string `json:"refs,omitempty"`
}

// References reports whether the assignment's value referenced name
func (a Assignment) References(name string) bool {
	for _, r := range a.Refs {
		if r == name {
			return true
		}
	}
	return false
}

// Directive is a resolved service or plugin directive
type Directive struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
	Line int      `json:"line"`
}

// Config is the memory representation of a resolved local.conf
type Config struct {
	file string
	doc  *Document

	// mapping between variable name and its final value
	keyValues map[string]string
	keys      []string
	seed      map[string]string

	assignments []Assignment
	directives  []Directive
	state       *services.State
	unresolved  []*UnresolvedReferenceError
}

// Load reads, parses and resolves the local.conf at path
func Load(path string, opts ...Option) (*Config, error) {
	log.WithFields(log.Fields{"file": path}).Info("load configuration from file")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadReader(f, path, opts...)
}

// LoadReader parses and resolves local.conf content read from r
func LoadReader(r io.Reader, name string, opts ...Option) (*Config, error) {
	doc, err := Parse(r, name)
	if err != nil {
		return nil, err
	}
	return Resolve(doc, opts...)
}

// Resolve evaluates the localrc statements of doc in order
func Resolve(doc *Document, opts ...Option) (*Config, error) {
	o := &options{env: make(map[string]string), baseServices: services.DefaultEnabled}
	for _, opt := range opts {
		opt(o)
	}

	seed := make(map[string]string)
	if o.environ {
		for k, v := range environ() {
			seed[k] = v
		}
	}
	for _, file := range o.envFiles {
		env, err := ReadEnvFile(file)
		if err != nil {
			return nil, err
		}
		for k, v := range env {
			seed[k] = v
		}
	}
	for k, v := range o.env {
		seed[k] = v
	}

	c := &Config{
		file:        doc.Name,
		doc:         doc,
		keyValues:   make(map[string]string),
		keys:        make([]string, 0),
		seed:        seed,
		assignments: make([]Assignment, 0),
		directives:  make([]Directive, 0),
	}
	base := o.baseServices
	if v, ok := seed[enabledServicesKey]; ok {
		base = services.ParseList(v).Names()
	}
	c.state = services.NewState(base)
	if v, ok := seed[disabledServicesKey]; ok {
		c.state.SetDisabled(v)
	}

	stmts := doc.Localrc()
	for i, stmt := range stmts {
		var err error
		if stmt.Kind == AssignmentStatement {
			err = c.assign(stmt, stmts[i+1:], o.lenient)
		} else {
			err = c.apply(stmt, stmts[i+1:], o.lenient)
		}
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"file":      c.file,
		"variables": len(c.keys),
		"services":  c.state.Enabled.Len(),
		"plugins":   c.state.Plugins.Len(),
	}).Debug("resolved local.conf")
	return c, nil
}

func (c *Config) lookup(name string) (string, bool) {
	switch name {
	case enabledServicesKey:
		return c.state.Enabled.String(), true
	case disabledServicesKey:
		return c.state.Disabled.String(), true
	}
	if v, ok := c.keyValues[name]; ok {
		return v, true
	}
	v, ok := c.seed[name]
	return v, ok
}

func (c *Config) set(name string, value string) {
	if _, ok := c.keyValues[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.keyValues[name] = value
}

// expandWord expands w for the statement stmt, handling unresolved
// references per the lenient flag
func (c *Config) expandWord(w Word, stmt Statement, rest []Statement, lenient bool) (string, []string, error) {
	e := newExpander(c.lookup)
	e.assign = c.set
	value, err := e.Word(w)
	if err != nil {
		return "", nil, &ParseError{File: c.file, Line: stmt.Line, Msg: err.Error()}
	}
	for _, m := range e.missing {
		ure := &UnresolvedReferenceError{
			File:  c.file,
			Line:  stmt.Line,
			Key:   stmt.Name,
			Name:  m.name,
			Msg:   m.msg,
			Later: laterAssignment(m.name, rest),
		}
		if !lenient {
			return "", nil, ure
		}
		log.WithFields(log.Fields{"file": c.file, "line": stmt.Line, "name": m.name}).Warn("unresolved reference")
		c.unresolved = append(c.unresolved, ure)
	}
	return value, e.refs, nil
}

func laterAssignment(name string, rest []Statement) int {
	for _, s := range rest {
		if s.Kind == AssignmentStatement && s.Name == name {
			return s.Line
		}
	}
	return 0
}

func (c *Config) assign(stmt Statement, rest []Statement, lenient bool) error {
	value, refs, err := c.expandWord(stmt.Value, stmt, rest, lenient)
	if err != nil {
		return err
	}
	if stmt.Append {
		prev, _ := c.lookup(stmt.Name)
		value = prev + value
	}

	switch stmt.Name {
	case enabledServicesKey:
		c.state.SetEnabled(stmt.Line, value)
		value = c.state.Enabled.String()
	case disabledServicesKey:
		c.state.SetDisabled(value)
		value = c.state.Disabled.String()
	}
	c.set(stmt.Name, value)

	c.assignments = append(c.assignments, Assignment{
		Key:    stmt.Name,
		Raw:    rawValue(stmt.Text),
		Value:  value,
		Line:   stmt.Line,
		Append: stmt.Append,
		Refs:   refs,
	})
	log.WithFields(log.Fields{"file": c.file, "line": stmt.Line, "key": stmt.Name}).Debug("assign variable")
	return nil
}

func rawValue(text string) string {
	pos := strings.Index(text, "=")
	if pos == -1 {
		return ""
	}
	return strings.TrimSpace(text[pos+1:])
}

func (c *Config) apply(stmt Statement, rest []Statement, lenient bool) error {
	args := make([]string, 0, len(stmt.Args))
	for _, w := range stmt.Args {
		v, _, err := c.expandWord(w, stmt, rest, lenient)
		if err != nil {
			return err
		}
		args = append(args, v)
	}

	switch stmt.Directive {
	case EnableService:
		c.state.EnableService(stmt.Line, args...)
	case DisableService:
		c.state.DisableService(stmt.Line, args...)
	case DisableAllService:
		c.state.DisableAll(stmt.Line)
	case EnablePlugin:
		plugin := services.Plugin{Name: args[0], URL: args[1], Line: stmt.Line}
		if len(args) > 2 {
			plugin.Branch = args[2]
		}
		c.state.EnablePlugin(plugin)
	default:
		return &ParseError{File: c.file, Line: stmt.Line, Msg: fmt.Sprintf("unsupported statement %q", stmt.Directive)}
	}
	if stmt.Directive != EnablePlugin {
		c.set(enabledServicesKey, c.state.Enabled.String())
		c.set(disabledServicesKey, c.state.Disabled.String())
	}

	c.directives = append(c.directives, Directive{Name: stmt.Directive, Args: args, Line: stmt.Line})
	log.WithFields(log.Fields{"file": c.file, "line": stmt.Line, "directive": stmt.Directive, "args": args}).Debug("apply directive")
	return nil
}

// Expand expands s against the resolved variables, the seed environment and
// DefaultPaths, in that order. It is meant for meta-section file names.
func (c *Config) Expand(s string) (string, error) {
	words, err := splitWords(s)
	if err != nil {
		return "", &ParseError{File: c.file, Msg: err.Error()}
	}
	if len(words) != 1 {
		return "", &ParseError{File: c.file, Msg: fmt.Sprintf("%q is not a single word", s)}
	}
	e := newExpander(func(name string) (string, bool) {
		if v, ok := c.lookup(name); ok {
			return v, true
		}
		v, ok := DefaultPaths[name]
		return v, ok
	})
	value, err := e.Word(words[0])
	if err != nil {
		return "", &ParseError{File: c.file, Msg: err.Error()}
	}
	if len(e.missing) > 0 {
		return "", &UnresolvedReferenceError{File: c.file, Name: e.missing[0].name, Msg: e.missing[0].msg}
	}
	return value, nil
}

// File returns the name the configuration was loaded from
func (c *Config) File() string {
	return c.file
}

// Dir returns the directory of the configuration file
func (c *Config) Dir() string {
	return filepath.Dir(c.file)
}

// Document returns the parsed document
func (c *Config) Document() *Document {
	return c.doc
}

// Get returns the final value of key
func (c *Config) Get(key string) (string, bool) {
	v, ok := c.keyValues[key]
	return v, ok
}

// Lookup returns the value of key from the file or, failing that, from the
// seed environment the configuration was loaded with
func (c *Config) Lookup(key string) (string, bool) {
	return c.lookup(key)
}

// Keys returns the variable names in the order they were first assigned
func (c *Config) Keys() []string {
	return append([]string(nil), c.keys...)
}

// SortedKeys returns the variable names sorted
func (c *Config) SortedKeys() []string {
	keys := c.Keys()
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the resolved variables
func (c *Config) Map() map[string]string {
	result := make(map[string]string, len(c.keyValues))
	for k, v := range c.keyValues {
		result[k] = v
	}
	return result
}

// Assignments returns every assignment in processing order
func (c *Config) Assignments() []Assignment {
	return append([]Assignment(nil), c.assignments...)
}

// AssignmentsOf returns the assignments of key in processing order
func (c *Config) AssignmentsOf(key string) []Assignment {
	result := make([]Assignment, 0)
	for _, a := range c.assignments {
		if a.Key == key {
			result = append(result, a)
		}
	}
	return result
}

// Directives returns every directive in processing order
func (c *Config) Directives() []Directive {
	return append([]Directive(nil), c.directives...)
}

// Services returns the enabled services
func (c *Config) Services() *services.List {
	return c.state.Enabled
}

// Disabled returns the services explicitly disabled
func (c *Config) Disabled() *services.List {
	return c.state.Disabled
}

// Plugins returns the enabled plugins
func (c *Config) Plugins() []services.Plugin {
	return c.state.Plugins.All()
}

// ServiceState returns the directive state, including its event trace
func (c *Config) ServiceState() *services.State {
	return c.state
}

// Sections returns every meta-section
func (c *Config) Sections() []*Section {
	return c.doc.Sections
}

// Section returns the first section matching phase and file
func (c *Config) Section(phase string, file string) (*Section, bool) {
	found := c.doc.Find(phase, file)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// Unresolved returns the references a lenient load could not resolve
func (c *Config) Unresolved() []*UnresolvedReferenceError {
	return append([]*UnresolvedReferenceError(nil), c.unresolved...)
}

// String dumps the resolved variables as KEY=value lines
func (c *Config) String() string {
	buf := bytes.NewBuffer(make([]byte, 0))
	for _, k := range c.keys {
		fmt.Fprintf(buf, "%s=%s\n", k, c.keyValues[k])
	}
	return buf.String()
}

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsUnresolved reports whether err is or wraps an *UnresolvedReferenceError
func IsUnresolved(err error) bool {
	var ure *UnresolvedReferenceError
	return errors.As(err, &ure)
}
