package config

import (
	"fmt"
	"strings"
)

// lookupFunc returns the value of a variable and whether it is set
type lookupFunc func(name string) (string, bool)

// expander evaluates shell parameter references in words. It records the
// names it referenced and the ones it could not resolve.
type expander struct {
	lookup  lookupFunc
	assign  func(name, value string)
	refs    []string
	missing []missingRef
	err     error
}

type missingRef struct {
	name string
	msg  string
}

func newExpander(lookup lookupFunc) *expander {
	return &expander{lookup: lookup}
}

// Word expands the non-literal segments of w and joins the result
func (e *expander) Word(w Word) (string, error) {
	var b strings.Builder
	for _, seg := range w {
		if seg.Literal() {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(e.text(seg.Text))
		if e.err != nil {
			return "", e.err
		}
	}
	return b.String(), nil
}

// text expands every $NAME and ${...} reference in s. Operator arguments
// are expanded recursively, so ${A:-${B}} resolves B.
func (e *expander) text(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '$' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		if s[i+1] == '{' {
			k := matchBrace(s, i+1)
			if k == -1 {
				if e.err == nil {
					e.err = fmt.Errorf("unclosed ${ in %q", s)
				}
				return ""
			}
			b.WriteString(e.mapping(s[i+2 : k]))
			i = k + 1
			continue
		}
		j := i + 1
		for j < len(s) && isNameChar(s[j]) {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			i++
			continue
		}
		b.WriteString(e.mapping(s[i+1 : j]))
		i = j
	}
	return b.String()
}

func (e *expander) ref(name string) {
	for _, r := range e.refs {
		if r == name {
			return
		}
	}
	e.refs = append(e.refs, name)
}

// mapping implements $NAME, ${NAME} and the ${NAME<op>word} forms with
// op one of :- - := = :+ + :? ?
func (e *expander) mapping(expr string) string {
	name, op, arg, err := splitParameter(expr)
	if err != nil {
		if e.err == nil {
			e.err = err
		}
		return ""
	}
	e.ref(name)
	value, ok := e.lookup(name)

	colon := strings.HasPrefix(op, ":")
	unset := !ok || (colon && value == "")
	switch strings.TrimPrefix(op, ":") {
	case "":
		if !ok {
			e.missing = append(e.missing, missingRef{name: name})
		}
		return value
	case "-":
		if unset {
			return e.text(arg)
		}
	case "=":
		if unset {
			value = e.text(arg)
			if e.assign != nil {
				e.assign(name, value)
			}
		}
	case "+":
		if unset {
			return ""
		}
		return e.text(arg)
	case "?":
		if unset {
			e.missing = append(e.missing, missingRef{name: name, msg: arg})
			return ""
		}
	}
	return value
}

func splitParameter(expr string) (name, op, arg string, err error) {
	i := 0
	for i < len(expr) && isNameChar(expr[i]) {
		i++
	}
	if i == 0 {
		return "", "", "", fmt.Errorf("unsupported expansion ${%s}", expr)
	}
	name = expr[:i]
	rest := expr[i:]
	if rest == "" {
		return name, "", "", nil
	}
	for _, candidate := range []string{":-", ":=", ":+", ":?", "-", "=", "+", "?"} {
		if strings.HasPrefix(rest, candidate) {
			return name, candidate, rest[len(candidate):], nil
		}
	}
	return "", "", "", fmt.Errorf("unsupported expansion ${%s}", expr)
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
