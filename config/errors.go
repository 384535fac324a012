package config

import "fmt"

// ParseError is returned when a line of local.conf is malformed
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// UnresolvedReferenceError is returned when a variable expansion cannot be satisfied
type UnresolvedReferenceError struct {
	File string
	Line int
	// Key is the variable being assigned, empty for directives and file names
	Key string
	// Name is the variable that could not be resolved
	Name string
	// Msg is the ${NAME:?msg} text, if any
	Msg string
	// Later is the line of a later assignment of Name, 0 if there is none
	Later int
}

func (e *UnresolvedReferenceError) Error() string {
	what := "expansion"
	if e.Key != "" {
		what = e.Key
	}
	s := fmt.Sprintf("%s:%d: %s references unresolved variable $%s", e.File, e.Line, what, e.Name)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Later > 0 {
		s += fmt.Sprintf(" (assigned later at line %d)", e.Later)
	}
	return s
}
