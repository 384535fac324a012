package config

import (
	"strings"
)

// ErrList collects several errors into one
type ErrList struct {
	errs []error
}

// Add appends err, ignoring nil
func (e *ErrList) Add(err error) {
	if err == nil {
		return
	}
	e.errs = append(e.errs, err)
}

func (e *ErrList) Error() string {
	if len(e.errs) == 0 {
		return ""
	}

	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}

	var b strings.Builder
	for i, err := range e.errs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Err returns nil if no error was added
func (e *ErrList) Err() error {
	if len(e.errs) == 0 {
		return nil
	}
	return e
}

// Errors returns the collected errors
func (e *ErrList) Errors() []error {
	return e.errs
}

// Unwrap lets errors.As and errors.Is look at every collected error
func (e *ErrList) Unwrap() []error {
	return e.errs
}
