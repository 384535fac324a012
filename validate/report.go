package validate

import (
	"fmt"
	"sort"

	"github.com/devstack-tools/localconf/config"
)

// Severity of a finding
type Severity int

const (
	// Warning findings do not fail a check
	Warning Severity = iota
	// Error findings fail a check
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// MarshalText encodes the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding is one problem reported by a rule
type Finding struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Key      string   `json:"key,omitempty"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// Report collects the findings of a check
type Report struct {
	File     string    `json:"file"`
	Findings []Finding `json:"findings"`
}

func newReport(file string) *Report {
	return &Report{File: file, Findings: make([]Finding, 0)}
}

// Errorf adds an error finding
func (r *Report) Errorf(rule string, key string, line int, format string, args ...interface{}) {
	r.add(Error, rule, key, line, format, args...)
}

// Warnf adds a warning finding
func (r *Report) Warnf(rule string, key string, line int, format string, args ...interface{}) {
	r.add(Warning, rule, key, line, format, args...)
}

func (r *Report) add(sev Severity, rule string, key string, line int, format string, args ...interface{}) {
	r.Findings = append(r.Findings, Finding{
		Severity: sev,
		Rule:     rule,
		Key:      key,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		return r.Findings[i].Line < r.Findings[j].Line
	})
}

// Count returns the number of findings of a severity
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// ByRule returns the findings reported by rule
func (r *Report) ByRule(rule string) []Finding {
	result := make([]Finding, 0)
	for _, f := range r.Findings {
		if f.Rule == rule {
			result = append(result, f)
		}
	}
	return result
}

// Format renders a finding as file:line: severity [rule] key: message
func (r *Report) Format(f Finding) string {
	loc := r.File
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", r.File, f.Line)
	}
	if f.Key != "" {
		return fmt.Sprintf("%s: %s [%s] %s: %s", loc, f.Severity, f.Rule, f.Key, f.Message)
	}
	return fmt.Sprintf("%s: %s [%s] %s", loc, f.Severity, f.Rule, f.Message)
}

// Err returns the error findings as one error, or nil
func (r *Report) Err() error {
	var errs config.ErrList
	for _, f := range r.Findings {
		if f.Severity == Error {
			errs.Add(fmt.Errorf("%s", r.Format(f)))
		}
	}
	return errs.Err()
}
