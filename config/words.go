package config

import (
	"fmt"
	"strings"
)

// Quote is the quoting context a piece of a shell word was written in
type Quote int

const (
	// Unquoted text is subject to expansion
	Unquoted Quote = iota
	// SingleQuoted text is literal
	SingleQuoted
	// DoubleQuoted text is subject to expansion
	DoubleQuoted
	// Escaped text came from a backslash escape and is literal
	Escaped
)

// Segment is a run of a word written in one quoting context
type Segment struct {
	Text  string
	Quote Quote
}

// Literal reports whether the segment is taken verbatim
func (s Segment) Literal() bool {
	return s.Quote == SingleQuoted || s.Quote == Escaped
}

// Word is one shell word made of adjacent segments
type Word []Segment

// String returns the word with quotes removed and nothing expanded
func (w Word) String() string {
	var b strings.Builder
	for _, s := range w {
		b.WriteString(s.Text)
	}
	return b.String()
}

// IsPlain reports whether the word is a bare unquoted token with no expansion
func (w Word) IsPlain() bool {
	for _, s := range w {
		if s.Quote != Unquoted || strings.ContainsAny(s.Text, "$") {
			return false
		}
	}
	return true
}

func (w Word) add(text string, q Quote) Word {
	if text == "" {
		return w
	}
	if n := len(w); n > 0 && w[n-1].Quote == q {
		w[n-1].Text += text
		return w
	}
	return append(w, Segment{Text: text, Quote: q})
}

func findChar(s string, offset int, ch byte) int {
	for i := offset; i < len(s); i++ {
		if s[i] == ch {
			return i
		}
	}
	return -1
}

// isBlank reports whether c separates words. Only ASCII blanks do, so
// bytes of multi-byte UTF-8 characters are never split.
func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func skipSpace(s string, offset int) int {
	for i := offset; i < len(s); i++ {
		if !isBlank(s[i]) {
			return i
		}
	}
	return -1
}

// splitWords splits a line into shell words. Quotes are removed but their
// context is kept on each segment so expansion can honour it. An unquoted
// word starting with '#' ends the line.
func splitWords(line string) ([]Word, error) {
	words := make([]Word, 0)
	n := len(line)
	for i := 0; i < n; {
		j := skipSpace(line, i)
		if j == -1 || line[j] == '#' {
			break
		}
		word, next, err := scanWord(line, j)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
		i = next
	}
	return words, nil
}

// scanWord reads one word starting at offset and returns it with the
// offset just past it.
func scanWord(line string, offset int) (Word, int, error) {
	word := make(Word, 0)
	n := len(line)
	i := offset
	for i < n {
		c := line[i]
		switch {
		case isBlank(c):
			return word, i, nil
		case c == '\\':
			if i+1 >= n {
				return nil, 0, fmt.Errorf("trailing backslash")
			}
			word = word.add(line[i+1:i+2], Escaped)
			i += 2
		case c == '\'':
			k := findChar(line, i+1, '\'')
			if k == -1 {
				return nil, 0, fmt.Errorf("unterminated single quote")
			}
			word = word.add(line[i+1:k], SingleQuoted)
			if k == i+1 && len(word) == 0 {
				word = append(word, Segment{Quote: SingleQuoted})
			}
			i = k + 1
		case c == '"':
			var err error
			word, i, err = scanDoubleQuoted(line, i+1, word)
			if err != nil {
				return nil, 0, err
			}
		case c == '`':
			return nil, 0, fmt.Errorf("command substitution is not supported")
		case c == '$':
			end, err := scanDollar(line, i)
			if err != nil {
				return nil, 0, err
			}
			word = word.add(line[i:end], Unquoted)
			i = end
		case c == ';' || c == '|' || c == '&' || c == '<' || c == '>' || c == '(' || c == ')':
			return nil, 0, fmt.Errorf("unexpected %q", c)
		default:
			word = word.add(line[i:i+1], Unquoted)
			i++
		}
	}
	return word, i, nil
}

func scanDoubleQuoted(line string, offset int, word Word) (Word, int, error) {
	n := len(line)
	start := len(word)
	i := offset
	for i < n {
		c := line[i]
		switch c {
		case '"':
			if len(word) == start {
				word = append(word, Segment{Quote: DoubleQuoted})
			}
			return word, i + 1, nil
		case '\\':
			if i+1 < n && strings.IndexByte("$`\"\\", line[i+1]) >= 0 {
				word = word.add(line[i+1:i+2], Escaped)
				i += 2
				continue
			}
			word = word.add("\\", DoubleQuoted)
			i++
		case '`':
			return nil, 0, fmt.Errorf("command substitution is not supported")
		case '$':
			end, err := scanDollar(line, i)
			if err != nil {
				return nil, 0, err
			}
			word = word.add(line[i:end], DoubleQuoted)
			i = end
		default:
			word = word.add(line[i:i+1], DoubleQuoted)
			i++
		}
	}
	return nil, 0, fmt.Errorf("unterminated double quote")
}

// scanDollar returns the end of the parameter reference starting at the
// '$' at offset.
func scanDollar(line string, offset int) (int, error) {
	if offset+1 >= len(line) {
		return offset + 1, nil
	}
	switch line[offset+1] {
	case '{':
		k := matchBrace(line, offset+1)
		if k == -1 {
			return 0, fmt.Errorf("unclosed ${")
		}
		if k == offset+2 {
			return 0, fmt.Errorf("empty ${}")
		}
		return k + 1, nil
	case '(':
		return 0, fmt.Errorf("command substitution is not supported")
	}
	return offset + 1, nil
}

// matchBrace returns the index of the '}' closing the '{' at offset,
// counting nested ${...} references, or -1.
func matchBrace(s string, offset int) int {
	depth := 0
	for i := offset; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
