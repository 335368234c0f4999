// Package legacysql pulls literal tuples out of the VALUES block of legacy
// SQL dump files.
package legacysql

import (
	"fmt"
	"strings"
)

// Tuple is one parenthesized row of literals, in source order.
type Tuple []string

// FormatError reports input that has no VALUES block to extract from.
type FormatError struct {
	Source string
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Source == "" {
		return "legacy sql: " + e.Msg
	}
	return fmt.Sprintf("legacy sql %s: %s", e.Source, e.Msg)
}

const valuesMarker = "VALUES"

// Extract returns every tuple of exactly arity fields found after the first
// VALUES keyword of text. Quoted fields may contain commas, parentheses and
// doubled single quotes. Tuples with a different field count are skipped.
// A missing VALUES keyword is a *FormatError; a block without valid tuples
// yields an empty slice.
func Extract(text string, arity int) ([]Tuple, error) {
	return extract("", text, arity)
}

func extract(source, text string, arity int) ([]Tuple, error) {
	idx := indexKeyword(text, valuesMarker)
	if idx < 0 {
		return nil, &FormatError{Source: source, Msg: "no VALUES block found"}
	}
	s := &scanner{src: text, pos: idx + len(valuesMarker), arity: arity}
	s.run()
	return s.tuples, nil
}

type scanner struct {
	src   string
	pos   int
	arity int

	depth   int
	quoted  bool
	field   strings.Builder
	fields  []string
	tuples  []Tuple
	inQuote bool
}

func (s *scanner) run() {
	s.tuples = []Tuple{}
	for s.pos < len(s.src) {
		c := s.src[s.pos]

		if s.inQuote {
			if c == '\'' {
				if s.peek(1) == '\'' {
					s.field.WriteByte('\'')
					s.pos += 2
					continue
				}
				s.inQuote = false
			} else {
				s.field.WriteByte(c)
			}
			s.pos++
			continue
		}

		if s.skipComment() {
			continue
		}

		if s.depth == 0 {
			switch c {
			case '(':
				s.depth = 1
				s.fields = s.fields[:0]
				s.resetField()
			case ';':
				return
			}
			s.pos++
			continue
		}

		switch c {
		case '\'':
			s.inQuote = true
			s.quoted = true
		case '(':
			s.depth++
			s.field.WriteByte(c)
		case ')':
			if s.depth == 1 {
				s.endField()
				s.endTuple()
				s.depth = 0
			} else {
				s.depth--
				s.field.WriteByte(c)
			}
		case ',':
			if s.depth == 1 {
				s.endField()
			} else {
				s.field.WriteByte(c)
			}
		default:
			s.field.WriteByte(c)
		}
		s.pos++
	}
	// anything still open here is an unterminated tuple and is discarded
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

// skipComment advances past a -- or /* */ comment starting at pos.
func (s *scanner) skipComment() bool {
	switch {
	case s.src[s.pos] == '-' && s.peek(1) == '-':
		end := strings.IndexByte(s.src[s.pos:], '\n')
		if end < 0 {
			s.pos = len(s.src)
		} else {
			s.pos += end + 1
		}
		return true
	case s.src[s.pos] == '/' && s.peek(1) == '*':
		end := strings.Index(s.src[s.pos+2:], "*/")
		if end < 0 {
			s.pos = len(s.src)
		} else {
			s.pos += end + 4
		}
		return true
	}
	return false
}

func (s *scanner) resetField() {
	s.field.Reset()
	s.quoted = false
}

func (s *scanner) endField() {
	v := strings.TrimSpace(s.field.String())
	if !s.quoted && strings.EqualFold(v, "NULL") {
		v = ""
	}
	s.fields = append(s.fields, v)
	s.resetField()
}

func (s *scanner) endTuple() {
	if len(s.fields) != s.arity {
		return
	}
	t := make(Tuple, len(s.fields))
	copy(t, s.fields)
	s.tuples = append(s.tuples, t)
}

// indexKeyword finds kw case-insensitively as a standalone word.
func indexKeyword(text, kw string) int {
	n := len(kw)
	for i := 0; i+n <= len(text); i++ {
		if !strings.EqualFold(text[i:i+n], kw) {
			continue
		}
		if i > 0 && isIdentByte(text[i-1]) {
			continue
		}
		if i+n < len(text) && isIdentByte(text[i+n]) {
			continue
		}
		return i
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
