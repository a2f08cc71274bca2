package source

import (
	"fmt"
)

// Span is a source position as handed over by the parser: 1-based line and
// column of the first character plus the length in characters.
type Span struct {
	File FileID
	Line uint32
	Col  uint32
	Len  uint32
}

// NoSpan marks synthesized nodes (builtins, generated receivers).
var NoSpan = Span{}

func (s Span) IsZero() bool {
	return s.Line == 0 && s.Col == 0
}

func (s Span) String() string {
	return fmt.Sprintf("line:%d, col:%d", s.Line, s.Col)
}

// Less orders spans by file, line and column.
func (s Span) Less(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Line != other.Line {
		return s.Line < other.Line
	}
	return s.Col < other.Col
}

// Cover расширяет span до конца other, если оба на одной строке.
func (s Span) Cover(other Span) Span {
	if s.File != other.File || s.Line != other.Line {
		return s
	}
	if other.Col < s.Col {
		s, other = other, s
	}
	end := other.Col + other.Len
	if end > s.Col+s.Len {
		s.Len = end - s.Col
	}
	return s
}
