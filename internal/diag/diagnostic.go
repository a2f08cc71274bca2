package diag

import (
	"fmt"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// Render returns the canonical text form:
// "<Heading> at line:L, col:C\n<message>" followed by one line per note.
func (d Diagnostic) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at line:%d, col:%d\n%s", d.Severity.Heading(), d.Primary.Line, d.Primary.Col, d.Message)
	for _, n := range d.Notes {
		sb.WriteString("\n  ")
		sb.WriteString(n.Msg)
		if !n.Span.IsZero() {
			fmt.Fprintf(&sb, " (line:%d, col:%d)", n.Span.Line, n.Span.Col)
		}
	}
	return sb.String()
}

func (d Diagnostic) String() string {
	return d.Render()
}
