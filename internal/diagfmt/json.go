package diagfmt

import (
	"encoding/json"
	"io"

	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File string `json:"file,omitempty"`
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
	Len  uint32 `json:"len,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
}

func makeLocation(sp source.Span, fs *source.FileSet, mode PathMode) LocationJSON {
	return LocationJSON{File: displayPath(fs, sp, mode), Line: sp.Line, Col: sp.Col, Len: sp.Len}
}

// Build converts diagnostics to their JSON form. Count is the number of
// diagnostics before truncation by opts.Max.
func Build(diagnostics []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(diagnostics)), Count: len(diagnostics)}
	for _, d := range diagnostics {
		if d.Severity >= diag.SevError {
			out.Errors++
		}
		if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
			continue
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				nj := NoteJSON{Message: n.Msg}
				if !n.Span.IsZero() {
					loc := makeLocation(n.Span, fs, opts.PathMode)
					nj.Location = &loc
				}
				dj.Notes = append(dj.Notes, nj)
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes diagnostics as one JSON document.
func JSON(w io.Writer, diagnostics []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(Build(diagnostics, fs, opts))
}
