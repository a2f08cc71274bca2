package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
)

type palette struct {
	err, warn, info, note, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue),
		gutter: color.New(color.FgHiBlack),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevWarning:
		return p.warn
	case diag.SevInfo:
		return p.info
	}
	return p.err
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по diagnostics в переданном порядке (ожидается bag.Sort() заранее).
// Для каждой печатает:
//
//	<path>: <Heading> at line:L, col:C [CODE]
//	<message>
//
// затем строку исходника с подчёркиванием ^~~~ по Span и заметки.
func Pretty(w io.Writer, diagnostics []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for i, d := range diagnostics {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		var sb strings.Builder
		if path := displayPath(fs, d.Primary, opts.PathMode); path != "" {
			sb.WriteString(path)
			sb.WriteString(": ")
		}
		heading := fmt.Sprintf("%s at line:%d, col:%d", d.Severity.Heading(), d.Primary.Line, d.Primary.Col)
		sb.WriteString(p.severity(d.Severity).Sprint(heading))
		fmt.Fprintf(&sb, " [%s]\n%s\n", d.Code.ID(), d.Message)
		if opts.Context {
			writeContext(&sb, fs, d.Primary, p)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				sb.WriteString("  ")
				sb.WriteString(p.note.Sprint("note:"))
				sb.WriteString(" ")
				sb.WriteString(n.Msg)
				if !n.Span.IsZero() {
					fmt.Fprintf(&sb, " (line:%d, col:%d)", n.Span.Line, n.Span.Col)
				}
				sb.WriteString("\n")
			}
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// writeContext prints the line of sp and a caret under it. Columns count
// characters, so the padding is measured in display cells.
func writeContext(sb *strings.Builder, fs *source.FileSet, sp source.Span, p palette) {
	if fs == nil || sp.IsZero() {
		return
	}
	line, ok := fs.Get(sp.File).Line(sp.Line)
	if !ok {
		return
	}
	line = strings.ReplaceAll(line, "\t", "    ")
	runes := []rune(line)
	col := int(sp.Col) - 1
	if col < 0 || col > len(runes) {
		return
	}
	end := col + max(int(sp.Len), 1)
	if end > len(runes) {
		end = max(len(runes), col+1)
	}
	pad := runewidth.StringWidth(string(runes[:col]))
	width := 1
	if col < len(runes) {
		width = max(runewidth.StringWidth(string(runes[col:min(end, len(runes))])), 1)
	}

	num := fmt.Sprintf("%d", sp.Line)
	gutter := strings.Repeat(" ", len(num))
	fmt.Fprintf(sb, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), line)
	caret := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(sb, " %s %s %s%s\n", gutter, p.gutter.Sprint("|"), strings.Repeat(" ", pad), p.caret.Sprint(caret))
}

func displayPath(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if fs == nil || mode == PathModeNone || sp == source.NoSpan {
		return ""
	}
	f := fs.Get(sp.File)
	if f == nil {
		return ""
	}
	if mode == PathModeBasename {
		return filepath.Base(f.Path)
	}
	return f.Path
}
