package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
)

func fileSet(t *testing.T, text string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.Add("dir/unit.yaml", []byte(text))
}

func TestPrettyPlain(t *testing.T) {
	fs, f := fileSet(t, "first\n  let x = y\n")
	d := diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: f, Line: 2, Col: 11, Len: 1}, "Symbol 'y' is not found").
		WithNote(source.Span{File: f, Line: 1, Col: 1}, "declared here")

	var buf bytes.Buffer
	if err := Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{Context: true, ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	want := "dir/unit.yaml: Semantic error at line:2, col:11 [SEM3005]\n" +
		"Symbol 'y' is not found\n" +
		" 2 |   let x = y\n" +
		"   |           ^\n" +
		"  note: declared here (line:1, col:1)\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyCaretCountsWideCharacters(t *testing.T) {
	fs, f := fileSet(t, "let 名前 = zz\n")
	d := diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: f, Line: 1, Col: 10, Len: 2}, "Symbol 'zz' is not found")

	var buf bytes.Buffer
	if err := Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{Context: true, PathMode: PathModeNone}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	// "let " is 4 cells, the two ideographs 4 more, then " = " 3.
	if caret := lines[3]; caret != "   | "+strings.Repeat(" ", 11)+"^~" {
		t.Fatalf("caret line = %q", caret)
	}
}

func TestPrettyColor(t *testing.T) {
	d := diag.New(diag.SevWarning, diag.SemaShadowSymbol, source.Span{Line: 1, Col: 1}, "Shadowing variable 'x'")
	var buf bytes.Buffer
	if err := Pretty(&buf, []diag.Diagnostic{d}, nil, PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") || !strings.Contains(buf.String(), "Warning at line:1, col:1") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	fs, f := fileSet(t, "x\n")
	ds := []diag.Diagnostic{
		diag.NewError(diag.SemaNoOverload, source.Span{File: f, Line: 1, Col: 1, Len: 1}, "No matching function for call to 'f(bool)'").
			WithNote(source.Span{File: f, Line: 1, Col: 1}, "Candidate: f(int)"),
		diag.New(diag.SevWarning, diag.SemaShadowSymbol, source.Span{File: f, Line: 1, Col: 1}, "Shadowing variable 'x'"),
	}
	var buf bytes.Buffer
	if err := JSON(&buf, ds, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || out.Errors != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("out = %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Code != "SEM3046" || d.Severity != "ERROR" || d.Location.File != "unit.yaml" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location == nil || d.Notes[0].Message != "Candidate: f(int)" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}
