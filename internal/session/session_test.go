package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/config"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/layout"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

const counterDoc = `
items:
  - class: Counter
    fields: [{name: n, type: int}]
    methods:
      - func: copy
        public: true
        body:
          - return: {new: {class: Counter, args: [{member: {recv: {ident: self}, name: n}}]}}
  - func: main
    body:
      - let: {name: c, value: {new: {class: Counter, args: [{int: "1"}]}}}
      - let: {name: d, value: {ident: c}}
      - let: {name: p, value: {tuple: [{int: "1"}, {float: "2.0"}]}}
`

const shadowDoc = `
items:
  - func: main
    body:
      - let: {name: x, value: {int: "1"}}
      - if:
          cond: {bool: "true"}
          then:
            - let: {name: x, value: {int: "2"}}
`

func newSession(t *testing.T, cfg config.Config, opts Options) *Session {
	t.Helper()
	s, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func analyze(t *testing.T, s *Session, doc string) *Result {
	t.Helper()
	fid, err := s.AddFixture("unit.yaml", []byte(doc))
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	res, err := s.Analyze(context.Background(), Unit{Name: "unit", Files: []ast.FileID{fid}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return res
}

func TestAnalyzeBuildsShapes(t *testing.T) {
	s := newSession(t, config.Default(), Options{})
	res := analyze(t, s, counterDoc)
	if !res.OK() {
		for _, d := range res.Diagnostics {
			t.Logf("%s", d.Render())
		}
		t.Fatalf("errors = %d", res.Errors)
	}

	var class, tuple *Shape
	for i := range res.Shapes {
		switch s.Types.Kind(res.Shapes[i].Type) {
		case types.KindClass:
			class = &res.Shapes[i]
		case types.KindTuple:
			tuple = &res.Shapes[i]
		}
	}
	if class == nil || tuple == nil {
		t.Fatalf("shapes = %+v", res.Shapes)
	}
	if class.Plan.Strategy != layout.CallCopier || !class.Plan.Copier.IsValid() {
		t.Fatalf("Counter plan = %+v", class.Plan)
	}
	if tuple.Plan.Strategy != layout.DeepFields || tuple.Layout.Size != 16 || tuple.Layout.Repr != layout.ReprAggregate {
		t.Fatalf("tuple shape = %+v", tuple)
	}

	var phases []string
	for _, p := range s.Timer.Report().Phases {
		phases = append(phases, p.Name)
	}
	if got := strings.Join(phases, ","); got != "forward,bodies,copiers,layout" {
		t.Fatalf("phases = %s", got)
	}
}

func TestWarningsAsErrorsSkipsLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Sema.WarningsAsErrors = true
	s := newSession(t, cfg, Options{})
	res := analyze(t, s, shadowDoc)
	if res.Errors != 1 || res.Warnings != 0 {
		t.Fatalf("errors = %d, warnings = %d", res.Errors, res.Warnings)
	}
	if res.Diagnostics[0].Code != diag.SemaShadowSymbol {
		t.Fatalf("code = %s", res.Diagnostics[0].Code.ID())
	}
	if len(res.Shapes) != 0 {
		t.Fatalf("shapes computed for a unit with errors")
	}
}

func TestShadowingStaysAWarning(t *testing.T) {
	s := newSession(t, config.Default(), Options{})
	res := analyze(t, s, shadowDoc)
	if !res.OK() || res.Warnings != 1 {
		t.Fatalf("errors = %d, warnings = %d", res.Errors, res.Warnings)
	}
}

func TestMalformedFixtureIsReported(t *testing.T) {
	s := newSession(t, config.Default(), Options{})
	_, err := s.AddFixture("bad.yaml", []byte("items:\n  - func: f\n    body: [{loop: 1}]\n"))
	if err == nil {
		t.Fatalf("malformed fixture accepted")
	}
	ds := s.Bag.Filter(diag.IOFixtureError)
	if len(ds) != 1 || ds[0].Primary.Line != 3 {
		t.Fatalf("diagnostics = %+v", s.Bag.Items())
	}
}

func TestAnalyzeOnlyOnce(t *testing.T) {
	s := newSession(t, config.Default(), Options{})
	analyze(t, s, shadowDoc)
	if _, err := s.Analyze(context.Background(), Unit{}); !errors.Is(err, ErrAnalyzed) {
		t.Fatalf("err = %v", err)
	}
}

func TestTraceCarriesSessionID(t *testing.T) {
	cfg := config.Default()
	cfg.Trace.Level = "phase"
	var buf bytes.Buffer
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	s, err := New(cfg, Options{TraceOutput: &buf, ID: id})
	if err != nil {
		t.Fatal(err)
	}
	analyze(t, s, counterDoc)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, id.String()) {
		t.Fatalf("trace lacks session id:\n%s", out)
	}
	for _, name := range []string{"forward", "bodies", "copiers", "layout"} {
		if !strings.Contains(out, name) {
			t.Fatalf("trace lacks %s phase:\n%s", name, out)
		}
	}
}

func TestPointerSizeSelectsTarget(t *testing.T) {
	cfg := config.Default()
	cfg.Target.PointerSize = 4
	s := newSession(t, cfg, Options{})
	if s.Layout.Target.PtrSize != 4 {
		t.Fatalf("target = %+v", s.Layout.Target)
	}
}

func TestInvalidTraceLevelIsRejected(t *testing.T) {
	cfg := config.Default()
	cfg.Trace.Level = "chatty"
	if _, err := New(cfg, Options{}); err == nil {
		t.Fatalf("bad trace level accepted")
	}
}
