package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeDecl) {
		t.Fatalf("phase level must stop at pass scope")
	}
	if !LevelDetail.ShouldEmit(ScopeDecl) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail level must stop at decl scope")
	}
	if LevelOff.ShouldEmit(ScopeDriver) || LevelError.ShouldEmit(ScopeDriver) {
		t.Fatalf("off/error must not stream")
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(strings.ToUpper(name))
		if err != nil || l.String() != name {
			t.Fatalf("ParseLevel(%q) = %v, %v", name, l, err)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatalf("unknown level accepted")
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStream(&buf, LevelDetail, FormatText)
	root := Begin(tr, ScopePass, "bodies", 0)
	Begin(tr, ScopeDecl, "func main", root.ID()).WithExtra("errors", "0").End("")
	Point(tr, ScopeNode, "instantiate", "filtered", root.ID())
	root.End("done")

	out := buf.String()
	if strings.Count(out, "\n") != 4 {
		t.Fatalf("expected 4 events, got:\n%s", out)
	}
	if !strings.Contains(out, "{errors=0}") || !strings.Contains(out, "← bodies (done)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "instantiate") {
		t.Fatalf("node events must be filtered at detail level")
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStream(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeNode, "copier", "Pair(int,string)", 0)
	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["name"] != "copier" || decoded["scope"] != "node" || decoded["kind"] != "mark" {
		t.Fatalf("unexpected event %v", decoded)
	}
}

func TestRecorderWraps(t *testing.T) {
	rec := NewRecorder(3, LevelDebug, nil, FormatText)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(rec, ScopeNode, name, "", 0)
	}
	got := rec.Events()
	if len(got) != 3 || got[0].Name != "c" || got[2].Name != "e" || got[2].Seq != 5 {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestErrorLevelReplaysDeclarations(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	pass := Begin(tr, ScopePass, "bodies", 0)
	Begin(tr, ScopeDecl, "func main", pass.ID())
	Point(tr, ScopeNode, "copier", "dropped", pass.ID())
	if buf.Len() != 0 {
		t.Fatalf("error level streamed:\n%s", buf.String())
	}
	if err := Replay(tr); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "-- last 2 trace events --") || !strings.Contains(out, "func main") {
		t.Fatalf("replay:\n%s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Fatalf("node marks must not be recorded at error level")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatalf("missing tracer must yield Nop")
	}
	rec := NewRecorder(4, LevelPhase, nil, FormatText)
	ctx = WithTracer(ctx, rec)
	if FromContext(ctx) != Tracer(rec) {
		t.Fatalf("tracer not propagated")
	}
	span := Begin(rec, ScopeDriver, "session", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Fatalf("span not propagated")
	}
}

func TestNewHonoursMode(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if RecorderOf(tr) == nil {
		t.Fatalf("both mode must include a recorder, got %T", tr)
	}
	if !tr.Enabled(ScopeDecl) || tr.Enabled(ScopeNode) {
		t.Fatalf("both mode records declarations but not nodes at phase level")
	}
	if _, ok := tr.(*Stream); ok {
		t.Fatalf("both mode returned a bare stream")
	}
	if tr, _ := New(Config{Level: LevelOff}); tr.Enabled(ScopeDriver) {
		t.Fatalf("off level must produce a disabled tracer")
	}
}
