package diag

import (
	"errors"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

func TestRenderFormat(t *testing.T) {
	d := NewError(SemaDuplicateSymbol, source.Span{Line: 3, Col: 7}, "Symbol 'x' is already defined").
		WithNote(source.Span{Line: 1, Col: 5}, "Previous definition is here")
	want := "Semantic error at line:3, col:7\nSymbol 'x' is already defined\n  Previous definition is here (line:1, col:5)"
	if got := d.Render(); got != want {
		t.Fatalf("Render:\n%s\nwant:\n%s", got, want)
	}
	w := New(SevWarning, SemaShadowSymbol, source.Span{Line: 2, Col: 1}, "Shadowing variable 'v'")
	if got := w.Render(); got != "Warning at line:2, col:1\nShadowing variable 'v'" {
		t.Fatalf("warning Render = %q", got)
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	ReportError(r, SemaUnresolvedSymbol, source.Span{Line: 5, Col: 1}, "b").Emit()
	ReportWarning(r, SemaShadowSymbol, source.Span{Line: 1, Col: 1}, "a").Emit()
	ReportError(r, SemaUnresolvedSymbol, source.Span{Line: 9, Col: 1}, "dropped").Emit()
	if bag.Len() != 2 {
		t.Fatalf("limit not applied, len=%d", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Message != "a" {
		t.Fatalf("unexpected order: %+v", bag.Items())
	}
	if bag.CountErrors() != 1 || !bag.HasWarnings() || bag.Dropped() != 1 {
		t.Fatalf("counts wrong")
	}
}

func TestDroppedErrorStillCounts(t *testing.T) {
	bag := NewBag(1)
	var seen []Code
	r := ReportFunc(func(d Diagnostic) {
		seen = append(seen, d.Code)
		bag.Add(d)
	})
	ReportWarning(r, SemaShadowSymbol, source.Span{Line: 1, Col: 1}, "a").Emit()
	ReportError(r, SemaUnresolvedSymbol, source.Span{Line: 2, Col: 1}, "b").Emit()
	if len(seen) != 2 || bag.Len() != 1 {
		t.Fatalf("seen = %v, len = %d", seen, bag.Len())
	}
	if !bag.HasErrors() || bag.CountErrors() != 0 {
		t.Fatalf("dropped error lost")
	}
}

func TestDedupAndPromote(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(PromoteReporter{Next: BagReporter{Bag: bag}})
	sp := source.Span{Line: 1, Col: 2}
	b := ReportWarning(r, SemaShadowSymbol, sp, "shadow")
	b.Emit()
	b.Emit()
	ReportWarning(r, SemaShadowSymbol, sp, "shadow").Emit()
	if bag.Len() != 1 {
		t.Fatalf("duplicates not suppressed: %d", bag.Len())
	}
	if !bag.HasErrors() {
		t.Fatalf("warning was not promoted")
	}
}

func TestInternalRecovery(t *testing.T) {
	run := func() (err error) {
		defer RecoverInternal(&err)
		Internal("symbol %d has no type", 4)
		return nil
	}
	err := run()
	if !IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Msg != "symbol 4 has no type" {
		t.Fatalf("unexpected payload %v", err)
	}
}
