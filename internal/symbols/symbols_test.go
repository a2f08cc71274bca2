package symbols

import (
	"errors"
	"strings"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

func newTestTable() *Table {
	return NewTable(Hints{}, source.NewInterner(), types.NewInterner())
}

func defineFunc(t *testing.T, tbl *Table, scope ScopeID, name string, params ...types.TypeID) (SymbolID, error) {
	t.Helper()
	return tbl.Define(scope, &Symbol{
		Name: tbl.Strings.Intern(name),
		Kind: SymbolFunc,
		Func: &FuncData{ParamTypes: params},
	})
}

func placeholder(tbl *Table, name string, owner, index uint32) types.TypeID {
	return tbl.Types.InternPlaceholder(tbl.Strings.Intern(name), owner, index)
}

func TestDefineRejectsDuplicateVariable(t *testing.T) {
	tbl := newTestTable()
	x := tbl.Strings.Intern("x")
	if _, err := tbl.Define(tbl.Global, &Symbol{Name: x, Kind: SymbolVar, Span: source.Span{Line: 1, Col: 1}}); err != nil {
		t.Fatalf("first define: %v", err)
	}
	_, err := tbl.Define(tbl.Global, &Symbol{Name: x, Kind: SymbolVar, Span: source.Span{Line: 2, Col: 1}})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	want := "Symbol 'x' is already defined.\nPrevious definition is at line:1, col:1"
	if dup.Error() != want {
		t.Fatalf("message = %q, want %q", dup.Error(), want)
	}
}

func TestDefineAllowsOverloadsWithDistinctParams(t *testing.T) {
	tbl := newTestTable()
	b := tbl.Types.Builtins()
	if _, err := defineFunc(t, tbl, tbl.Global, "f", b.Int); err != nil {
		t.Fatalf("f(int): %v", err)
	}
	if _, err := defineFunc(t, tbl, tbl.Global, "f", b.Float); err != nil {
		t.Fatalf("f(float): %v", err)
	}
	if _, err := defineFunc(t, tbl, tbl.Global, "f", b.Int, b.Int); err != nil {
		t.Fatalf("f(int, int): %v", err)
	}
	if _, err := defineFunc(t, tbl, tbl.Global, "f", b.Int); err == nil {
		t.Fatalf("second f(int) must be a duplicate")
	}
}

func TestDefineTreatsPlaceholdersAsSameParam(t *testing.T) {
	tbl := newTestTable()
	if _, err := defineFunc(t, tbl, tbl.Global, "g", placeholder(tbl, "a", 100, 0)); err != nil {
		t.Fatalf("g(a): %v", err)
	}
	if _, err := defineFunc(t, tbl, tbl.Global, "g", placeholder(tbl, "b", 101, 0)); err == nil {
		t.Fatalf("g(b) must clash with g(a)")
	}
}

func TestResolveVarIgnoresSiblingBlocks(t *testing.T) {
	tbl := newTestTable()
	x := tbl.Strings.Intern("x")
	fn := tbl.NewFunctionScope(tbl.Global, NoSymbolID, source.NoSpan)
	body := tbl.Scopes.Get(fn).Body
	thenBlock := tbl.NewScope(ScopeLocal, body, NoSymbolID, source.NoSpan)
	elseBlock := tbl.NewScope(ScopeLocal, body, NoSymbolID, source.NoSpan)

	inner, err := tbl.Define(thenBlock, &Symbol{Name: x, Kind: SymbolVar})
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if got, err := tbl.ResolveVar(thenBlock, x); err != nil || got != inner {
		t.Fatalf("then block lookup = %v, %v", got, err)
	}
	if _, err := tbl.ResolveVar(elseBlock, x); !errors.Is(err, ErrNotFound) {
		t.Fatalf("sibling block must not see x, got %v", err)
	}
	if _, err := tbl.ResolveVar(body, x); !errors.Is(err, ErrNotFound) {
		t.Fatalf("parent must not see child x, got %v", err)
	}
}

func TestResolveVarPrefersInnermost(t *testing.T) {
	tbl := newTestTable()
	x := tbl.Strings.Intern("x")
	fn := tbl.NewFunctionScope(tbl.Global, NoSymbolID, source.NoSpan)
	param, _ := tbl.Define(fn, &Symbol{Name: x, Kind: SymbolParam})
	body := tbl.Scopes.Get(fn).Body
	if got, _ := tbl.ResolveVar(body, x); got != param {
		t.Fatalf("expected param, got %v", got)
	}
	local, _ := tbl.Define(body, &Symbol{Name: x, Kind: SymbolVar})
	if got, _ := tbl.ResolveVar(body, x); got != local {
		t.Fatalf("expected local, got %v", got)
	}
	if prev, ok := tbl.Shadowed(body, x); !ok || prev != param {
		t.Fatalf("Shadowed = %v, %v", prev, ok)
	}
}

func TestShadowedIgnoresGlobals(t *testing.T) {
	tbl := newTestTable()
	x := tbl.Strings.Intern("x")
	_, _ = tbl.Define(tbl.Global, &Symbol{Name: x, Kind: SymbolVar})
	fn := tbl.NewFunctionScope(tbl.Global, NoSymbolID, source.NoSpan)
	if _, ok := tbl.Shadowed(tbl.Scopes.Get(fn).Body, x); ok {
		t.Fatalf("globals are not reported as shadowed")
	}
}

func TestResolveVarSkipsClassScope(t *testing.T) {
	tbl := newTestTable()
	field := tbl.Strings.Intern("value")
	cls := tbl.NewScope(ScopeClass, tbl.Global, NoSymbolID, source.NoSpan)
	_, _ = tbl.Define(cls, &Symbol{Name: field, Kind: SymbolField})
	method := tbl.NewFunctionScope(cls, NoSymbolID, source.NoSpan)
	if _, err := tbl.ResolveVar(tbl.Scopes.Get(method).Body, field); !errors.Is(err, ErrNotFound) {
		t.Fatalf("instance variables need a receiver, got %v", err)
	}
}

func TestResolveFuncPrefersExactOverTemplate(t *testing.T) {
	tbl := newTestTable()
	b := tbl.Types.Builtins()
	exact, _ := defineFunc(t, tbl, tbl.Global, "f", b.Int)
	generic, _ := defineFunc(t, tbl, tbl.Global, "f", placeholder(tbl, "x", 200, 0))
	f := tbl.Strings.Intern("f")

	if got, err := tbl.ResolveFunc(tbl.Global, f, []types.TypeID{b.Int}); err != nil || got != exact {
		t.Fatalf("f(int) = %v, %v", got, err)
	}
	if got, err := tbl.ResolveFunc(tbl.Global, f, []types.TypeID{b.Float}); err != nil || got != generic {
		t.Fatalf("f(float) = %v, %v", got, err)
	}
}

func TestResolveFuncStructuralBeatsBarePlaceholder(t *testing.T) {
	tbl := newTestTable()
	b := tbl.Types.Builtins()
	t0 := placeholder(tbl, "a", 300, 0)
	t1 := placeholder(tbl, "b", 301, 0)
	arr := tbl.Types.Intern(types.MakeArray(t0, types.DynamicLength))
	structural, _ := defineFunc(t, tbl, tbl.Global, "h", arr)
	_, _ = defineFunc(t, tbl, tbl.Global, "h", t1)

	ints := tbl.Types.Intern(types.MakeArray(b.Int, 3))
	got, err := tbl.ResolveFunc(tbl.Global, tbl.Strings.Intern("h"), []types.TypeID{ints})
	if err != nil || got != structural {
		t.Fatalf("h([int; 3]) = %v, %v", got, err)
	}
}

func TestResolveFuncAmbiguous(t *testing.T) {
	tbl := newTestTable()
	b := tbl.Types.Builtins()
	_, _ = defineFunc(t, tbl, tbl.Global, "k", b.Int, placeholder(tbl, "a", 400, 0))
	_, _ = defineFunc(t, tbl, tbl.Global, "k", placeholder(tbl, "b", 401, 0), b.Int)

	_, err := tbl.ResolveFunc(tbl.Global, tbl.Strings.Intern("k"), []types.TypeID{b.Int, b.Int})
	var amb *AmbiguousError
	if !errors.As(err, &amb) || len(amb.Candidates) != 2 {
		t.Fatalf("expected ambiguity, got %v", err)
	}
}

func TestResolveFuncNoMatchIsNotFound(t *testing.T) {
	tbl := newTestTable()
	b := tbl.Types.Builtins()
	_, _ = defineFunc(t, tbl, tbl.Global, "m", b.Int)
	_, err := tbl.ResolveFunc(tbl.Global, tbl.Strings.Intern("m"), []types.TypeID{b.Bool})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var nm *NoMatchError
	if !errors.As(err, &nm) || !strings.Contains(nm.Error(), "'m'") {
		t.Fatalf("expected NoMatchError, got %v", err)
	}
}

func TestResolveFuncBindsConsistently(t *testing.T) {
	tbl := newTestTable()
	b := tbl.Types.Builtins()
	ph := placeholder(tbl, "a", 500, 0)
	_, _ = defineFunc(t, tbl, tbl.Global, "same", ph, ph)
	name := tbl.Strings.Intern("same")
	if _, err := tbl.ResolveFunc(tbl.Global, name, []types.TypeID{b.Int, b.Int}); err != nil {
		t.Fatalf("same(int, int): %v", err)
	}
	if _, err := tbl.ResolveFunc(tbl.Global, name, []types.TypeID{b.Int, b.Float}); err == nil {
		t.Fatalf("same(int, float) must be rejected")
	}
}

func TestPreludeString(t *testing.T) {
	tbl := newTestTable()
	str := tbl.Sym(tbl.Builtins.String)
	if str == nil || str.Kind != SymbolClass || str.Type != tbl.Builtins.StringType {
		t.Fatalf("string class missing: %+v", str)
	}
	info, ok := tbl.Types.ClassInfo(tbl.Builtins.StringType)
	if !ok || len(info.Fields) != 2 {
		t.Fatalf("string fields = %+v", info)
	}
	copiers := tbl.ResolveMember(tbl.Builtins.String, tbl.Strings.Intern(CopierName))
	if len(copiers) != 1 || copiers[0] != tbl.Builtins.StringCopy {
		t.Fatalf("copy member = %v", copiers)
	}
	if id, err := tbl.ResolveClass(tbl.Global, tbl.Strings.Intern("int")); err != nil || id != tbl.Builtins.Int {
		t.Fatalf("int = %v, %v", id, err)
	}
	if _, err := tbl.ResolveClass(tbl.Global, tbl.Strings.Intern("println")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("println is not a type, got %v", err)
	}
}
