package copysem

import (
	"context"
	"errors"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

type env struct {
	tbl  *symbols.Table
	inst *mono.Instantiator
	res  *Resolver
}

func newEnv() *env {
	tbl := symbols.NewTable(symbols.Hints{}, source.NewInterner(), types.NewInterner())
	inst := mono.New(tbl, ast.NewBuilder(ast.Hints{}), 0)
	return &env{tbl: tbl, inst: inst, res: New(tbl, inst)}
}

// class declares a non-generic class with the given fields.
func (e *env) class(name string, fields map[string]types.TypeID, order ...string) (symbols.SymbolID, types.TypeID) {
	n := e.tbl.Strings.Intern(name)
	cls, _ := e.tbl.Define(e.tbl.Global, &symbols.Symbol{Name: n, Kind: symbols.SymbolClass})
	scope := e.tbl.NewScope(symbols.ScopeClass, e.tbl.Global, cls, source.NoSpan)
	ty, _ := e.tbl.Types.InternClass(n, uint32(cls), nil)
	var fs []types.Field
	for _, f := range order {
		fs = append(fs, types.Field{Name: e.tbl.Strings.Intern(f), Type: fields[f]})
	}
	e.tbl.Types.SetClassFields(ty, fs)
	e.tbl.Sym(cls).Type = ty
	e.tbl.Sym(cls).Class = &symbols.ClassData{Scope: scope, Type: ty}
	return cls, ty
}

func (e *env) copier(cls symbols.SymbolID, self types.TypeID, flags symbols.SymbolFlags) symbols.SymbolID {
	scope := e.tbl.Sym(cls).Class.Scope
	id, err := e.tbl.Define(scope, &symbols.Symbol{
		Name:  e.tbl.Strings.Intern(symbols.CopierName),
		Kind:  symbols.SymbolFunc,
		Flags: flags | symbols.FlagMember,
		Func:  &symbols.FuncData{ParamTypes: []types.TypeID{self}, Result: self, Class: cls},
	})
	if err != nil {
		panic(err)
	}
	return id
}

func TestScalarsHaveNoCopier(t *testing.T) {
	e := newEnv()
	b := e.tbl.Types.Builtins()
	for _, ty := range []types.TypeID{b.Unit, b.Bool, b.Char, b.Int, b.Uint, b.Float} {
		if _, ok, err := e.res.CopierOf(context.Background(), ty, symbols.NoScopeID); ok || err != nil {
			t.Fatalf("%s: ok=%v err=%v", types.Label(e.tbl.Types, e.tbl.Strings, ty), ok, err)
		}
	}
	if len(e.res.Table()) != 0 {
		t.Fatalf("scalars must not be recorded")
	}
}

func TestPairOfIntAndStringFindsStringCopier(t *testing.T) {
	e := newEnv()
	b := e.tbl.Types.Builtins()
	_, pair := e.class("Pair", map[string]types.TypeID{"a": b.Int, "b": e.tbl.Builtins.StringType}, "a", "b")

	copier, ok, err := e.res.CopierOf(context.Background(), pair, symbols.NoScopeID)
	if err != nil || ok || copier.IsValid() {
		t.Fatalf("Pair has no copier itself: %v %v %v", copier, ok, err)
	}
	got, ok := e.res.Lookup(e.tbl.Builtins.StringType)
	if !ok || got != e.tbl.Builtins.StringCopy {
		t.Fatalf("string copier = %v, %v", got, ok)
	}
	rows := e.res.Table()
	if len(rows) != 1 || rows[0].Type != e.tbl.Builtins.StringType {
		t.Fatalf("table = %+v", rows)
	}
}

func TestCopierFoundThenFieldsResolved(t *testing.T) {
	e := newEnv()
	b := e.tbl.Types.Builtins()
	tuple := e.tbl.Types.InternTuple([]types.TypeID{b.Int, e.tbl.Builtins.StringType})
	cls, ty := e.class("Named", map[string]types.TypeID{"tag": tuple}, "tag")
	want := e.copier(cls, ty, symbols.FlagPublic)

	got, ok, err := e.res.CopierOf(context.Background(), ty, symbols.NoScopeID)
	if err != nil || !ok || got != want {
		t.Fatalf("Named copier = %v %v %v", got, ok, err)
	}
	if _, ok := e.res.Lookup(e.tbl.Builtins.StringType); !ok {
		t.Fatalf("instance variables must be resolved after the class copier")
	}
	// Memoized: a second query does not grow the table.
	before := len(e.res.Table())
	_, _, _ = e.res.CopierOf(context.Background(), ty, symbols.NoScopeID)
	if len(e.res.Table()) != before {
		t.Fatalf("table grew on repeated query")
	}
}

func TestAmbiguousCopier(t *testing.T) {
	e := newEnv()
	cls, ty := e.class("Twice", nil)
	e.copier(cls, ty, symbols.FlagPublic)
	ph := e.tbl.Types.InternPlaceholder(e.tbl.Strings.Intern("self"), 7777, 0)
	e.copier(cls, ph, symbols.FlagPublic|symbols.FlagTemplate)

	_, _, err := e.res.CopierOf(context.Background(), ty, symbols.NoScopeID)
	var amb *AmbiguousCopierError
	if !errors.As(err, &amb) || len(amb.Candidates) != 2 {
		t.Fatalf("expected ambiguity, got %v", err)
	}
}

func TestPrivateCopier(t *testing.T) {
	e := newEnv()
	cls, ty := e.class("Secret", nil)
	want := e.copier(cls, ty, 0)

	_, _, err := e.res.CopierOf(context.Background(), ty, e.tbl.Global)
	var priv *PrivateCopierError
	if !errors.As(err, &priv) || priv.Copier != want {
		t.Fatalf("expected private copier error, got %v", err)
	}

	inside := e.tbl.NewFunctionScope(e.tbl.Sym(cls).Class.Scope, symbols.NoSymbolID, source.NoSpan)
	fresh := New(e.tbl, e.inst)
	got, ok, err := fresh.CopierOf(context.Background(), ty, inside)
	if err != nil || !ok || got != want {
		t.Fatalf("copy inside class = %v %v %v", got, ok, err)
	}
}

func TestCyclicClassGraphTerminates(t *testing.T) {
	e := newEnv()
	n := e.tbl.Strings.Intern("Node")
	cls, _ := e.tbl.Define(e.tbl.Global, &symbols.Symbol{Name: n, Kind: symbols.SymbolClass})
	ty, _ := e.tbl.Types.InternClass(n, uint32(cls), nil)
	next := e.tbl.Types.Intern(types.MakePointer(ty))
	kids := e.tbl.Types.Intern(types.MakeArray(ty, types.DynamicLength))
	e.tbl.Types.SetClassFields(ty, []types.Field{
		{Name: e.tbl.Strings.Intern("next"), Type: next},
		{Name: e.tbl.Strings.Intern("kids"), Type: kids},
	})
	scope := e.tbl.NewScope(symbols.ScopeClass, e.tbl.Global, cls, source.NoSpan)
	e.tbl.Sym(cls).Class = &symbols.ClassData{Scope: scope, Type: ty}
	want := e.copier(cls, ty, symbols.FlagPublic)

	got, ok, err := e.res.CopierOf(context.Background(), ty, symbols.NoScopeID)
	if err != nil || !ok || got != want {
		t.Fatalf("Node copier = %v %v %v", got, ok, err)
	}
}

func TestTemplateCopierIsInstantiated(t *testing.T) {
	e := newEnv()
	b := e.tbl.Types.Builtins()
	n := e.tbl.Strings.Intern("Box")
	cls, _ := e.tbl.Define(e.tbl.Global, &symbols.Symbol{Name: n, Kind: symbols.SymbolClass})
	ph := e.tbl.Types.InternPlaceholder(e.tbl.Strings.Intern("v"), uint32(cls), 0)
	generic, _ := e.tbl.Types.InternClass(n, uint32(cls), []types.TypeID{ph})
	e.tbl.Types.SetClassFields(generic, []types.Field{{Name: e.tbl.Strings.Intern("v"), Type: ph}})
	scope := e.tbl.NewScope(symbols.ScopeClass, e.tbl.Global, cls, source.NoSpan)
	e.tbl.Sym(cls).Class = &symbols.ClassData{Scope: scope, Params: []types.TypeID{ph}, Type: generic}
	tmpl := e.copier(cls, generic, symbols.FlagPublic|symbols.FlagTemplate)
	e.tbl.Sym(tmpl).Func.Declared = false
	e.tbl.Sym(tmpl).Func.Result = types.NoTypeID

	e.inst.SetResolver(resolver(func(inst symbols.SymbolID) {
		fn := e.tbl.Sym(inst).Func
		fn.Result = fn.ParamTypes[0]
	}))
	boxed, err := e.inst.InstantiateClass(cls, []types.TypeID{b.Int})
	if err != nil {
		t.Fatalf("Box(int): %v", err)
	}
	got, ok, err := e.res.CopierOf(context.Background(), boxed, symbols.NoScopeID)
	if err != nil || !ok {
		t.Fatalf("Box(int) copier: %v %v", ok, err)
	}
	sym := e.tbl.Sym(got)
	if sym.Func.Template != tmpl || sym.Func.ParamTypes[0] != boxed {
		t.Fatalf("copier must be an instance of the template copier: %+v", sym.Func)
	}
}

type resolver func(symbols.SymbolID)

func (r resolver) ResolveInstance(_ context.Context, inst symbols.SymbolID) error {
	r(inst)
	return nil
}
