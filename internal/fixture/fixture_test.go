package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/sema"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

const unitDoc = `
items:
  - class: Counter
    fields: [{name: n, type: int}]
    methods:
      - func: get
        public: true
        body:
          - return: {member: {recv: {ident: self}, name: n}}
  - class: Box
    fields: [{name: v, public: true}]
  - func: main
    body:
      - let: {name: c, value: {new: {class: Counter, args: [{int: "1"}]}}}
      - let: {name: b, value: {new: {class: Box, args: [{float: "2.0"}]}}}
      - var: {name: xs, value: {array: [{int: "1"}, {int: "2"}]}}
      - for:
          var: x
          in: {ident: xs}
          body:
            - expr: {call: {callee: {ident: println}, args: [{ident: x}]}}
      - expr: {call: {callee: {member: {recv: {ident: c}, name: get}}}}
`

func decode(t *testing.T, src string) (*ast.Builder, *source.Interner, ast.FileID) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	strs := source.NewInterner()
	fs := source.NewFileSet()
	fid, err := Decode(b, strs, fs.Add("test.yaml", []byte(src)), "test.yaml", []byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return b, strs, fid
}

func TestDecodeDeclarations(t *testing.T) {
	b, strs, fid := decode(t, unitDoc)
	file := b.Files.Get(fid)
	if len(file.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(file.Items))
	}
	cls, ok := b.Items.Class(file.Items[0])
	if !ok {
		t.Fatalf("first item is not a class")
	}
	if strs.MustLookup(cls.Name) != "Counter" || len(cls.Fields) != 1 || len(cls.Methods) != 1 {
		t.Fatalf("class = %+v", cls)
	}
	get, ok := b.Items.Func(cls.Methods[0])
	if !ok || !get.Member || !get.Public {
		t.Fatalf("get = %+v", get)
	}
	box, _ := b.Items.Class(file.Items[1])
	if box.Fields[0].Type.IsValid() {
		t.Fatalf("untyped instance variable got a type")
	}
	item := b.Items.Get(file.Items[2])
	if item.Span.Line != 12 || item.Span.Col != 11 {
		t.Fatalf("main span = %v", item.Span)
	}
}

func TestDecodeArrayTypes(t *testing.T) {
	b, _, fid := decode(t, `
items:
  - func: f
    params:
      - {name: a, type: {array: int, len: 3}}
      - {name: b, type: {array: float}}
      - {name: c, type: {dict: [string, int]}}
    result: {func: [int], result: bool}
`)
	fn, _ := b.Items.Func(b.Files.Get(fid).Items[0])
	if got := b.Types.Get(fn.Params[0].Type).Count; got != 3 {
		t.Fatalf("fixed length = %d", got)
	}
	if got := b.Types.Get(fn.Params[1].Type).Count; got != types.DynamicLength {
		t.Fatalf("dynamic length = %d", got)
	}
	if got := len(b.Types.Get(fn.Params[2].Type).Elems); got != 2 {
		t.Fatalf("dict elems = %d", got)
	}
	res := b.Types.Get(fn.Result)
	if res.Kind != ast.TypeFunc || !res.Result.IsValid() {
		t.Fatalf("result = %+v", res)
	}
}

func TestDecodeReportsPosition(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	src := "items:\n  - func: f\n    body:\n      - loop: {}\n"
	_, err := Decode(b, source.NewInterner(), 1, "bad.yaml", []byte(src))
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if ferr.Line != 4 || !strings.Contains(ferr.Msg, `unknown statement "loop"`) {
		t.Fatalf("err = %v", ferr)
	}
	if !strings.HasPrefix(err.Error(), "bad.yaml:4:") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestDecodeRejectsBadOperator(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	src := `items: [{const: k, value: {binary: {op: "**", left: {int: "1"}, right: {int: "2"}}}}]`
	_, err := Decode(b, source.NewInterner(), 1, "op.yaml", []byte(src))
	if err == nil || !strings.Contains(err.Error(), `unknown operator "**"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadedFixtureChecks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.yaml")
	if err := os.WriteFile(path, []byte(unitDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	b := ast.NewBuilder(ast.Hints{})
	strs := source.NewInterner()
	fid, err := Load(b, strs, source.NewFileSet(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bag := diag.NewBag(50)
	res := sema.Check(context.Background(), b, []ast.FileID{fid}, sema.Options{Reporter: diag.BagReporter{Bag: bag}, Strings: strs})
	if res.Errors != 0 {
		for _, d := range bag.Items() {
			t.Logf("%s", d.Render())
		}
		t.Fatalf("errors = %d", res.Errors)
	}
	if res.Instances.Len() == 0 {
		t.Fatalf("Box(float) was not instantiated")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(ast.NewBuilder(ast.Hints{}), source.NewInterner(), source.NewFileSet(), filepath.Join(t.TempDir(), "none.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}
