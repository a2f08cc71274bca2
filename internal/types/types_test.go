package types

import (
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

func TestBuiltinsAreScalars(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	for _, id := range []TypeID{b.Bool, b.Char, b.Int, b.Uint, b.Float} {
		if !in.IsScalar(id) || in.IsAggregate(id) {
			t.Errorf("%s must be scalar", Label(in, nil, id))
		}
	}
	if in.IsScalar(b.Unit) || in.IsAggregate(b.Unit) {
		t.Errorf("unit is neither scalar nor aggregate")
	}
}

func TestStructuralEqualityByInterning(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		name string
		a, b func() TypeID
	}{
		{"array", func() TypeID { return in.Intern(MakeArray(b.Int, 3)) }, func() TypeID { return in.Intern(MakeArray(b.Int, 3)) }},
		{"tuple", func() TypeID { return in.InternTuple([]TypeID{b.Int, b.Float}) }, func() TypeID { return in.InternTuple([]TypeID{b.Int, b.Float}) }},
		{"func", func() TypeID { return in.InternFunc([]TypeID{b.Int}, b.Bool) }, func() TypeID { return in.InternFunc([]TypeID{b.Int}, b.Bool) }},
		{"dict", func() TypeID { return in.Intern(MakeDict(b.Char, b.Int)) }, func() TypeID { return in.Intern(MakeDict(b.Char, b.Int)) }},
	}
	for _, tc := range cases {
		if tc.a() != tc.b() {
			t.Errorf("%s: equal descriptors got different ids", tc.name)
		}
	}
	if in.InternTuple([]TypeID{b.Int, b.Float}) == in.InternTuple([]TypeID{b.Float, b.Int}) {
		t.Errorf("tuple element order must matter")
	}
	if in.Intern(MakeArray(b.Int, 3)) == in.Intern(MakeArray(b.Int, DynamicLength)) {
		t.Errorf("array length must matter")
	}
	if in.InternTuple(nil) != b.Unit {
		t.Errorf("empty tuple must be unit")
	}
}

func TestClassIdentity(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner()
	b := in.Builtins()
	pair := strs.Intern("Pair")

	c1, created := in.InternClass(pair, 7, []TypeID{b.Int, b.Float})
	if !created {
		t.Fatalf("first intern must create")
	}
	c2, created := in.InternClass(pair, 7, []TypeID{b.Int, b.Float})
	if created || c1 != c2 {
		t.Fatalf("same decl and args must be the same class")
	}
	other, _ := in.InternClass(pair, 8, []TypeID{b.Int, b.Float})
	if other == c1 {
		t.Fatalf("different declaring symbol must give a different class")
	}
	in.SetClassFields(c1, []Field{{Name: strs.Intern("a"), Type: b.Int}, {Name: strs.Intern("b"), Type: b.Float}})
	if idx, ok := in.FieldIndex(c1, strs.Intern("b")); !ok || idx != 1 {
		t.Fatalf("FieldIndex = %d, %v", idx, ok)
	}
	if got := Label(in, strs, c1); got != "Pair(int, float)" {
		t.Fatalf("Label = %q", got)
	}
}

func TestPlaceholderQueries(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner()
	b := in.Builtins()
	x := in.InternPlaceholder(strs.Intern("x"), 3, 0)
	y := in.InternPlaceholder(strs.Intern("y"), 3, 1)
	if x == y || in.InternPlaceholder(strs.Intern("x"), 3, 0) != x {
		t.Fatalf("placeholders compare by identity")
	}
	nested := in.InternTuple([]TypeID{b.Int, in.Intern(MakeArray(y, DynamicLength)), x, y})
	if !in.ContainsPlaceholder(nested) {
		t.Fatalf("placeholder not found in nested tuple")
	}
	got := in.Placeholders(nested)
	if len(got) != 2 || got[0] != y || got[1] != x {
		t.Fatalf("Placeholders = %v, want [y x]", got)
	}
	if in.ContainsPlaceholder(in.InternTuple([]TypeID{b.Int, b.Float})) {
		t.Fatalf("concrete tuple reported as generic")
	}
	if Label(in, strs, x) != "template(x)" {
		t.Fatalf("Label = %q", Label(in, strs, x))
	}
}

func TestWalkVisitsClassFields(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner()
	b := in.Builtins()
	inner, _ := in.InternClass(strs.Intern("Inner"), 1, nil)
	in.SetClassFields(inner, []Field{{Name: strs.Intern("c"), Type: b.Char}})
	outer, _ := in.InternClass(strs.Intern("Outer"), 2, nil)
	in.SetClassFields(outer, []Field{{Name: strs.Intern("i"), Type: in.Intern(MakePointer(inner))}})

	seen := map[TypeID]bool{}
	in.Walk(outer, func(id TypeID) bool {
		seen[id] = true
		return true
	})
	if !seen[inner] || !seen[b.Char] {
		t.Fatalf("walk missed nested fields: %v", seen)
	}
}

func TestClosureAndEnv(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	fn := in.InternFunc([]TypeID{b.Int}, b.Int)
	env := in.InternEnv(5, []TypeID{b.Float, b.Int})
	clo := in.InternClosure(5, fn, env)
	info, ok := in.ClosureInfo(clo)
	if !ok || info.Env != env || info.Fn != fn {
		t.Fatalf("closure info mismatch")
	}
	if !in.IsAggregate(clo) || !in.IsAggregate(env) {
		t.Fatalf("closures and environments are aggregates")
	}
	if in.InternClosure(6, fn, b.Unit) == in.InternClosure(7, fn, b.Unit) {
		t.Fatalf("distinct lambdas must have distinct closure types")
	}
}

func TestUnifyBindsPlaceholders(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner()
	b := in.Builtins()
	x := in.InternPlaceholder(strs.Intern("x"), 1, 0)
	pattern := in.InternTuple([]TypeID{x, in.Intern(MakeArray(x, DynamicLength))})

	bind := map[TypeID]TypeID{}
	ok := in.Unify(pattern, in.InternTuple([]TypeID{b.Int, in.Intern(MakeArray(b.Int, 4))}), bind)
	if !ok || bind[x] != b.Int {
		t.Fatalf("Unify failed: %v %v", ok, bind)
	}
	bind = map[TypeID]TypeID{}
	if in.Unify(pattern, in.InternTuple([]TypeID{b.Int, in.Intern(MakeArray(b.Float, 4))}), bind) {
		t.Fatalf("conflicting bindings must fail")
	}
	if in.Unify(b.Int, b.Float, map[TypeID]TypeID{}) {
		t.Fatalf("distinct scalars must not unify")
	}
}
