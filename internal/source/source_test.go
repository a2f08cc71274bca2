package source

import "testing"

func TestInternerDedup(t *testing.T) {
	in := NewInterner()
	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to empty string, got %q, %v", s, ok)
	}
	a := in.Intern("value")
	b := in.Intern("value")
	if a != b || a == NoStringID {
		t.Fatalf("expected equal non-zero ids, got %d and %d", a, b)
	}
	if in.Intern("other") == a {
		t.Fatalf("different strings must get different ids")
	}
	if in.Len() != 3 {
		t.Fatalf("Len = %d, want 3", in.Len())
	}
}

func TestInternerNormalizesIdentifiers(t *testing.T) {
	in := NewInterner()
	composed := in.Intern("caf\u00e9")
	decomposed := in.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("NFC forms must share an id: %d != %d", composed, decomposed)
	}
	if _, ok := in.Find("cafe\u0301"); !ok {
		t.Fatalf("Find must normalize its argument")
	}
}

func TestFileSetLines(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("dir/../main.dcs", []byte("func main\r\n  println(1)\r\nend"))
	f := fs.Get(id)
	if f.Path != "main.dcs" {
		t.Fatalf("path not normalized: %q", f.Path)
	}
	cases := map[uint32]string{1: "func main", 2: "  println(1)", 3: "end"}
	for line, want := range cases {
		got, ok := f.Line(line)
		if !ok || got != want {
			t.Errorf("Line(%d) = %q, %v; want %q", line, got, ok, want)
		}
	}
	if _, ok := f.Line(4); ok {
		t.Errorf("Line(4) must be out of range")
	}
	if got, ok := fs.Lookup("main.dcs"); !ok || got != id {
		t.Errorf("Lookup failed: %d, %v", got, ok)
	}
}

func TestFileSetLastLineDropsNewline(t *testing.T) {
	fs := NewFileSet()
	for _, content := range []string{"func main\n  let x = y\n", "func main\r\n  let x = y\r\n"} {
		f := fs.Get(fs.Add("a.dcs", []byte(content)))
		if got, ok := f.Line(2); !ok || got != "  let x = y" {
			t.Errorf("Line(2) of %q = %q, %v", content, got, ok)
		}
		if _, ok := f.Line(3); ok {
			t.Errorf("%q has no third line", content)
		}
	}
}

func TestSpanOrderingAndCover(t *testing.T) {
	a := Span{Line: 2, Col: 5, Len: 3}
	b := Span{Line: 2, Col: 10, Len: 2}
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("ordering broken")
	}
	c := a.Cover(b)
	if c.Col != 5 || c.Len != 7 {
		t.Fatalf("Cover = %+v", c)
	}
	if a.String() != "line:2, col:5" {
		t.Fatalf("String = %q", a.String())
	}
}
