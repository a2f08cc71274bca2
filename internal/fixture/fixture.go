// Package fixture reads syntax trees written as YAML documents. It stands in
// for the parser: every node becomes an ast node whose span is the position
// of the YAML node it came from.
//
// A document lists top-level declarations:
//
//	items:
//	  - func: twice
//	    params: [{name: n, type: int}]
//	    body:
//	      - return: {binary: {op: "*", left: {ident: n}, right: {int: "2"}}}
//	  - class: Box
//	    fields: [{name: v, public: true}]
//	  - const: answer
//	    value: {int: "42"}
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/source"
)

// Error points at the offending YAML node.
type Error struct {
	Path string
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

type decoder struct {
	b    *ast.Builder
	strs *source.Interner
	path string
	file source.FileID
}

// Load reads a fixture file into b.
func Load(b *ast.Builder, strs *source.Interner, files *source.FileSet, path string) (ast.FileID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ast.NoFileID, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return Decode(b, strs, files.Add(path, data), path, data)
}

// Decode parses one document and appends its declarations to a new file of b.
func Decode(b *ast.Builder, strs *source.Interner, file source.FileID, path string, data []byte) (ast.FileID, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ast.NoFileID, fmt.Errorf("%s: %w", path, err)
	}
	d := &decoder{b: b, strs: strs, path: path, file: file}
	fid := b.NewFile(path, source.Span{File: file, Line: 1, Col: 1})
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return fid, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return ast.NoFileID, d.errorf(root, "document must be a mapping with 'items'")
	}
	items := field(root, "items")
	if items == nil {
		return fid, nil
	}
	if items.Kind != yaml.SequenceNode {
		return ast.NoFileID, d.errorf(items, "'items' must be a sequence")
	}
	for _, n := range items.Content {
		item, err := d.item(n, false)
		if err != nil {
			return ast.NoFileID, err
		}
		b.PushItem(fid, item)
	}
	return fid, nil
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return &Error{Path: d.path, Line: n.Line, Col: n.Column, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) span(n *yaml.Node) source.Span {
	return source.Span{File: d.file, Line: uint32(n.Line), Col: uint32(n.Column), Len: uint32(len(n.Value))}
}

func (d *decoder) name(n *yaml.Node) (source.StringID, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return source.NoStringID, d.errorf(n, "expected a name")
	}
	return d.strs.Intern(n.Value), nil
}

// field returns the value of key in a mapping node.
func field(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// tagged splits a single-key mapping {kind: value}. Mappings with more keys
// are accepted when the kind key comes first; the rest are read with field.
func (d *decoder) tagged(n *yaml.Node, what string) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) < 2 {
		return "", nil, d.errorf(n, "expected a %s", what)
	}
	return n.Content[0].Value, n.Content[1], nil
}

func (d *decoder) list(n *yaml.Node) ([]*yaml.Node, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a sequence")
	}
	return n.Content, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

type paramDoc struct {
	Name    string    `yaml:"name"`
	Type    yaml.Node `yaml:"type"`
	Mutable bool      `yaml:"mutable"`
}

type fieldDoc struct {
	Name   string    `yaml:"name"`
	Type   yaml.Node `yaml:"type"`
	Public bool      `yaml:"public"`
}

func (d *decoder) item(n *yaml.Node, member bool) (ast.ItemID, error) {
	kind, nameNode, err := d.tagged(n, "declaration")
	if err != nil {
		return ast.NoItemID, err
	}
	name, err := d.name(nameNode)
	if err != nil {
		return ast.NoItemID, err
	}
	sp := d.span(nameNode)
	switch kind {
	case "func":
		fn, err := d.funcItem(n, name, member)
		if err != nil {
			return ast.NoItemID, err
		}
		return d.b.Items.NewFunc(sp, fn), nil
	case "class":
		if member {
			return ast.NoItemID, d.errorf(n, "classes cannot be nested")
		}
		return d.classItem(n, name, sp)
	case "const":
		if member {
			return ast.NoItemID, d.errorf(n, "constants cannot be members")
		}
		c := ast.ConstItem{Name: name}
		if t := field(n, "type"); t != nil {
			if c.Type, err = d.typeExpr(t); err != nil {
				return ast.NoItemID, err
			}
		}
		v := field(n, "value")
		if v == nil {
			return ast.NoItemID, d.errorf(n, "constant needs a value")
		}
		if c.Value, err = d.expr(v); err != nil {
			return ast.NoItemID, err
		}
		return d.b.Items.NewConst(sp, c), nil
	}
	return ast.NoItemID, d.errorf(n, "unknown declaration %q", kind)
}

func (d *decoder) funcItem(n *yaml.Node, name source.StringID, member bool) (ast.FuncItem, error) {
	fn := ast.FuncItem{Name: name, Member: member}
	var err error
	if p := field(n, "public"); p != nil {
		if err := p.Decode(&fn.Public); err != nil {
			return fn, d.errorf(p, "public: %v", err)
		}
	}
	if fn.Params, err = d.params(field(n, "params")); err != nil {
		return fn, err
	}
	if r := field(n, "result"); r != nil {
		if fn.Result, err = d.typeExpr(r); err != nil {
			return fn, err
		}
	}
	fn.Body, err = d.block(n, field(n, "body"))
	return fn, err
}

func (d *decoder) params(n *yaml.Node) ([]ast.Param, error) {
	nodes, err := d.list(n)
	if err != nil {
		return nil, err
	}
	params := make([]ast.Param, 0, len(nodes))
	for _, pn := range nodes {
		var doc paramDoc
		if err := pn.Decode(&doc); err != nil {
			return nil, d.errorf(pn, "parameter: %v", err)
		}
		if doc.Name == "" {
			return nil, d.errorf(pn, "parameter needs a name")
		}
		p := ast.Param{Name: d.strs.Intern(doc.Name), Span: d.span(pn), Mutable: doc.Mutable}
		if doc.Type.Kind != 0 && !isNull(&doc.Type) {
			if p.Type, err = d.typeExpr(&doc.Type); err != nil {
				return nil, err
			}
		}
		params = append(params, p)
	}
	return params, nil
}

func (d *decoder) classItem(n *yaml.Node, name source.StringID, sp source.Span) (ast.ItemID, error) {
	cls := ast.ClassItem{Name: name}
	fields, err := d.list(field(n, "fields"))
	if err != nil {
		return ast.NoItemID, err
	}
	for _, fnode := range fields {
		var doc fieldDoc
		if err := fnode.Decode(&doc); err != nil {
			return ast.NoItemID, d.errorf(fnode, "instance variable: %v", err)
		}
		if doc.Name == "" {
			return ast.NoItemID, d.errorf(fnode, "instance variable needs a name")
		}
		f := ast.FieldDecl{Name: d.strs.Intern(doc.Name), Span: d.span(fnode), Public: doc.Public}
		if doc.Type.Kind != 0 && !isNull(&doc.Type) {
			if f.Type, err = d.typeExpr(&doc.Type); err != nil {
				return ast.NoItemID, err
			}
		}
		cls.Fields = append(cls.Fields, f)
	}
	methods, err := d.list(field(n, "methods"))
	if err != nil {
		return ast.NoItemID, err
	}
	for _, mn := range methods {
		m, err := d.item(mn, true)
		if err != nil {
			return ast.NoItemID, err
		}
		cls.Methods = append(cls.Methods, m)
	}
	return d.b.Items.NewClass(sp, cls), nil
}
