package mono

import (
	"context"
	"slices"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/trace"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// DefaultMaxDepth bounds nested instantiations.
const DefaultMaxDepth = 64

// BodyResolver declares the parameters of a fresh instance and resolves its
// cloned body. The semantic pass implements it.
type BodyResolver interface {
	ResolveInstance(ctx context.Context, inst symbols.SymbolID) error
}

// Instantiator memoizes template instantiations per (generic, args).
type Instantiator struct {
	table    *symbols.Table
	tree     *ast.Builder
	resolver BodyResolver
	maxDepth int

	cache   map[Key]*Entry
	order   []*Entry
	pending map[Key]bool
	stack   []Key
}

func New(table *symbols.Table, tree *ast.Builder, maxDepth int) *Instantiator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Instantiator{
		table:    table,
		tree:     tree,
		maxDepth: maxDepth,
		cache:    make(map[Key]*Entry),
		pending:  make(map[Key]bool),
	}
}

// SetResolver wires the body resolution callback.
func (m *Instantiator) SetResolver(r BodyResolver) { m.resolver = r }

// Depth is the number of instantiations currently in progress.
func (m *Instantiator) Depth() int { return len(m.stack) }

// Lookup returns a cached function instance.
func (m *Instantiator) Lookup(generic symbols.SymbolID, args []types.TypeID) (symbols.SymbolID, bool) {
	e, ok := m.cache[makeKey(EntryFunc, generic, args)]
	if !ok {
		return symbols.NoSymbolID, false
	}
	return e.Instance, true
}

// TypeParams lists the placeholders of a function template in first-use
// order across its parameters.
func (m *Instantiator) TypeParams(generic symbols.SymbolID) []types.TypeID {
	sym := m.table.Sym(generic)
	if sym == nil || sym.Func == nil {
		return nil
	}
	var out []types.TypeID
	for _, p := range sym.Func.ParamTypes {
		for _, ph := range m.table.Types.Placeholders(p) {
			if !slices.Contains(out, ph) {
				out = append(out, ph)
			}
		}
	}
	return out
}

// Instantiate returns the concrete instance of a function template for the
// argument types, creating and resolving it on first use. Re-instantiation
// with the same arguments returns the cached symbol.
func (m *Instantiator) Instantiate(ctx context.Context, generic symbols.SymbolID, args []types.TypeID) (symbols.SymbolID, error) {
	sym := m.table.Sym(generic)
	if sym == nil || sym.Func == nil || !sym.IsTemplate() {
		diag.Internal("mono: %s is not a function template", m.table.Name(generic))
	}
	if len(args) != len(sym.Func.ParamTypes) {
		diag.Internal("mono: %s expects %d arguments, got %d", m.table.Name(generic), len(sym.Func.ParamTypes), len(args))
	}

	key := makeKey(EntryFunc, generic, args)
	if e, ok := m.cache[key]; ok {
		if m.pending[key] && m.table.Sym(e.Instance).Func.Result == types.NoTypeID {
			return symbols.NoSymbolID, m.recursive(generic, args, 0)
		}
		return e.Instance, nil
	}
	if len(m.stack) >= m.maxDepth {
		return symbols.NoSymbolID, m.recursive(generic, args, m.maxDepth)
	}

	in := m.table.Types
	for _, a := range args {
		if in.ContainsPlaceholder(a) {
			return symbols.NoSymbolID, &EscapeError{
				Instance: m.Label(generic, args),
				Type:     types.Label(in, m.table.Strings, a),
				Span:     sym.Span,
			}
		}
	}
	bind := make(map[types.TypeID]types.TypeID)
	for i, p := range sym.Func.ParamTypes {
		if !in.Unify(p, args[i], bind) {
			diag.Internal("mono: %s does not admit %s", m.table.Name(generic), types.Label(in, m.table.Strings, args[i]))
		}
	}

	inst := m.declare(generic, args, bind)
	entry := &Entry{Kind: EntryFunc, Generic: generic, Args: slices.Clone(args), Instance: inst}
	m.cache[key] = entry
	m.order = append(m.order, entry)

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeNode, "instantiate", trace.CurrentSpan(ctx)).
		WithExtra("generic", m.label(key))
	ctx = trace.WithSpan(ctx, span)
	m.stack = append(m.stack, key)
	m.pending[key] = true
	defer func() {
		m.stack = m.stack[:len(m.stack)-1]
		delete(m.pending, key)
		span.End("")
	}()

	if m.resolver != nil {
		if err := m.resolver.ResolveInstance(ctx, inst); err != nil {
			m.table.Sym(inst).Func.State = symbols.BodyFailed
			return inst, err
		}
	}
	if err := m.CheckInstance(inst); err != nil {
		return inst, err
	}
	return inst, nil
}

// declare creates the instance symbol: a clone of the template body with the
// argument types as parameter types. Instances are not entered into the
// template's scope, so overload resolution never sees them.
func (m *Instantiator) declare(generic symbols.SymbolID, args []types.TypeID, bind map[types.TypeID]types.TypeID) symbols.SymbolID {
	tmpl := *m.table.Sym(generic)
	fn := *tmpl.Func

	sub := &Subst{Types: m.table.Types, Bind: bind, inst: m}
	typeArgs := make([]types.TypeID, 0, len(bind))
	for _, ph := range m.TypeParams(generic) {
		typeArgs = append(typeArgs, bind[ph])
	}

	data := &symbols.FuncData{
		ParamTypes: slices.Clone(args),
		Declared:   fn.Declared,
		Class:      fn.Class,
		Template:   generic,
		TypeArgs:   typeArgs,
		State:      symbols.BodyPending,
	}
	if fn.Declared {
		data.Result = sub.Type(fn.Result)
	}
	if fn.Item.IsValid() {
		data.Item = m.tree.CloneFunc(fn.Item)
	}

	inst := &symbols.Symbol{
		Name:  tmpl.Name,
		Kind:  symbols.SymbolFunc,
		Scope: tmpl.Scope,
		Span:  tmpl.Span,
		Flags: tmpl.Flags&^symbols.FlagTemplate | symbols.FlagInstantiated,
		Decl:  tmpl.Decl,
		Func:  data,
	}
	if data.Result != types.NoTypeID {
		inst.Type = m.table.Types.InternFunc(data.ParamTypes, data.Result)
	}
	if data.Item.IsValid() {
		inst.Decl = m.tree.RefItem(data.Item)
	}
	return m.table.Symbols.New(inst)
}

// InstantiateClass returns the concrete class instance of a class template
// with its instance variable types substituted.
func (m *Instantiator) InstantiateClass(class symbols.SymbolID, args []types.TypeID) (types.TypeID, error) {
	sym := m.table.Sym(class)
	if sym == nil || sym.Class == nil {
		diag.Internal("mono: %s is not a class", m.table.Name(class))
	}
	if len(sym.Class.Params) == 0 {
		return sym.Class.Type, nil
	}
	if len(args) != len(sym.Class.Params) {
		diag.Internal("mono: class %s expects %d type arguments, got %d", m.table.Name(class), len(sym.Class.Params), len(args))
	}
	for _, a := range args {
		if m.table.Types.ContainsPlaceholder(a) {
			return types.NoTypeID, &EscapeError{
				Instance: m.Label(class, args),
				Type:     types.Label(m.table.Types, m.table.Strings, a),
				Span:     sym.Span,
			}
		}
	}
	return m.classInstance(class, args), nil
}

// ClassType interns class(args) with its instance variables substituted.
// Unlike InstantiateClass it accepts placeholder arguments, as written inside
// templates; such instances stay out of the instantiation table.
func (m *Instantiator) ClassType(class symbols.SymbolID, args []types.TypeID) types.TypeID {
	sym := m.table.Sym(class)
	if sym == nil || sym.Class == nil {
		diag.Internal("mono: %s is not a class", m.table.Name(class))
	}
	if len(sym.Class.Params) == 0 {
		return sym.Class.Type
	}
	return m.classInstance(class, args)
}

func (m *Instantiator) classInstance(class symbols.SymbolID, args []types.TypeID) types.TypeID {
	sym := m.table.Sym(class)
	in := m.table.Types
	id, created := in.InternClass(sym.Name, uint32(class), args)
	if !created || sym.Class == nil {
		return id
	}
	bind := make(map[types.TypeID]types.TypeID, len(args))
	for i, ph := range sym.Class.Params {
		if i < len(args) {
			bind[ph] = args[i]
		}
	}
	sub := &Subst{Types: in, Bind: bind, inst: m}
	tmpl, _ := in.ClassInfo(sym.Class.Type)
	fields := slices.Clone(tmpl.Fields)
	for i := range fields {
		fields[i].Type = sub.Type(fields[i].Type)
	}
	in.SetClassFields(id, fields)

	if !in.ContainsPlaceholder(id) {
		entry := &Entry{Kind: EntryClass, Generic: class, Args: slices.Clone(args), Type: id}
		m.cache[makeKey(EntryClass, class, args)] = entry
		m.order = append(m.order, entry)
	}
	return id
}

func (m *Instantiator) recursive(generic symbols.SymbolID, args []types.TypeID, depth int) error {
	chain := make([]string, 0, len(m.stack)+1)
	for _, k := range m.stack {
		chain = append(chain, m.label(k))
	}
	chain = append(chain, m.Label(generic, args))
	return &RecursiveError{Chain: chain, Depth: depth}
}

func (m *Instantiator) label(k Key) string {
	if e, ok := m.cache[k]; ok {
		return m.Label(e.Generic, e.Args)
	}
	return m.table.Name(k.Sym) + "(" + k.ArgsKey + ")"
}

func (m *Instantiator) writeArgs(b *strings.Builder, args []types.TypeID) {
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(types.Label(m.table.Types, m.table.Strings, a))
	}
}

// Label renders generic(args) for diagnostics.
func (m *Instantiator) Label(generic symbols.SymbolID, args []types.TypeID) string {
	var b strings.Builder
	b.WriteString(m.table.Name(generic))
	b.WriteByte('(')
	m.writeArgs(&b, args)
	b.WriteByte(')')
	return b.String()
}
