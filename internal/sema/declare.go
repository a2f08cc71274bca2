package sema

import (
	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// declareItems is the forward pass. Class names come first so that any
// signature can mention any class, then instance variables, then functions,
// member functions and constants. Errors are collected for every
// declaration.
func (tc *typeChecker) declareItems(items []ast.ItemID) {
	for _, item := range items {
		if tc.builder.Items.Get(item).Kind == ast.ItemClass {
			tc.declareClass(item)
		}
	}
	for _, cls := range tc.classes {
		tc.ensureFields(cls)
	}
	for _, item := range items {
		switch tc.builder.Items.Get(item).Kind {
		case ast.ItemFunc:
			tc.declareFunc(item, tc.table.Global, symbols.NoSymbolID)
		case ast.ItemClass:
			if cls, ok := tc.items[item]; ok {
				tc.declareMembers(cls)
			}
		case ast.ItemConst:
			tc.declareConst(item)
		}
	}
}

func (tc *typeChecker) declareClass(item ast.ItemID) {
	it := tc.builder.Items.Get(item)
	cls, _ := tc.builder.Items.Class(item)

	// Untyped instance variables become the class template parameters,
	// owned by the class symbol about to be defined.
	owner := tc.table.Symbols.Next()
	var params []types.TypeID
	for _, f := range cls.Fields {
		if !f.Type.IsValid() {
			params = append(params, tc.types.InternPlaceholder(f.Name, uint32(owner), uint32(len(params))))
		}
	}

	id := tc.define(tc.table.Global, &symbols.Symbol{
		Name:  it.Name,
		Kind:  symbols.SymbolClass,
		Span:  it.Span,
		Flags: symbols.FlagPublic,
		Decl:  tc.builder.RefItem(item),
	})
	if !id.IsValid() {
		return
	}
	if id != owner {
		diag.Internal("sema: class %s defined as %d, expected %d", tc.name(it.Name), id, owner)
	}
	scope := tc.table.NewScope(symbols.ScopeClass, tc.table.Global, id, it.Span)
	ty, _ := tc.types.InternClass(it.Name, uint32(id), params)
	sym := tc.table.Sym(id)
	sym.Type = ty
	sym.Class = &symbols.ClassData{Item: item, Scope: scope, Params: params, Type: ty}
	tc.items[item] = id
	tc.classes = append(tc.classes, id)
}

// ensureFields declares the instance variables of a class once. A class
// template instantiated by another declaration needs its fields first.
func (tc *typeChecker) ensureFields(class symbols.SymbolID) {
	if tc.fieldState[class] != declPending {
		return
	}
	tc.fieldState[class] = declInProgress
	defer func() { tc.fieldState[class] = declDone }()

	data := tc.table.Sym(class).Class
	if data == nil || !data.Item.IsValid() {
		return
	}
	item, _ := tc.builder.Items.Class(data.Item)

	prev := tc.scope
	tc.scope = data.Scope
	defer func() { tc.scope = prev }()

	fields := make([]types.Field, 0, len(item.Fields))
	next := 0
	for _, f := range item.Fields {
		var ft types.TypeID
		if f.Type.IsValid() {
			if ft = tc.resolveType(f.Type); ft == types.NoTypeID {
				continue
			}
		} else {
			ft = data.Params[next]
			next++
		}
		flags := symbols.FlagMutable
		if f.Public {
			flags |= symbols.FlagPublic
		}
		fid := tc.define(data.Scope, &symbols.Symbol{
			Name:  f.Name,
			Kind:  symbols.SymbolField,
			Type:  ft,
			Span:  f.Span,
			Flags: flags,
			Decl:  tc.builder.RefItem(data.Item),
		})
		if !fid.IsValid() {
			continue
		}
		data.Fields = append(data.Fields, fid)
		fields = append(fields, types.Field{Name: f.Name, Type: ft})
	}
	tc.types.SetClassFields(data.Type, fields)
}

func (tc *typeChecker) declareMembers(class symbols.SymbolID) {
	data := tc.table.Sym(class).Class
	item, _ := tc.builder.Items.Class(data.Item)
	for _, m := range item.Methods {
		if id := tc.declareFunc(m, data.Scope, class); id.IsValid() {
			data.Methods = append(data.Methods, id)
		}
	}
}

// declareFunc registers a function signature. Untyped parameters get fresh
// placeholders owned by the function, which makes it a template. Member
// functions receive self as their first parameter.
func (tc *typeChecker) declareFunc(item ast.ItemID, scope symbols.ScopeID, class symbols.SymbolID) symbols.SymbolID {
	it := tc.builder.Items.Get(item)
	fn, _ := tc.builder.Items.Func(item)

	prev := tc.scope
	tc.scope = scope
	defer func() { tc.scope = prev }()

	owner := tc.table.Symbols.Next()
	params := make([]types.TypeID, 0, len(fn.Params)+1)
	if class.IsValid() {
		params = append(params, tc.table.Sym(class).Class.Type)
	}
	for _, p := range fn.Params {
		if !p.Type.IsValid() {
			params = append(params, tc.types.InternPlaceholder(p.Name, uint32(owner), uint32(len(params))))
			continue
		}
		t := tc.resolveType(p.Type)
		if t == types.NoTypeID {
			return symbols.NoSymbolID
		}
		params = append(params, t)
	}
	template := false
	for _, p := range params {
		template = template || tc.types.ContainsPlaceholder(p)
	}

	var result types.TypeID
	declared := fn.Result.IsValid()
	if declared {
		if result = tc.resolveType(fn.Result); result == types.NoTypeID {
			return symbols.NoSymbolID
		}
		if !template && tc.types.ContainsPlaceholder(result) {
			tc.report(diag.SemaInvalidType, it.Span, "Result type '%s' of function '%s' is a template but none of its parameters is",
				tc.label(result), tc.name(it.Name))
			return symbols.NoSymbolID
		}
	}

	var flags symbols.SymbolFlags
	if fn.Public || !class.IsValid() {
		flags |= symbols.FlagPublic
	}
	if class.IsValid() {
		flags |= symbols.FlagMember
	}
	sym := &symbols.Symbol{
		Name:  it.Name,
		Kind:  symbols.SymbolFunc,
		Span:  it.Span,
		Flags: flags,
		Decl:  tc.builder.RefItem(item),
		Func: &symbols.FuncData{
			Item:       item,
			ParamTypes: params,
			Result:     result,
			Declared:   declared,
			Class:      class,
		},
	}
	switch {
	case template:
		sym.Flags |= symbols.FlagTemplate
		sym.Type = tc.types.InternGenericFunc(uint32(owner))
	case declared:
		sym.Type = tc.types.InternFunc(params, result)
	}
	id := tc.define(scope, sym)
	if !id.IsValid() {
		return id
	}
	if id != owner {
		diag.Internal("sema: function %s defined as %d, expected %d", tc.name(it.Name), id, owner)
	}
	tc.items[item] = id
	return id
}

func (tc *typeChecker) declareConst(item ast.ItemID) {
	it := tc.builder.Items.Get(item)
	c, _ := tc.builder.Items.Const(item)
	var t types.TypeID
	if c.Type.IsValid() {
		if t = tc.resolveType(c.Type); t == types.NoTypeID {
			return
		}
	}
	id := tc.define(tc.table.Global, &symbols.Symbol{
		Name:  it.Name,
		Kind:  symbols.SymbolConst,
		Type:  t,
		Span:  it.Span,
		Flags: symbols.FlagPublic,
		Decl:  tc.builder.RefItem(item),
	})
	if id.IsValid() {
		tc.items[item] = id
	}
}
