package types

import (
	"slices"
	"strconv"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

// Field is one instance variable of a class instance.
type Field struct {
	Name source.StringID
	Type TypeID
}

// ClassInfo describes one class instance. Decl is the class symbol; Args are
// the instantiated template arguments (placeholders for the template itself).
type ClassInfo struct {
	Name   source.StringID
	Decl   uint32
	Args   []TypeID
	Fields []Field
}

type TupleInfo struct {
	Elems []TypeID
}

type FuncInfo struct {
	Params []TypeID
	Result TypeID
}

// ClosureInfo is the type of a lambda value: its signature and the record
// holding captured variables.
type ClosureInfo struct {
	Lambda uint32
	Fn     TypeID
	Env    TypeID
}

// EnvInfo is a closure environment record. Fields are in capture order.
type EnvInfo struct {
	Lambda uint32
	Fields []TypeID
}

// PlaceholderInfo identifies a template parameter by its declaration.
type PlaceholderInfo struct {
	Name  source.StringID
	Owner uint32
	Index uint32
}

// InternClass returns the class instance for (decl, args). created reports
// whether the caller must fill in the fields.
func (in *Interner) InternClass(name source.StringID, decl uint32, args []TypeID) (id TypeID, created bool) {
	key := strconv.FormatUint(uint64(decl), 10) + "(" + idsKey(args) + ")"
	return in.internList(KindClass, key, func() uint32 {
		in.classes = append(in.classes, ClassInfo{Name: name, Decl: decl, Args: slices.Clone(args)})
		return slot(len(in.classes) - 1)
	})
}

// SetClassFields stores resolved instance variables of a class instance.
func (in *Interner) SetClassFields(id TypeID, fields []Field) {
	if info, ok := in.ClassInfo(id); ok {
		info.Fields = slices.Clone(fields)
	}
}

func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass {
		return nil, false
	}
	return &in.classes[tt.Payload], true
}

// FieldIndex returns the position of the named instance variable.
func (in *Interner) FieldIndex(id TypeID, name source.StringID) (int, bool) {
	info, ok := in.ClassInfo(id)
	if !ok {
		return -1, false
	}
	for i, f := range info.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// InternTuple returns the tuple type of elems. The empty tuple is unit.
func (in *Interner) InternTuple(elems []TypeID) TypeID {
	if len(elems) == 0 {
		return in.builtins.Unit
	}
	id, _ := in.internList(KindTuple, idsKey(elems), func() uint32 {
		in.tuples = append(in.tuples, TupleInfo{Elems: slices.Clone(elems)})
		return slot(len(in.tuples) - 1)
	})
	return id
}

func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

func (in *Interner) InternFunc(params []TypeID, result TypeID) TypeID {
	key := idsKey(params) + "->" + strconv.FormatUint(uint64(result), 10)
	id, _ := in.internList(KindFunc, key, func() uint32 {
		in.fns = append(in.fns, FuncInfo{Params: slices.Clone(params), Result: result})
		return slot(len(in.fns) - 1)
	})
	return id
}

func (in *Interner) FuncInfo(id TypeID) (*FuncInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

// InternGenericFunc is the type of an expression naming a template function.
func (in *Interner) InternGenericFunc(owner uint32) TypeID {
	id, _ := in.internList(KindGenericFunc, strconv.FormatUint(uint64(owner), 10), func() uint32 {
		in.generics = append(in.generics, owner)
		return slot(len(in.generics) - 1)
	})
	return id
}

// GenericFuncOwner returns the template symbol behind a generic func type.
func (in *Interner) GenericFuncOwner(id TypeID) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindGenericFunc {
		return 0, false
	}
	return in.generics[tt.Payload], true
}

func (in *Interner) InternEnv(lambda uint32, fields []TypeID) TypeID {
	key := strconv.FormatUint(uint64(lambda), 10) + ":" + idsKey(fields)
	id, _ := in.internList(KindEnv, key, func() uint32 {
		in.envs = append(in.envs, EnvInfo{Lambda: lambda, Fields: slices.Clone(fields)})
		return slot(len(in.envs) - 1)
	})
	return id
}

func (in *Interner) EnvInfo(id TypeID) (*EnvInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnv {
		return nil, false
	}
	return &in.envs[tt.Payload], true
}

// InternClosure returns the closure type of a lambda. env is unit for
// lambdas that capture nothing.
func (in *Interner) InternClosure(lambda uint32, fn, env TypeID) TypeID {
	key := strconv.FormatUint(uint64(lambda), 10) + ":" + idsKey([]TypeID{fn, env})
	id, _ := in.internList(KindClosure, key, func() uint32 {
		in.closures = append(in.closures, ClosureInfo{Lambda: lambda, Fn: fn, Env: env})
		return slot(len(in.closures) - 1)
	})
	return id
}

func (in *Interner) ClosureInfo(id TypeID) (*ClosureInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClosure {
		return nil, false
	}
	return &in.closures[tt.Payload], true
}

// InternPlaceholder returns the template parameter index of owner.
func (in *Interner) InternPlaceholder(name source.StringID, owner, index uint32) TypeID {
	key := strconv.FormatUint(uint64(owner), 10) + ":" + strconv.FormatUint(uint64(index), 10)
	id, _ := in.internList(KindPlaceholder, key, func() uint32 {
		in.placeholders = append(in.placeholders, PlaceholderInfo{Name: name, Owner: owner, Index: index})
		return slot(len(in.placeholders) - 1)
	})
	return id
}

func (in *Interner) PlaceholderInfo(id TypeID) (*PlaceholderInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindPlaceholder {
		return nil, false
	}
	return &in.placeholders[tt.Payload], true
}
