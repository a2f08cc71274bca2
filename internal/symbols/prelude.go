package symbols

import (
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Builtins lists the prelude symbols installed into the global scope.
type Builtins struct {
	Int, Uint, Float, Char, Bool SymbolID

	Print   SymbolID
	Println SymbolID
	Size    SymbolID

	String     SymbolID // prelude class backing string literals
	StringType types.TypeID
	StringCopy SymbolID
}

// CopierName is the member function name reserved for copying.
const CopierName = "copy"

func (t *Table) installPrelude() {
	b := t.Types.Builtins()
	scalar := func(name string, ty types.TypeID) SymbolID {
		id, _ := t.Define(t.Global, &Symbol{
			Name:  t.Strings.Intern(name),
			Kind:  SymbolBuiltinType,
			Type:  ty,
			Flags: FlagBuiltin | FlagPublic,
		})
		return id
	}
	t.Builtins.Int = scalar("int", b.Int)
	t.Builtins.Uint = scalar("uint", b.Uint)
	t.Builtins.Float = scalar("float", b.Float)
	t.Builtins.Char = scalar("char", b.Char)
	t.Builtins.Bool = scalar("bool", b.Bool)

	t.installString()

	t.Builtins.Print = t.builtinFunc("print", b.Unit)
	t.Builtins.Println = t.builtinFunc("println", b.Unit)
	t.Builtins.Size = t.builtinFunc("size", b.Uint)
}

// builtinFunc declares a one-argument template builtin. Calls are typed by
// the semantic pass and never instantiated.
func (t *Table) builtinFunc(name string, result types.TypeID) SymbolID {
	nameID := t.Strings.Intern(name)
	id, _ := t.Define(t.Global, &Symbol{
		Name:  nameID,
		Kind:  SymbolFunc,
		Flags: FlagBuiltin | FlagPublic | FlagTemplate,
		Func:  &FuncData{Result: result, Declared: true, State: BodyDone},
	})
	ph := t.Types.InternPlaceholder(t.Strings.Intern("x"), uint32(id), 0)
	sym := t.Sym(id)
	sym.Func.ParamTypes = []types.TypeID{ph}
	sym.Type = t.Types.InternGenericFunc(uint32(id))
	return id
}

// installString declares
//
//	class string
//	  data : pointer(char)
//	  size : uint
//	  func copy(self) : string   # builtin
//	end
func (t *Table) installString() {
	b := t.Types.Builtins()
	name := t.Strings.Intern("string")
	cls, _ := t.Define(t.Global, &Symbol{
		Name:  name,
		Kind:  SymbolClass,
		Flags: FlagBuiltin | FlagPublic,
	})
	scope := t.NewScope(ScopeClass, t.Global, cls, source.NoSpan)
	ty, _ := t.Types.InternClass(name, uint32(cls), nil)

	fields := []types.Field{
		{Name: t.Strings.Intern("data"), Type: t.Types.Intern(types.MakePointer(b.Char))},
		{Name: t.Strings.Intern("size"), Type: b.Uint},
	}
	t.Types.SetClassFields(ty, fields)
	data := &ClassData{Scope: scope, Type: ty}
	for _, f := range fields {
		fid, _ := t.Define(scope, &Symbol{Name: f.Name, Kind: SymbolField, Type: f.Type, Flags: FlagBuiltin})
		data.Fields = append(data.Fields, fid)
	}

	copier, _ := t.Define(scope, &Symbol{
		Name:  t.Strings.Intern(CopierName),
		Kind:  SymbolFunc,
		Type:  t.Types.InternFunc([]types.TypeID{ty}, ty),
		Flags: FlagBuiltin | FlagPublic | FlagMember,
		Func: &FuncData{
			ParamTypes: []types.TypeID{ty},
			Result:     ty,
			Declared:   true,
			Class:      cls,
			State:      BodyDone,
		},
	})
	data.Methods = []SymbolID{copier}

	sym := t.Sym(cls)
	sym.Type = ty
	sym.Class = data
	t.Builtins.String = cls
	t.Builtins.StringType = ty
	t.Builtins.StringCopy = copier
}
