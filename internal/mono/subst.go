package mono

import (
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Subst replaces bound placeholders inside types. Unbound placeholders are
// kept, so a failed binding surfaces as an escape.
type Subst struct {
	Types *types.Interner
	Bind  map[types.TypeID]types.TypeID

	inst  *Instantiator
	cache map[types.TypeID]types.TypeID
}

// NewSubst creates a substitution without class field instantiation.
func NewSubst(in *types.Interner, bind map[types.TypeID]types.TypeID) *Subst {
	return &Subst{Types: in, Bind: bind}
}

// Type applies the substitution to id.
func (s *Subst) Type(id types.TypeID) types.TypeID {
	if s == nil || s.Types == nil || id == types.NoTypeID || !s.Types.ContainsPlaceholder(id) {
		return id
	}
	if s.cache == nil {
		s.cache = make(map[types.TypeID]types.TypeID, 16)
	} else if cached, ok := s.cache[id]; ok {
		return cached
	}
	out := s.typeNoCache(id)
	s.cache[id] = out
	return out
}

func (s *Subst) types(ids []types.TypeID) []types.TypeID {
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = s.Type(id)
	}
	return out
}

func (s *Subst) typeNoCache(id types.TypeID) types.TypeID {
	tt := s.Types.MustLookup(id)
	switch tt.Kind {
	case types.KindPlaceholder:
		if repl, ok := s.Bind[id]; ok && repl != types.NoTypeID {
			return repl
		}
		return id
	case types.KindArray, types.KindPointer, types.KindRange, types.KindQualified:
		clone := tt
		clone.Elem = s.Type(tt.Elem)
		return s.Types.Intern(clone)
	case types.KindDict:
		clone := tt
		clone.Key = s.Type(tt.Key)
		clone.Elem = s.Type(tt.Elem)
		return s.Types.Intern(clone)
	case types.KindTuple:
		info, _ := s.Types.TupleInfo(id)
		return s.Types.InternTuple(s.types(info.Elems))
	case types.KindFunc:
		info, _ := s.Types.FuncInfo(id)
		return s.Types.InternFunc(s.types(info.Params), s.Type(info.Result))
	case types.KindClass:
		info, _ := s.Types.ClassInfo(id)
		args := s.types(info.Args)
		if s.inst != nil {
			return s.inst.classInstance(symbols.SymbolID(info.Decl), args)
		}
		out, _ := s.Types.InternClass(info.Name, info.Decl, args)
		return out
	}
	return id
}
