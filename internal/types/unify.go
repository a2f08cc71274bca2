package types

// Unify matches pattern against a concrete type, binding placeholders of
// pattern. It reports whether the two can be made equal. bind may already hold
// bindings from previous arguments; conflicting bindings fail.
func (in *Interner) Unify(pattern, concrete TypeID, bind map[TypeID]TypeID) bool {
	if pattern == concrete {
		return true
	}
	pt, ok := in.Lookup(pattern)
	if !ok {
		return false
	}
	if pt.Kind == KindPlaceholder {
		if prev, ok := bind[pattern]; ok {
			return prev == concrete
		}
		bind[pattern] = concrete
		return true
	}
	ct, ok := in.Lookup(concrete)
	if !ok || pt.Kind != ct.Kind {
		return false
	}
	switch pt.Kind {
	case KindArray:
		if pt.Count != ct.Count && pt.Count != DynamicLength {
			return false
		}
		return in.Unify(pt.Elem, ct.Elem, bind)
	case KindPointer, KindRange:
		return in.Unify(pt.Elem, ct.Elem, bind)
	case KindQualified:
		return pt.Qual == ct.Qual && in.Unify(pt.Elem, ct.Elem, bind)
	case KindDict:
		return in.Unify(pt.Key, ct.Key, bind) && in.Unify(pt.Elem, ct.Elem, bind)
	case KindClass:
		pi, ci := in.classes[pt.Payload], in.classes[ct.Payload]
		return pi.Decl == ci.Decl && in.unifyList(pi.Args, ci.Args, bind)
	case KindTuple:
		return in.unifyList(in.tuples[pt.Payload].Elems, in.tuples[ct.Payload].Elems, bind)
	case KindFunc:
		pf, cf := in.fns[pt.Payload], in.fns[ct.Payload]
		return in.unifyList(pf.Params, cf.Params, bind) && in.Unify(pf.Result, cf.Result, bind)
	}
	return false
}

func (in *Interner) unifyList(ps, cs []TypeID, bind map[TypeID]TypeID) bool {
	if len(ps) != len(cs) {
		return false
	}
	for i := range ps {
		if !in.Unify(ps[i], cs[i], bind) {
			return false
		}
	}
	return true
}
