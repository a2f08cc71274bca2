package types

// IsScalar reports types handled by value: bool, char and numbers.
func (in *Interner) IsScalar(id TypeID) bool {
	switch in.Kind(id) {
	case KindBool, KindChar, KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// IsAggregate reports types represented by a pointer to storage.
func (in *Interner) IsAggregate(id TypeID) bool {
	switch in.Kind(id) {
	case KindClass, KindTuple, KindArray, KindDict, KindRange, KindQualified, KindClosure, KindEnv:
		return true
	}
	return false
}

func (in *Interner) IsNumeric(id TypeID) bool {
	switch in.Kind(id) {
	case KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// Children returns the types directly reachable from id. Class instances
// expose their template arguments; their fields are derived from those.
func (in *Interner) Children(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindArray, KindPointer, KindRange, KindQualified:
		return []TypeID{tt.Elem}
	case KindDict:
		return []TypeID{tt.Key, tt.Elem}
	case KindClass:
		return in.classes[tt.Payload].Args
	case KindTuple:
		return in.tuples[tt.Payload].Elems
	case KindFunc:
		info := in.fns[tt.Payload]
		return append(append([]TypeID(nil), info.Params...), info.Result)
	case KindClosure:
		info := in.closures[tt.Payload]
		return []TypeID{info.Fn, info.Env}
	case KindEnv:
		return in.envs[tt.Payload].Fields
	}
	return nil
}

// ContainsPlaceholder reports whether a template parameter is reachable.
func (in *Interner) ContainsPlaceholder(id TypeID) bool {
	if id == NoTypeID {
		return false
	}
	if v, ok := in.placeholderMemo[id]; ok {
		return v
	}
	res := in.Kind(id) == KindPlaceholder
	if !res {
		for _, c := range in.Children(id) {
			if in.ContainsPlaceholder(c) {
				res = true
				break
			}
		}
	}
	in.placeholderMemo[id] = res
	return res
}

// Placeholders lists distinct template parameters reachable from id in
// first-encounter order.
func (in *Interner) Placeholders(id TypeID) []TypeID {
	var out []TypeID
	seen := map[TypeID]bool{}
	var walk func(TypeID)
	walk = func(t TypeID) {
		if seen[t] || !in.ContainsPlaceholder(t) {
			return
		}
		seen[t] = true
		if in.Kind(t) == KindPlaceholder {
			out = append(out, t)
			return
		}
		for _, c := range in.Children(t) {
			walk(c)
		}
	}
	walk(id)
	return out
}

// Walk visits id and everything reachable from it once, including class
// fields. Returning false from fn stops descent into that type.
func (in *Interner) Walk(id TypeID, fn func(TypeID) bool) {
	seen := map[TypeID]bool{}
	var walk func(TypeID)
	walk = func(t TypeID) {
		if t == NoTypeID || seen[t] {
			return
		}
		seen[t] = true
		if !fn(t) {
			return
		}
		for _, c := range in.Children(t) {
			walk(c)
		}
		if info, ok := in.ClassInfo(t); ok {
			for _, f := range info.Fields {
				walk(f.Type)
			}
		}
	}
	walk(id)
}
