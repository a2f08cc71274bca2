package types

import (
	"fmt"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

// Label returns a user-friendly label for a TypeID. strs may be nil, in which
// case class and placeholder names are replaced by their ids.
func Label(in *Interner, strs *source.Interner, id TypeID) string {
	return labelDepth(in, strs, id, 0)
}

func name(strs *source.Interner, id source.StringID, fallback string) string {
	if strs != nil {
		if s, ok := strs.Lookup(id); ok && s != "" {
			return s
		}
	}
	return fallback
}

func labelList(in *Interner, strs *source.Interner, ids []TypeID, depth int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = labelDepth(in, strs, id, depth+1)
	}
	return strings.Join(parts, ", ")
}

func labelDepth(in *Interner, strs *source.Interner, id TypeID, depth int) string {
	if id == NoTypeID || in == nil {
		return "?"
	}
	if depth > 8 {
		return "..."
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindBool, KindChar, KindInt, KindUint, KindFloat:
		return tt.Kind.String()
	case KindClass:
		info := in.classes[tt.Payload]
		n := name(strs, info.Name, fmt.Sprintf("class#%d", info.Decl))
		if len(info.Args) == 0 {
			return n
		}
		return n + "(" + labelList(in, strs, info.Args, depth) + ")"
	case KindTuple:
		return "(" + labelList(in, strs, in.tuples[tt.Payload].Elems, depth) + ")"
	case KindFunc:
		info := in.fns[tt.Payload]
		return "func(" + labelList(in, strs, info.Params, depth) + ") : " + labelDepth(in, strs, info.Result, depth+1)
	case KindGenericFunc:
		return fmt.Sprintf("template func#%d", in.generics[tt.Payload])
	case KindArray:
		elem := labelDepth(in, strs, tt.Elem, depth+1)
		if tt.Count == DynamicLength {
			return "[" + elem + "]"
		}
		return fmt.Sprintf("[%s; %d]", elem, tt.Count)
	case KindPointer:
		return "pointer(" + labelDepth(in, strs, tt.Elem, depth+1) + ")"
	case KindDict:
		return "{" + labelDepth(in, strs, tt.Key, depth+1) + " => " + labelDepth(in, strs, tt.Elem, depth+1) + "}"
	case KindRange:
		return "range(" + labelDepth(in, strs, tt.Elem, depth+1) + ")"
	case KindQualified:
		return "maybe " + labelDepth(in, strs, tt.Elem, depth+1)
	case KindClosure:
		info := in.closures[tt.Payload]
		return fmt.Sprintf("lambda#%d%s", info.Lambda, strings.TrimPrefix(labelDepth(in, strs, info.Fn, depth+1), "func"))
	case KindEnv:
		info := in.envs[tt.Payload]
		return fmt.Sprintf("env#%d(%s)", info.Lambda, labelList(in, strs, info.Fields, depth))
	case KindPlaceholder:
		info := in.placeholders[tt.Payload]
		return "template(" + name(strs, info.Name, fmt.Sprintf("T%d", info.Index)) + ")"
	}
	return "?"
}
