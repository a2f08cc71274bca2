package layout

import (
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Strategy is how a value of some type is copied on assignment and
// parameter passing.
type Strategy uint8

const (
	// CopyNone: unit, nothing to copy.
	CopyNone Strategy = iota
	// CopyBits: scalars and function values.
	CopyBits
	// CallCopier: the type has a resolved copier.
	CallCopier
	// DeepFields: allocate fresh storage and copy every slot by its own plan.
	DeepFields
	// CopyShallow: pointer values keep pointing at the same pointee.
	CopyShallow
	// ShareReference: dynamic arrays and dictionaries are shared.
	ShareReference
)

var strategyNames = [...]string{"none", "bits", "copier", "deep", "shallow", "share"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// CopierLookup exposes resolved copiers per concrete type.
type CopierLookup interface {
	Lookup(types.TypeID) (symbols.SymbolID, bool)
}

// Plan is the copy rule of one type. Slot plans are looked up per slot type,
// which keeps plans of self-referential classes finite.
type Plan struct {
	Type     types.TypeID
	Strategy Strategy
	Copier   symbols.SymbolID
	Slots    []types.TypeID
}

// CopyPlan returns the copy rule of t. A type without a strategy is an
// internal error.
func (e *LayoutEngine) CopyPlan(t types.TypeID, copiers CopierLookup) Plan {
	p := Plan{Type: t}
	switch e.Types.Kind(t) {
	case types.KindUnit:
		p.Strategy = CopyNone
	case types.KindBool, types.KindChar, types.KindInt, types.KindUint, types.KindFloat, types.KindFunc:
		p.Strategy = CopyBits
	case types.KindPointer:
		p.Strategy = CopyShallow
	case types.KindDict:
		p.Strategy = ShareReference
	case types.KindArray:
		tt := e.Types.MustLookup(t)
		if tt.Count == types.DynamicLength {
			p.Strategy = ShareReference
			break
		}
		p.Strategy = DeepFields
	case types.KindClass:
		if copiers != nil {
			if c, ok := copiers.Lookup(t); ok {
				p.Strategy = CallCopier
				p.Copier = c
				break
			}
		}
		p.Strategy = DeepFields
	case types.KindTuple, types.KindEnv, types.KindClosure, types.KindRange, types.KindQualified:
		p.Strategy = DeepFields
	default:
		diag.Internal("layout: no copy strategy for %s", types.Label(e.Types, nil, t))
	}
	if p.Strategy == DeepFields {
		l, err := e.LayoutOf(t)
		if err != nil {
			diag.Internal("layout: %v", err)
		}
		p.Slots = l.Slots
	}
	return p
}
