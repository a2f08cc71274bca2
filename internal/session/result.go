package session

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/layout"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/sema"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Result is the outcome of Analyze.
type Result struct {
	Session uuid.UUID
	Unit    string
	Sema    *sema.Result
	// Shapes is empty when the unit has errors.
	Shapes      []Shape
	Diagnostics []diag.Diagnostic
	Errors      int
	Warnings    int
}

// OK reports whether the unit is free of errors.
func (r *Result) OK() bool { return r.Errors == 0 }

// Shape is the value representation of one concrete aggregate the unit
// uses: its storage layout and its copy rule.
type Shape struct {
	Type   types.TypeID
	Label  string
	Layout layout.TypeLayout
	Plan   layout.Plan
}

// collectShapes gathers the aggregates reachable from typed expressions,
// class instantiations, closure environments and the copier table, in first
// encounter order.
func (s *Session) collectShapes(res *sema.Result) []Shape {
	var shapes []Shape
	seen := make(map[types.TypeID]bool)
	add := func(t types.TypeID) {
		s.Types.Walk(t, func(c types.TypeID) bool {
			if seen[c] || s.Types.ContainsPlaceholder(c) {
				return false
			}
			seen[c] = true
			if s.Types.IsAggregate(c) {
				shapes = append(shapes, Shape{Type: c, Label: types.Label(s.Types, s.Strings, c)})
			}
			return true
		})
	}
	for _, x := range s.Tree.Exprs.Arena.All() {
		add(x.Type)
	}
	for _, e := range res.Instances.Entries() {
		if e.Kind == mono.EntryClass {
			add(e.Type)
		}
	}
	for _, m := range res.Captures.All() {
		add(m.Env)
	}
	for _, row := range res.Copiers.Table() {
		add(row.Type)
	}
	return shapes
}

func (s *Session) planCopies(res *sema.Result, shapes []Shape) string {
	copiers := 0
	for i := range shapes {
		shapes[i].Plan = s.Layout.CopyPlan(shapes[i].Type, res.Copiers)
		if shapes[i].Plan.Strategy == layout.CallCopier {
			copiers++
		}
	}
	return strconv.Itoa(copiers) + " copiers"
}

// computeLayouts fills every shape. The unit is error free at this point,
// so a type without a layout is an internal error.
func (s *Session) computeLayouts(shapes []Shape) string {
	for i := range shapes {
		l, err := s.Layout.LayoutOf(shapes[i].Type)
		if err != nil {
			diag.Internal("layout of %s: %v", shapes[i].Label, err)
		}
		shapes[i].Layout = l
	}
	return strconv.Itoa(len(shapes)) + " shapes"
}
