package diag

import "slices"

// Bag collects the diagnostics of one session.
type Bag struct {
	items         []Diagnostic
	max           int
	dropped       int
	droppedErrors int
}

// NewBag creates a bag holding at most max diagnostics (0 means unlimited).
func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{items: make([]Diagnostic, 0, min(max, 64)), max: max}
}

// Add добавляет диагностику, учитывая лимит.
// Ошибки сверх лимита не теряются бесследно: они считаются в Dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		if d.Severity >= SevError {
			b.droppedErrors++
		}
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped is the number of diagnostics refused because of the limit.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) Len() int { return len(b.items) }

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic { return b.items }

// Count returns how many diagnostics have exactly severity sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

// CountErrors counts the kept diagnostics of error severity.
func (b *Bag) CountErrors() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

// HasErrors is also true when the only errors were dropped at the limit.
func (b *Bag) HasErrors() bool { return b.droppedErrors > 0 || b.CountErrors() > 0 }

func (b *Bag) HasWarnings() bool { return b.Count(SevWarning) > 0 }

// Filter returns diagnostics with the given code.
func (b *Bag) Filter(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders by position, then severity (errors first), then code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		switch {
		case x.Primary != y.Primary:
			if x.Primary.Less(y.Primary) {
				return -1
			}
			return 1
		case x.Severity != y.Severity:
			return int(y.Severity) - int(x.Severity)
		default:
			return int(x.Code) - int(y.Code)
		}
	})
}
