package mono

import (
	"fmt"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

// RecursiveError is the fatal RecursiveTemplateInstantiation error: an
// expansion that needs its own unfinished result, or one nested deeper than
// the configured limit.
type RecursiveError struct {
	Chain []string
	Depth int
}

func (e *RecursiveError) Error() string {
	if e.Depth > 0 {
		return fmt.Sprintf("Recursive template instantiation exceeded depth %d: %s", e.Depth, strings.Join(e.Chain, " -> "))
	}
	return "Recursive template instantiation: " + strings.Join(e.Chain, " -> ")
}

// EscapeError reports a placeholder left in an instantiated symbol.
type EscapeError struct {
	Instance string
	Type     string
	Span     source.Span
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("Placeholder type '%s' escaped instantiation of '%s'", e.Type, e.Instance)
}
