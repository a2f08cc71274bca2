package copysem

import (
	"fmt"

	"github.com/rhysd/Dachs-sub001/internal/symbols"
)

// AmbiguousCopierError reports a class with several copy candidates.
type AmbiguousCopierError struct {
	Type       string
	Candidates []symbols.SymbolID
}

func (e *AmbiguousCopierError) Error() string {
	return fmt.Sprintf("Multiple copiers found for class '%s' (%d candidates)", e.Type, len(e.Candidates))
}

// PrivateCopierError reports a copier that is not visible from the copy site.
type PrivateCopierError struct {
	Type   string
	Copier symbols.SymbolID
}

func (e *PrivateCopierError) Error() string {
	return fmt.Sprintf("Copier of class '%s' is private and cannot be used here", e.Type)
}
