package symbols

import (
	"errors"
	"fmt"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

// ErrNotFound is returned when no symbol with the requested name is visible.
var ErrNotFound = errors.New("symbol not found")

// DuplicateError reports a second definition of a name in the same scope.
type DuplicateError struct {
	Name     string
	Prev     SymbolID
	PrevSpan source.Span
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("Symbol '%s' is already defined.\nPrevious definition is at line:%d, col:%d", e.Name, e.PrevSpan.Line, e.PrevSpan.Col)
}

// AmbiguousError reports several equally good overload candidates.
type AmbiguousError struct {
	Name       string
	Candidates []SymbolID
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("Ambiguous function call to '%s' (%d candidates)", e.Name, len(e.Candidates))
}

// NoMatchError means functions named Name exist but none admits the
// arguments. It is a NotFound result.
type NoMatchError struct {
	Name       string
	Candidates []SymbolID
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("No matching function for call to '%s'", e.Name)
}

func (e *NoMatchError) Unwrap() error { return ErrNotFound }
