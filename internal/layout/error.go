package layout

import (
	"errors"
	"fmt"

	"github.com/rhysd/Dachs-sub001/internal/types"
)

var (
	// ErrPlaceholder: a template parameter survived instantiation.
	ErrPlaceholder = errors.New("placeholder type has no layout")
	// ErrUnresolved covers empty type slots and uninstantiated templates.
	ErrUnresolved = errors.New("unresolved type has no layout")
	ErrLength     = errors.New("array length does not fit the target")
)

// TypeError ties a layout failure to the type it happened on.
type TypeError struct {
	Type types.TypeID
	Err  error
}

func (e *TypeError) Error() string { return fmt.Sprintf("type#%d: %v", e.Type, e.Err) }

func (e *TypeError) Unwrap() error { return e.Err }

func typeErr(id types.TypeID, err error, cause ...error) *TypeError {
	if len(cause) > 0 {
		err = fmt.Errorf("%w: %w", err, cause[0])
	}
	return &TypeError{Type: id, Err: err}
}
