package diag

import (
	"errors"
	"fmt"
)

// InternalError is an invariant violation inside the compiler. It is fatal
// and must never be turned into a user diagnostic.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Msg
}

// Internal aborts the current pass. Sessions recover the panic and return
// the error to the caller.
func Internal(format string, args ...any) {
	panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
}

// RecoverInternal converts a recovered *InternalError into *errp. Other
// panics are re-raised.
func RecoverInternal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*InternalError)
	if !ok {
		panic(r)
	}
	*errp = ie
}

func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
