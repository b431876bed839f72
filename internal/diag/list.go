package diag

import (
	"errors"

	"go.uber.org/multierr"
)

// List accumulates recorded (non-fatal) diagnostics. The zero value is ready to use.
type List struct {
	errs []*Error
}

// Add appends err to the list.
func (l *List) Add(err *Error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

// Len returns the number of recorded errors.
func (l *List) Len() int {
	return len(l.errs)
}

// Errors returns the recorded errors in the order they were added.
func (l *List) Errors() []*Error {
	out := make([]*Error, len(l.errs))
	copy(out, l.errs)
	return out
}

// Err combines the recorded errors into a single error, or nil.
func (l *List) Err() error {
	var err error
	for _, e := range l.errs {
		err = multierr.Append(err, e)
	}
	return err
}

// Flatten splits a (possibly combined) error back into diagnostics. Errors
// that are not diagnostics are wrapped as generic css-blocks errors.
func Flatten(err error) []*Error {
	var out []*Error
	for _, e := range multierr.Errors(err) {
		var d *Error
		if errors.As(e, &d) {
			out = append(out, d)
			continue
		}
		out = append(out, &Error{Kind: KindError, Message: e.Error(), Cause: e})
	}
	return out
}
