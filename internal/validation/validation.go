package validation

// Error marks input rejected before it reached any store. Callers match it
// with errors.As to distinguish bad input from internal faults.
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

func fail(msg string) error {
	return &Error{msg: msg}
}
