package tx

import "fmt"

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	// NotValid is a permanent failure: malformed bytes, wrong type code,
	// invariant violations, size overflow, double-sign. Callers must drop
	// the transaction and, for peer traffic, blacklist the sender.
	NotValid ErrorKind = "NOT_VALID"

	// NotCurrentlyValid is a recoverable failure: fee below the current
	// minimum, EC-block ahead of the chain or mismatched, account
	// restriction failing at current state. Callers may retry later.
	NotCurrentlyValid ErrorKind = "NOT_CURRENTLY_VALID"

	// IllegalState indicates a programmer error: reading id/fullHash/
	// index before they are defined. Never recovered from; indicates a
	// bug in the caller.
	IllegalState ErrorKind = "ILLEGAL_STATE"
)

// ValidationError is the single error type surfaced by the codec, builder,
// and validator. Code is a short machine-readable label; Msg carries
// human-readable detail.
type ValidationError struct {
	Kind ErrorKind
	Code string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Msg)
}

// Is supports errors.Is(err, &ValidationError{Kind: NotValid}) style
// matching: the target's Kind must match, and its Code too when set.
func (e *ValidationError) Is(target error) bool {
	other, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	if other.Code == "" {
		return e.Kind == other.Kind
	}
	return e.Kind == other.Kind && e.Code == other.Code
}

func notValid(code, msg string) error {
	return &ValidationError{Kind: NotValid, Code: code, Msg: msg}
}

func notCurrentlyValid(code, msg string) error {
	return &ValidationError{Kind: NotCurrentlyValid, Code: code, Msg: msg}
}

func illegalState(code, msg string) error {
	return &ValidationError{Kind: IllegalState, Code: code, Msg: msg}
}

// KindOf returns the ErrorKind of err if it is a *ValidationError, and ok=false
// otherwise.
func KindOf(err error) (ErrorKind, bool) {
	ve, ok := err.(*ValidationError)
	if !ok || ve == nil {
		return "", false
	}
	return ve.Kind, true
}
