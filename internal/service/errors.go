// Package service implements the decision logic of the application:
// room membership management, schedule sharing and event placement.
// Every operation takes the caller's user ID explicitly and returns a
// typed *Error so that transport layers can map failures to status
// codes without inspecting storage errors.
package service

// Kind classifies a service failure.
type Kind int

const (
	// KindNotFound means the entity, membership or share does not exist
	// (or is not visible to the caller).
	KindNotFound Kind = iota + 1
	// KindPermissionDenied means a role or ownership check failed.
	KindPermissionDenied
	// KindConflict means the operation collides with existing state:
	// duplicate membership/share, overlapping event, or an unmet
	// role-transition precondition.
	KindConflict
	// KindInvalid means the input failed a validation the core owns
	// (malformed color, bad interval).
	KindInvalid
	// KindUnexpected means the storage layer failed. The underlying
	// error is retained for logging but never rendered to the caller.
	KindUnexpected
)

// Error is the failure type returned by every service operation.
// Reason is safe to show to API clients; cause is internal diagnostic
// detail reachable through Unwrap.
type Error struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Kind == KindUnexpected {
		// Never leak driver error text through Error(); the cause is
		// available via Unwrap for logging.
		return "unexpected internal error"
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.cause }

// NotFound builds a KindNotFound error.
func NotFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

// PermissionDenied builds a KindPermissionDenied error.
func PermissionDenied(reason string) *Error {
	return &Error{Kind: KindPermissionDenied, Reason: reason}
}

// Conflict builds a KindConflict error.
func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

// Invalid builds a KindInvalid error.
func Invalid(reason string) *Error {
	return &Error{Kind: KindInvalid, Reason: reason}
}

// Unexpected wraps a storage failure. The reason shown to clients is
// generic; err is kept as the cause.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Reason: "unexpected internal error", cause: err}
}

// KindOf extracts the Kind from err, or KindUnexpected when err is not
// a service error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnexpected
}
