// Package coordinator implements the high-level Zigbee coordinator façade:
// the request/wait-for-reply engine, the startup handshake, the typed
// operations over the MT command catalog, built-in event bridges, and the
// NV-memory adapter.
package coordinator

import "fmt"

// Kind is the flat error taxonomy every fallible coordinator operation
// reports through. Lower-layer errors (codec, transport) are preserved via
// Unwrap rather than discarded.
type Kind string

const (
	KindSerialOpen           Kind = "serial_open"
	KindSerialRead           Kind = "serial_read"
	KindSerialWrite          Kind = "serial_write"
	KindInvalidStartOfFrame  Kind = "invalid_start_of_frame"
	KindInvalidFcs           Kind = "invalid_fcs"
	KindInvalidTypeSubsystem Kind = "invalid_type_subsystem"
	KindInvalidMessageType   Kind = "invalid_message_type"
	KindInvalidCommand       Kind = "invalid_command"
	KindNoCommandWithName    Kind = "no_command_with_name"
	KindResponseMismatch     Kind = "response_mismatch"
	KindInvalidResponse      Kind = "invalid_response"
	KindSubscriptionError    Kind = "subscription_error"
	KindInterpanMode         Kind = "interpan_mode"
	KindDurationTooLong      Kind = "duration_too_long"
	KindInvalidChannel       Kind = "invalid_channel"
	KindCoordinatorOpen      Kind = "coordinator_open"
	KindNoResponse           Kind = "no_response"
	KindNoRequest            Kind = "no_request"
	KindCommandStatusFailure Kind = "command_status_failure"
	KindNvMemoryAdapter      Kind = "nv_memory_adapter"
)

// Error is the single error type every exported coordinator operation
// returns. It carries a Kind for programmatic dispatch and wraps whatever
// lower-layer error produced it, if any.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("coordinator: %s", e.Kind)
	}
	return fmt.Sprintf("coordinator: %s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrNoResponse) style comparisons against the
// package's sentinel errors, matching by Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors for errors.Is comparisons against a specific Kind,
// without caring which lower-layer error (if any) is wrapped.
var (
	ErrNoResponse      = &Error{Kind: KindNoResponse}
	ErrNoRequest       = &Error{Kind: KindNoRequest}
	ErrInterpanMode    = &Error{Kind: KindInterpanMode}
	ErrDurationTooLong = &Error{Kind: KindDurationTooLong}
	ErrInvalidChannel  = &Error{Kind: KindInvalidChannel}
	ErrCoordinatorOpen = &Error{Kind: KindCoordinatorOpen}
	ErrSubscription    = &Error{Kind: KindSubscriptionError}
)
