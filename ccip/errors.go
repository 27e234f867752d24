package ccip

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure of the request pipeline.
type Kind int

const (
	// InternalFault is any failure that is not one of the classified kinds.
	InternalFault Kind = iota
	MalformedEnvelope
	MalformedName
	MalformedArguments
	MissingPayload
	UnsupportedFunction
	UpstreamCallFailed
	MethodNotAllowed
)

var kindNames = map[Kind]string{
	InternalFault:       "InternalFault",
	MalformedEnvelope:   "MalformedEnvelope",
	MalformedName:       "MalformedName",
	MalformedArguments:  "MalformedArguments",
	MissingPayload:      "MissingPayload",
	UnsupportedFunction: "UnsupportedFunction",
	UpstreamCallFailed:  "UpstreamCallFailed",
	MethodNotAllowed:    "MethodNotAllowed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// StatusCode returns the HTTP status a failure of this kind is reported with.
func (k Kind) StatusCode() int {
	switch k {
	case MalformedEnvelope, MalformedName, MalformedArguments, MissingPayload, UnsupportedFunction:
		return http.StatusBadRequest
	case MethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified pipeline failure.
//
// Msg is safe to return to callers. Err holds the underlying cause and is
// only ever logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error wrapping cause, which may be nil.
func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or
// InternalFault if there is none.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return InternalFault
}

// PublicMessage returns the message that may be shown to a caller for err.
// Server-side failures always collapse to a single generic message.
func PublicMessage(err error) string {
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind.StatusCode() >= http.StatusInternalServerError {
		return GenericFailureMessage
	}
	return cerr.Msg
}

// GenericFailureMessage is returned for every server-side failure.
const GenericFailureMessage = "Failed to process request"
