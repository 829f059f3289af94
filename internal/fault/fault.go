package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so callers can map it to a status code
// without string matching.
type Kind string

const (
	// KindInput marks missing or invalid request fields. No external call is
	// attempted once raised.
	KindInput Kind = "input"
	// KindComposition marks an undecodable source image or an empty layout.
	KindComposition Kind = "composition"
	// KindService marks a failed call to an external AI service.
	KindService Kind = "service"
	// KindDescriptionParse marks a vision response with no recoverable JSON.
	KindDescriptionParse Kind = "description_parse"
	// KindSynthesisJSON marks an intermediate prompt-derivation response that
	// could not be parsed as JSON.
	KindSynthesisJSON Kind = "synthesis_json"
	// KindNormalization marks a synthesis response with no usable image URL.
	KindNormalization Kind = "normalization"
	// KindEdit marks a failed single-image edit.
	KindEdit Kind = "edit"
	// KindNotFound marks a missing stored run.
	KindNotFound Kind = "not_found"
)

// Error carries a failure kind alongside the human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error without an underlying cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err, walking the wrap chain. Unclassified
// errors report KindService since they only arise from external calls.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindService
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
