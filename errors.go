package invoicepdf

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Engine].
	ErrClosed = errors.New("invoicepdf: engine is closed")

	// ErrCancelled reports that the destination dialog was dismissed.
	// It is an outcome, not a failure: nothing was written. Its message is
	// the text carried by the cancelled [Response].
	ErrCancelled = errors.New("Save cancelled by user")
)

// Kind classifies an export failure.
type Kind int

const (
	// KindUnknown is reported for errors that carry no Kind.
	KindUnknown Kind = iota
	// KindEngineUnavailable means the export engine could not be started.
	KindEngineUnavailable
	// KindRenderTimeout means loading or capturing the document ran past
	// its deadline.
	KindRenderTimeout
	// KindRenderFailure means the markup could not be loaded or captured.
	KindRenderFailure
	// KindPersistenceFailure means the document could not be written.
	KindPersistenceFailure
	// KindInvalidRecord means opt-in validation rejected the record.
	KindInvalidRecord
)

func (k Kind) String() string {
	switch k {
	case KindEngineUnavailable:
		return "engine_unavailable"
	case KindRenderTimeout:
		return "render_timeout"
	case KindRenderFailure:
		return "render_failure"
	case KindPersistenceFailure:
		return "persistence_failure"
	case KindInvalidRecord:
		return "invalid_record"
	default:
		return "unknown"
	}
}

// Error is a classified export failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *[Error] in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
