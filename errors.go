package streamenc

import "fmt"

// Code identifies the category of a failure raised by the encoder. All
// encoder failures are fatal to the instance that raised them; see
// EncodeError.
type Code int

const (
	// CircularStructure means a container value was already open on the
	// frame stack when it was submitted again.
	CircularStructure Code = iota
	// UnsupportedType means the classifier could not place a value and
	// the primitive encoder does not accept it.
	UnsupportedType
	// StreamEnded means a RecordSource or ByteSource was already
	// exhausted when it was submitted.
	StreamEnded
	// StreamStateInvalid means a RecordSource or ByteSource was already
	// in flowing/push mode when it was submitted.
	StreamStateInvalid
	// StreamError means an input stream reported a terminal error.
	StreamError
	// DeferredRejected means a Deferred rejected instead of resolving.
	DeferredRejected
	// ReplacerFailure means a user replacer function or JSONer hook
	// panicked while being invoked.
	ReplacerFailure
)

func (c Code) String() string {
	switch c {
	case CircularStructure:
		return "CircularStructure"
	case UnsupportedType:
		return "UnsupportedType"
	case StreamEnded:
		return "StreamEnded"
	case StreamStateInvalid:
		return "StreamStateInvalid"
	case StreamError:
		return "StreamError"
	case DeferredRejected:
		return "DeferredRejected"
	case ReplacerFailure:
		return "ReplacerFailure"
	default:
		return "Unknown"
	}
}

// EncodeError is the single error type surfaced by an Encoder. Once an
// Encoder has produced an EncodeError from Read, it is destroyed: all
// subsequent calls to Read return the same error.
//
// A typed, wrapped error lets callers match with errors.As rather than
// maintaining an ad-hoc collection of sentinel values.
type EncodeError struct {
	Code Code
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Err == nil {
		if e.Path == "" {
			return fmt.Sprintf("streamenc: %s", e.Code)
		}
		return fmt.Sprintf("streamenc: %s at %s", e.Code, e.Path)
	}
	if e.Path == "" {
		return fmt.Sprintf("streamenc: %s: %s", e.Code, e.Err)
	}
	return fmt.Sprintf("streamenc: %s at %s: %s", e.Code, e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func newError(code Code, path string, cause error) *EncodeError {
	return &EncodeError{Code: code, Path: path, Err: cause}
}
