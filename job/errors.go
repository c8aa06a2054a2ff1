package job

import (
	"errors"
	"fmt"

	"cogforge/storage"
)

// Kind classifies a job failure. Failures are always scoped to the job that
// produced them; one job's failure never aborts its siblings.
type Kind int

const (
	// KindNotFound means the source object is absent.
	KindNotFound Kind = iota + 1
	// KindAccessDenied means the caller may not read the source.
	KindAccessDenied
	// KindTranscodeFailure means the engine failed or the artifact did not
	// pass structural validation. The artifact is discarded.
	KindTranscodeFailure
	// KindStorageIO means an existence check, copy, download, or upload
	// failed after the bounded retry budget.
	KindStorageIO
	// KindInvalidInput means the job's source reference is malformed or
	// unreadable. Raised before any resource is allocated.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAccessDenied:
		return "access denied"
	case KindTranscodeFailure:
		return "transcode failure"
	case KindStorageIO:
		return "storage I/O failure"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown failure"
	}
}

// Error is a job failure carrying its classification, the key it concerns,
// and the underlying cause.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, key string, err error) *Error {
	return &Error{Kind: kind, Key: key, Err: err}
}

// classifyStorage maps a store error onto the failure taxonomy.
func classifyStorage(key string, err error) *Error {
	switch {
	case storage.IsNotFound(err):
		return newError(KindNotFound, key, err)
	case storage.IsAccessDenied(err):
		return newError(KindAccessDenied, key, err)
	default:
		return newError(KindStorageIO, key, err)
	}
}

// KindOf returns the classification of err, or 0 if err is not a job error.
func KindOf(err error) Kind {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}
	return 0
}
