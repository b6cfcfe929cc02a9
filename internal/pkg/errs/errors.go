package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
	ErrTooMany  = errors.New("too many requests")
	ErrInternal = errors.New("internal")

	// Chat core taxonomy.
	ErrEmbeddingUnavailable = errors.New("embedding provider not configured")
	ErrRateLimited          = errors.New("rate limited")
	ErrProvider             = errors.New("provider error")
	ErrIndexUnavailable     = errors.New("vector index not configured")
	ErrIndexOperation       = errors.New("vector index operation failed")
	ErrModelDecommissioned  = errors.New("model decommissioned")
	ErrModel                = errors.New("model call failed")
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrBusy                 = errors.New("operation already running")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// RateLimitError carries the upstream Retry-After hint when one was provided.
// errors.Is(err, ErrRateLimited) holds for every instance.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// IndexOperationError keeps the backend status and body for diagnostics.
type IndexOperationError struct {
	Op     string
	Status int
	Body   string
}

func (e *IndexOperationError) Error() string {
	return fmt.Sprintf("vector index %s failed: status=%d body=%s", e.Op, e.Status, e.Body)
}

func (e *IndexOperationError) Is(target error) bool {
	return target == ErrIndexOperation
}
