package upstream

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal upstream failure.
type Kind int

const (
	KindRateLimited Kind = iota // 429 after all retries
	KindTimeout                 // request timeout after all retries
	KindBadStatus               // any other non-2xx status, not retried
	KindTransport               // connection-level error, not retried
	KindInvalidBody             // body did not decode as the expected shape
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindBadStatus:
		return "bad_status"
	case KindTransport:
		return "transport"
	case KindInvalidBody:
		return "invalid_body"
	default:
		return "unknown"
	}
}

// Error is a terminal upstream failure after local retry handling.
type Error struct {
	Kind   Kind
	Status int // HTTP status for KindBadStatus / KindRateLimited
	URL    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %s: %v", e.Kind, e.URL, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s (%d): %s", e.Kind, e.Status, e.URL)
	}
	return fmt.Sprintf("upstream %s: %s", e.Kind, e.URL)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain, or (0, false) when
// the error is not an upstream failure.
func KindOf(err error) (Kind, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return 0, false
}
