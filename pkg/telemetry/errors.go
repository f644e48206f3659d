package telemetry

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two failure classes. A *PollError matches exactly
// one of them under errors.Is.
var (
	ErrNetwork = errors.New("telemetry: network failure")
	ErrDecode  = errors.New("telemetry: decode failure")
)

// FailureKind classifies a failed poll.
type FailureKind int

const (
	// NetworkFailure covers transport errors and non-2xx responses.
	NetworkFailure FailureKind = iota + 1
	// DecodeFailure covers bodies that are not a conforming reading.
	DecodeFailure
)

// String returns the log-friendly name of the kind.
func (k FailureKind) String() string {
	switch k {
	case NetworkFailure:
		return "network"
	case DecodeFailure:
		return "decode"
	default:
		return "unknown"
	}
}

// PollError describes one failed poll.
type PollError struct {
	Kind       FailureKind
	Seq        uint64
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *PollError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("poll %d: %s failure (HTTP %d): %v", e.Seq, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("poll %d: %s failure: %v", e.Seq, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PollError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching e.Kind.
func (e *PollError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == NetworkFailure
	case ErrDecode:
		return e.Kind == DecodeFailure
	}
	return false
}
