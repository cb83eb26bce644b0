package leaderboard

import (
	"errors"
	"fmt"
)

// Kind classifies a leaderboard failure.
type Kind int

const (
	// KindFetchFailed covers transport errors and non-200 responses.
	KindFetchFailed Kind = iota + 1
	// KindMalformedResponse covers bodies that do not match a known shape.
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindFetchFailed:
		return "fetch failed"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// Error is the single error type reported by a leaderboard run.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewFetchFailed wraps err as a fetch failure. statusCode is 0 when no
// response was received.
func NewFetchFailed(op string, statusCode int, err error) *Error {
	return &Error{Kind: KindFetchFailed, Op: op, StatusCode: statusCode, Err: err}
}

// NewMalformed wraps err as a malformed response.
func NewMalformed(op string, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

// IsFetchFailed reports whether err (or any error in its chain) is a fetch failure.
func IsFetchFailed(err error) bool {
	return KindOf(err) == KindFetchFailed
}

// IsMalformed reports whether err (or any error in its chain) is a malformed response.
func IsMalformed(err error) bool {
	return KindOf(err) == KindMalformedResponse
}
