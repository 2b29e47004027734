package mealdb

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a catalog call failed.
type Kind string

const (
	KindNetwork   Kind = "network-unreachable"
	KindTimeout   Kind = "timeout"
	KindServer    Kind = "server-error"
	KindNotFound  Kind = "not-found"
	KindMalformed Kind = "malformed-response"
	// KindCanceled is a call abandoned by its caller. The wrapped error
	// matches context.Canceled.
	KindCanceled Kind = "canceled"
	// KindUnknown covers unexpected statuses and request construction errors.
	KindUnknown Kind = "unknown"
)

// UserMessage is the human-readable message shown for a failure of this kind.
func (k Kind) UserMessage() string {
	switch k {
	case KindNetwork:
		return "Network connection failed. Please check your internet connection."
	case KindTimeout:
		return "Request timed out. The server might be slow. Please try again."
	case KindServer:
		return "Server error. Please try again in a few minutes."
	case KindNotFound:
		return "Recipe service not found. Please try again later."
	case KindCanceled:
		return "The request was cancelled."
	default:
		return "Something went wrong. Please try again."
	}
}

// LookupError is returned by every failing Client call.
type LookupError struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *LookupError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mealdb %s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("mealdb %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("mealdb %s: %s", e.Op, e.Kind)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown if err is not a LookupError.
func KindOf(err error) Kind {
	var lerr *LookupError
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return KindUnknown
}

// UserMessage maps any error to the message category shown to users.
func UserMessage(err error) string {
	return KindOf(err).UserMessage()
}

func transportError(op string, err error) *LookupError {
	kind := KindNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &LookupError{Kind: kind, Op: op, Err: err}
}

func statusError(op string, status int) *LookupError {
	kind := KindUnknown
	switch {
	case status == 404:
		kind = KindNotFound
	case status >= 500:
		kind = KindServer
	}
	return &LookupError{Kind: kind, Op: op, Status: status}
}
