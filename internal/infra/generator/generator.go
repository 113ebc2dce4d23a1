// Package generator talks to the external text-generation API that drafts
// seat assignment plans.
package generator

//go:generate mockgen -source=generator.go -destination=generator_mock.go -package=generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Request struct {
	System    string
	User      string
	Model     string
	MaxTokens int
	JSONMode  bool
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Kind string

const (
	KindNetwork       Kind = "network"
	KindTimeout       Kind = "timeout"
	KindNonOKStatus   Kind = "non_ok_status"
	KindEmptyResponse Kind = "empty_response"
	KindCanceled      Kind = "canceled"
)

// Error is returned by every Generator implementation.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNonOKStatus:
		return fmt.Sprintf("generator: %s (status %d): %s", e.Kind, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("generator: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("generator: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may try the same request again.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindNonOKStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	default:
		return false
	}
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// classify maps a transport error to an *Error, looking at ctx first so a
// deadline is never reported as a plain network failure.
func classify(ctx context.Context, err error) *Error {
	if ge, ok := AsError(err); ok {
		return ge
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Err: err}
	default:
		return &Error{Kind: KindNetwork, Err: err}
	}
}
