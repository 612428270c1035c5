package chat

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse matches any MalformedResponseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed completion response")

// ErrCacheMiss is returned in cache-only mode when no stored reply exists.
var ErrCacheMiss = errors.New("reply not cached")

// ProviderError wraps a failure raised by the completion call. It is
// surfaced unchanged; the handler never retries.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion call (model %s): %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError reports a provider response without a usable
// choices[0].message.content path.
type MalformedResponseError struct {
	Model  string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s (model %s): %s", ErrMalformedResponse.Error(), e.Model, e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
