package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure.
type ErrorKind string

const (
	KindTimeout ErrorKind = "timeout" // Page settle or selector wait exceeded its bound
	KindFetch   ErrorKind = "fetch"   // Navigation, network or browser failure
)

// ErrNotOpen is returned by Fetch before Open or after Close.
var ErrNotOpen = errors.New("browser session is not open")

// FetchError describes why a page could not be fetched.
type FetchError struct {
	URL   string    // Page that was being fetched
	Kind  ErrorKind // Timeout or generic failure
	Stage string    // Step that failed, e.g. "loading page"
	Err   error     // Underlying error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a FetchError of kind KindTimeout.
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindTimeout
}

// newFetchError wraps err, classifying deadline expiry as a timeout.
// waitCtx is the bounded context the failing step ran under.
func newFetchError(url, stage string, waitCtx context.Context, err error) *FetchError {
	kind := KindFetch
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &FetchError{URL: url, Kind: kind, Stage: stage, Err: err}
}
