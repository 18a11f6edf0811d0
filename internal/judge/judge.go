// Package judge defines the external text-classification collaborator
// used by the ai-semantic-check rule kind, and its OpenAI-backed
// implementation. The engine only depends on the Judge interface; tests
// substitute a scripted judge.
package judge

import (
	"context"
	"errors"
	"fmt"
)

// Verdict is one judged value: valid or not, with the judge's stated
// reason when it gave one.
type Verdict struct {
	Valid  bool
	Reason string
}

// Errors returned by judge implementations. Callers treat them
// differently: Unavailable fails the whole rule up front, Timeout fails
// the single value closed and evaluation proceeds.
var (
	ErrUnavailable = errors.New("judge unavailable")
	ErrTimeout     = errors.New("judge timeout")
)

// IsUnavailable reports whether err marks the judge as unable to serve
// calls at all (missing credentials, unreachable endpoint).
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsTimeout reports whether err is a per-call timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Judge classifies a single value against a natural-language condition.
//
// Check applies the implementation's fixed per-call timeout internally; a
// slow backend surfaces as ErrTimeout, never as an indefinite block.
// Ready reports up front whether the judge can serve calls, so a suite
// can fail an ai-semantic-check rule with one diagnostic instead of one
// error per row.
type Judge interface {
	Ready() error
	Check(ctx context.Context, prompt, value string) (Verdict, error)
}

// unavailable wraps a cause as an ErrUnavailable.
func unavailable(cause error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, cause)
}
