// Package testutil provides deterministic test doubles: a scripted judge
// and a fixed wall clock. Tests drive every judge failure mode without a
// network.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dataveil/dataveil/internal/judge"
)

// ScriptedJudge is a judge.Judge whose verdicts are scripted per value.
//
// Thread-safety: all methods are safe for concurrent use; the engine
// calls Check from multiple goroutines.
type ScriptedJudge struct {
	mu sync.Mutex

	// Verdicts maps a value's string form to its scripted verdict.
	// Values without an entry are judged valid.
	Verdicts map[string]judge.Verdict

	// Errs maps a value to the error its Check call returns.
	Errs map[string]error

	// ReadyErr, when set, makes the judge unavailable up front.
	ReadyErr error

	// Delay is applied to every Check call before answering; combined
	// with a short caller timeout it exercises the slow-judge path.
	Delay time.Duration

	calls []string
}

// Ready implements judge.Judge.
func (s *ScriptedJudge) Ready() error {
	return s.ReadyErr
}

// Check implements judge.Judge.
func (s *ScriptedJudge) Check(ctx context.Context, prompt, value string) (judge.Verdict, error) {
	s.mu.Lock()
	s.calls = append(s.calls, value)
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return judge.Verdict{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.Errs[value]; ok {
		return judge.Verdict{}, err
	}
	if v, ok := s.Verdicts[value]; ok {
		return v, nil
	}
	return judge.Verdict{Valid: true}, nil
}

// Calls returns the values judged so far, in call order.
func (s *ScriptedJudge) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// FixedClock returns a clock function pinned to t. Two evaluation runs
// under the same FixedClock serialize byte-identically.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
