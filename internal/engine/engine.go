// Package engine evaluates expectation suites against tabular datasets.
//
// The engine's sole exposed operation is Evaluate: given a read-only
// Dataset and an ordered Suite, it produces one RuleOutcome per rule, in
// rule order, plus a suite-level success flag and score. A rule's
// internal failure (malformed kwargs, a missing target column, a judge
// outage, even a panic inside an evaluator) is captured as a failed
// outcome and never aborts the rest of the suite. Only a malformed
// dataset shape or caller cancellation errors out of Evaluate.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dataveil/dataveil/internal/judge"
	"github.com/dataveil/dataveil/internal/rule"
	"github.com/dataveil/dataveil/internal/table"
)

// runPhase tracks the lifecycle of one evaluation run.
type runPhase int

const (
	phasePending runPhase = iota
	phaseRunning
	phaseCompleted
)

func (p runPhase) String() string {
	switch p {
	case phasePending:
		return "pending"
	case phaseRunning:
		return "running"
	case phaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// DefaultWorkers is the worker-pool size used for rule evaluation when
// the caller does not configure one. Non-AI evaluators are pure and only
// read the dataset, so they parallelize freely; output order is restored
// by original rule index when the result is assembled.
const DefaultWorkers = 4

// defaultJudgeLimit bounds concurrent judge calls within one
// ai-semantic-check rule, to respect third-party rate limits.
const defaultJudgeLimit = 4

// Engine evaluates suites. Construct with New; configuration is explicit
// (no ambient state) so runs stay deterministic and testable.
type Engine struct {
	judge      judge.Judge
	workers    int
	judgeLimit int
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithJudge installs the external judge used by ai-semantic-check rules.
// Without one, such rules fail with a JUDGE_UNAVAILABLE diagnostic.
func WithJudge(j judge.Judge) Option {
	return func(e *Engine) {
		e.judge = j
	}
}

// WithWorkers sets the rule-evaluation worker-pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithJudgeConcurrency bounds concurrent judge calls within one rule.
func WithJudgeConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.judgeLimit = n
		}
	}
}

// WithClock overrides the run timestamp source. Tests use a fixed clock
// so two runs over the same inputs serialize byte-identically.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		workers:    DefaultWorkers,
		judgeLimit: defaultJudgeLimit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every rule of the suite against the dataset and returns
// the assembled result.
//
// Results are ordered by rule declaration order regardless of evaluation
// concurrency. The run is cancellable: when ctx is cancelled mid-run,
// Evaluate returns ctx.Err() and no partial result.
func (e *Engine) Evaluate(ctx context.Context, ds *table.Dataset, suite rule.Suite) (*SuiteResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}

	phase := phasePending
	slog.Info("suite evaluation starting",
		"suite", suite.Name,
		"rules", len(suite.Rules),
		"rows", ds.RowCount(),
		"phase", phase,
	)

	phase = phaseRunning
	outcomes := make([]RuleOutcome, len(suite.Rules))

	workers := e.workers
	if workers > len(suite.Rules) {
		workers = len(suite.Rules)
	}

	if workers > 0 {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					outcomes[i] = e.evaluateRule(ctx, ds, suite.Rules[i])
				}
			}()
		}

	feed:
		for i := range suite.Rules {
			select {
			case jobs <- i:
			case <-ctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		slog.Info("suite evaluation cancelled", "suite", suite.Name)
		return nil, err
	}

	phase = phaseCompleted

	result := &SuiteResult{
		SuiteName: suite.Name,
		RunTime:   e.now().UTC(),
		Success:   allSucceeded(outcomes),
		Score:     Score(outcomes),
		Results:   outcomes,
	}

	slog.Info("suite evaluation completed",
		"suite", suite.Name,
		"success", result.Success,
		"score", result.Score,
		"phase", phase,
	)
	return result, nil
}

// evaluateRule resolves one rule's target, dispatches to its evaluator,
// and converts every failure mode into a failed outcome. Panics inside
// evaluators are recovered here so one broken rule cannot take down the
// run.
func (e *Engine) evaluateRule(ctx context.Context, ds *table.Dataset, r rule.Rule) (out RuleOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("rule evaluation panicked", "rule", r.ID, "panic", rec)
			out = failedOutcome(r.ID, fmt.Sprintf("%s: internal evaluation error: %v", ErrCodeInternal, rec))
		}
	}()

	if !rule.Known(r.Kind) {
		return failedOutcome(r.ID, fmt.Sprintf("%s: unknown rule kind %q", ErrCodeBadConfig, r.Kind))
	}

	var col []table.Value
	if !rule.TableLevel(r.Kind) {
		if r.Column == "" {
			return failedOutcome(r.ID, fmt.Sprintf("%s: rule kind %s requires a column", ErrCodeBadConfig, r.Kind))
		}
		var ok bool
		col, ok = ds.Column(r.Column)
		if !ok {
			return failedOutcome(r.ID, NewMissingColumnError(r.ID, r.Column).Error())
		}
	}

	outcome, err := e.dispatch(ctx, r, col, ds.RowCount())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Cancellation surfaces at the suite level; the placeholder
			// outcome is discarded with the run.
			return failedOutcome(r.ID, "evaluation cancelled")
		}
		slog.Warn("rule failed to evaluate", "rule", r.ID, "kind", r.Kind, "error", err)
		return failedOutcome(r.ID, err.Error())
	}
	return outcome
}

// dispatch routes a rule to the evaluator for its kind. The switch is
// exhaustive over the closed kind set; adding a kind means adding a case
// here and a constant in the rule package.
func (e *Engine) dispatch(ctx context.Context, r rule.Rule, col []table.Value, rowCount int) (RuleOutcome, error) {
	switch r.Kind {
	case rule.KindNotNull:
		return evalNotNull(r, col)
	case rule.KindUnique:
		return evalUnique(r, col)
	case rule.KindBetween:
		return evalBetween(r, col)
	case rule.KindInSet:
		return evalInSet(r, col)
	case rule.KindRegexMatch:
		return evalRegexMatch(r, col)
	case rule.KindLengthBetween:
		return evalLengthBetween(r, col)
	case rule.KindOfType:
		return evalOfType(r, col)
	case rule.KindRowCountBetween:
		return evalRowCountBetween(r, rowCount)
	case rule.KindDateFormat:
		return evalDateFormat(r, col)
	case rule.KindMeanBetween:
		return evalStatBetween(r, col, statMean)
	case rule.KindMinBetween:
		return evalStatBetween(r, col, statMin)
	case rule.KindMaxBetween:
		return evalStatBetween(r, col, statMax)
	case rule.KindAISemanticCheck:
		return e.evalSemantic(ctx, r, col)
	default:
		return RuleOutcome{}, NewConfigError(r.ID, r.Column, fmt.Sprintf("unknown rule kind %q", r.Kind))
	}
}
