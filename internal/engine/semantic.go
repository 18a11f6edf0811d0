package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dataveil/dataveil/internal/judge"
	"github.com/dataveil/dataveil/internal/rule"
	"github.com/dataveil/dataveil/internal/table"
)

// semanticViolation is one offending row in an ai-semantic-check sample,
// tagged with the judge's stated reason when it gave one.
type semanticViolation struct {
	Value  any    `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// evalSemantic runs the ai-semantic-check kind: every distinct non-null
// value is judged once against the rule's prompt, verdicts are applied
// back to rows, and per-row failures are resolved fail-closed.
//
// Judge calls run concurrently, bounded by limit, each subject to the
// judge's own per-call timeout. A timed-out or errored call marks its
// value as violating with the failure cause as the reason; it never
// blocks the rest of the suite.
func (e *Engine) evalSemantic(ctx context.Context, r rule.Rule, col []table.Value) (RuleOutcome, error) {
	prompt, err := r.StringKwarg("prompt")
	if err != nil {
		return RuleOutcome{}, err
	}

	if e.judge == nil {
		return RuleOutcome{}, &EvalError{
			Code:    ErrCodeJudgeUnavailable,
			Message: "no judge configured",
			RuleID:  r.ID,
			Column:  r.Column,
		}
	}
	if err := e.judge.Ready(); err != nil {
		// Whole rule fails with one diagnostic, not one per row.
		return RuleOutcome{}, &EvalError{
			Code:    ErrCodeJudgeUnavailable,
			Message: err.Error(),
			RuleID:  r.ID,
			Column:  r.Column,
		}
	}

	// Judge each distinct value once; rows sharing a value share its
	// verdict.
	var distinct []string
	index := make(map[string]int, len(col))
	for _, v := range col {
		if table.IsNull(v) {
			continue
		}
		key := table.Key(v)
		if _, seen := index[key]; seen {
			continue
		}
		index[key] = len(distinct)
		distinct = append(distinct, table.Format(v))
	}

	verdicts := make([]judge.Verdict, len(distinct))
	limit := e.judgeLimit
	if limit <= 0 {
		limit = defaultJudgeLimit
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, value := range distinct {
		wg.Add(1)
		go func(i int, value string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				verdicts[i] = judge.Verdict{Valid: false, Reason: "evaluation cancelled"}
				return
			}

			v, err := e.judge.Check(ctx, prompt, value)
			switch {
			case err == nil:
				verdicts[i] = v
			case judge.IsTimeout(err):
				verdicts[i] = judge.Verdict{Valid: false, Reason: "judge timeout: " + err.Error()}
			default:
				// Fail closed: an unjudgeable value is a violating value.
				verdicts[i] = judge.Verdict{Valid: false, Reason: "judge error: " + err.Error()}
			}
		}(i, value)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return RuleOutcome{}, err
	}

	var bad sampler
	for _, v := range col {
		if table.IsNull(v) {
			bad.add(semanticViolation{Value: nil, Reason: "null value"})
			continue
		}
		verdict := verdicts[index[table.Key(v)]]
		if !verdict.Valid {
			bad.add(semanticViolation{Value: table.Format(v), Reason: verdict.Reason})
		}
	}

	violatingDistinct := 0
	for _, v := range verdicts {
		if !v.Valid {
			violatingDistinct++
		}
	}
	slog.Debug("semantic rule judged",
		"rule", r.ID,
		"distinct_values", len(distinct),
		"violating_distinct", violatingDistinct,
	)

	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		ObservedValue:     fmt.Sprintf("judged %d distinct values, %d violating", len(distinct), violatingDistinct),
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}
