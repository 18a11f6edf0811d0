package engine

import (
	"math"
	"time"
)

// ObservedNA is the observed value reported when a rule's statistic is
// not numerically meaningful (zero evaluable rows, judge unavailable,
// configuration errors).
const ObservedNA = "N/A"

// MaxUnexpectedSample caps the number of offending values carried in a
// RuleOutcome. Callers may trim further for display; the engine never
// reports more.
const MaxUnexpectedSample = 20

// RuleOutcome is the result of evaluating one rule against one dataset.
// Computed once per run and never mutated afterward.
type RuleOutcome struct {
	RuleID string `json:"ruleId"`

	Success bool `json:"success"`

	// ObservedValue is kind-specific: a null count, a computed mean, the
	// row count, or ObservedNA when nothing meaningful could be computed.
	// Nil when the kind defines no observed value and every row passed.
	ObservedValue any `json:"observedValue"`

	UnexpectedCount int `json:"unexpectedCount"`

	// UnexpectedPercent is unexpected count over evaluated row count,
	// times 100. Zero when no rows were evaluated.
	UnexpectedPercent float64 `json:"unexpectedPercent"`

	// UnexpectedList is a bounded sample of offending raw values, at most
	// MaxUnexpectedSample items, in row order.
	UnexpectedList []any `json:"unexpectedList,omitempty"`

	// Diagnostic carries the failure cause for rules that failed without
	// per-row evidence (missing column, bad kwargs, judge unavailable).
	Diagnostic string `json:"diagnostic,omitempty"`
}

// SuiteResult aggregates the ordered rule outcomes of one run.
type SuiteResult struct {
	SuiteName string        `json:"suiteName"`
	RunTime   time.Time     `json:"runTime"`
	Success   bool          `json:"success"`
	Score     int           `json:"score"`
	Results   []RuleOutcome `json:"results"`
}

// Score computes the suite-level score: the percentage of outcomes that
// succeeded, rounded to the nearest integer. An empty suite scores 100.
func Score(outcomes []RuleOutcome) int {
	if len(outcomes) == 0 {
		return 100
	}
	passed := 0
	for _, o := range outcomes {
		if o.Success {
			passed++
		}
	}
	return int(math.Round(100 * float64(passed) / float64(len(outcomes))))
}

// allSucceeded reports whether every outcome passed.
func allSucceeded(outcomes []RuleOutcome) bool {
	for _, o := range outcomes {
		if !o.Success {
			return false
		}
	}
	return true
}

// percent computes unexpected/evaluated*100, guarding the zero-row case.
func percent(unexpected, evaluated int) float64 {
	if evaluated == 0 {
		return 0
	}
	return 100 * float64(unexpected) / float64(evaluated)
}

// failedOutcome builds the outcome for a rule that failed before (or
// without) producing per-row evidence.
func failedOutcome(ruleID, diagnostic string) RuleOutcome {
	return RuleOutcome{
		RuleID:        ruleID,
		Success:       false,
		ObservedValue: ObservedNA,
		Diagnostic:    diagnostic,
	}
}
