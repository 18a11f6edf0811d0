package engine

import (
	"errors"
	"fmt"
)

// EvalError represents a failure detected while evaluating one rule.
//
// Evaluation errors include:
//   - Missing column: the rule targets a header absent from the dataset
//   - Bad config: missing/mistyped kwargs or an unknown rule kind
//   - Judge unavailable: the AI judge cannot serve the rule at all
//   - Internal: an unexpected panic recovered at the rule boundary
//
// Every EvalError is converted into a failed RuleOutcome by the suite
// evaluator; none of them abort Evaluate.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// RuleID identifies the affected rule.
	RuleID string

	// Column identifies the rule's target column, when bound to one.
	Column string
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeMissingColumn indicates the target column is not in the dataset.
	ErrCodeMissingColumn EvalErrorCode = "MISSING_COLUMN"

	// ErrCodeBadConfig indicates malformed kwargs or an unknown rule kind.
	ErrCodeBadConfig EvalErrorCode = "BAD_CONFIG"

	// ErrCodeJudgeUnavailable indicates the judge could not serve the rule
	// (missing credentials, unreachable endpoint).
	ErrCodeJudgeUnavailable EvalErrorCode = "JUDGE_UNAVAILABLE"

	// ErrCodeInternal indicates an unexpected failure inside an evaluator.
	ErrCodeInternal EvalErrorCode = "EVAL_FATAL"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.RuleID != "" && e.Column != "" {
		return fmt.Sprintf("%s: %s (rule=%s, column=%s)", e.Code, e.Message, e.RuleID, e.Column)
	}
	if e.RuleID != "" {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.RuleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if the error is a rule configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeBadConfig || ee.Code == ErrCodeMissingColumn
	}
	return false
}

// IsJudgeUnavailable returns true if the error marks the judge as unable
// to serve the rule.
func IsJudgeUnavailable(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeJudgeUnavailable
	}
	return false
}

// NewConfigError creates a BAD_CONFIG EvalError for a rule.
func NewConfigError(ruleID, column, message string) *EvalError {
	return &EvalError{
		Code:    ErrCodeBadConfig,
		Message: message,
		RuleID:  ruleID,
		Column:  column,
	}
}

// NewMissingColumnError creates a MISSING_COLUMN EvalError.
func NewMissingColumnError(ruleID, column string) *EvalError {
	return &EvalError{
		Code:    ErrCodeMissingColumn,
		Message: fmt.Sprintf("column %q not found in dataset", column),
		RuleID:  ruleID,
		Column:  column,
	}
}
