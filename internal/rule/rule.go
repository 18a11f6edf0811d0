// Package rule defines the declarative data-quality rule model: rule
// kinds, the kwargs each kind requires, and the suite container.
package rule

// Kind identifies one expectation kind. The set is closed: each kind maps
// to exactly one evaluator, and adding a kind is a single-point change in
// the engine's dispatch switch.
type Kind string

const (
	// KindNotNull asserts every value is non-null and non-empty.
	KindNotNull Kind = "not-null"

	// KindUnique asserts no two rows share the same non-null value.
	KindUnique Kind = "unique"

	// KindBetween asserts numeric values fall within [min_value, max_value]
	// inclusive. Either bound may be omitted (unbounded on that side).
	KindBetween Kind = "between"

	// KindInSet asserts values are members of the declared value_set.
	KindInSet Kind = "in-set"

	// KindRegexMatch asserts values match the declared regex.
	KindRegexMatch Kind = "regex-match"

	// KindLengthBetween asserts string lengths fall within
	// [min_value, max_value] inclusive.
	KindLengthBetween Kind = "length-between"

	// KindOfType asserts each value coerces to the declared semantic type
	// without loss.
	KindOfType Kind = "of-type"

	// KindRowCountBetween asserts the table's total row count falls within
	// [min_value, max_value]. Table-level: no column binding.
	KindRowCountBetween Kind = "table-row-count-between"

	// KindDateFormat asserts values parse against strftime_format.
	KindDateFormat Kind = "date-format"

	// KindMeanBetween asserts the column mean (nulls excluded) falls within
	// [min_value, max_value].
	KindMeanBetween Kind = "mean-between"

	// KindMinBetween asserts the column minimum falls within bounds.
	KindMinBetween Kind = "min-between"

	// KindMaxBetween asserts the column maximum falls within bounds.
	KindMaxBetween Kind = "max-between"

	// KindAISemanticCheck delegates per-value judgment to the external
	// judge using the rule's natural-language prompt.
	KindAISemanticCheck Kind = "ai-semantic-check"
)

// Kinds lists every rule kind in a stable order.
var Kinds = []Kind{
	KindNotNull,
	KindUnique,
	KindBetween,
	KindInSet,
	KindRegexMatch,
	KindLengthBetween,
	KindOfType,
	KindRowCountBetween,
	KindDateFormat,
	KindMeanBetween,
	KindMinBetween,
	KindMaxBetween,
	KindAISemanticCheck,
}

// Known reports whether k names a recognized rule kind.
func Known(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// TableLevel reports whether k binds to the whole table instead of a
// single column.
func TableLevel(k Kind) bool {
	return k == KindRowCountBetween
}

// Aggregate reports whether k asserts a computed statistic rather than a
// per-row property. Aggregate kinds produce no per-row unexpected sample;
// their observed value carries the statistic.
func Aggregate(k Kind) bool {
	switch k {
	case KindRowCountBetween, KindMeanBetween, KindMinBetween, KindMaxBetween:
		return true
	}
	return false
}

// Rule is one declarative expectation: a stable id, a target (one column,
// or the whole table when Column is empty), a kind, and the kind-specific
// parameter bag.
type Rule struct {
	ID          string         `json:"id"`
	Column      string         `json:"column,omitempty"`
	Kind        Kind           `json:"kind"`
	Kwargs      map[string]any `json:"kwargs,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Suite is a named, ordered collection of rules. Order is preserved in
// results so reports are stable and reproducible. An empty suite is valid
// and evaluates vacuously successful.
type Suite struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}
