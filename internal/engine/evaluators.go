package engine

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/dataveil/dataveil/internal/rule"
	"github.com/dataveil/dataveil/internal/table"
)

// Evaluators are pure functions: one per rule kind, each reading a column
// (or the table row count) plus the rule's kwargs and producing the rule's
// outcome. Config errors (bad kwargs) are returned as errors; the suite
// evaluator converts them into failed outcomes.

// sampler accumulates offending values up to the sample cap while
// counting every occurrence.
type sampler struct {
	count int
	items []any
}

func (s *sampler) add(v any) {
	s.count++
	if len(s.items) < MaxUnexpectedSample {
		s.items = append(s.items, v)
	}
}

// inBounds checks x against optional inclusive bounds.
func inBounds(x float64, min, max *float64) bool {
	if min != nil && x < *min {
		return false
	}
	if max != nil && x > *max {
		return false
	}
	return true
}

func evalNotNull(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	var bad sampler
	for _, v := range col {
		if table.IsNull(v) {
			bad.add(nil)
		}
	}
	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		ObservedValue:     bad.count,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}

func evalUnique(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	seen := make(map[string]bool, len(col))
	var bad sampler
	for _, v := range col {
		if table.IsNull(v) {
			continue
		}
		key := table.Key(v)
		if seen[key] {
			// Every occurrence beyond the first is a violation.
			bad.add(table.Format(v))
			continue
		}
		seen[key] = true
	}
	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		ObservedValue:     bad.count,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}

func evalBetween(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	min, max, err := r.Bounds()
	if err != nil {
		return RuleOutcome{}, err
	}

	var bad sampler
	for _, v := range col {
		// Nulls and non-numerics violate a numeric range check the same
		// way an out-of-bounds value does.
		f, ok := table.AsFloat(v)
		if table.IsNull(v) || !ok || !inBounds(f, min, max) {
			bad.add(table.Format(v))
		}
	}

	out := RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}
	if !out.Success {
		out.ObservedValue = ObservedNA
	}
	return out, nil
}

func evalInSet(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	rawSet, err := r.SetKwarg("value_set")
	if err != nil {
		return RuleOutcome{}, err
	}
	members := make(map[string]bool, len(rawSet))
	numeric := make(map[float64]bool)
	for i, raw := range rawSet {
		v, convErr := table.FromAny(raw)
		if convErr != nil {
			return RuleOutcome{}, &rule.KwargError{Key: "value_set", Message: fmt.Sprintf("element %d: %v", i, convErr)}
		}
		members[table.Key(v)] = true
		// CSV loaders deliver every cell as text, so numeric members must
		// also match cells whose string form reads as the same number.
		switch v.(type) {
		case table.Int, table.Float:
			if f, ok := table.AsFloat(v); ok {
				numeric[f] = true
			}
		}
	}

	inSet := func(v table.Value) bool {
		if members[table.Key(v)] {
			return true
		}
		f, ok := table.AsFloat(v)
		return ok && numeric[f]
	}

	var bad sampler
	for _, v := range col {
		if table.IsNull(v) || !inSet(v) {
			bad.add(table.Format(v))
		}
	}
	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}

func evalRegexMatch(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	pattern, err := r.StringKwarg("regex")
	if err != nil {
		return RuleOutcome{}, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RuleOutcome{}, &rule.KwargError{Key: "regex", Message: err.Error()}
	}

	var bad sampler
	for _, v := range col {
		if table.IsNull(v) || !re.MatchString(table.Format(v)) {
			bad.add(table.Format(v))
		}
	}
	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}

func evalLengthBetween(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	min, max, err := r.Bounds()
	if err != nil {
		return RuleOutcome{}, err
	}

	var bad sampler
	for _, v := range col {
		if table.IsNull(v) {
			bad.add(table.Format(v))
			continue
		}
		// Length is measured in runes of the value's string form, so
		// multi-byte text is not penalized for its encoding.
		n := utf8.RuneCountInString(table.Format(v))
		if !inBounds(float64(n), min, max) {
			bad.add(table.Format(v))
		}
	}
	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}

func evalOfType(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	typeName, err := r.StringKwarg("type")
	if err != nil {
		return RuleOutcome{}, err
	}
	target := table.SemanticType(typeName)
	if !table.ValidType(target) {
		return RuleOutcome{}, &rule.KwargError{Key: "type", Message: fmt.Sprintf("unknown semantic type %q", typeName)}
	}
	dateFormat := ""
	if target == table.TypeDate {
		dateFormat, err = r.StringKwarg("strftime_format")
		if err != nil {
			return RuleOutcome{}, err
		}
	}

	var bad sampler
	for _, v := range col {
		// Nulls count against a type check even though Coerce passes them
		// through; only the not-null kind is explicitly about nullness.
		if table.IsNull(v) {
			bad.add(table.Format(v))
			continue
		}
		if _, cerr := table.Coerce(v, target, dateFormat); cerr != nil {
			bad.add(table.Format(v))
		}
	}
	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}

func evalDateFormat(r rule.Rule, col []table.Value) (RuleOutcome, error) {
	format, err := r.StringKwarg("strftime_format")
	if err != nil {
		return RuleOutcome{}, err
	}
	// Reject an unparsable format up front as a config error rather than
	// failing every row on it.
	if _, err := table.StrftimeLayout(format); err != nil {
		return RuleOutcome{}, &rule.KwargError{Key: "strftime_format", Message: err.Error()}
	}

	var bad sampler
	for _, v := range col {
		if table.IsNull(v) {
			bad.add(table.Format(v))
			continue
		}
		if _, cerr := table.Coerce(v, table.TypeDate, format); cerr != nil {
			bad.add(table.Format(v))
		}
	}
	return RuleOutcome{
		RuleID:            r.ID,
		Success:           bad.count == 0,
		UnexpectedCount:   bad.count,
		UnexpectedPercent: percent(bad.count, len(col)),
		UnexpectedList:    bad.items,
	}, nil
}

func evalRowCountBetween(r rule.Rule, rowCount int) (RuleOutcome, error) {
	min, max, err := r.Bounds()
	if err != nil {
		return RuleOutcome{}, err
	}
	out := RuleOutcome{
		RuleID:        r.ID,
		Success:       inBounds(float64(rowCount), min, max),
		ObservedValue: rowCount,
	}
	if !out.Success {
		out.Diagnostic = fmt.Sprintf("row count %d outside bounds", rowCount)
	}
	return out, nil
}

// statFn reduces the evaluable values of a column to one statistic.
type statFn func(values []float64) float64

func statMean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func statMin(values []float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func statMax(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// evalStatBetween covers the mean/min/max-between kinds. Nulls and values
// that do not read as numbers are excluded from the statistic. A column
// with zero evaluable rows fails with observed N/A: an un-evaluable
// statistic cannot be asserted true.
func evalStatBetween(r rule.Rule, col []table.Value, stat statFn) (RuleOutcome, error) {
	min, max, err := r.Bounds()
	if err != nil {
		return RuleOutcome{}, err
	}

	var values []float64
	for _, v := range col {
		if table.IsNull(v) {
			continue
		}
		if f, ok := table.AsFloat(v); ok {
			values = append(values, f)
		}
	}

	if len(values) == 0 {
		return RuleOutcome{
			RuleID:        r.ID,
			Success:       false,
			ObservedValue: ObservedNA,
			Diagnostic:    "no evaluable rows for statistic",
		}, nil
	}

	observed := stat(values)
	return RuleOutcome{
		RuleID:        r.ID,
		Success:       inBounds(observed, min, max),
		ObservedValue: observed,
	}, nil
}
