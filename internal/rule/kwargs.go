package rule

import (
	"encoding/json"
	"fmt"
)

// KwargError reports a malformed parameter bag: a missing required kwarg
// or one carrying the wrong type. It is a configuration error: the suite
// evaluator converts it into a failed outcome, never a run abort.
type KwargError struct {
	Key     string
	Message string
}

func (e *KwargError) Error() string {
	return fmt.Sprintf("kwarg %q: %s", e.Key, e.Message)
}

// StringKwarg extracts a required string parameter.
func (r Rule) StringKwarg(key string) (string, error) {
	raw, ok := r.Kwargs[key]
	if !ok {
		return "", &KwargError{Key: key, Message: "required but missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &KwargError{Key: key, Message: fmt.Sprintf("expected string, got %T", raw)}
	}
	if s == "" {
		return "", &KwargError{Key: key, Message: "must not be empty"}
	}
	return s, nil
}

// FloatKwarg extracts an optional numeric parameter. Returns nil when the
// kwarg is absent, an error when it is present but not numeric.
func (r Rule) FloatKwarg(key string) (*float64, error) {
	raw, ok := r.Kwargs[key]
	if !ok || raw == nil {
		return nil, nil
	}
	f, ok := asFloat(raw)
	if !ok {
		return nil, &KwargError{Key: key, Message: fmt.Sprintf("expected number, got %T", raw)}
	}
	return &f, nil
}

// Bounds extracts the min_value/max_value pair shared by every range
// kind. At least one bound must be present, and min must not exceed max.
func (r Rule) Bounds() (min, max *float64, err error) {
	min, err = r.FloatKwarg("min_value")
	if err != nil {
		return nil, nil, err
	}
	max, err = r.FloatKwarg("max_value")
	if err != nil {
		return nil, nil, err
	}
	if min == nil && max == nil {
		return nil, nil, &KwargError{Key: "min_value", Message: "at least one of min_value/max_value is required"}
	}
	if min != nil && max != nil && *min > *max {
		return nil, nil, &KwargError{Key: "min_value", Message: "min_value exceeds max_value"}
	}
	return min, max, nil
}

// SetKwarg extracts the required value_set parameter as a scalar slice.
func (r Rule) SetKwarg(key string) ([]any, error) {
	raw, ok := r.Kwargs[key]
	if !ok {
		return nil, &KwargError{Key: key, Message: "required but missing"}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &KwargError{Key: key, Message: fmt.Sprintf("expected list, got %T", raw)}
	}
	if len(list) == 0 {
		return nil, &KwargError{Key: key, Message: "must not be empty"}
	}
	return list, nil
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
