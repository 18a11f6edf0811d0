package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SemanticType names the types a rule may request a cell be read as.
type SemanticType string

const (
	TypeString SemanticType = "string"
	TypeInt    SemanticType = "int"
	TypeFloat  SemanticType = "float"
	TypeBool   SemanticType = "bool"
	TypeDate   SemanticType = "date"
)

// ValidType reports whether t is one of the recognized semantic types.
func ValidType(t SemanticType) bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeDate:
		return true
	}
	return false
}

// CoercionError reports that a cell could not be read as the requested
// type. Callers count it as a violating row for the current rule; it is
// never a run-aborting failure.
type CoercionError struct {
	Value  Value
	Target SemanticType
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s: %s", Format(e.Value), e.Target, e.Reason)
}

// Coerce reads v as the requested semantic type.
//
// Null and empty-string cells coerce to Null for every target type; callers
// decide whether a null counts against the rule (it does for not-null and
// type checks, it is excluded from numeric aggregates).
//
// Numeric coercion never truncates: "12.5" requested as int is a
// CoercionError, not 12.
func Coerce(v Value, target SemanticType, dateFormat string) (Value, error) {
	if IsNull(v) {
		return Null{}, nil
	}

	fail := func(reason string) (Value, error) {
		return nil, &CoercionError{Value: v, Target: target, Reason: reason}
	}

	switch target {
	case TypeString:
		return String(Format(v)), nil

	case TypeInt:
		switch val := v.(type) {
		case Int:
			return val, nil
		case Float:
			if float64(val) != float64(int64(val)) {
				return fail("fractional part would be lost")
			}
			return Int(int64(val)), nil
		case String:
			i, err := strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
			if err != nil {
				return fail("not an integer")
			}
			return Int(i), nil
		default:
			return fail("not numeric")
		}

	case TypeFloat:
		switch val := v.(type) {
		case Int:
			return Float(float64(val)), nil
		case Float:
			return val, nil
		case String:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
			if err != nil {
				return fail("not a number")
			}
			return Float(f), nil
		default:
			return fail("not numeric")
		}

	case TypeBool:
		switch val := v.(type) {
		case Bool:
			return val, nil
		case String:
			switch strings.ToLower(strings.TrimSpace(string(val))) {
			case "true":
				return Bool(true), nil
			case "false":
				return Bool(false), nil
			default:
				return fail("not a boolean")
			}
		default:
			return fail("not a boolean")
		}

	case TypeDate:
		s, ok := v.(String)
		if !ok {
			return fail("not a date string")
		}
		layout, err := StrftimeLayout(dateFormat)
		if err != nil {
			return fail(err.Error())
		}
		if _, err := time.Parse(layout, strings.TrimSpace(string(s))); err != nil {
			return fail("does not match format " + dateFormat)
		}
		return s, nil

	default:
		return fail("unknown target type")
	}
}

// strftimeDirectives maps the strftime directives suites use in
// strftime_format kwargs to Go reference-time layout fragments.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
	'f': "000000",
	'z': "-0700",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'I': "03",
	'p': "PM",
	'j': "002",
	'%': "%",
}

// StrftimeLayout translates a strftime-style format string (the format
// language suites declare dates in) to a Go time layout.
func StrftimeLayout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("empty date format")
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return "", fmt.Errorf("trailing %% in date format %q", format)
		}
		frag, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in date format %q", format[i], format)
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}
