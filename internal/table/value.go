package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface over the cell types a Dataset may hold.
// Only Null, String, Int, Float, and Bool implement it. Dates travel as
// String and are interpreted by the coercion layer when a rule asks for them.
type Value interface {
	cellValue() // sealed
}

// Null represents a missing cell. Loaders map empty CSV fields and absent
// JSON keys to Null so every row carries the full header set.
type Null struct{}

func (Null) cellValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a text cell.
type String string

func (String) cellValue() {}

// Int is an integer cell. Always int64.
type Int int64

func (Int) cellValue() {}

// Float is a floating-point cell. Statistics (mean/min/max) are computed
// over Float, so unlike identifiers these are allowed to be inexact; all
// formatting goes through strconv for stable output.
type Float float64

func (Float) cellValue() {}

// Bool is a boolean cell.
type Bool bool

func (Bool) cellValue() {}

// IsNull reports whether v is a missing cell. The empty string is treated
// as missing as well: CSV sources cannot distinguish "" from absent.
func IsNull(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case String:
		return val == ""
	default:
		return false
	}
}

// FromAny converts a decoded JSON/YAML scalar into a Value.
// Maps and slices are rejected: cells are scalars only.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		// json.Unmarshal without UseNumber decodes every number as float64.
		// Keep integral values as Int so formatting stays stable.
		if val == float64(int64(val)) {
			return Int(int64(val)), nil
		}
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Float(f), nil
	default:
		return nil, fmt.Errorf("unsupported cell type %T (cells must be scalar)", v)
	}
}

// Format renders a Value as the string shown in diagnostics and judge
// prompts. Deterministic: identical values always format identically.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Key returns a canonical comparison key for equality and uniqueness
// checks. Strings are NFC normalized so visually identical text compares
// equal regardless of the source's Unicode composition; numerics collapse
// to one representation so Int(3) and Float(3.0) are the same key.
func Key(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "\x00null"
	case String:
		return "s:" + norm.NFC.String(string(val))
	case Int:
		return "n:" + strconv.FormatInt(int64(val), 10)
	case Float:
		// Integral floats share the integer key; int64 keys must not go
		// through float64, which cannot represent every int64 exactly.
		f := float64(val)
		if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
			return "n:" + strconv.FormatInt(int64(f), 10)
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	case Bool:
		return "b:" + strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("?:%v", v)
	}
}

// AsFloat extracts a numeric reading of v. Strings holding a parseable
// number are accepted: loaders for CSV sources deliver everything as text.
func AsFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case Int:
		return float64(val), true
	case Float:
		return float64(val), true
	case String:
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MarshalValue marshals a Value to JSON bytes. Used by diagnostics
// serialization; dispatches by type rather than reflection.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
