package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check that all cell types implement Value.
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.True(t, IsNull(String("")), "empty string counts as missing")
	assert.False(t, IsNull(String("x")))
	assert.False(t, IsNull(Int(0)))
	assert.False(t, IsNull(Float(0)))
	assert.False(t, IsNull(Bool(false)))
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "hello", String("hello")},
		{"bool", true, Bool(true)},
		{"int", 7, Int(7)},
		{"int64", int64(7), Int(7)},
		{"integral float", 3.0, Int(3)},
		{"fractional float", 3.25, Float(3.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAnyRejectsComposites(t *testing.T) {
	_, err := FromAny(map[string]any{"a": 1})
	assert.Error(t, err)

	_, err = FromAny([]any{1, 2})
	assert.Error(t, err)
}

func TestFormatDeterministic(t *testing.T) {
	assert.Equal(t, "null", Format(Null{}))
	assert.Equal(t, "42", Format(Int(42)))
	assert.Equal(t, "1.5", Format(Float(1.5)))
	assert.Equal(t, "true", Format(Bool(true)))
	assert.Equal(t, "abc", Format(String("abc")))
}

func TestKeyNumericCollapse(t *testing.T) {
	// Int(3) and Float(3.0) are the same logical value.
	assert.Equal(t, Key(Int(3)), Key(Float(3.0)))
	assert.NotEqual(t, Key(Int(3)), Key(String("3")))
}

func TestKeyLargeIntegersDistinct(t *testing.T) {
	// Adjacent int64 values beyond float64's 2^53 integer range must not
	// collapse to one key.
	a := Int(1 << 60)
	b := Int(1<<60 + 1)
	assert.NotEqual(t, Key(a), Key(b))
	assert.Equal(t, "n:1152921504606846976", Key(a))

	// Integral floats still collapse onto the integer key.
	assert.Equal(t, Key(Int(1<<50)), Key(Float(1<<50)))
	// Non-integral floats keep their own representation.
	assert.Equal(t, "n:0.5", Key(Float(0.5)))
}

func TestKeyNFCNormalization(t *testing.T) {
	// "é" precomposed (U+00E9) vs decomposed (e + U+0301) compare equal.
	composed := String("café")
	decomposed := String("café")
	assert.Equal(t, Key(composed), Key(decomposed))
}

func TestAsFloat(t *testing.T) {
	f, ok := AsFloat(Int(4))
	require.True(t, ok)
	assert.Equal(t, 4.0, f)

	f, ok = AsFloat(String("2.5"))
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = AsFloat(String("x"))
	assert.False(t, ok)

	_, ok = AsFloat(Bool(true))
	assert.False(t, ok)

	_, ok = AsFloat(Null{})
	assert.False(t, ok)
}
