package suitespec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataveil/dataveil/internal/rule"
)

const validSuite = `
name: "orders"
rules: [
	{
		id:     "id-not-null"
		kind:   "not-null"
		column: "order_id"
	},
	{
		id:     "amount-range"
		kind:   "between"
		column: "amount"
		kwargs: {
			min_value: 0
			max_value: 10000
		}
	},
	{
		id:     "status-set"
		kind:   "in-set"
		column: "status"
		kwargs: {
			value_set: ["open", "shipped", "closed"]
		}
	},
	{
		id:          "city-real"
		kind:        "ai-semantic-check"
		column:      "city"
		description: "city must exist"
		kwargs: {
			prompt: "value is a real city name"
		}
	},
	{
		id:   "rows"
		kind: "table-row-count-between"
		kwargs: {
			min_value: 1
		}
	},
]
`

func TestLoadValidSuite(t *testing.T) {
	suite, err := Load([]byte(validSuite), "orders.cue")
	require.NoError(t, err)

	assert.Equal(t, "orders", suite.Name)
	require.Len(t, suite.Rules, 5)

	assert.Equal(t, "id-not-null", suite.Rules[0].ID)
	assert.Equal(t, rule.KindNotNull, suite.Rules[0].Kind)
	assert.Equal(t, "order_id", suite.Rules[0].Column)

	assert.Equal(t, rule.KindBetween, suite.Rules[1].Kind)
	min, max, err := suite.Rules[1].Bounds()
	require.NoError(t, err)
	assert.Equal(t, 0.0, *min)
	assert.Equal(t, 10000.0, *max)

	assert.Equal(t, "city must exist", suite.Rules[3].Description)
	assert.Equal(t, "", suite.Rules[4].Column, "table-level rules bind no column")
}

func TestLoadUnknownKind(t *testing.T) {
	doc := `
name: "s"
rules: [{id: "r1", kind: "sparkles", column: "a"}]
`
	_, err := Load([]byte(doc), "s.cue")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotEmpty(t, verrs)
}

func TestLoadMissingRequiredKwarg(t *testing.T) {
	doc := `
name: "s"
rules: [{id: "r1", kind: "regex-match", column: "a"}]
`
	_, err := Load([]byte(doc), "s.cue")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestLoadDuplicateRuleIDs(t *testing.T) {
	doc := `
name: "s"
rules: [
	{id: "r1", kind: "not-null", column: "a"},
	{id: "r1", kind: "unique", column: "b"},
]
`
	_, err := Load([]byte(doc), "s.cue")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Error(), "duplicate rule id")
}

func TestLoadBetweenWithoutBounds(t *testing.T) {
	doc := `
name: "s"
rules: [{id: "r1", kind: "between", column: "a", kwargs: {}}]
`
	_, err := Load([]byte(doc), "s.cue")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestLoadOfTypeDateWithoutFormat(t *testing.T) {
	doc := `
name: "s"
rules: [{id: "r1", kind: "of-type", column: "a", kwargs: {type: "date"}}]
`
	_, err := Load([]byte(doc), "s.cue")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Error(), "strftime_format")
}

func TestLoadEmptyRules(t *testing.T) {
	doc := `
name: "s"
rules: []
`
	suite, err := Load([]byte(doc), "s.cue")
	require.NoError(t, err)
	assert.Empty(t, suite.Rules)
}

func TestLoadEmptyName(t *testing.T) {
	doc := `
name: ""
rules: []
`
	_, err := Load([]byte(doc), "s.cue")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestLoadSyntaxError(t *testing.T) {
	_, err := Load([]byte(`name: "s" rules: [`), "s.cue")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.cue")
	require.NoError(t, os.WriteFile(path, []byte(validSuite), 0o644))

	suite, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "orders", suite.Name)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	var verrs ValidationErrors
	assert.False(t, errors.As(err, &verrs), "filesystem errors are not validation errors")
}
