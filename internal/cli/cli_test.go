package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args and returns the captured
// stdout, stderr, and error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fixtureCSV = `id,score
1,5
2,7
3,9
`

const passingSuite = `
name: "scores"
rules: [
	{id: "id-not-null", kind: "not-null", column: "id"},
	{id: "score-range", kind: "between", column: "score", kwargs: {min_value: 0, max_value: 10}},
]
`

const failingSuite = `
name: "scores"
rules: [
	{id: "score-range", kind: "between", column: "score", kwargs: {min_value: 100}},
]
`

func TestRunPassingSuite(t *testing.T) {
	dir := t.TempDir()
	csv := writeFixture(t, dir, "data.csv", fixtureCSV)
	suite := writeFixture(t, dir, "suite.cue", passingSuite)

	out, _, err := execute(t, "run", csv, suite)
	require.NoError(t, err)
	assert.Contains(t, out, `Suite "scores": PASSED (score 100/100)`)
	assert.Contains(t, out, "[PASS] id-not-null")
	assert.Contains(t, out, "[PASS] score-range")
}

func TestRunFailingSuite(t *testing.T) {
	dir := t.TempDir()
	csv := writeFixture(t, dir, "data.csv", fixtureCSV)
	suite := writeFixture(t, dir, "suite.cue", failingSuite)

	out, _, err := execute(t, "run", csv, suite)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `Suite "scores": FAILED (score 0/100)`)
	assert.Contains(t, out, "[FAIL] score-range")
	assert.Contains(t, out, "unexpected=3 (100.0%)")
}

func TestRunJSONOutput(t *testing.T) {
	dir := t.TempDir()
	csv := writeFixture(t, dir, "data.csv", fixtureCSV)
	suite := writeFixture(t, dir, "suite.cue", passingSuite)

	out, _, err := execute(t, "run", csv, suite, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			SuiteName string `json:"suiteName"`
			Success   bool   `json:"success"`
			Score     int    `json:"score"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "scores", resp.Data.SuiteName)
	assert.True(t, resp.Data.Success)
	assert.Equal(t, 100, resp.Data.Score)
}

func TestRunInvalidSuiteFile(t *testing.T) {
	dir := t.TempDir()
	csv := writeFixture(t, dir, "data.csv", fixtureCSV)
	suite := writeFixture(t, dir, "suite.cue", `name: "s"
rules: [{id: "r1", kind: "sparkles", column: "a"}]
`)

	_, errOut, err := execute(t, "run", csv, suite)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "suite file invalid")
}

func TestRunMissingDataset(t *testing.T) {
	dir := t.TempDir()
	suite := writeFixture(t, dir, "suite.cue", passingSuite)

	_, _, err := execute(t, "run", filepath.Join(dir, "absent.csv"), suite)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunSaveAndHistory(t *testing.T) {
	dir := t.TempDir()
	csv := writeFixture(t, dir, "data.csv", fixtureCSV)
	suite := writeFixture(t, dir, "suite.cue", passingSuite)
	cfg := writeFixture(t, dir, "config.yaml", "store_path: "+filepath.Join(dir, "history.db")+"\n")

	_, errOut, err := execute(t, "run", csv, suite, "--save", "-v", "--config", cfg)
	require.NoError(t, err)

	m := regexp.MustCompile(`saved suite (\S+), run \S+`).FindStringSubmatch(errOut)
	require.NotNil(t, m, "verbose output names the stored records: %s", errOut)
	suiteID := m[1]

	out, _, err := execute(t, "history", suiteID, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "1 run(s) for suite "+suiteID)
	assert.Contains(t, out, "PASSED")
	assert.Contains(t, out, "score 100/100")
}

func TestHistoryEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFixture(t, dir, "config.yaml", "store_path: "+filepath.Join(dir, "history.db")+"\n")

	out, _, err := execute(t, "history", "no-such-suite", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded")
}

func TestValidateValidSuite(t *testing.T) {
	dir := t.TempDir()
	suite := writeFixture(t, dir, "suite.cue", passingSuite)

	out, _, err := execute(t, "validate", suite)
	require.NoError(t, err)
	assert.Contains(t, out, `suite "scores", 2 rule(s)`)
}

func TestValidateInvalidSuite(t *testing.T) {
	dir := t.TempDir()
	suite := writeFixture(t, dir, "suite.cue", `name: "s"
rules: [
	{id: "r1", kind: "not-null", column: "a"},
	{id: "r1", kind: "unique", column: "a"},
]
`)

	out, _, err := execute(t, "validate", suite, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Valid  bool `json:"valid"`
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Valid)
	require.NotEmpty(t, resp.Data.Errors)
	assert.Contains(t, resp.Data.Errors[0].Message, "duplicate rule id")
}

func TestValidateMissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormatFlag(t *testing.T) {
	_, _, err := execute(t, "run", "a.csv", "b.cue", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
