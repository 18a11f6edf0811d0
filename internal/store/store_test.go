package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataveil/dataveil/internal/engine"
	"github.com/dataveil/dataveil/internal/rule"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dataveil.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSuite() rule.Suite {
	return rule.Suite{
		Name: "orders",
		Rules: []rule.Rule{
			{ID: "r1", Column: "id", Kind: rule.KindNotNull},
			{ID: "r2", Column: "amount", Kind: rule.KindBetween, Kwargs: map[string]any{"min_value": 0.0, "max_value": 100.0}},
		},
	}
}

func sampleResult(runTime time.Time, score int) *engine.SuiteResult {
	return &engine.SuiteResult{
		SuiteName: "orders",
		RunTime:   runTime,
		Success:   score == 100,
		Score:     score,
		Results: []engine.RuleOutcome{
			{RuleID: "r1", Success: true, ObservedValue: float64(0)},
		},
	}
}

func TestSuiteRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveSuite(ctx, sampleSuite())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := s.GetSuite(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "orders", got.Suite.Name)
	require.Len(t, got.Suite.Rules, 2)
	assert.Equal(t, rule.KindBetween, got.Suite.Rules[1].Kind)
	assert.Equal(t, 100.0, got.Suite.Rules[1].Kwargs["max_value"])
	assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestGetSuiteNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetSuite(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	suite, err := s.SaveSuite(ctx, sampleSuite())
	require.NoError(t, err)

	result := sampleResult(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), 100)
	saved, err := s.SaveRun(ctx, suite.ID, result)
	require.NoError(t, err)

	got, err := s.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, suite.ID, got.SuiteID)
	require.NotNil(t, got.Result)
	assert.Equal(t, "orders", got.Result.SuiteName)
	assert.Equal(t, 100, got.Result.Score)
	assert.True(t, got.Result.RunTime.Equal(result.RunTime))
	require.Len(t, got.Result.Results, 1)
	assert.Equal(t, "r1", got.Result.Results[0].RuleID)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	suite, err := s.SaveSuite(ctx, sampleSuite())
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := s.SaveRun(ctx, suite.ID, sampleResult(base.Add(time.Duration(i)*time.Hour), 100))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	runs, err := s.ListRuns(ctx, suite.ID)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestListRunsMixedPrecisionTimestamps(t *testing.T) {
	// Sub-second run times with fractions of differing lengths must still
	// order chronologically, not lexicographically.
	s := openTestStore(t)
	ctx := context.Background()

	suite, err := s.SaveSuite(ctx, sampleSuite())
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	// A whole second, then fractions whose RFC3339Nano forms are prefixes
	// of each other: .5, .6125, .6, .600000001.
	times := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		base.Add(612500 * time.Microsecond),
		base.Add(600 * time.Millisecond),
		base.Add(600*time.Millisecond + time.Nanosecond),
	}
	idByTime := make(map[string]time.Time, len(times))
	for _, ts := range times {
		rec, err := s.SaveRun(ctx, suite.ID, sampleResult(ts, 100))
		require.NoError(t, err)
		idByTime[rec.ID] = ts
	}

	runs, err := s.ListRuns(ctx, suite.ID)
	require.NoError(t, err)
	require.Len(t, runs, len(times))
	for i := 1; i < len(runs); i++ {
		prev := idByTime[runs[i-1].ID]
		cur := idByTime[runs[i].ID]
		assert.False(t, prev.Before(cur), "run %d (%v) listed before run %d (%v)", i-1, prev, i, cur)
	}
	assert.Equal(t, base.Add(612500*time.Microsecond), idByTime[runs[0].ID])
}

func TestListRunsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	suite, err := s.SaveSuite(ctx, sampleSuite())
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, suite.ID)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
