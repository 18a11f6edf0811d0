package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dataveil/dataveil/internal/engine"
	"github.com/dataveil/dataveil/internal/rule"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// timeFormat is the stored timestamp layout. Fixed-width fraction, UTC
// only: run ordering relies on the TEXT column sorting chronologically,
// which RFC3339Nano's trimmed fractions do not guarantee.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SuiteRecord is a stored suite with its identity and creation time.
type SuiteRecord struct {
	ID        string     `json:"id"`
	Suite     rule.Suite `json:"suite"`
	CreatedAt time.Time  `json:"createdAt"`
}

// RunRecord is one stored validation run.
type RunRecord struct {
	ID      string              `json:"id"`
	SuiteID string              `json:"suiteId"`
	Result  *engine.SuiteResult `json:"result"`
}

// SaveSuite stores a suite and returns its record with a fresh id.
func (s *Store) SaveSuite(ctx context.Context, suite rule.Suite) (SuiteRecord, error) {
	rulesJSON, err := json.Marshal(suite.Rules)
	if err != nil {
		return SuiteRecord{}, fmt.Errorf("marshal rules: %w", err)
	}

	rec := SuiteRecord{
		ID:        uuid.NewString(),
		Suite:     suite,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO suites (id, name, rules, created_at)
		VALUES (?, ?, ?, ?)
	`, rec.ID, suite.Name, string(rulesJSON), rec.CreatedAt.Format(timeFormat))
	if err != nil {
		return SuiteRecord{}, fmt.Errorf("write suite: %w", err)
	}

	return rec, nil
}

// GetSuite retrieves a stored suite by id.
func (s *Store) GetSuite(ctx context.Context, id string) (SuiteRecord, error) {
	var (
		rec       SuiteRecord
		rulesJSON string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, rules, created_at FROM suites WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Suite.Name, &rulesJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SuiteRecord{}, fmt.Errorf("suite %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SuiteRecord{}, fmt.Errorf("read suite: %w", err)
	}

	if err := json.Unmarshal([]byte(rulesJSON), &rec.Suite.Rules); err != nil {
		return SuiteRecord{}, fmt.Errorf("decode rules for suite %s: %w", id, err)
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return SuiteRecord{}, fmt.Errorf("decode created_at for suite %s: %w", id, err)
	}
	return rec, nil
}

// SaveRun stores a completed validation run against a stored suite.
func (s *Store) SaveRun(ctx context.Context, suiteID string, result *engine.SuiteResult) (RunRecord, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal result: %w", err)
	}

	rec := RunRecord{
		ID:      uuid.NewString(),
		SuiteID: suiteID,
		Result:  result,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, suite_id, run_time, success, score, result)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, suiteID, result.RunTime.UTC().Format(timeFormat), result.Success, result.Score, string(resultJSON))
	if err != nil {
		return RunRecord{}, fmt.Errorf("write run: %w", err)
	}

	return rec, nil
}

// GetRun retrieves one stored run by id.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, error) {
	var (
		rec        RunRecord
		resultJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, suite_id, result FROM runs WHERE id = ?
	`, id).Scan(&rec.ID, &rec.SuiteID, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run: %w", err)
	}

	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return RunRecord{}, fmt.Errorf("decode result for run %s: %w", id, err)
	}
	return rec, nil
}

// ListRuns returns the runs recorded for a suite, newest first. Returns
// an empty slice (not nil) when the suite has no runs.
func (s *Store) ListRuns(ctx context.Context, suiteID string) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, suite_id, result
		FROM runs
		WHERE suite_id = ?
		ORDER BY run_time DESC, id ASC
	`, suiteID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		var (
			rec        RunRecord
			resultJSON string
		)
		if err := rows.Scan(&rec.ID, &rec.SuiteID, &resultJSON); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, fmt.Errorf("decode result for run %s: %w", rec.ID, err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
