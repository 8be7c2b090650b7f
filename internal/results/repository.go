package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/pipeline"
)

// ErrNoRuns means nothing has been saved yet
var ErrNoRuns = errors.New("no scan runs saved")

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS warrantscan;

	CREATE TABLE IF NOT EXISTS warrantscan.runs (
		run_id      UUID PRIMARY KEY,
		option_type TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		screened    INT NOT NULL,
		qualified   INT NOT NULL,
		candidates  INT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS warrantscan.asset_snapshots (
		run_id    UUID NOT NULL REFERENCES warrantscan.runs(run_id) ON DELETE CASCADE,
		ticker    TEXT NOT NULL,
		score     INT NOT NULL,
		qualifies BOOLEAN NOT NULL,
		snapshot  JSONB NOT NULL,
		PRIMARY KEY (run_id, ticker)
	);

	CREATE TABLE IF NOT EXISTS warrantscan.candidates (
		run_id      UUID NOT NULL REFERENCES warrantscan.runs(run_id) ON DELETE CASCADE,
		rank        INT NOT NULL,
		ticker      TEXT NOT NULL,
		wkn         TEXT NOT NULL,
		total_score DOUBLE PRECISION NOT NULL,
		candidate   JSONB NOT NULL,
		PRIMARY KEY (run_id, rank)
	);
`

// RunSummary is the header row of a saved run
type RunSummary struct {
	RunID      string        `json:"run_id"`
	OptionType string        `json:"option_type"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Screened   int           `json:"screened"`
	Qualified  int           `json:"qualified"`
	Candidates int           `json:"candidates"`
}

// Repository handles scan result persistence
// ⭐ SSOT: 스캔 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new results repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the tables if they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun writes the run header, every snapshot and the ranked
// candidates in one transaction
func (r *Repository) SaveRun(ctx context.Context, run *pipeline.RunResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO warrantscan.runs (
			run_id, option_type, started_at, duration_ms, screened, qualified, candidates
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		run.RunID, string(run.OptionType), run.StartedAt, run.Duration.Milliseconds(),
		len(run.Snapshots), len(run.Qualified()), len(run.Ranked),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, s := range run.Snapshots {
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot %s: %w", s.Ticker, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO warrantscan.asset_snapshots (run_id, ticker, score, qualifies, snapshot)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (run_id, ticker) DO NOTHING
		`, run.RunID, s.Ticker, s.Score, s.Qualifies, payload)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot %s: %w", s.Ticker, err)
		}
	}

	for i, rc := range run.Ranked {
		payload, err := json.Marshal(rc)
		if err != nil {
			return fmt.Errorf("failed to marshal candidate: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO warrantscan.candidates (run_id, rank, ticker, wkn, total_score, candidate)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, run.RunID, i+1, rc.Snapshot.Ticker, rc.Candidate.Row.Code, rc.Candidate.TotalScore, payload)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestRun returns the header of the most recent run
func (r *Repository) LatestRun(ctx context.Context) (*RunSummary, error) {
	var s RunSummary
	var durationMs int64
	err := r.pool.QueryRow(ctx, `
		SELECT run_id::text, option_type, started_at, duration_ms, screened, qualified, candidates
		FROM warrantscan.runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&s.RunID, &s.OptionType, &s.StartedAt, &durationMs, &s.Screened, &s.Qualified, &s.Candidates)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	s.Duration = time.Duration(durationMs) * time.Millisecond
	return &s, nil
}

// LatestCandidates returns the ranked candidates of the most recent run.
// limit ≤ 0 returns all of them.
func (r *Repository) LatestCandidates(ctx context.Context, limit int) ([]contracts.RankedCandidate, error) {
	run, err := r.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT candidate
		FROM warrantscan.candidates
		WHERE run_id = $1
		ORDER BY rank ASC
	`
	args := []interface{}{run.RunID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []contracts.RankedCandidate
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		var rc contracts.RankedCandidate
		if err := json.Unmarshal(payload, &rc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return out, nil
}
