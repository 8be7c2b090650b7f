package results

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/pkg/config"
	"github.com/wonny/warrantscan/pkg/database"
)

func TestRepository_SaveAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	snap := contracts.AssetSnapshot{Ticker: "SAP.DE", Currency: "EUR", Close: 100, Score: 12, Qualifies: true}
	be := 102.0
	run := &pipeline.RunResult{
		RunID:      uuid.New().String(),
		OptionType: contracts.Call,
		StartedAt:  time.Now().UTC().Truncate(time.Millisecond),
		Duration:   1500 * time.Millisecond,
		Snapshots:  []contracts.AssetSnapshot{snap},
		Ranked: []contracts.RankedCandidate{
			{Snapshot: snap, Candidate: contracts.ScoredCandidate{
				Row:        contracts.EnrichedListingRow{ListingRow: contracts.ListingRow{Code: "AB12CD", Strike: 100, Ask: 2}},
				Breakeven:  &be,
				TotalScore: 98,
			}},
		},
	}
	require.NoError(t, repo.SaveRun(ctx, run))

	summary, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, summary.RunID)
	assert.Equal(t, 1, summary.Qualified)
	assert.Equal(t, 1500*time.Millisecond, summary.Duration)

	cands, err := repo.LatestCandidates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "AB12CD", cands[0].Candidate.Row.Code)
	require.NotNil(t, cands[0].Candidate.Breakeven)
	assert.InDelta(t, 102.0, *cands[0].Candidate.Breakeven, 1e-9)
}
