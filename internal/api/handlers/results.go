package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/internal/report"
	"github.com/wonny/warrantscan/internal/results"
	"github.com/wonny/warrantscan/pkg/logger"
)

// CandidateStore reads persisted candidates
type CandidateStore interface {
	LatestCandidates(ctx context.Context, limit int) ([]contracts.RankedCandidate, error)
}

// LatestRunFunc returns an in-memory run, or nil when none has finished
type LatestRunFunc func() *pipeline.RunResult

// ResultsHandler serves ranked candidates of the latest run.
// In-memory runs win over the database.
type ResultsHandler struct {
	latest []LatestRunFunc
	store  CandidateStore // optional
	logger *logger.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(store CandidateStore, log *logger.Logger, latest ...LatestRunFunc) *ResultsHandler {
	return &ResultsHandler{
		latest: latest,
		store:  store,
		logger: log,
	}
}

// ResultsResponse is the JSON shape of GET /api/results/latest
type ResultsResponse struct {
	RunID      string                      `json:"run_id,omitempty"`
	Source     string                      `json:"source"`
	Count      int                         `json:"count"`
	Candidates []contracts.RankedCandidate `json:"candidates"`
}

// GetLatest returns the top ranked candidates
// GET /api/results/latest?limit=20
func (h *ResultsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.load(r.Context(), queryInt(r, "limit", 20))
	if errors.Is(err, results.ErrNoRuns) {
		respondError(w, http.StatusNotFound, "No scan results yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest candidates")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve results")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// ExportLatest returns every candidate of the latest run as CSV
// GET /api/results/latest.csv
func (h *ResultsHandler) ExportLatest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.load(r.Context(), 0)
	if errors.Is(err, results.ErrNoRuns) {
		respondError(w, http.StatusNotFound, "No scan results yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest candidates")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve results")
		return
	}

	name := "warrants_latest.csv"
	if resp.RunID != "" {
		name = fmt.Sprintf("warrants_%s.csv", resp.RunID)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, resp.Candidates); err != nil {
		h.logger.WithError(err).Warn("CSV export interrupted")
	}
}

// load returns up to limit candidates; limit ≤ 0 means all
func (h *ResultsHandler) load(ctx context.Context, limit int) (*ResultsResponse, error) {
	if run := h.newestRun(); run != nil {
		ranked := run.Ranked
		if limit > 0 && len(ranked) > limit {
			ranked = ranked[:limit]
		}
		return newResultsResponse(run.RunID, "memory", ranked), nil
	}

	if h.store == nil {
		return nil, results.ErrNoRuns
	}

	ranked, err := h.store.LatestCandidates(ctx, limit)
	if err != nil {
		return nil, err
	}
	return newResultsResponse("", "database", ranked), nil
}

func (h *ResultsHandler) newestRun() *pipeline.RunResult {
	var newest *pipeline.RunResult
	for _, fn := range h.latest {
		run := fn()
		if run == nil {
			continue
		}
		if newest == nil || run.StartedAt.After(newest.StartedAt) {
			newest = run
		}
	}
	return newest
}

func newResultsResponse(runID, source string, ranked []contracts.RankedCandidate) *ResultsResponse {
	if ranked == nil {
		ranked = []contracts.RankedCandidate{}
	}
	return &ResultsResponse{
		RunID:      runID,
		Source:     source,
		Count:      len(ranked),
		Candidates: ranked,
	}
}
