package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/pkg/logger"
)

// ScanRunner runs one discovery pass over a ticker list
type ScanRunner interface {
	Run(ctx context.Context, tickers []string) (*pipeline.RunResult, error)
}

// RunStore persists finished runs
type RunStore interface {
	SaveRun(ctx context.Context, run *pipeline.RunResult) error
}

// ScanHandler triggers scans and reports their state
// ⭐ SSOT: 스캔 트리거 API는 여기서만. 동시에 하나의 스캔만 실행
type ScanHandler struct {
	runner  ScanRunner
	store   RunStore // optional
	tickers []string
	logger  *logger.Logger

	// scans outlive the triggering request
	baseCtx context.Context

	mu       sync.RWMutex
	running  bool
	started  time.Time
	latest   *pipeline.RunResult
	lastErr  string
	finished chan struct{}
}

// NewScanHandler creates a new scan handler.
// ctx bounds background scans; cancel it on shutdown.
func NewScanHandler(ctx context.Context, runner ScanRunner, tickers []string, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		runner:  runner,
		tickers: tickers,
		logger:  log,
		baseCtx: ctx,
	}
}

// WithStore persists every run triggered through the API
func (h *ScanHandler) WithStore(store RunStore) *ScanHandler {
	h.store = store
	return h
}

// ScanRequest optionally narrows a scan to specific tickers
type ScanRequest struct {
	Tickers []string `json:"tickers"`
}

// ScanStatus describes the scan state
type ScanStatus struct {
	Running     bool       `json:"running"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	LastRunID   string     `json:"last_run_id,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Qualified   int        `json:"qualified"`
	Candidates  int        `json:"candidates"`
	LastRunTime string     `json:"last_run_duration,omitempty"`
}

// Trigger starts a scan in the background
// POST /api/scan
func (h *ScanHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tickers := h.tickers
	if len(req.Tickers) > 0 {
		tickers = normalizeTickers(req.Tickers)
	}
	if len(tickers) == 0 {
		respondError(w, http.StatusBadRequest, "No tickers to scan")
		return
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		respondError(w, http.StatusConflict, "A scan is already running")
		return
	}
	h.running = true
	h.started = time.Now()
	h.finished = make(chan struct{})
	done := h.finished
	h.mu.Unlock()

	go h.run(tickers, done)

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "started",
		"tickers": len(tickers),
	})
}

func (h *ScanHandler) run(tickers []string, done chan struct{}) {
	defer close(done)

	run, err := h.runner.Run(h.baseCtx, tickers)
	if err == nil && h.store != nil {
		err = h.store.SaveRun(h.baseCtx, run)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	h.lastErr = ""
	if run != nil {
		h.latest = run
	}
	if err != nil {
		h.lastErr = err.Error()
		h.logger.WithError(err).Error("API-triggered scan failed")
	}
}

// Wait blocks until the current scan (if any) finishes
func (h *ScanHandler) Wait() {
	h.mu.RLock()
	done := h.finished
	h.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// Latest returns the most recent run triggered through the API, or nil
func (h *ScanHandler) Latest() *pipeline.RunResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Status reports whether a scan is running and how the last one went
// GET /api/scan/status
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	status := ScanStatus{
		Running:   h.running,
		LastError: h.lastErr,
	}
	if h.running {
		started := h.started
		status.StartedAt = &started
	}
	if h.latest != nil {
		status.LastRunID = h.latest.RunID
		status.Qualified = len(h.latest.Qualified())
		status.Candidates = len(h.latest.Ranked)
		status.LastRunTime = h.latest.Duration.String()
	}
	h.mu.RUnlock()

	respondJSON(w, http.StatusOK, status)
}

// normalizeTickers trims, upper-cases and de-duplicates tickers
func normalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
