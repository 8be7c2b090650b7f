package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/names"
	"github.com/wonny/warrantscan/pkg/logger"
)

// MappingResolver resolves a ticker to listing names
type MappingResolver interface {
	ResolveWithSource(ctx context.Context, ticker string) names.Resolution
}

// MappingStore holds the persisted ticker → names mapping
type MappingStore interface {
	Put(ticker string, names []string) error
	Snapshot() contracts.NameMapping
}

// MappingHandler exposes the underlying-name mapping
type MappingHandler struct {
	resolver MappingResolver
	store    MappingStore
	logger   *logger.Logger
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(resolver MappingResolver, store MappingStore, log *logger.Logger) *MappingHandler {
	return &MappingHandler{
		resolver: resolver,
		store:    store,
		logger:   log,
	}
}

// List returns the whole persisted mapping
// GET /api/mapping
func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// Resolve resolves one ticker, deriving and persisting names when needed
// GET /api/mapping/{ticker}
func (h *MappingHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	respondJSON(w, http.StatusOK, h.resolver.ResolveWithSource(r.Context(), ticker))
}

// MappingUpdate overrides the names stored for a ticker
type MappingUpdate struct {
	Names []string `json:"names"`
}

// Update stores a manual mapping for a ticker
// PUT /api/mapping/{ticker}
func (h *MappingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))

	var req MappingUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cleaned := make([]string, 0, len(req.Names))
	for _, n := range req.Names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if ticker == "" || len(cleaned) == 0 {
		respondError(w, http.StatusBadRequest, "Ticker and at least one name are required")
		return
	}

	if err := h.store.Put(ticker, cleaned); err != nil {
		h.logger.WithError(err).WithTicker(ticker).Error("Failed to persist mapping")
		respondError(w, http.StatusInternalServerError, "Failed to persist mapping")
		return
	}

	respondJSON(w, http.StatusOK, names.Resolution{Ticker: ticker, Names: cleaned, Source: names.SourceCache})
}
