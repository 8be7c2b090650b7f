package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/warrantscan/internal/api/handlers"
	"github.com/wonny/warrantscan/pkg/database"
	"github.com/wonny/warrantscan/pkg/logger"
)

// HealthChecker reports database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) *database.HealthStatus
}

// Deps bundles everything the router mounts. Nil members are skipped.
type Deps struct {
	Scan     *handlers.ScanHandler
	Results  *handlers.ResultsHandler
	Mapping  *handlers.MappingHandler
	Hub      *Hub
	Metrics  http.Handler
	Database HealthChecker
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps Deps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(deps.Database)).Methods("GET")

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	if deps.Hub != nil {
		r.HandleFunc("/ws/scan", deps.Hub.ServeWS)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Scan endpoints
	if deps.Scan != nil {
		api.HandleFunc("/scan", deps.Scan.Trigger).Methods("POST")
		api.HandleFunc("/scan/status", deps.Scan.Status).Methods("GET")
	}

	// Result endpoints
	if deps.Results != nil {
		api.HandleFunc("/results/latest", deps.Results.GetLatest).Methods("GET")
		api.HandleFunc("/results/latest.csv", deps.Results.ExportLatest).Methods("GET")
	}

	// Mapping endpoints
	if deps.Mapping != nil {
		api.HandleFunc("/mapping", deps.Mapping.List).Methods("GET")
		api.HandleFunc("/mapping/{ticker}", deps.Mapping.Resolve).Methods("GET")
		api.HandleFunc("/mapping/{ticker}", deps.Mapping.Update).Methods("PUT")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "warrantscan-api",
		}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			health := db.HealthCheck(ctx)
			cancel()

			body["database"] = health
			if !health.Healthy {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
