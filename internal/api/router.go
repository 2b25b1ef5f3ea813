package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/dipscan/internal/api/handlers"
	"github.com/wonny/dipscan/pkg/logger"
)

// Handlers bundles every endpoint group served by the router
type Handlers struct {
	Health   *handlers.HealthHandler
	Runs     *handlers.RunHandler
	Ledger   *handlers.LedgerHandler
	Backtest *handlers.BacktestHandler
	Hub      *Hub
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, limiter *rate.Limiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check (rate limit 제외)
	r.HandleFunc("/health", h.Health.Check).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rateLimitMiddleware(limiter))

	// Signal / run endpoints
	api.HandleFunc("/signals", h.Runs.GetSignals).Methods("GET")
	api.HandleFunc("/runs", h.Runs.TriggerRun).Methods("POST")
	api.HandleFunc("/runs/last", h.Runs.GetLastRun).Methods("GET")

	// Ledger endpoints
	api.HandleFunc("/ledger", h.Ledger.GetPositions).Methods("GET")
	api.HandleFunc("/ledger/stats", h.Ledger.GetStats).Methods("GET")

	// Backtest endpoints
	api.HandleFunc("/backtest/summary", h.Backtest.GetSummary).Methods("GET")

	// Run event stream
	r.HandleFunc("/ws/runs", h.Hub.ServeWS).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// rateLimitMiddleware applies one shared token bucket to every request
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
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
