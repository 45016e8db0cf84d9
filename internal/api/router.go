package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/alphaframe/alphaframe/internal/api/handlers"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// NewRouter creates and configures the HTTP router. schedulerHandler
// may be nil when the server runs without an embedded scheduler.
func NewRouter(rankingHandler *handlers.RankingHandler, tradingHandler *handlers.TradingHandler, schedulerHandler *handlers.SchedulerHandler, hub *Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Ranking endpoints
	api.HandleFunc("/ranking/run", rankingHandler.RunRanking).Methods("POST")
	api.HandleFunc("/ranking/latest", rankingHandler.GetLatest).Methods("GET")
	api.HandleFunc("/ranking/picks", rankingHandler.GetTopPicks).Methods("GET")

	// Trading endpoints
	api.HandleFunc("/trading/orders", tradingHandler.GetOrders).Methods("GET")
	api.HandleFunc("/trading/account", tradingHandler.GetAccount).Methods("GET")
	api.HandleFunc("/trading/limits", tradingHandler.GetLimits).Methods("GET")

	// Scheduler endpoints
	if schedulerHandler != nil {
		api.HandleFunc("/scheduler/jobs", schedulerHandler.GetJobs).Methods("GET")
		api.HandleFunc("/scheduler/jobs/{name}/run", schedulerHandler.RunJob).Methods("POST")
	}

	// Realtime run updates
	r.HandleFunc("/ws/runs", hub.ServeWS)

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "alphaframe-api",
	})
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
