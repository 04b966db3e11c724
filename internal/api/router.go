package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sellerstats/wbsync/internal/scheduler"
	"github.com/sellerstats/wbsync/pkg/database"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// NewRouter creates and configures the ops HTTP router.
func NewRouter(db *database.DB, sched *scheduler.Scheduler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	h := &handler{db: db, sched: sched}

	r.HandleFunc("/health", h.health).Methods("GET")
	r.HandleFunc("/jobs", h.jobs).Methods("GET")
	r.HandleFunc("/jobs/{name}/history", h.jobHistory).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

type handler struct {
	db    *database.DB
	sched *scheduler.Scheduler
}

// health reports service and database health.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	status, err := h.db.HealthCheck(r.Context())

	code := http.StatusOK
	if err != nil || !status.Healthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"service":  "wbsync",
		"database": status,
	})
}

// jobs returns per-job run statistics.
func (h *handler) jobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.GetJobStats())
}

// jobHistory returns the recent runs of one job.
func (h *handler) jobHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.sched.GetJobHistory(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, history.GetLatestResults(20))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// loggingMiddleware logs HTTP requests.
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

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
