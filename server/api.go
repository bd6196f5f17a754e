package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/railoptima/railoptima/core"
)

// installAPI registers the REST surface described in SPEC_FULL.md §6,
// grounded on the teacher's server/http_api.go handler shape (decode,
// validate, call the domain, encode) but routed through gorilla/mux
// instead of the teacher's raw http.HandleFunc prefix matching, since
// /metrics/export needs no path parameter but /audit/logs and /schedule
// both benefit from mux's method restrictions.
func installAPI(router *mux.Router, env *Env) {
	router.HandleFunc("/schedule", serveSchedule(env)).Methods(http.MethodPost)
	router.HandleFunc("/health", serveHealth(env)).Methods(http.MethodGet)
	router.HandleFunc("/metrics", serveMetrics(env)).Methods(http.MethodGet)
	router.HandleFunc("/metrics/export", serveMetricsExport(env)).Methods(http.MethodPost)
	router.HandleFunc("/audit/logs", serveAuditLogs(env)).Methods(http.MethodGet)
	router.HandleFunc("/audit/stream", serveAuditStream(env)).Methods(http.MethodGet)
}

// scheduleResponse is the JSON shape from SPEC_FULL.md §6.
type scheduleResponse struct {
	Success           bool                 `json:"success"`
	OptimizedSchedule []core.ScheduleEntry `json:"optimized_schedule"`
	ObjectiveValue    float64              `json:"objective_value"`
	SolveTimeSeconds  float64              `json:"solve_time_seconds"`
	ConflictsResolved int                  `json:"conflicts_resolved"`
	TotalDelayMinutes int                  `json:"total_delay_minutes"`
	Message           string               `json:"message,omitempty"`
}

func serveSchedule(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req core.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		env.Logger.Info("received optimization request", "trains", len(req.Trains))

		result, err := env.optimize(req)
		if err != nil {
			env.Logger.Error("optimization failed", "error", err)
			http.Error(w, "optimization failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		env.Logger.Info("optimization completed", "objective", result.ObjectiveValue)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(scheduleResponse{
			Success:           true,
			OptimizedSchedule: result.Schedule,
			ObjectiveValue:    result.ObjectiveValue,
			SolveTimeSeconds:  result.SolveTimeSeconds,
			ConflictsResolved: result.ConflictsResolved,
			TotalDelayMinutes: result.TotalDelayMinutes,
		})
	}
}

func serveHealth(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":          "healthy",
			"solver":          env.Config.SolverType,
			"optimizer_ready": true,
		})
	}
}

func serveMetrics(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.URL.Query().Get("detailed") == "1" {
			_ = json.NewEncoder(w).Encode(env.Monitor.Detailed())
			return
		}
		_ = json.NewEncoder(w).Encode(env.Monitor.Summary())
	}
}

func serveMetricsExport(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
			http.Error(w, "request body must set \"path\"", http.StatusBadRequest)
			return
		}
		if err := env.Monitor.Export(body.Path); err != nil {
			http.Error(w, "export failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "exported", "path": body.Path})
	}
}

func serveAuditLogs(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 200
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": env.Audits.recent(limit)})
	}
}

func serveAuditStream(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		ch := env.Audits.subscribe()
		defer env.Audits.unsubscribe(ch)

		_, _ = w.Write([]byte(":ok\n\n"))
		flusher.Flush()

		enc := json.NewEncoder(w)
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return
				}
				_, _ = w.Write([]byte("event: audit\ndata: "))
				_ = enc.Encode(e)
				_, _ = w.Write([]byte("\n"))
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}
