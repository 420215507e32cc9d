package http

import (
	"context"
	"net/http"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Groups     *GroupHandler
	Sessions   *SessionHandler
	Attendance *AttendanceHandler
	Health     []HealthChecker
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Groups != nil {
		mux.HandleFunc("POST /projects/{projectID}/groups", cfg.Groups.Create)
		mux.HandleFunc("POST /projects/{projectID}/groups/batch", cfg.Groups.CreateBatch)
		mux.HandleFunc("GET /projects/{projectID}/groups/{groupID}", cfg.Groups.Get)
		mux.HandleFunc("POST /projects/{projectID}/groups/{groupID}/rules", cfg.Groups.AddRule)
	}

	if cfg.Sessions != nil {
		mux.HandleFunc("GET /sessions", cfg.Sessions.List)
		const sessionPath = "/projects/{projectID}/groups/{groupID}/sessions/{sessionID}"
		mux.HandleFunc("POST "+sessionPath+"/complete", cfg.Sessions.Complete)
		mux.HandleFunc("POST "+sessionPath+"/missed", cfg.Sessions.Missed)
		mux.HandleFunc("POST "+sessionPath+"/cancel", cfg.Sessions.Cancel)
	}

	if cfg.Attendance != nil {
		mux.HandleFunc("GET /attendance", cfg.Attendance.List)
		mux.HandleFunc("POST /attendance", cfg.Attendance.Log)
		mux.HandleFunc("GET /attendance/summary", cfg.Attendance.Summary)
		mux.HandleFunc("POST /attendance/sweep", cfg.Attendance.Sweep)
		mux.HandleFunc("POST /attendance/{id}/confirm", cfg.Attendance.Confirm)
	}

	mux.HandleFunc("GET /healthz", healthHandler(cfg.Health))

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func healthHandler(checks []HealthChecker) http.HandlerFunc {
	responder := newResponder(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				responder.writeError(r.Context(), w, http.StatusServiceUnavailable, err)
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
