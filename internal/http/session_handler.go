package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/example/mentorship-scheduler/internal/application"
)

type sessionService interface {
	ListSessions(ctx context.Context, filter application.SessionFilter) ([]application.Session, error)
	MarkCompleted(ctx context.Context, ref application.SessionRef, notes *string) (application.Session, error)
	MarkMissed(ctx context.Context, ref application.SessionRef, reason *string) (application.Session, error)
	CancelSession(ctx context.Context, ref application.SessionRef, reason *string) (application.Session, error)
}

// SessionHandler serves the session calendar and outcome endpoints.
type SessionHandler struct {
	service   sessionService
	responder responder
}

func NewSessionHandler(service sessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, responder: newResponder(logger)}
}

// List handles GET /sessions?group_id=&project_id=&from=&to=.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := buildSessionFilter(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: out})
}

// Complete handles POST .../sessions/{sessionID}/complete.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, sessionService.MarkCompleted)
}

// Missed handles POST .../sessions/{sessionID}/missed.
func (h *SessionHandler) Missed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, sessionService.MarkMissed)
}

// Cancel handles POST .../sessions/{sessionID}/cancel.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, sessionService.CancelSession)
}

type transitionFunc func(svc sessionService, ctx context.Context, ref application.SessionRef, notes *string) (application.Session, error)

func (h *SessionHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req outcomeRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	ref := application.SessionRef{
		ProjectID: r.PathValue("projectID"),
		GroupID:   r.PathValue("groupID"),
		SessionID: r.PathValue("sessionID"),
	}
	session, err := fn(h.service, r.Context(), ref, req.Notes)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSessionDTO(session))
}

func buildSessionFilter(values url.Values) (application.SessionFilter, error) {
	filter := application.SessionFilter{
		GroupID:   strings.TrimSpace(values.Get("group_id")),
		ProjectID: strings.TrimSpace(values.Get("project_id")),
	}
	var err error
	if filter.From, err = parseDateField("from", strings.TrimSpace(values.Get("from"))); err != nil {
		return application.SessionFilter{}, err
	}
	if filter.To, err = parseDateField("to", strings.TrimSpace(values.Get("to"))); err != nil {
		return application.SessionFilter{}, err
	}
	return filter, nil
}

type outcomeRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type listSessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}
