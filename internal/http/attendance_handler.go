package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/attendance"
)

type attendanceService interface {
	ListRecords(ctx context.Context, filter application.AttendanceFilter) ([]application.AttendanceRecord, error)
	LogHours(ctx context.Context, input application.LogHoursInput) (application.AttendanceRecord, error)
	Confirm(ctx context.Context, id, confirmedBy string) (application.AttendanceRecord, error)
	Summary(ctx context.Context, filter application.AttendanceFilter) (attendance.Summary, error)
	GenerateFromElapsedSessions(ctx context.Context) (application.SweepResult, error)
}

// AttendanceHandler serves attendance logging, confirmation and reporting.
type AttendanceHandler struct {
	service   attendanceService
	responder responder
}

func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{service: service, responder: newResponder(logger)}
}

// List handles GET /attendance.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := buildAttendanceFilter(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	records, err := h.service.ListRecords(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAttendanceResponse{Records: toAttendanceDTOs(records)})
}

// Log handles POST /attendance.
func (h *AttendanceHandler) Log(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req logHoursRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	record, err := h.service.LogHours(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAttendanceDTO(record))
}

// Confirm handles POST /attendance/{id}/confirm.
func (h *AttendanceHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req confirmRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	record, err := h.service.Confirm(r.Context(), id, req.ConfirmedBy)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAttendanceDTO(record))
}

// Summary handles GET /attendance/summary.
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := buildAttendanceFilter(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, summary)
}

// Sweep handles POST /attendance/sweep.
func (h *AttendanceHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	result, err := h.service.GenerateFromElapsedSessions(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sweepResponse{
		Created: toAttendanceDTOs(result.Created),
		Skipped: result.Skipped,
	})
}

func buildAttendanceFilter(values url.Values) (application.AttendanceFilter, error) {
	filter := application.AttendanceFilter{
		MentorID:  strings.TrimSpace(values.Get("mentor_id")),
		ProjectID: strings.TrimSpace(values.Get("project_id")),
		SessionID: strings.TrimSpace(values.Get("session_id")),
	}
	if raw := strings.TrimSpace(values.Get("confirmed")); raw != "" {
		confirmed, err := strconv.ParseBool(raw)
		if err != nil {
			return application.AttendanceFilter{}, fieldError("confirmed", "must be true or false")
		}
		filter.Confirmed = &confirmed
	}
	var err error
	if filter.From, err = parseDateField("from", strings.TrimSpace(values.Get("from"))); err != nil {
		return application.AttendanceFilter{}, err
	}
	if filter.To, err = parseDateField("to", strings.TrimSpace(values.Get("to"))); err != nil {
		return application.AttendanceFilter{}, err
	}
	return filter, nil
}

type logHoursRequest struct {
	SessionID *string  `json:"session_id" validate:"omitempty,notblank"`
	MentorID  string   `json:"mentor_id" validate:"notblank"`
	ProjectID string   `json:"project_id" validate:"notblank"`
	Hours     *float64 `json:"hours" validate:"required,gte=0"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
}

func (r logHoursRequest) toInput() (application.LogHoursInput, error) {
	if err := validateRequest(r); err != nil {
		return application.LogHoursInput{}, err
	}
	date, err := parseDateField("date", r.Date)
	if err != nil {
		return application.LogHoursInput{}, err
	}
	return application.LogHoursInput{
		SessionID: r.SessionID,
		MentorID:  r.MentorID,
		ProjectID: r.ProjectID,
		Hours:     *r.Hours,
		Date:      *date,
	}, nil
}

type confirmRequest struct {
	ConfirmedBy string `json:"confirmed_by" validate:"notblank"`
}

type listAttendanceResponse struct {
	Records []attendanceDTO `json:"records"`
}

type sweepResponse struct {
	Created []attendanceDTO `json:"created"`
	Skipped int             `json:"skipped"`
}
