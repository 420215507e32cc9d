package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/recurrence"
)

type groupService interface {
	CreateGroup(ctx context.Context, spec application.GroupSpec) (application.Group, error)
	CreateForDays(ctx context.Context, base application.GroupSpec, weekdays []recurrence.Weekday) (application.BatchResult, error)
	GetGroup(ctx context.Context, projectID, groupID string) (application.Group, error)
	AddRule(ctx context.Context, projectID, groupID string, spec application.RuleSpec) (application.Group, error)
}

// GroupHandler serves group creation and inspection endpoints.
type GroupHandler struct {
	service   groupService
	responder responder
	logger    *slog.Logger
}

func NewGroupHandler(service groupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// Create handles POST /projects/{projectID}/groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID := strings.TrimSpace(r.PathValue("projectID"))
	if projectID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req groupRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	spec, err := req.toSpec(projectID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), spec)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toGroupDTO(group))
}

// CreateBatch handles POST /projects/{projectID}/groups/batch. A partially
// successful batch answers 207 with per-weekday errors.
func (h *GroupHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID := strings.TrimSpace(r.PathValue("projectID"))
	if projectID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req batchGroupRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	spec, weekdays, err := req.toSpec(projectID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	result, err := h.service.CreateForDays(r.Context(), spec, weekdays)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	switch result.Outcome() {
	case application.BatchPartial:
		status = http.StatusMultiStatus
	case application.BatchFailed:
		status = statusForError(result.Errors[result.FailedDays()[0]])
	}
	if status != http.StatusCreated {
		handlerLogger(r.Context(), h.logger, "GroupHandler", "CreateBatch", "project_id", projectID).
			WarnContext(r.Context(), "batch incomplete", "outcome", string(result.Outcome()), "summary", result.Summary())
	}

	h.responder.writeJSON(r.Context(), w, status, toBatchResponse(result))
}

// Get handles GET /projects/{projectID}/groups/{groupID}.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	group, err := h.service.GetGroup(r.Context(), r.PathValue("projectID"), r.PathValue("groupID"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toGroupDTO(group))
}

// AddRule handles POST /projects/{projectID}/groups/{groupID}/rules.
func (h *GroupHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req ruleRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	spec, err := req.toSpec()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	group, err := h.service.AddRule(r.Context(), r.PathValue("projectID"), r.PathValue("groupID"), spec)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toGroupDTO(group))
}

// scheduleFields are the rule fields shared by every group request.
type scheduleFields struct {
	StartTime  string `json:"start_time" validate:"notblank"`
	EndTime    string `json:"end_time" validate:"notblank"`
	Location   string `json:"location" validate:"max=200"`
	Mode       string `json:"mode" validate:"omitempty,oneof=in-person remote hybrid"`
	ValidFrom  string `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidUntil string `json:"valid_until" validate:"required,datetime=2006-01-02"`
}

func (f scheduleFields) toRuleSpec(weekday recurrence.Weekday) application.RuleSpec {
	// Dates were checked by the datetime tag.
	from, _ := recurrence.ParseDate(f.ValidFrom)
	until, _ := recurrence.ParseDate(f.ValidUntil)
	return application.RuleSpec{
		Weekday:    weekday,
		StartTime:  strings.TrimSpace(f.StartTime),
		EndTime:    strings.TrimSpace(f.EndTime),
		Location:   f.Location,
		Mode:       recurrence.Mode(f.Mode),
		ValidFrom:  from,
		ValidUntil: until,
	}
}

type ruleRequest struct {
	Weekday *int `json:"weekday" validate:"required,min=0,max=6"`
	scheduleFields
}

func (r ruleRequest) toSpec() (application.RuleSpec, error) {
	if err := validateRequest(r); err != nil {
		return application.RuleSpec{}, err
	}
	return r.scheduleFields.toRuleSpec(recurrence.Weekday(*r.Weekday)), nil
}

type groupRequest struct {
	MentorID string `json:"mentor_id" validate:"notblank"`
	Weekday  *int   `json:"weekday" validate:"required,min=0,max=6"`
	scheduleFields
}

func (r groupRequest) toSpec(projectID string) (application.GroupSpec, error) {
	if err := validateRequest(r); err != nil {
		return application.GroupSpec{}, err
	}
	return application.GroupSpec{
		ProjectID: projectID,
		MentorID:  strings.TrimSpace(r.MentorID),
		RuleSpec:  r.scheduleFields.toRuleSpec(recurrence.Weekday(*r.Weekday)),
	}, nil
}

type batchGroupRequest struct {
	MentorID string `json:"mentor_id" validate:"notblank"`
	Weekdays []int  `json:"weekdays" validate:"required,min=1,max=7,dive,min=0,max=6"`
	scheduleFields
}

func (r batchGroupRequest) toSpec(projectID string) (application.GroupSpec, []recurrence.Weekday, error) {
	if err := validateRequest(r); err != nil {
		return application.GroupSpec{}, nil, err
	}
	weekdays := make([]recurrence.Weekday, 0, len(r.Weekdays))
	for _, day := range r.Weekdays {
		weekdays = append(weekdays, recurrence.Weekday(day))
	}
	spec := application.GroupSpec{
		ProjectID: projectID,
		MentorID:  strings.TrimSpace(r.MentorID),
		RuleSpec:  r.scheduleFields.toRuleSpec(recurrence.Monday),
	}
	return spec, weekdays, nil
}

type batchResponse struct {
	Outcome string            `json:"outcome"`
	Summary string            `json:"summary"`
	Created []groupDTO        `json:"created"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func toBatchResponse(result application.BatchResult) batchResponse {
	resp := batchResponse{
		Outcome: string(result.Outcome()),
		Summary: result.Summary(),
		Created: make([]groupDTO, 0, len(result.Created)),
	}
	for _, group := range result.Created {
		resp.Created = append(resp.Created, toGroupDTO(group))
	}
	if len(result.Errors) > 0 {
		resp.Errors = make(map[string]string, len(result.Errors))
		for day, err := range result.Errors {
			resp.Errors[day.String()] = err.Error()
		}
	}
	return resp
}
