package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"mysre-backend/domain/model"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
	"mysre-backend/pkg/common"
	"mysre-backend/pkg/utils"
)

// TelemetryHandler serves annotations, assignments, analytics events and
// batched gaze samples.
type TelemetryHandler struct {
	telemetry *repository.TelemetryRepository
	logger    *zap.Logger
}

// NewTelemetryHandler creates a telemetry handler.
func NewTelemetryHandler(telemetry *repository.TelemetryRepository, logger *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry, logger: logger}
}

// CreateAnnotationRequest is the POST /api/annotations body.
type CreateAnnotationRequest struct {
	ArticleID string `json:"articleId" validate:"required,uuid"`
	Target    string `json:"target" validate:"required"`
	Body      string `json:"body"`
}

// CreateAnnotation handles POST /api/annotations.
func (h *TelemetryHandler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateAnnotationRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	annotation, err := h.telemetry.CreateAnnotation(r.Context(), user.UserID, req.ArticleID, req.Target, req.Body)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, annotation)
}

// ListAnnotations handles GET /api/annotations with an optional articleId
// filter.
func (h *TelemetryHandler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var articleID *string
	if raw := r.URL.Query().Get("articleId"); raw != "" {
		articleID = &raw
	}
	annotations, err := h.telemetry.ListAnnotations(r.Context(), user.UserID, articleID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"annotations": annotations})
}

// DeleteAnnotation handles DELETE /api/annotations/{annotationID}.
func (h *TelemetryHandler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := h.telemetry.DeleteAnnotation(r.Context(), user.UserID, chi.URLParam(r, "annotationID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// CreateAssignmentRequest is the POST /api/assignments body.
type CreateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=300"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
}

// CreateAssignment handles POST /api/assignments.
func (h *TelemetryHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateAssignmentRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	assignment, err := h.telemetry.CreateAssignment(r.Context(), user.UserID, req.Title, req.Description, req.DueAt)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, assignment)
}

// ListAssignments handles GET /api/assignments.
func (h *TelemetryHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	assignments, err := h.telemetry.ListAssignments(r.Context(), user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"assignments": assignments})
}

// UpdateAssignmentRequest is the PUT /api/assignments/{assignmentID} body.
type UpdateAssignmentRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=OPEN IN_PROGRESS DONE"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
}

// UpdateAssignment handles PUT /api/assignments/{assignmentID}.
func (h *TelemetryHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateAssignmentRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	assignment, err := h.telemetry.UpdateAssignment(r.Context(), user.UserID, chi.URLParam(r, "assignmentID"),
		repository.AssignmentUpdate{Title: req.Title, Description: req.Description, Status: req.Status, DueAt: req.DueAt})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, assignment)
}

// CreateAnalyticsRequest is the POST /api/analytics body. Payload is stored
// verbatim.
type CreateAnalyticsRequest struct {
	Event   string         `json:"event" validate:"required,min=1,max=200"`
	Payload datatypes.JSON `json:"payload,omitempty"`
}

// CreateAnalytics handles POST /api/analytics.
func (h *TelemetryHandler) CreateAnalytics(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateAnalyticsRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := h.telemetry.CreateAnalyticsEvent(r.Context(), user.UserID, req.Event, req.Payload)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, event)
}

// ListAnalytics handles GET /api/analytics. The route is admin-gated by
// middleware; limit defaults to 100 and caps at 1000.
func (h *TelemetryHandler) ListAnalytics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.telemetry.ListAnalyticsEvents(r.Context(), limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"events": events})
}

// GazeEventPayload is one sample in the POST /api/gaze-events batch.
type GazeEventPayload struct {
	SessionID  *string    `json:"sessionId,omitempty" validate:"omitempty,uuid"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	RecordedAt *time.Time `json:"recordedAt,omitempty"`
}

// CreateGazeEventsRequest is the POST /api/gaze-events body.
type CreateGazeEventsRequest struct {
	Events []GazeEventPayload `json:"events" validate:"required,min=1,max=5000,dive"`
}

// CreateGazeEvents handles POST /api/gaze-events; the whole batch is written
// in one insert.
func (h *TelemetryHandler) CreateGazeEvents(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateGazeEventsRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now()
	events := make([]model.GazeEvent, len(req.Events))
	for i, e := range req.Events {
		recordedAt := now
		if e.RecordedAt != nil {
			recordedAt = *e.RecordedAt
		}
		events[i] = model.GazeEvent{
			UserID:     user.UserID,
			SessionID:  e.SessionID,
			X:          e.X,
			Y:          e.Y,
			RecordedAt: recordedAt,
		}
	}
	inserted, err := h.telemetry.InsertGazeEvents(r.Context(), events)
	if err != nil {
		h.logger.Error("gaze batch insert failed", zap.Int("batch", len(events)), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]any{"inserted": inserted})
}
