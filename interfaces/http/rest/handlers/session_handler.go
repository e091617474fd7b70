package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
	"mysre-backend/pkg/common"
	"mysre-backend/pkg/utils"
)

// SessionHandler serves both brainstorming and writer session endpoints. The
// two resources share handlers; the kind is fixed per route group.
type SessionHandler struct {
	sessions *repository.SessionRepository
	kind     repository.SessionKind
	logger   *zap.Logger
}

// NewBrainstormingSessionHandler creates the handler for /api/sessions.
func NewBrainstormingSessionHandler(sessions *repository.SessionRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, kind: repository.KindBrainstorming, logger: logger}
}

// NewWriterSessionHandler creates the handler for /api/writer-sessions.
func NewWriterSessionHandler(sessions *repository.SessionRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, kind: repository.KindWriter, logger: logger}
}

// CreateSessionRequest is the POST body for either session kind.
type CreateSessionRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=300"`
	CoverImage string `json:"coverImage"`
}

// Create handles POST for the handler's session kind.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateSessionRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.sessions.Create(r.Context(), h.kind, user.UserID, req.Title, req.CoverImage)
	if err != nil {
		h.logger.Error("create session failed", zap.String("kind", string(h.kind)), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, session)
}

// List handles GET, most recently active first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	sessions, err := h.sessions.ListByUser(r.Context(), h.kind, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// Get handles GET /{sessionID}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	session, err := h.sessions.GetByID(r.Context(), h.kind, user.UserID, chi.URLParam(r, "sessionID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, session)
}

// UpdateSessionRequest is the PUT body for either session kind.
type UpdateSessionRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	CoverImage *string `json:"coverImage,omitempty"`
}

// Update handles PUT /{sessionID} and refreshes the activity timestamp.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateSessionRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.sessions.Update(r.Context(), h.kind, user.UserID, chi.URLParam(r, "sessionID"),
		repository.SessionUpdate{Title: req.Title, CoverImage: req.CoverImage})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /{sessionID}. Attached articles or drafts are kept
// and detached, not removed.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := h.sessions.Delete(r.Context(), h.kind, user.UserID, chi.URLParam(r, "sessionID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
