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

// DraftHandler serves the draft endpoints. Drafts carry an ordered list of
// sections that is always written and read as a whole.
type DraftHandler struct {
	drafts *repository.DraftRepository
	logger *zap.Logger
}

// NewDraftHandler creates a draft handler.
func NewDraftHandler(drafts *repository.DraftRepository, logger *zap.Logger) *DraftHandler {
	return &DraftHandler{drafts: drafts, logger: logger}
}

// SectionPayload is one section in a draft request body. Position is implied
// by slice order.
type SectionPayload struct {
	Title   string `json:"title" validate:"max=300"`
	Content string `json:"content"`
}

// CreateDraftRequest is the POST /api/drafts body.
type CreateDraftRequest struct {
	Title     string           `json:"title" validate:"required,min=1,max=300"`
	SessionID *string          `json:"sessionId,omitempty" validate:"omitempty,uuid"`
	Sections  []SectionPayload `json:"sections" validate:"dive"`
}

func sectionInputs(payloads []SectionPayload) []repository.SectionInput {
	sections := make([]repository.SectionInput, len(payloads))
	for i, p := range payloads {
		sections[i] = repository.SectionInput{Title: p.Title, Content: p.Content}
	}
	return sections
}

// Create handles POST /api/drafts.
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateDraftRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := h.drafts.CreateWithSections(r.Context(), user.UserID, req.Title, req.SessionID, sectionInputs(req.Sections))
	if err != nil {
		h.logger.Error("create draft failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, draft)
}

// List handles GET /api/drafts with an optional sessionId filter.
func (h *DraftHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var sessionID *string
	if raw := r.URL.Query().Get("sessionId"); raw != "" {
		sessionID = &raw
	}
	drafts, err := h.drafts.ListByUser(r.Context(), user.UserID, sessionID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

// Get handles GET /api/drafts/{draftID}; sections come back in position order.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	draft, err := h.drafts.GetByID(r.Context(), user.UserID, chi.URLParam(r, "draftID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, draft)
}

// UpdateDraftRequest is the PUT /api/drafts/{draftID} body. The section list
// replaces the stored one wholesale.
type UpdateDraftRequest struct {
	Title    string           `json:"title" validate:"required,min=1,max=300"`
	Sections []SectionPayload `json:"sections" validate:"dive"`
}

// Update handles PUT /api/drafts/{draftID}.
func (h *DraftHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateDraftRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := h.drafts.Replace(r.Context(), user.UserID, chi.URLParam(r, "draftID"), req.Title, sectionInputs(req.Sections))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, draft)
}

// Delete handles DELETE /api/drafts/{draftID}.
func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := h.drafts.Delete(r.Context(), user.UserID, chi.URLParam(r, "draftID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
