package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"mysre-backend/application/services"
	"mysre-backend/infrastructure/config"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/infrastructure/storage"
	"mysre-backend/pkg/auth"
	"mysre-backend/pkg/common"
	apperrors "mysre-backend/pkg/errors"
	"mysre-backend/pkg/utils"
)

// ProfileHandler serves profile, settings, verification and avatar endpoints.
type ProfileHandler struct {
	users    *repository.UserRepository
	avatars  storage.AvatarStore
	progress *services.ProgressBroadcaster
	dynamic  *config.DynamicProvider
	logger   *zap.Logger
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(users *repository.UserRepository, avatars storage.AvatarStore, progress *services.ProgressBroadcaster, dynamic *config.DynamicProvider, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, avatars: avatars, progress: progress, dynamic: dynamic, logger: logger}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	row, err := h.users.GetByID(r.Context(), user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, row)
}

// UpdateProfileRequest is the PUT /api/profile body.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Group *string `json:"group,omitempty" validate:"omitempty,max=200"`
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateProfileRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	row, err := h.users.UpdateProfile(r.Context(), user.UserID, repository.ProfileUpdate{Name: req.Name, Group: req.Group})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, row)
}

// GetSettings handles GET /api/settings and returns the raw settings blob.
func (h *ProfileHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	row, err := h.users.GetByID(r.Context(), user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	settings := row.Settings
	if len(settings) == 0 {
		settings = datatypes.JSON([]byte("{}"))
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// UpdateSettings handles PUT /api/settings. The body is stored verbatim as
// the new settings blob.
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		common.RespondAppError(w, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	if !json.Valid(body) {
		common.RespondAppError(w, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	blob := datatypes.JSON(body)
	if err := h.users.UpdateSettings(r.Context(), user.UserID, blob); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"settings": blob})
}

// VerificationRequest is the PUT /api/users/{userID}/verification body.
type VerificationRequest struct {
	Verified bool `json:"verified"`
}

// SetVerification handles PUT /api/users/{userID}/verification. The route is
// admin-gated by middleware.
func (h *ProfileHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	var req VerificationRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	targetID := chi.URLParam(r, "userID")
	if err := h.users.SetVerified(r.Context(), targetID, req.Verified); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"userId": targetID, "verified": req.Verified})
}

// UploadAvatar handles POST /api/profile/avatar. The multipart form carries
// the file under "avatar" and an optional "uploadId" used for progress
// events on the SSE channel.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	maxBytes := int64(h.dynamic.Current().MaxAvatarMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<16))
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError("avatar upload too large or malformed"))
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		common.RespondAppError(w, apperrors.NewValidationError("avatar file is required"))
		return
	}
	defer file.Close()

	uploadID := r.FormValue("uploadId")
	publish := func(stage string, pct int) {
		if uploadID == "" {
			return
		}
		h.progress.Publish(uploadID, map[string]any{"type": "progress", "stage": stage, "percent": pct})
	}

	publish("reading", 10)
	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		common.RespondAppError(w, apperrors.NewInternalError("avatar read failed"))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		common.RespondAppError(w, apperrors.NewValidationError("avatar must be an image"))
		return
	}

	publish("uploading", 50)
	ext := filepath.Ext(header.Filename)
	path := fmt.Sprintf("%s/%s%s", user.UserID, uuid.New().String(), ext)
	url, err := h.avatars.Upload(r.Context(), path, contentType, data)
	if err != nil {
		h.logger.Error("avatar upload failed", zap.String("user_id", user.UserID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	publish("saving", 90)
	if err := h.users.UpdateAvatarURL(r.Context(), user.UserID, url); err != nil {
		common.RespondAppError(w, err)
		return
	}
	publish("done", 100)
	common.RespondJSON(w, http.StatusOK, map[string]any{"avatarUrl": url})
}
