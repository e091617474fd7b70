package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"mysre-backend/application/services"
	"mysre-backend/pkg/common"
	apperrors "mysre-backend/pkg/errors"
)

// UploadProgressHandler serves the progress channel around avatar uploads:
// an SSE stream per upload id plus the POST that feeds it.
type UploadProgressHandler struct {
	progress *services.ProgressBroadcaster
	logger   *zap.Logger
}

// NewUploadProgressHandler creates an upload progress handler.
func NewUploadProgressHandler(progress *services.ProgressBroadcaster, logger *zap.Logger) *UploadProgressHandler {
	return &UploadProgressHandler{progress: progress, logger: logger}
}

// Stream handles GET /api/upload-progress?uploadId=. It holds the connection
// open and relays published events as SSE frames until the client goes away.
func (h *UploadProgressHandler) Stream(w http.ResponseWriter, r *http.Request) {
	uploadID := r.URL.Query().Get("uploadId")
	if uploadID == "" {
		common.RespondAppError(w, apperrors.NewValidationError("uploadId query parameter is required"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		common.RespondAppError(w, apperrors.NewInternalError("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	events, cancel := h.progress.Subscribe(uploadID)
	defer cancel()

	writeEvent := func(payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Warn("progress event encode failed", zap.String("upload_id", uploadID), zap.Error(err))
			return true
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeEvent(map[string]any{"type": "connected", "uploadId": uploadID}) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, ok := <-events:
			if !ok {
				// Replaced by a newer subscriber for the same id.
				return
			}
			if !writeEvent(payload) {
				return
			}
		}
	}
}

// PublishRequest is the POST /api/upload-progress body. Fields beyond
// uploadId are forwarded to the stream untouched.
type PublishRequest map[string]any

// Publish handles POST /api/upload-progress. Publishing with no subscriber
// is not an error; delivered reports whether a stream took the event.
func (h *UploadProgressHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	uploadID, _ := req["uploadId"].(string)
	if uploadID == "" {
		common.RespondAppError(w, apperrors.NewValidationError("uploadId is required"))
		return
	}
	delivered := h.progress.Publish(uploadID, map[string]any(req))
	common.RespondJSON(w, http.StatusOK, map[string]any{"delivered": delivered})
}
