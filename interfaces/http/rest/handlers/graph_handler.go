package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mysre-backend/application/services"
	"mysre-backend/domain/model"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
	"mysre-backend/pkg/common"
	apperrors "mysre-backend/pkg/errors"
	"mysre-backend/pkg/utils"
)

// GraphHandler serves the node and edge endpoints.
type GraphHandler struct {
	graph   *repository.GraphRepository
	service *services.GraphService
	logger  *zap.Logger
}

// NewGraphHandler creates a graph handler.
func NewGraphHandler(graph *repository.GraphRepository, service *services.GraphService, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{graph: graph, service: service, logger: logger}
}

// CreateNodeRequest is the POST /api/nodes body.
type CreateNodeRequest struct {
	ArticleID string  `json:"articleId" validate:"required,uuid"`
	Label     string  `json:"label" validate:"required,min=1,max=200"`
	Content   string  `json:"content"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// CreateNode handles POST /api/nodes.
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateNodeRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	node, err := h.graph.CreateNode(r.Context(), user.UserID, &model.Node{
		ArticleID: req.ArticleID,
		Label:     req.Label,
		Content:   req.Content,
		X:         req.X,
		Y:         req.Y,
	})
	if err != nil {
		h.logger.Error("create node failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, node)
}

// GetNode handles GET /api/nodes/{nodeID}. The id may also be an article
// id; the node reading wins when both match.
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	target, err := h.service.ResolveTarget(r.Context(), user.UserID, chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if target.Kind == services.TargetArticle {
		common.RespondJSON(w, http.StatusOK, map[string]any{"type": "article", "article": target.Article})
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"type": "node", "node": target.Node})
}

// UpdateNodeRequest is the PUT /api/nodes/{nodeID} body.
type UpdateNodeRequest struct {
	Label   *string  `json:"label,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string  `json:"content,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
}

// UpdateNode handles PUT /api/nodes/{nodeID}.
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateNodeRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	node, err := h.graph.UpdateNode(r.Context(), user.UserID, chi.URLParam(r, "nodeID"),
		repository.NodeUpdate{Label: req.Label, Content: req.Content, X: req.X, Y: req.Y})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, node)
}

// DeleteNode handles DELETE /api/nodes/{nodeID}. Edges touching the node are
// removed in the same transaction.
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := h.graph.DeleteNode(r.Context(), user.UserID, chi.URLParam(r, "nodeID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// CreateEdgeRequest is the POST /api/edges body.
type CreateEdgeRequest struct {
	FromID   string `json:"fromId" validate:"required,uuid"`
	ToID     string `json:"toId" validate:"required,uuid"`
	Relation string `json:"relation" validate:"required,min=1,max=100"`
}

// CreateEdge handles POST /api/edges. Both endpoints must belong to the same
// article owned by the caller.
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateEdgeRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	edge, err := h.graph.CreateEdge(r.Context(), user.UserID, &model.Edge{
		FromID:   req.FromID,
		ToID:     req.ToID,
		Relation: req.Relation,
	})
	if err != nil {
		h.logger.Error("create edge failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, edge)
}

// GetEdge handles GET /api/edges/{edgeID}. The path parameter is either an
// edge id or a "fromId-toId-relation" composite.
func (h *GraphHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	raw := chi.URLParam(r, "edgeID")
	if raw == "" {
		common.RespondAppError(w, apperrors.NewValidationError("edge id is required"))
		return
	}
	edge, err := h.service.LookupEdge(r.Context(), user.UserID, raw)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, edge)
}

// DeleteEdge handles DELETE /api/edges/{edgeID}, accepting the same composite
// form as GetEdge.
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	raw := chi.URLParam(r, "edgeID")
	if raw == "" {
		common.RespondAppError(w, apperrors.NewValidationError("edge id is required"))
		return
	}
	if err := h.service.DeleteEdgeByRef(r.Context(), user.UserID, raw); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
