// Package handlers implements the REST endpoints. Every handler follows the
// same template: parse inputs, read the session from context, run the
// queries, shape the DTO, map errors to statuses.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mysre-backend/application/services"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
	"mysre-backend/pkg/common"
	"mysre-backend/pkg/utils"
)

// ArticleHandler serves the article CRUD and graph fetch endpoints.
type ArticleHandler struct {
	articles *repository.ArticleRepository
	graph    *repository.GraphRepository
	service  *services.GraphService
	logger   *zap.Logger
}

// NewArticleHandler creates an article handler.
func NewArticleHandler(articles *repository.ArticleRepository, graph *repository.GraphRepository, service *services.GraphService, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, graph: graph, service: service, logger: logger}
}

// CreateArticleRequest is the POST /api/articles body.
type CreateArticleRequest struct {
	Title     string  `json:"title" validate:"required,min=1,max=300"`
	Content   string  `json:"content"`
	SessionID *string `json:"sessionId,omitempty" validate:"omitempty,uuid"`
}

// Create handles POST /api/articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req CreateArticleRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	article, err := h.articles.Create(r.Context(), user.UserID, req.Title, req.Content, req.SessionID)
	if err != nil {
		h.logger.Error("create article failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, article)
}

// List handles GET /api/articles. An optional sessionId query filters by
// brainstorming session.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var sessionID *string
	if raw := r.URL.Query().Get("sessionId"); raw != "" {
		sessionID = &raw
	}
	articles, err := h.articles.ListByUser(r.Context(), user.UserID, sessionID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// Get handles GET /api/articles/{articleID}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	article, err := h.articles.GetByID(r.Context(), user.UserID, chi.URLParam(r, "articleID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, article)
}

// UpdateArticleRequest is the PUT /api/articles/{articleID} body.
type UpdateArticleRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Content *string `json:"content,omitempty"`
}

// Update handles PUT /api/articles/{articleID}.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req UpdateArticleRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	article, err := h.articles.Update(r.Context(), user.UserID, chi.URLParam(r, "articleID"),
		repository.ArticleUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, article)
}

// Delete handles DELETE /api/articles/{articleID}. The path parameter may be
// a node id; the owning article is resolved before the cascade.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	articleID, err := h.service.DeleteArticleByRef(r.Context(), user.UserID, chi.URLParam(r, "articleID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"deleted": true, "articleId": articleID})
}

// GetGraph handles GET /api/articles/{articleID}/graph.
func (h *ArticleHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	nodes, edges, err := h.graph.GetGraph(r.Context(), user.UserID, chi.URLParam(r, "articleID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"nodes": nodes, "edges": edges})
}
