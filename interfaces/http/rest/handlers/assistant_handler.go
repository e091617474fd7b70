package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"mysre-backend/infrastructure/assistant"
	"mysre-backend/infrastructure/config"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
	"mysre-backend/pkg/common"
	"mysre-backend/pkg/utils"
)

// AssistantHandler proxies chat, suggestion and summary requests to the AI
// microservice. Article content is loaded here so the upstream only ever
// sees text the caller owns.
type AssistantHandler struct {
	client   *assistant.Client
	articles *repository.ArticleRepository
	dynamic  *config.DynamicProvider
	logger   *zap.Logger
}

// NewAssistantHandler creates an assistant handler.
func NewAssistantHandler(client *assistant.Client, articles *repository.ArticleRepository, dynamic *config.DynamicProvider, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{client: client, articles: articles, dynamic: dynamic, logger: logger}
}

// ChatRequest is the POST /api/assistant/chat body.
type ChatRequest struct {
	Question  string  `json:"question" validate:"required,min=1"`
	ArticleID *string `json:"articleId,omitempty" validate:"omitempty,uuid"`
}

// ChatResponse is the shaped chat reply. The upstream tool answers under
// "response"; clients receive it as "answer".
type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat handles POST /api/assistant/chat via the chat_with_context tool.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req ChatRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	arguments := map[string]any{"question": req.Question}
	if req.ArticleID != nil {
		article, err := h.articles.GetByID(r.Context(), user.UserID, *req.ArticleID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		arguments["context"] = article.Content
	}

	var upstream struct {
		Response string `json:"response"`
	}
	timeout := h.dynamic.Current().Assistant.ChatTimeout()
	if err := h.client.CallTool(r.Context(), "chat_with_context", arguments, timeout, &upstream); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ChatResponse{Answer: upstream.Response})
}

// SuggestionsRequest is the POST /api/assistant/suggestions body.
type SuggestionsRequest struct {
	Content   string  `json:"content" validate:"required,min=1"`
	SessionID *string `json:"sessionId,omitempty" validate:"omitempty,uuid"`
}

// Suggestions handles POST /api/assistant/suggestions via the
// generate_suggestions tool.
func (h *AssistantHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.UserFromContext(r.Context()); err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req SuggestionsRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	arguments := map[string]any{"content": req.Content}
	if req.SessionID != nil {
		arguments["sessionId"] = *req.SessionID
	}

	var upstream struct {
		Suggestions json.RawMessage `json:"suggestions"`
	}
	timeout := h.dynamic.Current().Assistant.SuggestionsTimeout()
	if err := h.client.CallTool(r.Context(), "generate_suggestions", arguments, timeout, &upstream); err != nil {
		common.RespondAppError(w, err)
		return
	}
	suggestions := upstream.Suggestions
	if len(suggestions) == 0 {
		suggestions = json.RawMessage("[]")
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// SummarizeRequest is the POST /api/assistant/summarize body.
type SummarizeRequest struct {
	ArticleID string `json:"articleId" validate:"required,uuid"`
}

// SummarizeResponse is the shaped summary reply.
type SummarizeResponse struct {
	ArticleID string `json:"articleId"`
	Summary   string `json:"summary"`
}

// Summarize handles POST /api/assistant/summarize via the summarize_article
// tool. The long timeout covers full-article passes upstream.
func (h *AssistantHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	var req SummarizeRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	article, err := h.articles.GetByID(r.Context(), user.UserID, req.ArticleID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	arguments := map[string]any{
		"articleId": article.ID,
		"title":     article.Title,
		"content":   article.Content,
	}

	var upstream struct {
		Summary string `json:"summary"`
	}
	timeout := h.dynamic.Current().Assistant.SummarizeTimeout()
	if err := h.client.CallTool(r.Context(), "summarize_article", arguments, timeout, &upstream); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, SummarizeResponse{ArticleID: article.ID, Summary: upstream.Summary})
}
