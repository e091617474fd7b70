package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mysre-backend/domain/model"
	"mysre-backend/infrastructure/assistant"
	"mysre-backend/infrastructure/config"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
)

type assistantFixture struct {
	handler  *AssistantHandler
	articles *repository.ArticleRepository
	userID   string
}

// newAssistantFixture builds the handler against a stub tool server that
// always answers with the given text content.
func newAssistantFixture(t *testing.T, envelope map[string]any) *assistantFixture {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(envelope))
	}))
	t.Cleanup(upstream.Close)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	userID := uuid.New().String()
	require.NoError(t, db.Create(&model.User{ID: userID, Email: "writer@example.com", Role: "USER"}).Error)

	dynamic, err := config.NewDynamicProvider("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { dynamic.Close() })

	articles := repository.NewArticleRepository(db)
	client := assistant.NewClient(upstream.URL, zap.NewNop())
	return &assistantFixture{
		handler:  NewAssistantHandler(client, articles, dynamic, zap.NewNop()),
		articles: articles,
		userID:   userID,
	}
}

func textEnvelope(text string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"result": map[string]any{
			"content": []map[string]any{{"type": "text", "text": text}},
		},
	}
}

func (f *assistantFixture) post(t *testing.T, handle http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req = req.WithContext(auth.SetUserInContext(req.Context(), &auth.UserContext{
		UserID: f.userID,
		Email:  "writer@example.com",
		Role:   "USER",
	}))
	rec := httptest.NewRecorder()
	handle(rec, req)
	return rec
}

func TestChatReshapesUpstreamResponse(t *testing.T) {
	f := newAssistantFixture(t, textEnvelope(`{"response":"forty-two"}`))

	rec := f.post(t, f.handler.Chat, map[string]any{"question": "what is the answer"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"forty-two"}`, rec.Body.String())
}

func TestChatSurfacesUpstreamError(t *testing.T) {
	f := newAssistantFixture(t, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"error":   map[string]any{"code": -32000, "message": "boom"},
	})

	rec := f.post(t, f.handler.Chat, map[string]any{"question": "what is the answer"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}

func TestSuggestionsDefaultsToEmptyList(t *testing.T) {
	f := newAssistantFixture(t, textEnvelope(`{}`))

	rec := f.post(t, f.handler.Suggestions, map[string]any{"content": "half a paragraph"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())
}

func TestSuggestionsPassesThroughUpstreamList(t *testing.T) {
	f := newAssistantFixture(t, textEnvelope(`{"suggestions":["tighten the intro","cite the survey"]}`))

	rec := f.post(t, f.handler.Suggestions, map[string]any{"content": "half a paragraph"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":["tighten the intro","cite the survey"]}`, rec.Body.String())
}

func TestSummarizeReshapesUpstreamSummary(t *testing.T) {
	f := newAssistantFixture(t, textEnvelope(`{"summary":"a short gist"}`))
	article, err := f.articles.Create(context.Background(), f.userID, "Field Notes", "long body", nil)
	require.NoError(t, err)

	rec := f.post(t, f.handler.Summarize, map[string]any{"articleId": article.ID})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"articleId":"`+article.ID+`","summary":"a short gist"}`, rec.Body.String())
}
