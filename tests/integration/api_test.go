package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mysre-backend/application/services"
	"mysre-backend/domain/model"
	"mysre-backend/infrastructure/assistant"
	"mysre-backend/infrastructure/config"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/infrastructure/storage"
	"mysre-backend/interfaces/http/rest"
	"mysre-backend/interfaces/http/rest/handlers"
	"mysre-backend/interfaces/http/rest/middleware"
	"mysre-backend/pkg/auth"
)

const testSecret = "integration-test-secret"

type testAPI struct {
	server *httptest.Server
	db     *gorm.DB
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	cfg := &config.Config{
		ServerAddress:  ":0",
		Environment:    "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		DevJWTSecret:   testSecret,
	}
	dynamic, err := config.NewDynamicProvider("", logger)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	articles := repository.NewArticleRepository(db)
	graph := repository.NewGraphRepository(db)
	drafts := repository.NewDraftRepository(db)
	sessions := repository.NewSessionRepository(db)
	telemetry := repository.NewTelemetryRepository(db)
	graphService := services.NewGraphService(articles, graph, logger)
	progress := services.NewProgressBroadcaster()
	avatars, err := storage.NewLocalAvatarStore(t.TempDir())
	require.NoError(t, err)
	client := assistant.NewClient("http://127.0.0.1:0", logger)

	h := rest.Handlers{
		Articles:      handlers.NewArticleHandler(articles, graph, graphService, logger),
		Graph:         handlers.NewGraphHandler(graph, graphService, logger),
		Drafts:        handlers.NewDraftHandler(drafts, logger),
		Brainstorming: handlers.NewBrainstormingSessionHandler(sessions, logger),
		Writer:        handlers.NewWriterSessionHandler(sessions, logger),
		Profile:       handlers.NewProfileHandler(users, avatars, progress, dynamic, logger),
		Telemetry:     handlers.NewTelemetryHandler(telemetry, logger),
		Assistant:     handlers.NewAssistantHandler(client, articles, dynamic, logger),
		Uploads:       handlers.NewUploadProgressHandler(progress, logger),
	}
	authenticate := middleware.Authenticate(auth.NewDevResolver(testSecret), users, logger)
	handler := rest.Setup(cfg, dynamic, db, authenticate, h, logger)

	token, err := auth.SignDevToken(testSecret, "11111111-1111-1111-1111-111111111111", "it@test.dev", time.Hour)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &testAPI{server: server, db: db, token: token}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestHealthEndpointsAreUnauthenticated(t *testing.T) {
	api := newTestAPI(t)

	resp, err := http.Get(api.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresSession(t *testing.T) {
	api := newTestAPI(t)

	resp, err := http.Get(api.server.URL + "/api/articles")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestArticleLifecycle(t *testing.T) {
	api := newTestAPI(t)

	resp, created := api.do(t, http.MethodPost, "/api/articles", map[string]any{
		"title":   "Attention Is All You Need",
		"content": "abstract text",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	articleID := created["id"].(string)

	resp, listed := api.do(t, http.MethodGet, "/api/articles", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listed["articles"], 1)

	resp, _ = api.do(t, http.MethodPut, "/api/articles/"+articleID, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, fetched := api.do(t, http.MethodGet, "/api/articles/"+articleID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", fetched["title"])

	resp, _ = api.do(t, http.MethodGet, "/api/articles/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteArticleByNodeID(t *testing.T) {
	api := newTestAPI(t)

	resp, article := api.do(t, http.MethodPost, "/api/articles", map[string]any{"title": "Graph host"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	articleID := article["id"].(string)

	resp, node := api.do(t, http.MethodPost, "/api/nodes", map[string]any{
		"articleId": articleID,
		"label":     "claim",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	nodeID := node["id"].(string)

	// Deleting by a node id removes the owning article and its graph.
	resp, deleted := api.do(t, http.MethodDelete, "/api/articles/"+nodeID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, articleID, deleted["articleId"])

	resp, _ = api.do(t, http.MethodGet, "/api/articles/"+articleID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEdgeCompositeLookup(t *testing.T) {
	api := newTestAPI(t)

	resp, article := api.do(t, http.MethodPost, "/api/articles", map[string]any{"title": "Graph host"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	articleID := article["id"].(string)

	_, from := api.do(t, http.MethodPost, "/api/nodes", map[string]any{"articleId": articleID, "label": "a"})
	_, to := api.do(t, http.MethodPost, "/api/nodes", map[string]any{"articleId": articleID, "label": "b"})

	resp, edge := api.do(t, http.MethodPost, "/api/edges", map[string]any{
		"fromId":   from["id"],
		"toId":     to["id"],
		"relation": "supports",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, fetched := api.do(t, http.MethodGet, "/api/edges/"+edge["id"].(string), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "supports", fetched["relation"])

	resp, graphBody := api.do(t, http.MethodGet, "/api/articles/"+articleID+"/graph", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, graphBody["nodes"], 2)
	assert.Len(t, graphBody["edges"], 1)
}

func TestDraftSectionsKeepOrderOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	resp, draft := api.do(t, http.MethodPost, "/api/drafts", map[string]any{
		"title": "Outline",
		"sections": []map[string]any{
			{"title": "Intro", "content": "a"},
			{"title": "Body", "content": "b"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, fetched := api.do(t, http.MethodGet, "/api/drafts/"+draft["id"].(string), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sections := fetched["sections"].([]any)
	require.Len(t, sections, 2)
	assert.Equal(t, "Intro", sections[0].(map[string]any)["title"])
	assert.Equal(t, "Body", sections[1].(map[string]any)["title"])
}

func TestAdminRoutesAreForbiddenForUsers(t *testing.T) {
	api := newTestAPI(t)

	resp, _ := api.do(t, http.MethodGet, "/api/analytics", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUploadProgressPublishWithoutSubscriber(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/upload-progress", map[string]any{
		"uploadId": "u-1",
		"percent":  40,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["delivered"])
}

func TestValidationErrorsAre400(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/articles", map[string]any{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fmt.Sprint(body["error"]), "title")
}
