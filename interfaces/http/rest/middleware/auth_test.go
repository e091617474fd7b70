package middleware

import (
	"context"
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

	"mysre-backend/domain/model"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/pkg/auth"
)

const testSecret = "middleware-test-secret"

func newAuthHandler(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	users := repository.NewUserRepository(db)
	authenticate := Authenticate(auth.NewDevResolver(testSecret), users, zap.NewNop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.UserFromContext(r.Context())
		require.NoError(t, err)
		w.Header().Set("X-User", user.UserID)
		w.WriteHeader(http.StatusOK)
	})
	return authenticate(next), db
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	handler, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateAcceptsBearerAndSyncsUser(t *testing.T) {
	handler, db := newAuthHandler(t)

	token, err := auth.SignDevToken(testSecret, "user-1", "a@b.c", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Header().Get("X-User"))

	var user model.User
	require.NoError(t, db.First(&user, "id = ?", "user-1").Error)
	assert.Equal(t, "a@b.c", user.Email)
}

func TestAuthenticateAcceptsSessionCookie(t *testing.T) {
	handler, _ := newAuthHandler(t)

	token, err := auth.SignDevToken(testSecret, "user-2", "c@d.e", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", rec.Header().Get("X-User"))
}

type countingResolver struct {
	inner auth.SessionResolver
	calls int
}

func (c *countingResolver) Resolve(ctx context.Context, token string) (*auth.UserContext, error) {
	c.calls++
	return c.inner.Resolve(ctx, token)
}

// A revoked token must stop working on the very next request, so the
// resolver runs once per request even when the token repeats.
func TestAuthenticateResolvesEveryRequest(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	resolver := &countingResolver{inner: auth.NewDevResolver(testSecret)}
	users := repository.NewUserRepository(db)
	handler := Authenticate(resolver, users, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token, err := auth.SignDevToken(testSecret, "user-3", "e@f.g", time.Hour)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, resolver.calls)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(next)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req = req.WithContext(auth.SetUserInContext(req.Context(), &auth.UserContext{UserID: "u", Role: model.RoleUser}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req = req.WithContext(auth.SetUserInContext(req.Context(), &auth.UserContext{UserID: "a", Role: model.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
