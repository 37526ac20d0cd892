package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diggingboard/diggingboard/internal/accounts"
	"github.com/diggingboard/diggingboard/internal/config"
	"github.com/diggingboard/diggingboard/internal/models"
	"github.com/diggingboard/diggingboard/internal/sessions"
)

// fake account repo
type fakeAccountRepo struct {
	byName map[string]*models.Account
	byID   map[string]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byName: map[string]*models.Account{}, byID: map[string]*models.Account{}}
}

func (f *fakeAccountRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	a.ID = "acct-" + a.Name
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	f.byName[a.Name] = a
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeAccountRepo) GetByName(ctx context.Context, name string) (*models.Account, error) {
	return f.byName[name], nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return f.byID[id], nil
}

// fake sessions repo
type fakeSessionsRepo struct {
	store map[string]*sessions.Session
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *sessions.Session) error {
	if f.store == nil {
		f.store = map[string]*sessions.Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}

func (f *fakeSessionsRepo) GetByRefresh(ctx context.Context, refresh string) (*sessions.Session, error) {
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessionsRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *fakeSessionsRepo) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 7 * 24 * time.Hour

	sesRepo := &fakeSessionsRepo{}
	h := NewAuthHandler(cfg, accounts.NewService(newFakeAccountRepo()), sessions.NewService(sesRepo), sessions.NewBlacklist(nil))

	g := gin.New()
	h.Register(g.Group("/api/v1"))
	return g, sesRepo
}

func postJSON(g *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

func TestSignupThenLogin(t *testing.T) {
	g, _ := newAuthRouter(t)

	w := postJSON(g, "/api/v1/auth/signup", `{"name":"maya","pin":"1234"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var sr map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sr))
	assert.NotEmpty(t, sr["accessToken"])
	assert.NotEmpty(t, sr["refreshToken"])

	w = postJSON(g, "/api/v1/auth/login", `{"name":"maya","pin":"1234"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// wrong pin and unknown name produce the same response
	w = postJSON(g, "/api/v1/auth/login", `{"name":"maya","pin":"9999"}`)
	wrongPin := w.Code
	w = postJSON(g, "/api/v1/auth/login", `{"name":"nobody","pin":"1234"}`)
	assert.Equal(t, http.StatusUnauthorized, wrongPin)
	assert.Equal(t, wrongPin, w.Code)
}

func TestSignupRejectsBadInput(t *testing.T) {
	g, _ := newAuthRouter(t)

	w := postJSON(g, "/api/v1/auth/signup", `{"name":"ren","pin":"12a4"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(g, "/api/v1/auth/signup", `{"name":"ren","pin":"1234"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate name
	w = postJSON(g, "/api/v1/auth/signup", `{"name":"ren","pin":"5678"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	g, sesRepo := newAuthRouter(t)

	w := postJSON(g, "/api/v1/auth/signup", `{"name":"kirin","pin":"4321"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var sr map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sr))
	rft := sr["refreshToken"].(string)

	w = postJSON(g, "/api/v1/auth/refresh", `{"refresh_token":"`+rft+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var rr map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rr))
	assert.NotEmpty(t, rr["access_token"])

	w = postJSON(g, "/api/v1/auth/logout", `{"refresh_token":"`+rft+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sesRepo.store)

	// refresh token no longer valid
	w = postJSON(g, "/api/v1/auth/refresh", `{"refresh_token":"`+rft+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	g, _ := newAuthRouter(t)
	w := postJSON(g, "/api/v1/auth/refresh", `{"refresh_token":"bogus"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
