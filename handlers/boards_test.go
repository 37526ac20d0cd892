package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diggingboard/diggingboard/internal/board"
	"github.com/diggingboard/diggingboard/internal/votes"
	"github.com/diggingboard/diggingboard/pkg/middleware"
)

type memVotes struct {
	rows   map[string]*votes.Vote // keyed postID+"/"+voterID
	deltas map[string]int
}

func newMemVotes() *memVotes {
	return &memVotes{rows: map[string]*votes.Vote{}, deltas: map[string]int{}}
}

func (m *memVotes) Upsert(ctx context.Context, postID, voterID string, value int) (*votes.Vote, error) {
	v := &votes.Vote{PostID: postID, VoterID: voterID, Value: value}
	m.rows[postID+"/"+voterID] = v
	return v, nil
}

func (m *memVotes) Get(ctx context.Context, postID, voterID string) (*votes.Vote, error) {
	return m.rows[postID+"/"+voterID], nil
}

func (m *memVotes) IncrementScore(ctx context.Context, postID string, delta int) error {
	m.deltas[postID] += delta
	return nil
}

func newBoardRouter(store *memStore, ledger *memVotes) *gin.Engine {
	svc := board.NewService(store, store, store)
	h := NewBoardHandler(svc, votes.NewService(ledger, ledger))
	g := gin.New()
	api := g.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(stubVerifier{}))
	h.Register(api, middleware.AuthMiddleware(stubVerifier{}))
	return g
}

func doJSON(g *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	g.ServeHTTP(w, req)
	return w
}

func TestCreatePostAnonymousNeedsPIN(t *testing.T) {
	g := newBoardRouter(newMemStore(), newMemVotes())

	body := `{"name":"maya","body":"great track","track":{"id":"tr1","title":"Song","artist":"Band"}}`
	w := doJSON(g, http.MethodPost, "/api/v1/posts", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = `{"name":"maya","body":"great track","password":"1234","track":{"id":"tr1","title":"Song","artist":"Band"}}`
	w = doJSON(g, http.MethodPost, "/api/v1/posts", body, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var p board.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "spotify:track:tr1", p.Track.URI)
	assert.False(t, p.Ownership.IsOwned())
}

func TestCreatePostOwned(t *testing.T) {
	store := newMemStore()
	g := newBoardRouter(store, newMemVotes())

	body := `{"name":"ren","body":"on repeat","track":{"id":"tr2","title":"Tune","artist":"Solo"}}`
	w := doJSON(g, http.MethodPost, "/api/v1/posts", body, "token-acct-9")
	require.Equal(t, http.StatusCreated, w.Code)

	var p board.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.True(t, store.posts[p.ID].Ownership.IsOwned())
	assert.Equal(t, "acct-9", store.posts[p.ID].Ownership.AccountID)
}

func TestCreateCommentValidatesRating(t *testing.T) {
	store := newMemStore()
	g := newBoardRouter(store, newMemVotes())

	w := doJSON(g, http.MethodPost, "/api/v1/posts/p1/comments", `{"name":"a","body":"meh","rating":0,"password":"1234"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(g, http.MethodPost, "/api/v1/posts/p1/comments", `{"name":"a","body":"love it","rating":5,"password":"1234"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.comments["p1"], 1)
}

func TestGetPostNotFound(t *testing.T) {
	g := newBoardRouter(newMemStore(), newMemVotes())
	w := doJSON(g, http.MethodGet, "/api/v1/posts/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommunityPostImagesDefaultEmpty(t *testing.T) {
	store := newMemStore()
	g := newBoardRouter(store, newMemVotes())

	w := doJSON(g, http.MethodPost, "/api/v1/community/posts", `{"name":"a","title":"hi","body":"text","password":"1234"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var p board.CommunityPost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.NotNil(t, p.Images)
	assert.Empty(t, p.Images)
}

func TestVoteRequiresAuth(t *testing.T) {
	g := newBoardRouter(newMemStore(), newMemVotes())
	w := doJSON(g, http.MethodPut, "/api/v1/community/posts/cp1/vote", `{"value":1}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVoteIdempotentAndToggle(t *testing.T) {
	ledger := newMemVotes()
	g := newBoardRouter(newMemStore(), ledger)

	// first vote recommends
	w := doJSON(g, http.MethodPut, "/api/v1/community/posts/cp1/vote", `{"value":1}`, "token-acct-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ledger.deltas["cp1"])

	// repeating the same value changes nothing
	w = doJSON(g, http.MethodPut, "/api/v1/community/posts/cp1/vote", `{"value":1}`, "token-acct-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ledger.deltas["cp1"])
	assert.Len(t, ledger.rows, 1)

	// withdrawing decrements the score
	w = doJSON(g, http.MethodPut, "/api/v1/community/posts/cp1/vote", `{"value":0}`, "token-acct-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, ledger.deltas["cp1"])

	// a second voter keeps their own row
	w = doJSON(g, http.MethodPut, "/api/v1/community/posts/cp1/vote", `{"value":1}`, "token-acct-2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ledger.rows, 2)
	assert.Equal(t, 1, ledger.deltas["cp1"])
}

func TestVoteRejectsBadValue(t *testing.T) {
	g := newBoardRouter(newMemStore(), newMemVotes())
	w := doJSON(g, http.MethodPut, "/api/v1/community/posts/cp1/vote", `{"value":2}`, "token-acct-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
