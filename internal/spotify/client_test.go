package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diggingboard/diggingboard/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.SpotifyConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RefreshToken: "rtoken",
		PlaylistID:   "pl1",
	})
	c.accountsURL = srv.URL
	c.apiURL = srv.URL
	return c, srv
}

func TestSearchTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.FormValue("grant_type"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.Equal(t, "silk sonic", r.URL.Query().Get("q"))
		require.Equal(t, "track", r.URL.Query().Get("type"))
		w.Write([]byte(`{"tracks":{"items":[
			{"id":"t1","name":"Leave The Door Open","artists":[{"name":"Silk Sonic"}],"album":{"images":[{"url":"http://img/1"}]}},
			{"id":"t2","name":"Smokin Out The Window","artists":[],"album":{"images":[]}}
		]}}`))
	})

	c, _ := newTestClient(t, mux)
	tracks, err := c.SearchTracks(context.Background(), "silk sonic")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	require.Equal(t, Track{ID: "t1", Title: "Leave The Door Open", Artist: "Silk Sonic", CoverURL: "http://img/1"}, tracks[0])
	// missing artist/cover stay empty rather than erroring
	require.Equal(t, Track{ID: "t2", Title: "Smokin Out The Window"}, tracks[1])
}

func TestSearchTracks_TokenFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	})
	c, _ := newTestClient(t, mux)
	_, err := c.SearchTracks(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "catalog auth")
}

func TestAddTrackToPlaylist(t *testing.T) {
	var gotURIs []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.FormValue("grant_type"))
		require.Equal(t, "rtoken", r.FormValue("refresh_token"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-2"})
	})
	mux.HandleFunc("/v1/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-2", r.Header.Get("Authorization"))
		var body struct {
			URIs []string `json:"uris"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotURIs = body.URIs
		w.WriteHeader(http.StatusCreated)
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.AddTrackToPlaylist(context.Background(), "t1"))
	require.Equal(t, []string{"spotify:track:t1"}, gotURIs)
}

func TestAddTrackToPlaylist_DuplicateIsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	})
	mux.HandleFunc("/v1/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"status":400,"message":"Duplicate tracks in request"}}`))
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.AddTrackToPlaylist(context.Background(), "t1"))
}

func TestAddTrackToPlaylist_UpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	})
	mux.HandleFunc("/v1/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":403,"message":"Insufficient client scope"}}`))
	})

	c, _ := newTestClient(t, mux)
	err := c.AddTrackToPlaylist(context.Background(), "t1")
	require.Error(t, err)
}

func TestAddTrackToPlaylist_NotConfigured(t *testing.T) {
	c := NewClient(config.SpotifyConfig{ClientID: "cid", ClientSecret: "cs"})
	err := c.AddTrackToPlaylist(context.Background(), "t1")
	require.Error(t, err)
}
