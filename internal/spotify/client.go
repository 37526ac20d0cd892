package spotify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diggingboard/diggingboard/internal/config"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com"
	defaultAPIURL      = "https://api.spotify.com"
)

// Track is the trimmed search result returned to clients.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverURL string `json:"coverUrl"`
}

// Client talks to the music catalog. Search uses the client-credentials
// grant; playlist appends use the refresh-token grant. Tokens are requested
// per call, matching the upstream's short-lived token model.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	refreshToken string
	playlistID   string

	accountsURL string
	apiURL      string
}

func NewClient(cfg config.SpotifyConfig) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
		playlistID:   cfg.PlaylistID,
		accountsURL:  defaultAccountsURL,
		apiURL:       defaultAPIURL,
	}
}

func (c *Client) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// requestToken posts a grant to the accounts token endpoint and returns the
// access token.
func (c *Client) requestToken(ctx context.Context, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+c.basicAuth())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}
	return tr.AccessToken, nil
}

// SearchTracks looks up tracks by free text and trims the result to the
// fields the boards need. Limit is fixed at 5.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	token, err := c.requestToken(ctx, url.Values{"grant_type": {"client_credentials"}})
	if err != nil {
		return nil, fmt.Errorf("catalog auth: %w", err)
	}

	u := fmt.Sprintf("%s/v1/search?q=%s&type=track&limit=5", c.apiURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search returned %d: %s", resp.StatusCode, string(b))
	}

	var sr struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Images []struct {
						URL string `json:"url"`
					} `json:"images"`
				} `json:"album"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}

	out := make([]Track, 0, len(sr.Tracks.Items))
	for _, item := range sr.Tracks.Items {
		t := Track{ID: item.ID, Title: item.Name}
		if len(item.Artists) > 0 {
			t.Artist = item.Artists[0].Name
		}
		if len(item.Album.Images) > 0 {
			t.CoverURL = item.Album.Images[0].URL
		}
		out = append(out, t)
	}
	return out, nil
}

// AddTrackToPlaylist appends spotify:track:<id> to the configured playlist.
// An upstream "duplicate track" error counts as success. Returns an error
// when the playlist feature is not configured.
func (c *Client) AddTrackToPlaylist(ctx context.Context, trackID string) error {
	if c.playlistID == "" || c.refreshToken == "" {
		return fmt.Errorf("playlist append not configured")
	}
	token, err := c.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	})
	if err != nil {
		return fmt.Errorf("catalog auth: %w", err)
	}

	body, err := json.Marshal(map[string][]string{
		"uris": {"spotify:track:" + trackID},
	})
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/v1/playlists/%s/tracks", c.apiURL, c.playlistID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	b, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	// a track already in the playlist is fine
	if json.Unmarshal(b, &apiErr) == nil && strings.Contains(strings.ToLower(apiErr.Error.Message), "duplicate") {
		return nil
	}
	return fmt.Errorf("playlist append returned %d: %s", resp.StatusCode, string(b))
}
