package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/diggingboard/diggingboard/internal/spotify"
	"github.com/diggingboard/diggingboard/pkg/logger"
)

// TrackSearcher is what the handler needs from the catalog client.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query string) ([]spotify.Track, error)
	AddTrackToPlaylist(ctx context.Context, trackID string) error
}

// TracksHandler exposes catalog search and explicit playlist appends.
type TracksHandler struct {
	catalog TrackSearcher
}

func NewTracksHandler(catalog TrackSearcher) *TracksHandler {
	return &TracksHandler{catalog: catalog}
}

func (h *TracksHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/tracks/search", h.Search)
	rg.POST("/playlist/tracks", h.AppendToPlaylist)
}

// Search proxies a free-text track search. Missing q is a 400.
func (h *TracksHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	tracks, err := h.catalog.SearchTracks(c.Request.Context(), q)
	if err != nil {
		logger.Errorf("track search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog search failed"})
		return
	}
	c.JSON(http.StatusOK, tracks)
}

// AppendToPlaylist adds a track to the shared playlist. A track that is
// already on the playlist still reports success.
func (h *TracksHandler) AppendToPlaylist(c *gin.Context) {
	var req struct {
		TrackID string `json:"trackId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.AddTrackToPlaylist(c.Request.Context(), req.TrackID); err != nil {
		logger.Errorf("playlist append failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "playlist append failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "track added"})
}
