package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diggingboard/diggingboard/internal/board"
	"github.com/diggingboard/diggingboard/internal/votes"
	"github.com/diggingboard/diggingboard/pkg/logger"
	"github.com/diggingboard/diggingboard/pkg/middleware"
)

// CreatePostRequest submits a music recommendation. Password is only needed
// when the caller is not logged in.
type CreatePostRequest struct {
	Name     string      `json:"name" binding:"required"`
	Body     string      `json:"body" binding:"required"`
	Track    board.Track `json:"track" binding:"required"`
	Password string      `json:"password"`
}

type CreateCommentRequest struct {
	Name     string `json:"name" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Rating   int    `json:"rating"`
	Password string `json:"password"`
}

type CreateCommunityPostRequest struct {
	Name     string   `json:"name" binding:"required"`
	Title    string   `json:"title" binding:"required"`
	Body     string   `json:"body" binding:"required"`
	Images   []string `json:"images"`
	Password string   `json:"password"`
}

type VoteRequest struct {
	Value *int `json:"value" binding:"required"`
}

// BoardHandler serves both boards: music recommendations with rated comments,
// and the free-form community board with votes.
type BoardHandler struct {
	boardSvc *board.Service
	votesSvc *votes.Service
}

func NewBoardHandler(b *board.Service, v *votes.Service) *BoardHandler {
	return &BoardHandler{boardSvc: b, votesSvc: v}
}

// Register wires the read and create routes. Mutations go through the
// manage-content gateway instead. The vote route needs the auth middleware
// stacked on top by the caller.
func (h *BoardHandler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/posts", h.ListPosts)
	rg.POST("/posts", h.CreatePost)
	rg.GET("/posts/:id", h.GetPost)
	rg.GET("/posts/:id/comments", h.ListComments)
	rg.POST("/posts/:id/comments", h.CreateComment)

	cm := rg.Group("/community")
	cm.GET("/posts", h.ListCommunityPosts)
	cm.POST("/posts", h.CreateCommunityPost)
	cm.GET("/posts/:id", h.GetCommunityPost)
	cm.GET("/posts/:id/comments", h.ListCommunityComments)
	cm.POST("/posts/:id/comments", h.CreateCommunityComment)
	cm.PUT("/posts/:id/vote", requireAuth, h.Vote)
}

func (h *BoardHandler) caller(c *gin.Context, password string) board.Caller {
	return board.Caller{AccountID: middleware.SubjectFromContext(c), PIN: password}
}

func (h *BoardHandler) ListPosts(c *gin.Context) {
	posts, err := h.boardSvc.ListPosts(c.Request.Context())
	if err != nil {
		logger.Errorf("list posts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *BoardHandler) GetPost(c *gin.Context) {
	p, err := h.boardSvc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBoardError(c, "post lookup", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BoardHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.boardSvc.CreatePost(c.Request.Context(), h.caller(c, req.Password), req.Name, req.Body, req.Track)
	if err != nil {
		writeBoardError(c, "post create", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *BoardHandler) ListComments(c *gin.Context) {
	comments, err := h.boardSvc.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Errorf("list comments failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *BoardHandler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cm, err := h.boardSvc.CreateComment(c.Request.Context(), h.caller(c, req.Password), c.Param("id"), req.Name, req.Body, req.Rating)
	if err != nil {
		writeBoardError(c, "comment create", err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *BoardHandler) ListCommunityPosts(c *gin.Context) {
	posts, err := h.boardSvc.ListCommunityPosts(c.Request.Context())
	if err != nil {
		logger.Errorf("list community posts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *BoardHandler) GetCommunityPost(c *gin.Context) {
	p, err := h.boardSvc.GetCommunityPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBoardError(c, "community post lookup", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BoardHandler) CreateCommunityPost(c *gin.Context) {
	var req CreateCommunityPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.boardSvc.CreateCommunityPost(c.Request.Context(), h.caller(c, req.Password), req.Name, req.Title, req.Body, req.Images)
	if err != nil {
		writeBoardError(c, "community post create", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *BoardHandler) ListCommunityComments(c *gin.Context) {
	comments, err := h.boardSvc.ListCommunityComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Errorf("list community comments failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *BoardHandler) CreateCommunityComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cm, err := h.boardSvc.CreateCommunityComment(c.Request.Context(), h.caller(c, req.Password), c.Param("id"), req.Name, req.Body)
	if err != nil {
		writeBoardError(c, "community comment create", err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

// Vote sets the caller's recommendation for a community post to 0 or 1.
// Repeating the same value is a no-op; the ledger keeps one row per
// (post, voter).
func (h *BoardHandler) Vote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	desired := *req.Value
	if desired != 0 && desired != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be 0 or 1"})
		return
	}
	voterID := middleware.SubjectFromContext(c)
	postID := c.Param("id")
	ctx := c.Request.Context()

	existing, err := h.votesSvc.Get(ctx, postID, voterID)
	if err != nil {
		logger.Errorf("vote lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vote failed"})
		return
	}
	current := 0
	if existing != nil {
		current = existing.Value
	}
	value := current
	if current != desired {
		value, err = h.votesSvc.Toggle(ctx, postID, voterID)
		if err != nil {
			logger.Errorf("vote toggle failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "vote failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"value": value})
}

func writeBoardError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, board.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, board.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.Errorf("%s failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
