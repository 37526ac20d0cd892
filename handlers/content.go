package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diggingboard/diggingboard/internal/board"
	"github.com/diggingboard/diggingboard/pkg/logger"
	"github.com/diggingboard/diggingboard/pkg/metrics"
	"github.com/diggingboard/diggingboard/pkg/middleware"
)

// ManageContentRequest is the single entry point for content mutations. Every
// update, delete and editability probe for any of the four content kinds goes
// through it, so authorization lives in exactly one place.
type ManageContentRequest struct {
	Action  string `json:"action" binding:"required"`
	Table   string `json:"table" binding:"required"`
	ID      string `json:"id" binding:"required"`
	Payload struct {
		Title    string   `json:"title"`
		Body     string   `json:"body"`
		Rating   int      `json:"rating"`
		Images   []string `json:"images"`
		Password string   `json:"password"`
	} `json:"payload"`
}

// ContentHandler exposes the mutation gateway.
type ContentHandler struct {
	boardSvc *board.Service
}

func NewContentHandler(b *board.Service) *ContentHandler {
	return &ContentHandler{boardSvc: b}
}

func (h *ContentHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/manage-content", h.ManageContent)
}

// ManageContent dispatches a gateway request. Responses always carry
// {success, message}; validation problems and missing rows map to 400,
// failed authorization to 401, storage faults to 500.
func (h *ContentHandler) ManageContent(c *gin.Context) {
	var req ManageContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	action, err := board.ParseAction(req.Action)
	if err != nil {
		h.reject(c, req.Action, err)
		return
	}
	table, err := board.ParseTable(req.Table)
	if err != nil {
		h.reject(c, string(action), err)
		return
	}

	caller := board.Caller{
		AccountID: middleware.SubjectFromContext(c),
		PIN:       req.Payload.Password,
	}

	ctx := c.Request.Context()
	switch action {
	case board.ActionCanEdit:
		err = h.boardSvc.CanEdit(ctx, table, req.ID, caller)
	case board.ActionDelete:
		err = h.boardSvc.Delete(ctx, table, req.ID, caller)
	case board.ActionUpdate:
		err = h.boardSvc.Update(ctx, table, req.ID, caller, board.Payload{
			Title:  req.Payload.Title,
			Body:   req.Payload.Body,
			Rating: req.Payload.Rating,
			Images: req.Payload.Images,
		})
	}
	if err != nil {
		h.reject(c, string(action), err)
		return
	}

	metrics.GatewayDecisions.WithLabelValues(string(action), "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": successMessage(action)})
}

func (h *ContentHandler) reject(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, board.ErrUnauthorized):
		metrics.GatewayDecisions.WithLabelValues(action, "unauthorized").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, board.ErrValidation), errors.Is(err, board.ErrNotFound):
		metrics.GatewayDecisions.WithLabelValues(action, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		metrics.GatewayDecisions.WithLabelValues(action, "error").Inc()
		logger.Errorf("manage-content %s failed: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}

func successMessage(action board.Action) string {
	switch action {
	case board.ActionUpdate:
		return "updated"
	case board.ActionDelete:
		return "deleted"
	default:
		return "authorized"
	}
}
