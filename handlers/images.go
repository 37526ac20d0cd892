package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/diggingboard/diggingboard/internal/storage"
	"github.com/diggingboard/diggingboard/pkg/logger"
)

const maxImageBytes = 10 << 20 // 10 MiB

// ImagesHandler accepts multipart image uploads for community posts and
// removes objects that edits no longer reference.
type ImagesHandler struct {
	store *storage.ImageStore
}

func NewImagesHandler(store *storage.ImageStore) *ImagesHandler {
	return &ImagesHandler{store: store}
}

func (h *ImagesHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/images", h.Upload)
	rg.DELETE("/images/:key", h.Delete)
}

// Upload stores the "image" form file under a fresh uuid key, keeping the
// original extension so the served content type stays sensible.
func (h *ImagesHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image form file is required"})
		return
	}
	if fh.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 10 MiB"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are accepted"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	key := fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(fh.Filename)))
	if err := h.store.Upload(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("image upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key, "url": h.store.PublicURL(key)})
}

// Delete removes a stored object. Removing a missing key is not an error.
func (h *ImagesHandler) Delete(c *gin.Context) {
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}
	if err := h.store.Remove(c.Request.Context(), key); err != nil {
		logger.Errorf("image delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
