package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"bobsgarage/api/internal/ids"
)

var allowedImageTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

const maxImageBytes = 10 << 20

// UploadImage stores a site image (blog cover, service photo) in the
// object store and returns its public URL.
func (h HandlerSet) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	if header.Size <= 0 || header.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_file_size"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		// Fall back to the filename extension for clients that send a
		// generic content type.
		byExt := strings.ToLower(path.Ext(header.Filename))
		for mime, allowed := range allowedImageTypes {
			if allowed == byExt {
				contentType = mime
				ext = allowed
				ok = true
				break
			}
		}
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_image_type"})
		return
	}

	objectKey := ids.New() + ext
	url, err := h.store.PutImage(c.Request.Context(), objectKey, file, header.Size, contentType)
	if err != nil {
		h.log.Error().Err(err).Str("object_key", objectKey).Msg("image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key": objectKey,
		"url": url,
	})
}
