// Package media exposes the image upload proxy endpoint.
package media

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/creator-platform/creator_service/internal/api/handlers/common"
	mediasvc "github.com/creator-platform/creator_service/internal/domain/services/media"
	"github.com/creator-platform/creator_service/pkg/logger"
)

const maxImageSize = 10 << 20 // 10 MiB

// Handlers serves the media endpoints
type Handlers struct {
	service *mediasvc.Service
	log     *logger.Logger
}

// NewHandlers creates media handlers
func NewHandlers(service *mediasvc.Service, log *logger.Logger) *Handlers {
	return &Handlers{service: service, log: log}
}

// UploadImage handles POST /api/v1/media/images. The upload is spooled to a temp file
// which is removed on both success and failure paths.
func (h *Handlers) UploadImage(c *gin.Context) {
	if _, err := common.GetCreatorID(c); err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		common.RespondBadRequest(c, "image file is required")
		return
	}
	if file.Size > maxImageSize {
		common.RespondBadRequest(c, "image exceeds the 10 MiB limit")
		return
	}

	// Spool path must be unique per request; the client-supplied filename is not.
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		h.log.Error("Failed to create spool file", "error", err.Error())
		common.RespondInternalError(c, "Failed to process upload")
		return
	}
	tempPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			h.log.Warn("Failed to remove temp upload", "path", tempPath, "error", err.Error())
		}
	}()

	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		h.log.Error("Failed to spool upload", "error", err.Error())
		common.RespondInternalError(c, "Failed to process upload")
		return
	}

	url, err := h.service.UploadImage(c.Request.Context(), tempPath)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondCreated(c, gin.H{"url": url})
}
