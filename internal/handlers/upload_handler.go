package handlers

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/InternBridge/internship-service/internal/storage"
	"github.com/InternBridge/internship-service/internal/utils"
)

// 10 MiB resume cap.
const maxUploadBytes = 10 << 20

var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type UploadHandler struct {
	BaseHandler
	storage storage.Storage
}

func NewUploadHandler(store storage.Storage, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler: NewBaseHandler(logger),
		storage:     store,
	}
}

// UploadResume accepts one multipart file and returns its stored URL. The URL
// is then carried in an application's resume_url field.
func (h *UploadHandler) UploadResume(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "File storage not configured"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "file field missing",
			Details: err.Error(),
		})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "File exceeds 10MB limit"})
		return
	}

	ext := filepath.Ext(header.Filename)
	if !allowedUploadExtensions[ext] {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Unsupported file type"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Could not read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Could not read uploaded file"})
		return
	}

	url, err := h.storage.Upload(c.Request.Context(), header.Filename, data)
	if err != nil {
		utils.FromContext(c.Request.Context(), h.logger).Error("upload failed", "filename", header.Filename, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "Upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
