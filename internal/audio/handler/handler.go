package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"voicerly_backend/internal/audio/service"
	"voicerly_backend/internal/audio/transport"
	"voicerly_backend/platform/httpkit"
	"voicerly_backend/platform/validator"
)

// AudioFormField is the multipart field carrying the recording.
const AudioFormField = "audio"

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgNoURL            = "No URL provided"
	msgInvalidID        = "Invalid audio ID format"
)

// AudioService is the subset of the audio service the handler drives.
type AudioService interface {
	Admit(ctx context.Context, req service.UploadRequest) (transport.UploadResponse, error)
	Delete(ctx context.Context, shareURL string) (transport.DeleteResponse, error)
	Lookup(ctx context.Context, id, origin string) (transport.AudioFileResponse, error)
	RecordDownload(ctx context.Context, id string) (transport.DownloadResponse, error)
	Stats(ctx context.Context) (transport.FileStatsResponse, error)
	Cleanup(ctx context.Context) transport.CleanupResponse
}

// Handler handles HTTP requests for audio assets.
type Handler struct {
	svc         AudioService
	val         *validator.Validator
	maxFileSize int64
}

// New creates a new audio handler. maxFileSize bounds how much of the
// uploaded part is buffered; one extra byte is read so oversize payloads
// still reach validation.
func New(svc AudioService, val *validator.Validator, maxFileSize int64) *Handler {
	return &Handler{svc: svc, val: val, maxFileSize: maxFileSize}
}

// RegisterRoutes mounts the public audio routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.Upload)
	rg.POST("/delete", h.Delete)
	rg.GET("/audio/:id", h.Get)
	rg.POST("/audio/:id/download", h.Download)
}

// RegisterMaintenanceRoutes mounts the stats and cleanup routes.
func (h *Handler) RegisterMaintenanceRoutes(rg *gin.RouterGroup) {
	rg.GET("/cleanup", h.Stats)
	rg.POST("/cleanup", h.Cleanup)
}

// Upload admits one recording.
// POST /api/v1/upload
func (h *Handler) Upload(c *gin.Context) {
	req := h.readUpload(c)

	result, err := h.svc.Admit(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// readUpload streams the multipart body and buffers only the audio part.
// A body that is not a multipart form, or whose audio part cannot be read,
// is reported as carrying no file so the rate limit is still consulted first.
func (h *Handler) readUpload(c *gin.Context) service.UploadRequest {
	req := service.UploadRequest{
		ClientKey: c.ClientIP(),
		Origin:    c.GetHeader("Origin"),
	}

	reader, err := c.Request.MultipartReader()
	if err != nil {
		return req
	}

	for {
		// io.EOF and a truncated body both end the scan.
		part, err := reader.NextPart()
		if err != nil {
			return req
		}

		if part.FormName() != AudioFormField || req.HasFile {
			_ = part.Close()
			continue
		}

		payload, err := io.ReadAll(io.LimitReader(part, h.maxFileSize+1))
		_ = part.Close()
		if err != nil {
			_ = c.Error(fmt.Errorf("read audio part: %w", err))
			return req
		}

		req.HasFile = true
		req.FileName = part.FileName()
		req.MimeType = part.Header.Get("Content-Type")
		req.Payload = payload
	}
}

// Delete removes the asset behind a share URL.
// POST /api/v1/delete
func (h *Handler) Delete(c *gin.Context) {
	var req transport.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		httpkit.Error(c, http.StatusBadRequest, msgNoURL, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Delete(c.Request.Context(), req.URL)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns the share page view of an asset.
// GET /api/v1/audio/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.svc.Lookup(c.Request.Context(), id, c.GetHeader("Origin"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Download counts a download and returns a presigned link.
// POST /api/v1/audio/:id/download
func (h *Handler) Download(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.svc.RecordDownload(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindID(c *gin.Context) (string, bool) {
	var param transport.AudioIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return "", false
	}
	if err := h.val.Struct(param); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return "", false
	}
	return param.ID, true
}

// Stats reports storage totals.
// GET /api/v1/cleanup
func (h *Handler) Stats(c *gin.Context) {
	result, err := h.svc.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Cleanup runs the retention sweep.
// POST /api/v1/cleanup
func (h *Handler) Cleanup(c *gin.Context) {
	httpkit.OK(c, h.svc.Cleanup(c.Request.Context()))
}
