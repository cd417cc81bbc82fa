package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/batch"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/phambaophuc/image-watermark/pkg/utils"
	"go.uber.org/zap"
)

const multipartMemory = 32 << 20

// === REQUEST PARSING ===

func (h *WatermarkHandler) parseMultipartFiles(c *gin.Context, key string) ([]*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}

	files := c.Request.MultipartForm.File[key]
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s provided", key)
	}

	return files, nil
}

func (h *WatermarkHandler) parseWatermarkRequest(c *gin.Context) (*models.WatermarkRequest, error) {
	var req models.WatermarkRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, fmt.Errorf("invalid watermark parameters: %v", err)
	}
	return &req, nil
}

// buildParameters fills the fields the form left out from the stored
// defaults. Offsets without an anchor select explicit placement.
func (h *WatermarkHandler) buildParameters(req *models.WatermarkRequest, defaults models.Settings) (models.WatermarkParameters, models.ResizePolicy) {
	s := defaults

	if req.Opacity != nil {
		s.Opacity = *req.Opacity
	}
	if req.Scale != nil {
		s.Scale = *req.Scale
	}
	if req.XOffset != nil {
		s.XOffset = *req.XOffset
	}
	if req.YOffset != nil {
		s.YOffset = *req.YOffset
	}

	switch {
	case req.Anchor != nil && *req.Anchor == "none":
		s.Anchor = models.AnchorNone
	case req.Anchor != nil:
		s.Anchor = models.Anchor(*req.Anchor)
	case req.XOffset != nil || req.YOffset != nil:
		s.Anchor = models.AnchorNone
	}

	if req.ResizeWidth != nil {
		s.ResizeEnabled = *req.ResizeWidth > 0
		if s.ResizeEnabled {
			s.ResizeWidth = *req.ResizeWidth
		}
	}

	return s.Parameters(), s.ResizePolicy()
}

// === FILE OPERATIONS ===

func (h *WatermarkHandler) readWatermark(c *gin.Context, req *models.WatermarkRequest) ([]byte, error) {
	if files := c.Request.MultipartForm.File[watermarkParamKey]; len(files) > 0 {
		uploads, err := h.readFiles(files[:1])
		if err != nil {
			return nil, err
		}
		return uploads[0].Data, nil
	}

	if req.WatermarkURL != "" {
		data, _, err := utils.DownloadImage(c.Request.Context(), req.WatermarkURL, h.config.Processing.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch watermark: %v", err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("no watermark provided")
}

func (h *WatermarkHandler) readFiles(files []*multipart.FileHeader) ([]models.UploadFile, error) {
	uploads := make([]models.UploadFile, 0, len(files))

	for _, fh := range files {
		if fh.Size > h.config.Processing.MaxFileSize {
			return nil, fmt.Errorf("file %s size %d exceeds maximum allowed size %d",
				fh.Filename, fh.Size, h.config.Processing.MaxFileSize)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %v", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", fh.Filename, err)
		}

		uploads = append(uploads, models.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return uploads, nil
}

// === SETTINGS ===

func (h *WatermarkHandler) loadSettings(c *gin.Context) models.Settings {
	s, err := h.settings.Load(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to load settings, using defaults", zap.Error(err))
	}
	return s
}

func (h *WatermarkHandler) saveSettings(c *gin.Context, params models.WatermarkParameters, resize models.ResizePolicy, previous models.Settings) {
	s := models.FromRun(params, resize, previous)
	if err := h.settings.Save(c.Request.Context(), s); err != nil {
		h.logger.Warn("Failed to save settings", zap.Error(err))
	}
}

// === RESPONSE HANDLING ===

func (h *WatermarkHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *WatermarkHandler) respondRunError(c *gin.Context, err error, result *models.BatchResult) {
	var itemErr *batch.ItemError

	switch {
	case errors.Is(err, processor.ErrInvalidParameter), errors.Is(err, processor.ErrInvalidWatermark):
		h.respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &itemErr):
		h.respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("failed to process %s: %v", itemErr.Filename, itemErr.Err))
	case errors.Is(err, batch.ErrEmptyBatch):
		c.JSON(http.StatusUnprocessableEntity, models.APIResponse{
			Success: false,
			Error:   err.Error(),
			Data:    result,
		})
	default:
		h.logger.Error("Watermarking failed", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to watermark images")
	}
}

func encodeFilenames(names []string) string {
	escaped := make([]string, len(names))
	for i, name := range names {
		escaped[i] = url.PathEscape(name)
	}
	return strings.Join(escaped, ",")
}
