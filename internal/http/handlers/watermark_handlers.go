package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-watermark/internal/config"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/batch"
	"github.com/phambaophuc/image-watermark/internal/services/settings"
	"go.uber.org/zap"
)

const (
	imageParamKey     = "image"
	imagesParamKey    = "images"
	watermarkParamKey = "watermark"

	headerRunID        = "X-Batch-Run-ID"
	headerProcessed    = "X-Batch-Processed"
	headerSkipped      = "X-Batch-Skipped"
	headerSkippedFiles = "X-Batch-Skipped-Files"
)

type WatermarkHandler struct {
	batch    *batch.Service
	settings settings.Store
	logger   *zap.Logger
	config   *config.Config
}

func NewWatermarkHandler(
	batch *batch.Service,
	settings settings.Store,
	logger *zap.Logger,
	config *config.Config,
) *WatermarkHandler {
	return &WatermarkHandler{
		batch:    batch,
		settings: settings,
		logger:   logger,
		config:   config,
	}
}

// === MAIN API ENDPOINTS ===

// BatchWatermark watermarks every uploaded image and answers with a ZIP.
func (h *WatermarkHandler) BatchWatermark(c *gin.Context) {
	files, err := h.parseMultipartFiles(c, imagesParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(files) > h.config.Processing.MaxBatchFiles {
		h.respondError(c, http.StatusBadRequest,
			fmt.Sprintf("too many images: %d (max %d)", len(files), h.config.Processing.MaxBatchFiles))
		return
	}

	req, err := h.parseWatermarkRequest(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	defaults := h.loadSettings(c)
	params, resize := h.buildParameters(req, defaults)

	watermark, err := h.readWatermark(c, req)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	uploads, err := h.readFiles(files)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.batch.RunBatch(uploads, watermark, params, resize)
	if err != nil {
		h.respondRunError(c, err, result)
		return
	}

	archive, err := batch.Archive(result)
	if err != nil {
		h.logger.Error("Archive packaging failed", zap.String("run_id", result.RunID), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to build archive")
		return
	}

	h.saveSettings(c, params, resize, defaults)

	c.Header(headerRunID, result.RunID)
	c.Header(headerProcessed, strconv.Itoa(len(result.Entries)))
	c.Header(headerSkipped, strconv.Itoa(len(result.Failures)))
	if len(result.Failures) > 0 {
		c.Header(headerSkippedFiles, encodeFilenames(result.FailedFilenames()))
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.config.Processing.ArchiveName))
	c.Data(http.StatusOK, "application/zip", archive)
}

// Preview renders one uploaded image with the watermark applied.
func (h *WatermarkHandler) Preview(c *gin.Context) {
	files, err := h.parseMultipartFiles(c, imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.parseWatermarkRequest(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	defaults := h.loadSettings(c)
	params, resize := h.buildParameters(req, defaults)

	watermark, err := h.readWatermark(c, req)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	uploads, err := h.readFiles(files[:1])
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.batch.Preview(uploads[0], watermark, params, resize, req.Guide)
	if err != nil {
		h.respondRunError(c, err, nil)
		return
	}

	h.saveSettings(c, params, resize, defaults)

	c.Data(http.StatusOK, "image/jpeg", data)
}

// GetSettings returns the defaults the next session starts from.
func (h *WatermarkHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.loadSettings(c),
	})
}

func (h *WatermarkHandler) HealthCheck(c *gin.Context) {
	storeStatus := h.settings.HealthCheck(c.Request.Context())
	overall := h.calculateOverallHealth(storeStatus)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  storeStatus,
		},
	})
}

func (h *WatermarkHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
