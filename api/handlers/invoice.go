package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scanwise/invoice-extractor/internal/models"
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

// PipelineRunner is the extraction pipeline as the handler sees it.
type PipelineRunner interface {
	Run(ctx context.Context, upload *models.UploadRequest) *models.PipelineResult
}

// Prober checks reachability of the language-model collaborator.
type Prober interface {
	Ping(ctx context.Context) (string, error)
}

// ErrorResponse is the JSON body for rejected uploads.
type ErrorResponse struct {
	Error string `json:"error"`
}

type InvoiceHandler struct {
	runner        PipelineRunner
	prober        Prober
	maxUploadSize int64
	logger        logger.Logger
}

func NewInvoiceHandler(runner PipelineRunner, prober Prober, maxUploadSize int64, logger logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		runner:        runner,
		prober:        prober,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Upload accepts a multipart file, runs the pipeline and returns either a
// fully-keyed InvoiceRecord (200) or a rejection reason (400). Failures
// after validation still produce a 200 with the fallback record so clients
// never branch on error shape.
func (h *InvoiceHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.logger.Warn("Invalid multipart upload", logger.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "MissingFile"})
		return
	}
	defer file.Close()

	// Read at most one byte past the limit; the validator turns the excess
	// into a TooLarge rejection without buffering the whole oversized body.
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		h.logger.Error("Failed to read upload", logger.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "MissingFile"})
		return
	}

	upload := &models.UploadRequest{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
	}

	result := h.runner.Run(c.Request.Context(), upload)
	if result.Record == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: result.Reason})
		return
	}
	c.JSON(http.StatusOK, result.Record)
}

// Health reports process liveness without touching any collaborator.
func (h *InvoiceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// TestGemini performs a minimal round trip to the language model and reports
// reachability. Errors are reported in the body, not the status code, so the
// endpoint stays usable from a browser.
func (h *InvoiceHandler) TestGemini(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	resp, err := h.prober.Ping(ctx)
	if err != nil {
		h.logger.Error("Gemini probe failed", logger.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"gemini_status": "error",
			"error":         err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gemini_status": "connected",
		"response":      resp,
	})
}
