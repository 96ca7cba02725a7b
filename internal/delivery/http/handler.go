package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/buybuddy/backend/internal/domain"
	"github.com/buybuddy/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pipeline *usecase.Pipeline
	saved    *usecase.SavedProductService
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler. logger may be nil.
func NewHandler(pipeline *usecase.Pipeline, saved *usecase.SavedProductService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipeline: pipeline,
		saved:    saved,
		logger:   logger,
	}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "buybuddy-backend",
		"version": "1.0.0",
	})
}

// AnalyzeProduct runs the analysis pipeline for a submitted product URL.
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid URL provided",
		})
		return
	}

	product, err := h.pipeline.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// SaveProduct persists an analyzed product under the caller's account.
func (h *Handler) SaveProduct(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil || product.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Product data is required",
		})
		return
	}

	saved, err := h.saved.Save(c.Request.Context(), &product, identity.UID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    saved,
		"message": "Product saved successfully",
	})
}

// ListSavedProducts returns the caller's saved products, newest first.
func (h *Handler) ListSavedProducts(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	products, err := h.saved.List(c.Request.Context(), identity.UID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
		"total":   len(products),
	})
}

// DeleteSavedProduct removes one of the caller's saved products.
func (h *Handler) DeleteSavedProduct(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	if err := h.saved.Delete(c.Request.Context(), c.Param("id"), identity.UID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// respondError translates domain error kinds to HTTP responses. Ownership
// violations are reported with the same status and body as missing records
// so callers cannot probe other users' data.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		status, message = http.StatusBadRequest, "Invalid URL provided"
	case errors.Is(err, domain.ErrExtractionFailed):
		status, message = http.StatusUnprocessableEntity, "Could not extract product information"
	case errors.Is(err, domain.ErrPageBlocked):
		status, message = http.StatusBadGateway, "Product page could not be reached"
	case errors.Is(err, domain.ErrExtractionTimeout):
		status, message = http.StatusGatewayTimeout, "Product page fetch timed out"
	case errors.Is(err, domain.ErrAnalysisUnavailable):
		status, message = http.StatusUnprocessableEntity, "Product analysis is unavailable"
	case errors.Is(err, domain.ErrAnalysisTimeout):
		status, message = http.StatusGatewayTimeout, "Product analysis timed out"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotOwner):
		status, message = http.StatusNotFound, "Saved product not found"
	case errors.Is(err, domain.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Invalid or missing credentials"
	case errors.Is(err, domain.ErrPersistenceFailed):
		status, message = http.StatusInternalServerError, "Failed to access saved products"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}

	body := gin.H{"success": false, "message": message}
	var pipelineErr *usecase.PipelineError
	if errors.As(err, &pipelineErr) {
		body["stage"] = string(pipelineErr.Stage)
	}

	c.JSON(status, body)
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Invalid or missing credentials",
	})
}
