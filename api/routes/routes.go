package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/scanwise/invoice-extractor/api/handlers"
	"github.com/scanwise/invoice-extractor/api/middleware"
)

// SetupRoutes registers the HTTP surface: the upload pipeline plus the two
// operational probes.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	r.POST("/upload", h.Invoice.Upload)
	r.GET("/health", h.Invoice.Health)
	r.GET("/test-gemini", h.Invoice.TestGemini)
}
