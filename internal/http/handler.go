package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"call-analytics-exporter/internal/export"
)

type Handler struct {
	trigger *export.Trigger
	log     zerolog.Logger
}

func NewHandler(trigger *export.Trigger, log zerolog.Logger) *Handler {
	return &Handler{trigger: trigger, log: log}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/api/export")
	protected.Use(authMiddleware)

	protected.POST("/run", h.runExport)
}

// runExport launches one exporter pass and relays its outcome. 408 means the
// run was killed at the wall-clock timeout; the operator simply re-triggers.
func (h *Handler) runExport(c *gin.Context) {
	result := h.trigger.RunOnce(c.Request.Context())

	switch {
	case result.TimedOut:
		c.JSON(http.StatusRequestTimeout, gin.H{
			"success": false,
			"message": "export run timed out",
			"output":  result.Output,
		})
	case !result.Success:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "export run failed",
			"output":  result.Output,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "export run completed",
			"output":  result.Output,
		})
	}
}
