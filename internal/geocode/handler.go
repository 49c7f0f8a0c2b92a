package geocode

import (
	"github.com/gin-gonic/gin"

	"loolook_backend/platform/httpkit"
)

// Handler exposes the geocode lookup endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates a new geocode handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Lookup handles GET /api/geocode?q=...
func (h *Handler) Lookup(c *gin.Context) {
	result, err := h.svc.Lookup(c.Request.Context(), c.Query("q"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
