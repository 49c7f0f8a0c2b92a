// Package handler exposes the toilets HTTP endpoints.
package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"loolook_backend/internal/geo"
	"loolook_backend/internal/toilets/service"
	"loolook_backend/internal/toilets/transport"
	"loolook_backend/platform/httpkit"
	"loolook_backend/platform/logger"
)

type Handler struct {
	service *service.Service
	log     *logger.Logger
}

func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{service: svc, log: log}
}

// List handles GET /api/toilets. mode selects the lookup: all (default),
// bounds (swLat/swLng/neLat/neLng) or radius (lat/lng/radius in km).
// public=0|1 optionally filters on visibility.
func (h *Handler) List(c *gin.Context) {
	q := service.Query{Mode: c.DefaultQuery("mode", service.ModeAll)}

	switch pub := c.Query("public"); pub {
	case "":
	case "0", "1":
		v := pub == "1"
		q.IsPublic = &v
	default:
		httpkit.Error(c, 400, "public must be 0 or 1", nil)
		return
	}

	switch q.Mode {
	case service.ModeBounds:
		swLat, ok1 := parseFloat(c, "swLat")
		swLng, ok2 := parseFloat(c, "swLng")
		neLat, ok3 := parseFloat(c, "neLat")
		neLng, ok4 := parseFloat(c, "neLng")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return
		}
		q.Bounds = &geo.BoundingBox{
			SouthWest: geo.Point{Lat: swLat, Lng: swLng},
			NorthEast: geo.Point{Lat: neLat, Lng: neLng},
		}
	case service.ModeRadius:
		lat, ok1 := parseFloat(c, "lat")
		lng, ok2 := parseFloat(c, "lng")
		radius, ok3 := parseFloat(c, "radius")
		if !ok1 || !ok2 || !ok3 {
			return
		}
		q.Center = &geo.Point{Lat: lat, Lng: lng}
		q.RadiusKM = radius
	}

	toilets, err := h.service.List(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toilets)
}

// Submit handles POST /api/toilets. The body is either a single record
// or an array of records; invalid rows are skipped silently and the
// response counts the rows actually written.
func (h *Handler) Submit(c *gin.Context) {
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		httpkit.Error(c, 400, "invalid JSON body", nil)
		return
	}

	var records []transport.NewToilet
	if err := json.Unmarshal(raw, &records); err != nil {
		var single transport.NewToilet
		if err := json.Unmarshal(raw, &single); err != nil {
			httpkit.Error(c, 400, "expected a toilet object or an array of them", nil)
			return
		}
		records = []transport.NewToilet{single}
	}

	count, err := h.service.SubmitRecords(c.Request.Context(), records)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.SubmitResponse{OK: true, Count: count})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

func parseFloat(c *gin.Context, name string) (float64, bool) {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		httpkit.Error(c, 400, name+" must be a number", nil)
		return 0, false
	}
	return v, true
}
