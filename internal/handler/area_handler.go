package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/service"
	"github.com/weylan/street-coverage-go/pkg/response"
)

// AreaHandler handles HTTP requests for area overlap checks
type AreaHandler struct {
	service *service.AreaService
}

// NewAreaHandler creates a new area handler
func NewAreaHandler(service *service.AreaService) *AreaHandler {
	return &AreaHandler{service: service}
}

type overlapRequest struct {
	Points []pointRequest `json:"points" binding:"required"`
	Areas  []models.Area  `json:"areas" binding:"required"`
}

// CheckOverlap handles POST /api/v1/areas/overlap
func (h *AreaHandler) CheckOverlap(c *gin.Context) {
	var req overlapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	points := make([]models.GpsPoint, len(req.Points))
	for i, p := range req.Points {
		points[i] = models.GpsPoint{Lat: p.Lat, Lng: p.Lng}
	}

	results, err := h.service.CheckOverlap(points, req.Areas)
	if err != nil {
		if errors.Is(err, service.ErrNoPoints) {
			response.Error(c, http.StatusBadRequest, "Trace contains no points", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to check overlap", err)
		return
	}

	response.Success(c, results)
}
