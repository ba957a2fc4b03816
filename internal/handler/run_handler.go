package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/service"
	"github.com/weylan/street-coverage-go/pkg/response"
)

// RunHandler handles HTTP requests for run ingestion
type RunHandler struct {
	service *service.RunService
}

// NewRunHandler creates a new run handler
func NewRunHandler(service *service.RunService) *RunHandler {
	return &RunHandler{service: service}
}

type pointRequest struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Elevation *float64 `json:"elevation,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
}

type runRequest struct {
	Mode   string         `json:"mode"`
	Points []pointRequest `json:"points" binding:"required"`
}

// CreateRun handles POST /api/v1/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		response.Error(c, http.StatusBadRequest, "Missing X-User-ID header", nil)
		return
	}

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	mode := models.MatchKind(req.Mode)
	if req.Mode == "" {
		mode = models.GeometricMatch
	}

	points := make([]models.GpsPoint, len(req.Points))
	for i, p := range req.Points {
		points[i] = models.GpsPoint{
			Lat:       p.Lat,
			Lng:       p.Lng,
			Elevation: p.Elevation,
			Timestamp: p.Timestamp,
		}
	}

	result, err := h.service.ProcessRun(c.Request.Context(), userID, points, mode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPoints), errors.Is(err, service.ErrUnknownMode):
			response.Error(c, http.StatusBadRequest, "Invalid run", err)
		case errors.Is(err, service.ErrNoRoadData):
			response.Error(c, http.StatusUnprocessableEntity, "No road data for trace region", err)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to process run", err)
		}
		return
	}

	roundRunResult(result)
	response.Success(c, result)
}
