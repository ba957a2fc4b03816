package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weylan/street-coverage-go/internal/service"
	"github.com/weylan/street-coverage-go/pkg/response"
)

// ProgressHandler handles HTTP requests for street progress
type ProgressHandler struct {
	service *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(service *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// ListStreets handles GET /api/v1/progress/streets
func (h *ProgressHandler) ListStreets(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		response.Error(c, http.StatusBadRequest, "Missing X-User-ID header", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "100"))

	streets, total, err := h.service.ListStreets(userID, page, pageSize)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list street progress", err)
		return
	}

	for i := range streets {
		roundProgress(&streets[i])
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       streets,
		"total":      total,
		"page":       page,
		"pageSize":   pageSize,
		"totalPages": totalPages,
	})
}

// GetStreet handles GET /api/v1/progress/streets/:streetKey
func (h *ProgressHandler) GetStreet(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		response.Error(c, http.StatusBadRequest, "Missing X-User-ID header", nil)
		return
	}

	streetKey := c.Param("streetKey")
	progress, err := h.service.GetStreet(userID, streetKey)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get street progress", err)
		return
	}
	if progress == nil {
		response.Error(c, http.StatusNotFound, "Street not found", nil)
		return
	}

	roundProgress(progress)
	response.Success(c, progress)
}
