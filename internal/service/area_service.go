package service

import (
	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/overlap"
)

// AreaService answers which tracked areas a trace could have touched.
// It is stateless; nothing about an overlap check is persisted.
type AreaService struct {
	filter *overlap.Filter
	logger *logrus.Logger
}

// NewAreaService creates an area service.
func NewAreaService(logger *logrus.Logger) *AreaService {
	return &AreaService{filter: overlap.NewFilter(), logger: logger}
}

// CheckOverlap tests a trace against candidate areas.
func (s *AreaService) CheckOverlap(points []models.GpsPoint, areas []models.Area) ([]models.OverlapResult, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	results := s.filter.Check(points, areas)

	overlapping := 0
	for _, r := range results {
		if r.Overlaps {
			overlapping++
		}
	}
	s.logger.WithFields(logrus.Fields{
		"points":      len(points),
		"areas":       len(areas),
		"overlapping": overlapping,
	}).Debug("[Area] overlap check")

	return results, nil
}
