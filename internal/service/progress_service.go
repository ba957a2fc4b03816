package service

import (
	"fmt"

	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/repository"
)

// ProgressService reads cumulative street progress for the API.
type ProgressService struct {
	progressRepo *repository.StreetProgressRepository
}

// NewProgressService creates a progress service.
func NewProgressService(progressRepo *repository.StreetProgressRepository) *ProgressService {
	return &ProgressService{progressRepo: progressRepo}
}

// ListStreets returns a page of the user's street progress.
func (s *ProgressService) ListStreets(userID string, page, pageSize int) ([]models.StreetProgress, int64, error) {
	streets, total, err := s.progressRepo.GetByUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list street progress: %w", err)
	}
	return streets, total, nil
}

// GetStreet returns one street's progress with its merged intervals, or
// nil when the user has never touched the street.
func (s *ProgressService) GetStreet(userID, streetKey string) (*models.StreetProgress, error) {
	p, err := s.progressRepo.GetByKey(userID, streetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get street progress: %w", err)
	}
	return p, nil
}
