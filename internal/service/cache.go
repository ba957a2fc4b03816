package service

import (
	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/matching/edgegraph"
	"github.com/weylan/street-coverage-go/internal/repository"
	"github.com/weylan/street-coverage-go/internal/roadgraph"
)

// NodeWayStore is a two-tier node→way membership cache: an in-process map
// in front of the persisted cache table. Database failures degrade to
// cache misses rather than failing the run.
type NodeWayStore struct {
	mem    *edgegraph.MemoryCache
	repo   *repository.WayCacheRepository
	logger *logrus.Logger
}

// NewNodeWayStore creates a store over the persisted cache.
func NewNodeWayStore(repo *repository.WayCacheRepository, logger *logrus.Logger) *NodeWayStore {
	return &NodeWayStore{
		mem:    edgegraph.NewMemoryCache(),
		repo:   repo,
		logger: logger,
	}
}

// Get serves from memory first, then the database; whatever neither tier
// holds is reported as a miss.
func (s *NodeWayStore) Get(nodeIDs []int64) (map[int64][]roadgraph.WayRef, []int64) {
	hits, misses := s.mem.Get(nodeIDs)
	if len(misses) == 0 {
		return hits, nil
	}

	fromDB, err := s.repo.GetNodes(misses)
	if err != nil {
		s.logger.Warnf("[Cache] persisted lookup failed, treating %d nodes as misses: %v", len(misses), err)
		return hits, misses
	}
	if len(fromDB) > 0 {
		s.mem.Put(fromDB)
	}

	var still []int64
	for _, id := range misses {
		if refs, ok := fromDB[id]; ok {
			hits[id] = refs
		} else {
			still = append(still, id)
		}
	}
	return hits, still
}

// Put writes through both tiers.
func (s *NodeWayStore) Put(entries map[int64][]roadgraph.WayRef) {
	s.mem.Put(entries)
	if err := s.repo.PutNodes(entries); err != nil {
		s.logger.Warnf("[Cache] failed to persist %d cache entries: %v", len(entries), err)
	}
}
