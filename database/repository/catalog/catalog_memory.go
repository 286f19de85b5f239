package catalogRepo

import (
	"context"
	"sync"

	"roamly/models"
)

// MemoryServiceRepo is an in-memory ServiceRepository for tests and local
// development.
type MemoryServiceRepo struct {
	mu       sync.RWMutex
	services map[string]models.Service
}

// NewMemoryServiceRepo constructs a repo seeded with the given services.
func NewMemoryServiceRepo(services ...models.Service) *MemoryServiceRepo {
	repo := &MemoryServiceRepo{services: make(map[string]models.Service)}
	for _, s := range services {
		repo.services[s.ID] = s
	}
	return repo
}

// Put adds or replaces a service.
func (repo *MemoryServiceRepo) Put(svc models.Service) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.services[svc.ID] = svc
}

func (repo *MemoryServiceRepo) GetService(_ context.Context, id string) (*models.Service, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	svc, ok := repo.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &svc, nil
}
