package catalogRepo

import (
	"context"
	"errors"

	"roamly/models"
)

// ErrNotFound means no catalog service exists for the given id.
var ErrNotFound = errors.New("service not found")

// ServiceRepository is the read-only view of the catalog subsystem the
// booking core consumes. The core never writes catalog data.
type ServiceRepository interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
}
