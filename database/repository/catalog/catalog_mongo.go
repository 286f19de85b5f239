package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"roamly/database"
	"roamly/models"
)

// MongoServiceRepo implements ServiceRepository against the catalog
// subsystem's services collection.
type MongoServiceRepo struct {
	serviceColl *mongo.Collection
}

// NewMongoServiceRepo constructs a new instance of MongoServiceRepo.
func NewMongoServiceRepo() *MongoServiceRepo {
	return &MongoServiceRepo{
		serviceColl: database.DB().Collection("services"),
	}
}

func (repo *MongoServiceRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := repo.serviceColl.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching service %s: %w", id, err)
	}
	return &svc, nil
}
