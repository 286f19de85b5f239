package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roamly/database"
	"roamly/models"
)

// MongoSlotRepo implements SlotRepository using MongoDB.
type MongoSlotRepo struct {
	slotColl *mongo.Collection
}

// NewMongoSlotRepo constructs a new instance of MongoSlotRepo.
func NewMongoSlotRepo() *MongoSlotRepo {
	return &MongoSlotRepo{
		slotColl: database.DB().Collection("availability_slots"),
	}
}

// EnsureIndexes creates the unique (service_id, slot_key) index. Called once
// at startup.
func (repo *MongoSlotRepo) EnsureIndexes(ctx context.Context) error {
	_, err := repo.slotColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "service_id", Value: 1}, {Key: "slot_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create availability slot index: %w", err)
	}
	return nil
}

func (repo *MongoSlotRepo) Get(ctx context.Context, serviceID, slotKey string) (*models.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.AvailabilitySlot
	filter := bson.M{"service_id": serviceID, "slot_key": slotKey}
	if err := repo.slotColl.FindOne(ctx, filter).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching slot %s/%s: %w", serviceID, slotKey, err)
	}
	return &slot, nil
}

func (repo *MongoSlotRepo) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.slotColl.InsertOne(ctx, slot); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error creating slot %s/%s: %w", slot.ServiceID, slot.SlotKey, err)
	}
	return nil
}

// CompareAndSwap performs the conditional write: the version counter is part
// of the filter, so a concurrent update since the read makes the filter miss
// and the call reports ErrVersionConflict.
func (repo *MongoSlotRepo) CompareAndSwap(ctx context.Context, serviceID, slotKey string, version int64, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"service_id": serviceID,
		"slot_key":   slotKey,
		"version":    version,
	}
	update := bson.M{
		"$inc": bson.M{"reserved": delta, "version": 1},
	}
	res, err := repo.slotColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating slot %s/%s: %w", serviceID, slotKey, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}
