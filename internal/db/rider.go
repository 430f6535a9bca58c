package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ridelog/ridelog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRiderCollection implements RiderCollection for MongoDB
type MongoRiderCollection struct {
	Collection *mongo.Collection
}

// InsertRider inserts a new active rider and sets its ID. Emails are
// stored lower-cased; a taken email yields ErrDuplicate.
func (c *MongoRiderCollection) InsertRider(ctx context.Context, rider *models.Rider) error {
	now := time.Now()
	rider.ID = primitive.NilObjectID
	rider.Email = normalizeEmail(rider.Email)
	rider.CreatedAt = now
	rider.UpdatedAt = now
	rider.IsActive = true

	id, err := insert(ctx, c.Collection, rider)
	if err != nil {
		return err
	}
	rider.ID = id
	return nil
}

// FindRiderByID finds a rider by their ID
func (c *MongoRiderCollection) FindRiderByID(ctx context.Context, id string) (*models.Rider, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return c.findOne(ctx, bson.M{"_id": objectID})
}

// FindRiderByEmail finds a rider by their email
func (c *MongoRiderCollection) FindRiderByEmail(ctx context.Context, email string) (*models.Rider, error) {
	return c.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// FindActiveRiders lists every active rider.
func (c *MongoRiderCollection) FindActiveRiders(ctx context.Context) ([]models.Rider, error) {
	return findAll[models.Rider](ctx, c.Collection, bson.M{"is_active": true})
}

// UpdateBike replaces the bike details on a rider's account.
func (c *MongoRiderCollection) UpdateBike(ctx context.Context, id string, bike models.Bike) error {
	return c.update(ctx, id, bson.M{"bike": bike, "updated_at": time.Now()})
}

// UpdateLastLogin updates the last login time for a rider
func (c *MongoRiderCollection) UpdateLastLogin(ctx context.Context, id string) error {
	now := time.Now()
	return c.update(ctx, id, bson.M{"last_login": now, "updated_at": now})
}

func (c *MongoRiderCollection) findOne(ctx context.Context, filter bson.M) (*models.Rider, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var rider models.Rider
	if err := c.Collection.FindOne(ctx, filter).Decode(&rider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rider, nil
}

func (c *MongoRiderCollection) update(ctx context.Context, id string, set bson.M) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	res, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
