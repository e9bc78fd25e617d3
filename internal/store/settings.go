package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perrada/internal/models"
)

type MongoSettings struct {
	coll *mongo.Collection
}

func NewMongoSettings(db *mongo.Database) *MongoSettings {
	return &MongoSettings{coll: db.Collection(settingsCollection)}
}

// Get treats a missing document as a closed shop with no shift.
func (r *MongoSettings) Get(ctx context.Context) (models.ShopSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var settings models.ShopSettings
	err := r.coll.FindOne(ctx, bson.M{"_id": shopSettingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ShopSettings{}, nil
	}
	return settings, err
}

func (r *MongoSettings) SetOpen(ctx context.Context, isOpen bool, now time.Time) (models.ShopSettings, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return models.ShopSettings{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"isOpen": isOpen}
	if isOpen && !current.IsOpen {
		set["shiftStartAt"] = now.UTC()
	}

	var updated models.ShopSettings
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": shopSettingsID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&updated)
	return updated, err
}
