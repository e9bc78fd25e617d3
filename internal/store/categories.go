package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perrada/internal/models"
)

type MongoCategories struct {
	coll *mongo.Collection
}

func NewMongoCategories(db *mongo.Database) *MongoCategories {
	return &MongoCategories{coll: db.Collection(categoriesCollection)}
}

func (r *MongoCategories) List(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *MongoCategories) Get(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var category models.Category
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Category{}, ErrNotFound
	}
	return category, err
}

// Create relies on the name_unique index for duplicate detection.
func (r *MongoCategories) Create(ctx context.Context, category models.Category) (models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Category{}, ErrDuplicate
		}
		return models.Category{}, err
	}
	return category, nil
}

func (r *MongoCategories) Rename(ctx context.Context, id primitive.ObjectID, name string) (models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var updated models.Category
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Category{}, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.Category{}, ErrDuplicate
	}
	return updated, err
}

func (r *MongoCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
