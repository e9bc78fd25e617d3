package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perrada/internal/models"
)

type MongoCatalog struct {
	db *mongo.Database
}

func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{db: db}
}

// ResetCatalog clears products first so no product points at a deleted
// category, then rewrites categories and products with one ordered bulk
// write each. The collections are not written atomically together.
func (r *MongoCatalog) ResetCatalog(ctx context.Context, categories []models.Category, products []models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 4*opTimeout)
	defer cancel()

	productsColl := r.db.Collection(productsCollection)
	if _, err := productsColl.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	opts := options.BulkWrite().SetOrdered(true)

	categoryWrites := []mongo.WriteModel{mongo.NewDeleteManyModel().SetFilter(bson.M{})}
	for _, c := range categories {
		categoryWrites = append(categoryWrites, mongo.NewInsertOneModel().SetDocument(c))
	}
	if _, err := r.db.Collection(categoriesCollection).BulkWrite(ctx, categoryWrites, opts); err != nil {
		return fmt.Errorf("reset categories: %w", err)
	}

	if len(products) == 0 {
		return nil
	}
	productWrites := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		productWrites = append(productWrites, mongo.NewInsertOneModel().SetDocument(p))
	}
	if _, err := productsColl.BulkWrite(ctx, productWrites, opts); err != nil {
		return fmt.Errorf("reset products: %w", err)
	}
	return nil
}
