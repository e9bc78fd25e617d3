package store

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"perrada/internal/models"
)

type MongoOrders struct {
	coll *mongo.Collection
}

func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{coll: db.Collection(ordersCollection)}
}

// Create assigns the id and orderDate on the server side.
func (r *MongoOrders) Create(ctx context.Context, order models.Order) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order.ID = primitive.NewObjectID()
	order.OrderDate = time.Now().UTC()
	if order.Status == "" {
		order.Status = models.StatusPendingPayment
	}

	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (r *MongoOrders) List(ctx context.Context, since *time.Time) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if since != nil {
		filter["orderDate"] = bson.M{"$gte": *since}
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrders) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrNotFound
	}
	return order, err
}

func (r *MongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"status": status}
	if field := status.TimestampField(); field != "" {
		set[field] = at
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type orderChangeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument *models.Order `bson:"fullDocument"`
}

// Watch follows the orders change stream. It needs a replica set.
// opened is called once the stream is established.
func (r *MongoOrders) Watch(ctx context.Context, opened func(), fn func(OrderChange)) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.coll.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	if opened != nil {
		opened()
	}

	for stream.Next(ctx) {
		var event orderChangeEvent
		if err := stream.Decode(&event); err != nil {
			log.Println("[STORE] [ERROR] order change decode failed:", err)
			continue
		}

		switch event.OperationType {
		case "insert", "update", "replace":
			if event.FullDocument == nil {
				continue
			}
			fn(OrderChange{Type: ChangeUpsert, ID: event.DocumentKey.ID, Order: event.FullDocument})
		case "delete":
			fn(OrderChange{Type: ChangeDelete, ID: event.DocumentKey.ID})
		}
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
