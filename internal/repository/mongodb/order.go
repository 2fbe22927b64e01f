package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shipway/shipway/internal/db"
	"github.com/shipway/shipway/internal/repository"
)

// OrderRepo persists orders. Every read and mutation is filtered by the
// owning organization id; ownership is enforced at query time, not by a
// database constraint.
type OrderRepo struct {
	coll *mongo.Collection
}

func NewOrderRepo(database *db.Database) *OrderRepo {
	return &OrderRepo{coll: database.Collection(db.OrdersCollection)}
}

func (r *OrderRepo) Create(ctx context.Context, order *repository.Order) error {
	res, err := r.coll.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

// CreateMany inserts the batch as an ordered InsertMany. Pass a
// session-bound context to make it part of a transaction.
func (r *OrderRepo) CreateMany(ctx context.Context, orders []*repository.Order) error {
	docs := make([]interface{}, len(orders))
	for i, o := range orders {
		docs[i] = o
	}
	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, id, orgID primitive.ObjectID) (*repository.Order, error) {
	var order repository.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListByOrganization returns the organization's orders, newest first,
// optionally filtered by status.
func (r *OrderRepo) ListByOrganization(ctx context.Context, orgID primitive.ObjectID, status string) ([]*repository.Order, error) {
	filter := bson.M{"organization_id": orgID}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*repository.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Update applies a partial $set to an order owned by orgID and bumps
// updated_at. The caller decides which fields are present.
func (r *OrderRepo) Update(ctx context.Context, id, orgID primitive.ObjectID, fields map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "organization_id": orgID},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id, orgID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "organization_id": orgID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}
