package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shipway/shipway/internal/db"
	"github.com/shipway/shipway/internal/repository"
)

type OrganizationRepo struct {
	coll *mongo.Collection
}

func NewOrganizationRepo(database *db.Database) *OrganizationRepo {
	return &OrganizationRepo{coll: database.Collection(db.OrganizationsCollection)}
}

func (r *OrganizationRepo) Create(ctx context.Context, org *repository.Organization) error {
	res, err := r.coll.InsertOne(ctx, org)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		org.ID = id
	}
	return nil
}

func (r *OrganizationRepo) GetByEmail(ctx context.Context, email string) (*repository.Organization, error) {
	var org repository.Organization
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*repository.Organization, error) {
	var org repository.Organization
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &org, nil
}
