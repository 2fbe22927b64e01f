//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=service_mocks
package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shipway/shipway/internal/repository"
)

var (
	ErrMissingFields        = errors.New("please fill all required fields")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrInvalidPhone         = errors.New("invalid mobile format")
	ErrWeakPassword         = errors.New("please choose a stronger password")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotEditable     = errors.New("order cannot be updated in its current status")
	ErrOrderDelivered       = errors.New("order has already been delivered")
	ErrNoUpdatableFields    = errors.New("no valid fields provided for update")
	ErrNoOrders             = errors.New("no orders yet")
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *repository.Organization) error
	GetByEmail(ctx context.Context, email string) (*repository.Organization, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*repository.Organization, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *repository.Order) error
	CreateMany(ctx context.Context, orders []*repository.Order) error
	GetByID(ctx context.Context, id, orgID primitive.ObjectID) (*repository.Order, error)
	ListByOrganization(ctx context.Context, orgID primitive.ObjectID, status string) ([]*repository.Order, error)
	Update(ctx context.Context, id, orgID primitive.ObjectID, fields map[string]interface{}) error
	Delete(ctx context.Context, id, orgID primitive.ObjectID) error
}

// TxRunner scopes a function to one database transaction: commit on nil,
// abort otherwise. Implemented by db.Database over mongo sessions.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
