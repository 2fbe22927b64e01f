package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrObjectNotFound = errors.New("not found")

// Order statuses. Transitions only move forward along
// PendingPickup -> OutForDelivery -> Delivered, or to Refunded.
const (
	StatusPendingPickup  = "Pending Pickup"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusRefunded       = "Refunded"
)

const (
	PaymentCOD  = "COD"
	PaymentCard = "Card"
)

// Organization is the tenant that owns orders and authenticates against the
// API. The password field holds a bcrypt hash and never leaves the server.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Order is a single shipment record owned by one organization. The owning
// organization id is kept out of JSON output; listings are already scoped.
type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID            string             `bson:"order_id" json:"orderId"`
	TrackingNumber     string             `bson:"tracking_number" json:"trackingNumber"`
	Status             string             `bson:"status" json:"status"`
	PaymentMethod      string             `bson:"payment_method" json:"paymentMethod"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	TotalAmount        float64            `bson:"total_amount" json:"totalAmount"`
	ProductDescription string             `bson:"product_description" json:"productDescription"`
	RecipientName      string             `bson:"recipient_name" json:"recipientName"`
	RecipientEmail     string             `bson:"recipient_email,omitempty" json:"recipientEmail,omitempty"`
	RecipientPhone     string             `bson:"recipient_phone" json:"recipientPhone"`
	RecipientAddress   string             `bson:"recipient_address" json:"recipientAddress"`
	OrganizationName   string             `bson:"organization_name" json:"organizationName"`
	OrganizationID     primitive.ObjectID `bson:"organization_id" json:"-"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NewOrderID and NewTrackingNumber assign the public identifiers stamped on an
// order at creation. They are independent of the database primary key and
// immutable afterwards.
func NewOrderID() string {
	return "ORD-" + shortID()
}

func NewTrackingNumber() string {
	return "TRK-" + shortID()
}

func shortID() string {
	id := uuid.New().String()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:12])
}
