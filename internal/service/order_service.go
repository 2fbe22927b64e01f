package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shipway/shipway/internal/ingest"
	"github.com/shipway/shipway/internal/repository"
	"github.com/shipway/shipway/internal/sanitize"
	"github.com/shipway/shipway/internal/validate"
)

type OrderService struct {
	orders OrderRepository
	orgs   OrganizationRepository
	tx     TxRunner
}

func NewOrderService(orders OrderRepository, orgs OrganizationRepository, tx TxRunner) *OrderService {
	return &OrderService{orders: orders, orgs: orgs, tx: tx}
}

type CreateOrderInput struct {
	RecipientName      string  `json:"recipientName"`
	RecipientEmail     string  `json:"recipientEmail"`
	RecipientPhone     string  `json:"recipientPhone"`
	RecipientAddress   string  `json:"recipientAddress"`
	ProductDescription string  `json:"productDescription"`
	PaymentMethod      string  `json:"paymentMethod"`
	Quantity           int     `json:"quantity"`
	TotalAmount        float64 `json:"totalAmount"`
}

type UpdateOrderInput struct {
	Quantity           *int     `json:"quantity"`
	RecipientName      *string  `json:"recipientName"`
	RecipientEmail     *string  `json:"recipientEmail"`
	RecipientAddress   *string  `json:"recipientAddress"`
	RecipientPhone     *string  `json:"recipientPhone"`
	TotalAmount        *float64 `json:"totalAmount"`
	ProductDescription *string  `json:"productDescription"`
}

// Create validates, sanitizes and persists a single order for the calling
// organization. Identifiers and the initial Pending Pickup status are
// assigned here.
func (s *OrderService) Create(ctx context.Context, orgID primitive.ObjectID, in CreateOrderInput) (*repository.Order, error) {
	org, err := s.resolveOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if in.RecipientName == "" || in.RecipientPhone == "" || in.RecipientEmail == "" ||
		in.RecipientAddress == "" || in.ProductDescription == "" || in.PaymentMethod == "" ||
		in.Quantity == 0 || in.TotalAmount == 0 {
		return nil, ErrMissingFields
	}

	if err := validate.OrderFields(in.RecipientEmail, in.RecipientPhone, in.Quantity, in.TotalAmount, in.PaymentMethod, 0); err != nil {
		return nil, err
	}

	order := buildOrder(org, in)
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// ImportOrders is the bulk path: parse the spreadsheet, validate every row in
// file order, then insert the whole batch inside one transaction. A failure
// on any row rejects the entire file; partial batches never persist. Per-row
// failures are explicit errors carrying the 1-based row index, so no
// transaction is ever opened for a bad file.
func (s *OrderService) ImportOrders(ctx context.Context, orgID primitive.ObjectID, file io.Reader) (int, error) {
	org, err := s.resolveOrganization(ctx, orgID)
	if err != nil {
		return 0, err
	}

	rows, err := ingest.Parse(file)
	if err != nil {
		return 0, err
	}

	orders := make([]*repository.Order, 0, len(rows))
	for i, row := range rows {
		in, err := orderFromRow(row, i+1)
		if err != nil {
			return 0, err
		}
		orders = append(orders, buildOrder(org, in))
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.orders.CreateMany(txCtx, orders)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert order batch: %w", err)
	}
	return len(orders), nil
}

// List returns the organization's orders, optionally filtered by status.
// An empty result is reported as ErrNoOrders rather than an empty list; the
// dashboard client distinguishes the two.
func (s *OrderService) List(ctx context.Context, orgID primitive.ObjectID, status string) ([]*repository.Order, error) {
	if _, err := s.resolveOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	orders, err := s.orders.ListByOrganization(ctx, orgID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}

// Update applies a partial edit to an order that is still Pending Pickup.
// Every supplied field is re-validated; an update carrying nothing usable is
// rejected. Read and write happen in one transaction.
func (s *OrderService) Update(ctx context.Context, orgID, orderID primitive.ObjectID, in UpdateOrderInput) error {
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		order, err := s.orders.GetByID(txCtx, orderID, orgID)
		if err != nil {
			if errors.Is(err, repository.ErrObjectNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to get order: %w", err)
		}

		if order.Status != repository.StatusPendingPickup {
			return ErrOrderNotEditable
		}

		fields, err := updateFields(in)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return ErrNoUpdatableFields
		}

		if err := s.orders.Update(txCtx, orderID, orgID, fields); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
}

// Delete removes an order unless it has already been delivered. Read and
// delete happen in one transaction.
func (s *OrderService) Delete(ctx context.Context, orgID, orderID primitive.ObjectID) error {
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		order, err := s.orders.GetByID(txCtx, orderID, orgID)
		if err != nil {
			if errors.Is(err, repository.ErrObjectNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to get order: %w", err)
		}

		if order.Status == repository.StatusDelivered {
			return ErrOrderDelivered
		}

		if err := s.orders.Delete(txCtx, orderID, orgID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

func (s *OrderService) resolveOrganization(ctx context.Context, orgID primitive.ObjectID) (*repository.Organization, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to resolve organization: %w", err)
	}
	return org, nil
}

// orderFromRow turns one spreadsheet row into a validated CreateOrderInput.
// row is the 1-based index used in error messages.
func orderFromRow(r ingest.Row, row int) (CreateOrderInput, error) {
	if r["recipientName"] == "" || r["recipientPhone"] == "" || r["recipientAddress"] == "" ||
		r["productDescription"] == "" || r["quantity"] == "" || r["totalAmount"] == "" ||
		r["paymentMethod"] == "" {
		return CreateOrderInput{}, &validate.FieldError{Row: row, Reason: "Missing required fields"}
	}

	quantity, err := strconv.Atoi(r["quantity"])
	if err != nil {
		return CreateOrderInput{}, &validate.FieldError{Field: "quantity", Row: row, Reason: "Invalid quantity. Quantity must be a positive integer"}
	}
	amount, err := strconv.ParseFloat(r["totalAmount"], 64)
	if err != nil {
		return CreateOrderInput{}, &validate.FieldError{Field: "totalAmount", Row: row, Reason: "Invalid total amount. Total amount must be a positive number"}
	}

	in := CreateOrderInput{
		RecipientName:      r["recipientName"],
		RecipientEmail:     r["recipientEmail"],
		RecipientPhone:     r["recipientPhone"],
		RecipientAddress:   r["recipientAddress"],
		ProductDescription: r["productDescription"],
		PaymentMethod:      r["paymentMethod"],
		Quantity:           quantity,
		TotalAmount:        amount,
	}

	if err := validate.OrderFields(in.RecipientEmail, in.RecipientPhone, in.Quantity, in.TotalAmount, in.PaymentMethod, row); err != nil {
		return CreateOrderInput{}, err
	}
	return in, nil
}

func buildOrder(org *repository.Organization, in CreateOrderInput) *repository.Order {
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = repository.PaymentCOD
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	now := time.Now().UTC()
	return &repository.Order{
		OrderID:            repository.NewOrderID(),
		TrackingNumber:     repository.NewTrackingNumber(),
		Status:             repository.StatusPendingPickup,
		PaymentMethod:      paymentMethod,
		Quantity:           quantity,
		TotalAmount:        in.TotalAmount,
		ProductDescription: sanitize.Text(in.ProductDescription),
		RecipientName:      sanitize.Text(in.RecipientName),
		RecipientEmail:     in.RecipientEmail,
		RecipientPhone:     in.RecipientPhone,
		RecipientAddress:   sanitize.Text(in.RecipientAddress),
		OrganizationName:   org.Name,
		OrganizationID:     org.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// updateFields validates whatever the caller supplied and maps it to storage
// field names. Empty strings are treated as absent, matching the API the
// dashboard already speaks.
func updateFields(in UpdateOrderInput) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, &validate.FieldError{Field: "quantity", Reason: "Invalid quantity. Quantity must be a positive integer"}
		}
		fields["quantity"] = *in.Quantity
	}
	if in.RecipientName != nil && *in.RecipientName != "" {
		fields["recipient_name"] = sanitize.Text(*in.RecipientName)
	}
	if in.RecipientEmail != nil && *in.RecipientEmail != "" {
		if !validate.Email(*in.RecipientEmail) {
			return nil, &validate.FieldError{Field: "recipientEmail", Reason: "Incorrect email format"}
		}
		fields["recipient_email"] = *in.RecipientEmail
	}
	if in.RecipientAddress != nil && *in.RecipientAddress != "" {
		fields["recipient_address"] = sanitize.Text(*in.RecipientAddress)
	}
	if in.RecipientPhone != nil && *in.RecipientPhone != "" {
		if !validate.MobilePhone(*in.RecipientPhone) {
			return nil, &validate.FieldError{Field: "recipientPhone", Reason: "Invalid phone number format"}
		}
		fields["recipient_phone"] = *in.RecipientPhone
	}
	if in.TotalAmount != nil {
		if *in.TotalAmount <= 0 {
			return nil, &validate.FieldError{Field: "totalAmount", Reason: "Invalid total amount. Total amount must be a positive number"}
		}
		fields["total_amount"] = *in.TotalAmount
	}
	if in.ProductDescription != nil && *in.ProductDescription != "" {
		fields["product_description"] = sanitize.Text(*in.ProductDescription)
	}

	return fields, nil
}
