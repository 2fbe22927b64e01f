package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"github.com/shipway/shipway/internal/repository"
	"github.com/shipway/shipway/internal/service"
	service_mocks "github.com/shipway/shipway/internal/service/mocks"
	"github.com/shipway/shipway/internal/validate"
)

type orderServiceMocks struct {
	orders *service_mocks.MockOrderRepository
	orgs   *service_mocks.MockOrganizationRepository
	tx     *service_mocks.MockTxRunner
}

func newOrderService(t *testing.T) (*service.OrderService, orderServiceMocks) {
	ctrl := gomock.NewController(t)
	m := orderServiceMocks{
		orders: service_mocks.NewMockOrderRepository(ctrl),
		orgs:   service_mocks.NewMockOrganizationRepository(ctrl),
		tx:     service_mocks.NewMockTxRunner(ctrl),
	}
	return service.NewOrderService(m.orders, m.orgs, m.tx), m
}

// passthroughTx runs the transactional closure against the caller's context,
// the way a committed session would.
func passthroughTx(tx *service_mocks.MockTxRunner) {
	tx.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func testOrganization() *repository.Organization {
	return &repository.Organization{
		ID:    primitive.NewObjectID(),
		Name:  "Acme Logistics",
		Email: "acme@example.com",
	}
}

func validCreateInput() service.CreateOrderInput {
	return service.CreateOrderInput{
		RecipientName:      "Ahmed Hassan",
		RecipientEmail:     "ahmed@example.com",
		RecipientPhone:     "01012345678",
		RecipientAddress:   "5 Tahrir Square, Cairo",
		ProductDescription: "Wireless headphones",
		PaymentMethod:      repository.PaymentCOD,
		Quantity:           2,
		TotalAmount:        350.5,
	}
}

func TestOrderCreate(t *testing.T) {
	t.Run("success assigns ids and status", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)
		m.orders.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, order *repository.Order) error {
				assert.NotEmpty(t, order.OrderID)
				assert.NotEmpty(t, order.TrackingNumber)
				assert.Equal(t, repository.StatusPendingPickup, order.Status)
				assert.Equal(t, org.ID, order.OrganizationID)
				assert.Equal(t, org.Name, order.OrganizationName)
				return nil
			})

		order, err := svc.Create(context.Background(), org.ID, validCreateInput())
		require.NoError(t, err)
		assert.Equal(t, 2, order.Quantity)
	})

	t.Run("sanitizes free text", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		in := validCreateInput()
		in.RecipientName = "  <b>Ahmed</b> Hassan "
		in.ProductDescription = "<script>alert(1)</script>Headphones"

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)
		m.orders.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, order *repository.Order) error {
				assert.Equal(t, "Ahmed Hassan", order.RecipientName)
				assert.Equal(t, "Headphones", order.ProductDescription)
				return nil
			})

		_, err := svc.Create(context.Background(), org.ID, in)
		require.NoError(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		in := validCreateInput()
		in.RecipientAddress = ""

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)

		_, err := svc.Create(context.Background(), org.ID, in)
		assert.ErrorIs(t, err, service.ErrMissingFields)
	})

	t.Run("invalid phone", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		in := validCreateInput()
		in.RecipientPhone = "12345"

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)

		_, err := svc.Create(context.Background(), org.ID, in)
		var fieldErr *validate.FieldError
		assert.ErrorAs(t, err, &fieldErr)
	})

	t.Run("organization not found", func(t *testing.T) {
		svc, m := newOrderService(t)
		orgID := primitive.NewObjectID()

		m.orgs.EXPECT().GetByID(gomock.Any(), orgID).Return(nil, repository.ErrObjectNotFound)

		_, err := svc.Create(context.Background(), orgID, validCreateInput())
		assert.ErrorIs(t, err, service.ErrOrganizationNotFound)
	})
}

var importHeader = []interface{}{
	"recipientName", "recipientEmail", "recipientPhone", "recipientAddress",
	"productDescription", "quantity", "totalAmount", "paymentMethod",
}

func buildImportFile(t *testing.T, rows ...[]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &importHeader))
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestOrderImport(t *testing.T) {
	t.Run("inserts every row in one batch", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		file := buildImportFile(t,
			[]interface{}{"Ahmed Hassan", "ahmed@example.com", "01012345678", "Cairo", "Headphones", 2, 350.5, "COD"},
			[]interface{}{"Mona Adel", "", "01112345678", "Giza", "Keyboard", 1, 120, "Card"},
			[]interface{}{"Omar Ali", "omar@example.com", "01212345678", "Alexandria", "Monitor", 3, 900, "COD"},
		)

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)
		passthroughTx(m.tx)
		m.orders.EXPECT().CreateMany(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, orders []*repository.Order) error {
				require.Len(t, orders, 3)
				seen := make(map[string]bool)
				for _, order := range orders {
					assert.Equal(t, repository.StatusPendingPickup, order.Status)
					assert.Equal(t, org.ID, order.OrganizationID)
					assert.False(t, seen[order.OrderID], "duplicate order id %s", order.OrderID)
					seen[order.OrderID] = true
				}
				assert.Equal(t, "Mona Adel", orders[1].RecipientName)
				assert.Equal(t, repository.PaymentCard, orders[1].PaymentMethod)
				return nil
			})

		count, err := svc.ImportOrders(context.Background(), org.ID, file)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("bad row rejects the whole file before any transaction", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		file := buildImportFile(t,
			[]interface{}{"Ahmed Hassan", "", "01012345678", "Cairo", "Headphones", 2, 350.5, "COD"},
			[]interface{}{"Mona Adel", "", "01112345678", "Giza", "Keyboard", "two", 120, "Card"},
			[]interface{}{"Omar Ali", "", "01212345678", "Alexandria", "Monitor", 3, 900, "COD"},
		)

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)
		// No WithTransaction, no CreateMany: validation must fail first.

		count, err := svc.ImportOrders(context.Background(), org.ID, file)
		assert.Zero(t, count)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")

		var fieldErr *validate.FieldError
		assert.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, 2, fieldErr.Row)
	})

	t.Run("missing required cells", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		file := buildImportFile(t,
			[]interface{}{"Ahmed Hassan", "", "", "Cairo", "Headphones", 2, 350.5, "COD"},
		)

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)

		_, err := svc.ImportOrders(context.Background(), org.ID, file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Missing required fields in row 1")
	})

	t.Run("invalid phone in later row", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		file := buildImportFile(t,
			[]interface{}{"Ahmed Hassan", "", "01012345678", "Cairo", "Headphones", 2, 350.5, "COD"},
			[]interface{}{"Mona Adel", "", "02123456789", "Giza", "Keyboard", 1, 120, "Card"},
		)

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)

		_, err := svc.ImportOrders(context.Background(), org.ID, file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid phone number format in row 2")
	})

	t.Run("empty spreadsheet", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		file := buildImportFile(t) // header only

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)

		_, err := svc.ImportOrders(context.Background(), org.ID, file)
		assert.Error(t, err)
	})
}

func TestOrderList(t *testing.T) {
	t.Run("returns orders", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		stored := []*repository.Order{
			{OrderID: "ORD-AAAAAAAAAAAA", Status: repository.StatusPendingPickup},
			{OrderID: "ORD-BBBBBBBBBBBB", Status: repository.StatusDelivered},
		}
		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)
		m.orders.EXPECT().ListByOrganization(gomock.Any(), org.ID, "").Return(stored, nil)

		orders, err := svc.List(context.Background(), org.ID, "")
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)
		m.orders.EXPECT().ListByOrganization(gomock.Any(), org.ID, repository.StatusPendingPickup).
			Return([]*repository.Order{{OrderID: "ORD-AAAAAAAAAAAA"}}, nil)

		orders, err := svc.List(context.Background(), org.ID, repository.StatusPendingPickup)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("empty list", func(t *testing.T) {
		svc, m := newOrderService(t)
		org := testOrganization()

		m.orgs.EXPECT().GetByID(gomock.Any(), org.ID).Return(org, nil)
		m.orders.EXPECT().ListByOrganization(gomock.Any(), org.ID, "").Return(nil, nil)

		_, err := svc.List(context.Background(), org.ID, "")
		assert.ErrorIs(t, err, service.ErrNoOrders)
	})
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestOrderUpdate(t *testing.T) {
	orgID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	t.Run("success maps fields", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(&repository.Order{Status: repository.StatusPendingPickup}, nil)
		m.orders.EXPECT().Update(gomock.Any(), orderID, orgID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ primitive.ObjectID, fields map[string]interface{}) error {
				assert.Equal(t, 5, fields["quantity"])
				assert.Equal(t, "Mona Adel", fields["recipient_name"])
				assert.Equal(t, 200.0, fields["total_amount"])
				return nil
			})

		err := svc.Update(context.Background(), orgID, orderID, service.UpdateOrderInput{
			Quantity:      intPtr(5),
			RecipientName: strPtr("Mona Adel"),
			TotalAmount:   floatPtr(200),
		})
		require.NoError(t, err)
	})

	t.Run("order not found", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(nil, repository.ErrObjectNotFound)

		err := svc.Update(context.Background(), orgID, orderID, service.UpdateOrderInput{Quantity: intPtr(5)})
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})

	t.Run("not editable once shipped", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(&repository.Order{Status: repository.StatusOutForDelivery}, nil)

		err := svc.Update(context.Background(), orgID, orderID, service.UpdateOrderInput{Quantity: intPtr(5)})
		assert.ErrorIs(t, err, service.ErrOrderNotEditable)
	})

	t.Run("nothing to update", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(&repository.Order{Status: repository.StatusPendingPickup}, nil)

		err := svc.Update(context.Background(), orgID, orderID, service.UpdateOrderInput{
			RecipientName: strPtr(""),
		})
		assert.ErrorIs(t, err, service.ErrNoUpdatableFields)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(&repository.Order{Status: repository.StatusPendingPickup}, nil)

		err := svc.Update(context.Background(), orgID, orderID, service.UpdateOrderInput{Quantity: intPtr(-1)})
		var fieldErr *validate.FieldError
		assert.ErrorAs(t, err, &fieldErr)
	})
}

func TestOrderDelete(t *testing.T) {
	orgID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	t.Run("success", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(&repository.Order{Status: repository.StatusPendingPickup}, nil)
		m.orders.EXPECT().Delete(gomock.Any(), orderID, orgID).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), orgID, orderID))
	})

	t.Run("delivered orders are kept", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(&repository.Order{Status: repository.StatusDelivered}, nil)

		err := svc.Delete(context.Background(), orgID, orderID)
		assert.ErrorIs(t, err, service.ErrOrderDelivered)
	})

	t.Run("order not found", func(t *testing.T) {
		svc, m := newOrderService(t)

		passthroughTx(m.tx)
		m.orders.EXPECT().GetByID(gomock.Any(), orderID, orgID).
			Return(nil, repository.ErrObjectNotFound)

		err := svc.Delete(context.Background(), orgID, orderID)
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})
}
