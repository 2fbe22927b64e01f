package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shipway/shipway/internal/ingest"
	"github.com/shipway/shipway/internal/metrics"
	"github.com/shipway/shipway/internal/repository"
	"github.com/shipway/shipway/internal/service"
	"github.com/shipway/shipway/internal/validate"
)

// organizationID resolves the authenticated organization from the request
// context. The gate middleware has already run, so a failure here means the
// token carried a malformed id.
func (s *Server) organizationID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := identityFrom(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Access token is missing")
		return primitive.NilObjectID, false
	}
	orgID, err := primitive.ObjectIDFromHex(claims.OrganizationID)
	if err != nil {
		respondMessage(w, http.StatusForbidden, "Unauthorized: organization not found")
		return primitive.NilObjectID, false
	}
	return orgID, true
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.organizationID(w, r)
	if !ok {
		return
	}

	var in service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := s.orderService.Create(r.Context(), orgID, in); err != nil {
		s.respondOrderError(w, "create_order", err)
		return
	}

	metrics.OrdersCreatedTotal.Inc()
	respondMessage(w, http.StatusCreated, "Created order successfully")
}

func (s *Server) handleUploadOrders(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.organizationID(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("ordersFile")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if err := s.uploads.CheckUpload(header.Size, header.Header.Get("Content-Type")); err != nil {
		metrics.ImportsRejectedTotal.Inc()
		switch {
		case errors.Is(err, ingest.ErrUnsupportedType):
			respondMessage(w, http.StatusBadRequest, "Only Excel files are allowed!")
		case errors.Is(err, ingest.ErrFileTooLarge):
			respondMessage(w, http.StatusBadRequest, "File exceeds the 2MB limit")
		default:
			respondMessage(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	count, err := s.orderService.ImportOrders(r.Context(), orgID, file)
	if err != nil {
		metrics.ImportsRejectedTotal.Inc()
		s.respondOrderError(w, "upload_orders", err)
		return
	}

	metrics.OrdersImportedTotal.Add(float64(count))
	s.logger.Info("orders imported",
		zap.String("organization_id", orgID.Hex()),
		zap.Int("count", count))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Orders processed successfully",
		"imported": count,
	})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, "")
}

func (s *Server) handleListPendingOrders(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, repository.StatusPendingPickup)
}

func (s *Server) handleListDeliveredOrders(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, repository.StatusDelivered)
}

func (s *Server) handleListOutForDeliveryOrders(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, repository.StatusOutForDelivery)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request, status string) {
	orgID, ok := s.organizationID(w, r)
	if !ok {
		return
	}

	orders, err := s.orderService.List(r.Context(), orgID, status)
	if err != nil {
		s.respondOrderError(w, "list_orders", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.organizationID(w, r)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["orderId"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var in service.UpdateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.orderService.Update(r.Context(), orgID, orderID, in); err != nil {
		s.respondOrderError(w, "update_order", err)
		return
	}

	respondMessage(w, http.StatusOK, "Updated order.")
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.organizationID(w, r)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["orderId"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	if err := s.orderService.Delete(r.Context(), orgID, orderID); err != nil {
		s.respondOrderError(w, "delete_order", err)
		return
	}

	respondMessage(w, http.StatusOK, "Deleted order")
}

// respondOrderError maps service failures onto the error taxonomy: client
// input and state conflicts are 400s with the specific reason, ownership
// failures 403/404, everything unexpected a logged 500 with a generic body.
func (s *Server) respondOrderError(w http.ResponseWriter, operation string, err error) {
	var fieldErr *validate.FieldError
	switch {
	case errors.As(err, &fieldErr):
		respondMessage(w, http.StatusBadRequest, fieldErr.Error())
	case errors.Is(err, service.ErrMissingFields):
		respondMessage(w, http.StatusBadRequest, "Please fill all required fields")
	case errors.Is(err, service.ErrOrganizationNotFound):
		respondMessage(w, http.StatusForbidden, "Unauthorized: organization not found")
	case errors.Is(err, service.ErrOrderNotFound):
		respondMessage(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrOrderNotEditable):
		respondMessage(w, http.StatusBadRequest, "Order cannot be updated in its current status.")
	case errors.Is(err, service.ErrOrderDelivered):
		respondMessage(w, http.StatusBadRequest, "Order has already been delivered")
	case errors.Is(err, service.ErrNoUpdatableFields):
		respondMessage(w, http.StatusBadRequest, "No valid fields provided for update.")
	case errors.Is(err, service.ErrNoOrders):
		respondMessage(w, http.StatusBadRequest, "No orders yet.")
	case errors.Is(err, ingest.ErrEmptyFile):
		respondMessage(w, http.StatusBadRequest, "The uploaded file is empty.")
	default:
		s.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues(operation).Inc()
		respondMessage(w, http.StatusInternalServerError, "Server error")
	}
}
