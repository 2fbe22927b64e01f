//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=server_mocks
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shipway/shipway/internal/auth"
	"github.com/shipway/shipway/internal/ingest"
	"github.com/shipway/shipway/internal/repository"
	"github.com/shipway/shipway/internal/service"
)

type OrganizationService interface {
	SignUp(ctx context.Context, name, email, phone, password string) (*repository.Organization, error)
	Login(ctx context.Context, email, password string) (*repository.Organization, error)
}

type OrderService interface {
	Create(ctx context.Context, orgID primitive.ObjectID, in service.CreateOrderInput) (*repository.Order, error)
	ImportOrders(ctx context.Context, orgID primitive.ObjectID, file io.Reader) (int, error)
	List(ctx context.Context, orgID primitive.ObjectID, status string) ([]*repository.Order, error)
	Update(ctx context.Context, orgID, orderID primitive.ObjectID, in service.UpdateOrderInput) error
	Delete(ctx context.Context, orgID, orderID primitive.ObjectID) error
}

type Config struct {
	Port         string
	CookieSecure bool
}

type Server struct {
	cfg          Config
	orgService   OrganizationService
	orderService OrderService
	tokens       *auth.Manager
	uploads      ingest.Config
	audit        *AuditManager
	logger       *zap.Logger
	server       *http.Server
}

func New(cfg Config, orgService OrganizationService, orderService OrderService, tokens *auth.Manager, audit *AuditManager, logger *zap.Logger) *Server {
	return &Server{
		cfg:          cfg,
		orgService:   orgService,
		orderService: orderService,
		tokens:       tokens,
		uploads:      ingest.DefaultConfig(),
		audit:        audit,
		logger:       logger,
	}
}

// Run starts the audit pipeline and serves until the listener fails or
// Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	s.audit.Start(ctx)

	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("server starting", zap.String("port", s.cfg.Port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.audit.Shutdown(ctx)
	return nil
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware, s.auditMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	org := r.PathPrefix("/organization").Subrouter()
	org.HandleFunc("/sign-up", s.handleSignUp).Methods(http.MethodPost)
	org.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	org.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	order := r.PathPrefix("/order").Subrouter()
	order.Use(s.requireRole(auth.RoleOrganization))
	order.HandleFunc("/upload-orders", s.handleUploadOrders).Methods(http.MethodPost)
	order.HandleFunc("/create-order", s.handleCreateOrder).Methods(http.MethodPost)
	order.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	order.HandleFunc("/pending-orders", s.handleListPendingOrders).Methods(http.MethodGet)
	order.HandleFunc("/delivered-orders", s.handleListDeliveredOrders).Methods(http.MethodGet)
	order.HandleFunc("/ofd-orders", s.handleListOutForDeliveryOrders).Methods(http.MethodGet)
	order.HandleFunc("/order/{orderId}", s.handleUpdateOrder).Methods(http.MethodPatch)
	order.HandleFunc("/order/{orderId}", s.handleDeleteOrder).Methods(http.MethodDelete)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

const authCookieName = "authToken"

func (s *Server) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
