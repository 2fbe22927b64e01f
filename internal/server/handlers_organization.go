package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shipway/shipway/internal/auth"
	"github.com/shipway/shipway/internal/metrics"
	"github.com/shipway/shipway/internal/service"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	org, err := s.orgService.SignUp(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondMessage(w, http.StatusBadRequest, "Please fill all required fields.")
		case errors.Is(err, service.ErrInvalidEmail):
			respondMessage(w, http.StatusBadRequest, "Invalid email format.")
		case errors.Is(err, service.ErrEmailTaken):
			respondMessage(w, http.StatusBadRequest, "Email is already registered.")
		case errors.Is(err, service.ErrWeakPassword):
			respondMessage(w, http.StatusBadRequest, "Please choose a stronger password.")
		case errors.Is(err, service.ErrInvalidPhone):
			respondMessage(w, http.StatusBadRequest, "Invalid mobile format")
		default:
			s.logger.Error("sign-up failed", zap.Error(err))
			metrics.OperationErrorsTotal.WithLabelValues("sign_up").Inc()
			respondMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	token, err := s.tokens.Issue(org.ID.Hex(), auth.RoleOrganization)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	s.setAuthCookie(w, token)

	s.logger.Info("organization signed up", zap.String("organization_id", org.ID.Hex()))
	respondMessage(w, http.StatusCreated, "Signed up successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	org, err := s.orgService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondMessage(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrOrganizationNotFound):
			respondMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondMessage(w, http.StatusForbidden, "Invalid email or password")
		default:
			s.logger.Error("login failed", zap.Error(err))
			metrics.OperationErrorsTotal.WithLabelValues("login").Inc()
			respondMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	token, err := s.tokens.Issue(org.ID.Hex(), auth.RoleOrganization)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	s.setAuthCookie(w, token)

	respondMessage(w, http.StatusOK, "Logged in successfully")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	respondMessage(w, http.StatusOK, "Logged out successfully")
}
