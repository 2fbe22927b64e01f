package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shipway/shipway/internal/repository"
	"github.com/shipway/shipway/internal/validate"
)

type OrganizationService struct {
	orgs OrganizationRepository
}

func NewOrganizationService(orgs OrganizationRepository) *OrganizationService {
	return &OrganizationService{orgs: orgs}
}

// SignUp registers a new organization. The password is stored as a bcrypt
// hash; the caller is responsible for issuing the session token.
func (s *OrganizationService) SignUp(ctx context.Context, name, email, phone, password string) (*repository.Organization, error) {
	if name == "" || email == "" || phone == "" || password == "" {
		return nil, ErrMissingFields
	}
	if !validate.Email(email) {
		return nil, ErrInvalidEmail
	}

	_, err := s.orgs.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrObjectNotFound):
		return nil, fmt.Errorf("failed to look up organization: %w", err)
	}

	if !validate.StrongPassword(password) {
		return nil, ErrWeakPassword
	}
	if !validate.MobilePhone(phone) {
		return nil, ErrInvalidPhone
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	org := &repository.Organization{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

func (s *OrganizationService) Login(ctx context.Context, email, password string) (*repository.Organization, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	org, err := s.orgs.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to look up organization: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(org.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return org, nil
}
