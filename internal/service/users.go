package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
	"github.com/shopsphere/shopsphere-backend/internal/auth"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

// UserService handles signup, profile management and role elevation. The
// identity provider owns credentials; this service keeps the local record and
// the provider account consistent.
type UserService struct {
	users    repository.UserRepository
	provider auth.IdentityProvider
	logger   *slog.Logger
}

func NewUserService(users repository.UserRepository, provider auth.IdentityProvider) *UserService {
	return &UserService{
		users:    users,
		provider: provider,
		logger:   logging.New("user-service"),
	}
}

// Signup provisions a provider account and the local record. If the provider
// already knows the email (a half-finished earlier signup), its uid is reused
// rather than erroring; a provider account created here is rolled back when
// the local insert fails.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest, asAdmin bool) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validateName("firstName", req.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("lastName", req.LastName); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.NewConflict("User already exists")
	} else if err != repository.ErrNotFound {
		return nil, apperrors.NewInternal(err)
	}

	displayName := req.FirstName + " " + req.LastName

	uid, err := s.provider.LookupUID(ctx, req.Email)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	created := false
	if uid == "" {
		uid, err = s.provider.CreateAccount(ctx, req.Email, req.Password, displayName)
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}
		created = true
	}

	user := &models.User{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ProviderUID: uid,
		IsAdmin:     asAdmin,
		Cart:        models.Cart{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		if created {
			if delErr := s.provider.DeleteAccount(ctx, uid); delErr != nil {
				s.logger.Error("failed to roll back provider account",
					"email", req.Email, "uid", uid, "error", delErr)
			}
		}
		return nil, apperrors.NewInternal(err)
	}

	s.logger.Info("user signed up", "email", user.Email, "is_admin", asAdmin)
	return user, nil
}

// GetProfile returns the local record for an authenticated user.
func (s *UserService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFound("User")
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return user, nil
}

// UpdateProfile changes name fields locally and at the provider.
func (s *UserService) UpdateProfile(ctx context.Context, email string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, email)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.FirstName) != "" {
		user.FirstName = req.FirstName
	}
	if strings.TrimSpace(req.LastName) != "" {
		user.LastName = req.LastName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.NewInternal(err)
	}

	if err := s.provider.UpdateDisplayName(ctx, user.ProviderUID, user.FirstName+" "+user.LastName); err != nil {
		s.logger.Warn("failed to update provider display name",
			"email", email, "error", err)
	}

	return user, nil
}

// MakeAdmin elevates an existing user. Admin-only at the routing layer.
func (s *UserService) MakeAdmin(ctx context.Context, email string) (*models.User, error) {
	user, err := s.GetProfile(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	if user.IsAdmin {
		return user, nil
	}

	user.IsAdmin = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.NewInternal(err)
	}

	s.logger.Info("user elevated to admin", "email", user.Email)
	return user, nil
}
