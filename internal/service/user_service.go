package service

import (
	"context"
	"fmt"

	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/repository"
	"github.com/apsx/clinic-api/internal/utils"
)

// UserService handles user profile and listing operations.
type UserService struct {
	userRepo     repository.UserRepository
	loginLogRepo repository.LoginLogRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, loginLogRepo repository.LoginLogRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		loginLogRepo: loginLogRepo,
	}
}

// GetByID retrieves a user's public projection. Callers may only see users
// who share a shop with them; the handler passes the caller's shop.
func (s *UserService) GetByID(ctx context.Context, shopID, id int64) (*models.SanitizedUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	memberships, err := s.userRepo.GetMemberships(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}

	// Visibility follows shop membership, not just existence.
	for _, m := range memberships {
		if m.ShopID == shopID {
			return user.Sanitize(), nil
		}
	}

	return nil, utils.NewNotFoundError("User", id)
}

// GetProfile retrieves the caller's own projection and shop memberships.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.SanitizedUser, []*models.Membership, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	memberships, err := s.userRepo.GetMemberships(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get memberships: %w", err)
	}

	return user.Sanitize(), memberships, nil
}

// ListByShop retrieves the members of a shop, paginated.
func (s *UserService) ListByShop(ctx context.Context, shopID int64, p utils.PaginationParams) ([]*models.SanitizedUser, int64, error) {
	return s.userRepo.ListByShop(ctx, shopID, p)
}

// Update applies the provided profile fields to the caller's account and
// returns the fresh projection.
func (s *UserService) Update(ctx context.Context, userID int64, req *models.UpdateUserRequest) (*models.SanitizedUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Tel != nil {
		user.Tel = *req.Tel
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitize(), nil
}

// ListLogins retrieves the caller's recent authentication events from the
// logging replica.
func (s *UserService) ListLogins(ctx context.Context, userID int64, limit int) ([]*models.LoginLog, error) {
	return s.loginLogRepo.ListByUser(ctx, userID, limit)
}
