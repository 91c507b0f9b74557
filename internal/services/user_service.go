package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/eco_report/internal/models"
	"github.com/eco_report/internal/repositories"
	"github.com/eco_report/pkg/utils"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBioTooLong          = errors.New("bio must be at most 200 characters")
	ErrInvalidProfileInput = errors.New("invalid profile input")
)

// UpdateProfileInput carries the editable profile fields. Nil pointers mean
// "leave unchanged".
type UpdateProfileInput struct {
	Username             *string
	AvatarURL            *string
	Bio                  *string
	Location             *string
	Email                *string
	ProfileVisible       *bool
	NotifyVerified       *bool
	NotifyActionCards    *bool
	NotifyMonthlySummary *bool
}

// UserService manages profiles and notification preferences.
type UserService interface {
	GetProfile(ctx context.Context, requesterID, requesterRole, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

// NewUserService wires the user service.
func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetProfile returns a user profile, honoring the visibility flag: a hidden
// profile is indistinguishable from a missing one except to its owner and
// admins.
func (s *userService) GetProfile(ctx context.Context, requesterID, requesterRole, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.ProfileIsVisible() && requesterID != id && requesterRole != string(models.UserRoleAdmin) {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies profile and notification-preference changes for the
// given user. The 200-character bio limit is enforced before persistence.
func (s *userService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if input.Bio != nil {
		if len([]rune(*input.Bio)) > models.MaxBioLength {
			return nil, ErrBioTooLong
		}
		user.Bio = *input.Bio
	}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		user.Username = &username
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.Email != nil {
		if !utils.ValidateEmailFormat(*input.Email) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProfileInput, utils.ErrInvalidEmailFormat)
		}
		user.Email = input.Email
	}
	if input.ProfileVisible != nil {
		user.ProfileVisible = input.ProfileVisible
	}
	if input.NotifyVerified != nil {
		user.NotifyVerified = input.NotifyVerified
	}
	if input.NotifyActionCards != nil {
		user.NotifyActionCards = input.NotifyActionCards
	}
	if input.NotifyMonthlySummary != nil {
		user.NotifyMonthlySummary = *input.NotifyMonthlySummary
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}
