package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"zonekids/internal/common"
	"zonekids/internal/models"
	"zonekids/internal/repositories"
)

// UserServiceInterface manages user accounts
type UserServiceInterface interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error)
	GetContactProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	SaveContactProfile(ctx context.Context, userID uuid.UUID, profile *models.UserProfile) (*models.UserProfile, error)
	SetUserStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	BootstrapAdmin(ctx context.Context, email, password, firstName, lastName string) error
}

type userService struct {
	users    repositories.UserRepository
	profiles repositories.UserProfileRepository
}

func NewUserService(users repositories.UserRepository, profiles repositories.UserProfileRepository) UserServiceInterface {
	return &userService{users: users, profiles: profiles}
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("user", id)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(firstName) == "" {
		return nil, &models.ValidationError{Field: "first_name", Message: "first name is required"}
	}

	user.FirstName = strings.TrimSpace(firstName)
	user.LastName = strings.TrimSpace(lastName)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// GetContactProfile returns the contact details stored for the user.
func (s *userService) GetContactProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, models.NewNotFoundError("profile", userID)
	}
	return profile, nil
}

// SaveContactProfile creates or replaces the user's contact details.
// The RUT, when present, must not belong to another user's profile.
func (s *userService) SaveContactProfile(ctx context.Context, userID uuid.UUID, profile *models.UserProfile) (*models.UserProfile, error) {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	if rut := strings.TrimSpace(common.SafeString(profile.RUT)); rut != "" {
		profile.RUT = &rut
		existing, err := s.profiles.GetByRUT(ctx, rut)
		if err != nil {
			return nil, fmt.Errorf("failed to check rut: %w", err)
		}
		if existing != nil && existing.UserID != userID {
			return nil, &models.ConflictError{Resource: "profile", Key: rut}
		}
	} else {
		profile.RUT = nil
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.UserID = userID

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

func (s *userService) SetUserStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != models.UserStatusActive && status != models.UserStatusInactive {
		return &models.ValidationError{Field: "status", Message: "status must be active or inactive"}
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.profiles.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user profile: %w", err)
	}
	return s.users.Delete(ctx, user.ID)
}

// BootstrapAdmin creates the initial admin account if none exists with the
// given email. Safe to run on every startup.
func (s *userService) BootstrapAdmin(ctx context.Context, email, password, firstName, lastName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required for bootstrap")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Bootstrapped admin account %s", email)
	return nil
}
