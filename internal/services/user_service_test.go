package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"zonekids/internal/models"
)

func TestBootstrapAdminCreatesAccount(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, new(MockUserProfileRepository))

	users.On("GetByEmail", mock.Anything, "admin@zonekids.cl").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		if u.Email != "admin@zonekids.cl" || u.Role != models.RoleAdmin || u.Status != models.UserStatusActive {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("changeme123")) == nil
	})).Return(nil)

	err := svc.BootstrapAdmin(context.Background(), "Admin@ZoneKids.cl", "changeme123", "Admin", "ZoneKids")
	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, new(MockUserProfileRepository))

	users.On("GetByEmail", mock.Anything, "admin@zonekids.cl").Return(&models.User{
		ID:    uuid.New(),
		Email: "admin@zonekids.cl",
		Role:  models.RoleAdmin,
	}, nil)

	err := svc.BootstrapAdmin(context.Background(), "admin@zonekids.cl", "changeme123", "Admin", "ZoneKids")
	assert.NoError(t, err)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBootstrapAdminRequiresCredentials(t *testing.T) {
	svc := NewUserService(new(MockUserRepository), new(MockUserProfileRepository))

	assert.Error(t, svc.BootstrapAdmin(context.Background(), "", "changeme123", "Admin", "ZoneKids"))
	assert.Error(t, svc.BootstrapAdmin(context.Background(), "admin@zonekids.cl", "", "Admin", "ZoneKids"))
}

func TestSetUserStatusValidatesValue(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, new(MockUserProfileRepository))

	err := svc.SetUserStatus(context.Background(), uuid.New(), "suspended")
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "status", validation.Field)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProfileTrimsAndPersists(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, new(MockUserProfileRepository))

	id := uuid.New()
	users.On("GetByID", mock.Anything, id).Return(&models.User{
		ID:        id,
		Email:     "cliente@example.com",
		FirstName: "Old",
		LastName:  "Name",
		Role:      models.RoleUser,
		Status:    models.UserStatusActive,
	}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.FirstName == "Maria" && u.LastName == "Soto"
	})).Return(nil)

	updated, err := svc.UpdateProfile(context.Background(), id, "  Maria ", " Soto ")
	assert.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Maria", updated.FirstName)
	users.AssertExpectations(t)
}

type MockUserProfileRepository struct {
	mock.Mock
}

func (m *MockUserProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) GetByRUT(ctx context.Context, rut string) (*models.UserProfile, error) {
	args := m.Called(ctx, rut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserProfileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func expectExistingUser(users *MockUserRepository, id uuid.UUID) {
	users.On("GetByID", mock.Anything, id).Return(&models.User{
		ID:     id,
		Email:  "cliente@example.com",
		Role:   models.RoleUser,
		Status: models.UserStatusActive,
	}, nil)
}

func strPtr(s string) *string { return &s }

func TestSaveContactProfileUpserts(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockUserProfileRepository)
	svc := NewUserService(users, profiles)

	userID := uuid.New()
	expectExistingUser(users, userID)
	profiles.On("GetByRUT", mock.Anything, "12.345.678-5").Return(nil, nil)
	profiles.On("Upsert", mock.Anything, mock.MatchedBy(func(p *models.UserProfile) bool {
		return p.UserID == userID && p.ID != uuid.Nil && *p.RUT == "12.345.678-5" && *p.City == "Santiago"
	})).Return(nil)

	saved, err := svc.SaveContactProfile(context.Background(), userID, &models.UserProfile{
		Phone:   strPtr("+56 9 1234 5678"),
		Address: strPtr("Av. Providencia 1234"),
		City:    strPtr("Santiago"),
		Country: strPtr("Chile"),
		RUT:     strPtr("  12.345.678-5 "),
	})
	assert.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, userID, saved.UserID)

	profiles.AssertExpectations(t)
}

func TestSaveContactProfileRejectsForeignRUT(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockUserProfileRepository)
	svc := NewUserService(users, profiles)

	userID := uuid.New()
	expectExistingUser(users, userID)
	profiles.On("GetByRUT", mock.Anything, "12.345.678-5").Return(&models.UserProfile{
		ID:     uuid.New(),
		UserID: uuid.New(),
		RUT:    strPtr("12.345.678-5"),
	}, nil)

	_, err := svc.SaveContactProfile(context.Background(), userID, &models.UserProfile{
		RUT: strPtr("12.345.678-5"),
	})
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSaveContactProfileAllowsOwnRUT(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockUserProfileRepository)
	svc := NewUserService(users, profiles)

	userID := uuid.New()
	expectExistingUser(users, userID)
	profiles.On("GetByRUT", mock.Anything, "12.345.678-5").Return(&models.UserProfile{
		ID:     uuid.New(),
		UserID: userID,
		RUT:    strPtr("12.345.678-5"),
	}, nil)
	profiles.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.SaveContactProfile(context.Background(), userID, &models.UserProfile{
		RUT: strPtr("12.345.678-5"),
	})
	assert.NoError(t, err)
	profiles.AssertExpectations(t)
}

func TestGetContactProfileNotFound(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockUserProfileRepository)
	svc := NewUserService(users, profiles)

	userID := uuid.New()
	expectExistingUser(users, userID)
	profiles.On("GetByUserID", mock.Anything, userID).Return(nil, nil)

	_, err := svc.GetContactProfile(context.Background(), userID)
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteUserRemovesProfileFirst(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockUserProfileRepository)
	svc := NewUserService(users, profiles)

	userID := uuid.New()
	expectExistingUser(users, userID)
	profiles.On("DeleteByUserID", mock.Anything, userID).Return(nil)
	users.On("Delete", mock.Anything, userID).Return(nil)

	assert.NoError(t, svc.DeleteUser(context.Background(), userID))
	profiles.AssertExpectations(t)
	users.AssertExpectations(t)
}
