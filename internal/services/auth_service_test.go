package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindByUsername func(ctx context.Context, username string) (*models.User, error)
	mockFindByID       func(ctx context.Context, id uint) (*models.User, error)
	created            []*models.User
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.mockFindByUsername(ctx, username)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return nil
}

type mockRTRepo struct {
	repository.RefreshTokenRepository
	mockFindByToken func(ctx context.Context, token string) (*models.RefreshToken, error)
	mockDelete      func(ctx context.Context, token string) error
	created         []*models.RefreshToken
}

func (m *mockRTRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return m.mockFindByToken(ctx, token)
}

func (m *mockRTRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	m.created = append(m.created, token)
	return nil
}

func (m *mockRTRepo) Delete(ctx context.Context, token string) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, token)
	}
	return nil
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, nil, nil)

	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return &models.User{
			Username: username,
			Status:   models.StatusInactive,
		}, nil
	}

	result, err := service.Login(context.Background(), "cashier", "password")
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Equal(t, "account is inactive", err.Error())
}

func TestAuthService_Login_IssuesTokenWithUsername(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	mockRepo := &mockUserRepo{}
	rtRepo := &mockRTRepo{}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}
	service := NewAuthService(mockRepo, rtRepo, cfg)

	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return &models.User{ID: 7, Username: "cashier", Role: models.RoleStaff, Status: models.StatusActive, EncryptedPassword: hash}, nil
	}

	result, err := service.Login(context.Background(), " cashier ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Len(t, rtRepo.created, 1)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cashier", claims["username"])
	assert.Equal(t, models.RoleStaff, claims["role"])

	_, err = service.Login(context.Background(), "cashier", "wrong")
	assert.EqualError(t, err, "invalid credentials")
}

func TestAuthService_RefreshToken_InactiveUser(t *testing.T) {
	mockRepo := &mockUserRepo{}
	rtRepo := &mockRTRepo{}
	service := NewAuthService(mockRepo, rtRepo, nil)

	rtRepo.mockFindByToken = func(ctx context.Context, token string) (*models.RefreshToken, error) {
		return &models.RefreshToken{UserID: 1}, nil
	}
	mockRepo.mockFindByID = func(ctx context.Context, id uint) (*models.User, error) {
		return &models.User{
			ID:     id,
			Status: models.StatusInactive,
		}, nil
	}

	result, err := service.RefreshToken(context.Background(), "token")
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Equal(t, "account is inactive", err.Error())
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	mockRepo := &mockUserRepo{}
	cfg := &config.Config{AdminUsername: "admin", AdminPassword: "changeme"}
	service := NewAuthService(mockRepo, nil, cfg)

	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}
	require.NoError(t, service.EnsureAdmin(context.Background()))
	require.Len(t, mockRepo.created, 1)
	assert.Equal(t, models.RoleAdmin, mockRepo.created[0].Role)
	assert.True(t, VerifyPassword("changeme", mockRepo.created[0].EncryptedPassword))

	// Existing admin is left alone
	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return &models.User{Username: username}, nil
	}
	require.NoError(t, service.EnsureAdmin(context.Background()))
	assert.Len(t, mockRepo.created, 1)
}
