package service

import (
	"context"
	"testing"
	"time"

	"cookbook/internal/config"
	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func newTestAuthService() (*authService, *MockUserRepository, *MockRefreshTokenRepository) {
	users := new(MockUserRepository)
	tokens := new(MockRefreshTokenRepository)
	svc := NewAuthService(users, tokens, testAuthConfig(), nil).(*authService)
	return svc, users, tokens
}

var registerReq = dto.RegisterRequest{Username: "testuser", Password: "password123", Email: "test@example.com"}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	users.On("FindByUsername", ctx, "testuser").Return(nil, gorm.ErrRecordNotFound)
	users.On("FindByEmail", ctx, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Count", ctx).Return(int64(0), nil)
	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(ctx, registerReq)

	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, auth.VerifyPassword(user.Password, "password123"))
	users.AssertExpectations(t)
}

func TestRegister_LaterUsersAreRegular(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	users.On("FindByUsername", ctx, "testuser").Return(nil, gorm.ErrRecordNotFound)
	users.On("FindByEmail", ctx, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Count", ctx).Return(int64(3), nil)
	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(ctx, registerReq)

	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestRegister_UsernameExists(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	users.On("FindByUsername", ctx, "testuser").Return(&models.User{Username: "testuser"}, nil)

	user, err := svc.Register(ctx, registerReq)

	assert.ErrorIs(t, err, ErrNameInUse)
	assert.Nil(t, user)
	users.AssertExpectations(t)
}

func TestRegister_EmailExists(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	users.On("FindByUsername", ctx, "testuser").Return(nil, gorm.ErrRecordNotFound)
	users.On("FindByEmail", ctx, "test@example.com").Return(&models.User{Email: "test@example.com"}, nil)

	user, err := svc.Register(ctx, registerReq)

	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.Nil(t, user)
}

func TestLogin_Success(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{ID: "user-id", Username: "testuser", Password: hashed, Role: models.RoleAdmin}

	users.On("FindByUsername", ctx, "testuser").Return(user, nil)
	users.On("TouchLastLogin", ctx, "user-id", mock.AnythingOfType("time.Time")).Return(nil)
	tokens.On("Create", ctx, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	resp, err := svc.Login(ctx, "testuser", "password123")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin_InvalidPassword(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)
	users.On("FindByUsername", ctx, "testuser").Return(&models.User{ID: "user-id", Password: hashed}, nil)

	resp, err := svc.Login(ctx, "testuser", "wrongpassword")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	users.On("FindByUsername", ctx, "nonexistent").Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Login(ctx, "nonexistent", "password123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestRefreshAccessToken(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()

	tokens.On("FindByToken", ctx, "good").Return(&models.RefreshToken{
		ID: "rt-1", UserID: "user-id", Token: "good", ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	users.On("FindByID", ctx, "user-id").Return(&models.User{ID: "user-id", Username: "testuser", Role: models.RoleUser}, nil)

	resp, err := svc.RefreshAccessToken(ctx, "good")

	require.NoError(t, err)
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "testuser", claims.Username)
}

func TestRefreshAccessToken_Rejected(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	tokens.On("FindByToken", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)
	tokens.On("FindByToken", ctx, "expired").Return(&models.RefreshToken{
		ID: "rt-2", ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	tokens.On("FindByToken", ctx, "revoked").Return(&models.RefreshToken{
		ID: "rt-3", ExpiresAt: time.Now().Add(time.Hour), Revoked: true,
	}, nil)

	_, err := svc.RefreshAccessToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.RefreshAccessToken(ctx, "expired")
	assert.ErrorIs(t, err, ErrExpiredToken)
	_, err = svc.RefreshAccessToken(ctx, "revoked")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	tokens.On("FindByToken", ctx, "good").Return(&models.RefreshToken{ID: "rt-1"}, nil)
	tokens.On("FindByToken", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)
	tokens.On("Revoke", ctx, "rt-1").Return(nil)

	assert.NoError(t, svc.Revoke(ctx, "good"))
	assert.NoError(t, svc.Revoke(ctx, "missing"))
	tokens.AssertNumberOfCalls(t, "Revoke", 1)
}

func TestValidateToken_Expired(t *testing.T) {
	svc, _, _ := newTestAuthService()

	claims := Claims{
		UserID: "user-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc, _, _ := newTestAuthService()

	claims := Claims{
		UserID: "user-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
