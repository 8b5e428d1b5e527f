package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cornucopia-shop/cornucopia-backend/internal/config"
	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	repository "github.com/cornucopia-shop/cornucopia-backend/internal/repositories"
	"github.com/cornucopia-shop/cornucopia-backend/internal/repositories/mocks"
	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	service "github.com/cornucopia-shop/cornucopia-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func securityConfig(t *testing.T) *config.Security {
	t.Helper()

	return &config.Security{
		JWTKey:          "user-service-test-key",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	}
}

func newUserService(t *testing.T, repo *mocks.UserRepository, limiter *mocks.RateLimiter) service.UserService {
	t.Helper()

	cfg := securityConfig(t)

	tokens, err := security.NewTokenService([]byte(cfg.JWTKey))
	require.NoError(t, err)

	return service.NewUserService(repo, limiter, tokens, cfg)
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		svc := newUserService(t, mockRepo, new(mocks.RateLimiter))

		mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		req := &models.RegisterRequest{
			Username: "alice_01",
			Email:    "alice@example.com",
			Password: "s3cure-pass",
		}

		// Act
		user, err := svc.Register(context.Background(), req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "alice_01", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "s3cure-pass", user.Password, "password must be stored hashed")
		assert.True(t, security.VerifyPassword("s3cure-pass", user.Password))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Duplicate User", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		svc := newUserService(t, mockRepo, new(mocks.RateLimiter))

		mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
			Return(repository.ErrDuplicateUser)

		req := &models.RegisterRequest{
			Username: "alice_01",
			Email:    "alice@example.com",
			Password: "s3cure-pass",
		}

		// Act
		user, err := svc.Register(context.Background(), req)

		// Assert
		require.Error(t, err)
		assert.Nil(t, user)

		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeDuplicateEntry, appErr.Code)
		assert.Equal(t, 400, appErr.StatusCode)
	})

	t.Run("Failure - Invalid Username Characters", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		svc := newUserService(t, mockRepo, new(mocks.RateLimiter))

		req := &models.RegisterRequest{
			Username: "alice<script>",
			Email:    "alice@example.com",
			Password: "s3cure-pass",
		}

		// Act
		_, err := svc.Register(context.Background(), req)

		// Assert
		require.Error(t, err)
		mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Repository Error", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		svc := newUserService(t, mockRepo, new(mocks.RateLimiter))

		mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
			Return(errors.New("connection reset"))

		req := &models.RegisterRequest{
			Username: "alice_01",
			Email:    "alice@example.com",
			Password: "s3cure-pass",
		}

		// Act
		_, err := svc.Register(context.Background(), req)

		// Assert
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)
	})
}

func TestLogin(t *testing.T) {
	password := "s3cure-pass"

	hashed, err := security.HashPassword(password)
	require.NoError(t, err)

	storedUser := &models.User{
		ID:       uuid.New(),
		Username: "alice_01",
		Email:    "alice@example.com",
		Password: hashed,
		IsActive: true,
	}

	t.Run("Success - Issues Token Pair", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		mockLimiter := new(mocks.RateLimiter)
		svc := newUserService(t, mockRepo, mockLimiter)

		mockLimiter.On("CheckLoginRateLimit", mock.Anything, "alice_01").Return(true, 4, 0, nil)
		mockRepo.On("GetUserByUsername", mock.Anything, "alice_01").Return(storedUser, nil)

		// Act
		resp, err := svc.Login(context.Background(), &models.LoginRequest{Username: "alice_01", Password: password})

		// Assert
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, int((15 * time.Minute).Seconds()), resp.ExpiresIn)
	})

	t.Run("Failure - Wrong Password", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		mockLimiter := new(mocks.RateLimiter)
		svc := newUserService(t, mockRepo, mockLimiter)

		mockLimiter.On("CheckLoginRateLimit", mock.Anything, "alice_01").Return(true, 3, 0, nil)
		mockRepo.On("GetUserByUsername", mock.Anything, "alice_01").Return(storedUser, nil)

		// Act
		resp, err := svc.Login(context.Background(), &models.LoginRequest{Username: "alice_01", Password: "wrong"})

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid credentials", resp.Message)
		assert.Equal(t, 3, resp.RemainingTries)
		assert.Empty(t, resp.AccessToken)
	})

	t.Run("Failure - Unknown User Looks Like Wrong Password", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		mockLimiter := new(mocks.RateLimiter)
		svc := newUserService(t, mockRepo, mockLimiter)

		mockLimiter.On("CheckLoginRateLimit", mock.Anything, "nobody").Return(true, 4, 0, nil)
		mockRepo.On("GetUserByUsername", mock.Anything, "nobody").Return(nil, errors.New("sql: no rows in result set"))

		// Act
		resp, err := svc.Login(context.Background(), &models.LoginRequest{Username: "nobody", Password: password})

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid credentials", resp.Message)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		mockLimiter := new(mocks.RateLimiter)
		svc := newUserService(t, mockRepo, mockLimiter)

		mockLimiter.On("CheckLoginRateLimit", mock.Anything, "alice_01").Return(false, 0, 42, nil)

		// Act
		resp, err := svc.Login(context.Background(), &models.LoginRequest{Username: "alice_01", Password: password})

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 42, resp.RetryAfter)
		mockRepo.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Rate Limiter Unavailable", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		mockLimiter := new(mocks.RateLimiter)
		svc := newUserService(t, mockRepo, mockLimiter)

		mockLimiter.On("CheckLoginRateLimit", mock.Anything, "alice_01").
			Return(false, 0, 0, errors.New("redis: connection refused"))

		// Act
		_, err := svc.Login(context.Background(), &models.LoginRequest{Username: "alice_01", Password: password})

		// Assert
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
	})
}

func TestRefresh(t *testing.T) {
	cfg := securityConfig(t)

	tokens, err := security.NewTokenService([]byte(cfg.JWTKey))
	require.NoError(t, err)

	svc := service.NewUserService(new(mocks.UserRepository), new(mocks.RateLimiter), tokens, cfg)
	userID := uuid.New()

	t.Run("Success - Rotates Token Pair", func(t *testing.T) {
		// Arrange
		refreshToken, err := tokens.Issue(userID, "alice_01", models.TokenTypeRefresh, time.Hour)
		require.NoError(t, err)

		// Act
		resp, err := svc.Refresh(context.Background(), refreshToken)

		// Assert
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.NotEqual(t, refreshToken, resp.RefreshToken, "refresh must rotate the token")
	})

	t.Run("Failure - Access Token Rejected", func(t *testing.T) {
		// Arrange: a valid token of the wrong type
		accessToken, err := tokens.Issue(userID, "alice_01", models.TokenTypeAccess, time.Hour)
		require.NoError(t, err)

		// Act
		_, err = svc.Refresh(context.Background(), accessToken)

		// Assert
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, 401, appErr.StatusCode)
		assert.Equal(t, "Invalid refresh token", appErr.Message)
	})

	t.Run("Failure - Expired Refresh Token", func(t *testing.T) {
		// Arrange
		expired, err := tokens.Issue(userID, "alice_01", models.TokenTypeRefresh, -time.Minute)
		require.NoError(t, err)

		// Act
		_, err = svc.Refresh(context.Background(), expired)

		// Assert
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Refresh token expired", appErr.Message)
	})

	t.Run("Failure - Garbage Token", func(t *testing.T) {
		_, err := svc.Refresh(context.Background(), "not-a-token")

		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
	})
}

func TestGetUserByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		svc := newUserService(t, mockRepo, new(mocks.RateLimiter))

		id := uuid.New()
		mockRepo.On("GetUserById", mock.Anything, id).Return(&models.User{ID: id, Username: "alice_01"}, nil)

		// Act
		user, err := svc.GetUserByID(context.Background(), id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.UserRepository)
		svc := newUserService(t, mockRepo, new(mocks.RateLimiter))

		id := uuid.New()
		mockRepo.On("GetUserById", mock.Anything, id).Return(nil, errors.New("sql: no rows in result set"))

		// Act
		_, err := svc.GetUserByID(context.Background(), id)

		// Assert
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
	})
}
