package service

import (
	"context"
	"errors"

	"github.com/cornucopia-shop/cornucopia-backend/internal/config"
	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	repository "github.com/cornucopia-shop/cornucopia-backend/internal/repositories"
	"github.com/cornucopia-shop/cornucopia-backend/internal/repositories/redis"
	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils"
	"github.com/google/uuid"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userService struct {
	repo      repository.UserRepository
	redisRepo redis.RateLimiter
	tokens    *security.TokenService
	cfg       *config.Security
}

func NewUserService(repo repository.UserRepository, redisRepo redis.RateLimiter, tokens *security.TokenService, cfg *config.Security) UserService {
	return &userService{
		repo:      repo,
		redisRepo: redisRepo,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	username, err := utils.SanitizeUsername(req.Username)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Username: username,
		Email:    utils.SanitizeText(req.Email),
		Password: hashedPassword,
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {

		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperrors.DuplicateEntryError("Username or email already exists")
		}

		return nil, apperrors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	// check rate limit
	allowed, remaining, retryAfter, err := s.redisRepo.CheckLoginRateLimit(ctx, req.Username)
	if err != nil {
		return nil, apperrors.InternalError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	// Retrieve the user from the DB and compare the passwords. The compare
	// runs even when the user is missing so both paths cost the same.
	user, err := s.repo.GetUserByUsername(ctx, req.Username)

	hashedPassword := ""
	if err == nil {
		hashedPassword = user.Password
	}

	if err != nil || !security.VerifyPassword(req.Password, hashedPassword) {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid credentials",
			RemainingTries: remaining,
		}, nil
	}

	return s.issueTokenPair(user.ID, user.Username)
}

// Refresh rotates a valid refresh token into a brand-new access/refresh
// pair. Expired or invalid refresh tokens end the session; there is no
// silent renewal.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {

	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {

		if errors.Is(err, security.ErrTokenExpired) {
			return nil, apperrors.UnauthorizedError("Refresh token expired")
		}

		return nil, apperrors.UnauthorizedError("Invalid refresh token")
	}

	if claims.TokenType != models.TokenTypeRefresh {
		return nil, apperrors.UnauthorizedError("Invalid refresh token")
	}

	return s.issueTokenPair(claims.UserID, claims.Username)
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserById(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

func (s *userService) issueTokenPair(userID uuid.UUID, username string) (*models.LoginResponse, error) {

	accessToken, err := s.tokens.Issue(userID, username, models.TokenTypeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	refreshToken, err := s.tokens.Issue(userID, username, models.TokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, apperrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.LoginResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		Username:     username,
		ExpiresIn:    int(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}
