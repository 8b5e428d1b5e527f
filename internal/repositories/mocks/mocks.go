package mocks

import (
	"context"

	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)

	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)

	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *UserRepository) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)

	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

type CartRepository struct {
	mock.Mock
}

func (m *CartRepository) GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, owner)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartRepository) GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, owner)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartRepository) ClearCart(ctx context.Context, owner models.CartOwner) (bool, error) {
	args := m.Called(ctx, owner)
	return args.Bool(0), args.Error(1)
}

func (m *CartRepository) MergeCarts(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, bool, error) {
	args := m.Called(ctx, userID, sessionID)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Bool(1), args.Error(2)
	}

	return nil, args.Bool(1), args.Error(2)
}

func (m *CartRepository) AddItem(ctx context.Context, cartID uuid.UUID, productID string, quantity int, priceSnapshot *string) (*models.CartItem, error) {
	args := m.Called(ctx, cartID, productID, quantity, priceSnapshot)

	if item, ok := args.Get(0).(*models.CartItem); ok {
		return item, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartRepository) UpdateItemQuantity(ctx context.Context, owner models.CartOwner, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	args := m.Called(ctx, owner, itemID, quantity)

	if item, ok := args.Get(0).(*models.CartItem); ok {
		return item, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartRepository) RemoveItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, owner, itemID)
	return args.Bool(0), args.Error(1)
}

type RateLimiter struct {
	mock.Mock
}

func (m *RateLimiter) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}
