package mocks

import (
	"context"

	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserService struct {
	mock.Mock
}

func (m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)

	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)

	if resp, ok := args.Get(0).(*models.LoginResponse); ok {
		return resp, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *UserService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	args := m.Called(ctx, refreshToken)

	if resp, ok := args.Get(0).(*models.LoginResponse); ok {
		return resp, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)

	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

type CartService struct {
	mock.Mock
}

func (m *CartService) ResolveOwner(claims *models.Claims, cookieSessionID string) (models.CartOwner, string) {
	args := m.Called(claims, cookieSessionID)
	return args.Get(0).(models.CartOwner), args.String(1)
}

func (m *CartService) GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, owner)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartService) ClearCart(ctx context.Context, owner models.CartOwner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *CartService) MergeCarts(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, bool, error) {
	args := m.Called(ctx, userID, sessionID)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Bool(1), args.Error(2)
	}

	return nil, args.Bool(1), args.Error(2)
}

func (m *CartService) AddItem(ctx context.Context, owner models.CartOwner, req *models.AddItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, owner, req)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartService) UpdateItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	args := m.Called(ctx, owner, itemID, quantity)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID) error {
	args := m.Called(ctx, owner, itemID)
	return args.Error(0)
}
