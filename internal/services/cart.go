package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cornucopia-shop/cornucopia-backend/internal/config"
	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	repository "github.com/cornucopia-shop/cornucopia-backend/internal/repositories"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils"
	"github.com/google/uuid"
)

type CartService interface {
	ResolveOwner(claims *models.Claims, cookieSessionID string) (models.CartOwner, string)
	GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	ClearCart(ctx context.Context, owner models.CartOwner) error
	MergeCarts(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, bool, error)
	AddItem(ctx context.Context, owner models.CartOwner, req *models.AddItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID) error
}

type cartService struct {
	repo repository.CartRepository
	cfg  *config.CartConfig
}

func NewCartService(repo repository.CartRepository, cfg *config.CartConfig) CartService {
	return &cartService{repo: repo, cfg: cfg}
}

// ResolveOwner maps a request's identity onto a durable cart owner key. An
// authenticated user is keyed by user id; the anonymous cookie is ignored
// for identification (the merge endpoint picks it up separately). Anonymous
// requests are keyed by the session cookie, minting a fresh session id when
// there is none. The second return value is non-empty exactly when a new
// session id was generated and must be set as a cookie by the caller.
func (s *cartService) ResolveOwner(claims *models.Claims, cookieSessionID string) (models.CartOwner, string) {

	if claims != nil {
		return models.UserOwner(claims.UserID), ""
	}

	if cookieSessionID != "" {
		return models.SessionOwner(cookieSessionID), ""
	}

	sessionID := uuid.NewString()

	return models.SessionOwner(sessionID), sessionID
}

func (s *cartService) GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {

	if !owner.Valid() {
		return nil, apperrors.InternalError("Invalid cart owner").WithError(repository.ErrInvalidOwner)
	}

	cart, err := s.repo.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, owner models.CartOwner) error {

	found, err := s.repo.ClearCart(ctx, owner)
	if err != nil {
		return apperrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	if !found {
		return apperrors.NotFoundError("Cart not found")
	}

	return nil
}

func (s *cartService) MergeCarts(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, bool, error) {

	cart, merged, err := s.repo.MergeCarts(ctx, userID, sessionID)
	if err != nil {
		return nil, false, apperrors.DatabaseError("Failed to merge carts").WithError(err)
	}

	return cart, merged, nil
}

func (s *cartService) AddItem(ctx context.Context, owner models.CartOwner, req *models.AddItemRequest) (*models.Cart, error) {

	productID, err := utils.SanitizeProductID(req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.checkQuantity(req.Quantity); err != nil {
		return nil, err
	}

	var priceSnapshot *string

	if req.PriceSnapshot != "" {

		price, err := utils.SanitizePrice(req.PriceSnapshot)
		if err != nil {
			return nil, err
		}

		priceSnapshot = &price
	}

	cart, err := s.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.AddItem(ctx, cart.ID, productID, req.Quantity, priceSnapshot); err != nil {
		return nil, apperrors.DatabaseError("Failed to add cart item").WithError(err)
	}

	return s.reload(ctx, owner)
}

// UpdateItem sets a line's quantity. Zero or below deletes the line;
// deleting a line that is already gone is a success, but a positive-quantity
// update on a missing line is not found.
func (s *cartService) UpdateItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID, quantity int) (*models.Cart, error) {

	if quantity > 0 {
		if err := s.checkQuantity(quantity); err != nil {
			return nil, err
		}
	}

	_, err := s.repo.UpdateItemQuantity(ctx, owner, itemID, quantity)
	if err != nil {

		if errors.Is(err, sql.ErrNoRows) && quantity > 0 {
			return nil, apperrors.NotFoundError("Cart item not found")
		}

		if !errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.DatabaseError("Failed to update cart item").WithError(err)
		}
	}

	return s.reload(ctx, owner)
}

func (s *cartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID uuid.UUID) error {

	found, err := s.repo.RemoveItem(ctx, owner, itemID)
	if err != nil {
		return apperrors.DatabaseError("Failed to remove cart item").WithError(err)
	}

	if !found {
		return apperrors.NotFoundError("Cart item not found")
	}

	return nil
}

func (s *cartService) reload(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {

	cart, err := s.repo.GetCart(ctx, owner)
	if err != nil {

		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundError("Cart not found")
		}

		return nil, apperrors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) checkQuantity(quantity int) error {

	if quantity < 1 || quantity > s.cfg.MaxLineQuantity {
		return apperrors.AddValidationError("quantity", fmt.Sprintf("must be between 1 and %d", s.cfg.MaxLineQuantity))
	}

	return nil
}
