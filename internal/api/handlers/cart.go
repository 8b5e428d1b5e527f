package handlers

import (
	"net/http"

	"log/slog"

	"github.com/cornucopia-shop/cornucopia-backend/internal/api/middleware"
	"github.com/cornucopia-shop/cornucopia-backend/internal/config"
	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	service "github.com/cornucopia-shop/cornucopia-backend/internal/services"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
	cfg         *config.Security
}

func NewCartHandler(cartService service.CartService, cfg *config.Security) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New(), cfg: cfg}
}

// resolveOwner maps the request to a cart owner key, setting the session
// cookie whenever a fresh anonymous session id was minted.
func (h *CartHandler) resolveOwner(w http.ResponseWriter, r *http.Request) models.CartOwner {

	claims := middleware.ClaimsFromContext(r.Context())

	owner, newSessionID := h.cartService.ResolveOwner(claims, cookieValue(r, CartSessionCookie))

	if newSessionID != "" {
		setCartSessionCookie(w, newSessionID, h.cfg.SessionCookieTTL)
	}

	return owner
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner := h.resolveOwner(w, r)

		cart, err := h.cartService.GetOrCreateCart(r.Context(), owner)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.CartResponse{Cart: cart, TotalItems: cart.TotalItems()})
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner := h.resolveOwner(w, r)

		if err := h.cartService.ClearCart(r.Context(), owner); err != nil {
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, "Cart cleared")
	}
}

// MergeCart reconciles the anonymous cart from the session cookie into the
// authenticated user's cart. Requires login.
func (h *CartHandler) MergeCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		sessionID := cookieValue(r, CartSessionCookie)
		if sessionID == "" {
			response.Message(w, http.StatusOK, "No anonymous cart to merge")
			return
		}

		cart, merged, err := h.cartService.MergeCarts(r.Context(), claims.UserID, sessionID)
		if err != nil {
			logger.Error("Cart merge failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if !merged {
			response.Message(w, http.StatusOK, "No anonymous cart to merge")
			return
		}

		logger.Info("Carts merged", slog.String("cartId", cart.ID.String()))
		response.WriteJson(w, http.StatusOK, models.CartResponse{Cart: cart, TotalItems: cart.TotalItems()})
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner := h.resolveOwner(w, r)

		var req models.AddItemRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), owner, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.CartResponse{Cart: cart, TotalItems: cart.TotalItems()})
	}
}

func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner := h.resolveOwner(w, r)

		itemID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, apperrors.AddValidationError("id", "must be a valid cart item id"))
			return
		}

		var req models.UpdateItemRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateItem(r.Context(), owner, itemID, req.Quantity)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.CartResponse{Cart: cart, TotalItems: cart.TotalItems()})
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner := h.resolveOwner(w, r)

		itemID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, apperrors.AddValidationError("id", "must be a valid cart item id"))
			return
		}

		if err := h.cartService.RemoveItem(r.Context(), owner, itemID); err != nil {
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, "Item removed from cart")
	}
}
