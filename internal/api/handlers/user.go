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
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
	cfg         *config.Security
}

func NewUserHandler(userService service.UserService, cfg *config.Security) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New(), cfg: cfg}
}

func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RegisterRequest

		// Validate Input
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			logger.Warn("User registration failed", slog.String("username", req.Username), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("User registered", slog.String("userId", user.ID.String()))
		response.WriteJson(w, http.StatusCreated, user)
	}
}

func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest

		// Validate Input
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			logger.Warn("Login failed", slog.String("username", req.Username), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if !resp.Success {

			status := http.StatusUnauthorized
			if resp.RetryAfter > 0 {
				status = http.StatusTooManyRequests
			}

			response.WriteJson(w, status, resp)
			return
		}

		setRefreshCookie(w, resp.RefreshToken, h.cfg.RefreshTokenTTL)

		logger.Info("User logged in", slog.String("username", req.Username))
		response.WriteJson(w, http.StatusOK, resp)
	}
}

// Refresh rotates the refresh cookie: a valid token yields a fresh
// access/refresh pair and replaces the cookie. Anything else is a 401.
func (h *UserHandler) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		refreshToken := cookieValue(r, RefreshTokenCookie)
		if refreshToken == "" {
			response.Error(w, apperrors.UnauthorizedError("Refresh token missing"))
			return
		}

		resp, err := h.userService.Refresh(r.Context(), refreshToken)
		if err != nil {
			logger.Warn("Token refresh rejected", slog.String("error", err.Error()))
			clearRefreshCookie(w)
			response.Error(w, err)
			return
		}

		setRefreshCookie(w, resp.RefreshToken, h.cfg.RefreshTokenTTL)

		logger.Info("Tokens rotated", slog.String("username", resp.Username))
		response.WriteJson(w, http.StatusOK, resp)
	}
}

// Logout only clears the client cookie; tokens stay valid until natural
// expiry since there is no server-side revocation list.
func (h *UserHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		clearRefreshCookie(w)

		middleware.LoggerFromContext(r.Context()).Info("User logged out")
		response.Message(w, http.StatusOK, "Logged out")
	}
}
