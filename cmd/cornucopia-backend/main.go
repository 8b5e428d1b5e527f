package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cornucopia-shop/cornucopia-backend/internal/api/handlers"
	"github.com/cornucopia-shop/cornucopia-backend/internal/api/middleware"
	"github.com/cornucopia-shop/cornucopia-backend/internal/config"
	"github.com/cornucopia-shop/cornucopia-backend/internal/health"
	"github.com/cornucopia-shop/cornucopia-backend/internal/metrics"
	repository "github.com/cornucopia-shop/cornucopia-backend/internal/repositories"
	redisrepo "github.com/cornucopia-shop/cornucopia-backend/internal/repositories/redis"
	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	service "github.com/cornucopia-shop/cornucopia-backend/internal/services"
	"github.com/cornucopia-shop/cornucopia-backend/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup (no-op without an OTLP endpoint)
	shutdownTracing, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		slog.Error("Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	// Redis setup
	redisRepo, err := redisrepo.NewRedisRepo(cfg)
	if err != nil {
		slog.Error("Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("Database connection closed")
		}
	}()

	// A missing signing secret is fatal at startup, never per request.
	tokenService, err := security.NewTokenService([]byte(cfg.Security.JWTKey))
	if err != nil {
		slog.Error("Error initializing token service", "error", err.Error())
		os.Exit(1)
	}

	csrfGuard := security.NewCSRFGuard([]byte(cfg.Security.CSRFKey), cfg.Security.CSRFTokenTTL)
	originValidator := security.NewOriginValidator(cfg.Security.TrustedOrigins)

	userService := service.NewUserService(repos.User, redisRepo, tokenService, &cfg.Security)
	userHandler := handlers.NewUserHandler(userService, &cfg.Security)
	cartService := service.NewCartService(repos.Cart, &cfg.Cart)
	cartHandler := handlers.NewCartHandler(cartService, &cfg.Security)
	securityHandler := handlers.NewSecurityHandler(csrfGuard)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	protectMiddleware := middleware.NewProtectMiddleware(originValidator, csrfGuard)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router. Origin validation and CSRF double-submit guard every
	// state-changing route except token refresh, which authenticates by
	// HttpOnly cookie possession alone.
	protect := protectMiddleware.Protect
	optionalAuth := authMiddleware.AuthenticateOptional

	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /user/register", protect(userHandler.Register()))
	routerMux.HandleFunc("POST /user/login", protect(userHandler.Login()))
	routerMux.HandleFunc("POST /user/refresh", userHandler.Refresh())
	routerMux.HandleFunc("POST /user/logout", userHandler.Logout())
	routerMux.HandleFunc("GET /security/csrf-token", securityHandler.CSRFToken())
	routerMux.HandleFunc("GET /cart", optionalAuth(cartHandler.GetCart()))
	routerMux.HandleFunc("DELETE /cart", protect(optionalAuth(cartHandler.ClearCart())))
	routerMux.HandleFunc("POST /cart/merge", protect(authMiddleware.Authenticate(cartHandler.MergeCart())))
	routerMux.HandleFunc("POST /cart/items", protect(optionalAuth(cartHandler.AddItem())))
	routerMux.HandleFunc("PUT /cart/items/{id}", protect(optionalAuth(cartHandler.UpdateItem())))
	routerMux.HandleFunc("DELETE /cart/items/{id}", protect(optionalAuth(cartHandler.RemoveItem())))
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "http.server")
	handler = metrics.Middleware(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("Tracing shutdown encountered an issue", slog.String("error", err.Error()))
	}
}
