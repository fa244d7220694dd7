package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bisnisbaik/backend/internal/config"
	"github.com/bisnisbaik/backend/internal/handler"
	appMiddleware "github.com/bisnisbaik/backend/internal/middleware"
	"github.com/bisnisbaik/backend/internal/repository"
	"github.com/bisnisbaik/backend/internal/service"
	"github.com/bisnisbaik/backend/internal/ws"
	"github.com/bisnisbaik/backend/pkg/payment"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Database error: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("❌ Migration error: %v", err)
	}
	log.Println("✅ Database connected & migrated")

	// Optional redis bridge for the push channel
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Redis URL error: %v", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("❌ Redis error: %v", err)
		}
		defer rdb.Close()
		log.Println("✅ Redis connected (status fan-out bridged)")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewAuthCodeRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.PublicBaseURL, cfg.AdminEmail, cfg.AdminPassword, userRepo, codeRepo)

	// Seed admin user on first startup
	if err := authSvc.SeedAdmin(ctx); err != nil {
		log.Fatalf("❌ Admin seed error: %v", err)
	}

	hub := ws.NewHub(rdb)
	hub.Start(ctx)

	gateway := payment.NewMockGateway()
	invoiceSvc := service.NewInvoiceService(txnRepo, projectRepo, gateway, hub, cfg.PublicBaseURL)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler()
	paymentHandler := handler.NewPaymentHandler(invoiceSvc, cfg.WebhookSecret)
	billingHandler := handler.NewBillingHandler(invoiceSvc)
	healthHandler := handler.NewHealthHandler(db, rdb)
	streamHandler := ws.NewTransactionStreamHandler(hub, authSvc, txnRepo)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Gateway-Signature", "X-Gateway-Timestamp"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	// Health check and public routes (no auth)
	r.Get("/health", healthHandler.Check)
	r.Get("/api/catalog/industries", catalogHandler.ListIndustries)
	r.Get("/api/catalog/industries/{id}/templates", catalogHandler.ListTemplates)
	r.Get("/api/catalog/options", catalogHandler.ListOptions)
	r.Post("/api/payment/webhook", paymentHandler.Webhook) // HMAC-authenticated
	r.Get("/mock-oauth/{provider}", authHandler.MockProvider)

	// Auth routes (strict rate limit, credential guessing)
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.StrictRateLimiter())
		r.Post("/api/auth/register", authHandler.Register)
		r.Post("/api/auth/login", authHandler.Login)
		r.Post("/api/auth/exchange", authHandler.Exchange)
		r.Post("/api/auth/reset-password", authHandler.RequestPasswordReset)
		r.Post("/api/auth/update-password", authHandler.ConfirmPasswordReset)
		r.Get("/api/auth/oauth/{provider}", authHandler.OAuthBegin)
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(authSvc))

		// Auth
		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/me", authHandler.Me)
		r.Put("/api/auth/profile", authHandler.UpdateProfile)

		// Checkout / payment
		r.Post("/api/payment/invoice", paymentHandler.CreateInvoice)
		r.Post("/api/payment/fulfill", paymentHandler.Fulfill)

		// Billing & dashboard
		r.Get("/api/transactions", billingHandler.ListTransactions)
		r.Get("/api/transactions/{id}", billingHandler.GetTransaction)
		r.Get("/api/projects", billingHandler.ListProjects)
		r.Get("/api/projects/website", billingHandler.Website)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.AdminOnly)
			r.Post("/api/payment/{id}/refund", paymentHandler.Refund)
		})
	})

	// WebSocket push channel (auth via query param)
	r.HandleFunc("/ws/transactions/{id}", streamHandler.Handle)

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout must be 0 for WebSocket connections (they are long-lived)
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("🚀 BisnisBAIK Backend listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("❌ Server error: %v", err)
	}
}
