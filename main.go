package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-canteen/internal/auth"
	"ms-canteen/internal/cart"
	"ms-canteen/internal/catalog"
	"ms-canteen/internal/chat"
	"ms-canteen/internal/config"
	"ms-canteen/internal/kafka"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"
	"ms-canteen/internal/order"
	orderapi "ms-canteen/internal/order/api"
	orderdb "ms-canteen/internal/order/db"
	"ms-canteen/internal/payment"
	"ms-canteen/internal/qr"
	"ms-canteen/internal/whatsapp"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "✅ PostgreSQL connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

// newSessionStore picks the chat session backend. With REDIS_ADDR set,
// sessions are shared across instances through Redis; without it they
// live in-process.
func newSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (chat.Store, func()) {
	if cfg.Redis.Addr == "" {
		log.Info("DATABASE", "REDIS_ADDR not set, keeping chat sessions in memory")
		return chat.NewMemoryStore(), func() {}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
	return chat.NewRedisStore(redisClient, cfg.Chat.SessionTTL), func() { redisClient.Close() }
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Canteen Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	client := &http.Client{
		Timeout: time.Second * 10,
	}
	ctx := context.Background()

	log.Info("APP", "Verifying database connections")
	bunDB := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()

	kafkaProducer := kafka.NewProducer(cfg.Kafka, log)
	defer kafkaProducer.Close()
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		requiredTopics := []string{
			cfg.Kafka.Topics.OrderPlaced,
			cfg.Kafka.Topics.OrderCancelled,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	}

	// Collaborators.
	whatsappClient := whatsapp.NewClient(cfg.WhatsApp, client, log)
	qrGenerator := qr.NewGenerator(cfg.BaseURL)

	var gateway order.PaymentGateway
	var statusChecker payment.StatusChecker
	switch cfg.Payment.Provider {
	case "stripe":
		gateway = payment.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.BaseURL, log)
		log.Info("PAYMENT", "Using Stripe checkout sessions as payment gateway")
	default:
		cashfree := payment.NewCashfreeClient(cfg.Payment, cfg.BaseURL, client, log)
		gateway = cashfree
		statusChecker = cashfree
		log.Info("PAYMENT", "Using Cashfree payment links as payment gateway")
	}

	// Services.
	store := &orderdb.DB{Bun: bunDB}
	orderService := order.NewOrderService(store, gateway, whatsappClient, kafkaProducer, qrGenerator, log)
	orderService.SurchargePct = cfg.Payment.SurchargePct
	catalogService := catalog.NewService(&catalog.DB{Bun: bunDB}, log)
	cartService := cart.NewService(&cart.DB{Bun: bunDB}, log)

	// Conversation machine on top of catalog and order services.
	sessionStore, closeSessions := newSessionStore(ctx, cfg, log)
	defer closeSessions()
	machine := chat.NewMachine(chat.NewCatalogProvider(catalogService), chat.NewOrderProvider(orderService))
	chatHandler := chat.NewHandler(sessionStore, machine, whatsappClient, cfg.WhatsApp.SourceNumber, log)

	// Handlers.
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	orderHandler := orderapi.NewHandler(orderService, log)
	catalogHandler := catalog.NewHandler(catalogService, log)
	cartHandler := cart.NewHandler(cartService, log)
	paymentHandler := payment.NewHandler(store, statusChecker, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public routes: webhook and payment callbacks come from the
	// outside world unauthenticated. ---
	r.Post("/webhook", chatHandler.Webhook)
	r.Route("/api/payment", paymentHandler.Routes)

	// --- Protected routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(issuer))

		r.Route("/api", func(r chi.Router) {
			catalogHandler.Routes(r)

			r.Route("/cart", cartHandler.Routes)
			r.Route("/order", func(r chi.Router) {
				orderHandler.Routes(r)
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(models.RoleCanteen))
					orderHandler.AdminRoutes(r)
				})
			})
			r.Route("/wallet", func(r chi.Router) {
				orderHandler.WalletRoutes(r)
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(models.RoleCanteen))
					orderHandler.WalletAdminRoutes(r)
				})
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Canteen Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Canteen Service shutdown complete")
	}
}
