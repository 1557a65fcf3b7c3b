package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/activation"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/auth"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/config"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/daraja"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/middleware"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/pending"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/realtime"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/transaction"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories, with in-memory fallbacks for dev.
	var userRepo user.Repository
	var txRepo transaction.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
		txRepo = transaction.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
		txRepo = transaction.NewMemoryRepository()
	}

	var pendingStore pending.Store
	if d.Cache != nil {
		pendingStore = pending.NewRedisStore(d.Cache, d.Cfg.PendingTTL)
	} else {
		pendingStore = pending.NewMemoryStore(d.Cfg.PendingTTL)
	}

	// Services and handlers
	userSvc := user.NewService(userRepo)
	authSvc := auth.NewService(d.Cfg)
	authHandler := auth.NewHandler(userSvc, authSvc)

	hub := realtime.NewHub(d.Logger)

	darajaClient := daraja.NewClient(daraja.Config{
		BaseURL:        d.Cfg.DarajaBaseURL,
		ConsumerKey:    d.Cfg.ConsumerKey,
		ConsumerSecret: d.Cfg.ConsumerSecret,
		Shortcode:      d.Cfg.Shortcode,
		Passkey:        d.Cfg.Passkey,
		CallbackURL:    d.Cfg.CallbackURL,
	})

	activationSvc := activation.NewService(darajaClient, pendingStore, userSvc, hub, d.Logger)
	activationHandler := activation.NewHandler(activationSvc)

	txHandler := transaction.NewHandler(txRepo)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, middleware.JWTAuth(d.Cfg, userRepo), rateLimiter)
	RegisterMpesaRoutes(api, activationHandler, middleware.OptionalJWT(d.Cfg, userRepo))
	RegisterEventRoutes(api, hub)

	// Protected routes: auth plus the activation-paid gate.
	protected := api.Group("", middleware.JWTAuth(d.Cfg, userRepo), middleware.RequirePaid())
	RegisterTransactionRoutes(protected, txHandler)

	return nil
}
