package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lendbook/lendbook/internal/auth"
	"github.com/lendbook/lendbook/internal/blob"
	"github.com/lendbook/lendbook/internal/client"
	"github.com/lendbook/lendbook/internal/config"
	"github.com/lendbook/lendbook/internal/loan"
	"github.com/lendbook/lendbook/internal/middleware"
	"github.com/lendbook/lendbook/internal/notification"
	"github.com/lendbook/lendbook/internal/repay"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Blobs  blob.Store
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
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
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers. The repay engine needs the loan side for the
	// contract-signed visibility check; in memory mode the engine is built
	// first and the loan repository wired in afterwards.
	var (
		clientRepo client.Repository
		loanRepo   loan.Repository
		userRepo   auth.Repository
		engine     repay.Engine
	)
	if d.DB != nil {
		clientRepo = client.NewPostgresRepository(d.DB)
		loanRepo = loan.NewPostgresRepository(d.DB)
		userRepo = auth.NewPostgresRepository(d.DB)
		engine = repay.NewPostgresEngine(d.DB, d.Cfg.LateFee)
	} else {
		memEngine := repay.NewMemoryEngine(d.Cfg.LateFee, nil)
		loanRepo = loan.NewMemoryRepository(memEngine)
		memEngine.SetVisibility(loanRepo)
		clientRepo = client.NewMemoryRepository()
		userRepo = auth.NewMemoryRepository()
		engine = memEngine
	}

	notifier := notification.NewLoggerNotifier(d.Logger)

	clientSvc := client.NewService(clientRepo)
	loanSvc := loan.NewService(loanRepo)
	repaySvc := repay.NewService(engine, notifier)
	authSvc := auth.NewService(d.Cfg, userRepo)

	if err := authSvc.EnsureAdmin(context.Background()); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	clientHandler := client.NewHandler(clientSvc, d.Blobs)
	loanHandler := loan.NewHandler(loanSvc, d.Blobs)
	repayHandler := repay.NewHandler(repaySvc)
	authHandler := auth.NewHandler(authSvc)

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
	jwtmw := middleware.JWTAuth(d.Cfg, userRepo)
	RegisterAuthRoutes(api, authHandler, rateLimiter, jwtmw)

	// Protected routes
	protected := api.Group("", jwtmw)
	RegisterClientRoutes(protected, clientHandler)
	RegisterLoanRoutes(protected, loanHandler)
	RegisterRepaymentRoutes(protected, repayHandler)

	return nil
}
