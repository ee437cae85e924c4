package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"xivttw/internal/config"
	"xivttw/internal/handlers"
	"xivttw/internal/middleware"
	"xivttw/internal/services"
	"xivttw/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
)

// App is the assembled storefront service.
type App struct {
	cfg     config.Config
	log     *slog.Logger
	http    *fiber.App
	monitor *services.SessionMonitor
	infra   *infra
}

// New connects the infrastructure and builds the HTTP router.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	const op = "app.New"

	in, err := setupInfra(ctx, log, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	deps, err := in.deps(ctx, log, cfg)
	if err != nil {
		_ = in.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	router, monitor := NewRouter(log, cfg, deps)
	return &App{
		cfg:     cfg,
		log:     log,
		http:    router,
		monitor: monitor,
		infra:   in,
	}, nil
}

// NewRouter builds the services and routes over deps.
func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) (*fiber.App, *services.SessionMonitor) {
	authService := services.NewAuthService(log, services.AuthConfig{
		JWTSecret:        cfg.JWTSecret,
		SessionTTL:       cfg.SessionTTL,
		WarningWindow:    cfg.SessionWarningWindow,
		LockoutThreshold: cfg.LockoutThreshold,
		LockoutWindow:    cfg.LockoutWindow,
	}, deps.Verifier, deps.Sessions, deps.Attempts)
	monitor := services.NewSessionMonitor(log, deps.Sessions, cfg.SessionPollInterval, cfg.SessionWarningWindow, nil)

	productService := services.NewProductService(deps.Products, deps.Categories)
	cartService := services.NewCartService(log, deps.Carts, deps.Products)
	checkoutService := services.NewCheckoutService(log, services.CheckoutConfig{
		Pricing: services.Pricing{
			ShippingFee:       decimal.NewFromFloat(cfg.ShippingFee),
			FreeShippingAbove: decimal.NewFromFloat(cfg.FreeShippingAbove),
			TaxRate:           decimal.NewFromFloat(cfg.TaxRate),
		},
		Currency:    cfg.SquadCurrency,
		CallbackURL: cfg.SquadCallbackURL,
	}, cartService, deps.Orders, deps.Gateway, deps.Publisher)
	paymentService := services.NewPaymentService(log, deps.Orders, deps.Gateway, deps.Publisher)
	orderService := services.NewOrderService(log, deps.Orders)
	contactService := services.NewContactService(log, deps.Contacts)
	dashboardService := services.NewDashboardService(deps.Orders, deps.Products, nil)

	authHandler := handlers.NewAuthHandler(authService, 0)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, paymentService)
	orderHandler := handlers.NewOrderHandler(orderService)
	contactHandler := handlers.NewContactHandler(contactService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	app := fiber.New(fiber.Config{
		AppName:      "xivttw",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(helmet.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	// The payment gateway redirects the shopper here.
	app.Get("/order-confirmation", checkoutHandler.HandleConfirmation)

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	contactHandler.RegisterRoutes(apiV1)

	cartOwner := middleware.CartOwner(authService)
	apiV1.Use("/cart", cartOwner)
	apiV1.Use("/checkout", cartOwner)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AdminRequired(authService))
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterRoutes(admin)
	contactHandler.RegisterAdminRoutes(admin)
	dashboardHandler.RegisterRoutes(admin)

	return app, monitor
}

// Run starts the background workers and serves HTTP until the listener
// stops. Workers stop when ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.monitor.Run(ctx)

	if a.infra.mq != nil {
		err := a.infra.mq.ConsumeOrderEvents(func(evt rabbitmq.Event) error {
			a.log.Info("order event received",
				slog.String("type", evt.Type),
				slog.Time("occurred_at", evt.OccurredAt),
				slog.String("data", string(evt.Data)),
			)
			return nil
		})
		if err != nil {
			a.log.Error("failed to start order event consumer", slog.String("error", err.Error()))
		}
	}

	a.log.Info("starting server", slog.String("addr", a.cfg.AppPort))
	return a.http.Listen(a.cfg.AppPort)
}

// Shutdown stops the HTTP server and releases the infrastructure.
func (a *App) Shutdown() error {
	if err := a.http.Shutdown(); err != nil {
		a.log.Error("error during fiber shutdown", slog.String("error", err.Error()))
	}
	return a.infra.close()
}
