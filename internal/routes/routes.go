package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/padi-pay/padi_pay/internal/config"
	"github.com/padi-pay/padi_pay/internal/dashboard"
	"github.com/padi-pay/padi_pay/internal/identity"
	"github.com/padi-pay/padi_pay/internal/intake"
	"github.com/padi-pay/padi_pay/internal/ledger"
	"github.com/padi-pay/padi_pay/internal/marketplace"
	"github.com/padi-pay/padi_pay/internal/middleware"
	"github.com/padi-pay/padi_pay/internal/notification"
	"github.com/padi-pay/padi_pay/internal/otp"
	"github.com/padi-pay/padi_pay/internal/provision"
	"github.com/padi-pay/padi_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database the storage layers fall back to their in-memory implementations,
// which only makes sense for local development.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.Dev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Dashboard cache doubles as the ledger's post-commit invalidator.
	var metricsSource dashboard.Source
	if d.DB != nil {
		metricsSource = dashboard.NewPostgresSource(d.DB)
	}
	dashboardSvc := dashboard.NewService(metricsSource, d.Cache, time.Minute, d.Logger)

	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB, dashboardSvc, d.Logger)
	} else {
		ledgerBackend = ledger.NewInMemory(dashboardSvc)
	}

	var notifier notification.Notifier
	if d.Cfg.GatewayBaseURL != "" {
		notifier = notification.NewGatewayNotifier(d.Cfg.GatewayBaseURL, d.Cfg.GatewayAPIKey)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	var otpStore otp.Store
	if d.DB != nil {
		otpStore = otp.NewPostgresStore(d.DB)
	} else {
		otpStore = otp.NewMemoryStore()
	}
	otpSvc := otp.NewService(otpStore, notifier, d.Cfg.OTPTTL, d.Logger)

	var provisioner provision.Provisioner
	if d.Cfg.ProvisionBaseURL != "" {
		provisioner = provision.NewClient(d.Cfg.ProvisionBaseURL, d.Cfg.ProvisionAPIKey, d.Cfg.ProvisionContractCode)
	} else {
		provisioner = provision.StaticProvisioner{BankName: d.Cfg.BankName}
	}

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo, provisioner, ledgerBackend, otpSvc, d.Logger)

	var catalog marketplace.Repository
	if d.DB != nil {
		catalog = marketplace.NewPostgresRepository(d.DB)
	} else {
		catalog = marketplace.NewMemoryRepository()
	}
	marketplaceSvc := marketplace.NewService(catalog, ledgerBackend)

	walletSvc := wallet.NewService(ledgerBackend)
	intakeSvc := intake.NewService(d.Cfg.WebhookSecret, ledgerBackend, d.Logger)

	identityHandler := identity.NewHandler(identitySvc)
	walletHandler := wallet.NewHandler(walletSvc)
	marketplaceHandler := marketplace.NewHandler(marketplaceSvc)
	intakeHandler := intake.NewHandler(intakeSvc)
	dashboardHandler := dashboard.NewHandler(dashboardSvc)

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")

	otpLimiter := middleware.OTPRateLimit(d.Cache, d.Cfg.OTPPerMinute)
	RegisterIdentityRoutes(api, identityHandler, otpLimiter)
	RegisterIntakeRoutes(api, intakeHandler)

	protected := api.Group("", middleware.UserContext())
	var idempotent fiber.Router = protected
	if d.Cache != nil {
		idempotent = protected.Group("", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterWalletRoutes(protected, idempotent, walletHandler)
	RegisterMarketplaceRoutes(protected, idempotent, marketplaceHandler)

	if metricsSource != nil {
		RegisterDashboardRoutes(api, dashboardHandler)
	}

	return nil
}
