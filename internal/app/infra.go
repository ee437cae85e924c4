package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"xivttw/internal/config"
	"xivttw/internal/models"
	"xivttw/internal/payment"
	"xivttw/internal/repositories"
	"xivttw/internal/services"
	"xivttw/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the stores and outbound clients the HTTP layer is built on.
type Deps struct {
	Products   repositories.ProductRepository
	Categories repositories.CategoryRepository
	Carts      repositories.CartRepository
	Orders     repositories.OrderRepository
	Contacts   repositories.ContactRepository
	Sessions   repositories.SessionRepository
	Attempts   repositories.AttemptRepository
	Verifier   services.CredentialVerifier
	Gateway    payment.Gateway
	// Publisher may be nil when order events are disabled.
	Publisher services.EventPublisher
}

type infra struct {
	db    *gorm.DB
	redis *redis.Client
	mq    *rabbitmq.Client
}

func (i *infra) close() error {
	var errs []error
	if i.mq != nil {
		errs = append(errs, i.mq.Close())
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}
	if i.db != nil {
		if sqlDB, err := i.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func setupInfra(ctx context.Context, log *slog.Logger, cfg config.Config) (*infra, error) {
	db, err := repositories.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return nil, err
	}
	log.Info("database ready", slog.String("driver", cfg.DatabaseDriver))
	in := &infra{db: db}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = in.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		in.redis = client
		log.Info("redis ready", slog.String("addr", cfg.RedisAddr))
	}

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			_ = in.close()
			return nil, err
		}
		in.mq = mq
		log.Info("rabbitmq ready", slog.String("queue", rabbitmq.DefaultQueue))
	}
	return in, nil
}

// deps wires repositories over the infrastructure. Sessions and lockout
// counters live in redis when it is configured.
func (i *infra) deps(ctx context.Context, log *slog.Logger, cfg config.Config) (Deps, error) {
	d := Deps{
		Products:   repositories.NewGORMProductRepository(i.db),
		Categories: repositories.NewGORMCategoryRepository(i.db),
		Carts:      repositories.NewGORMCartRepository(i.db),
		Orders:     repositories.NewGORMOrderRepository(i.db),
		Contacts:   repositories.NewGORMContactRepository(i.db),
		Sessions:   repositories.NewGORMSessionRepository(i.db),
		Attempts:   repositories.NewGORMAttemptRepository(i.db),
		Gateway: payment.NewSquadClient(payment.Config{
			BaseURL:   cfg.SquadBaseURL,
			SecretKey: cfg.SquadSecretKey,
			Currency:  cfg.SquadCurrency,
			Timeout:   cfg.SquadTimeout,
		}),
	}
	if i.redis != nil {
		d.Sessions = repositories.NewRedisSessionRepository(i.redis)
		d.Attempts = repositories.NewRedisAttemptRepository(i.redis)
	}
	if i.mq != nil {
		d.Publisher = i.mq
	}

	verifier, err := buildVerifier(ctx, log, cfg, repositories.NewGORMAdminUserRepository(i.db))
	if err != nil {
		return Deps{}, err
	}
	d.Verifier = verifier
	return d, nil
}

// buildVerifier picks the credential source. The database source seeds
// the configured admin on first start.
func buildVerifier(ctx context.Context, log *slog.Logger, cfg config.Config, users repositories.AdminUserRepository) (services.CredentialVerifier, error) {
	switch cfg.AdminSource {
	case "", "static":
		return services.NewStaticVerifier(services.UserIdentity{
			ID:        "admin",
			Email:     cfg.AdminEmail,
			FirstName: cfg.AdminFirstName,
			LastName:  cfg.AdminLastName,
			Role:      models.RoleAdmin,
		}, cfg.AdminPassword)
	case "database":
		_, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(cfg.AdminEmail)))
		if errors.Is(err, repositories.ErrNotFound) && cfg.AdminPassword != "" {
			err = services.RegisterAdmin(ctx, users, &models.AdminUser{
				Email:     cfg.AdminEmail,
				FirstName: cfg.AdminFirstName,
				LastName:  cfg.AdminLastName,
				Role:      models.RoleSuperAdmin,
			}, cfg.AdminPassword)
			if err == nil {
				log.Info("seeded admin user", slog.String("email", cfg.AdminEmail))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to prepare admin users: %w", err)
		}
		return services.NewAdminUserVerifier(users), nil
	default:
		return nil, fmt.Errorf("unknown admin source %q", cfg.AdminSource)
	}
}
