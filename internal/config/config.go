package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the storefront service.
type Config struct {
	Env     string
	AppPort string

	DatabaseDriver string // postgres | sqlite
	DatabaseDSN    string

	RedisAddr     string // empty disables the redis session store
	RedisPassword string
	RabbitMQURL   string // empty disables order events

	JWTSecret string

	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
	// AdminSource selects the credential verifier: "static" or "database".
	AdminSource string

	SessionTTL           time.Duration
	SessionPollInterval  time.Duration
	SessionWarningWindow time.Duration
	LockoutThreshold     int
	LockoutWindow        time.Duration

	ShippingFee       float64
	FreeShippingAbove float64
	TaxRate           float64

	SquadBaseURL     string
	SquadSecretKey   string
	SquadCurrency    string
	SquadCallbackURL string
	SquadTimeout     time.Duration
}

// Load reads configuration from the environment, falling back to defaults.
func Load() Config {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return Config{
		Env:     v.GetString("APP_ENV"),
		AppPort: v.GetString("APP_PORT"),

		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),

		JWTSecret: v.GetString("JWT_SECRET"),

		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		AdminFirstName: v.GetString("ADMIN_FIRST_NAME"),
		AdminLastName:  v.GetString("ADMIN_LAST_NAME"),
		AdminSource:    strings.ToLower(v.GetString("ADMIN_SOURCE")),

		SessionTTL:           v.GetDuration("SESSION_TTL"),
		SessionPollInterval:  v.GetDuration("SESSION_POLL_INTERVAL"),
		SessionWarningWindow: v.GetDuration("SESSION_WARNING_WINDOW"),
		LockoutThreshold:     v.GetInt("LOCKOUT_THRESHOLD"),
		LockoutWindow:        v.GetDuration("LOCKOUT_WINDOW"),

		ShippingFee:       v.GetFloat64("SHIPPING_FEE"),
		FreeShippingAbove: v.GetFloat64("FREE_SHIPPING_ABOVE"),
		TaxRate:           v.GetFloat64("TAX_RATE"),

		SquadBaseURL:     strings.TrimRight(v.GetString("SQUAD_BASE_URL"), "/"),
		SquadSecretKey:   v.GetString("SQUAD_SECRET_KEY"),
		SquadCurrency:    v.GetString("SQUAD_CURRENCY"),
		SquadCallbackURL: v.GetString("SQUAD_CALLBACK_URL"),
		SquadTimeout:     v.GetDuration("SQUAD_TIMEOUT"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_PORT", ":8080")

	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:xivttw.db?cache=shared")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("JWT_SECRET", "change-me")

	v.SetDefault("ADMIN_EMAIL", "admin@xivttw.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("ADMIN_FIRST_NAME", "Admin")
	v.SetDefault("ADMIN_LAST_NAME", "User")
	v.SetDefault("ADMIN_SOURCE", "static")

	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SESSION_POLL_INTERVAL", 30*time.Second)
	v.SetDefault("SESSION_WARNING_WINDOW", 30*time.Minute)
	v.SetDefault("LOCKOUT_THRESHOLD", 5)
	v.SetDefault("LOCKOUT_WINDOW", 15*time.Minute)

	v.SetDefault("SHIPPING_FEE", 10.0)
	v.SetDefault("FREE_SHIPPING_ABOVE", 100.0)
	v.SetDefault("TAX_RATE", 0.08)

	v.SetDefault("SQUAD_BASE_URL", "https://api.squadco.com")
	v.SetDefault("SQUAD_SECRET_KEY", "")
	v.SetDefault("SQUAD_CURRENCY", "NGN")
	v.SetDefault("SQUAD_CALLBACK_URL", "http://localhost:8080/order-confirmation")
	v.SetDefault("SQUAD_TIMEOUT", 15*time.Second)
}
