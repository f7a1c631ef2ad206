package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

const (
	defaultPort                 = "8080"
	defaultPaymentDelay         = 2 * time.Second
	defaultSessionIdleTimeout   = 30 * time.Minute
	defaultSessionSweepSchedule = "@every 10m"
	defaultSQLitePath           = "barber_checkout.db"
	defaultSMTPPort             = "587"
	defaultLogLevel             = "info"
)

var ErrMissingJWTSecret = errors.New("no JWT_SECRET Provided")

type Config struct {
	Port                 string
	JWTSecret            string
	SecureCookie         bool
	StoreDriver          string
	DBConnectionString   string
	SQLitePath           string
	RedisAddr            string
	PaymentDelay         time.Duration
	SessionIdleTimeout   time.Duration
	SessionSweepSchedule string
	CurrencySymbol       string
	ContinueShoppingURL  string
	PaymentMethodsFile   string
	EmailAddress         string
	EmailPassword        string
	SMTPHost             string
	SMTPPort             string
	LogLevel             string
	EnableTracing        bool
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:                 valueOr(getenv("PORT"), defaultPort),
		JWTSecret:            getenv("JWT_SECRET"),
		StoreDriver:          strings.ToLower(valueOr(getenv("STORE_DRIVER"), StoreMemory)),
		DBConnectionString:   getenv("DB_CONNECTION_STRING"),
		SQLitePath:           valueOr(getenv("SQLITE_PATH"), defaultSQLitePath),
		RedisAddr:            getenv("REDIS_ADDR"),
		SessionSweepSchedule: valueOr(getenv("SESSION_SWEEP_SCHEDULE"), defaultSessionSweepSchedule),
		CurrencySymbol:       valueOr(getenv("CURRENCY_SYMBOL"), domain.DefaultCurrencySymbol),
		ContinueShoppingURL:  getenv("CONTINUE_SHOPPING_URL"),
		PaymentMethodsFile:   getenv("PAYMENT_METHODS_FILE"),
		EmailAddress:         getenv("EMAIL_ADDRESS"),
		EmailPassword:        getenv("EMAIL_PASSWORD"),
		SMTPHost:             getenv("SMTP_HOST"),
		SMTPPort:             valueOr(getenv("SMTP_PORT"), defaultSMTPPort),
		LogLevel:             valueOr(getenv("LOG_LEVEL"), defaultLogLevel),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	var err error
	if cfg.PaymentDelay, err = durationOr(getenv("PAYMENT_DELAY"), defaultPaymentDelay); err != nil {
		return Config{}, fmt.Errorf("invalid PAYMENT_DELAY: %w", err)
	}
	if cfg.SessionIdleTimeout, err = durationOr(getenv("SESSION_IDLE_TIMEOUT"), defaultSessionIdleTimeout); err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}
	if cfg.EnableTracing, err = boolOr(getenv("ENABLE_TRACING"), false); err != nil {
		return Config{}, fmt.Errorf("invalid ENABLE_TRACING: %w", err)
	}
	if cfg.SecureCookie, err = boolOr(getenv("COOKIE_SECURE"), false); err != nil {
		return Config{}, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.DBConnectionString == "" {
			return Config{}, errors.New("DB_CONNECTION_STRING is required for the postgres store")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return Config{}, errors.New("REDIS_ADDR is required for the redis store")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

type paymentMethodsFile struct {
	PaymentMethods []domain.PaymentMethod `yaml:"payment_methods"`
}

// LoadPaymentMethods builds the payment catalog from PAYMENT_METHODS_FILE, or the
// built-in card/yape/plin catalog when no file is configured.
func (c Config) LoadPaymentMethods() (*domain.PaymentCatalog, error) {
	if c.PaymentMethodsFile == "" {
		return domain.NewPaymentCatalog(domain.DefaultPaymentMethods())
	}

	data, err := os.ReadFile(c.PaymentMethodsFile)
	if err != nil {
		return nil, fmt.Errorf("could not read payment methods file: %w", err)
	}
	return ParsePaymentMethods(data)
}

func ParsePaymentMethods(data []byte) (*domain.PaymentCatalog, error) {
	var file paymentMethodsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse payment methods: %w", err)
	}
	if len(file.PaymentMethods) == 0 {
		return nil, errors.New("payment methods file lists no methods")
	}
	return domain.NewPaymentCatalog(file.PaymentMethods)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func durationOr(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}

func boolOr(value string, fallback bool) (bool, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return strconv.ParseBool(strings.TrimSpace(value))
}
