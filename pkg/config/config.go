package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Wallet  WalletConfig
	Redis   RedisConfig
	Session SessionConfig
	Payment PaymentConfig
	Cart    CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Wallet.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" required:"true"`
	Port         string `envconfig:"POS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"POS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the remote POS backend that owns all persistence.
type BackendConfig struct {
	BaseURL string        `envconfig:"POS_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"POS_BACKEND_TIMEOUT" default:"15s"`
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(b.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("POS_BACKEND_BASE_URL must be an absolute url")
	}
	return nil
}

// WalletConfig configures the external wallet provider (redirect + lookup).
type WalletConfig struct {
	BaseURL   string        `envconfig:"POS_WALLET_BASE_URL" required:"true"`
	SecretKey string        `envconfig:"POS_WALLET_SECRET_KEY" required:"true"`
	ReturnURL string        `envconfig:"POS_WALLET_RETURN_URL" required:"true"`
	Timeout   time.Duration `envconfig:"POS_WALLET_TIMEOUT" default:"15s"`
}

func (w WalletConfig) validate() error {
	for name, raw := range map[string]string{
		"POS_WALLET_BASE_URL":   w.BaseURL,
		"POS_WALLET_RETURN_URL": w.ReturnURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute url", name)
		}
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL" required:"true"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	Secret     string `envconfig:"POS_SESSION_SECRET" required:"true"`
	Issuer     string `envconfig:"POS_SESSION_ISSUER" default:"pos-storefront"`
	TTLMinutes int    `envconfig:"POS_SESSION_TTL_MINUTES" default:"720"`
}

// TTL returns the session lifetime configured in minutes.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

type PaymentConfig struct {
	SnapshotTTL time.Duration `envconfig:"POS_PAYMENT_SNAPSHOT_TTL" default:"1h"`
}

// CartConfig tunes the in-memory cart store's eviction sweep. IdleTTL should
// not be shorter than the session TTL or live sessions lose their carts.
type CartConfig struct {
	SweepInterval time.Duration `envconfig:"POS_CART_SWEEP_INTERVAL" default:"10m"`
	IdleTTL       time.Duration `envconfig:"POS_CART_IDLE_TTL" default:"12h"`
}
