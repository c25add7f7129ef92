package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Erp      ErpConfig
	Router   RouterConfig
	Sequence SequenceConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines chat session token parameters.
type AuthConfig struct {
	JWTSecret              string
	SessionTokenTTLMinutes int
}

// ErpConfig points at the legacy ERP endpoint and identifies this system to it.
type ErpConfig struct {
	Host                   string
	Port                   string
	System                 string
	Service                string
	Program                string
	DialTimeoutSeconds     int
	ResponseTimeoutSeconds int
}

// RouterConfig bounds the delegation router's ERP fan-out.
type RouterConfig struct {
	MaxTermsPerMessage   int
	MaxParallelLookups   int
	LookupTimeoutSeconds int
	AgentsFile           string
}

// SequenceConfig names the identifier prefixes and counter retention.
type SequenceConfig struct {
	OrderPrefix     string
	TicketPrefix    string
	CounterTTLHours int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "commerce-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTokenTTLMinutes: getEnvAsInt("AUTH_SESSION_TOKEN_TTL_MINUTES", 720),
		},
		Erp: ErpConfig{
			Host:                   getEnv("ERP_HOST", "127.0.0.1"),
			Port:                   getEnv("ERP_PORT", "7800"),
			System:                 getEnv("ERP_SYSTEM", "CHATVENTAS"),
			Service:                getEnv("ERP_SERVICE", "CONSULTAS"),
			Program:                getEnv("ERP_PROGRAM", "STKPRD01"),
			DialTimeoutSeconds:     getEnvAsInt("ERP_DIAL_TIMEOUT_SECONDS", 10),
			ResponseTimeoutSeconds: getEnvAsInt("ERP_RESPONSE_TIMEOUT_SECONDS", 30),
		},
		Router: RouterConfig{
			MaxTermsPerMessage:   getEnvAsInt("ROUTER_MAX_TERMS_PER_MESSAGE", 5),
			MaxParallelLookups:   getEnvAsInt("ROUTER_MAX_PARALLEL_LOOKUPS", 3),
			LookupTimeoutSeconds: getEnvAsInt("ROUTER_LOOKUP_TIMEOUT_SECONDS", 15),
			AgentsFile:           getEnv("ROUTER_AGENTS_FILE", ""),
		},
		Sequence: SequenceConfig{
			OrderPrefix:     getEnv("SEQUENCE_ORDER_PREFIX", "ORD"),
			TicketPrefix:    getEnv("SEQUENCE_TICKET_PREFIX", "TKT"),
			CounterTTLHours: getEnvAsInt("SEQUENCE_COUNTER_TTL_HOURS", 48),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Addr returns the ERP host:port endpoint.
func (e ErpConfig) Addr() string {
	return fmt.Sprintf("%s:%s", e.Host, e.Port)
}

// DialTimeout returns the ERP dial timeout.
func (e ErpConfig) DialTimeout() time.Duration {
	return time.Duration(e.DialTimeoutSeconds) * time.Second
}

// ResponseTimeout returns the ERP response timeout.
func (e ErpConfig) ResponseTimeout() time.Duration {
	return time.Duration(e.ResponseTimeoutSeconds) * time.Second
}

// LookupTimeout returns the per-lookup timeout for router fan-out.
func (r RouterConfig) LookupTimeout() time.Duration {
	return time.Duration(r.LookupTimeoutSeconds) * time.Second
}

// CounterTTL returns the sequence counter retention.
func (s SequenceConfig) CounterTTL() time.Duration {
	return time.Duration(s.CounterTTLHours) * time.Hour
}

// SessionTokenTTL returns the chat session token lifetime.
func (a AuthConfig) SessionTokenTTL() time.Duration {
	return time.Duration(a.SessionTokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
