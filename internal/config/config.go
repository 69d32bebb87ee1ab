package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"
)

// Routes is the contract surface the request gate enforces. Prefixes are
// configuration, not constants, so a deployment can move the portal
// areas without touching the gate.
type Routes struct {
	LoginPath    string
	AdminPrefix  string
	ClientPrefix string
}

type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret string
	JWTTTL    time.Duration

	CookieName string

	Routes Routes

	// Seed users, created on startup when both email and password are set.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string

	// WorkerMetricsPort is where the queue worker exposes /metrics; it
	// cannot share the API port.
	WorkerMetricsPort int

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// ErrMissingJWTSecret aborts startup. There is no development fallback
// secret on purpose.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET must be set")

func Load() (Config, error) {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	cfg := Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret: secret,
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 12)) * time.Hour,

		CookieName: getEnv("AUTH_COOKIE_NAME", "auth-token"),

		Routes: Routes{
			LoginPath:    getEnv("ROUTE_LOGIN", "/login"),
			AdminPrefix:  getEnv("ROUTE_ADMIN_PREFIX", "/dashboard"),
			ClientPrefix: getEnv("ROUTE_CLIENT_PREFIX", "/client"),
		},

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Admin User"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),

		WorkerMetricsPort: getEnvInt("WORKER_METRICS_PORT", 9091),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: time.Duration(getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "concierge")
	pass := getEnv("DB_PASSWORD", "concierge")
	name := getEnv("DB_NAME", "concierge")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}
