package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"vet-console/internal/platform/logger"
)

const (
	DefaultAPIBaseURL        = "http://localhost:8080"
	DefaultPort              = "8090"
	DefaultRateLimit         = 10
	DefaultRateBurst         = 20
	DefaultNotificationLimit = 50
)

// Config de la consola. Se arma desde env (y .env si existe).
type Config struct {
	Port string

	// Servicio REST remoto.
	APIBaseURL string
	// 0 = sin timeout.
	HTTPTimeout time.Duration

	// Rate limit por IP de la superficie HTTP de la consola.
	RateLimit float64
	RateBurst int

	NotificationLimit int

	Log logger.Options
}

// Load lee .env (si existe) y después el entorno.
// Variables ya presentes en el entorno no se pisan con las del .env.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, fmt.Errorf("config: load env files: %w", err)
	}
	return FromEnv()
}

// FromEnv arma la Config solo desde variables de entorno:
// - PORT (default 8090)
// - VET_API_BASE_URL (default http://localhost:8080)
// - CONSOLE_HTTP_TIMEOUT duración Go, ej "15s" (default 0 = sin timeout)
// - CONSOLE_RATE_LIMIT req/s por IP (default 10), CONSOLE_RATE_BURST (default 20)
// - CONSOLE_NOTIFICATION_LIMIT (default 50)
// - LOG_LEVEL, LOG_FORMAT, APP_NAME
func FromEnv() (Config, error) {
	cfg := Config{
		Port:              envOr("PORT", DefaultPort),
		APIBaseURL:        strings.TrimRight(envOr("VET_API_BASE_URL", DefaultAPIBaseURL), "/"),
		RateLimit:         DefaultRateLimit,
		RateBurst:         DefaultRateBurst,
		NotificationLimit: DefaultNotificationLimit,
		Log: logger.Options{
			Level:  logger.ParseLevel(os.Getenv("LOG_LEVEL")),
			Format: logger.ParseFormat(os.Getenv("LOG_FORMAT")),
			App:    envOr("APP_NAME", "vet-console"),
		},
	}

	if v := strings.TrimSpace(os.Getenv("CONSOLE_HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("config: CONSOLE_HTTP_TIMEOUT must be a non-negative duration, got %q", v)
		}
		cfg.HTTPTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("CONSOLE_RATE_LIMIT")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("config: CONSOLE_RATE_LIMIT must be a positive number, got %q", v)
		}
		cfg.RateLimit = f
	}

	var err error
	if cfg.RateBurst, err = positiveInt("CONSOLE_RATE_BURST", DefaultRateBurst); err != nil {
		return Config{}, err
	}
	if cfg.NotificationLimit, err = positiveInt("CONSOLE_NOTIFICATION_LIMIT", DefaultNotificationLimit); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Addr es la dirección de escucha (":8090").
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
