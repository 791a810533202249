package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultPlaceholderImage = "https://placehold.co/600x600?text=No+Image"

type Config struct {
	Port        string
	Environment string // development | production
	LogLevel    string
	LogFile     string

	DBDSN     string
	RedisAddr string // empty: lifecycle state lives in sqlite
	RedisDB   int

	BackendURL     string
	BackendTimeout time.Duration

	PlaceholderImage string
	ProfilePath      string
	NavDelay         time.Duration
	InFlightTTL      time.Duration
	MaxUploadBytes   int

	// Orders are created with fixed shipping details until checkout collects an address.
	ShippingAddress string
	ShippingCity    string
	ShippingZip     string
}

func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	cfg := Config{
		Port:             getEnv("PORT", "8081"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		DBDSN:            getEnv("DB_DSN", "shopfront.db"), // sqlite file in project root
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		BackendURL:       strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000/api"), "/"),
		BackendTimeout:   time.Duration(getEnvInt("BACKEND_TIMEOUT_MS", 10000)) * time.Millisecond,
		PlaceholderImage: getEnv("PLACEHOLDER_IMAGE", DefaultPlaceholderImage),
		ProfilePath:      getEnv("PROFILE_PATH", "/profile"),
		NavDelay:         time.Duration(getEnvInt("NAV_DELAY_MS", 2000)) * time.Millisecond,
		InFlightTTL:      time.Duration(getEnvInt("INFLIGHT_TTL_SEC", 60)) * time.Second,
		MaxUploadBytes:   getEnvInt("MAX_UPLOAD_BYTES", 8<<20),
		ShippingAddress:  getEnv("SHIPPING_ADDRESS", "Default Address"),
		ShippingCity:     getEnv("SHIPPING_CITY", "Default City"),
		ShippingZip:      getEnv("SHIPPING_ZIP", "00000"),
	}

	log.Printf("[config] PORT=%s ENVIRONMENT=%s DB_DSN=%s REDIS_ADDR=%s BACKEND_URL=%s",
		cfg.Port, cfg.Environment, cfg.DBDSN, mask(cfg.RedisAddr), cfg.BackendURL)
	return cfg
}

func (c Config) IsProduction() bool { return c.Environment == "production" }

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt falls back on parse errors as well, logging the bad value.
func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func mask(s string) string {
	if s == "" {
		return "-"
	}
	if len(s) < 4 {
		return "***"
	}
	if len(s) < 8 {
		return s[:2] + "***"
	}
	return s[:2] + "***" + s[len(s)-4:]
}
