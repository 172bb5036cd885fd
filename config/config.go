package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MetricsPort string
	LogLevel    string

	MinScore int

	BuyersUploadPath   string
	ListingsUploadPath string
	MatchesOutputPath  string

	PortalSearchURL string
	MaxConcurrency  int
	RateLimitMs     int
	MaxRetries      int
	ListingsPerPage int

	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "rematcher"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "rematcher123"),
		PostgresDB:       getEnv("POSTGRES_DB", "property_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MetricsPort: getEnv("METRICS_PORT", "9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MinScore: getEnvInt("MIN_MATCH_SCORE", 60),

		BuyersUploadPath:   getEnv("BUYERS_UPLOAD_PATH", ""),
		ListingsUploadPath: getEnv("LISTINGS_UPLOAD_PATH", ""),
		MatchesOutputPath:  getEnv("MATCHES_OUTPUT_PATH", "./output/matches.csv"),

		PortalSearchURL: getEnv("PORTAL_SEARCH_URL", ""),
		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		ListingsPerPage: getEnvInt("LISTINGS_PER_PAGE", 10),

		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
