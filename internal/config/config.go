package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDB           string
	RedisAddr         string
	HTTPPort          string
	JWTSecret         string
	SuperadminEmail   string
	SuperadminPass    string
	AnalyticsCacheTTL time.Duration
}

func Load() *Config {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	return &Config{
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "assessmentdb"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:          getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		SuperadminEmail:   getEnv("SUPERADMIN_EMAIL", "superadmin@portal.local"),
		SuperadminPass:    getEnv("SUPERADMIN_PASSWORD", "superadmin123"),
		AnalyticsCacheTTL: getDuration("ANALYTICS_CACHE_TTL_SECONDS", 300) * time.Second,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultSecs int) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(defaultSecs)
}
