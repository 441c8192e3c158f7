package config

import (
	"os"
	"strconv"
	"strings"
)

// RelayConfig configures the signaling relay server.
type RelayConfig struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	Redis          RedisConfig
}

// RedisConfig is optional; an empty Addr keeps feedback in the log.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

func LoadRelay() *RelayConfig {
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	var origins []string
	for _, o := range strings.Split(originsStr, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		db = 0
	}

	return &RelayConfig{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: origins,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       db,
			Key:      getEnv("REDIS_FEEDBACK_KEY", "quickshare:feedback"),
		},
	}
}

func (c *RelayConfig) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
