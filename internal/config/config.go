package config

import (
	"fmt"
	"os"
)

// Config holds the environment-derived settings for one relay instance.
type Config struct {
	Addr          string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	TelegramToken string
}

// Load reads the configuration from environment variables, applying
// development defaults where a variable is unset. Call godotenv.Load
// beforehand to pick up a .env file.
func Load() Config {
	return Config{
		Addr:          getenv("HTTP_ADDR", ":8080"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBUser:        getenv("DB_USER", "user"),
		DBPassword:    getenv("DB_PASSWORD", "password"),
		DBName:        getenv("DB_NAME", "chatrelaydb"),
		DBPort:        getenv("DB_PORT", "5432"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET", "dev-only-secret"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
}

// DatabaseDSN assembles the PostgreSQL connection string.
func (c Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
