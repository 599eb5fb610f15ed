package config

import (
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
)

type Config struct {
	RpcURL        string
	DbURL         string
	KafkaBroker   string
	KafkaTopic    string
	ChainID       int64
	APIPort       int
	ReturnSecrets bool
}

// NewConfig loads configuration from environment variables
func NewConfig() *Config {
	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	return &Config{
		RpcURL:        getEnvOrFatal("RPC_URL"),
		DbURL:         getEnvOrFatal("DB_URL"),
		KafkaBroker:   getEnvOrFatal("KAFKA_BROKER"),
		KafkaTopic:    getEnvOrFatal("KAFKA_TOPIC"),
		ChainID:       getEnvInt64("CHAIN_ID", 56),
		APIPort:       getEnvInt("API_PORT", 8080),
		ReturnSecrets: getEnvBool("WALLET_RETURN_SECRETS", false),
	}
}

func getEnvOrFatal(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	log.Fatalf("Warning: environment variable %s not set", key)

	return ""
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
