package config

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port           string `env:"PORT,            default=8080"`
	Env            string `env:"ENV,             default=development"`
	JWTSecret      string `env:"JWT_SECRET"`
	LogLevel       string `env:"LOG_LEVEL,       default=info"`
	StripeSecret   string `env:"STRIPE_SECRET_KEY"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN, default=http://localhost:3000"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rental_marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
// In development a .env file is read first when present.
func Load() *Config {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
