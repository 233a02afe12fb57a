package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

type Config struct {
	QuestionsDir string `validate:"required"`
	Port         string `validate:"required,numeric"`
	Environment  string `validate:"required,oneof=development production test"`
	LogLevel     string `validate:"required,oneof=debug info warn error"`
	// RandomSeed of 0 seeds the weighted draw from the clock.
	RandomSeed uint64
	Events     EventConfig
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	seed, err := strconv.ParseUint(getEnv("RANDOM_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RANDOM_SEED: %w", err)
	}
	eventsEnabled, err := strconv.ParseBool(getEnv("EVENTS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENTS_ENABLED: %w", err)
	}

	cfg := &Config{
		QuestionsDir: getEnv("QUESTIONS_DIR", "./questions"),
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		RandomSeed:   seed,
		Events: EventConfig{
			Enabled:        eventsEnabled,
			Publisher:      getEnv("EVENTS_PUBLISHER", "gochannel"),
			KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
			RankEventTopic: getEnv("RANK_EVENTS_TOPIC", "flashcards.progress"),
		},
	}

	if err := validator.New().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
