package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTP_PORT          string `env:"HTTP_PORT"`
	DB_STRING          string `env:"DB_STRING"`
	KAFKA_BROKERS      string `env:"KAFKA_BROKERS"`
	KAFKA_INTAKE_TOPIC string `env:"KAFKA_INTAKE_TOPIC"`
	KAFKA_EVENTS_TOPIC string `env:"KAFKA_EVENTS_TOPIC"`
	KAFKA_GROUP_ID     string `env:"KAFKA_GROUP_ID"`
	REDIS_ADDR         string `env:"REDIS_ADDR"`
	RETURN_POLICY_DAYS int    `env:"RETURN_POLICY_DAYS"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:          os.Getenv("HTTP_PORT"),
		DB_STRING:          os.Getenv("DB_STRING"),
		KAFKA_BROKERS:      os.Getenv("KAFKA_BROKERS"),
		KAFKA_INTAKE_TOPIC: os.Getenv("KAFKA_INTAKE_TOPIC"),
		KAFKA_EVENTS_TOPIC: os.Getenv("KAFKA_EVENTS_TOPIC"),
		KAFKA_GROUP_ID:     os.Getenv("KAFKA_GROUP_ID"),
		REDIS_ADDR:         os.Getenv("REDIS_ADDR"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.KAFKA_INTAKE_TOPIC == "" {
		cfg.KAFKA_INTAKE_TOPIC = "orders.intake"
	}
	if cfg.KAFKA_EVENTS_TOPIC == "" {
		cfg.KAFKA_EVENTS_TOPIC = "orders.events"
	}
	if cfg.KAFKA_GROUP_ID == "" {
		cfg.KAFKA_GROUP_ID = "pms-orders"
	}

	cfg.RETURN_POLICY_DAYS = 30
	if v := os.Getenv("RETURN_POLICY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RETURN_POLICY_DAYS = n
		}
	}

	return cfg, nil
}
