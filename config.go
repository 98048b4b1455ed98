package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string        `env:"LISTEN_ADDR" envDefault:"0.0.0.0:8080"`
	DataFile      string        `env:"DATA_FILE" envDefault:"data/heracraft.json"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"votre_cle_secrete_longue_et_unique_pour_json"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	DevMode       bool          `env:"DEV_MODE" envDefault:"false"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
