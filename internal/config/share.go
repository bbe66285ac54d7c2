package config

import (
	"time"
)

type ShareConfig struct {
	BaseURL        string        `yaml:"base_url"`
	ClaimRateLimit int           `yaml:"claim_rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
}

func loadShareConfig() *ShareConfig {
	return &ShareConfig{
		BaseURL:        getEnv("SHARE_BASE_URL", "http://localhost:8080"),
		ClaimRateLimit: getEnvAsInt("SHARE_CLAIM_RATE_LIMIT", 30),
		RateWindow:     getEnvAsDuration("SHARE_RATE_WINDOW", time.Minute),
	}
}
