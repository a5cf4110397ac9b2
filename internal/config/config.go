package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL    string `yaml:"url"`
		BankID string `yaml:"bank_id"`
	} `yaml:"postgres"`
	Bank struct {
		File string `yaml:"file"`
		TTL  string `yaml:"ttl"`
	} `yaml:"bank"`
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
	Logging struct {
		Level string `yaml:"level"`
		Env   string `yaml:"env"`
	} `yaml:"logging"`
}

// Load reads YAML config from path. The Telegram token may also come from
// TELEGRAM_BOT_TOKEN, which wins over the file so it stays out of configs.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
