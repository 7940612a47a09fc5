package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabasePath     string `env:"DATABASE_PATH" envDefault:"selftrack.db"`
	SessionSecret    string `env:"SESSION_SECRET" envDefault:"selftrack-dev-secret"`
	GinMode          string `env:"GIN_MODE" envDefault:"release"`
	LogMode          string `env:"LOG_MODE" envDefault:"development"`
	Timezone         string `env:"SELFTRACK_TIMEZONE"`
	QuotesPath       string `env:"QUOTES_PATH" envDefault:"data/quotes.json"`
	ExportDir        string `env:"EXPORT_DIR" envDefault:"exports"`
	SeedSampleHabits bool   `env:"SEED_SAMPLE_HABITS" envDefault:"true"`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	cfg.DatabasePath = strings.TrimSpace(cfg.DatabasePath)
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "selftrack.db"
	}
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)

	return cfg, nil
}
