// Package config loads settings from defaults, an optional config.yaml,
// a .env file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"keubot/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Office   OfficeConfig   `mapstructure:"office"`
	Session  SessionConfig  `mapstructure:"session"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Media    MediaConfig    `mapstructure:"media"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Log      logger.Config  `mapstructure:"log"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"omitempty,oneof=postgres sqlite"`
	DSN         string `mapstructure:"dsn" validate:"required"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type GatewayConfig struct {
	URL   string `mapstructure:"url" validate:"omitempty,url"`
	Token string `mapstructure:"token"`
}

type WebhookConfig struct {
	Secret string `mapstructure:"secret" validate:"required,min=8"`
}

type AdminConfig struct {
	Numbers []string `mapstructure:"numbers"`
}

type OfficeConfig struct {
	Name      string  `mapstructure:"name"`
	Latitude  float64 `mapstructure:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `mapstructure:"longitude" validate:"gte=-180,lte=180"`
	Radius    float64 `mapstructure:"radius" validate:"gt=0"`
}

type SessionConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

type UploadConfig struct {
	Base string `mapstructure:"base" validate:"required"`
}

type MediaConfig struct {
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	SpoolDir string        `mapstructure:"spool_dir"`
}

type OCRConfig struct {
	Languages     []string      `mapstructure:"languages" validate:"min=1"`
	LowConfidence float64       `mapstructure:"low_confidence" validate:"gte=0,lte=100"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type ChartConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Width   int           `mapstructure:"width" validate:"gt=0"`
	Height  int           `mapstructure:"height" validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type StatsConfig struct {
	FlushInterval time.Duration `mapstructure:"flush_interval" validate:"gt=0"`
}

var defaults = map[string]any{
	"database.driver":        "",
	"database.dsn":           "keubot.db",
	"database.auto_migrate":  true,
	"server.addr":            ":8081",
	"gateway.url":            "",
	"gateway.token":          "",
	"webhook.secret":         "dev-insecure-secret-change",
	"admin.numbers":          []string{},
	"office.name":            "RSU Muslimat Ponorogo",
	"office.latitude":        -7.877174871538191,
	"office.longitude":       111.47047801900142,
	"office.radius":          300.0,
	"session.timeout":        "10m",
	"session.sweep_interval": "5m",
	"upload.base":            "uploads",
	"media.timeout":          "30s",
	"media.spool_dir":        "",
	"ocr.languages":          []string{"ind", "eng"},
	"ocr.low_confidence":     50.0,
	"ocr.timeout":            "60s",
	"chart.url":              "https://quickchart.io/chart",
	"chart.timeout":          "15s",
	"chart.width":            800,
	"chart.height":           400,
	"redis.addr":             "",
	"redis.password":         "",
	"stats.flush_interval":   "1h",
	"log.level":              "info",
	"log.filename":           "logs/keubot.log",
	"log.max_size":           50,
	"log.max_backups":        5,
	"log.max_age":            30,
	"log.compress":           true,
}

// legacy environment names kept alongside the derived ones (DATABASE_DSN ...)
var aliases = map[string][]string{
	"database.dsn":          {"DB_DSN"},
	"database.driver":       {"DB_DRIVER"},
	"database.auto_migrate": {"DB_AUTO_MIGRATE"},
	"upload.base":           {"UPLOAD_BASE"},
	"webhook.secret":        {"JWT_SECRET"},
	"admin.numbers":         {"ADMIN_NUMBERS"},
	"server.addr":           {"PORT_ADDR"},
	"log.level":             {"LOG_LEVEL"},
}

// Load reads configuration. path may name a config file; when empty,
// ./config.yaml is used if present. A missing .env is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range aliases {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, envKey}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Admin.Numbers = splitList(cfg.Admin.Numbers)
	cfg.OCR.Languages = splitList(cfg.OCR.Languages)
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// splitList flattens comma separated entries and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
