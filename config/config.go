package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	Telegram TelegramConfig
	Database DatabaseConfig
	Logbook  LogbookConfig
	Webhook  WebhookConfig
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type TelegramConfig struct {
	BotToken      string
	WebhookURL    string
	WebhookSecret string
}

type DatabaseConfig struct {
	Path string
}

type LogbookConfig struct {
	Timezone          string
	SessionCapacity   int
	SessionTTLMinutes int
}

type WebhookConfig struct {
	RateLimitPerMin int
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	cfg.Telegram.BotToken = viper.GetString("telegram.bot_token")
	cfg.Telegram.WebhookURL = viper.GetString("telegram.webhook_url")
	cfg.Telegram.WebhookSecret = viper.GetString("telegram.webhook_secret")
	if tgToken := viper.GetString("telegram_bot_token"); tgToken != "" {
		cfg.Telegram.BotToken = tgToken
	}
	if whSecret := viper.GetString("telegram_webhook_secret"); whSecret != "" {
		cfg.Telegram.WebhookSecret = whSecret
	}

	cfg.Database.Path = viper.GetString("database.path")
	if dbPath := viper.GetString("database_path"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	cfg.Logbook.Timezone = viper.GetString("logbook.timezone")
	cfg.Logbook.SessionCapacity = viper.GetInt("logbook.session_capacity")
	cfg.Logbook.SessionTTLMinutes = viper.GetInt("logbook.session_ttl_minutes")

	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)
	viper.SetDefault("database.path", "./data/logbook.db")
	viper.SetDefault("logbook.timezone", "America/Bogota")
	viper.SetDefault("logbook.session_capacity", 1000)
	viper.SetDefault("logbook.session_ttl_minutes", 30)
	viper.SetDefault("webhook.rate_limit_per_min", 60)
}
