// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Имена переменных окружения с секретами.
const (
	EnvMuxTokenID      = "MUX_TOKEN_ID"
	EnvMuxTokenSecret  = "MUX_TOKEN_SECRET"
	EnvDiscordBotToken = "DISCORD_BOT_TOKEN"
	EnvConfigFile      = "BOT_CONFIG_FILE"
)

// Secrets содержит учетные данные. Они читаются только из окружения.
type Secrets struct {
	MuxTokenID      string `yaml:"-"`
	MuxTokenSecret  string `yaml:"-"`
	DiscordBotToken string `yaml:"-"`
}

// Bot содержит настройки командного интерфейса
type Bot struct {
	CommandPrefix string `yaml:"command_prefix"`
}

// Polling содержит параметры опроса готовности ассета
type Polling struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// Mux содержит настройки сервиса транскодирования
type Mux struct {
	BaseURL       string        `yaml:"base_url"`
	StreamBaseURL string        `yaml:"stream_base_url"`
	MP4Quality    string        `yaml:"mp4_quality"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
}

// Server содержит конфигурацию статусного HTTP-сервера
type Server struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ConversionTTL   time.Duration `yaml:"conversion_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Config содержит конфигурацию приложения
type Config struct {
	Secrets Secrets `yaml:"-"`
	Bot     Bot     `yaml:"bot"`
	Polling Polling `yaml:"polling"`
	Mux     Mux     `yaml:"mux"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию
func defaultConfig() *Config {
	return &Config{
		Bot: Bot{CommandPrefix: DefaultCommandPrefix},
		Polling: Polling{
			Interval:    DefaultPollInterval,
			MaxAttempts: DefaultPollMaxAttempts,
		},
		Mux: Mux{
			BaseURL:       DefaultMuxBaseURL,
			StreamBaseURL: DefaultStreamBaseURL,
			MP4Quality:    DefaultMP4Quality,
			HTTPTimeout:   DefaultHTTPTimeout,
		},
		Server: Server{
			Enabled:         true,
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ShutdownTimeout: DefaultShutdownTimeout,
			ConversionTTL:   DefaultConversionTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadConfig загружает конфигурацию: секреты из переменных окружения (и .env файла),
// остальные настройки из YAML-файла, если он существует.
// Конфигурация загружается один раз при старте и дальше не меняется.
func LoadConfig() (*Config, error) {
	// Отсутствие .env файла — это нормально, полагаемся на переменные окружения
	_ = godotenv.Load()

	cfg := defaultConfig()

	path := getEnv(EnvConfigFile, DefaultConfigFile)
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}

	loadSecretsFromEnv(cfg)
	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg.
// Отсутствующий файл не считается ошибкой.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config %s: %w", filename, err)
	}
	return nil
}

// loadSecretsFromEnv читает секреты из окружения
func loadSecretsFromEnv(cfg *Config) {
	cfg.Secrets.MuxTokenID = strings.TrimSpace(os.Getenv(EnvMuxTokenID))
	cfg.Secrets.MuxTokenSecret = strings.TrimSpace(os.Getenv(EnvMuxTokenSecret))
	cfg.Secrets.DiscordBotToken = strings.TrimSpace(os.Getenv(EnvDiscordBotToken))
}

// Address возвращает адрес статусного сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate проверяет, являются ли значения конфигурации допустимыми.
// Все отсутствующие секреты перечисляются в одной ошибке.
func (c *Config) Validate() error {
	var missing []string
	if c.Secrets.MuxTokenID == "" {
		missing = append(missing, EnvMuxTokenID)
	}
	if c.Secrets.MuxTokenSecret == "" {
		missing = append(missing, EnvMuxTokenSecret)
	}
	if c.Secrets.DiscordBotToken == "" {
		missing = append(missing, EnvDiscordBotToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if strings.TrimSpace(c.Bot.CommandPrefix) == "" {
		return fmt.Errorf("bot.command_prefix cannot be empty")
	}

	if err := checkDuration("polling.interval", c.Polling.Interval); err != nil {
		return err
	}
	if c.Polling.MaxAttempts <= 0 {
		return fmt.Errorf("polling.max_attempts must be positive")
	}

	if c.Mux.BaseURL == "" || c.Mux.StreamBaseURL == "" {
		return fmt.Errorf("mux.base_url and mux.stream_base_url cannot be empty")
	}
	if c.Mux.MP4Quality == "" {
		return fmt.Errorf("mux.mp4_quality cannot be empty")
	}
	if err := checkDuration("mux.http_timeout", c.Mux.HTTPTimeout); err != nil {
		return err
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("server.port must be a valid port number (1-65535)")
		}
		if err := checkDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
			return err
		}
		if err := checkDuration("server.conversion_ttl", c.Server.ConversionTTL); err != nil {
			return err
		}
		if err := checkDuration("server.cleanup_interval", c.Server.CleanupInterval); err != nil {
			return err
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// minDuration — нижняя граница для всех интервалов и таймаутов.
// yaml.v2 читает число без единиц как наносекунды, поэтому "interval: 10"
// дает 10ns; такие значения отклоняются.
const minDuration = time.Second

func checkDuration(name string, d time.Duration) error {
	if d < minDuration {
		return fmt.Errorf("%s must be at least %s, got %s (use a unit, e.g. \"10s\")", name, minDuration, d)
	}
	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
