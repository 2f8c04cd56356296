package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Queue     QueueConfig     `yaml:"queue"`
	Slack     SlackConfig     `yaml:"slack"`
	Mail      MailConfig      `yaml:"mail"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	GinMode      string   `yaml:"gin_mode"` // debug, release, test
	AllowOrigins []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// RedisConfig backs both the session store and the task queue.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	Name   string `yaml:"name"`
	Secret string `yaml:"secret"`
	MaxAge int    `yaml:"max_age"`
}

type QueueConfig struct {
	Name        string `yaml:"name"`
	MaxRetry    int    `yaml:"max_retry"`
	Concurrency int    `yaml:"concurrency"`
}

type SlackConfig struct {
	BotToken        string        `yaml:"bot_token"`
	SigningSecret   string        `yaml:"signing_secret"`
	APIURL          string        `yaml:"api_url"`
	ChannelPrefix   string        `yaml:"channel_prefix"`
	MarkerRetention time.Duration `yaml:"marker_retention"`
	PruneSchedule   string        `yaml:"prune_schedule"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	BaseURL  string `yaml:"base_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load reads the YAML file at configPath when it exists, falls back to defaults
// otherwise, and applies environment overrides on top.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	cfg.overrideFromEnv()
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			GinMode:      "debug",
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "rooms.db",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
		Session: SessionConfig{
			Name:   "room_session",
			Secret: "default-secret-key-change-me",
			MaxAge: 86400 * 7,
		},
		Queue: QueueConfig{
			Name:        "room",
			MaxRetry:    3,
			Concurrency: 10,
		},
		Slack: SlackConfig{
			ChannelPrefix:   "room",
			MarkerRetention: 7 * 24 * time.Hour,
			PruneSchedule:   "@every 1h",
		},
		Mail: MailConfig{
			Port: 587,
		},
		Log: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 20,
		},
	}
}

func (c *Config) overrideFromEnv() {
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_DSN", c.Database.DSN)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.Slack.BotToken = getEnv("SLACK_BOT_TOKEN", c.Slack.BotToken)
	c.Slack.SigningSecret = getEnv("SLACK_SIGNING_SECRET", c.Slack.SigningSecret)
	c.Mail.Host = getEnv("SMTP_HOST", c.Mail.Host)
	c.Mail.Username = getEnv("SMTP_USERNAME", c.Mail.Username)
	c.Mail.Password = getEnv("SMTP_PASSWORD", c.Mail.Password)
	c.Mail.From = getEnv("SMTP_FROM", c.Mail.From)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if c.Mail.Host != "" && os.Getenv("SMTP_HOST") != "" {
		c.Mail.Enabled = true
	}
	if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
		c.Mail.Port = port
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = addr
	}
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
