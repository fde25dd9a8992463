// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries every runtime setting for the service. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	ListenAddr    string // HTTP/WebSocket listen address
	RedisAddr     string // historian queue; empty disables Redis
	RedisPassword string
	PostgresDSN   string // match persistence; empty disables Postgres
	LogLevel      string

	TurnTimerSec  int // 0 disables the selection/row-choice timer
	RevealDelayMs int // presentation pause between reveal and resolution
	BotLevel      int // strategy for fill bots
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win because godotenv does
// not overwrite existing keys.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("config: no .env file loaded: %v", err)
	}

	cfg := &Config{
		ListenAddr:    getEnv("COWKING_LISTEN_ADDR", ":8080"),
		RedisAddr:     getEnv("COWKING_REDIS_ADDR", ""),
		RedisPassword: getEnv("COWKING_REDIS_PASSWORD", ""),
		PostgresDSN:   getEnv("COWKING_POSTGRES_DSN", ""),
		LogLevel:      getEnv("COWKING_LOG_LEVEL", "info"),
		TurnTimerSec:  getEnvInt("COWKING_TURN_TIMER_SEC", 30),
		RevealDelayMs: getEnvInt("COWKING_REVEAL_DELAY_MS", 1500),
		BotLevel:      getEnvInt("COWKING_BOT_LEVEL", 1),
	}
	return cfg
}

// ApplyLogLevel sets the global logrus level from the config, defaulting to
// info on parse failure.
func (c *Config) ApplyLogLevel() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("config: invalid log level %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}
