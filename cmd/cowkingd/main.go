// cmd/cowkingd/main.go
package main

import (
	"context"
	"net/http"
	"time"

	"cowking/engine"
	"cowking/internal/bot"
	"cowking/internal/cache"
	"cowking/internal/config"
	"cowking/internal/database"
	"cowking/internal/server"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	cfg.ApplyLogLevel()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.RedisAddr != "" {
		if err := cache.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
			logrus.Warnf("Redis unavailable, action history disabled: %v", err)
		}
		defer cache.Close()
	} else {
		logrus.Info("Redis not configured, action history disabled")
	}

	if cfg.PostgresDSN != "" {
		if err := database.Connect(ctx, cfg.PostgresDSN); err != nil {
			logrus.Warnf("Postgres unavailable, match persistence disabled: %v", err)
		}
		defer database.Close()
	} else {
		logrus.Info("Postgres not configured, match persistence disabled")
	}

	rules := engine.DefaultRules()
	if cfg.TurnTimerSec > 0 {
		rules.TurnTimerSec = uint16(cfg.TurnTimerSec)
	}

	srv := server.New(rules)
	srv.Game.RevealDelay = time.Duration(cfg.RevealDelayMs) * time.Millisecond
	srv.Game.BotLevel = bot.BotLevel(cfg.BotLevel)

	logrus.Infof("cowkingd listening on %s (match %s)", cfg.ListenAddr, srv.Game.ID)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		logrus.Fatalf("http server: %v", err)
	}
}
