package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/elemahana/farm-api/internal/config"
	api "github.com/elemahana/farm-api/internal/http"
	"github.com/elemahana/farm-api/internal/log"
	"github.com/elemahana/farm-api/internal/metrics"
	"github.com/elemahana/farm-api/internal/oauth"
	"github.com/elemahana/farm-api/internal/queue"
	"github.com/elemahana/farm-api/internal/repo"
)

// @title Elemahana Farm API
// @version 1.0
// @description Farm-management REST API with cookie/JWT/OAuth authentication.
func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.IsProd())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	tracer.Start(tracer.WithService("farm-api"), tracer.WithEnv(cfg.Env))
	defer tracer.Stop()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.DB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureUserIndexes(ctx); err != nil {
		logger.Fatal("mongo indexes", zap.Error(err))
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		p, err := queue.NewRabbit(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
		pub = p
	}
	defer pub.Close()

	google := oauth.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret,
		cfg.Google.RedirectURI, cfg.Google.StateSecret)

	h := api.NewHandler(store, cfg, google, rds, pub)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("farm-api listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
