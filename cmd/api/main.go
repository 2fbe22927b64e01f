package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/shipway/shipway/internal/auth"
	"github.com/shipway/shipway/internal/config"
	"github.com/shipway/shipway/internal/db"
	"github.com/shipway/shipway/internal/kafka"
	"github.com/shipway/shipway/internal/logger"
	"github.com/shipway/shipway/internal/repository/mongodb"
	"github.com/shipway/shipway/internal/server"
	"github.com/shipway/shipway/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	log := logger.New(zapcore.DebugLevel)
	defer log.Sync()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	database, err := db.NewDb(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := database.Close(closeCtx); err != nil {
			log.Error("database close failed", zap.Error(err))
		}
	}()

	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatal("index setup failed", zap.Error(err))
	}

	orgRepo := mongodb.NewOrganizationRepo(database)
	orderRepo := mongodb.NewOrderRepo(database)

	orgService := service.NewOrganizationService(orgRepo)
	orderService := service.NewOrderService(orderRepo, orgRepo, database)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("audit trail publishing to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	} else {
		producer = kafka.NewConsoleProducer(log)
		log.Info("no kafka brokers configured, audit trail goes to the console")
	}

	audit := server.NewAuditManager(producer, log, cfg.AuditWorkers, cfg.AuditBatchSize, cfg.AuditFlushWait)

	srv := server.New(
		server.Config{Port: cfg.HTTPPort, CookieSecure: cfg.CookieSecure},
		orgService, orderService, tokens, audit, log,
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
		return
	}
	log.Info("server stopped gracefully")
}
