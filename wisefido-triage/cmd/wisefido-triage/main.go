package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"owlback/owl-common/database"
	"owlback/owl-common/logger"
	"owlback/owl-common/mqtt"
	rediscommon "owlback/owl-common/redis"
	"owlback/wisefido-triage/internal/bridge"
	"owlback/wisefido-triage/internal/config"
	httpapi "owlback/wisefido-triage/internal/http"
	"owlback/wisefido-triage/internal/notify"
	"owlback/wisefido-triage/internal/repository"
	"owlback/wisefido-triage/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "wisefido-triage")
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log config (%v), using defaults\n", err)
		if log, err = logger.NewLoggerWithDefaults("wisefido-triage"); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	builder := bridge.NewBuilder(cfg.Triage.Bin, cfg.Triage.Args...)
	runner := &bridge.ExecRunner{Timeout: cfg.Triage.Timeout, Dir: cfg.Triage.WorkDir}
	b := bridge.New(builder, runner, log, bridge.WithSerializedWrites(cfg.Triage.SerializeWrites))
	log.Info("triage program configured",
		zap.String("bin", cfg.Triage.Bin),
		zap.Strings("args", cfg.Triage.Args),
		zap.String("workdir", cfg.Triage.WorkDir),
		zap.Duration("timeout", cfg.Triage.Timeout),
		zap.Bool("serialize_writes", cfg.Triage.SerializeWrites),
	)

	// 审计：DB 可用时写 Postgres，否则回退到内存
	var db *sql.DB
	var audit repository.AuditRepo
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database, 5*time.Second); err == nil {
			repo := repository.NewPostgresAuditRepo(d)
			schemaCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = repo.EnsureSchema(schemaCtx)
			cancel()
			if err != nil {
				log.Warn("failed to ensure audit schema, falling back to memory", zap.Error(err))
				_ = database.Close(d)
			} else {
				db = d
				audit = repo
				log.Info("DB enabled for triage audit")
			}
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory", zap.Error(err))
		}
	}
	if audit == nil {
		audit = repository.NewMemoryAuditRepo(cfg.AuditMemoryLimit)
	}

	// 事件发布：Redis Streams / MQTT 均为可选
	var publishers notify.Multi
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		rc := rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(context.Background(), rc, 3*time.Second); err != nil {
			log.Warn("Redis enabled but unreachable, triage events will not be streamed", zap.Error(err))
			_ = rediscommon.Close(rc)
		} else {
			redisClient = rc
			publishers = append(publishers, notify.NewRedisStreamPublisher(rc, cfg.EventStream, cfg.StreamMaxLen))
			log.Info("publishing triage events to Redis stream", zap.String("stream", cfg.EventStream))
		}
	}
	var mqttClient *mqtt.Client
	if cfg.MQTTEnabled {
		if mc, err := mqtt.NewClient(&cfg.MQTT); err != nil {
			log.Warn("MQTT enabled but connection failed, triage events will not be published", zap.Error(err))
		} else {
			mqttClient = mc
			publishers = append(publishers, notify.NewMQTTPublisher(mc, cfg.MQTTTopic, mc.QoS()))
			log.Info("publishing triage events to MQTT", zap.String("topic", cfg.MQTTTopic))
		}
	}
	var publisher notify.Publisher = notify.Nop{}
	if len(publishers) > 0 {
		publisher = publishers
	}

	svc := service.NewTriageService(b, audit, publisher, log)

	router := httpapi.NewRouter(log)
	router.RegisterTriageRoutes(httpapi.NewTriageHandler(svc, log))
	router.RegisterLegacyRoutes(httpapi.NewLegacyHandler(svc))
	if mqttClient != nil {
		router.AddHealthCheck("mqtt", mqttClient.IsConnected)
	}
	if cfg.HTTP.StaticDir != "" {
		if info, err := os.Stat(cfg.HTTP.StaticDir); err == nil && info.IsDir() {
			router.RegisterStaticRoutes(cfg.HTTP.StaticDir)
		} else {
			log.Warn("static directory not found, serving API only", zap.String("dir", cfg.HTTP.StaticDir))
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	}

	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = rediscommon.Close(redisClient)
	}
	if db != nil {
		_ = database.Close(db)
	}
}
