package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audioai/internal/config"
	"audioai/internal/inference"
	"audioai/internal/metrics"
	"audioai/internal/router"
	"audioai/internal/service"
	"audioai/pkg/log"
)

const serviceName = "audioai"

func main() {
	bootLog := log.NewLogger(&log.Option{ServiceName: serviceName, EncodeType: log.EncodeTypeConsole})
	if err := config.LoadDotEnv(); err != nil {
		bootLog.Fatalf("failed to load .env: %v", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = config.DefaultPath
	}
	manager, err := config.NewManager(path, bootLog)
	if err != nil {
		bootLog.Fatalf("failed to load config: %v", err)
	}
	cfg := manager.Get()

	logger := log.NewLogger(&log.Option{
		Mode:        cfg.Server.Mode,
		ServiceName: serviceName,
		EncodeType:  log.ParseEncodeType(cfg.Log.Encode),
	})
	defer func() {
		_ = logger.Sync()
	}()

	// 模型服务只初始化一次，所有请求共用
	model := inference.NewSenseVoice(inference.Config{
		Endpoint: cfg.Model.Endpoint,
		ModelID:  cfg.Model.ModelID,
		Device:   cfg.Model.Device,
		Timeout:  cfg.Model.Timeout,
	}, logger)

	probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err = model.Health(probeCtx); err != nil {
		logger.Warnf("model service %s not ready: %v", cfg.Model.Endpoint, err)
	}
	probeCancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	collector := metrics.NewCollector(serviceName)
	analyzer := service.NewAnalyzer(model, manager, logger, collector)
	r := router.NewRouter(ctx, router.Deps{
		Config:   manager,
		Logger:   logger,
		Analyzer: analyzer,
		Metrics:  collector,
	})

	if err = manager.Watch(ctx); err != nil {
		logger.Warnf("config hot reload disabled: %v", err)
	}

	s := http.Server{
		Addr:           cfg.Addr(),
		Handler:        r,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Infof("listening on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("s.ListenAndServe err: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM) // 接收系统信号量
	<-quit
	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}

	logger.Info("server exiting")
}
