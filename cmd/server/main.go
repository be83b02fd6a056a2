package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/openexchange/matchbook/config"
	"github.com/openexchange/matchbook/pkg/api"
	"github.com/openexchange/matchbook/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config (falls back to CONFIG_FILE, then defaults)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" || os.Getenv("CONFIG_FILE") != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			os.Exit(1)
		}
	}

	logger, err := logging.Init(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() // nolint

	server := api.NewServer(cfg.Server)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Handler(),
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("intake server starting",
			zap.String("service", cfg.ServiceName),
			zap.String("addr", cfg.Server.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-sigs
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}

	logger.Info("exited cleanly")
}
