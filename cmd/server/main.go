package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/grdmnt/upbank-actual/pkg/actual"
	"github.com/grdmnt/upbank-actual/pkg/config"
	"github.com/grdmnt/upbank-actual/pkg/server"
	"github.com/grdmnt/upbank-actual/pkg/up"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "upbank-actual",
	})

	var port = flag.String("port", "", "Server port (overrides PORT)")
	flag.Parse()

	cfg, err := config.Build("", nil)
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	upClient := up.NewClient(cfg.UpAPIToken, cfg.UpAPIURL, logger)
	actualClient := actual.New(actual.Options{
		ServerURL:          cfg.ActualServerURL,
		Password:           cfg.ActualPassword,
		BudgetID:           cfg.ActualBudgetID,
		EncryptionPassword: cfg.ActualEncryptionPassword,
		Logger:             logger,
	})

	srv := server.New(cfg, logger, upClient, actualClient)

	done := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
		logger.Info("starting server", "addr", addr, "mapped_accounts", len(cfg.AccountMap))
		done <- srv.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			logger.Fatal("server error", "err", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}
}
