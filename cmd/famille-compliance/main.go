package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/config"
	httpapi "github.com/junkusano/famille-shift-matching-sub002/internal/http"
	"github.com/junkusano/famille-shift-matching-sub002/internal/logger"
	"github.com/junkusano/famille-shift-matching-sub002/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "famille-compliance")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	svc, err := service.NewComplianceService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create compliance service",
			zap.Error(err),
		)
	}
	defer svc.Close()

	handler := httpapi.NewComplianceHandler(svc.Batch(), svc.Alerts(), cfg.HTTP.CronToken, log)
	router := httpapi.NewRouter(log)
	router.RegisterComplianceRoutes(handler)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Compliance service listening",
			zap.String("addr", cfg.HTTP.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
		}
	case err := <-serverErrChan:
		log.Fatal("Server error",
			zap.Error(err),
		)
	}

	log.Info("Compliance service stopped")
}
