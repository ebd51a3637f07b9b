package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundflow/internal/auditlog"
	"fundflow/internal/clients"
	"fundflow/internal/gateway/handler"
	"fundflow/internal/gateway/service"
	"fundflow/internal/messaging"
	"fundflow/internal/platform/config"
	"fundflow/internal/platform/httpserver"
	"fundflow/internal/platform/logger"
	"fundflow/internal/platform/metrics"
	"fundflow/internal/platform/middleware"
	"fundflow/internal/token"
)

// main wires the authentication gateway. It owns no database; user data
// stays in the users service.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New("gateway")

	m := metrics.New("gateway")
	producer := messaging.NewProducer(cfg.KafkaBrokers, log)
	defer producer.Close()
	audit := auditlog.NewEmitter(producer, messaging.LogChannel, m)

	tokens := token.NewService(cfg.JWTSigningKey, "fundflow", cfg.JWTExpiry)
	svc := service.New(clients.NewUsers(cfg.UsersURL), tokens, audit, log)
	auth := middleware.RequireAuth(tokens, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	handler.New(svc, tokens, log).Register(r, auth)

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting gateway", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
