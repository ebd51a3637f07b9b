package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundflow/internal/auditlog"
	"fundflow/internal/messaging"
	"fundflow/internal/platform/config"
	"fundflow/internal/platform/httpserver"
	"fundflow/internal/platform/logger"
	"fundflow/internal/platform/metrics"
	"fundflow/internal/platform/middleware"
	"fundflow/internal/token"
	"fundflow/internal/users/handler"
	"fundflow/internal/users/service"
	"fundflow/internal/users/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New("users")

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.NewPostgres(db)
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	m := metrics.New("users")
	producer := messaging.NewProducer(cfg.KafkaBrokers, log)
	defer producer.Close()
	audit := auditlog.NewEmitter(producer, messaging.LogChannel, m)

	svc := service.New(st, audit)

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := svc.SeedAdmin(context.Background(), cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			log.Error("seed admin", "error", err)
			os.Exit(1)
		}
	}

	tokens := token.NewService(cfg.JWTSigningKey, "fundflow", cfg.JWTExpiry)
	auth := middleware.RequireAuth(tokens, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	handler.New(svc, log).Register(r, auth)

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting users service", "addr", cfg.Addr)

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
