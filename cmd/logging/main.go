package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundflow/internal/auditlog/sink"
	"fundflow/internal/auditlog/store"
	"fundflow/internal/messaging"
	"fundflow/internal/platform/config"
	"fundflow/internal/platform/httpserver"
	"fundflow/internal/platform/logger"
	"fundflow/internal/platform/metrics"
	"fundflow/internal/platform/middleware"
	"fundflow/pkg/httputil"
)

// main wires the audit trail service: a broker consumer that persists audit
// events and a small HTTP surface for reading recent entries. If the broker
// stays unreachable past the retry budget the process exits non-zero so the
// orchestrator restarts it.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New("logging")

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

	m := metrics.New("logging")
	s := sink.New(st, log, m)
	consumer := messaging.NewConsumer(cfg.KafkaBrokers, messaging.LogChannel, "logging", cfg.SubscribeRetries, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Run(ctx, s.Handle)
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/recent", func(w http.ResponseWriter, req *http.Request) {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		if limit <= 0 || limit > 500 {
			limit = 100
		}
		records, err := st.Recent(req.Context(), limit)
		if err != nil {
			log.ErrorContext(req.Context(), "read audit log failed", "error", err)
			httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}
		if records == nil {
			records = []store.Record{}
		}
		httputil.WriteJSON(w, http.StatusOK, records)
	})

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting logging service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	var exitCode int
	select {
	case err := <-consumerErr:
		if err != nil && ctx.Err() == nil {
			log.Error("consumer stopped", "error", err)
			exitCode = 1
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	os.Exit(exitCode)
}
