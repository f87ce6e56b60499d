// lmia-compare-service
//
// Backend for the job comparison and alerting features of the LMIA job
// search application:
//   - comparison selection state, recent/saved comparisons, comparison queue
//   - comparison suggestions derived from saved jobs
//   - job alerts with criteria normalisation and periodic digest evaluation
//   - dataset, NOC profile, and location lookups
//
// Persists comparisons in Redis, alerts and datasets in PostgreSQL.
// Publishes user notifications to Redis for Gateway SSE forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lmia/compare-service/internal/alerts"
	"lmia/compare-service/internal/compare"
	"lmia/compare-service/internal/config"
	"lmia/compare-service/internal/db"
	"lmia/compare-service/internal/jobs"
	"lmia/compare-service/internal/notify"
	"lmia/compare-service/internal/scheduler"
	"lmia/compare-service/internal/store"
	"lmia/compare-service/internal/suggest"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[compare-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[compare-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[compare-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[compare-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[compare-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[compare-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[compare-service] Redis connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	notifier := notify.NewRedisNotifier(rdb)
	jobsSvc := jobs.NewService(pool)
	compareLog := compare.NewLog(store.NewRedisKV(rdb))
	alertStore := alerts.NewPGStore(pool)
	alertSvc := alerts.NewService(alertStore, notifier)

	// ── Digest scheduler ─────────────────────────────────────────────────────
	digest := alerts.NewDigest(alertStore, jobsSvc, notifier)
	sched := scheduler.New(digest, cfg.DigestIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[compare-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	compare.NewHandler(compareLog, compare.NewSessions()).RegisterRoutes(mux)
	suggest.NewHandler(jobsSvc).RegisterRoutes(mux)
	alerts.NewHandler(alertSvc, jobsSvc.TierByNOC).RegisterRoutes(mux)
	jobs.NewHandler(jobsSvc).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[compare-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[compare-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[compare-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[compare-service] Shutdown error: %v", err)
	}
	log.Println("[compare-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "compare-service",
		"version": version,
	})
}
