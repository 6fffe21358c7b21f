package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/psicoasis/oasis-backend/internal/api"
	"github.com/psicoasis/oasis-backend/internal/audit"
	"github.com/psicoasis/oasis-backend/internal/config"
	"github.com/psicoasis/oasis-backend/internal/content"
	"github.com/psicoasis/oasis-backend/internal/db"
	"github.com/psicoasis/oasis-backend/internal/identity"
	redisclient "github.com/psicoasis/oasis-backend/internal/redis"
	"github.com/psicoasis/oasis-backend/internal/stats"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Apply migrations before anything touches the schema
	if err := db.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migrations applied")

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	recorder := audit.NewPgRecorder(pgPool)
	identitySvc := identity.NewService(identity.NewPgRepository(pgPool), recorder)
	contentSvc := content.NewService(content.NewPgRepository(pgPool))
	statsSvc := stats.NewService(stats.NewPgRepository(pgPool))

	// One-time bootstrap: the default admin and the singleton blog are
	// created here, never from inside a request handler.
	bootCtx, cancelBoot := context.WithTimeout(rootCtx, 10*time.Second)
	created, err := identitySvc.EnsureDefaultAdmin(bootCtx)
	if err != nil {
		cancelBoot()
		log.Fatalf("bootstrap default admin: %v", err)
	}
	if created {
		log.Println("default admin created")
	}
	if _, err := contentSvc.EnsureDefaultBlog(bootCtx); err != nil {
		cancelBoot()
		log.Fatalf("bootstrap default blog: %v", err)
	}
	cancelBoot()

	limiter := redisclient.NewRateLimiter(rdb, cfg.RateLimitWindow, cfg.RateLimitMax)

	router := api.NewRouter(api.RouterConfig{
		Identity: identitySvc,
		Content:  contentSvc,
		Stats:    statsSvc,
		Limiter:  limiter,
		PgPool:   pgPool,
		Redis:    rdb,
		Env:      cfg.Env,
		Version:  version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatalf("http server error: %v", err)
	case <-rootCtx.Done():
	}

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
