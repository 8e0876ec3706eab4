package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"brandai_backend/internal/app/di"
	"brandai_backend/internal/app/router"
	"brandai_backend/internal/config"
	brandhandler "brandai_backend/internal/feature/branddna/transport/handler"
	critiquehandler "brandai_backend/internal/feature/critique/transport/handler"
	webhandler "brandai_backend/internal/feature/web/transport/handler"
	workflowadapters "brandai_backend/internal/feature/workflow/adapters"
	workflowhandler "brandai_backend/internal/feature/workflow/transport/handler"
	infradb "brandai_backend/internal/platform/db"
	platformhandler "brandai_backend/internal/platform/http/handler"
	jwtmw "brandai_backend/internal/platform/jwt"
	"brandai_backend/internal/platform/logging"
	infraredis "brandai_backend/internal/platform/redis"
)

const (
	dbConnectTimeout = 30 * time.Second
	janitorInterval  = 10 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	cfg.LogSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Redisが無い場合のみDBにセッションを保存する
	var db *gorm.DB
	if rdb == nil {
		db, err = infradb.OpenDB(cfg.DB, dbConnectTimeout, &workflowadapters.SessionModel{})
		if err != nil {
			slog.Error("failed to open database", "driver", cfg.DB.Driver, "error", err)
			os.Exit(1)
		}
		go runJanitor(ctx, workflowadapters.NewSessionGorm(db))
	}

	// Usecase
	uc := di.NewUsecases(ctx, cfg, rdb)
	defer uc.Close()
	workflow := di.NewWorkflow(cfg, uc, di.NewSessionRepository(rdb, db))

	// Handler
	handlers := router.Handlers{
		Brand:    brandhandler.NewBrandDNAHandler(uc.Brand),
		Critique: critiquehandler.NewCritiqueHandler(uc.Critique, cfg.Upload.MaxBytes),
		Workflow: workflowhandler.NewWorkflowHandler(workflow, cfg.Upload.MaxBytes),
		Web:      webhandler.NewWebHandler(workflow, cfg.Upload.MaxBytes),
		Health: platformhandler.NewHealthHandler(
			platformhandler.GeminiCheck(uc.Gemini.Configured),
			platformhandler.RedisCheck(rdb),
		),
	}

	// ルータ生成
	r := router.NewRouter(handlers, router.Options{
		Sessions:    jwtmw.NewGenerator(cfg.Session.Secret, cfg.Session.TTL),
		Cookie:      jwtmw.CookieOptions{Secure: cfg.Session.CookieSecure},
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// expiredSessionDeleter は期限切れセッションを削除できるストアです。
type expiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// runJanitor は期限切れセッションを定期的に削除します。Redisの場合はTTLで消えるため不要です。
func runJanitor(ctx context.Context, store expiredSessionDeleter) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				slog.Warn("failed to delete expired sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions deleted", "count", n)
			}
		}
	}
}
