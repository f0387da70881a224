package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/kapu/gacha-tracker-go/internal/config"
	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/service/database"
	"github.com/kapu/gacha-tracker-go/internal/service/progress"
)

// Runtime 는 타입이다.
type Runtime struct {
	Config *config.Config
	Logger *slog.Logger

	Postgres *database.PostgresService
	Progress progress.Store

	APIRouter *gin.Engine
	APIAddr   string
	APIServer *http.Server

	cleanup func()
}

// Close - 런타임 리소스 정리 (DB, 진행 상태 저장소 연결 해제)
func (r *Runtime) Close() {
	if r != nil && r.cleanup != nil {
		r.cleanup()
	}
}

// Start 는 동작을 수행한다.
func (r *Runtime) Start(errCh chan<- error) {
	if r == nil || r.APIServer == nil {
		return
	}

	go func() {
		if err := r.APIServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if errCh != nil {
				errCh <- err
				return
			}
			if r.Logger != nil {
				r.Logger.Error("HTTP server error", slog.Any("error", err))
			}
		}
	}()

	if r.Logger != nil {
		r.Logger.Info("API server started", slog.String("addr", r.APIAddr))
	}
}

// Shutdown 는 동작을 수행한다.
func (r *Runtime) Shutdown(ctx context.Context) {
	if r == nil || r.APIServer == nil {
		return
	}
	if err := r.APIServer.Shutdown(ctx); err != nil {
		if r.Logger != nil {
			r.Logger.Error("HTTP server shutdown error", slog.Any("error", err))
		}
	}
}

// Run 는 동작을 수행한다.
func (r *Runtime) Run() {
	if r == nil {
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	r.Start(errCh)
	if r.Logger != nil {
		r.Logger.Info("Gacha tracker started, waiting for signals...")
	}

	select {
	case sig := <-sigCh:
		if r.Logger != nil {
			r.Logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		}
	case err := <-errCh:
		if r.Logger != nil {
			r.Logger.Error("Server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.AppTimeout.Shutdown)
	defer cancel()
	r.Shutdown(shutdownCtx)

	if r.Logger != nil {
		r.Logger.Info("Shutdown complete")
	}
}
