package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kapu/gacha-tracker-go/internal/config"
	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/server"
	"github.com/kapu/gacha-tracker-go/internal/service/audit"
	"github.com/kapu/gacha-tracker-go/internal/service/banner"
	"github.com/kapu/gacha-tracker-go/internal/service/database"
	"github.com/kapu/gacha-tracker-go/internal/service/gacha"
	"github.com/kapu/gacha-tracker-go/internal/service/mapping"
	"github.com/kapu/gacha-tracker-go/internal/service/progress"
	"github.com/kapu/gacha-tracker-go/internal/service/pull"
)

// ProvidePostgres: PostgreSQL 연결을 수립하고 서비스 테이블을 마이그레이션합니다.
func ProvidePostgres(cfg *config.Config, logger *slog.Logger) (*database.PostgresService, error) {
	pg, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := pg.Migrate(&pull.Model{}, &mapping.Model{}, &banner.Model{}); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return pg, nil
}

// ProvideProgressStore: 설정에 따라 진행 상태 저장소 백엔드를 선택합니다.
// 단일 프로세스 배포는 인메모리, 다중 프로세스 배포는 Valkey를 사용합니다.
func ProvideProgressStore(cfg *config.Config, logger *slog.Logger) (progress.Store, func(), error) {
	ttl := constants.ImportConfig.ProgressTTL
	retention := constants.ImportConfig.ProgressRetention

	if cfg.Progress.Backend == "valkey" {
		store, err := progress.NewValkeyStore(progress.ValkeyConfig{
			Host:     cfg.Progress.Host,
			Port:     cfg.Progress.Port,
			Password: cfg.Progress.Password,
			DB:       cfg.Progress.DB,
		}, ttl, retention, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	store := progress.NewMemoryStore(ttl, retention)
	logger.Info("progress store initialized", slog.String("backend", "memory"))
	return store, store.Close, nil
}

// ProvideAuditLog: 임포트 작업 이력 기록기를 생성합니다.
func ProvideAuditLog(cfg *config.Config, logger *slog.Logger) *audit.Logger {
	return audit.NewLogger(filepath.Join(cfg.Logging.Dir, "imports.log"), logger)
}

// ProvideImporter: 임포트 파이프라인을 조립합니다.
func ProvideImporter(pg *database.PostgresService, store progress.Store, auditLog *audit.Logger, logger *slog.Logger) (*gacha.Importer, *pull.Repository) {
	db := pg.GetGormDB()
	pulls := pull.NewRepository(db, logger)

	importer := gacha.NewImporter(
		gacha.NewClient(nil, logger),
		pulls,
		banner.NewResolver(db, logger),
		gacha.NewRarityResolver(mapping.NewRepository(db, logger), logger),
		gacha.NewDuplicateDetector(pulls, constants.ImportConfig.DedupeBuffer),
		gacha.NewPityCalculator(pulls),
		store,
		logger,
	)
	importer.SetAuditLog(auditLog)
	return importer, pulls
}

// BuildRuntime: 설정과 로거로부터 서비스 런타임 전체를 조립합니다.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pg, err := ProvidePostgres(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("런타임 초기화 실패: %w", err)
	}

	store, closeStore, err := ProvideProgressStore(cfg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("런타임 초기화 실패: %w", err)
	}

	auditLog := ProvideAuditLog(cfg, logger)
	importer, pulls := ProvideImporter(pg, store, auditLog, logger)
	apiHandler := server.NewAPIHandler(importer, store, pulls, auditLog, logger)

	router, err := ProvideAPIRouter(ctx, cfg, logger, apiHandler)
	if err != nil {
		closeStore()
		_ = pg.Close()
		return nil, fmt.Errorf("런타임 초기화 실패: %w", err)
	}

	addr := ProvideAPIAddr(cfg)
	runtime := &Runtime{
		Config:    cfg,
		Logger:    logger,
		Postgres:  pg,
		Progress:  store,
		APIRouter: router,
		APIAddr:   addr,
		APIServer: ProvideAPIServer(addr, router),
		cleanup: func() {
			closeStore()
			_ = pg.Close()
		},
	}
	return runtime, nil
}
