package server

import (
	"log/slog"

	"github.com/kapu/gacha-tracker-go/internal/service/audit"
	"github.com/kapu/gacha-tracker-go/internal/service/gacha"
	"github.com/kapu/gacha-tracker-go/internal/service/progress"
	"github.com/kapu/gacha-tracker-go/internal/service/pull"
)

// APIHandler: 가챠 임포트 API 요청을 처리하는 핸들러입니다.
// 핸들러 메서드는 도메인별 파일로 분리됨:
//   - api_import.go: 임포트 시작 + 진행 상태 폴링/스트리밍
//   - api_pulls.go: 뽑기 기록 조회 + 통계
type APIHandler struct {
	importer *gacha.Importer
	progress progress.Store
	pulls    *pull.Repository
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewAPIHandler: 새로운 API 핸들러를 생성합니다.
func NewAPIHandler(
	importer *gacha.Importer,
	progressStore progress.Store,
	pulls *pull.Repository,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		importer: importer,
		progress: progressStore,
		pulls:    pulls,
		audit:    auditLog,
		logger:   logger,
	}
}
