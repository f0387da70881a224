// Package progress: 임포트 작업의 폴링 가능한 진행 상태 저장소
// 프로세스 로컬 인메모리 백엔드가 기본이며, 다중 프로세스 배포를 위한
// Valkey 백엔드를 선택할 수 있다.
package progress

import (
	"context"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

// Store: jobId 키 기반 진행 상태 저장소 인터페이스
// Set은 실행 중 TTL을, Complete는 종료 후 보존 TTL을 적용한다.
// 만료되었거나 존재하지 않는 작업의 Get은 found=false를 반환한다.
// ("0% 진행"과 구분 가능한 not-found 신호)
type Store interface {
	Set(ctx context.Context, jobID string, snapshot domain.ProgressSnapshot) error
	Complete(ctx context.Context, jobID string, snapshot domain.ProgressSnapshot) error
	Get(ctx context.Context, jobID string) (domain.ProgressSnapshot, bool, error)
	Delete(ctx context.Context, jobID string) error
}
