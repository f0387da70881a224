package gacha

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/pull"
	"github.com/kapu/gacha-tracker-go/internal/util"
)

// DuplicateDetector: 이번 세션 이전에 이미 영속화된 레코드의 재임포트를 판별한다.
//
// 10연차 한 번은 같은 time 값을 공유하는 여러 레코드를 만들므로 (uid, banner,
// game, time)의 동일성만으로는 중복이 아니다. 중복은 "이전의 별개 임포트
// 세션에서 이미 저장된 같은 레코드"다. 세션 경계는 행의 created_at이
// 세션 시작 시각에서 버퍼 윈도우를 뺀 시점보다 이른지로 추정한다.
// 현재 세션이 쓰는 중인 행은 created_at이 세션 시작 이후이므로 제외된다.
//
// 버퍼 윈도우 안에서 연달아 시작된 두 세션은 서로를 같은 세션으로 오판할 수
// 있다. 이 휴리스틱의 경계는 테스트로 고정해 둔다.
type DuplicateDetector struct {
	pulls  *pull.Repository
	buffer time.Duration
}

// NewDuplicateDetector: 주어진 버퍼 윈도우로 중복 검출기를 생성합니다.
func NewDuplicateDetector(pulls *pull.Repository, buffer time.Duration) *DuplicateDetector {
	return &DuplicateDetector{
		pulls:  pulls,
		buffer: buffer,
	}
}

// IsDuplicate: 정규화된 이름 + 배너 + 정확한 시각이 일치하는 기존 레코드가
// 이전 세션에 존재하면 true를 반환한다.
func (d *DuplicateDetector) IsDuplicate(ctx context.Context, uid, normalizedName, bannerID string, game domain.Game, t time.Time, sessionStart time.Time) (bool, error) {
	cutoff := sessionStart.Add(-d.buffer)

	candidates, err := d.pulls.FindAtTime(ctx, uid, bannerID, game, t, cutoff)
	if err != nil {
		return false, fmt.Errorf("duplicate lookup failed: %w", err)
	}

	for _, existing := range candidates {
		if util.NormalizeItemName(existing.ItemName) == normalizedName {
			return true, nil
		}
	}
	return false, nil
}
