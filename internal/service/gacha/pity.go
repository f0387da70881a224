package gacha

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/pull"
)

// PityCalculator: 삽입하려는 뽑기의 천장 카운터를 계산한다.
//
// 카운터는 1부터 시작한다. (삽입되는 뽑기 자신이 스트릭의 counter번째 차수)
// 시간 내림차순으로 과거 뽑기를 거슬러 올라가며, 최고 등급을 만나면 멈추고
// 아니면 카운터를 올린다. 러닝 캐시가 아니라 레코드 삽입 시점마다 계산하므로,
// 배너 내 오름차순 처리 순서가 지켜져야 정확하다.
type PityCalculator struct {
	pulls *pull.Repository
}

// NewPityCalculator: 새로운 PityCalculator를 생성합니다.
func NewPityCalculator(pulls *pull.Repository) *PityCalculator {
	return &PityCalculator{pulls: pulls}
}

// Compute: beforeTime보다 엄격히 이른 기록만으로 천장 카운터를 계산한다.
// 과거 기록이 없으면 1이다.
func (p *PityCalculator) Compute(ctx context.Context, uid, bannerID string, game domain.Game, beforeTime time.Time) (int, error) {
	prior, err := p.pulls.ListBefore(ctx, uid, bannerID, game, beforeTime)
	if err != nil {
		return 0, fmt.Errorf("pity history lookup failed: %w", err)
	}

	counter := 1
	topRarity := game.TopRarity()
	for _, record := range prior {
		if record.RankType == topRarity {
			break
		}
		counter++
	}
	return counter, nil
}
