package gacha

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/banner"
)

// timeLayout: 업스트림 가챠 로그의 시각 표기 형식
const timeLayout = "2006-01-02 15:04:05"

// Source: 배너 단위로 RawPull 목록을 공급하는 데이터 소스
// FetchBanner는 시간 오름차순으로 정렬된 목록을 반환해야 한다.
// (천장 계산이 배너 내 오름차순 처리에 의존한다)
type Source interface {
	// BannerCodes: 페치 대상 배너 코드를 고정된 순서로 반환한다.
	BannerCodes() []string
	// FetchBanner: 한 배너의 전체 기록을 가져온다. onPage는 페이지를 받을 때마다
	// 해당 페이지의 레코드 수와 함께 호출된다. (진행 상태 반응성용)
	FetchBanner(ctx context.Context, code string, onPage func(fetched int)) ([]domain.RawPull, error)
	// Total: 전체 레코드 수. 미리 알 수 없는 소스(원격 API)는 0을 반환한다.
	Total() int
}

// APISource: 원격 가챠 로그 API를 페이지네이션하는 소스
type APISource struct {
	client  *Client
	game    domain.Game
	authkey string
	logger  *slog.Logger
}

// NewAPISource: 원격 API 소스를 생성한다. authkey는 사용자 URL에서 추출된 값이다.
func NewAPISource(client *Client, game domain.Game, authkey string, logger *slog.Logger) *APISource {
	return &APISource{
		client:  client,
		game:    game,
		authkey: authkey,
		logger:  logger,
	}
}

// BannerCodes: 게임의 표준 배너 코드 전체를 고정된 순서로 반환한다.
func (s *APISource) BannerCodes() []string {
	return banner.Codes(s.game)
}

// Total: 원격 API는 전체 수를 미리 알 수 없다.
func (s *APISource) Total() int {
	return 0
}

// FetchBanner: 한 배너를 빈 페이지 또는 짧은 페이지가 나올 때까지 페이지네이션한다.
// 업스트림은 최신순으로 반환하므로, 완료 후 뒤집어 시간 오름차순으로 돌려준다.
// 커서 오동작에 대비해 배너당 페이지 수에 안전 상한을 둔다.
func (s *APISource) FetchBanner(ctx context.Context, code string, onPage func(fetched int)) ([]domain.RawPull, error) {
	var collected []domain.RawPull
	endID := "0"

	for page := 1; page <= constants.ImportConfig.MaxPagesPerBanner; page++ {
		items, err := s.client.FetchPage(ctx, s.game, s.authkey, code, page, endID)
		if err != nil {
			return nil, fmt.Errorf("page %d of banner %s: %w", page, code, err)
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			collected = append(collected, toRawPull(item, code))
		}
		endID = items[len(items)-1].ID

		if onPage != nil {
			onPage(len(items))
		}

		if len(items) < constants.ImportConfig.PageSize {
			break
		}
	}

	// 최신순 → 오름차순
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}

	s.logger.Debug("banner fetched",
		slog.String("game", s.game.String()),
		slog.String("banner", code),
		slog.Int("records", len(collected)),
	)
	return collected, nil
}

func toRawPull(item apiPullItem, bannerCode string) domain.RawPull {
	t, err := time.ParseInLocation(timeLayout, item.Time, time.UTC)
	if err != nil {
		// 시각을 파싱할 수 없는 레코드는 제로 타임으로 전달되어
		// 오케스트레이터의 레코드 검증 단계에서 걸러진다
		t = time.Time{}
	}

	return domain.RawPull{
		ExternalID: item.ID,
		BannerID:   bannerCode,
		ItemName:   item.Name,
		ItemType:   item.ItemType,
		RankType:   item.RankType,
		Time:       t,
	}
}
