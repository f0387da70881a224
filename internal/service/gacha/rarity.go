package gacha

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/mapping"
	"github.com/kapu/gacha-tracker-go/internal/util"
)

// RarityResolver: 정규화된 아이템 이름으로 권위 있는 등급을 찾는 리졸버
// 최선 노력(best-effort) 보강 단계이며 절대 실패하지 않는다.
// 조회 실패는 소스가 준 폴백 등급 또는 기본값으로 조용히 대체된다.
type RarityResolver struct {
	mappings *mapping.Repository
	logger   *slog.Logger
}

// NewRarityResolver: 새로운 RarityResolver를 생성합니다.
func NewRarityResolver(mappings *mapping.Repository, logger *slog.Logger) *RarityResolver {
	return &RarityResolver{
		mappings: mappings,
		logger:   logger,
	}
}

// Resolve: 등급을 결정한다. 우선순위는 정확 매핑 → 퍼지 매핑 → 폴백 파싱 → 기본값 순이다.
func (r *RarityResolver) Resolve(ctx context.Context, itemName string, game domain.Game, fallbackRank string) int {
	normalized := util.NormalizeItemName(itemName)

	if normalized != "" {
		if m, err := r.mappings.FindExact(ctx, normalized, game); err == nil && m != nil && m.Rarity != nil {
			return *m.Rarity
		} else if err != nil {
			r.logger.Debug("exact mapping lookup failed", slog.String("name", normalized), slog.Any("error", err))
		}

		firstToken := util.FirstToken(normalized)
		if m, err := r.mappings.FindFuzzy(ctx, normalized, firstToken, game); err == nil && m != nil && m.Rarity != nil {
			return *m.Rarity
		} else if err != nil {
			r.logger.Debug("fuzzy mapping lookup failed", slog.String("name", normalized), slog.Any("error", err))
		}
	}

	if fallbackRank != "" {
		if rank, err := strconv.Atoi(util.TrimSpace(fallbackRank)); err == nil {
			return rank
		}
	}

	return constants.ImportConfig.DefaultRarity
}
