package banner

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

// Model: banners 테이블과 매핑되는 GORM 모델입니다.
type Model struct {
	ID         int64  `gorm:"primaryKey;column:id"`
	BannerID   string `gorm:"column:banner_id;uniqueIndex:idx_banners_code_game,priority:1"`
	Game       string `gorm:"column:game;uniqueIndex:idx_banners_code_game,priority:2"`
	BannerName string `gorm:"column:banner_name"`
	BannerType string `gorm:"column:banner_type"`
}

// TableName 는 동작을 수행한다.
func (Model) TableName() string {
	return "banners"
}

// bannerDefaults: 소스 측 배너 코드 → 표시 이름/타입 정적 테이블
// 외부 설정이 아니라 리졸버 자체가 소유한다. 미등록 코드는 "Unknown Banner"로 생성된다.
var bannerDefaults = map[domain.Game]map[string]struct {
	Name string
	Type domain.BannerType
}{
	domain.GameGenshin: {
		"100": {"Beginners' Wish", domain.BannerBeginner},
		"200": {"Wanderlust Invocation", domain.BannerStandard},
		"301": {"Character Event Wish", domain.BannerCharacter},
		"400": {"Character Event Wish-2", domain.BannerCharacter},
		"302": {"Weapon Event Wish", domain.BannerWeapon},
		"500": {"Chronicled Wish", domain.BannerChronicled},
	},
	domain.GameStarrail: {
		"1":  {"Stellar Warp", domain.BannerStandard},
		"2":  {"Departure Warp", domain.BannerBeginner},
		"11": {"Character Event Warp", domain.BannerCharacter},
		"12": {"Light Cone Event Warp", domain.BannerWeapon},
	},
}

// Codes: 해당 게임에서 페치 대상이 되는 배너 코드를 고정된 순서로 반환한다.
// 임포트 진행률 계산이 이 순서에 의존하므로 결정적이어야 한다.
func Codes(game domain.Game) []string {
	switch game {
	case domain.GameStarrail:
		return []string{"1", "2", "11", "12"}
	default:
		return []string{"100", "200", "301", "400", "302", "500"}
	}
}

// Resolver: 외부 배너 코드를 내부 배너 엔티티로 변환하는 리졸버
// 처음 보는 코드는 지연 생성하며, find-or-create는 유니크 제약 기반 upsert로 원자적이다.
type Resolver struct {
	db     *gorm.DB
	logger *slog.Logger
	group  singleflight.Group
}

// NewResolver: 새로운 배너 Resolver를 생성합니다.
func NewResolver(db *gorm.DB, logger *slog.Logger) *Resolver {
	return &Resolver{
		db:     db,
		logger: logger,
	}
}

// Resolve: (bannerID, game)으로 배너를 조회하고, 없으면 정적 테이블의 기본값으로 생성한다.
// 동시 임포트 작업이 같은 배너를 동시에 리졸브해도 중복 행이 생기지 않는다.
// 같은 키의 동시 호출은 singleflight로 합쳐지고, DB 레벨에서도
// check-then-insert가 아닌 ON CONFLICT DO NOTHING upsert 후 재조회로 원자성을 보장한다.
func (r *Resolver) Resolve(ctx context.Context, bannerID string, game domain.Game) (*domain.Banner, error) {
	key := string(game) + ":" + bannerID
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.resolve(ctx, bannerID, game)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Banner), nil
}

func (r *Resolver) resolve(ctx context.Context, bannerID string, game domain.Game) (*domain.Banner, error) {
	name, bannerType := defaultsFor(bannerID, game)

	m := Model{
		BannerID:   bannerID,
		Game:       string(game),
		BannerName: name,
		BannerType: string(bannerType),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "banner_id"}, {Name: "game"}},
			DoNothing: true,
		}).
		Create(&m).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert banner: %w", err)
	}

	// DoNothing으로 기존 행과 충돌한 경우 ID가 채워지지 않으므로 항상 재조회한다
	var existing Model
	err = r.db.WithContext(ctx).
		Where("banner_id = ? AND game = ?", bannerID, string(game)).
		First(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load banner after upsert: %w", err)
	}

	return &domain.Banner{
		ID:         existing.ID,
		BannerID:   existing.BannerID,
		Game:       domain.Game(existing.Game),
		BannerName: existing.BannerName,
		BannerType: domain.BannerType(existing.BannerType),
	}, nil
}

func defaultsFor(bannerID string, game domain.Game) (string, domain.BannerType) {
	if perGame, ok := bannerDefaults[game]; ok {
		if d, ok := perGame[bannerID]; ok {
			return d.Name, d.Type
		}
	}
	return fmt.Sprintf("Unknown Banner (%s)", bannerID), domain.BannerStandard
}
