package pull

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

// Model: pulls 테이블과 매핑되는 GORM 모델입니다.
// created_at은 행이 영속화된 시점이며, 중복 판정의 세션 경계 휴리스틱에 사용된다.
type Model struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	ExternalID string    `gorm:"column:external_id;index:idx_pulls_external"`
	UID        string    `gorm:"column:uid;index:idx_pulls_scope_time,priority:2"`
	Game       string    `gorm:"column:game;index:idx_pulls_scope_time,priority:1"`
	BannerID   string    `gorm:"column:banner_id;index:idx_pulls_scope_time,priority:3"`
	ItemName   string    `gorm:"column:item_name"`
	ItemType   string    `gorm:"column:item_type"`
	RankType   int       `gorm:"column:rank_type"`
	Time       time.Time `gorm:"column:time;index:idx_pulls_scope_time,priority:4"`
	PityCount  int       `gorm:"column:pity_count"`
	IsFeatured bool      `gorm:"column:is_featured"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName: GORM 모델이 매핑될 데이터베이스 테이블 이름을 반환한다. ("pulls")
func (Model) TableName() string {
	return "pulls"
}

// RankCount: 등급별 뽑기 횟수 집계 행
type RankCount struct {
	RankType int   `json:"rankType"`
	Count    int64 `json:"count"`
}

// BannerCount: 배너별 뽑기 횟수 집계 행
type BannerCount struct {
	BannerID string `json:"bannerId"`
	Count    int64  `json:"count"`
}

// Repository: 뽑기 레코드에 대한 데이터베이스 접근을 담당하는 저장소
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 pull Repository 인스턴스를 생성합니다.
func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create: 뽑기 레코드 하나를 영속화한다. 레코드 단위로 원자적이다.
func (r *Repository) Create(ctx context.Context, record *domain.PullRecord) error {
	m := toModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create pull: %w", err)
	}
	record.ID = m.ID
	return nil
}

// FindAtTime: 같은 (uid, banner, game, time) 스코프에서 createdBefore 이전에
// 영속화된 레코드들을 조회한다. 중복 검사 전용 쿼리 형태다.
func (r *Repository) FindAtTime(ctx context.Context, uid, bannerID string, game domain.Game, t time.Time, createdBefore time.Time) ([]*domain.PullRecord, error) {
	var models []Model
	err := r.db.WithContext(ctx).
		Where("game = ? AND uid = ? AND banner_id = ? AND time = ?", string(game), uid, bannerID, t).
		Where("created_at < ?", createdBefore).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query pulls at time: %w", err)
	}

	records := make([]*domain.PullRecord, len(models))
	for i := range models {
		records[i] = toDomain(&models[i])
	}
	return records, nil
}

// ListBefore: beforeTime보다 엄격히 이른 뽑기들을 시간 내림차순으로 조회한다.
// 천장(pity) 계산 전용 쿼리 형태다.
func (r *Repository) ListBefore(ctx context.Context, uid, bannerID string, game domain.Game, beforeTime time.Time) ([]*domain.PullRecord, error) {
	var models []Model
	err := r.db.WithContext(ctx).
		Where("game = ? AND uid = ? AND banner_id = ? AND time < ?", string(game), uid, bannerID, beforeTime).
		Order("time DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query pulls before time: %w", err)
	}

	records := make([]*domain.PullRecord, len(models))
	for i := range models {
		records[i] = toDomain(&models[i])
	}
	return records, nil
}

// ListRecent: 최근 뽑기 목록을 시간 내림차순으로 조회한다. bannerID가 비어있으면 전체 배너.
func (r *Repository) ListRecent(ctx context.Context, uid string, game domain.Game, bannerID string, limit int) ([]*domain.PullRecord, error) {
	query := r.db.WithContext(ctx).
		Where("game = ? AND uid = ?", string(game), uid)
	if bannerID != "" {
		query = query.Where("banner_id = ?", bannerID)
	}

	var models []Model
	if err := query.Order("time DESC").Order("id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent pulls: %w", err)
	}

	records := make([]*domain.PullRecord, len(models))
	for i := range models {
		records[i] = toDomain(&models[i])
	}
	return records, nil
}

// CountTotal: 사용자/게임 스코프의 전체 뽑기 수를 반환한다.
func (r *Repository) CountTotal(ctx context.Context, uid string, game domain.Game) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Model{}).
		Where("game = ? AND uid = ?", string(game), uid).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pulls: %w", err)
	}
	return count, nil
}

// CountByRank: 등급별 뽑기 횟수를 집계한다.
func (r *Repository) CountByRank(ctx context.Context, uid string, game domain.Game) ([]RankCount, error) {
	var rows []RankCount
	err := r.db.WithContext(ctx).
		Model(&Model{}).
		Select("rank_type, COUNT(*) AS count").
		Where("game = ? AND uid = ?", string(game), uid).
		Group("rank_type").
		Order("rank_type DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pulls by rank: %w", err)
	}
	return rows, nil
}

// CountByBanner: 배너별 뽑기 횟수를 집계한다.
func (r *Repository) CountByBanner(ctx context.Context, uid string, game domain.Game) ([]BannerCount, error) {
	var rows []BannerCount
	err := r.db.WithContext(ctx).
		Model(&Model{}).
		Select("banner_id, COUNT(*) AS count").
		Where("game = ? AND uid = ?", string(game), uid).
		Group("banner_id").
		Order("banner_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pulls by banner: %w", err)
	}
	return rows, nil
}

// CurrentPity: 해당 배너에서 마지막 최고 등급 이후 누적된 뽑기 수를 반환한다.
// 다음 뽑기가 천장 스트릭에서 몇 번째인지가 아니라, 지금까지 쌓인 횟수다.
func (r *Repository) CurrentPity(ctx context.Context, uid, bannerID string, game domain.Game) (int, error) {
	var last Model
	err := r.db.WithContext(ctx).
		Where("game = ? AND uid = ? AND banner_id = ? AND rank_type = ?", string(game), uid, bannerID, game.TopRarity()).
		Order("time DESC").
		First(&last).Error

	query := r.db.WithContext(ctx).
		Model(&Model{}).
		Where("game = ? AND uid = ? AND banner_id = ?", string(game), uid, bannerID)

	if err == nil {
		query = query.Where("time > ?", last.Time)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to find last top-rarity pull: %w", err)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pity streak: %w", err)
	}
	return int(count), nil
}

func toModel(record *domain.PullRecord) *Model {
	return &Model{
		ID:         record.ID,
		ExternalID: record.ExternalID,
		UID:        record.UID,
		Game:       string(record.Game),
		BannerID:   record.BannerID,
		ItemName:   record.ItemName,
		ItemType:   record.ItemType,
		RankType:   record.RankType,
		Time:       record.Time,
		PityCount:  record.PityCount,
		IsFeatured: record.IsFeatured,
	}
}

func toDomain(m *Model) *domain.PullRecord {
	return &domain.PullRecord{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		UID:        m.UID,
		Game:       domain.Game(m.Game),
		BannerID:   m.BannerID,
		ItemName:   m.ItemName,
		ItemType:   m.ItemType,
		RankType:   m.RankType,
		Time:       m.Time,
		PityCount:  m.PityCount,
		IsFeatured: m.IsFeatured,
	}
}
