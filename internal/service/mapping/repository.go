package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

// Model: item_name_mappings 테이블과 매핑되는 GORM 모델입니다.
// 관리자 워크플로우가 행을 관리하며, 임포트 엔진은 조회만 한다.
type Model struct {
	ID             int64  `gorm:"primaryKey;column:id"`
	EnglishName    string `gorm:"column:english_name;uniqueIndex:idx_mappings_name_game,priority:1"`
	Game           string `gorm:"column:game;uniqueIndex:idx_mappings_name_game,priority:2"`
	TranslatedName string `gorm:"column:translated_name"`
	Rarity         *int   `gorm:"column:rarity"`
}

// TableName 는 동작을 수행한다.
func (Model) TableName() string {
	return "item_name_mappings"
}

// Repository: 아이템 이름/등급 매핑 테이블에 대한 읽기 전용 저장소
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 mapping Repository 인스턴스를 생성합니다.
func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FindExact: 정규화된 이름과 게임으로 매핑을 정확히 조회한다. 없으면 (nil, nil).
func (r *Repository) FindExact(ctx context.Context, normalizedName string, game domain.Game) (*domain.ItemNameMapping, error) {
	var m Model
	err := r.db.WithContext(ctx).
		Where("english_name = ? AND game = ?", normalizedName, string(game)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping: %w", err)
	}
	return toDomain(&m), nil
}

// FindFuzzy: 퍼지 매핑 조회. 번역명이 정규화된 이름을 포함하거나,
// 영문명이 정규화된 이름의 첫 토큰을 포함하는 행을 찾는다. 없으면 (nil, nil).
func (r *Repository) FindFuzzy(ctx context.Context, normalizedName, firstToken string, game domain.Game) (*domain.ItemNameMapping, error) {
	if normalizedName == "" {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Where("game = ?", string(game))

	if firstToken != "" {
		query = query.Where(
			"LOWER(translated_name) LIKE ? OR LOWER(english_name) LIKE ?",
			"%"+strings.ToLower(normalizedName)+"%",
			"%"+strings.ToLower(firstToken)+"%",
		)
	} else {
		query = query.Where("LOWER(translated_name) LIKE ?", "%"+strings.ToLower(normalizedName)+"%")
	}

	var m Model
	err := query.First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping fuzzy: %w", err)
	}
	return toDomain(&m), nil
}

func toDomain(m *Model) *domain.ItemNameMapping {
	return &domain.ItemNameMapping{
		ID:             m.ID,
		EnglishName:    m.EnglishName,
		Game:           domain.Game(m.Game),
		TranslatedName: m.TranslatedName,
		Rarity:         m.Rarity,
	}
}
