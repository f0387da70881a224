package gacha

import (
	"context"
	"testing"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/mapping"
)

func intPtr(v int) *int { return &v }

func TestRarityResolverPrecedence(t *testing.T) {
	db := newTestDB(t)
	rows := []mapping.Model{
		{EnglishName: "black tassel", Game: "genshin", TranslatedName: "흑술 창", Rarity: intPtr(3)},
		{EnglishName: "keqing", Game: "genshin", TranslatedName: "각청", Rarity: intPtr(5)},
		{EnglishName: "keqing", Game: "starrail", TranslatedName: "각청", Rarity: intPtr(4)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatal(err)
	}

	resolver := NewRarityResolver(mapping.NewRepository(db, newTestLogger()), newTestLogger())
	ctx := context.Background()

	// 정확 매핑이 폴백 등급보다 우선한다
	if got := resolver.Resolve(ctx, "black tassel", domain.GameGenshin, "5"); got != 3 {
		t.Errorf("exact mapping: expected 3, got %d", got)
	}

	// 매핑은 게임 스코프를 따른다
	if got := resolver.Resolve(ctx, "keqing", domain.GameStarrail, ""); got != 4 {
		t.Errorf("game-scoped mapping: expected 4, got %d", got)
	}

	// 매핑이 없으면 소스 폴백 등급을 파싱한다
	if got := resolver.Resolve(ctx, "unmapped item", domain.GameGenshin, " 5 "); got != 5 {
		t.Errorf("fallback rank: expected 5, got %d", got)
	}

	// 전부 실패하면 기본 등급
	if got := resolver.Resolve(ctx, "unmapped item", domain.GameGenshin, "five"); got != 4 {
		t.Errorf("default rarity: expected 4, got %d", got)
	}
	if got := resolver.Resolve(ctx, "", domain.GameGenshin, ""); got != 4 {
		t.Errorf("empty input: expected 4, got %d", got)
	}
}

func TestRarityResolverIsDeterministic(t *testing.T) {
	db := newTestDB(t)
	resolver := NewRarityResolver(mapping.NewRepository(db, newTestLogger()), newTestLogger())
	ctx := context.Background()

	first := resolver.Resolve(ctx, "some item", domain.GameGenshin, "3")
	for i := 0; i < 5; i++ {
		if got := resolver.Resolve(ctx, "some item", domain.GameGenshin, "3"); got != first {
			t.Fatalf("resolution changed between calls: %d vs %d", first, got)
		}
	}
}
