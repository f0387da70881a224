package pull

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

func newTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&Model{}); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRepository(db, logger), db
}

func seed(t *testing.T, repo *Repository, bannerID, name string, rank int, at time.Time) *domain.PullRecord {
	t.Helper()
	record := &domain.PullRecord{
		UID:      "800000001",
		Game:     domain.GameGenshin,
		BannerID: bannerID,
		ItemName: name,
		RankType: rank,
		Time:     at,
	}
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	return record
}

func TestCreateAssignsID(t *testing.T) {
	repo, _ := newTestRepo(t)
	record := seed(t, repo, "301", "black tassel", 3, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if record.ID == 0 {
		t.Error("Create must backfill the generated row ID")
	}
}

func TestFindAtTimeHonorsSessionCutoff(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	old := seed(t, repo, "301", "black tassel", 3, at)
	seed(t, repo, "301", "amber", 4, at) // 같은 시각의 다른 아이템

	// old만 이전 세션 소속으로 되감는다
	past := time.Now().UTC().Add(-time.Hour)
	if err := db.Model(&Model{}).Where("id = ?", old.ID).
		UpdateColumn("created_at", past).Error; err != nil {
		t.Fatal(err)
	}

	cutoff := time.Now().UTC().Add(-time.Minute)
	found, err := repo.FindAtTime(ctx, "800000001", "301", domain.GameGenshin, at, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ItemName != "black tassel" {
		t.Fatalf("expected only the pre-cutoff row, got %d rows", len(found))
	}

	// 시각이 1초라도 다르면 잡히지 않는다
	found, err = repo.FindAtTime(ctx, "800000001", "301", domain.GameGenshin, at.Add(time.Second), cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 0 {
		t.Errorf("exact-time match only, got %d rows", len(found))
	}
}

func TestListBeforeIsDescendingAndExclusive(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		seed(t, repo, "301", "seed", 3, base.Add(time.Duration(i)*time.Minute))
	}

	records, err := repo.ListBefore(ctx, "800000001", "301", domain.GameGenshin, base.Add(2*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	// time < 기준: 0분, 1분 두 건만, 내림차순
	if len(records) != 2 {
		t.Fatalf("expected 2 records strictly before the cutoff, got %d", len(records))
	}
	if !records[0].Time.After(records[1].Time) {
		t.Error("ListBefore must return newest first")
	}
}

func TestStatsQueries(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ranks := []int{3, 3, 4, 5, 3}
	for i, rank := range ranks {
		bannerID := "301"
		if i >= 3 {
			bannerID = "200"
		}
		seed(t, repo, bannerID, "seed", rank, base.Add(time.Duration(i)*time.Minute))
	}

	total, err := repo.CountTotal(ctx, "800000001", domain.GameGenshin)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("expected 5 total, got %d", total)
	}

	byRank, err := repo.CountByRank(ctx, "800000001", domain.GameGenshin)
	if err != nil {
		t.Fatal(err)
	}
	rankCounts := make(map[int]int64, len(byRank))
	for _, row := range byRank {
		rankCounts[row.RankType] = row.Count
	}
	if rankCounts[3] != 3 || rankCounts[4] != 1 || rankCounts[5] != 1 {
		t.Errorf("unexpected rank distribution: %v", rankCounts)
	}

	byBanner, err := repo.CountByBanner(ctx, "800000001", domain.GameGenshin)
	if err != nil {
		t.Fatal(err)
	}
	bannerCounts := make(map[string]int64, len(byBanner))
	for _, row := range byBanner {
		bannerCounts[row.BannerID] = row.Count
	}
	if bannerCounts["301"] != 3 || bannerCounts["200"] != 2 {
		t.Errorf("unexpected banner distribution: %v", bannerCounts)
	}

	// 다른 uid/game은 집계에 섞이지 않는다
	total, err = repo.CountTotal(ctx, "800000001", domain.GameStarrail)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("game scope leaked into stats: %d", total)
	}
}

func TestCurrentPity(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 최고 등급 기록이 없으면 전체 누적
	seed(t, repo, "301", "seed", 3, base)
	seed(t, repo, "301", "seed", 4, base.Add(time.Minute))

	pity, err := repo.CurrentPity(ctx, "800000001", "301", domain.GameGenshin)
	if err != nil {
		t.Fatal(err)
	}
	if pity != 2 {
		t.Errorf("expected pity 2 with no 5-star, got %d", pity)
	}

	// 5성 이후의 누적만 센다
	seed(t, repo, "301", "keqing", 5, base.Add(2*time.Minute))
	seed(t, repo, "301", "seed", 3, base.Add(3*time.Minute))

	pity, err = repo.CurrentPity(ctx, "800000001", "301", domain.GameGenshin)
	if err != nil {
		t.Fatal(err)
	}
	if pity != 1 {
		t.Errorf("expected pity 1 after a 5-star, got %d", pity)
	}
}
