package progress

import (
	"context"
	"testing"
	"time"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Hour, time.Minute)
	defer store.Close()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("unknown job must report found=false")
	}

	snapshot := domain.ProgressSnapshot{JobID: "job-1", Percent: 40, Message: "working"}
	if err := store.Set(ctx, "job-1", snapshot); err != nil {
		t.Fatal(err)
	}

	got, found, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("stored job must be found")
	}
	if got.Percent != 40 || got.Message != "working" {
		t.Errorf("unexpected snapshot: %+v", got)
	}

	if err := store.Delete(ctx, "job-1"); err != nil {
		t.Fatal(err)
	}
	_, found, _ = store.Get(ctx, "job-1")
	if found {
		t.Error("deleted job must report found=false")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Hour, time.Minute)
	defer store.Close()
	ctx := context.Background()

	now := time.Now()
	store.nowFn = func() time.Time { return now }

	if err := store.Set(ctx, "running", domain.ProgressSnapshot{JobID: "running"}); err != nil {
		t.Fatal(err)
	}
	final := domain.ProgressSnapshot{JobID: "done", Completed: true, Percent: 100}
	if err := store.Complete(ctx, "done", final); err != nil {
		t.Fatal(err)
	}

	// 보존 기간 경과: 완료된 작업만 만료된다
	now = now.Add(time.Minute + time.Second)
	if _, found, _ := store.Get(ctx, "done"); found {
		t.Error("completed job must expire after the retention window")
	}
	if _, found, _ := store.Get(ctx, "running"); !found {
		t.Error("running job must survive the retention window")
	}

	// 실행 TTL 경과: 모두 만료
	now = now.Add(time.Hour)
	if _, found, _ := store.Get(ctx, "running"); found {
		t.Error("running job must expire after its TTL")
	}

	// 청소 루프가 만료 엔트리를 실제로 제거한다
	store.sweep()
	store.mu.RLock()
	remaining := len(store.entries)
	store.mu.RUnlock()
	if remaining != 0 {
		t.Errorf("sweep must evict expired entries, %d left", remaining)
	}
}
