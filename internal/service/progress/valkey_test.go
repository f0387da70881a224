package progress

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

func newTestValkeyStore(t *testing.T) (*ValkeyStore, *miniredis.Miniredis) {
	t.Helper()

	mini := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mini.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("failed to create valkey client: %v", err)
	}

	store := NewValkeyStoreWithClient(client, time.Hour, time.Minute, logger)
	t.Cleanup(func() {
		store.Close()
		mini.Close()
	})
	return store, mini
}

func TestValkeyStoreRoundTrip(t *testing.T) {
	store, _ := newTestValkeyStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("unknown job must report found=false")
	}

	snapshot := domain.ProgressSnapshot{
		JobID:    "job-1",
		Percent:  70,
		Message:  "importing",
		Imported: 42,
	}
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
	if got.Percent != 70 || got.Imported != 42 {
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

func TestValkeyStoreTTL(t *testing.T) {
	store, mini := newTestValkeyStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "running", domain.ProgressSnapshot{JobID: "running"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Complete(ctx, "done", domain.ProgressSnapshot{JobID: "done", Completed: true}); err != nil {
		t.Fatal(err)
	}

	// 보존 TTL만 경과: 완료된 작업의 키만 만료된다
	mini.FastForward(time.Minute + time.Second)

	if _, found, _ := store.Get(ctx, "done"); found {
		t.Error("completed job must expire after the retention TTL")
	}
	if _, found, _ := store.Get(ctx, "running"); !found {
		t.Error("running job must survive the retention TTL")
	}

	mini.FastForward(time.Hour)
	if _, found, _ := store.Get(ctx, "running"); found {
		t.Error("running job must expire after its TTL")
	}
}
