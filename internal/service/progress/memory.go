package progress

import (
	"context"
	"sync"
	"time"

	"github.com/kapu/gacha-tracker-go/internal/domain"
)

type memoryEntry struct {
	snapshot  domain.ProgressSnapshot
	expiresAt time.Time
}

// MemoryStore: 뮤텍스로 보호되는 프로세스 로컬 진행 상태 저장소
// 폴링 엔드포인트와 오케스트레이터가 동시에 접근해도 안전하다.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	ttl       time.Duration // 실행 중 작업의 TTL
	retention time.Duration // 완료된 작업의 보존 기간
	nowFn     func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewMemoryStore: 인메모리 저장소를 생성하고 만료 엔트리 청소 고루틴을 시작한다.
func NewMemoryStore(ttl, retention time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:   make(map[string]memoryEntry),
		ttl:       ttl,
		retention: retention,
		nowFn:     time.Now,
		stopCh:    make(chan struct{}),
	}

	go s.sweepLoop()
	return s
}

// Set: 실행 중 작업의 스냅샷을 저장한다.
func (s *MemoryStore) Set(_ context.Context, jobID string, snapshot domain.ProgressSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[jobID] = memoryEntry{
		snapshot:  snapshot,
		expiresAt: s.nowFn().Add(s.ttl),
	}
	return nil
}

// Complete: 최종 스냅샷을 저장하고 보존 기간이 지나면 제거되도록 한다.
func (s *MemoryStore) Complete(_ context.Context, jobID string, snapshot domain.ProgressSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[jobID] = memoryEntry{
		snapshot:  snapshot,
		expiresAt: s.nowFn().Add(s.retention),
	}
	return nil
}

// Get: 스냅샷을 조회한다. 만료되었거나 없으면 found=false.
func (s *MemoryStore) Get(_ context.Context, jobID string) (domain.ProgressSnapshot, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[jobID]
	s.mu.RUnlock()

	if !ok || s.nowFn().After(entry.expiresAt) {
		return domain.ProgressSnapshot{}, false, nil
	}
	return entry.snapshot, true, nil
}

// Delete: 스냅샷을 즉시 제거한다.
func (s *MemoryStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, jobID)
	return nil
}

// Close: 청소 고루틴을 중지한다.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.nowFn()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
