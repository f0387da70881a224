// Package audit: 임포트 작업 이력 기록
package audit

import (
	"fmt"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/goccy/go-json"
)

// Entry: 완료(또는 중단)된 임포트 작업 한 건의 이력
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"jobId"`
	Game      string    `json:"game"`
	UID       string    `json:"uid"`
	Source    string    `json:"source"` // "url" | "file"
	Imported  int       `json:"imported"`
	Skipped   int       `json:"skipped"`
	Errors    int       `json:"errors"`
	Aborted   bool      `json:"aborted,omitempty"`
	Duration  string    `json:"duration"`
}

// Logger: 파일 기반의 간단한 임포트 이력 기록기
// 작업당 한 줄의 JSON을 append한다. 운영 중 문제 추적용이며 실패해도
// 임포트 자체에는 영향을 주지 않는다.
type Logger struct {
	filePath string
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewLogger: 새로운 임포트 이력 기록기를 생성한다.
func NewLogger(filePath string, logger *slog.Logger) *Logger {
	return &Logger{
		filePath: filePath,
		logger:   logger,
	}
}

// Record: 작업 이력 한 건을 파일에 추가한다. (Thread-safe)
func (l *Logger) Record(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.logger.Error("Failed to open import history file", slog.Any("error", err))
		return
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		l.logger.Error("Failed to write import history", slog.Any("error", err))
	}
}

// Recent: 최근 임포트 이력을 조회한다. 파일이 없으면 빈 목록을 반환한다.
func (l *Logger) Recent(limit int) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open import history: %w", err)
	}
	defer f.Close()

	var entries []Entry
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			continue // 손상된 줄은 건너뛴다
		}
		entries = append(entries, entry)
	}

	if len(entries) > limit {
		return entries[len(entries)-limit:], nil
	}
	return entries, nil
}
