package domain

import "time"

// ProgressSnapshot: 임포트 작업 하나의 진행 상태
// 오케스트레이터가 갱신하고 클라이언트가 폴링한다. 영속화되지 않는다.
type ProgressSnapshot struct {
	JobID       string    `json:"jobId"`
	Percent     int       `json:"progressPercent"` // 0~100, 단조 비감소
	Message     string    `json:"statusMessage"`
	Completed   bool      `json:"completed"`
	Imported    int       `json:"imported"`
	Skipped     int       `json:"skipped"`
	Errors      int       `json:"errors"`
	Total       int       `json:"total"`
	CurrentItem string    `json:"currentItem,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Finished: 작업 종료 여부와 에러 유무를 함께 판단한다.
func (s ProgressSnapshot) Finished() bool {
	return s.Completed
}
