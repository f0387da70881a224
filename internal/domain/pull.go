package domain

import "time"

// PullRecord: 하나의 가챠 뽑기 결과
// ItemName은 정규화된 형태로 저장되며, 생성 이후 수정되지 않는다.
type PullRecord struct {
	ID         int64     `json:"id,omitempty"`
	ExternalID string    `json:"externalId,omitempty"` // 소스가 부여한 ID (소스 간 전역 유일성 없음)
	UID        string    `json:"uid"`
	Game       Game      `json:"game"`
	BannerID   string    `json:"bannerId"`
	ItemName   string    `json:"itemName"`
	ItemType   string    `json:"itemType,omitempty"`
	RankType   int       `json:"rankType"`
	Time       time.Time `json:"time"`
	PityCount  int       `json:"pityCount"`
	IsFeatured bool      `json:"isFeatured,omitempty"`
}

// RawPull: 페치 단계에서 정규화된 원시 뽑기 레코드
// 원격 API 응답과 파일 익스포트 양쪽 모두 이 형태로 평탄화된 뒤 오케스트레이터로 전달된다.
type RawPull struct {
	ExternalID string
	BannerID   string // 소스 측 배너 코드 (gacha_type)
	ItemName   string
	ItemType   string
	RankType   string // 소스가 준 등급 문자열. 파싱 실패 시 매핑 테이블/기본값으로 대체됨
	Time       time.Time
}
