package domain

// ItemNameMapping: 아이템 이름/등급 매핑 테이블의 한 행
// 관리자 워크플로우가 소유하며, 임포트 엔진은 읽기 전용으로만 사용한다.
type ItemNameMapping struct {
	ID             int64  `json:"id,omitempty"`
	EnglishName    string `json:"englishName"` // 정규화된 영문 이름
	Game           Game   `json:"game"`
	TranslatedName string `json:"translatedName,omitempty"`
	Rarity         *int   `json:"rarity,omitempty"` // 미지정일 수 있음
}
