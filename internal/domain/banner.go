package domain

// BannerType: 배너 카테고리
type BannerType string

const (
	// BannerCharacter: 캐릭터 이벤트 배너
	BannerCharacter BannerType = "character"
	// BannerWeapon: 무기(광추) 이벤트 배너
	BannerWeapon BannerType = "weapon"
	// BannerStandard: 상시 배너
	BannerStandard BannerType = "standard"
	// BannerBeginner: 초심자 배너
	BannerBeginner BannerType = "beginner"
	// BannerChronicled: 집록(Chronicled) 배너
	BannerChronicled BannerType = "chronicled"
)

// Banner: 가챠 풀(캠페인). (BannerID, Game) 복합 키로 식별된다.
type Banner struct {
	ID         int64      `json:"id,omitempty"`
	BannerID   string     `json:"bannerId"`
	Game       Game       `json:"game"`
	BannerName string     `json:"bannerName"`
	BannerType BannerType `json:"bannerType"`
}
