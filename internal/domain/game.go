package domain

import "fmt"

// Game: 지원하는 가챠 게임 타이틀 식별자
type Game string

const (
	// GameGenshin: 원신
	GameGenshin Game = "genshin"
	// GameStarrail: 붕괴: 스타레일
	GameStarrail Game = "starrail"
)

// ParseGame: 문자열을 Game으로 변환한다. 지원하지 않는 타이틀이면 에러를 반환한다.
func ParseGame(s string) (Game, error) {
	switch Game(s) {
	case GameGenshin:
		return GameGenshin, nil
	case GameStarrail:
		return GameStarrail, nil
	default:
		return "", fmt.Errorf("unsupported game: %q", s)
	}
}

// TopRarity: 해당 게임의 최고 등급(성급)을 반환한다. 천장(pity) 계산의 리셋 기준이다.
func (g Game) TopRarity() int {
	// 원신/스타레일 모두 5성이 최고 등급
	return 5
}

// String: 로그/직렬화용 문자열 표현을 반환한다.
func (g Game) String() string {
	return string(g)
}
