package util

import (
	"strings"
	"unicode"
)

// TrimSpace: 문자열 양쪽 끝의 공백을 제거한다. (strings.TrimSpace 래퍼)
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeItemName: 아이템 이름을 비교용 정규 키로 변환한다.
// 소문자화 → 단어 구분자(언더스코어/하이픈/공백) 연속을 공백 하나로 치환 →
// 영숫자/공백 외 문자는 제거 → 양끝 공백 제거.
// "Black Tassel", "black_tassel", "BLACK-TASSEL!!"은 모두 "black tassel"이 된다.
// 결정적이고 전역적인 함수이며 실패하지 않는다. 빈 입력은 빈 문자열을 반환한다.
func NormalizeItemName(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
		}
		// 그 외 문자(구두점, 기호)는 버린다
	}

	return strings.TrimSpace(b.String())
}

// FirstToken: 공백으로 구분된 첫 토큰을 반환한다. 퍼지 매핑 조회에 사용된다.
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
