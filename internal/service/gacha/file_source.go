package gacha

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/banner"
	apperrors "github.com/kapu/gacha-tracker-go/pkg/errors"
)

// envelopeKeys: 익스포트 전체를 한 번 감싸는 것이 허용된 최상위 키
var envelopeKeys = []string{"data", "wishCounter"}

// bannerTagCodes: 브라우저 확장 익스포트가 쓰는 배너 태그 → 소스 배너 코드
var bannerTagCodes = map[domain.Game]map[string]string{
	domain.GameGenshin: {
		"beginner":          "100",
		"beginners-wish":    "100",
		"standard":          "200",
		"permanent":         "200",
		"character-event":   "301",
		"character":         "301",
		"character-event-2": "400",
		"weapon-event":      "302",
		"weapon":            "302",
		"chronicled":        "500",
	},
	domain.GameStarrail: {
		"standard":         "1",
		"stellar":          "1",
		"beginner":         "2",
		"departure":        "2",
		"character-event":  "11",
		"character":        "11",
		"light-cone-event": "12",
		"light-cone":       "12",
		"weapon":           "12",
	},
}

// FileSource: 브라우저 확장이 내보낸 JSON 덤프를 파싱하는 소스
// 네트워크 I/O와 rate limit이 없으며, 전체 레코드 수를 미리 안다.
type FileSource struct {
	game    domain.Game
	byCode  map[string][]domain.RawPull
	ordered []string
	total   int
}

// NewFileSource: 버퍼를 파싱해 파일 소스를 생성한다.
// 알려진 스키마 형태가 아니면 SchemaError를 반환한다. (부분 파싱 없음)
func NewFileSource(game domain.Game, payload []byte) (*FileSource, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("not a JSON object: %v", err))
	}
	if len(top) == 0 {
		return nil, apperrors.NewSchemaError("empty document")
	}

	// 봉투 키가 있으면 한 번 벗긴다
	if len(top) == 1 {
		for _, key := range envelopeKeys {
			if inner, ok := top[key]; ok {
				var unwrapped map[string]json.RawMessage
				if err := json.Unmarshal(inner, &unwrapped); err != nil {
					return nil, apperrors.NewSchemaError(fmt.Sprintf("envelope %q does not hold an object", key))
				}
				top = unwrapped
				break
			}
		}
	}
	if len(top) == 0 {
		return nil, apperrors.NewSchemaError("empty export body")
	}

	src := &FileSource{
		game:   game,
		byCode: make(map[string][]domain.RawPull),
	}

	for tag, raw := range top {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			// 배너 태그 아래 배열이 아닌 값: 허용하지 않는다
			return nil, apperrors.NewSchemaError(fmt.Sprintf("banner tag %q does not hold an array", tag))
		}

		code := resolveBannerTag(game, tag)
		for _, item := range items {
			pull, err := parseFilePull(item, code)
			if err != nil {
				return nil, apperrors.NewSchemaError(fmt.Sprintf("banner tag %q: %v", tag, err))
			}
			src.byCode[code] = append(src.byCode[code], pull)
			src.total++
		}
	}

	// 배너 내부는 시간 오름차순 (동일 시각은 외부 ID로 안정화)
	for code := range src.byCode {
		pulls := src.byCode[code]
		sort.SliceStable(pulls, func(i, j int) bool {
			if pulls[i].Time.Equal(pulls[j].Time) {
				return pulls[i].ExternalID < pulls[j].ExternalID
			}
			return pulls[i].Time.Before(pulls[j].Time)
		})
	}

	src.ordered = orderCodes(game, src.byCode)
	return src, nil
}

// BannerCodes: 익스포트에 존재하는 배너 코드를 결정적 순서로 반환한다.
func (s *FileSource) BannerCodes() []string {
	return s.ordered
}

// Total: 익스포트에 담긴 전체 레코드 수
func (s *FileSource) Total() int {
	return s.total
}

// FetchBanner: 파싱된 배너 기록을 반환한다. I/O가 없으므로 onPage는 한 번만 호출된다.
func (s *FileSource) FetchBanner(_ context.Context, code string, onPage func(fetched int)) ([]domain.RawPull, error) {
	pulls := s.byCode[code]
	if onPage != nil {
		onPage(len(pulls))
	}
	return pulls, nil
}

// resolveBannerTag: 익스포트 배너 태그를 소스 배너 코드로 변환한다.
// 이미 코드 형태이거나 알 수 없는 태그는 그대로 쓴다. (미등록 배너는 리졸버가 생성)
func resolveBannerTag(game domain.Game, tag string) string {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if codes, ok := bannerTagCodes[game]; ok {
		if code, ok := codes[normalized]; ok {
			return code
		}
	}
	return normalized
}

func orderCodes(game domain.Game, byCode map[string][]domain.RawPull) []string {
	ordered := make([]string, 0, len(byCode))
	seen := make(map[string]struct{}, len(byCode))

	// 표준 배너 순서를 우선 적용한다
	for _, code := range banner.Codes(game) {
		if _, ok := byCode[code]; ok {
			ordered = append(ordered, code)
			seen[code] = struct{}{}
		}
	}

	// 나머지는 사전순
	var extra []string
	for code := range byCode {
		if _, ok := seen[code]; !ok {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	return append(ordered, extra...)
}

// parseFilePull: 익스포트 스키마 간 필드 이름/타입 차이를 흡수해 RawPull로 변환한다.
func parseFilePull(raw json.RawMessage, code string) (domain.RawPull, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.RawPull{}, fmt.Errorf("pull entry is not an object: %w", err)
	}

	pull := domain.RawPull{
		BannerID:   code,
		ExternalID: flexibleString(fields, "id"),
		ItemName:   flexibleString(fields, "name", "itemName"),
		ItemType:   flexibleString(fields, "type", "itemType", "item_type"),
		RankType:   flexibleString(fields, "rank_type", "rank", "rarity"),
	}

	t, err := flexibleTime(fields)
	if err != nil {
		return domain.RawPull{}, err
	}
	pull.Time = t

	return pull, nil
}

// flexibleString: 후보 키들 중 처음 존재하는 값을 문자열로 읽는다. 숫자도 허용한다.
func flexibleString(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// flexibleTime: "time"(날짜 문자열) 또는 "timestamp"(unix 초/밀리초)를 해석한다.
func flexibleTime(fields map[string]json.RawMessage) (time.Time, error) {
	if raw, ok := fields["time"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if t, err := time.ParseInLocation(timeLayout, s, time.UTC); err == nil {
				return t, nil
			}
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.UTC(), nil
			}
			// 시각 문자열 해석 실패: 레코드 검증 단계로 넘긴다
			return time.Time{}, nil
		}
	}

	if raw, ok := fields["timestamp"]; ok {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			v, err := strconv.ParseInt(n.String(), 10, 64)
			if err == nil {
				// 13자리 이상이면 밀리초로 간주
				if v > 1_000_000_000_000 {
					return time.UnixMilli(v).UTC(), nil
				}
				return time.Unix(v, 0).UTC(), nil
			}
		}
	}

	return time.Time{}, nil
}
