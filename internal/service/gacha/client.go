package gacha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/domain"
	apperrors "github.com/kapu/gacha-tracker-go/pkg/errors"
)

// gachaLogEndpoints: 게임별 가챠 로그 API 엔드포인트
var gachaLogEndpoints = map[domain.Game]string{
	domain.GameGenshin:  "https://public-operation-hk4e.hoyoverse.com/gacha_info/api/getGachaLog",
	domain.GameStarrail: "https://public-operation-hkrpg.hoyoverse.com/common/gacha_record/api/getGachaLog",
}

// apiResponse: 업스트림 가챠 로그 API 응답 래퍼
type apiResponse struct {
	Retcode int      `json:"retcode"`
	Message string   `json:"message"`
	Data    *apiData `json:"data"`
}

type apiData struct {
	List []apiPullItem `json:"list"`
}

// apiPullItem: 업스트림이 반환하는 뽑기 한 건. 숫자 필드도 전부 문자열이다.
type apiPullItem struct {
	ID        string `json:"id"`
	UID       string `json:"uid"`
	GachaType string `json:"gacha_type"`
	ItemType  string `json:"item_type"`
	Name      string `json:"name"`
	RankType  string `json:"rank_type"`
	Time      string `json:"time"`
}

// Client: 가챠 로그 API 요청을 처리하는 클라이언트
// 페이지 간 고정 지연(rate limit 준수)과 페이지 단위 재시도 정책을 포함한다.
type Client struct {
	httpClient *http.Client
	endpoints  map[domain.Game]string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient: 새로운 가챠 로그 API 클라이언트를 생성한다.
// 페이지 간 지연은 ImportConfig.PageDelay로 고정된다.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.RequestTimeout.GachaAPI}
	}
	return &Client{
		httpClient: httpClient,
		endpoints:  gachaLogEndpoints,
		limiter:    rate.NewLimiter(rate.Every(constants.ImportConfig.PageDelay), 1),
		logger:     logger,
	}
}

// FetchPage: 한 페이지를 가져온다. endID는 직전 페이지 마지막 항목의 외부 ID다. (첫 페이지는 "0")
// retcode가 authkey 만료를 나타내면 AuthKeyError(작업 전체 치명)를,
// 그 외 비정상 retcode/HTTP 오류는 APIError를 반환한다.
// 일시적 오류(네트워크, 5xx)는 백오프 정책에 따라 재시도된다.
func (c *Client) FetchPage(ctx context.Context, game domain.Game, authkey, gachaType string, page int, endID string) ([]apiPullItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	endpoint, ok := c.endpoints[game]
	if !ok {
		return nil, fmt.Errorf("no gacha log endpoint for game %q", game)
	}

	params := url.Values{}
	params.Set("authkey", authkey)
	params.Set("authkey_ver", "1")
	params.Set("lang", constants.ImportConfig.Lang)
	params.Set("gacha_type", gachaType)
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(constants.ImportConfig.PageSize))
	params.Set("end_id", endID)

	var items []apiPullItem
	operation := func() error {
		list, err := c.doPage(ctx, endpoint+"?"+params.Encode())
		if err != nil {
			return err
		}
		items = list
		return nil
	}

	policy := backoff.WithContext(newRetryPolicy(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) doPage(ctx context.Context, reqURL string) ([]apiPullItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 네트워크 오류: 재시도 대상
		return nil, fmt.Errorf("gacha log request failed: %w", err)
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response: %w", readErr)
	}

	switch {
	case resp.StatusCode >= 500:
		c.logger.Warn("gacha api server error", slog.Int("status", resp.StatusCode))
		return nil, apperrors.NewAPIError("gacha_log", resp.StatusCode, 0, nil)
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(apperrors.NewAPIError("gacha_log", resp.StatusCode, 0, nil))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode gacha log response: %w", err))
	}

	if parsed.Retcode != constants.APIRetcode.OK {
		if parsed.Retcode == constants.APIRetcode.AuthKeyInvalid || parsed.Retcode == constants.APIRetcode.AuthKeyTimeout {
			return nil, backoff.Permanent(apperrors.NewAuthKeyError(parsed.Retcode))
		}
		if parsed.Retcode == constants.APIRetcode.VisitTooFast {
			// 업스트림 rate limit: 재시도 대상
			return nil, apperrors.NewAPIError(parsed.Message, resp.StatusCode, parsed.Retcode, nil)
		}
		return nil, backoff.Permanent(apperrors.NewAPIError(parsed.Message, resp.StatusCode, parsed.Retcode, nil))
	}

	if parsed.Data == nil {
		return nil, backoff.Permanent(apperrors.NewAPIError("empty data", resp.StatusCode, parsed.Retcode, nil))
	}
	return parsed.Data.List, nil
}

// newRetryPolicy: 페이지 단위 재시도 정책을 생성한다. (지수 백오프 + 지터)
func newRetryPolicy() backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = constants.RetryConfig.BaseDelay
	expo.MaxInterval = constants.RetryConfig.MaxDelay
	expo.Multiplier = constants.RetryConfig.Multiplier
	expo.RandomizationFactor = constants.RetryConfig.RandomizeFactor
	return backoff.WithMaxRetries(expo, uint64(constants.RetryConfig.MaxAttempts-1))
}

// ExtractAuthKey: 사용자가 붙여넣은 가챠 기록 URL에서 authkey 쿼리 파라미터를 추출한다.
func ExtractAuthKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", apperrors.NewValidationError("url", "malformed gacha history URL")
	}

	authkey := parsed.Query().Get("authkey")
	if authkey == "" {
		return "", apperrors.NewValidationError("url", "authkey parameter not found in URL")
	}
	return authkey, nil
}
