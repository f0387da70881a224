package gacha

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	apperrors "github.com/kapu/gacha-tracker-go/pkg/errors"
)

// newBoundClient: 테스트 서버에 묶인 클라이언트. 페이지 간 지연 없음.
func newBoundClient(srv *httptest.Server) *Client {
	return &Client{
		httpClient: srv.Client(),
		endpoints: map[domain.Game]string{
			domain.GameGenshin:  srv.URL,
			domain.GameStarrail: srv.URL,
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  newTestLogger(),
	}
}

func pageJSON(items string) string {
	return fmt.Sprintf(`{"retcode":0,"message":"OK","data":{"list":[%s]}}`, items)
}

func TestFetchPageParsesItems(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		fmt.Fprint(w, pageJSON(`{"id":"1001","uid":"800000001","gacha_type":"301","item_type":"Weapon","name":"Black Tassel","rank_type":"3","time":"2024-01-02 03:04:05"}`))
	}))
	defer srv.Close()

	client := newBoundClient(srv)
	items, err := client.FetchPage(context.Background(), domain.GameGenshin, "key123", "301", 1, "0")
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "Black Tassel" || items[0].RankType != "3" {
		t.Errorf("unexpected item: %+v", items[0])
	}

	q := gotQuery.Load().(url.Values)
	if q["authkey"][0] != "key123" {
		t.Errorf("authkey not forwarded: %v", q["authkey"])
	}
	if q["gacha_type"][0] != "301" || q["end_id"][0] != "0" {
		t.Errorf("unexpected query params: %v", q)
	}
}

func TestFetchPageAuthKeyErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"retcode":-101,"message":"authkey timeout","data":null}`)
	}))
	defer srv.Close()

	client := newBoundClient(srv)
	_, err := client.FetchPage(context.Background(), domain.GameGenshin, "expired", "301", 1, "0")
	if err == nil {
		t.Fatal("expected error for expired authkey")
	}

	var authErr *apperrors.AuthKeyError
	if !stderrors.As(err, &authErr) {
		t.Fatalf("expected AuthKeyError, got %T: %v", err, err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("authkey failure must not be retried, got %d calls", got)
	}
}

func TestFetchPageRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, pageJSON(`{"id":"1","uid":"u","gacha_type":"301","item_type":"Character","name":"Amber","rank_type":"4","time":"2024-01-01 00:00:00"}`))
	}))
	defer srv.Close()

	client := newBoundClient(srv)
	items, err := client.FetchPage(context.Background(), domain.GameGenshin, "key", "301", 1, "0")
	if err != nil {
		t.Fatalf("expected retry to recover, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after retry, got %d", len(items))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls (1 failure + 1 retry), got %d", calls.Load())
	}
}

func TestFetchPageClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newBoundClient(srv)
	_, err := client.FetchPage(context.Background(), domain.GameGenshin, "key", "301", 1, "0")
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if calls.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d calls", calls.Load())
	}
}

func TestExtractAuthKey(t *testing.T) {
	key, err := ExtractAuthKey("https://example.com/log?authkey=abc%2B123&lang=en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "abc+123" {
		t.Errorf("expected decoded authkey, got %q", key)
	}

	_, err = ExtractAuthKey("https://example.com/log?lang=en")
	var valErr *apperrors.ValidationError
	if !stderrors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for missing authkey, got %v", err)
	}
}
