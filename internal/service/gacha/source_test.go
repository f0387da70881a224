package gacha

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/domain"
)

// fullPageItems: 최신순 id 내림차순으로 size개 항목을 만든다.
func fullPageItems(startID, size int) string {
	entries := make([]string, 0, size)
	for i := 0; i < size; i++ {
		id := startID - i
		entries = append(entries, fmt.Sprintf(
			`{"id":"%d","uid":"u","gacha_type":"301","item_type":"Character","name":"Item %d","rank_type":"3","time":"2024-01-01 00:00:%02d"}`,
			id, id, id%60))
	}
	return strings.Join(entries, ",")
}

func TestAPISourceFetchBannerPaginates(t *testing.T) {
	size := constants.ImportConfig.PageSize
	var pages atomic.Int32
	var lastEndID atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastEndID.Store(r.URL.Query().Get("end_id"))
		switch pages.Add(1) {
		case 1:
			fmt.Fprint(w, pageJSON(fullPageItems(100, size)))
		case 2:
			// 짧은 페이지: 마지막 페이지 신호
			fmt.Fprint(w, pageJSON(`{"id":"50","uid":"u","gacha_type":"301","item_type":"Character","name":"Oldest","rank_type":"5","time":"2023-12-31 00:00:00"}`))
		default:
			t.Error("fetched past the short page")
			fmt.Fprint(w, pageJSON(""))
		}
	}))
	defer srv.Close()

	source := NewAPISource(newBoundClient(srv), domain.GameGenshin, "key", newTestLogger())

	var pageCalls int
	pulls, err := source.FetchBanner(context.Background(), "301", func(int) { pageCalls++ })
	if err != nil {
		t.Fatalf("FetchBanner failed: %v", err)
	}

	if len(pulls) != size+1 {
		t.Fatalf("expected %d pulls, got %d", size+1, len(pulls))
	}
	if pages.Load() != 2 {
		t.Errorf("expected 2 pages fetched, got %d", pages.Load())
	}
	if pageCalls != 2 {
		t.Errorf("expected onPage per page, got %d calls", pageCalls)
	}
	// 두 번째 페이지 요청의 커서는 첫 페이지 마지막 항목의 id여야 한다
	if got := lastEndID.Load().(string); got != fmt.Sprintf("%d", 100-size+1) {
		t.Errorf("unexpected end_id cursor: %q", got)
	}

	// 반환은 시간 오름차순: 가장 오래된 항목이 맨 앞
	if pulls[0].ItemName != "Oldest" {
		t.Errorf("expected ascending order, first item was %q", pulls[0].ItemName)
	}
	last := pulls[len(pulls)-1]
	if last.ExternalID != "100" {
		t.Errorf("expected newest item last, got id %q", last.ExternalID)
	}
	for i := 1; i < len(pulls); i++ {
		if pulls[i].Time.Before(pulls[i-1].Time) {
			t.Fatalf("pulls not in ascending time order at index %d", i)
		}
	}
}

func TestAPISourceStopsOnEmptyBanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"retcode":0,"message":"OK","data":{"list":[]}}`)
	}))
	defer srv.Close()

	source := NewAPISource(newBoundClient(srv), domain.GameGenshin, "key", newTestLogger())
	pulls, err := source.FetchBanner(context.Background(), "500", nil)
	if err != nil {
		t.Fatalf("FetchBanner failed: %v", err)
	}
	if len(pulls) != 0 {
		t.Errorf("expected no pulls for empty banner, got %d", len(pulls))
	}
}

func TestAPISourceBannerCodes(t *testing.T) {
	source := NewAPISource(nil, domain.GameStarrail, "key", newTestLogger())
	codes := source.BannerCodes()
	want := []string{"1", "2", "11", "12"}
	if len(codes) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(codes))
	}
	for i, code := range want {
		if codes[i] != code {
			t.Errorf("code[%d]: expected %q, got %q", i, code, codes[i])
		}
	}
	if source.Total() != 0 {
		t.Errorf("remote source must not predict a total, got %d", source.Total())
	}
}
