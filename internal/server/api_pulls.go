package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/pull"
)

const defaultPullLimit = 50

// GetPulls: 최근 뽑기 기록을 시간 내림차순으로 반환합니다.
// banner 파라미터가 없으면 전체 배너를 조회합니다.
func (h *APIHandler) GetPulls(c *gin.Context) {
	game, err := domain.ParseGame(c.Query("game"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
		})
		return
	}

	uid := c.Query("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "uid is required",
		})
		return
	}

	limit := defaultPullLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	records, err := h.pulls.ListRecent(c.Request.Context(), uid, game, c.Query("banner"), limit)
	if err != nil {
		h.logger.Error("pull list failed", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to list pulls",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"pulls":  records,
		"count":  len(records),
	})
}

// GetPullStats: 사용자의 뽑기 통계를 반환합니다. (성능 최적화를 위해 병렬 조회)
func (h *APIHandler) GetPullStats(c *gin.Context) {
	game, err := domain.ParseGame(c.Query("game"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
		})
		return
	}

	uid := c.Query("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "uid is required",
		})
		return
	}

	ctx := c.Request.Context()
	var (
		total    int64
		byRank   []pull.RankCount
		byBanner []pull.BannerCount
		totalErr error
		rankErr  error
	)

	// 병렬로 데이터 조회
	var wg conc.WaitGroup
	wg.Go(func() {
		total, totalErr = h.pulls.CountTotal(ctx, uid, game)
	})
	wg.Go(func() {
		byRank, rankErr = h.pulls.CountByRank(ctx, uid, game)
	})
	wg.Go(func() {
		byBanner, _ = h.pulls.CountByBanner(ctx, uid, game)
	})
	wg.Wait()

	if totalErr != nil || rankErr != nil {
		h.logger.Error("pull stats failed", "uid", uid, "total_err", totalErr, "rank_err", rankErr)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to collect stats",
		})
		return
	}

	// 배너별 현재 천장 누적
	pity := make(map[string]int, len(byBanner))
	for _, row := range byBanner {
		count, err := h.pulls.CurrentPity(ctx, uid, row.BannerID, game)
		if err != nil {
			continue
		}
		pity[row.BannerID] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"total":    total,
		"byRank":   byRank,
		"byBanner": byBanner,
		"pity":     pity,
	})
}
