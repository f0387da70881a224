package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	apperrors "github.com/kapu/gacha-tracker-go/pkg/errors"
)

// maxExportSize: 파일 익스포트 업로드 크기 상한 (32MiB)
const maxExportSize = 32 << 20

type urlImportRequest struct {
	Game string `json:"game" binding:"required"`
	URL  string `json:"url" binding:"required"`
	UID  string `json:"uid" binding:"required"`
}

// StartURLImport: 가챠 기록 URL로 원격 임포트 작업을 시작합니다.
// 작업은 비동기로 실행되며, 반환된 jobId로 진행 상태를 폴링합니다.
func (h *APIHandler) StartURLImport(c *gin.Context) {
	var req urlImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "game, url and uid are required",
		})
		return
	}

	game, err := domain.ParseGame(req.Game)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
		})
		return
	}

	jobID, err := h.importer.StartURLImport(c.Request.Context(), game, req.URL, req.UID)
	if err != nil {
		h.respondImportError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "accepted",
		"jobId":  jobID,
	})
}

// StartFileImport: 파일 익스포트로 임포트 작업을 시작합니다.
// 본문이 익스포트 JSON이며, game/uid는 쿼리 파라미터로 받습니다.
// multipart 업로드의 경우 "file" 필드를 사용합니다.
func (h *APIHandler) StartFileImport(c *gin.Context) {
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

	payload, err := h.readExportPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "failed to read export payload",
		})
		return
	}

	jobID, err := h.importer.StartFileImport(c.Request.Context(), game, payload, uid)
	if err != nil {
		h.respondImportError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "accepted",
		"jobId":  jobID,
	})
}

func (h *APIHandler) readExportPayload(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return io.ReadAll(io.LimitReader(f, maxExportSize))
	}

	return io.ReadAll(io.LimitReader(c.Request.Body, maxExportSize))
}

// GetProgress: 임포트 작업의 현재 진행 상태를 반환합니다.
// 만료되었거나 존재하지 않는 작업은 404를 반환합니다.
func (h *APIHandler) GetProgress(c *gin.Context) {
	jobID := c.Param("id")

	snapshot, found, err := h.progress.Get(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("progress lookup failed", "job_id", jobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to read progress",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "unknown or expired job",
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// StreamProgress: WebSocket으로 진행 상태를 실시간 스트리밍합니다.
// 작업이 끝나면 최종 스냅샷을 보낸 뒤 연결을 닫습니다.
func (h *APIHandler) StreamProgress(c *gin.Context) {
	jobID := c.Param("id")

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ctx := c.Request.Context()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		snapshot, found, err := h.progress.Get(ctx, jobID)
		if err != nil || !found {
			return
		}
		if err := conn.WriteJSON(snapshot); err != nil {
			return
		}
		if snapshot.Completed {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// respondImportError: 임포트 시작 단계의 동기 오류를 HTTP 상태 코드로 변환합니다.
func (h *APIHandler) respondImportError(c *gin.Context, err error) {
	var valErr *apperrors.ValidationError
	var schemaErr *apperrors.SchemaError

	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": valErr.Error(),
		})
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unsupported_schema",
			"message": schemaErr.Error(),
		})
	default:
		h.logger.Error("import start failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to start import",
		})
	}
}

// GetImportHistory: 완료된 임포트 작업 이력을 최신순으로 반환합니다.
func (h *APIHandler) GetImportHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	entries, err := h.audit.Recent(limit)
	if err != nil {
		h.logger.Error("임포트 이력 조회 실패", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to read import history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"history": entries,
	})
}
