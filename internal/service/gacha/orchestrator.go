package gacha

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/internal/service/audit"
	"github.com/kapu/gacha-tracker-go/internal/service/banner"
	"github.com/kapu/gacha-tracker-go/internal/service/progress"
	"github.com/kapu/gacha-tracker-go/internal/service/pull"
	"github.com/kapu/gacha-tracker-go/internal/util"
	"github.com/kapu/gacha-tracker-go/pkg/errors"
)

// Importer: 임포트 파이프라인 전체를 지휘하는 오케스트레이터
//
// 소스(원격 API 또는 파일 익스포트)에서 뽑기를 가져와 배너별 시간 오름차순으로
// 정규화 → 중복 판정 → 등급 해석 → 천장 계산 → 영속화를 수행하고,
// 진행 상태를 Store에 기록한다. 임포트 작업은 백그라운드 고루틴에서 돌며
// 호출자는 jobId로 진행 상태를 폴링한다.
//
// 작업 전체를 중단시키는 오류는 authkey 무효(AuthKeyError)와 파일 스키마
// 불일치(SchemaError)뿐이다. 배너 하나의 페치 실패는 해당 배너만 건너뛰고,
// 레코드 하나의 오류는 errors 카운터만 올린다.
type Importer struct {
	client  *Client
	pulls   *pull.Repository
	banners *banner.Resolver
	rarity  *RarityResolver
	dedupe  *DuplicateDetector
	pity    *PityCalculator
	store   progress.Store
	logger  *slog.Logger
	audit   *audit.Logger
}

// NewImporter: 새로운 Importer를 생성합니다.
func NewImporter(
	client *Client,
	pulls *pull.Repository,
	banners *banner.Resolver,
	rarity *RarityResolver,
	dedupe *DuplicateDetector,
	pity *PityCalculator,
	store progress.Store,
	logger *slog.Logger,
) *Importer {
	return &Importer{
		client:  client,
		pulls:   pulls,
		banners: banners,
		rarity:  rarity,
		dedupe:  dedupe,
		pity:    pity,
		store:   store,
		logger:  logger,
	}
}

// SetAuditLog: 임포트 이력 기록기를 연결한다. nil이면 이력을 남기지 않는다.
func (i *Importer) SetAuditLog(l *audit.Logger) {
	i.audit = l
}

// StartURLImport: 가챠 기록 URL에서 authkey를 추출해 원격 임포트 작업을 시작한다.
// authkey가 없으면 작업을 만들지 않고 즉시 ValidationError를 반환한다.
func (i *Importer) StartURLImport(ctx context.Context, game domain.Game, rawURL, uid string) (string, error) {
	authkey, err := ExtractAuthKey(rawURL)
	if err != nil {
		return "", err
	}

	source := NewAPISource(i.client, game, authkey, i.logger)
	return i.start(ctx, game, uid, "url", source), nil
}

// StartFileImport: 파일 익스포트 페이로드로 임포트 작업을 시작한다.
// 스키마 판별은 동기적으로 수행되므로, 알 수 없는 형식이면 작업을 만들지
// 않고 SchemaError를 반환한다.
func (i *Importer) StartFileImport(ctx context.Context, game domain.Game, payload []byte, uid string) (string, error) {
	source, err := NewFileSource(game, payload)
	if err != nil {
		return "", err
	}

	return i.start(ctx, game, uid, "file", source), nil
}

func (i *Importer) start(ctx context.Context, game domain.Game, uid, sourceLabel string, source Source) string {
	jobID := uuid.NewString()

	initial := domain.ProgressSnapshot{
		JobID:     jobID,
		Percent:   0,
		Message:   "임포트 준비 중",
		Total:     source.Total(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := i.store.Set(ctx, jobID, initial); err != nil {
		i.logger.Warn("진행 상태 초기화 실패", "jobId", jobID, "error", err)
	}

	// 요청 컨텍스트가 끝나도 작업은 계속되어야 한다
	go i.run(context.WithoutCancel(ctx), jobID, game, uid, sourceLabel, source)

	return jobID
}

type jobState struct {
	jobID       string
	game        domain.Game
	uid         string
	source      string
	startedAt   time.Time
	total       int
	processed   int
	imported    int
	skipped     int
	errors      int
	lastPercent int
}

func (i *Importer) run(ctx context.Context, jobID string, game domain.Game, uid, sourceLabel string, source Source) {
	sessionStart := time.Now().UTC()
	state := &jobState{
		jobID:     jobID,
		game:      game,
		uid:       uid,
		source:    sourceLabel,
		startedAt: sessionStart,
		total:     source.Total(),
	}
	codes := source.BannerCodes()

	i.logger.Info("임포트 작업 시작",
		"jobId", jobID, "game", game, "uid", uid, "banners", len(codes))

	for idx, code := range codes {
		bannerBase := idx * 100 / max(len(codes), 1)

		raws, err := source.FetchBanner(ctx, code, func(fetched int) {
			i.publish(ctx, state, bannerBase,
				fmt.Sprintf("배너 %s 기록 수집 중 (%d건)", code, fetched), "")
		})
		if err != nil {
			if isFatalToJob(err) {
				i.fail(ctx, state, err)
				return
			}
			i.logger.Warn("배너 페치 실패, 건너뜀", "jobId", jobID, "banner", code, "error", err)
			state.errors++
			continue
		}

		resolved, err := i.banners.Resolve(ctx, code, game)
		if err != nil {
			i.logger.Warn("배너 해석 실패, 건너뜀", "jobId", jobID, "banner", code, "error", err)
			state.errors++
			continue
		}

		for _, raw := range raws {
			state.processed++
			i.processRecord(ctx, state, game, uid, resolved, raw, sessionStart, bannerBase, idx, len(codes))
		}
	}

	i.finish(ctx, state)
}

// processRecord: 레코드 하나를 파이프라인에 통과시킨다. 오류는 카운터로만
// 반영되고 작업은 계속된다.
func (i *Importer) processRecord(
	ctx context.Context,
	state *jobState,
	game domain.Game,
	uid string,
	resolved *domain.Banner,
	raw domain.RawPull,
	sessionStart time.Time,
	bannerBase, bannerIdx, bannerTotal int,
) {
	if raw.ItemName == "" || raw.Time.IsZero() {
		i.logger.Debug("필수 필드 누락, 레코드 폐기",
			"jobId", state.jobID, "externalId", raw.ExternalID)
		state.errors++
		return
	}

	normalized := util.NormalizeItemName(raw.ItemName)

	dup, err := i.dedupe.IsDuplicate(ctx, uid, normalized, resolved.BannerID, game, raw.Time, sessionStart)
	if err != nil {
		i.logger.Warn("중복 판정 실패", "jobId", state.jobID, "error", err)
		state.errors++
		return
	}
	if dup {
		state.skipped++
		i.publish(ctx, state, bannerBase, "중복 기록 건너뜀", normalized)
		return
	}

	rank := i.rarity.Resolve(ctx, normalized, game, raw.RankType)

	pityCount, err := i.pity.Compute(ctx, uid, resolved.BannerID, game, raw.Time)
	if err != nil {
		i.logger.Warn("천장 계산 실패", "jobId", state.jobID, "error", err)
		state.errors++
		return
	}

	record := &domain.PullRecord{
		ExternalID: raw.ExternalID,
		UID:        uid,
		Game:       game,
		BannerID:   resolved.BannerID,
		ItemName:   normalized,
		ItemType:   raw.ItemType,
		RankType:   rank,
		Time:       raw.Time,
		PityCount:  pityCount,
		IsFeatured: isFeatured(rank, game, resolved.BannerType),
	}
	if err := i.pulls.Create(ctx, record); err != nil {
		i.logger.Warn("뽑기 저장 실패", "jobId", state.jobID, "error", err)
		state.errors++
		return
	}

	state.imported++
	i.publish(ctx, state, bannerBase,
		fmt.Sprintf("배너 %d/%d 임포트 중", bannerIdx+1, bannerTotal), normalized)
}

// publish: 단조 비감소를 보장하며 진행 상태를 기록한다.
// 총 건수를 아는 소스(파일)는 처리 건수 비율을, 모르는 소스(원격 API)는
// 배너 진행 비율을 쓴다. 100%는 finish에서만 도달한다.
func (i *Importer) publish(ctx context.Context, state *jobState, bannerBase int, message, currentItem string) {
	percent := bannerBase
	if state.total > 0 {
		percent = state.processed * 100 / state.total
	}
	if percent > 99 {
		percent = 99
	}
	if percent < state.lastPercent {
		percent = state.lastPercent
	}
	state.lastPercent = percent

	snapshot := domain.ProgressSnapshot{
		JobID:       state.jobID,
		Percent:     percent,
		Message:     message,
		Imported:    state.imported,
		Skipped:     state.skipped,
		Errors:      state.errors,
		Total:       state.total,
		CurrentItem: currentItem,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := i.store.Set(ctx, state.jobID, snapshot); err != nil {
		i.logger.Warn("진행 상태 기록 실패", "jobId", state.jobID, "error", err)
	}
}

func (i *Importer) finish(ctx context.Context, state *jobState) {
	// 완료 스냅샷 공개 전에 기록해야 폴링 측이 이력을 바로 볼 수 있다
	i.recordAudit(state, false)

	snapshot := domain.ProgressSnapshot{
		JobID:     state.jobID,
		Percent:   100,
		Message:   fmt.Sprintf("임포트 완료: %d건 저장, %d건 중복, %d건 오류", state.imported, state.skipped, state.errors),
		Completed: true,
		Imported:  state.imported,
		Skipped:   state.skipped,
		Errors:    state.errors,
		Total:     state.total,
		UpdatedAt: time.Now().UTC(),
	}
	if err := i.store.Complete(ctx, state.jobID, snapshot); err != nil {
		i.logger.Warn("완료 상태 기록 실패", "jobId", state.jobID, "error", err)
	}

	i.logger.Info("임포트 작업 완료",
		"jobId", state.jobID,
		"imported", state.imported, "skipped", state.skipped, "errors", state.errors)
}

func (i *Importer) fail(ctx context.Context, state *jobState, cause error) {
	i.recordAudit(state, true)

	// 완료된 작업은 실패 여부와 무관하게 100%로 보고한다.
	// 실패는 errors 카운트와 메시지로 구분된다.
	snapshot := domain.ProgressSnapshot{
		JobID:     state.jobID,
		Percent:   100,
		Message:   fmt.Sprintf("임포트 중단: %v", cause),
		Completed: true,
		Imported:  state.imported,
		Skipped:   state.skipped,
		Errors:    state.errors + 1,
		Total:     state.total,
		UpdatedAt: time.Now().UTC(),
	}
	if err := i.store.Complete(ctx, state.jobID, snapshot); err != nil {
		i.logger.Warn("완료 상태 기록 실패", "jobId", state.jobID, "error", err)
	}

	i.logger.Error("임포트 작업 중단", "jobId", state.jobID, "error", cause)
}

func (i *Importer) recordAudit(state *jobState, aborted bool) {
	if i.audit == nil {
		return
	}
	i.audit.Record(audit.Entry{
		JobID:    state.jobID,
		Game:     state.game.String(),
		UID:      state.uid,
		Source:   state.source,
		Imported: state.imported,
		Skipped:  state.skipped,
		Errors:   state.errors,
		Aborted:  aborted,
		Duration: time.Since(state.startedAt).Round(time.Millisecond).String(),
	})
}

// isFatalToJob: 배너 하나가 아니라 작업 전체를 중단시켜야 하는 오류 판정
func isFatalToJob(err error) bool {
	var authErr *errors.AuthKeyError
	var schemaErr *errors.SchemaError
	return stderrors.As(err, &authErr) || stderrors.As(err, &schemaErr)
}

// isFeatured: 이벤트성 배너에서 나온 최고 등급만 픽업으로 본다.
// 아이템 단위 픽업 목록 없이 쓸 수 있는 근사치다.
func isFeatured(rank int, game domain.Game, bannerType domain.BannerType) bool {
	if rank != game.TopRarity() {
		return false
	}
	switch bannerType {
	case domain.BannerCharacter, domain.BannerWeapon, domain.BannerChronicled:
		return true
	default:
		return false
	}
}
