package progress

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/domain"
	"github.com/kapu/gacha-tracker-go/pkg/errors"
)

const keyPrefix = "gacha:import:progress:"

// ValkeyStore: Valkey 기반 진행 상태 저장소
// TTL은 서버 측 키 만료로 처리되므로 별도 청소 루프가 없다.
type ValkeyStore struct {
	client    valkey.Client
	logger    *slog.Logger
	ttl       time.Duration
	retention time.Duration
}

// ValkeyConfig: Valkey 연결 설정
type ValkeyConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewValkeyStore: Valkey 연결을 수립하고 진행 상태 저장소를 초기화한다.
func NewValkeyStore(cfg ValkeyConfig, ttl, retention time.Duration, logger *slog.Logger) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ConnWriteTimeout:  constants.ValkeyConfig.ConnWriteTimeout,
		BlockingPoolSize:  constants.ValkeyConfig.BlockingPoolSize,
		PipelineMultiplex: constants.ValkeyConfig.PipelineMultiplex,
		Dialer:            net.Dialer{Timeout: constants.ValkeyConfig.DialTimeout},
	})
	if err != nil {
		return nil, errors.NewCacheError("init", "", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ValkeyConfig.ReadyTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("ping", "", err)
	}

	logger.Info("progress store connected",
		slog.String("backend", "valkey"),
		slog.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		slog.Int("db", cfg.DB),
	)

	return &ValkeyStore{
		client:    client,
		logger:    logger,
		ttl:       ttl,
		retention: retention,
	}, nil
}

// NewValkeyStoreWithClient: 이미 연결된 클라이언트로 저장소를 생성한다. (테스트용)
func NewValkeyStoreWithClient(client valkey.Client, ttl, retention time.Duration, logger *slog.Logger) *ValkeyStore {
	return &ValkeyStore{
		client:    client,
		logger:    logger,
		ttl:       ttl,
		retention: retention,
	}
}

// Set: 실행 중 작업의 스냅샷을 TTL과 함께 저장한다.
func (s *ValkeyStore) Set(ctx context.Context, jobID string, snapshot domain.ProgressSnapshot) error {
	return s.write(ctx, jobID, snapshot, s.ttl)
}

// Complete: 최종 스냅샷을 보존 TTL과 함께 저장한다.
func (s *ValkeyStore) Complete(ctx context.Context, jobID string, snapshot domain.ProgressSnapshot) error {
	return s.write(ctx, jobID, snapshot, s.retention)
}

func (s *ValkeyStore) write(ctx context.Context, jobID string, snapshot domain.ProgressSnapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return errors.NewCacheError("set", jobID, err)
	}

	key := keyPrefix + jobID
	cmd := s.client.B().Set().Key(key).Value(string(payload)).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		s.logger.Error("progress set failed", slog.String("job_id", jobID), slog.Any("error", err))
		return errors.NewCacheError("set", key, err)
	}
	return nil
}

// Get: 스냅샷을 조회한다. 키가 만료되었거나 없으면 found=false.
func (s *ValkeyStore) Get(ctx context.Context, jobID string) (domain.ProgressSnapshot, bool, error) {
	key := keyPrefix + jobID
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if valkey.IsValkeyNil(resp.Error()) {
		return domain.ProgressSnapshot{}, false, nil
	}
	if resp.Error() != nil {
		return domain.ProgressSnapshot{}, false, errors.NewCacheError("get", key, resp.Error())
	}

	value, err := resp.ToString()
	if err != nil {
		return domain.ProgressSnapshot{}, false, errors.NewCacheError("get", key, err)
	}

	var snapshot domain.ProgressSnapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return domain.ProgressSnapshot{}, false, errors.NewCacheError("unmarshal", key, err)
	}
	return snapshot, true, nil
}

// Delete: 스냅샷을 즉시 제거한다.
func (s *ValkeyStore) Delete(ctx context.Context, jobID string) error {
	key := keyPrefix + jobID
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		return errors.NewCacheError("delete", key, err)
	}
	return nil
}

// Close: Valkey 연결을 종료한다.
func (s *ValkeyStore) Close() {
	s.client.Close()
}
