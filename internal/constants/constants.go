package constants

import "time"

// ImportConfig 는 가챠 임포트 엔진 설정이다.
var ImportConfig = struct {
	PageSize          int
	PageDelay         time.Duration // 업스트림 rate limit 준수를 위한 페이지 간 지연
	MaxPagesPerBanner int           // 커서 오동작 시에도 종료를 보장하는 안전 상한
	DedupeBuffer      time.Duration // 세션 경계 판정용 버퍼 윈도우
	ProgressRetention time.Duration // 완료된 작업의 진행 상태 보존 기간
	ProgressTTL       time.Duration // 실행 중 작업의 진행 상태 TTL
	DefaultRarity     int           // 매핑/폴백 모두 실패했을 때의 기본 등급
	Lang              string
}{
	PageSize:          20,
	PageDelay:         1500 * time.Millisecond,
	MaxPagesPerBanner: 100,
	DedupeBuffer:      5 * time.Second,
	ProgressRetention: 60 * time.Second,
	ProgressTTL:       1 * time.Hour,
	DefaultRarity:     4,
	Lang:              "en",
}

// RetryConfig 는 페이지 단위 재시도 정책이다.
var RetryConfig = struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	Multiplier      float64
	RandomizeFactor float64
}{
	MaxAttempts:     3,
	BaseDelay:       500 * time.Millisecond,
	MaxDelay:        5 * time.Second,
	Multiplier:      2.0,
	RandomizeFactor: 0.25,
}

// APIRetcode 는 업스트림 가챠 로그 API의 retcode 값이다.
var APIRetcode = struct {
	OK             int
	AuthKeyInvalid int
	AuthKeyTimeout int
	VisitTooFast   int
}{
	OK:             0,
	AuthKeyInvalid: -100,
	AuthKeyTimeout: -101,
	VisitTooFast:   -110,
}

// RequestTimeout 는 HTTP 요청 및 서비스 타임아웃 설정
var RequestTimeout = struct {
	GachaAPI     time.Duration
	APIRequest   time.Duration
	DatabasePing time.Duration
}{
	GachaAPI:     20 * time.Second,
	APIRequest:   10 * time.Second,
	DatabasePing: 5 * time.Second,
}

// AppTimeout 는 앱 빌드/종료 타임아웃 설정이다.
var AppTimeout = struct {
	Build    time.Duration
	Shutdown time.Duration
}{
	Build:    30 * time.Second,
	Shutdown: 10 * time.Second,
}

// ServerTimeout 는 HTTP 서버 타임아웃이다.
var ServerTimeout = struct {
	ReadHeader time.Duration
	Idle       time.Duration
}{
	ReadHeader: 5 * time.Second,
	Idle:       60 * time.Second,
}

// ServerConfig 는 서버 기본 설정이다.
var ServerConfig = struct {
	TrustedProxies []string
}{
	TrustedProxies: []string{"127.0.0.1", "::1"},
}

// CORSConfig 는 CORS 기본 설정이다.
var CORSConfig = struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}{
	AllowOrigins: []string{"http://localhost:5173"},
	AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
}

// ValkeyConfig 는 Valkey 연결 설정이다.
var ValkeyConfig = struct {
	ReadyTimeout      time.Duration
	ConnWriteTimeout  time.Duration
	DialTimeout       time.Duration
	BlockingPoolSize  int
	PipelineMultiplex int
}{
	ReadyTimeout:      5 * time.Second,
	ConnWriteTimeout:  3 * time.Second,
	DialTimeout:       5 * time.Second,
	BlockingPoolSize:  50,
	PipelineMultiplex: 4,
}

// DatabaseConfig 는 데이터베이스 연결 설정이다.
var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// DatabaseDefaults 는 PostgreSQL 기본값이다. (env 미설정 시)
var DatabaseDefaults = struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}{
	Host:     "localhost",
	Port:     5432,
	User:     "gacha_user",
	Password: "gacha_password",
	Database: "gacha_tracker_db",
}
