package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kapu/gacha-tracker-go/internal/config"
	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/health"
	"github.com/kapu/gacha-tracker-go/internal/server"
)

// ProvideAPIAddr: API 서버가 리슨할 주소를 반환합니다.
func ProvideAPIAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%d", cfg.Server.Port)
}

// ProvideAPIServer: HTTP 서버 인스턴스를 생성합니다.
// H2C(HTTP/2 Cleartext)를 기본으로 사용하여 멀티플렉싱과 헤더 압축 이점을 제공한다.
func ProvideAPIServer(addr string, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           server.WrapH2C(router),
		ReadHeaderTimeout: constants.ServerTimeout.ReadHeader,
		IdleTimeout:       constants.ServerTimeout.Idle,
	}
}

// ProvideAPIRouter: 가챠 트래커 API를 서빙하는 Gin 라우터를 설정합니다.
func ProvideAPIRouter(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	apiHandler *server.APIHandler,
) (*gin.Engine, error) {
	router, err := newAPIRouter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	registerAPIRoutes(router, cfg.Server.APIKey, apiHandler)

	if cfg.Server.APIKey != "" {
		logger.Info("api_key_auth_enabled")
	} else {
		logger.Warn("api_key_auth_disabled", slog.String("reason", "API_SECRET_KEY not set"))
	}

	return router, nil
}

func newAPIRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(constants.ServerConfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(server.LoggerMiddleware(ctx, logger,
		"/health",
		"*/stream", // 진행 상태 WebSocket 폴링
	))
	router.Use(cors.New(newAPICORSConfig()))
	router.Use(server.SecurityHeadersMiddleware())

	// Health check 엔드포인트 (버전/uptime 포함)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, health.Get())
	})

	// NoRoute 핸들러: 미등록 경로 접근 시 API Key 검증 후 401/404 반환
	router.NoRoute(server.NoRouteAuthHandler(cfg.Server.APIKey))

	return router, nil
}

func newAPICORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = constants.CORSConfig.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = constants.CORSConfig.AllowMethods
	corsConfig.AllowHeaders = constants.CORSConfig.AllowHeaders
	return corsConfig
}

func registerAPIRoutes(router *gin.Engine, apiKey string, apiHandler *server.APIHandler) {
	api := router.Group("/api")

	// API Key 인증 미들웨어 적용 (apiKey가 빈 문자열이면 인증 건너뜀)
	api.Use(server.APIKeyAuthMiddleware(apiKey))

	api.POST("/import/url", apiHandler.StartURLImport)
	api.POST("/import/file", apiHandler.StartFileImport)
	api.GET("/import/progress/:id", apiHandler.GetProgress)
	api.GET("/import/progress/:id/stream", apiHandler.StreamProgress)
	api.GET("/import/history", apiHandler.GetImportHistory)

	api.GET("/pulls", apiHandler.GetPulls)
	api.GET("/pulls/stats", apiHandler.GetPullStats)
}
