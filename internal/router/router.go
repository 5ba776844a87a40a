package router

import (
	"context"

	"github.com/gin-gonic/gin"

	"audioai/internal/config"
	"audioai/internal/metrics"
	"audioai/internal/router/handler"
	"audioai/internal/service"
	"audioai/internal/tool"
	"audioai/pkg/log"
)

type Deps struct {
	Config   *config.Manager
	Logger   *log.Logger
	Analyzer *service.Analyzer
	Metrics  *metrics.Collector
}

// NewRouter ctx 结束时限流器的后台清理协程随之退出
func NewRouter(ctx context.Context, deps Deps) *gin.Engine {
	cfg := deps.Config.Get()
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		RequestID(),
		RequestLogger(deps.Logger),
		Recovery(deps.Logger),
		Metrics(deps.Metrics),
		RateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		ErrorHandler(),
	)

	h := handler.NewHandler(deps.Config, deps.Logger, deps.Analyzer)
	stream := handler.NewStreamServer(deps.Config, deps.Logger, deps.Analyzer)

	r.GET("/", h.Root)
	r.POST("/analyze", h.Analyze)
	r.POST("/legacy-analyze", h.LegacyAnalyze)
	r.GET("/analyze/stream", stream.Server)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	r.Any("/mcp", gin.WrapH(tool.NewHTTPHandler(deps.Analyzer)))

	r.NoRoute(notFound)
	r.NoMethod(methodNotAllowed)
	return r
}
