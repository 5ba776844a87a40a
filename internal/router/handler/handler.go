package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"audioai/internal/config"
	"audioai/internal/schema"
	"audioai/internal/service"
	"audioai/pkg/log"
)

const healthTimeout = 3 * time.Second

type Handler struct {
	cfg      *config.Manager
	log      *log.Logger
	analyzer *service.Analyzer
}

func NewHandler(cfg *config.Manager, log *log.Logger, analyzer *service.Analyzer) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      log,
		analyzer: analyzer,
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, schema.MessageResponse{Message: "Hello audio-AI server!"})
}

// Health 模型服务不可用时返回 503
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.analyzer.Health(ctx); err != nil {
		h.log.Warnf("model health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, schema.HealthResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, schema.HealthResponse{Status: "ok"})
}
