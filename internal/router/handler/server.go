package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"audioai/internal/config"
	"audioai/internal/service"
	"audioai/pkg/log"
)

// StreamServer 通过 websocket 接收分片音频后做一次分析
type StreamServer struct {
	cfg      *config.Manager
	log      *log.Logger
	analyzer *service.Analyzer
}

func NewStreamServer(cfg *config.Manager, log *log.Logger, analyzer *service.Analyzer) *StreamServer {
	return &StreamServer{
		cfg:      cfg,
		log:      log,
		analyzer: analyzer,
	}
}

func (s *StreamServer) Server(ctx *gin.Context) {
	maxBytes := s.cfg.Get().Upload.MaxBytes
	conn, err := newWebsocketConn(ctx.Writer, ctx.Request, maxBytes)
	if err != nil {
		s.log.Errorf("failed to create websocket connection: %v", err)
		return
	}

	sessionID := uuid.New().String()
	s.log.Infof("stream session %s connected from %s", sessionID, ctx.ClientIP())

	session := &streamSession{
		sessionID: sessionID,
		conn:      conn,
		analyzer:  s.analyzer,
		log:       s.log.WithFields(log.Fields{"session_id": sessionID}),
		maxBytes:  maxBytes,
	}
	session.run(ctx.Request.Context())
}
