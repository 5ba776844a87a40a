package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"audioai/internal/model"
	"audioai/internal/service"
	errcode "audioai/pkg/err-code"
	"audioai/pkg/log"
)

const defaultStreamFilename = "stream"

type streamSession struct {
	sessionID string
	conn      Connection
	analyzer  *service.Analyzer
	log       *log.Logger
	maxBytes  int64

	started     bool
	filename    string
	contentType string
	audio       bytes.Buffer
}

func (s *streamSession) run(ctx context.Context) {
	defer func() {
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messageType, message, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debugf("stream read ended: %v", err)
			return
		}
		done, err := s.handleMessage(ctx, messageType, message)
		if err != nil {
			s.log.Warnf("stream message rejected: %v", err)
		}
		if done {
			return
		}
	}
}

// handleMessage 返回 true 表示会话结束
func (s *streamSession) handleMessage(ctx context.Context, messageType int, message []byte) (bool, error) {
	switch messageType {
	case websocket.TextMessage:
		return s.handleTextMessage(ctx, message)
	case websocket.BinaryMessage:
		return s.handleAudioMessage(message)
	default:
		return false, fmt.Errorf("unsupported message type: %d", messageType)
	}
}

func (s *streamSession) handleTextMessage(ctx context.Context, message []byte) (bool, error) {
	var msg model.ClientStreamMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return true, s.reject(http.StatusBadRequest, "invalid message")
	}

	switch msg.Type {
	case "start":
		if s.started {
			return true, s.reject(http.StatusBadRequest, "stream already started")
		}
		s.started = true
		s.filename = msg.Filename
		if s.filename == "" {
			s.filename = defaultStreamFilename
		}
		s.contentType = msg.ContentType
		return false, s.sendReadyMessage()
	case "end":
		if !s.started {
			return true, s.reject(http.StatusBadRequest, "stream not started")
		}
		return true, s.analyze(ctx)
	case "abort":
		s.log.Info("client aborted stream")
		return true, nil
	default:
		return true, s.reject(http.StatusBadRequest, "unsupported message type: "+msg.Type)
	}
}

func (s *streamSession) handleAudioMessage(data []byte) (bool, error) {
	if !s.started {
		return true, s.reject(http.StatusBadRequest, "stream not started")
	}
	if s.maxBytes > 0 && int64(s.audio.Len()+len(data)) > s.maxBytes {
		return true, s.reject(http.StatusRequestEntityTooLarge, "audio file too large")
	}
	s.audio.Write(data)
	return false, nil
}

func (s *streamSession) analyze(ctx context.Context) error {
	s.log.Infof("analyze stream %s (%d bytes)", s.filename, s.audio.Len())

	res, err := s.analyzer.AnalyzeUpload(ctx, service.Upload{
		Filename:    s.filename,
		ContentType: s.contentType,
		Body:        bytes.NewReader(s.audio.Bytes()),
	})
	if err != nil {
		return s.sendErrorMessage(err)
	}
	return s.sendResultMessage(res)
}

func (s *streamSession) reject(status int, msg string) error {
	err := errcode.NewHTTPError(status, msg)
	if serr := s.sendErrorMessage(err); serr != nil {
		return serr
	}
	return err
}
