package handler

import (
	"fmt"

	"audioai/internal/schema"
	"audioai/internal/service"
)

func (s *streamSession) sendReadyMessage() error {
	return s.send(schema.StreamResponse{Type: "ready", SessionID: s.sessionID})
}

func (s *streamSession) sendResultMessage(res *service.Analysis) error {
	return s.send(schema.StreamResponse{
		Type:      "result",
		SessionID: s.sessionID,
		Status:    200,
		AnalyzeResponse: &schema.AnalyzeResponse{
			Message:     "success",
			Filename:    res.Filename,
			ContentType: res.ContentType,
			Result:      res.Result,
		},
	})
}

func (s *streamSession) sendErrorMessage(cause error) error {
	status, body := ErrorBody(cause)
	msg := schema.StreamResponse{Type: "error", SessionID: s.sessionID, Status: status}
	switch b := body.(type) {
	case schema.ErrorResponse:
		msg.Error = &b
	case schema.HTTPErrorResponse:
		msg.Error = &schema.ErrorResponse{Message: b.Message}
	}
	return s.send(msg)
}

func (s *streamSession) send(msg schema.StreamResponse) error {
	if err := s.conn.WriteJSON(msg); err != nil {
		if s.conn.IsClosed() {
			return nil
		}
		return fmt.Errorf("failed to send %s message: %v", msg.Type, err)
	}
	return nil
}
