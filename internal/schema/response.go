package schema

import "audioai/internal/normalize"

type MessageResponse struct {
	Message string `json:"message"`
}

type AnalyzeResponse struct {
	Message     string            `json:"message"`
	Filename    string            `json:"filename"`
	ContentType string            `json:"content_type,omitempty"` // 仅上传接口返回
	Result      *normalize.Result `json:"result"`
}

// ErrorResponse 业务错误：格式错误 400，模型错误 500
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// HTTPErrorResponse 框架层错误，原样返回状态码
type HTTPErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// HealthResponse 失败原因只写日志
type HealthResponse struct {
	Status string `json:"status"`
}

// StreamResponse 流式接口下发的消息，Type 为 ready/result/error
type StreamResponse struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Status    int    `json:"status,omitempty"`
	*AnalyzeResponse
	Error *ErrorResponse `json:"error,omitempty"`
}
