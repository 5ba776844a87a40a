package model

// AnalyzeRequest /analyze 的 JSON 请求体
type AnalyzeRequest struct {
	AudioURL string `json:"audio_url" binding:"required"`
}

// ClientStreamMessage 流式接口客户端发送的文本消息
// Type 为 start 时，携带 Filename 和 ContentType，之后客户端发送二进制音频帧
// Type 为 end 时，表示音频发送完毕，服务端开始推理
// Type 为 abort 时，放弃本次分析
type ClientStreamMessage struct {
	Type        string `json:"type"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}
