package tool

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"audioai/internal/schema"
	"audioai/internal/service"
	errcode "audioai/pkg/err-code"
)

type AnalyzeAudio struct {
	name     string
	analyzer *service.Analyzer
}

func NewAnalyzeAudio(analyzer *service.Analyzer) *AnalyzeAudio {
	return &AnalyzeAudio{name: "analyze_audio", analyzer: analyzer}
}

func (t *AnalyzeAudio) GetName() string {
	return t.name
}

func (t *AnalyzeAudio) GetTool() mcp.Tool {
	return mcp.NewTool(t.name,
		mcp.WithDescription("识别远程音频的语种、情绪和声音事件，返回各情绪分数和转写文本"),
		mcp.WithString("audio_url",
			mcp.Required(),
			mcp.Description("音频文件的 http(s) 地址"),
		),
	)
}

func (t *AnalyzeAudio) Execute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	audioURL, err := req.RequireString("audio_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := t.analyzer.AnalyzeURL(ctx, audioURL)
	if err != nil {
		return mcp.NewToolResultError(errorText(err)), nil
	}

	data, err := json.Marshal(schema.AnalyzeResponse{
		Message:  "success",
		Filename: res.Filename,
		Result:   res.Result,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorText(err error) string {
	var ce *errcode.Error
	if errors.As(err, &ce) {
		return ce.Error()
	}
	var he *errcode.HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return "internal error"
}
