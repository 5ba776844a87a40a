package tool

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"audioai/internal/normalize"
)

// ListEmotions 返回对外情绪分类及模型标签映射
type ListEmotions struct {
	name string
}

func NewListEmotions() *ListEmotions {
	return &ListEmotions{name: "list_emotions"}
}

func (t *ListEmotions) GetName() string {
	return t.name
}

func (t *ListEmotions) GetTool() mcp.Tool {
	return mcp.NewTool(t.name,
		mcp.WithDescription("列出 analyze_audio 可能返回的情绪分类，以及模型原始标签到分类的映射"),
	)
}

func (t *ListEmotions) Execute(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(map[string]any{
		"emotions": normalize.Canonicals,
		"labels": map[string]normalize.Table{
			normalize.TableUpper: normalize.UpperTable,
			normalize.TableLower: normalize.LowerTable,
		},
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
