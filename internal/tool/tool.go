package tool

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Caller 通过 MCP 暴露的工具
type Caller interface {
	// GetName 获取工具名称
	GetName() string
	// GetTool 获取工具定义
	GetTool() mcp.Tool
	// Execute 执行工具，业务错误以 IsError 结果返回而不是 error
	Execute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}
