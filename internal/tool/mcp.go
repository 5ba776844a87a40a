package tool

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"audioai/internal/service"
)

const (
	serverName    = "audioai"
	serverVersion = "1.0.0"
)

// NewMCPServer 注册全部工具
func NewMCPServer(analyzer *service.Analyzer) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, c := range Callers(analyzer) {
		s.AddTool(c.GetTool(), c.Execute)
	}
	return s
}

func Callers(analyzer *service.Analyzer) []Caller {
	return []Caller{
		NewAnalyzeAudio(analyzer),
		NewListEmotions(),
	}
}

// NewHTTPHandler MCP streamable HTTP 传输，挂载在 /mcp
func NewHTTPHandler(analyzer *service.Analyzer) http.Handler {
	return server.NewStreamableHTTPServer(NewMCPServer(analyzer))
}
