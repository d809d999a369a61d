package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/ogc-mcp/internal/mapper"
)

const version = "0.1.0"

// Config contains server configuration.
type Config struct {
	DefaultServer string // upstream base URL used when a call omits server_url
	Factory       ClientFactory
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools,
// prompts, resources, and middleware. Bearer auth is enforced at the
// HTTP router, never here, so stdio and in-memory sessions work
// without headers.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "ogc-mcp",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	handler := NewHandler(cfg.DefaultServer, cfg.Factory)
	registerTools(server, handler)
	registerPrompts(server)

	return server
}

func registerPrompts(server *sdkmcp.Server) {
	for _, prompt := range mapper.WorkflowPrompts() {
		name := prompt.Name
		server.AddPrompt(prompt, func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
			var args map[string]string
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			text, ok := mapper.RenderPrompt(name, args)
			if !ok {
				return nil, fmt.Errorf("unknown prompt: %s", name)
			}
			return &sdkmcp.GetPromptResult{
				Messages: []*sdkmcp.PromptMessage{
					{
						Role:    "user",
						Content: &sdkmcp.TextContent{Text: text},
					},
				},
			}, nil
		})
	}
}
