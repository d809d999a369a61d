package testserver

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ganot/ogc-mcp/internal/mcp"
	"github.com/ganot/ogc-mcp/internal/ogc"
	"github.com/ganot/ogc-mcp/internal/transport"
)

// Gateway is a fully wired MCP gateway backed by a fake upstream.
type Gateway struct {
	Server   *httptest.Server
	Upstream *Upstream
}

// NewGateway starts a fake upstream and a gateway pointed at it. The
// returned server speaks single-shot JSON-RPC on /rpc.
func NewGateway(t *testing.T, authToken string) *Gateway {
	t.Helper()

	upstream := NewUpstream(t)
	logger := slog.New(slog.DiscardHandler)

	factory := func(baseURL string) mcp.OGCClient {
		return ogc.NewClient(baseURL, ogc.WithTimeout(10*time.Second))
	}
	mcpServer := mcp.NewServer(mcp.Config{
		DefaultServer: upstream.URL(),
		Factory:       factory,
		Logger:        logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mcp.RegisterCatalog(ctx, mcpServer, mcp.NewHandler(upstream.URL(), factory), logger)
	cancel()

	server := httptest.NewServer(transport.NewRouter(transport.Routes{
		MCP:       mcp.NewHTTPHandler(mcpServer, logger),
		RPC:       mcp.NewHTTPHandler(mcpServer, logger),
		AuthToken: authToken,
	}))
	t.Cleanup(server.Close)

	return &Gateway{Server: server, Upstream: upstream}
}

// RPCURL returns the JSON-RPC endpoint.
func (g *Gateway) RPCURL() string { return g.Server.URL + "/rpc" }
