package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes bundles the handlers mounted on the HTTP router.
type Routes struct {
	// MCP serves the SDK's streamable HTTP transport.
	MCP http.Handler
	// RPC serves single-shot JSON-RPC POST requests for stateless
	// clients and tests.
	RPC http.Handler
	// AuthToken, when non-empty, gates all routes except /health.
	AuthToken string
}

// NewRouter creates the gateway's HTTP router.
func NewRouter(routes Routes) *chi.Mux {
	r := chi.NewRouter()
	r.Use(BearerAuth(routes.AuthToken))

	r.Handle("/mcp", routes.MCP)
	r.Handle("/mcp/*", routes.MCP)
	r.Post("/rpc", routes.RPC.ServeHTTP)
	r.Get("/health", handleHealth)

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
