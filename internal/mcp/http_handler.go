package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewHTTPHandler serves single-shot JSON-RPC requests over plain HTTP
// POST. Each request runs against a fresh initialized in-memory session,
// which suits stateless clients and curl-style debugging; streaming
// clients should use the SDK's streamable HTTP endpoint instead.
func NewHTTPHandler(server *sdkmcp.Server, logger *slog.Logger) http.Handler {
	return &httpHandler{
		server: server,
		logger: logger,
	}
}

type httpHandler struct {
	server *sdkmcp.Server
	logger *slog.Logger
}

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonrpcError `json:"error,omitempty"`
	ID      any           `json:"id,omitempty"`
}

type jsonrpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, jsonrpc.CodeParseError, "Parse error", nil)
		return
	}

	var req jsonrpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, jsonrpc.CodeParseError, "Parse error", nil)
		return
	}

	ctx := r.Context()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := h.server.Connect(ctx, serverTransport, nil)
	if err != nil {
		h.writeError(w, jsonrpc.CodeInternalError, fmt.Sprintf("Internal error: %v", err), req.ID)
		return
	}
	defer serverSession.Close()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "ogc-mcp-http-bridge",
		Version: version,
	}, nil)

	// Connect performs the initialize handshake, so the session is
	// ready for any method by the time dispatch runs.
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		h.writeError(w, jsonrpc.CodeInternalError, fmt.Sprintf("Internal error: %v", err), req.ID)
		return
	}
	defer clientSession.Close()

	result, err := dispatch(ctx, clientSession, req.Method, req.Params)
	if err != nil {
		var rpcErr *jsonrpc.Error
		if errors.As(err, &rpcErr) {
			var data any
			if len(rpcErr.Data) > 0 {
				data = rpcErr.Data
			}
			h.writeErrorData(w, rpcErr.Code, rpcErr.Message, data, req.ID)
			return
		}
		h.writeError(w, jsonrpc.CodeInternalError, err.Error(), req.ID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jsonrpcResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

// dispatch forwards a single JSON-RPC method to the bridged client
// session and returns the typed result for the response body.
func dispatch(ctx context.Context, session *sdkmcp.ClientSession, method string, rawParams json.RawMessage) (any, error) {
	switch method {
	case "initialize":
		return session.InitializeResult(), nil
	case "notifications/initialized":
		// The bridge session already completed the handshake.
		return map[string]any{}, nil
	case "ping":
		if err := session.Ping(ctx, nil); err != nil {
			return nil, err
		}
		return map[string]any{}, nil
	case "tools/list":
		params := &sdkmcp.ListToolsParams{}
		if err := decodeParams(rawParams, params); err != nil {
			return nil, err
		}
		return session.ListTools(ctx, params)
	case "tools/call":
		params := &sdkmcp.CallToolParams{}
		if err := decodeParams(rawParams, params); err != nil {
			return nil, err
		}
		return session.CallTool(ctx, params)
	case "prompts/list":
		params := &sdkmcp.ListPromptsParams{}
		if err := decodeParams(rawParams, params); err != nil {
			return nil, err
		}
		return session.ListPrompts(ctx, params)
	case "prompts/get":
		params := &sdkmcp.GetPromptParams{}
		if err := decodeParams(rawParams, params); err != nil {
			return nil, err
		}
		return session.GetPrompt(ctx, params)
	case "resources/list":
		params := &sdkmcp.ListResourcesParams{}
		if err := decodeParams(rawParams, params); err != nil {
			return nil, err
		}
		return session.ListResources(ctx, params)
	case "resources/templates/list":
		params := &sdkmcp.ListResourceTemplatesParams{}
		if err := decodeParams(rawParams, params); err != nil {
			return nil, err
		}
		return session.ListResourceTemplates(ctx, params)
	case "resources/read":
		params := &sdkmcp.ReadResourceParams{}
		if err := decodeParams(rawParams, params); err != nil {
			return nil, err
		}
		return session.ReadResource(ctx, params)
	default:
		return nil, &jsonrpc.Error{
			Code:    jsonrpc.CodeMethodNotFound,
			Message: fmt.Sprintf("method %q not found", method),
		}
	}
}

func decodeParams(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &jsonrpc.Error{
			Code:    jsonrpc.CodeInvalidParams,
			Message: fmt.Sprintf("invalid params: %v", err),
		}
	}
	return nil
}

func (h *httpHandler) writeError(w http.ResponseWriter, code int64, message string, id any) {
	h.writeErrorData(w, code, message, nil, id)
}

func (h *httpHandler) writeErrorData(w http.ResponseWriter, code int64, message string, data any, id any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // JSON-RPC errors are still 200 OK
	json.NewEncoder(w).Encode(jsonrpcResponse{
		JSONRPC: "2.0",
		Error: &jsonrpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}
