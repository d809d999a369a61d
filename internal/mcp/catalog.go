package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/ogc-mcp/internal/mapper"
	"github.com/ganot/ogc-mcp/internal/ogc"
)

// RegisterCatalog discovers the default server's collections and
// processes and registers them as MCP resources and per-process tools.
// Registration is best effort: an unreachable or partial upstream
// reduces the catalog, it never fails startup. The builtin tools keep
// working either way.
func RegisterCatalog(ctx context.Context, server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	if handler.defaultServer == "" {
		return
	}
	client, err := handler.client("")
	if err != nil {
		return
	}
	defer client.Close()

	registerCollectionResources(ctx, server, client, logger)
	registerProcessTools(ctx, server, client, handler, logger)
}

func registerCollectionResources(ctx context.Context, server *sdkmcp.Server, client OGCClient, logger *slog.Logger) {
	cols, err := client.GetCollections(ctx)
	if err != nil {
		logger.Warn("catalog: collection discovery failed", "server", client.BaseURL(), "error", err)
		return
	}
	base := client.BaseURL()
	for _, col := range cols {
		switch ogc.ClassifyCollection(col) {
		case "edr":
			edrCol, err := client.GetEDRCollection(ctx, col.ID)
			if err != nil {
				logger.Warn("catalog: edr collection skipped", "collection", col.ID, "error", err)
				continue
			}
			addSnapshotResource(server, mapper.EDRCollectionToResource(*edrCol, base), edrCol)
		default:
			addSnapshotResource(server, mapper.CollectionToResource(col, base), col)
		}
	}
	logger.Info("catalog: collections registered", "server", base, "count", len(cols))
}

// addSnapshotResource registers a resource whose content is the JSON
// snapshot of the collection taken at discovery time.
func addSnapshotResource(server *sdkmcp.Server, res *sdkmcp.Resource, snapshot any) {
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return
	}
	content := string(body)
	res.Size = int64(len(content))
	server.AddResource(res, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		uri := res.URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      uri,
				MIMEType: "application/json",
				Text:     content,
			}},
		}, nil
	})
}

func registerProcessTools(ctx context.Context, server *sdkmcp.Server, client OGCClient, handler *Handler, logger *slog.Logger) {
	procs, err := client.GetProcesses(ctx)
	if err != nil {
		logger.Warn("catalog: process discovery failed", "server", client.BaseURL(), "error", err)
		return
	}
	base := client.BaseURL()
	registered := 0
	for _, summary := range procs {
		// Summaries omit inputs; the full document is needed for the
		// tool's input schema.
		proc, err := client.GetProcess(ctx, summary.ID)
		if err != nil {
			logger.Warn("catalog: process skipped", "process", summary.ID, "error", err)
			continue
		}
		server.AddTool(mapper.ProcessToTool(*proc, base), handler.dynamicProcessHandler(proc.ID))
		registered++
	}
	logger.Info("catalog: process tools registered", "server", base, "count", registered)
}

// dynamicProcessHandler executes one specific process. The arguments
// are the process inputs themselves plus the shared server_url.
func (h *Handler) dynamicProcessHandler(processID string) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args map[string]any
		if err := decodeArgs(req, &args); err != nil {
			return errorResult(err.Error()), nil
		}
		serverURL := ""
		if s, ok := args["server_url"].(string); ok {
			serverURL = s
		}
		delete(args, "server_url")
		if args == nil {
			args = map[string]any{}
		}

		client, err := h.client(serverURL)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		defer client.Close()

		result, err := client.ExecuteProcess(ctx, processID, args, false)
		if err != nil {
			return errorResult(describeError(err, fmt.Sprintf("executing process '%s'", processID))), nil
		}
		return textResult(mapper.FormatExecutionResult(processID, result)), nil
	}
}
