package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/ogc-mcp/internal/mapper"
	"github.com/ganot/ogc-mcp/internal/ogc"
)

// OGCClient defines the upstream operations the gateway needs. The
// concrete implementation is ogc.Client; tests substitute stubs.
type OGCClient interface {
	BaseURL() string
	Close()
	GetServerInfo(ctx context.Context) (*ogc.ServerInfo, error)
	GetCollections(ctx context.Context) ([]ogc.Collection, error)
	GetCollection(ctx context.Context, collectionID string) (*ogc.Collection, error)
	GetFeatures(ctx context.Context, collectionID string, q ogc.FeatureQuery) (map[string]any, error)
	GetProcesses(ctx context.Context) ([]ogc.Process, error)
	GetProcess(ctx context.Context, processID string) (*ogc.Process, error)
	ExecuteProcess(ctx context.Context, processID string, inputs map[string]any, async bool) (map[string]any, error)
	GetJobStatus(ctx context.Context, jobID string) (*ogc.Job, error)
	GetJobResults(ctx context.Context, jobID string) (map[string]any, error)
	SearchRecords(ctx context.Context, catalogID string, q ogc.RecordQuery) (map[string]any, error)
	GetRecord(ctx context.Context, catalogID, recordID string) (*ogc.Record, error)
	GetEDRCollection(ctx context.Context, collectionID string) (*ogc.EDRCollection, error)
	QueryEDRPosition(ctx context.Context, collectionID, wktPoint string, q ogc.EDRQuery) (map[string]any, error)
	QueryEDRArea(ctx context.Context, collectionID, wktPolygon string, q ogc.EDRQuery) (map[string]any, error)
}

// ClientFactory builds an upstream client for a base URL. A fresh
// client is created per call because each tool invocation may target a
// different server; the client holds no session state.
type ClientFactory func(baseURL string) OGCClient

// Handler dispatches tool calls to upstream OGC API servers.
type Handler struct {
	defaultServer string
	factory       ClientFactory
}

// NewHandler creates a tool dispatcher. defaultServer may be empty, in
// which case every call must carry an explicit server_url.
func NewHandler(defaultServer string, factory ClientFactory) *Handler {
	return &Handler{defaultServer: defaultServer, factory: factory}
}

// client resolves the upstream for a call. Callers must Close the
// returned client.
func (h *Handler) client(serverURL string) (OGCClient, error) {
	url := serverURL
	if url == "" {
		url = h.defaultServer
	}
	if url == "" {
		return nil, fmt.Errorf("no server_url provided and no default server configured")
	}
	return h.factory(url), nil
}

// registerTools wires the builtin tool catalog to the handler's
// dispatch methods. Catalog entries without a handler would be a
// programming error, so the pairing is checked at startup.
func registerTools(server *sdkmcp.Server, h *Handler) {
	handlers := map[string]sdkmcp.ToolHandler{
		mapper.ToolDiscoverServer:      h.discoverServer,
		mapper.ToolGetCollections:      h.getCollections,
		mapper.ToolGetCollectionDetail: h.getCollectionDetail,
		mapper.ToolGetFeatures:         h.getFeatures,
		mapper.ToolDiscoverProcesses:   h.discoverProcesses,
		mapper.ToolGetProcessDetail:    h.getProcessDetail,
		mapper.ToolExecuteProcess:      h.executeProcess,
		mapper.ToolGetJobStatus:        h.getJobStatus,
		mapper.ToolGetJobResults:       h.getJobResults,
		mapper.ToolSearchRecords:       h.searchRecords,
		mapper.ToolGetRecord:           h.getRecord,
		mapper.ToolGetEDRCollection:    h.getEDRCollection,
		mapper.ToolQueryEDRPosition:    h.queryEDRPosition,
		mapper.ToolQueryEDRArea:        h.queryEDRArea,
	}
	for _, tool := range mapper.DiscoveryTools() {
		handler, ok := handlers[tool.Name]
		if !ok {
			panic(fmt.Sprintf("tool %q has no handler", tool.Name))
		}
		server.AddTool(tool, handler)
	}
}

func (h *Handler) discoverServer(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p serverParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	info, err := client.GetServerInfo(ctx)
	if err != nil {
		return errorResult(describeError(err, "discovering the server")), nil
	}
	return textResult(mapper.FormatServerInfo(info)), nil
}

func (h *Handler) getCollections(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p serverParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	cols, err := client.GetCollections(ctx)
	if err != nil {
		return errorResult(describeError(err, "listing collections")), nil
	}
	return textResult(mapper.FormatCollections(cols)), nil
}

func (h *Handler) getCollectionDetail(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p collectionParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.CollectionID == "" {
		return errorResult("collection_id is required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	col, err := client.GetCollection(ctx, p.CollectionID)
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("fetching collection '%s'", p.CollectionID))), nil
	}
	return textResult(mapper.FormatCollectionDetail(col)), nil
}

func (h *Handler) getFeatures(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p featuresParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.CollectionID == "" {
		return errorResult("collection_id is required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	fc, err := client.GetFeatures(ctx, p.CollectionID, ogc.FeatureQuery{
		Limit:      p.Limit,
		Offset:     p.Offset,
		BBox:       p.BBox,
		Datetime:   p.Datetime,
		CQLFilter:  p.FilterCQL,
		Properties: p.Properties,
	})
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("fetching features from '%s'", p.CollectionID))), nil
	}
	return textResult(mapper.FormatFeatures(fc, p.CollectionID)), nil
}

func (h *Handler) discoverProcesses(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p serverParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	procs, err := client.GetProcesses(ctx)
	if err != nil {
		return errorResult(describeError(err, "listing processes")), nil
	}
	return textResult(mapper.FormatProcesses(procs)), nil
}

func (h *Handler) getProcessDetail(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p processParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.ProcessID == "" {
		return errorResult("process_id is required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	proc, err := client.GetProcess(ctx, p.ProcessID)
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("fetching process '%s'", p.ProcessID))), nil
	}
	return textResult(mapper.FormatProcessDetail(proc)), nil
}

func (h *Handler) executeProcess(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p executeParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.ProcessID == "" {
		return errorResult("process_id is required"), nil
	}
	if p.Inputs == nil {
		p.Inputs = map[string]any{}
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	result, err := client.ExecuteProcess(ctx, p.ProcessID, p.Inputs, p.AsyncExecute)
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("executing process '%s'", p.ProcessID))), nil
	}
	if p.AsyncExecute {
		return textResult(mapper.FormatAsyncAccepted(p.ProcessID, result)), nil
	}
	return textResult(mapper.FormatExecutionResult(p.ProcessID, result)), nil
}

func (h *Handler) getJobStatus(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p jobParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.JobID == "" {
		return errorResult("job_id is required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	job, err := client.GetJobStatus(ctx, p.JobID)
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("checking job '%s'", p.JobID))), nil
	}
	return textResult(mapper.FormatJob(job)), nil
}

func (h *Handler) getJobResults(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p jobParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.JobID == "" {
		return errorResult("job_id is required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	results, err := client.GetJobResults(ctx, p.JobID)
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("fetching results of job '%s'", p.JobID))), nil
	}
	return textResult(mapper.FormatJobResults(p.JobID, results)), nil
}

func (h *Handler) searchRecords(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p recordSearchParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.CatalogID == "" {
		return errorResult("catalog_id is required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	fc, err := client.SearchRecords(ctx, p.CatalogID, ogc.RecordQuery{
		Q:        p.Q,
		BBox:     p.BBox,
		Datetime: p.Datetime,
		Limit:    p.Limit,
	})
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("searching catalog '%s'", p.CatalogID))), nil
	}
	return textResult(mapper.FormatRecords(fc, p.CatalogID)), nil
}

func (h *Handler) getRecord(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p recordParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.CatalogID == "" || p.RecordID == "" {
		return errorResult("catalog_id and record_id are required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	rec, err := client.GetRecord(ctx, p.CatalogID, p.RecordID)
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("fetching record '%s'", p.RecordID))), nil
	}
	return textResult(mapper.FormatRecord(rec)), nil
}

func (h *Handler) getEDRCollection(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p collectionParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.CollectionID == "" {
		return errorResult("collection_id is required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	col, err := client.GetEDRCollection(ctx, p.CollectionID)
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("inspecting EDR collection '%s'", p.CollectionID))), nil
	}
	return textResult(mapper.FormatEDRCollection(col)), nil
}

func (h *Handler) queryEDRPosition(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p edrPositionParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.CollectionID == "" || p.Coords == "" {
		return errorResult("collection_id and coords are required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	cov, err := client.QueryEDRPosition(ctx, p.CollectionID, p.Coords, ogc.EDRQuery{
		ParameterNames: p.ParameterNames,
		Datetime:       p.Datetime,
		Z:              p.Z,
	})
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("querying EDR collection '%s'", p.CollectionID))), nil
	}
	return textResult(mapper.FormatEDRValues(cov, h.edrParameters(ctx, client, p.CollectionID))), nil
}

func (h *Handler) queryEDRArea(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var p edrAreaParams
	if err := decodeArgs(req, &p); err != nil {
		return errorResult(err.Error()), nil
	}
	if p.CollectionID == "" || p.Coords == "" {
		return errorResult("collection_id and coords are required"), nil
	}
	client, err := h.client(p.ServerURL)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	defer client.Close()

	cov, err := client.QueryEDRArea(ctx, p.CollectionID, p.Coords, ogc.EDRQuery{
		ParameterNames: p.ParameterNames,
		Datetime:       p.Datetime,
	})
	if err != nil {
		return errorResult(describeError(err, fmt.Sprintf("querying EDR collection '%s'", p.CollectionID))), nil
	}
	return textResult(mapper.FormatEDRValues(cov, h.edrParameters(ctx, client, p.CollectionID))), nil
}

// edrParameters fetches parameter metadata to attach units to query
// results. A lookup failure degrades the output, it never fails the
// query itself.
func (h *Handler) edrParameters(ctx context.Context, client OGCClient, collectionID string) []ogc.EDRParameter {
	col, err := client.GetEDRCollection(ctx, collectionID)
	if err != nil {
		return nil
	}
	return col.Parameters
}

// decodeArgs unmarshals raw tool arguments into a params struct. Absent
// or null arguments leave the struct untouched.
func decodeArgs(req *sdkmcp.CallToolRequest, out any) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	raw := req.Params.Arguments
	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
		IsError: true,
	}
}
