package mapper

import (
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/ogc-mcp/internal/ogc"
)

// ProcessToTool maps a discovered process to an invokable MCP tool.
// The tool name is derived deterministically from the process id with
// hyphens replaced, so any valid process id yields a valid tool name.
// The input schema is generated from the process's declared inputs via
// ProcessInputSchema.
func ProcessToTool(proc ogc.Process, serverBaseURL string) *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "execute_" + strings.ReplaceAll(proc.ID, "-", "_"),
		Description: describeProcess(proc),
		InputSchema: ProcessInputSchema(proc, serverBaseURL),
	}
}

func describeProcess(proc ogc.Process) string {
	parts := []string{
		fmt.Sprintf("Execute the '%s' geospatial process.", proc.Title),
		proc.Description,
	}
	if len(proc.Inputs) > 0 {
		parts = append(parts, "Required inputs: "+strings.Join(sortedKeys(proc.Inputs), ", ")+".")
	}
	if len(proc.Outputs) > 0 {
		parts = append(parts, "Produces outputs: "+strings.Join(sortedKeys(proc.Outputs), ", ")+".")
	}

	var modes []string
	if proc.SupportsSync() {
		modes = append(modes, "synchronous (immediate result)")
	}
	if proc.SupportsAsync() {
		modes = append(modes, "asynchronous (returns job ID)")
	}
	if len(modes) > 0 {
		parts = append(parts, "Execution modes: "+strings.Join(modes, ", ")+".")
	}
	if len(proc.Keywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(proc.Keywords, ", ")+".")
	}

	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// Builtin tool names. The handlers in internal/mcp dispatch on these.
const (
	ToolDiscoverServer      = "discover_ogc_server"
	ToolGetCollections      = "get_collections"
	ToolGetCollectionDetail = "get_collection_detail"
	ToolGetFeatures         = "get_features"
	ToolDiscoverProcesses   = "discover_processes"
	ToolGetProcessDetail    = "get_process_detail"
	ToolExecuteProcess      = "execute_process"
	ToolGetJobStatus        = "get_job_status"
	ToolGetJobResults       = "get_job_results"
	ToolSearchRecords       = "search_records"
	ToolGetRecord           = "get_record"
	ToolGetEDRCollection    = "get_edr_collection"
	ToolQueryEDRPosition    = "query_edr_position"
	ToolQueryEDRArea        = "query_edr_area"
)

// DiscoveryTools returns the fixed tool catalog every gateway instance
// exposes, regardless of which upstream server it talks to. These let a
// client explore and operate any conforming OGC API server; tools
// generated per process by ProcessToTool come on top of these.
func DiscoveryTools() []*sdkmcp.Tool {
	return []*sdkmcp.Tool{
		{
			Name: ToolDiscoverServer,
			Description: "Discover the capabilities of any OGC API-compliant geospatial server. " +
				"Returns the server's title, description, and supported capabilities " +
				"(features, processes, tiles, jobs). " +
				"Use this as the FIRST call when connecting to a new OGC server.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name: ToolGetCollections,
			Description: "List all available geospatial datasets (collections) on an OGC API server. " +
				"Returns each collection's ID, title, and description. " +
				"Use the returned collection IDs with get_features to fetch actual data.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name: ToolGetCollectionDetail,
			Description: "Get detailed metadata for a specific collection including its spatial " +
				"extent, coordinate reference systems, and item type. " +
				"Use before get_features to understand the collection's coverage area.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"collection_id": {Type: "string", Description: "The collection identifier. Get valid IDs from get_collections."},
			}, []string{"collection_id"}),
		},
		{
			Name: ToolGetFeatures,
			Description: "Fetch geographic features (points, lines, polygons) from a collection as GeoJSON. " +
				"Supports spatial filtering by bounding box, temporal filtering by date/time, " +
				"and attribute filtering using CQL2 expressions.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"collection_id": {Type: "string", Description: "The collection to query. Get IDs from get_collections."},
				"limit":         {Type: "integer", Description: "Maximum number of features to return. Default: 10."},
				"bbox": {Type: "string", Description: "Bounding box filter in WGS84: 'minLon,minLat,maxLon,maxLat'. " +
					"Example: '-10,35,40,75' filters to Europe."},
				"datetime": {Type: "string", Description: "Temporal filter in ISO 8601. Instant: '2024-06-01T00:00:00Z'. " +
					"Interval: '2024-01-01/2024-12-31'. Open end: '2024-01-01/..'."},
				"filter_cql": {Type: "string", Description: "CQL2 attribute filter expression, e.g. \"population > 1000000\"."},
				"offset":     {Type: "integer", Description: "Number of features to skip, for pagination."},
				"properties": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Property names to include in returned features. Omit for all properties.",
				},
			}, []string{"collection_id"}),
		},
		{
			Name: ToolDiscoverProcesses,
			Description: "List all geospatial analysis processes available on an OGC API server. " +
				"Returns each process's ID, title, and description. " +
				"Use the returned process IDs with get_process_detail and execute_process.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name: ToolGetProcessDetail,
			Description: "Get full details for a specific process including its complete input " +
				"parameter schema and expected outputs. Always call this BEFORE " +
				"execute_process to understand exactly what inputs are required.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"process_id": {Type: "string", Description: "The process identifier. Get valid IDs from discover_processes."},
			}, []string{"process_id"}),
		},
		{
			Name: ToolExecuteProcess,
			Description: "Execute any geospatial process on an OGC API server. Supports synchronous " +
				"execution (waits for the result) and asynchronous execution (returns a job ID " +
				"immediately, for long-running analyses). For async jobs, use get_job_status " +
				"to monitor and get_job_results to retrieve the output.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"process_id": {Type: "string", Description: "The process to execute."},
				"inputs": {Type: "object", Description: "Input parameters as a JSON object. Keys and value types " +
					"must match the process input schema from get_process_detail."},
				"async_execute": {Type: "boolean", Description: "If true, execute asynchronously and return a job ID. Default: false."},
			}, []string{"process_id", "inputs"}),
		},
		{
			Name: ToolGetJobStatus,
			Description: "Check the status of an asynchronous processing job. Returns one of: " +
				"accepted, running, successful, failed, dismissed. Poll after an async " +
				"execute_process until the status is 'successful'.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"job_id": {Type: "string", Description: "Job identifier returned by an asynchronous execute_process."},
			}, []string{"job_id"}),
		},
		{
			Name: ToolGetJobResults,
			Description: "Retrieve the output of a successfully completed asynchronous job. " +
				"Only call this after get_job_status reports status 'successful'.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"job_id": {Type: "string", Description: "Job identifier of a completed job."},
			}, []string{"job_id"}),
		},
		{
			Name: ToolSearchRecords,
			Description: "Search a metadata catalog (an OGC API - Records collection) for datasets and " +
				"services. Supports free-text, bounding-box, and temporal filters. " +
				"Catalog collections are marked with item type 'record' in get_collections.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"catalog_id": {Type: "string", Description: "The catalog collection to search."},
				"q":          {Type: "string", Description: "Free-text search term."},
				"bbox":       {Type: "string", Description: "Bounding box filter: 'minLon,minLat,maxLon,maxLat'."},
				"datetime":   {Type: "string", Description: "Temporal filter in ISO 8601."},
				"limit":      {Type: "integer", Description: "Maximum number of records to return. Default: 10."},
			}, []string{"catalog_id"}),
		},
		{
			Name: ToolGetRecord,
			Description: "Get one catalog record with its full metadata: title, description, type, " +
				"keywords, and spatial extent.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"catalog_id": {Type: "string", Description: "The catalog collection containing the record."},
				"record_id":  {Type: "string", Description: "The record identifier, from search_records."},
			}, []string{"catalog_id", "record_id"}),
		},
		{
			Name: ToolGetEDRCollection,
			Description: "Inspect an environmental data (EDR) collection: its measurable parameters " +
				"(temperature, wind speed, ...) and supported query types (position, area, ...). " +
				"Call before query_edr_position or query_edr_area.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"collection_id": {Type: "string", Description: "The EDR collection identifier."},
			}, []string{"collection_id"}),
		},
		{
			Name: ToolQueryEDRPosition,
			Description: "Query environmental measurement values at a single point. Returns values " +
				"per parameter with a numeric summary (average, min, max). " +
				"Coordinates are given as WKT, e.g. 'POINT(7.1 50.7)'.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"collection_id":   {Type: "string", Description: "The EDR collection to query."},
				"coords":          {Type: "string", Description: "WKT point, e.g. 'POINT(7.1 50.7)' (lon lat)."},
				"parameter_names": {Type: "array", Description: "Parameter IDs to query, from get_edr_collection.", Items: &jsonschema.Schema{Type: "string"}},
				"datetime":        {Type: "string", Description: "Temporal filter in ISO 8601."},
				"z":               {Type: "string", Description: "Vertical level selector."},
			}, []string{"collection_id", "coords"}),
		},
		{
			Name: ToolQueryEDRArea,
			Description: "Query environmental measurement values within a polygon. Returns values " +
				"per parameter with a numeric summary. Coordinates are given as WKT, e.g. " +
				"'POLYGON((7 50, 8 50, 8 51, 7 51, 7 50))'.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"collection_id":   {Type: "string", Description: "The EDR collection to query."},
				"coords":          {Type: "string", Description: "WKT polygon in lon/lat order."},
				"parameter_names": {Type: "array", Description: "Parameter IDs to query, from get_edr_collection.", Items: &jsonschema.Schema{Type: "string"}},
				"datetime":        {Type: "string", Description: "Temporal filter in ISO 8601."},
			}, []string{"collection_id", "coords"}),
		},
	}
}

// objectSchema builds an object schema with the server_url parameter
// every builtin tool shares: the gateway resolves it against the
// configured default server when omitted.
func objectSchema(props map[string]*jsonschema.Schema, required []string) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	props["server_url"] = &jsonschema.Schema{
		Type: "string",
		Description: "Base URL of the OGC API server, e.g. 'https://demo.pygeoapi.io/master'. " +
			"Omit to use the gateway's default server.",
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}
