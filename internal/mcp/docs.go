package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `ogc-mcp is a gateway to OGC API geospatial servers. It exposes any
conforming server's datasets and processes as MCP tools without
server-specific configuration.

Core concepts:
- Server: an OGC API endpoint (pygeoapi, ldproxy, GeoServer, ...). Every
  tool accepts server_url; omit it to use the gateway's default server.
- Collection: a dataset of features (GeoJSON geometries with
  attributes). Catalog collections (item type 'record') hold metadata
  about other datasets. EDR collections hold environmental measurements.
- Process: a server-side analysis operation with a declared input
  schema. Long analyses run asynchronously as jobs.

Rules of engagement (default workflow):
1) Orient: call discover_ogc_server first against any new server.
2) Browse: get_collections, then get_collection_detail for extents, or
   search_records when the server hosts a metadata catalog.
3) Fetch data: get_features with bbox/datetime/filter_cql; keep limit
   small to control token usage.
4) Analyze: discover_processes, get_process_detail (always, before
   executing), then execute_process. Use async_execute=true for long
   analyses and poll get_job_status, then get_job_results.
5) Environmental data: get_edr_collection for parameters, then
   query_edr_position or query_edr_area with WKT coordinates.

Coordinate conventions:
- bbox: 'minLon,minLat,maxLon,maxLat' in WGS84 (CRS84 axis order).
- WKT: longitude first, e.g. POINT(7.1 50.7).

Docs (read on demand):
- ogc://docs/index (what to read when)
- ogc://docs/filtering (bbox, datetime, and CQL2 filter syntax)
- ogc://docs/processes (execution modes and job lifecycle)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "ogc://docs/index",
		Name:        "docs_index",
		Title:       "ogc-mcp docs index",
		Description: "Entry point for agent-facing docs: what exists and when to read it.",
		Content: `# ogc-mcp: Agent Docs Index

This gateway translates between MCP and OGC API servers at runtime.
Nothing is hardcoded per server: capabilities, datasets, and processes
are discovered live.

## Quick start (no deep docs)

1. ` + "`discover_ogc_server`" + ` to see what the server supports.
2. ` + "`get_collections`" + ` to list datasets; ` + "`get_collection_detail`" + ` for extents.
3. ` + "`get_features`" + ` with a small limit to sample data.
4. ` + "`discover_processes`" + ` / ` + "`get_process_detail`" + ` / ` + "`execute_process`" + ` to analyze.

## Docs (read on demand)

- ` + "`ogc://docs/filtering`" + ` covers spatial, temporal, and attribute filters.
- ` + "`ogc://docs/processes`" + ` covers sync vs async execution and job polling.

## Intentional limitations

- Feature responses are summarized; full geometries are not inlined.
- The gateway holds no state: every call resolves against the upstream
  server, so results always reflect the live server.
`,
	},
	{
		URI:         "ogc://docs/filtering",
		Name:        "docs_filtering",
		Title:       "Filtering features",
		Description: "How to use bbox, datetime, and CQL2 filters with get_features.",
		Content: `# Filtering features

## Spatial: bbox

` + "`bbox`" + ` is ` + "`minLon,minLat,maxLon,maxLat`" + ` in WGS84. Example: ` + "`-10,35,40,75`" + `
covers most of Europe. Longitude comes first.

## Temporal: datetime

ISO 8601. Three forms:

- Instant: ` + "`2024-06-01T00:00:00Z`" + `
- Closed interval: ` + "`2024-01-01/2024-12-31`" + `
- Open interval: ` + "`2024-01-01/..`" + ` (from a date onward) or ` + "`../2024-12-31`" + `

## Attributes: filter_cql

CQL2 text expressions over feature properties:

- ` + "`population > 1000000`" + `
- ` + "`name LIKE 'San%'`" + `
- ` + "`type = 'airport' AND elevation > 100`" + `

Property names come from the feature attributes; sample the collection
with a small ` + "`limit`" + ` first to learn them. Not every server implements
CQL2; a 400 response usually means the filter or the property name is
not supported.
`,
	},
	{
		URI:         "ogc://docs/processes",
		Name:        "docs_processes",
		Title:       "Process execution and jobs",
		Description: "Execution modes, input schemas, and the async job lifecycle.",
		Content: `# Process execution

## Before executing

Always call ` + "`get_process_detail`" + ` first. It lists every input with its
type and whether it is required. Input values must match the declared
types exactly; servers reject mismatches with a validation error.

## Sync vs async

- Synchronous (default): ` + "`execute_process`" + ` blocks and returns the result.
  Use for quick operations.
- Asynchronous: pass ` + "`async_execute=true`" + `. The response carries a job ID.
  Use for long-running analyses so the call does not time out.

## Job lifecycle

Jobs move through: accepted, running, then one of successful, failed,
or dismissed.

1. Poll ` + "`get_job_status`" + ` with the job ID.
2. On ` + "`successful`" + `, call ` + "`get_job_results`" + `.
3. On ` + "`failed`" + `, the status message explains what went wrong; fix the
   inputs and re-execute rather than retrying unchanged.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		content := doc.Content
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(content)),
		}, func(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{
					{
						URI:      req.Params.URI,
						MIMEType: "text/markdown",
						Text:     content,
					},
				},
			}, nil
		})
	}
}
