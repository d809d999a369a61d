package mapper

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/ganot/ogc-mcp/internal/ogc"
)

// toolSchema asserts that a tool carries a structured input schema and
// returns it for inspection.
func toolSchema(t *testing.T, tool *sdkmcp.Tool) *jsonschema.Schema {
	t.Helper()
	schema, ok := tool.InputSchema.(*jsonschema.Schema)
	require.True(t, ok, "tool %s: InputSchema is %T, want *jsonschema.Schema", tool.Name, tool.InputSchema)
	return schema
}

func TestProcessToTool(t *testing.T) {
	proc := ogc.Process{
		ID:          "buffer-features",
		Title:       "Buffer Features",
		Description: "Buffers input geometries by a distance.",
		Inputs: map[string]ogc.ProcessInput{
			"geometry": {},
			"distance": {},
		},
		Outputs:           map[string]ogc.ProcessOutput{"result": {}},
		JobControlOptions: []string{"sync-execute", "async-execute"},
		Keywords:          []string{"geometry", "buffer"},
	}

	tool := ProcessToTool(proc, "https://example.test")
	require.Equal(t, "execute_buffer_features", tool.Name)
	require.Contains(t, tool.Description, "Execute the 'Buffer Features' geospatial process.")
	require.Contains(t, tool.Description, "Required inputs: distance, geometry.")
	require.Contains(t, tool.Description, "Produces outputs: result.")
	require.Contains(t, tool.Description, "synchronous (immediate result)")
	require.Contains(t, tool.Description, "asynchronous (returns job ID)")
	require.Contains(t, tool.Description, "Keywords: geometry, buffer.")

	schema := toolSchema(t, tool)
	require.Contains(t, schema.Required, "server_url")
	require.Contains(t, schema.Required, "distance")
}

func TestProcessToTool_MinimalProcess(t *testing.T) {
	tool := ProcessToTool(ogc.Process{ID: "noop", Title: "No-op"}, "https://example.test")
	require.Equal(t, "execute_noop", tool.Name)
	require.NotContains(t, tool.Description, "Required inputs")
	require.NotContains(t, tool.Description, "Execution modes")
}

func TestDiscoveryTools(t *testing.T) {
	tools := DiscoveryTools()
	require.Len(t, tools, 14)

	byName := make(map[string]bool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = true

		// Every builtin accepts an optional server_url override.
		schema := toolSchema(t, tool)
		require.Contains(t, schema.Properties, "server_url", tool.Name)
		require.NotContains(t, schema.Required, "server_url", tool.Name)
		require.NotEmpty(t, tool.Description, tool.Name)
	}

	for _, name := range []string{
		ToolDiscoverServer, ToolGetCollections, ToolGetCollectionDetail,
		ToolGetFeatures, ToolDiscoverProcesses, ToolGetProcessDetail,
		ToolExecuteProcess, ToolGetJobStatus, ToolGetJobResults,
		ToolSearchRecords, ToolGetRecord, ToolGetEDRCollection,
		ToolQueryEDRPosition, ToolQueryEDRArea,
	} {
		require.True(t, byName[name], "missing builtin tool %s", name)
	}
}

func TestDiscoveryTools_RequiredArgs(t *testing.T) {
	byName := make(map[string][]string)
	for _, tool := range DiscoveryTools() {
		byName[tool.Name] = toolSchema(t, tool).Required
	}

	require.Contains(t, byName[ToolGetCollectionDetail], "collection_id")
	require.Contains(t, byName[ToolGetFeatures], "collection_id")
	require.Contains(t, byName[ToolExecuteProcess], "process_id")
	require.Contains(t, byName[ToolExecuteProcess], "inputs")
	require.Contains(t, byName[ToolGetJobStatus], "job_id")
	require.Contains(t, byName[ToolSearchRecords], "catalog_id")
	require.Contains(t, byName[ToolQueryEDRPosition], "coords")
	require.Empty(t, byName[ToolDiscoverServer])
}

func TestDiscoveryTools_FeatureQueryParams(t *testing.T) {
	var features *sdkmcp.Tool
	for _, tool := range DiscoveryTools() {
		if tool.Name == ToolGetFeatures {
			features = tool
		}
	}
	require.NotNil(t, features)

	props := toolSchema(t, features).Properties
	for _, name := range []string{"limit", "offset", "bbox", "datetime", "filter_cql", "properties"} {
		require.Contains(t, props, name)
	}
	require.Equal(t, "array", props["properties"].Type)
	require.Equal(t, "string", props["properties"].Items.Type)
}
