package mapper

import (
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Prompt names exposed by the gateway.
const (
	PromptSpatialAnalysis   = "spatial_analysis_workflow"
	PromptDataDiscovery     = "data_discovery_workflow"
	PromptServerExploration = "server_exploration_workflow"
)

// WorkflowPrompts returns the guided workflow prompts the gateway
// registers at startup. Each walks a client through a multi-step OGC
// task using the builtin tools.
func WorkflowPrompts() []*sdkmcp.Prompt {
	return []*sdkmcp.Prompt{
		{
			Name:        PromptSpatialAnalysis,
			Description: "Step-by-step workflow for running a geospatial analysis process on an OGC API server, from discovery through result retrieval.",
			Arguments: []*sdkmcp.PromptArgument{
				{Name: "analysis_goal", Description: "What the analysis should achieve, e.g. 'compute a 10km buffer around the rivers dataset'.", Required: true},
				{Name: "server_url", Description: "OGC API server to run the analysis on. Omit to use the default server."},
			},
		},
		{
			Name:        PromptDataDiscovery,
			Description: "Workflow for finding and retrieving geospatial data matching a topic or area of interest.",
			Arguments: []*sdkmcp.PromptArgument{
				{Name: "topic", Description: "Subject of interest, e.g. 'hydrology', 'administrative boundaries'.", Required: true},
				{Name: "area", Description: "Area of interest as a place name or bounding box."},
				{Name: "server_url", Description: "OGC API server to search. Omit to use the default server."},
			},
		},
		{
			Name:        PromptServerExploration,
			Description: "Systematic first-contact exploration of an unknown OGC API server: capabilities, datasets, and processes.",
			Arguments: []*sdkmcp.PromptArgument{
				{Name: "server_url", Description: "Base URL of the server to explore.", Required: true},
			},
		},
	}
}

// RenderPrompt produces the instruction text for a named prompt with the
// supplied arguments. Unknown names return ok=false.
func RenderPrompt(name string, args map[string]string) (string, bool) {
	switch name {
	case PromptSpatialAnalysis:
		return renderSpatialAnalysis(args), true
	case PromptDataDiscovery:
		return renderDataDiscovery(args), true
	case PromptServerExploration:
		return renderServerExploration(args), true
	}
	return "", false
}

func argOr(args map[string]string, key, fallback string) string {
	if v := args[key]; v != "" {
		return v
	}
	return fallback
}

func renderSpatialAnalysis(args map[string]string) string {
	goal := argOr(args, "analysis_goal", "the requested analysis")
	server := argOr(args, "server_url", "the default server")
	return fmt.Sprintf(`You are performing a geospatial analysis: %s (on %s).

Follow these steps:

1. Call discover_ogc_server to confirm the server supports processes.
2. Call discover_processes and identify the process matching the goal.
3. Call get_process_detail for that process and study its input schema
   carefully. Note which inputs are required and their types.
4. If the process needs feature data as input, use get_collections and
   get_features to fetch it first.
5. Call execute_process with inputs matching the schema exactly. Use
   async_execute=true if the analysis is likely to take long.
6. For async execution: poll get_job_status until 'successful', then
   call get_job_results.
7. Summarize the result for the user, including units and coordinate
   reference system where relevant.

If execution fails with an input validation error, re-read the process
detail and correct the inputs rather than retrying unchanged.`, goal, server)
}

func renderDataDiscovery(args map[string]string) string {
	topic := argOr(args, "topic", "the requested topic")
	server := argOr(args, "server_url", "the default server")
	text := fmt.Sprintf(`You are looking for geospatial data about: %s (on %s).

Follow these steps:

1. Call discover_ogc_server to see what the server offers.
2. Call get_collections and scan titles and descriptions for matches.
3. If a collection has item type 'record', it is a metadata catalog:
   use search_records with a free-text query to find datasets there.
4. For promising collections, call get_collection_detail to check their
   spatial extent covers the area of interest.
5. Fetch a small sample with get_features (limit 5) to inspect the
   attribute structure before larger queries.`, topic, server)
	if area := args["area"]; area != "" {
		text += fmt.Sprintf(`
6. Restrict queries to the area of interest (%s) with the bbox
   parameter, as 'minLon,minLat,maxLon,maxLat' in WGS84.`, area)
	}
	return text
}

func renderServerExploration(args map[string]string) string {
	server := argOr(args, "server_url", "the configured server")
	return fmt.Sprintf(`You are exploring an unfamiliar OGC API server: %s.

Work through its surface systematically:

1. Call discover_ogc_server and note the advertised capabilities.
2. If 'features' is supported: call get_collections, then
   get_collection_detail for one or two representative collections and
   a small get_features sample from each.
3. If any collection is a metadata catalog (item type 'record'), run a
   broad search_records query to gauge its contents.
4. If any collection serves environmental data, call get_edr_collection
   to list its parameters and query types.
5. If 'processes' is supported: call discover_processes, then
   get_process_detail for the most interesting ones.
6. Conclude with a summary of what the server offers, which datasets
   look most useful, and what analyses it can run.`, server)
}
