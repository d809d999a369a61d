// Package mapper translates OGC API domain entities into MCP
// primitives: collections become resources, processes become tools,
// multi-step workflows become prompts. Everything here is a pure
// function over already-fetched data; no I/O happens in this package.
package mapper

import (
	"encoding/json"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ganot/ogc-mcp/internal/ogc"
)

// jsonTypes are the JSON Schema types carried through unchanged; any
// other upstream type degrades to "string".
var jsonTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"array":   true,
	"object":  true,
}

// ProcessInputSchema flattens a process's OGC-style input definitions
// into a single JSON Schema for an MCP tool.
//
// A synthetic "server_url" parameter is always prepended (and always
// required) carrying the originating server as its default, so the
// generated tool can target any compliant server. An input is required
// when its minOccurs is greater than zero or absent: the OGC API -
// Processes default is 1, so absence means required, not optional.
//
// The translation is total: unrecognized schema shapes degrade
// field-by-field to safe defaults instead of failing.
func ProcessInputSchema(proc ogc.Process, serverBaseURL string) *jsonschema.Schema {
	properties := map[string]*jsonschema.Schema{
		"server_url": {
			Type: "string",
			Description: "Base URL of the OGC API server to execute this process on. " +
				"Default: " + serverBaseURL,
			Default: jsonString(serverBaseURL),
		},
	}
	required := []string{"server_url"}

	for _, name := range sortedKeys(proc.Inputs) {
		input := proc.Inputs[name]
		properties[name] = inputProperty(name, input)
		if input.MinOccurs == nil || *input.MinOccurs > 0 {
			required = append(required, name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func inputProperty(name string, input ogc.ProcessInput) *jsonschema.Schema {
	desc := input.Description
	if desc == "" {
		desc = input.Title
	}
	if desc == "" {
		desc = "Input: " + name
	}

	prop := &jsonschema.Schema{Type: "string", Description: desc}
	if input.Schema == nil {
		return prop
	}

	if jsonTypes[input.Schema.Type] {
		prop.Type = input.Schema.Type
	}
	if len(input.Schema.Enum) > 0 {
		prop.Enum = input.Schema.Enum
	}
	if input.Schema.Format != "" {
		prop.Format = input.Schema.Format
	}
	if prop.Type == "array" && len(input.Schema.Items) > 0 {
		var items jsonschema.Schema
		if err := json.Unmarshal(input.Schema.Items, &items); err == nil {
			prop.Items = &items
		}
	}
	return prop
}

func jsonString(s string) json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
