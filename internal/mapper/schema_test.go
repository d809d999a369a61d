package mapper

import (
	"encoding/json"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/require"

	"github.com/ganot/ogc-mcp/internal/ogc"
)

func intPtr(v int) *int { return &v }

func TestProcessInputSchema(t *testing.T) {
	proc := ogc.Process{
		ID: "buffer-features",
		Inputs: map[string]ogc.ProcessInput{
			"geometry": {
				Title:  "Input geometry",
				Schema: &ogc.InputSchema{Type: "object"},
			},
			"distance": {
				Description: "Buffer distance in metres",
				Schema:      &ogc.InputSchema{Type: "number"},
			},
			"segments": {
				MinOccurs: intPtr(0),
				Schema:    &ogc.InputSchema{Type: "integer"},
			},
		},
	}

	schema := ProcessInputSchema(proc, "https://example.test/ogc")
	require.Equal(t, "object", schema.Type)

	// server_url is synthesized, required, and carries the origin
	// server as its default.
	serverProp := schema.Properties["server_url"]
	require.NotNil(t, serverProp)
	require.Equal(t, "string", serverProp.Type)
	require.Contains(t, serverProp.Description, "https://example.test/ogc")
	require.JSONEq(t, `"https://example.test/ogc"`, string(serverProp.Default))

	require.Equal(t, []string{"server_url", "distance", "geometry"}, schema.Required)

	require.Equal(t, "number", schema.Properties["distance"].Type)
	require.Equal(t, "Buffer distance in metres", schema.Properties["distance"].Description)
	require.Equal(t, "object", schema.Properties["geometry"].Type)
	require.Equal(t, "Input geometry", schema.Properties["geometry"].Description)
	require.Equal(t, "integer", schema.Properties["segments"].Type)
	require.Equal(t, "Input: segments", schema.Properties["segments"].Description)
}

func TestProcessInputSchema_NoInputs(t *testing.T) {
	schema := ProcessInputSchema(ogc.Process{ID: "noop"}, "https://example.test")
	require.Equal(t, []string{"server_url"}, schema.Required)
	require.Len(t, schema.Properties, 1)
}

func TestInputProperty_Degradation(t *testing.T) {
	tests := []struct {
		name  string
		input ogc.ProcessInput
		check func(t *testing.T, prop *jsonschema.Schema)
	}{
		{
			name:  "nil schema defaults to string",
			input: ogc.ProcessInput{},
			check: func(t *testing.T, prop *jsonschema.Schema) {
				require.Equal(t, "string", prop.Type)
			},
		},
		{
			name:  "unknown type degrades to string",
			input: ogc.ProcessInput{Schema: &ogc.InputSchema{Type: "geometry-wkt"}},
			check: func(t *testing.T, prop *jsonschema.Schema) {
				require.Equal(t, "string", prop.Type)
			},
		},
		{
			name: "enum and format carried through",
			input: ogc.ProcessInput{Schema: &ogc.InputSchema{
				Type:   "string",
				Enum:   []any{"round", "flat"},
				Format: "cap-style",
			}},
			check: func(t *testing.T, prop *jsonschema.Schema) {
				require.Equal(t, []any{"round", "flat"}, prop.Enum)
				require.Equal(t, "cap-style", prop.Format)
			},
		},
		{
			name: "array items parsed",
			input: ogc.ProcessInput{Schema: &ogc.InputSchema{
				Type:  "array",
				Items: json.RawMessage(`{"type": "number"}`),
			}},
			check: func(t *testing.T, prop *jsonschema.Schema) {
				require.Equal(t, "array", prop.Type)
				require.NotNil(t, prop.Items)
				require.Equal(t, "number", prop.Items.Type)
			},
		},
		{
			name: "malformed items dropped",
			input: ogc.ProcessInput{Schema: &ogc.InputSchema{
				Type:  "array",
				Items: json.RawMessage(`[not json`),
			}},
			check: func(t *testing.T, prop *jsonschema.Schema) {
				require.Equal(t, "array", prop.Type)
				require.Nil(t, prop.Items)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, inputProperty("x", tc.input))
		})
	}
}

func TestSortedKeys(t *testing.T) {
	keys := sortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	require.Equal(t, []string{"a", "b", "c"}, keys)
}
