package mapper

import (
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/ogc-mcp/internal/ogc"
)

// descSeparator joins the parts of a resource description.
const descSeparator = " | "

// NormalizeBase turns a server base URL into a single URI path segment:
// trailing slashes are stripped and the scheme separator and any
// remaining slashes are replaced, so "https://example.test/ogc" becomes
// "https_example.test_ogc".
func NormalizeBase(serverBaseURL string) string {
	base := strings.TrimSuffix(serverBaseURL, "/")
	base = strings.ReplaceAll(base, "://", "_")
	return strings.ReplaceAll(base, "/", "_")
}

// CollectionToResource maps a collection to an MCP resource with a
// deterministic ogc:// URI. The collection id appears verbatim as the
// final path segment, so clients can recover it from the URI.
func CollectionToResource(col ogc.Collection, serverBaseURL string) *sdkmcp.Resource {
	return &sdkmcp.Resource{
		URI:         fmt.Sprintf("ogc://%s/collections/%s", NormalizeBase(serverBaseURL), col.ID),
		Name:        col.Title,
		Description: describeCollection(col),
		MIMEType:    "application/json",
	}
}

func describeCollection(col ogc.Collection) string {
	parts := []string{col.Description}
	if summary := extentSummary(col.Extent); summary != "" {
		parts = append(parts, summary)
	}
	if col.ItemType != "" {
		parts = append(parts, "Item type: "+col.ItemType)
	}
	return joinParts(parts)
}

// extentSummary renders the first 4-element bbox of a spatial extent,
// rounded to two decimals. Anything else yields "".
func extentSummary(extent *ogc.Extent) string {
	if extent == nil || extent.Spatial == nil || len(extent.Spatial.BBox) == 0 {
		return ""
	}
	b := extent.Spatial.BBox[0]
	if len(b) < 4 {
		return ""
	}
	return fmt.Sprintf("Spatial extent: lon [%.2f, %.2f], lat [%.2f, %.2f]", b[0], b[2], b[1], b[3])
}

// RecordToResource maps a catalog record to an MCP resource.
func RecordToResource(rec ogc.Record, serverBaseURL string) *sdkmcp.Resource {
	parts := []string{rec.Description}
	if rec.Type != "" {
		parts = append(parts, "Record type: "+rec.Type)
	}
	if len(rec.BBox) >= 4 {
		parts = append(parts, fmt.Sprintf("Spatial extent: lon [%.2f, %.2f], lat [%.2f, %.2f]",
			rec.BBox[0], rec.BBox[2], rec.BBox[1], rec.BBox[3]))
	}
	if len(rec.Keywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(rec.Keywords, ", "))
	}

	return &sdkmcp.Resource{
		URI:         fmt.Sprintf("ogc://%s/records/%s", NormalizeBase(serverBaseURL), rec.ID),
		Name:        rec.Title,
		Description: joinParts(parts),
		MIMEType:    "application/json",
	}
}

// EDRCollectionToResource maps an EDR collection to an MCP resource.
func EDRCollectionToResource(col ogc.EDRCollection, serverBaseURL string) *sdkmcp.Resource {
	parts := []string{col.Description}
	if len(col.Parameters) > 0 {
		ids := make([]string, 0, len(col.Parameters))
		for _, p := range col.Parameters {
			ids = append(ids, p.ID)
		}
		parts = append(parts, "Parameters: "+strings.Join(ids, ", "))
	}
	if len(col.QueryTypes) > 0 {
		parts = append(parts, "Query types: "+strings.Join(col.QueryTypes, ", "))
	}

	return &sdkmcp.Resource{
		URI:         fmt.Sprintf("ogc://%s/edr/%s", NormalizeBase(serverBaseURL), col.ID),
		Name:        col.Title,
		Description: joinParts(parts),
		MIMEType:    "application/json",
	}
}

// CollectionIDFromURI recovers the collection id from a resource URI
// produced by CollectionToResource. Returns "" when the URI has a
// different shape.
func CollectionIDFromURI(uri string) string {
	const marker = "/collections/"
	idx := strings.Index(uri, marker)
	if idx < 0 {
		return ""
	}
	return uri[idx+len(marker):]
}

func joinParts(parts []string) string {
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, descSeparator)
}
