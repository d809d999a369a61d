package mapper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ganot/ogc-mcp/internal/ogc"
)

// This file turns OGC domain values into the plain-text blocks returned
// as tool results. Formatting favors scannability over completeness:
// long member lists are capped and raw GeoJSON is summarized, not dumped.

const maxFeatureProps = 4

// FormatServerInfo renders a server self-description.
func FormatServerInfo(info *ogc.ServerInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "OGC API Server: %s\n", info.Title)
	if info.Description != "" {
		fmt.Fprintf(&b, "%s\n", info.Description)
	}
	fmt.Fprintf(&b, "Base URL: %s\n", info.BaseURL)
	if len(info.Capabilities) > 0 {
		fmt.Fprintf(&b, "Capabilities: %s\n", strings.Join(info.Capabilities, ", "))
	} else {
		b.WriteString("Capabilities: none detected\n")
	}
	if n := len(info.ConformanceClasses); n > 0 {
		fmt.Fprintf(&b, "Conformance classes: %d declared\n", n)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCollections renders a collection listing.
func FormatCollections(cols []ogc.Collection) string {
	if len(cols) == 0 {
		return "No collections available on this server."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d collection(s):\n", len(cols))
	for _, col := range cols {
		fmt.Fprintf(&b, "\n- %s: %s\n  %s\n", col.ID, col.Title, col.Description)
		if kind := ogc.ClassifyCollection(col); kind != "feature" {
			fmt.Fprintf(&b, "  Item type: %s\n", kind)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCollectionDetail renders one collection's full metadata.
func FormatCollectionDetail(col *ogc.Collection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collection: %s\n", col.ID)
	fmt.Fprintf(&b, "Title: %s\n", col.Title)
	fmt.Fprintf(&b, "Description: %s\n", col.Description)
	fmt.Fprintf(&b, "Item type: %s\n", col.ItemType)
	if summary := extentSummary(col.Extent); summary != "" {
		fmt.Fprintf(&b, "%s\n", summary)
	}
	if interval := temporalSummary(col.Extent); interval != "" {
		fmt.Fprintf(&b, "Temporal extent: %s\n", interval)
	}
	if len(col.CRS) > 0 {
		fmt.Fprintf(&b, "CRS: %s\n", strings.Join(col.CRS, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func temporalSummary(ext *ogc.Extent) string {
	if ext == nil || ext.Temporal == nil || len(ext.Temporal.Interval) == 0 {
		return ""
	}
	iv := ext.Temporal.Interval[0]
	if len(iv) < 2 {
		return ""
	}
	begin, end := "..", ".."
	if iv[0] != nil {
		begin = *iv[0]
	}
	if iv[1] != nil {
		end = *iv[1]
	}
	return begin + " to " + end
}

// FormatFeatures summarizes a GeoJSON FeatureCollection. Each feature
// gets a display name and a handful of properties; the full geometry is
// deliberately omitted.
func FormatFeatures(fc map[string]any, collectionID string) string {
	features, _ := fc["features"].([]any)
	if len(features) == 0 {
		return fmt.Sprintf("No features found in collection '%s' matching the query.", collectionID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d feature(s) from '%s'", len(features), collectionID)
	if matched, ok := numberField(fc, "numberMatched"); ok {
		fmt.Fprintf(&b, " (%d matched in total)", matched)
	}
	b.WriteString(":\n")

	for i, raw := range features {
		feat, _ := raw.(map[string]any)
		props, _ := feat["properties"].(map[string]any)
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, featureName(feat, props, i))
		for _, k := range selectProps(props) {
			fmt.Fprintf(&b, "   %s: %v\n", k, props[k])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func numberField(doc map[string]any, key string) (int, bool) {
	if f, ok := doc[key].(float64); ok {
		return int(f), true
	}
	return 0, false
}

func featureName(feat, props map[string]any, index int) string {
	for _, key := range []string{"name", "title", "id"} {
		if s, ok := props[key].(string); ok && s != "" {
			return s
		}
	}
	if id, ok := feat["id"]; ok && id != nil {
		return fmt.Sprintf("%v", id)
	}
	return fmt.Sprintf("Feature %d", index+1)
}

// selectProps picks up to maxFeatureProps property keys, sorted, and
// skips the keys already consumed for the display name plus null values.
func selectProps(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k, v := range props {
		if k == "name" || k == "title" || v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxFeatureProps {
		keys = keys[:maxFeatureProps]
	}
	return keys
}

// FormatProcesses renders a process listing.
func FormatProcesses(procs []ogc.Process) string {
	if len(procs) == 0 {
		return "No processes available on this server."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d process(es):\n", len(procs))
	for _, p := range procs {
		fmt.Fprintf(&b, "\n- %s: %s\n  %s\n", p.ID, p.Title, p.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatProcessDetail renders a process with its full input and output
// declarations, input names sorted for stable output.
func FormatProcessDetail(p *ogc.Process) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Process: %s (version %s)\n", p.ID, p.Version)
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)

	var modes []string
	if p.SupportsSync() {
		modes = append(modes, "sync")
	}
	if p.SupportsAsync() {
		modes = append(modes, "async")
	}
	if len(modes) > 0 {
		fmt.Fprintf(&b, "Execution modes: %s\n", strings.Join(modes, ", "))
	}

	if len(p.Inputs) > 0 {
		b.WriteString("\nInputs:\n")
		for _, name := range sortedKeys(p.Inputs) {
			in := p.Inputs[name]
			fmt.Fprintf(&b, "- %s%s", name, requiredMarker(in.MinOccurs))
			if in.Schema != nil && in.Schema.Type != "" {
				fmt.Fprintf(&b, " (%s)", in.Schema.Type)
			}
			if desc := inputDescription(in); desc != "" {
				fmt.Fprintf(&b, ": %s", desc)
			}
			b.WriteString("\n")
			if in.Schema != nil && len(in.Schema.Enum) > 0 {
				fmt.Fprintf(&b, "  Allowed values: %s\n", joinAny(in.Schema.Enum))
			}
		}
	}
	if len(p.Outputs) > 0 {
		b.WriteString("\nOutputs:\n")
		for _, name := range sortedKeys(p.Outputs) {
			out := p.Outputs[name]
			if out.Title != "" {
				fmt.Fprintf(&b, "- %s: %s\n", name, out.Title)
			} else {
				fmt.Fprintf(&b, "- %s\n", name)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func requiredMarker(minOccurs *int) string {
	if minOccurs == nil || *minOccurs > 0 {
		return " (required)"
	}
	return " (optional)"
}

func inputDescription(in ogc.ProcessInput) string {
	if in.Description != "" {
		return in.Description
	}
	return in.Title
}

func joinAny(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}

// FormatAsyncAccepted renders the acknowledgement for an asynchronous
// execution. The job ID is extracted from the upstream status document.
func FormatAsyncAccepted(processID string, statusDoc map[string]any) string {
	jobID := "unknown"
	for _, key := range []string{"jobID", "jobId", "id"} {
		if s, ok := statusDoc[key].(string); ok && s != "" {
			jobID = s
			break
		}
	}
	return fmt.Sprintf("Process '%s' accepted for asynchronous execution.\nJob ID: %s\n"+
		"Use get_job_status with this job ID to monitor progress, then get_job_results once successful.",
		processID, jobID)
}

// FormatExecutionResult renders a synchronous execution result.
func FormatExecutionResult(processID string, result map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Process '%s' executed successfully.\n", processID)
	b.WriteString(summarizeResultDoc(result))
	return strings.TrimRight(b.String(), "\n")
}

// FormatJob renders a job status document.
func FormatJob(job *ogc.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %s: %s\n", job.JobID, job.Status)
	if job.ProcessID != "" {
		fmt.Fprintf(&b, "Process: %s\n", job.ProcessID)
	}
	if job.Progress != nil {
		fmt.Fprintf(&b, "Progress: %d%%\n", *job.Progress)
	}
	if job.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", job.Message)
	}
	if job.Created != "" {
		fmt.Fprintf(&b, "Created: %s\n", job.Created)
	}
	if job.Finished != "" {
		fmt.Fprintf(&b, "Finished: %s\n", job.Finished)
	}
	switch job.Status {
	case ogc.JobSuccessful:
		b.WriteString("The job completed. Use get_job_results to retrieve the output.")
	case ogc.JobFailed, ogc.JobDismissed:
		b.WriteString("The job will not produce results.")
	default:
		b.WriteString("The job is still in progress. Check again shortly.")
	}
	return b.String()
}

// FormatJobResults renders the output document of a completed job.
func FormatJobResults(jobID string, results map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Results for job %s:\n", jobID)
	b.WriteString(summarizeResultDoc(results))
	return strings.TrimRight(b.String(), "\n")
}

// summarizeResultDoc renders an arbitrary process output document. A
// GeoJSON FeatureCollection gets a count summary; anything else is
// listed member by member with long values truncated.
func summarizeResultDoc(doc map[string]any) string {
	if doc == nil {
		return "(empty result)"
	}
	if t, _ := doc["type"].(string); t == "FeatureCollection" {
		features, _ := doc["features"].([]any)
		return fmt.Sprintf("Result: FeatureCollection with %d feature(s).", len(features))
	}
	var b strings.Builder
	for _, k := range sortedKeys(doc) {
		v := fmt.Sprintf("%v", doc[k])
		if len(v) > 200 {
			v = v[:200] + "..."
		}
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	if b.Len() == 0 {
		return "(empty result)"
	}
	return b.String()
}

// FormatRecords summarizes a catalog search response.
func FormatRecords(fc map[string]any, catalogID string) string {
	features, _ := fc["features"].([]any)
	if len(features) == 0 {
		return fmt.Sprintf("No records found in catalog '%s' matching the query.", catalogID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d record(s) in catalog '%s'", len(features), catalogID)
	if matched, ok := numberField(fc, "numberMatched"); ok {
		fmt.Fprintf(&b, " (%d matched in total)", matched)
	}
	b.WriteString(":\n")
	for _, raw := range features {
		rec, _ := raw.(map[string]any)
		props, _ := rec["properties"].(map[string]any)
		id := fmt.Sprintf("%v", rec["id"])
		title, _ := props["title"].(string)
		if title == "" {
			title = id
		}
		fmt.Fprintf(&b, "\n- %s: %s\n", id, title)
		if desc, _ := props["description"].(string); desc != "" {
			fmt.Fprintf(&b, "  %s\n", desc)
		}
		if rt, _ := props["type"].(string); rt != "" {
			fmt.Fprintf(&b, "  Type: %s\n", rt)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatRecord renders one catalog record in full.
func FormatRecord(rec *ogc.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Record: %s\n", rec.ID)
	fmt.Fprintf(&b, "Title: %s\n", rec.Title)
	if rec.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	}
	if rec.Type != "" {
		fmt.Fprintf(&b, "Type: %s\n", rec.Type)
	}
	if len(rec.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(rec.Keywords, ", "))
	}
	if len(rec.BBox) >= 4 {
		fmt.Fprintf(&b, "Spatial extent: lon [%.2f, %.2f], lat [%.2f, %.2f]\n",
			rec.BBox[0], rec.BBox[2], rec.BBox[1], rec.BBox[3])
	}
	if rec.Created != "" {
		fmt.Fprintf(&b, "Created: %s\n", rec.Created)
	}
	if rec.Updated != "" {
		fmt.Fprintf(&b, "Updated: %s\n", rec.Updated)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEDRCollection renders an EDR collection's parameters and
// supported query types.
func FormatEDRCollection(col *ogc.EDRCollection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EDR Collection: %s\n", col.ID)
	fmt.Fprintf(&b, "Title: %s\n", col.Title)
	if col.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", col.Description)
	}
	if len(col.QueryTypes) > 0 {
		fmt.Fprintf(&b, "Query types: %s\n", strings.Join(col.QueryTypes, ", "))
	}
	if summary := extentSummary(col.Extent); summary != "" {
		fmt.Fprintf(&b, "%s\n", summary)
	}
	if len(col.Parameters) > 0 {
		b.WriteString("\nParameters:\n")
		for _, p := range col.Parameters {
			fmt.Fprintf(&b, "- %s", p.ID)
			if p.Label != "" && p.Label != p.ID {
				fmt.Fprintf(&b, " (%s)", p.Label)
			}
			if p.Unit != "" {
				fmt.Fprintf(&b, " [%s]", p.Unit)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEDRValues summarizes a CoverageJSON response from an EDR data
// query. Each parameter range is reduced to average, minimum, maximum,
// and a count of non-null samples; parameters whose samples are all
// null report the absence of data instead.
func FormatEDRValues(cov map[string]any, params []ogc.EDRParameter) string {
	ranges, _ := cov["ranges"].(map[string]any)
	if len(ranges) == 0 {
		return "The query returned no measurement data."
	}

	units := make(map[string]string, len(params))
	for _, p := range params {
		units[p.ID] = p.Unit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Measurement values for %d parameter(s):\n", len(ranges))
	for _, name := range sortedKeys(ranges) {
		rng, _ := ranges[name].(map[string]any)
		values, _ := rng["values"].([]any)
		fmt.Fprintf(&b, "\n- %s%s: %s\n", name, unitSuffix(units[name]), summarizeValues(values))
	}
	return strings.TrimRight(b.String(), "\n")
}

func unitSuffix(unit string) string {
	if unit == "" {
		return ""
	}
	return " [" + unit + "]"
}

func summarizeValues(values []any) string {
	var (
		count    int
		sum      float64
		min, max float64
	)
	for _, v := range values {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		if count == 0 {
			min, max = f, f
		} else {
			if f < min {
				min = f
			}
			if f > max {
				max = f
			}
		}
		sum += f
		count++
	}
	if count == 0 {
		return "no data at this location"
	}
	return fmt.Sprintf("avg %.2f, min %.2f, max %.2f (%d values)", sum/float64(count), min, max, count)
}
