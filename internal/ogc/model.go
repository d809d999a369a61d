package ogc

import "encoding/json"

// Capability names detected from a server's landing page links.
const (
	CapFeatures  = "features"
	CapProcesses = "processes"
	CapRecords   = "records"
	CapEDR       = "edr"
	CapTiles     = "tiles"
	CapJobs      = "jobs"
)

// Link is a hyperlink as it appears in OGC API responses.
type Link struct {
	Href  string `json:"href"`
	Rel   string `json:"rel"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// ServerInfo summarizes an OGC API server's self-description.
type ServerInfo struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	BaseURL            string   `json:"base_url"`
	Capabilities       []string `json:"capabilities"`
	ConformanceClasses []string `json:"conformance_classes,omitempty"`
}

// Collection represents one dataset exposed by a server.
// ItemType "feature" marks a feature collection, "record" a catalog.
type Collection struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ItemType    string   `json:"item_type"`
	Extent      *Extent  `json:"extent,omitempty"`
	CRS         []string `json:"crs,omitempty"`
	Links       []Link   `json:"links,omitempty"`
}

// Extent describes a collection's spatial and temporal coverage.
type Extent struct {
	Spatial  *SpatialExtent  `json:"spatial,omitempty"`
	Temporal *TemporalExtent `json:"temporal,omitempty"`
}

// SpatialExtent carries one or more bounding boxes. The first bbox is
// the overall extent per the OGC API - Common model.
type SpatialExtent struct {
	BBox [][]float64 `json:"bbox,omitempty"`
	CRS  string      `json:"crs,omitempty"`
}

// TemporalExtent carries begin/end instants; null means open-ended.
type TemporalExtent struct {
	Interval [][]*string `json:"interval,omitempty"`
}

// ProcessInput is one declared input of a process. MinOccurs nil means
// the field was absent from the upstream document, which the OGC API -
// Processes spec defines as required (default 1).
type ProcessInput struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	MinOccurs   *int         `json:"minOccurs,omitempty"`
	Schema      *InputSchema `json:"schema,omitempty"`
}

// InputSchema is the JSON-Schema-like fragment attached to a process
// input. Items is kept raw so arbitrary nested item schemas survive
// translation verbatim.
type InputSchema struct {
	Type   string          `json:"type,omitempty"`
	Format string          `json:"format,omitempty"`
	Enum   []any           `json:"enum,omitempty"`
	Items  json.RawMessage `json:"items,omitempty"`
}

// ProcessOutput is one declared output of a process.
type ProcessOutput struct {
	Title  string          `json:"title,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// Process is an executable server-side operation.
type Process struct {
	ID                string                   `json:"id"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	Version           string                   `json:"version"`
	Inputs            map[string]ProcessInput  `json:"inputs,omitempty"`
	Outputs           map[string]ProcessOutput `json:"outputs,omitempty"`
	JobControlOptions []string                 `json:"job_control_options,omitempty"`
	Keywords          []string                 `json:"keywords,omitempty"`
}

// SupportsSync reports whether the process declares synchronous execution.
func (p Process) SupportsSync() bool { return p.supportsMode("sync-execute") }

// SupportsAsync reports whether the process declares asynchronous execution.
func (p Process) SupportsAsync() bool { return p.supportsMode("async-execute") }

func (p Process) supportsMode(mode string) bool {
	for _, opt := range p.JobControlOptions {
		if opt == mode {
			return true
		}
	}
	return false
}

// JobStatus is the lifecycle state of an asynchronous execution.
type JobStatus string

const (
	JobAccepted   JobStatus = "accepted"
	JobRunning    JobStatus = "running"
	JobSuccessful JobStatus = "successful"
	JobFailed     JobStatus = "failed"
	JobDismissed  JobStatus = "dismissed"
)

// Terminal reports whether the status ends the job lifecycle.
func (s JobStatus) Terminal() bool {
	return s == JobSuccessful || s == JobFailed || s == JobDismissed
}

// Job is a handle on one asynchronous process execution. The job ID is
// opaque and assigned by the upstream server. Timestamps are kept as
// the upstream's ISO-8601 strings.
type Job struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	ProcessID string    `json:"process_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	Progress  *int      `json:"progress,omitempty"`
	Created   string    `json:"created,omitempty"`
	Finished  string    `json:"finished,omitempty"`
}

// Record is a catalog metadata entry (OGC API - Records).
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Keywords    []string  `json:"keywords,omitempty"`
	BBox        []float64 `json:"bbox,omitempty"`
	Created     string    `json:"created,omitempty"`
	Updated     string    `json:"updated,omitempty"`
}

// EDRParameter is one measurable quantity within an EDR collection.
// ID is the value used when constructing parameter-name query strings.
type EDRParameter struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
	UnitLabel   string `json:"unit_label,omitempty"`
}

// EDRCollection is an environmental data query endpoint.
type EDRCollection struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Parameters  []EDRParameter `json:"parameters,omitempty"`
	QueryTypes  []string       `json:"query_types,omitempty"`
	Extent      *Extent        `json:"extent,omitempty"`
	Links       []Link         `json:"links,omitempty"`
}
