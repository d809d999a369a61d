package mcp

// Tool argument payloads. Every builtin tool accepts an optional
// server_url that overrides the gateway's default upstream server.

type serverParams struct {
	ServerURL string `json:"server_url"`
}

type collectionParams struct {
	ServerURL    string `json:"server_url"`
	CollectionID string `json:"collection_id"`
}

type featuresParams struct {
	ServerURL    string   `json:"server_url"`
	CollectionID string   `json:"collection_id"`
	Limit        int      `json:"limit"`
	Offset       int      `json:"offset"`
	BBox         string   `json:"bbox"`
	Datetime     string   `json:"datetime"`
	FilterCQL    string   `json:"filter_cql"`
	Properties   []string `json:"properties"`
}

type processParams struct {
	ServerURL string `json:"server_url"`
	ProcessID string `json:"process_id"`
}

type executeParams struct {
	ServerURL    string         `json:"server_url"`
	ProcessID    string         `json:"process_id"`
	Inputs       map[string]any `json:"inputs"`
	AsyncExecute bool           `json:"async_execute"`
}

type jobParams struct {
	ServerURL string `json:"server_url"`
	JobID     string `json:"job_id"`
}

type recordSearchParams struct {
	ServerURL string `json:"server_url"`
	CatalogID string `json:"catalog_id"`
	Q         string `json:"q"`
	BBox      string `json:"bbox"`
	Datetime  string `json:"datetime"`
	Limit     int    `json:"limit"`
}

type recordParams struct {
	ServerURL string `json:"server_url"`
	CatalogID string `json:"catalog_id"`
	RecordID  string `json:"record_id"`
}

type edrPositionParams struct {
	ServerURL      string   `json:"server_url"`
	CollectionID   string   `json:"collection_id"`
	Coords         string   `json:"coords"`
	ParameterNames []string `json:"parameter_names"`
	Datetime       string   `json:"datetime"`
	Z              string   `json:"z"`
}

type edrAreaParams struct {
	ServerURL      string   `json:"server_url"`
	CollectionID   string   `json:"collection_id"`
	Coords         string   `json:"coords"`
	ParameterNames []string `json:"parameter_names"`
	Datetime       string   `json:"datetime"`
}
