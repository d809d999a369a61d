package ogc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "ogc-mcp/0.1.0"

	// defaultCRS is reported when a collections listing omits a CRS list.
	defaultCRS = "http://www.opengis.net/def/crs/OGC/1.3/CRS84"

	// noDescription is the placeholder used when a server omits a
	// collection or process description.
	noDescription = "No description available."
)

// Client is an HTTP client for one OGC API-compliant server. It is the
// only component that performs network I/O against upstream servers and
// the only place HTTP failures are translated into the package's error
// taxonomy.
//
// A Client owns a pooled connection group. It is scoped: open one per
// request-handling scope and Close it on every exit path. Methods are
// safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for the server at baseURL. A trailing
// slash on baseURL is stripped. The f=json format parameter is forced
// on every request so servers negotiate JSON regardless of defaults.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetQueryParam("f", "json").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return c
}

// BaseURL returns the normalized server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases the underlying pooled connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// get performs a GET against path and decodes the JSON response into
// out (skipped when out is nil).
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return c.transportError(err, path)
	}
	if resp.IsError() {
		return c.statusError(resp.StatusCode(), resp.String(), path)
	}
	return decodeBody(resp.Body(), path, out)
}

// post performs a JSON POST against path and decodes the response into
// out. An HTTP 400 maps to ErrExecutionFailed: for the execution
// endpoint it means the server rejected the inputs.
func (c *Client) post(ctx context.Context, path string, payload any, headers map[string]string, out any) error {
	req := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	for k, v := range headers {
		req.SetHeader(k, v)
	}
	resp, err := req.Post(path)
	if err != nil {
		return c.transportError(err, path)
	}
	if resp.StatusCode() == http.StatusBadRequest {
		return fmt.Errorf("bad request to %s%s, server said: %s: %w",
			c.baseURL, path, truncateBody(resp.String()), ErrExecutionFailed)
	}
	if resp.IsError() {
		return c.statusError(resp.StatusCode(), resp.String(), path)
	}
	return decodeBody(resp.Body(), path, out)
}

func decodeBody(body []byte, path string, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid JSON from %s: %v", ErrClient, path, err)
	}
	return nil
}

func (c *Client) statusError(status int, body, path string) error {
	if status == http.StatusNotFound {
		return fmt.Errorf("no resource at %s%s: %w", c.baseURL, path, ErrNotFound)
	}
	return &HTTPError{StatusCode: status, URL: c.baseURL + path, Body: truncateBody(body)}
}

func (c *Client) transportError(err error, path string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("request to %s%s timed out after %s: %w", c.baseURL, path, c.timeout, ErrTimeout)
	}
	return fmt.Errorf("cannot connect to %q (%v): %w", c.baseURL, err, ErrServerNotFound)
}

// Wire documents. These mirror the upstream JSON shapes; missing fields
// get named defaults when normalized into the domain model.

type landingPage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

type conformancePage struct {
	ConformsTo []string `json:"conformsTo"`
}

type collectionDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ItemType    string   `json:"itemType"`
	Extent      *Extent  `json:"extent"`
	CRS         []string `json:"crs"`
	Links       []Link   `json:"links"`
}

type collectionsPage struct {
	Collections []collectionDoc `json:"collections"`
}

type processDoc struct {
	ID                string                   `json:"id"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	Version           string                   `json:"version"`
	Inputs            map[string]ProcessInput  `json:"inputs"`
	Outputs           map[string]ProcessOutput `json:"outputs"`
	JobControlOptions []string                 `json:"jobControlOptions"`
	Keywords          []string                 `json:"keywords"`
}

type processesPage struct {
	Processes []processDoc `json:"processes"`
}

// GetServerInfo fetches the landing page, detects capabilities from its
// links, and attaches the advisory conformance class list. A failure to
// fetch /conformance is swallowed: the endpoint is optional and its
// absence says nothing about the server's actual abilities.
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	var page landingPage
	if err := c.get(ctx, "/", nil, &page); err != nil {
		return nil, err
	}
	info := &ServerInfo{
		Title:        page.Title,
		Description:  page.Description,
		BaseURL:      c.baseURL,
		Capabilities: DetectCapabilities(page.Links),
	}
	if info.Title == "" {
		info.Title = "Unknown OGC Server"
	}

	var conf conformancePage
	if err := c.get(ctx, "/conformance", nil, &conf); err == nil {
		info.ConformanceClasses = conf.ConformsTo
	}
	return info, nil
}

// GetLandingPage returns the raw landing page document including all
// navigation links.
func (c *Client) GetLandingPage(ctx context.Context) (map[string]any, error) {
	var page map[string]any
	if err := c.get(ctx, "/", nil, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetCollections lists every collection the server exposes. Missing
// fields default: title falls back to the id, description to a fixed
// placeholder, item type to "feature", and the CRS list to CRS84.
func (c *Client) GetCollections(ctx context.Context) ([]Collection, error) {
	var page collectionsPage
	if err := c.get(ctx, "/collections", nil, &page); err != nil {
		return nil, err
	}
	cols := make([]Collection, 0, len(page.Collections))
	for _, doc := range page.Collections {
		col := normalizeCollection(doc, doc.ID)
		if col.Description == "" {
			col.Description = noDescription
		}
		if len(col.CRS) == 0 {
			col.CRS = []string{defaultCRS}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// GetCollection fetches metadata for one collection. Returns
// ErrCollectionNotFound when the server answers 404.
func (c *Client) GetCollection(ctx context.Context, collectionID string) (*Collection, error) {
	var doc collectionDoc
	err := c.get(ctx, "/collections/"+collectionID, nil, &doc)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("collection %q does not exist on %s: %w", collectionID, c.baseURL, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, err
	}
	col := normalizeCollection(doc, collectionID)
	return &col, nil
}

func normalizeCollection(doc collectionDoc, fallbackID string) Collection {
	col := Collection{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		ItemType:    doc.ItemType,
		Extent:      doc.Extent,
		CRS:         doc.CRS,
		Links:       doc.Links,
	}
	if col.ID == "" {
		col.ID = fallbackID
	}
	if col.Title == "" {
		col.Title = col.ID
	}
	if col.ItemType == "" {
		col.ItemType = "feature"
	}
	return col
}

// FeatureQuery carries the optional filters for GetFeatures.
type FeatureQuery struct {
	// Limit caps returned features; values <= 0 mean the default of 10.
	Limit int
	// Offset skips features for pagination.
	Offset int
	// BBox is "minLon,minLat,maxLon,maxLat" in WGS84, passed verbatim.
	BBox string
	// Datetime is an ISO-8601 instant or interval; ".." marks an open end.
	Datetime string
	// CQLFilter is a CQL2 text expression, e.g. `population > 1000000`.
	CQLFilter string
	// Properties restricts which feature properties are returned.
	Properties []string
}

// GetFeatures fetches features from a collection as a GeoJSON
// FeatureCollection document.
func (c *Client) GetFeatures(ctx context.Context, collectionID string, q FeatureQuery) (map[string]any, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	params := map[string]string{"limit": strconv.Itoa(limit)}
	if q.Offset > 0 {
		params["offset"] = strconv.Itoa(q.Offset)
	}
	if q.BBox != "" {
		params["bbox"] = q.BBox
	}
	if q.Datetime != "" {
		params["datetime"] = q.Datetime
	}
	if q.CQLFilter != "" {
		params["filter"] = q.CQLFilter
		params["filter-lang"] = "cql2-text"
	}
	if len(q.Properties) > 0 {
		params["properties"] = strings.Join(q.Properties, ",")
	}

	var out map[string]any
	if err := c.get(ctx, "/collections/"+collectionID+"/items", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFeature fetches a single feature by id as a GeoJSON Feature.
func (c *Client) GetFeature(ctx context.Context, collectionID, featureID string) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/collections/"+collectionID+"/items/"+featureID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProcesses lists every process the server hosts.
func (c *Client) GetProcesses(ctx context.Context) ([]Process, error) {
	var page processesPage
	if err := c.get(ctx, "/processes", nil, &page); err != nil {
		return nil, err
	}
	procs := make([]Process, 0, len(page.Processes))
	for _, doc := range page.Processes {
		proc := normalizeProcess(doc, doc.ID)
		if proc.Description == "" {
			proc.Description = noDescription
		}
		procs = append(procs, proc)
	}
	return procs, nil
}

// GetProcess fetches the full description of one process, including
// its input and output schemas. Returns ErrProcessNotFound on 404.
func (c *Client) GetProcess(ctx context.Context, processID string) (*Process, error) {
	var doc processDoc
	err := c.get(ctx, "/processes/"+processID, nil, &doc)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("process %q does not exist on %s: %w", processID, c.baseURL, ErrProcessNotFound)
	}
	if err != nil {
		return nil, err
	}
	proc := normalizeProcess(doc, processID)
	return &proc, nil
}

func normalizeProcess(doc processDoc, fallbackID string) Process {
	proc := Process{
		ID:                doc.ID,
		Title:             doc.Title,
		Description:       doc.Description,
		Version:           doc.Version,
		Inputs:            doc.Inputs,
		Outputs:           doc.Outputs,
		JobControlOptions: doc.JobControlOptions,
		Keywords:          doc.Keywords,
	}
	if proc.ID == "" {
		proc.ID = fallbackID
	}
	if proc.Title == "" {
		proc.Title = proc.ID
	}
	if proc.Version == "" {
		proc.Version = "1.0.0"
	}
	if len(proc.JobControlOptions) == 0 {
		proc.JobControlOptions = []string{"sync-execute"}
	}
	return proc
}

// ExecuteProcess runs a process. With async false the call blocks until
// the server returns the process outputs. With async true the request
// carries a Prefer: respond-async hint and the server answers with a
// job acceptance document ("jobID", "status").
func (c *Client) ExecuteProcess(ctx context.Context, processID string, inputs map[string]any, async bool) (map[string]any, error) {
	var headers map[string]string
	if async {
		headers = map[string]string{"Prefer": "respond-async"}
	}

	var out map[string]any
	err := c.post(ctx, "/processes/"+processID+"/execution", map[string]any{"inputs": inputs}, headers, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("process %q does not exist on %s: %w", processID, c.baseURL, ErrProcessNotFound)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
