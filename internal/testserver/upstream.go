// Package testserver provides a fake OGC API upstream and a fully wired
// gateway for tests. The upstream implements enough of OGC API Common,
// Features, Records, Processes, and EDR to exercise every tool.
package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const processesRel = "http://www.opengis.net/def/rel/ogc/1.0/processes"
const jobListRel = "http://www.opengis.net/def/rel/ogc/1.0/job-list"

// Upstream is an in-process OGC API server. Async jobs advance one
// lifecycle step per status poll so tests can observe every state.
type Upstream struct {
	Server *httptest.Server

	mu   sync.Mutex
	jobs map[string]*jobState
}

type jobState struct {
	processID string
	status    string
	failNext  bool
}

// NewUpstream starts the fake server and registers cleanup.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()

	u := &Upstream{jobs: map[string]*jobState{}}

	r := chi.NewRouter()
	r.Get("/", u.handleLanding)
	r.Get("/conformance", u.handleConformance)
	r.Get("/collections", u.handleCollections)
	r.Get("/collections/{collectionID}", u.handleCollection)
	r.Get("/collections/lakes/items", u.handleLakeItems)
	r.Get("/collections/catalog/items", u.handleCatalogItems)
	r.Get("/collections/catalog/items/{recordID}", u.handleCatalogItem)
	r.Get("/collections/wind/position", u.handleWindPosition)
	r.Get("/collections/wind/area", u.handleWindPosition)
	r.Get("/processes", u.handleProcesses)
	r.Get("/processes/{processID}", u.handleProcess)
	r.Post("/processes/{processID}/execution", u.handleExecution)
	r.Get("/jobs/{jobID}", u.handleJob)
	r.Get("/jobs/{jobID}/results", u.handleJobResults)

	u.Server = httptest.NewServer(r)
	t.Cleanup(u.Server.Close)
	return u
}

// URL returns the upstream's base URL.
func (u *Upstream) URL() string { return u.Server.URL }

// FailNextJob marks the next created job to end in the failed state.
func (u *Upstream) FailNextJob() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.jobs["__fail_next__"] = &jobState{failNext: true}
}

func writeJSON(w http.ResponseWriter, status int, doc any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(doc)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"code":        "NotFound",
		"description": what + " not found",
	})
}

func (u *Upstream) handleLanding(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"title":       "Test Geo Server",
		"description": "Fixture server for gateway tests",
		"links": []map[string]string{
			{"href": u.Server.URL + "/collections", "rel": "data"},
			{"href": u.Server.URL + "/conformance", "rel": "conformance"},
			{"href": u.Server.URL + "/processes", "rel": processesRel},
			{"href": u.Server.URL + "/jobs", "rel": jobListRel},
		},
	})
}

func (u *Upstream) handleConformance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"conformsTo": []string{
			"http://www.opengis.net/spec/ogcapi-common-1/1.0/conf/core",
			"http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/core",
			"http://www.opengis.net/spec/ogcapi-processes-1/1.0/conf/core",
		},
	})
}

func (u *Upstream) lakesDoc() map[string]any {
	return map[string]any{
		"id":          "lakes",
		"title":       "Large Lakes",
		"description": "Lakes of the world",
		"itemType":    "feature",
		"extent": map[string]any{
			"spatial": map[string]any{
				"bbox": [][]float64{{-180, -90, 180, 90}},
			},
		},
	}
}

func (u *Upstream) catalogDoc() map[string]any {
	return map[string]any{
		"id":          "catalog",
		"title":       "Metadata Catalog",
		"description": "Dataset metadata records",
		"itemType":    "record",
	}
}

func (u *Upstream) windDoc() map[string]any {
	return map[string]any{
		"id":          "wind",
		"title":       "Wind Observations",
		"description": "Hourly wind measurements",
		"links": []map[string]string{
			{"href": u.Server.URL + "/collections/wind/position", "rel": "data"},
			{"href": u.Server.URL + "/collections/wind/area", "rel": "data"},
		},
		"parameter_names": map[string]any{
			"windspeed": map[string]any{
				"id":          "windspeed",
				"description": "Wind speed at 10m",
				"observedProperty": map[string]any{
					"label": "Wind speed",
				},
				"unit": map[string]any{
					"symbol": map[string]any{"value": "m/s"},
				},
			},
		},
		"data_queries": map[string]any{
			"position": map[string]any{},
			"area":     map[string]any{},
		},
	}
}

func (u *Upstream) handleCollections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"collections": []map[string]any{u.lakesDoc(), u.catalogDoc(), u.windDoc()},
	})
}

func (u *Upstream) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "collectionID") {
	case "lakes":
		writeJSON(w, http.StatusOK, u.lakesDoc())
	case "catalog":
		writeJSON(w, http.StatusOK, u.catalogDoc())
	case "wind":
		writeJSON(w, http.StatusOK, u.windDoc())
	default:
		notFound(w, "collection")
	}
}

func (u *Upstream) handleLakeItems(w http.ResponseWriter, r *http.Request) {
	features := []map[string]any{
		{
			"type": "Feature",
			"id":   "lake.1",
			"geometry": map[string]any{
				"type":        "Point",
				"coordinates": []float64{32.9, 61.8},
			},
			"properties": map[string]any{
				"name":  "Lake Onega",
				"area":  9700.0,
				"depth": 120.0,
			},
		},
		{
			"type": "Feature",
			"id":   "lake.2",
			"geometry": map[string]any{
				"type":        "Point",
				"coordinates": []float64{-87.5, 44.5},
			},
			"properties": map[string]any{
				"name":  "Lake Michigan",
				"area":  58030.0,
				"depth": 281.0,
			},
		},
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit < len(features) {
		features = features[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":           "FeatureCollection",
		"features":       features,
		"numberMatched":  2,
		"numberReturned": len(features),
	})
}

func (u *Upstream) catalogRecord() map[string]any {
	return map[string]any{
		"type": "Feature",
		"id":   "rec-1",
		"geometry": map[string]any{
			"type": "Polygon",
			"coordinates": [][][]float64{{
				{5.9, 47.3}, {15.0, 47.3}, {15.0, 55.0}, {5.9, 55.0}, {5.9, 47.3},
			}},
		},
		"properties": map[string]any{
			"title":       "Elevation Model",
			"description": "National digital elevation model",
			"type":        "dataset",
			"keywords":    []string{"elevation", "terrain"},
		},
	}
}

func (u *Upstream) handleCatalogItems(w http.ResponseWriter, r *http.Request) {
	features := []map[string]any{u.catalogRecord()}
	if q := r.URL.Query().Get("q"); q != "" && q != "elevation" {
		features = nil
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":          "FeatureCollection",
		"features":      features,
		"numberMatched": len(features),
	})
}

func (u *Upstream) handleCatalogItem(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "recordID") != "rec-1" {
		notFound(w, "record")
		return
	}
	writeJSON(w, http.StatusOK, u.catalogRecord())
}

func (u *Upstream) handleWindPosition(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"type": "Coverage",
		"ranges": map[string]any{
			"windspeed": map[string]any{
				"type":   "NdArray",
				"values": []any{10.0, nil, 20.0, 30.0},
			},
		},
	})
}

func (u *Upstream) bufferProcess() map[string]any {
	return map[string]any{
		"id":          "buffer-features",
		"title":       "Buffer Features",
		"description": "Computes a buffer around input geometries",
		"version":     "2.1.0",
		"keywords":    []string{"geometry", "buffer"},
		"inputs": map[string]any{
			"geometry": map[string]any{
				"title":       "Input geometry",
				"description": "GeoJSON geometry to buffer",
				"schema":      map[string]any{"type": "object"},
			},
			"distance": map[string]any{
				"title":  "Buffer distance in meters",
				"schema": map[string]any{"type": "number"},
			},
			"segments": map[string]any{
				"title":     "Arc segments",
				"minOccurs": 0,
				"schema":    map[string]any{"type": "integer"},
			},
		},
		"outputs": map[string]any{
			"result": map[string]any{"title": "Buffered geometry"},
		},
		"jobControlOptions": []string{"sync-execute", "async-execute"},
	}
}

func (u *Upstream) handleProcesses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"processes": []map[string]any{u.bufferProcess()},
	})
}

func (u *Upstream) handleProcess(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "processID") != "buffer-features" {
		notFound(w, "process")
		return
	}
	writeJSON(w, http.StatusOK, u.bufferProcess())
}

func (u *Upstream) handleExecution(w http.ResponseWriter, r *http.Request) {
	processID := chi.URLParam(r, "processID")
	if processID != "buffer-features" {
		notFound(w, "process")
		return
	}

	var payload struct {
		Inputs map[string]any `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"code":        "InvalidParameterValue",
			"description": "malformed execution request",
		})
		return
	}
	if _, ok := payload.Inputs["distance"]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"code":        "MissingParameterValue",
			"description": "input 'distance' is required",
		})
		return
	}

	if r.Header.Get("Prefer") == "respond-async" {
		u.mu.Lock()
		jobID := uuid.NewString()
		state := &jobState{processID: processID, status: "accepted"}
		if fail, ok := u.jobs["__fail_next__"]; ok && fail.failNext {
			state.failNext = true
			delete(u.jobs, "__fail_next__")
		}
		u.jobs[jobID] = state
		u.mu.Unlock()

		w.Header().Set("Location", fmt.Sprintf("%s/jobs/%s", u.Server.URL, jobID))
		writeJSON(w, http.StatusCreated, map[string]any{
			"jobID":     jobID,
			"processID": processID,
			"status":    "accepted",
			"type":      "process",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type": "FeatureCollection",
		"features": []map[string]any{
			{"type": "Feature", "geometry": map[string]any{"type": "Polygon"}, "properties": map[string]any{}},
		},
	})
}

// handleJob advances the job lifecycle one step per poll.
func (u *Upstream) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	u.mu.Lock()
	state, ok := u.jobs[jobID]
	if ok {
		switch state.status {
		case "accepted":
			state.status = "running"
		case "running":
			if state.failNext {
				state.status = "failed"
			} else {
				state.status = "successful"
			}
		}
	}
	u.mu.Unlock()

	if !ok {
		notFound(w, "job")
		return
	}

	doc := map[string]any{
		"jobID":     jobID,
		"processID": state.processID,
		"status":    state.status,
		"type":      "process",
	}
	if state.status == "failed" {
		doc["message"] = "buffer distance out of range"
	}
	writeJSON(w, http.StatusOK, doc)
}

func (u *Upstream) handleJobResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	u.mu.Lock()
	state, ok := u.jobs[jobID]
	u.mu.Unlock()

	if !ok {
		notFound(w, "job")
		return
	}
	if state.status != "successful" {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"code":        "ResultNotReady",
			"description": "job results are not available",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": map[string]any{
			"type": "FeatureCollection",
			"features": []map[string]any{
				{"type": "Feature", "properties": map[string]any{}},
			},
		},
	})
}
