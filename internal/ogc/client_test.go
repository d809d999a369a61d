package ogc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)
	t.Cleanup(client.Close)
	return client
}

func writeDoc(w http.ResponseWriter, doc any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

func TestNewClient_NormalizesBaseURL(t *testing.T) {
	client := NewClient("https://example.com/ogc/")
	defer client.Close()
	require.Equal(t, "https://example.com/ogc", client.BaseURL())
}

func TestGetServerInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			require.Equal(t, "json", r.URL.Query().Get("f"))
			writeDoc(w, map[string]any{
				"title":       "Demo Server",
				"description": "A demo",
				"links": []map[string]string{
					{"rel": "data", "href": "/collections"},
					{"rel": "http://www.opengis.net/def/rel/ogc/1.0/processes", "href": "/processes"},
				},
			})
		case "/conformance":
			writeDoc(w, map[string]any{"conformsTo": []string{"class-a", "class-b"}})
		default:
			http.NotFound(w, r)
		}
	})

	info, err := client.GetServerInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Demo Server", info.Title)
	require.Equal(t, []string{"features", "processes"}, info.Capabilities)
	require.Len(t, info.ConformanceClasses, 2)
}

func TestGetServerInfo_Defaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			writeDoc(w, map[string]any{})
			return
		}
		// conformance endpoint missing; the error must be swallowed
		http.NotFound(w, r)
	})

	info, err := client.GetServerInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Unknown OGC Server", info.Title)
	require.Empty(t, info.Capabilities)
	require.Empty(t, info.ConformanceClasses)
}

func TestGetCollections_Defaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(w, map[string]any{
			"collections": []map[string]any{
				{"id": "bare"},
				{
					"id":          "full",
					"title":       "Full Collection",
					"description": "All fields present",
					"itemType":    "record",
					"crs":         []string{"EPSG:3857"},
				},
			},
		})
	})

	cols, err := client.GetCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 2)

	bare := cols[0]
	require.Equal(t, "bare", bare.ID)
	require.Equal(t, "bare", bare.Title)
	require.Equal(t, "No description available.", bare.Description)
	require.Equal(t, "feature", bare.ItemType)
	require.Equal(t, []string{"http://www.opengis.net/def/crs/OGC/1.3/CRS84"}, bare.CRS)

	full := cols[1]
	require.Equal(t, "Full Collection", full.Title)
	require.Equal(t, "record", full.ItemType)
	require.Equal(t, []string{"EPSG:3857"}, full.CRS)
}

func TestGetCollection_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetCollection(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCollectionNotFound)
	require.ErrorIs(t, err, ErrClient)
}

func TestGetFeatures_QueryParams(t *testing.T) {
	var got map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		writeDoc(w, map[string]any{"type": "FeatureCollection", "features": []any{}})
	})

	_, err := client.GetFeatures(context.Background(), "lakes", FeatureQuery{
		Limit:      25,
		Offset:     50,
		BBox:       "-10,35,40,75",
		Datetime:   "2024-01-01/..",
		CQLFilter:  "depth > 100",
		Properties: []string{"name", "depth"},
	})
	require.NoError(t, err)
	require.Equal(t, "25", got["limit"][0])
	require.Equal(t, "50", got["offset"][0])
	require.Equal(t, "-10,35,40,75", got["bbox"][0])
	require.Equal(t, "2024-01-01/..", got["datetime"][0])
	require.Equal(t, "depth > 100", got["filter"][0])
	require.Equal(t, "cql2-text", got["filter-lang"][0])
	require.Equal(t, "name,depth", got["properties"][0])
}

func TestGetFeatures_DefaultLimit(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("limit")
		writeDoc(w, map[string]any{"type": "FeatureCollection"})
	})

	_, err := client.GetFeatures(context.Background(), "lakes", FeatureQuery{})
	require.NoError(t, err)
	require.Equal(t, "10", got)
}

func TestGetProcess_Normalization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(w, map[string]any{
			"id": "minimal",
			"inputs": map[string]any{
				"x": map[string]any{"schema": map[string]any{"type": "number"}},
			},
		})
	})

	proc, err := client.GetProcess(context.Background(), "minimal")
	require.NoError(t, err)
	require.Equal(t, "minimal", proc.Title)
	require.Equal(t, "1.0.0", proc.Version)
	require.Equal(t, []string{"sync-execute"}, proc.JobControlOptions)
	require.True(t, proc.SupportsSync())
	require.False(t, proc.SupportsAsync())
}

func TestGetProcess_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetProcess(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProcessNotFound)
}

func TestExecuteProcess_Sync(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Empty(t, r.Header.Get("Prefer"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		inputs, ok := payload["inputs"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, float64(100), inputs["distance"])

		writeDoc(w, map[string]any{"result": "ok"})
	})

	out, err := client.ExecuteProcess(context.Background(), "buffer", map[string]any{"distance": 100}, false)
	require.NoError(t, err)
	require.Equal(t, "ok", out["result"])
}

func TestExecuteProcess_AsyncSendsPreferHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "respond-async", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusCreated)
		writeDoc(w, map[string]any{"jobID": "j1", "status": "accepted"})
	})

	out, err := client.ExecuteProcess(context.Background(), "buffer", nil, true)
	require.NoError(t, err)
	require.Equal(t, "j1", out["jobID"])
}

func TestExecuteProcess_ValidationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeDoc(w, map[string]string{"description": "input 'distance' is required"})
	})

	_, err := client.ExecuteProcess(context.Background(), "buffer", map[string]any{}, false)
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.Contains(t, err.Error(), "distance")
}

func TestExecuteProcess_ErrorBodyTruncated(t *testing.T) {
	long := strings.Repeat("x", 2000)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(long))
	})

	_, err := client.ExecuteProcess(context.Background(), "buffer", nil, false)
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.Less(t, len(err.Error()), 500)
}

func TestTransportErrors(t *testing.T) {
	t.Run("unreachable server", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		defer client.Close()

		_, err := client.GetServerInfo(context.Background())
		require.ErrorIs(t, err, ErrServerNotFound)
		require.ErrorIs(t, err, ErrClient)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
		defer client.Close()

		_, err := client.GetServerInfo(context.Background())
		require.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("canceled context passes through", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeDoc(w, map[string]any{})
		})
		_, err := client.GetServerInfo(ctx)
		require.Error(t, err)
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestHTTPError_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := client.GetCollections(context.Background())
	require.ErrorIs(t, err, ErrClient)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	require.Contains(t, httpErr.Body, "boom")
}

func TestGetLandingPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/", r.URL.Path)
		writeDoc(w, map[string]any{"title": "Raw", "links": []any{}})
	})

	page, err := client.GetLandingPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Raw", page["title"])
}

func TestGetFeature(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/lakes/items/lake.1", r.URL.Path)
		writeDoc(w, map[string]any{
			"type": "Feature",
			"id":   "lake.1",
			"properties": map[string]any{"name": "Lake Onega"},
		})
	})

	feat, err := client.GetFeature(context.Background(), "lakes", "lake.1")
	require.NoError(t, err)
	require.Equal(t, "lake.1", feat["id"])
}

func TestGetFeature_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetFeature(context.Background(), "lakes", "nope")
	require.ErrorIs(t, err, ErrNotFound)
}
