package ogc

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchRecords_QueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/catalog/items", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "elevation", q.Get("q"))
		require.Equal(t, "5,47,15,55", q.Get("bbox"))
		require.Equal(t, "2020-01-01/2021-01-01", q.Get("datetime"))
		require.Equal(t, "5", q.Get("limit"))
		writeDoc(w, map[string]any{"type": "FeatureCollection", "features": []any{}})
	})

	doc, err := client.SearchRecords(context.Background(), "catalog", RecordQuery{
		Q:        "elevation",
		BBox:     "5,47,15,55",
		Datetime: "2020-01-01/2021-01-01",
		Limit:    5,
	})
	require.NoError(t, err)
	require.Equal(t, "FeatureCollection", doc["type"])
}

func TestSearchRecords_DefaultLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		require.Empty(t, r.URL.Query().Get("q"))
		writeDoc(w, map[string]any{"features": []any{}})
	})

	_, err := client.SearchRecords(context.Background(), "catalog", RecordQuery{})
	require.NoError(t, err)
}

func TestSearchRecords_CatalogNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.SearchRecords(context.Background(), "missing", RecordQuery{})
	require.ErrorIs(t, err, ErrCollectionNotFound)
	require.ErrorIs(t, err, ErrClient)
	require.Contains(t, err.Error(), "missing")
}

func TestGetRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/catalog/items/rec-1", r.URL.Path)
		writeDoc(w, map[string]any{
			"id":   "rec-1",
			"bbox": []float64{5.9, 47.3, 15.0, 55.0},
			"properties": map[string]any{
				"title":       "Elevation Model",
				"description": "A digital elevation model",
				"type":        "dataset",
				"keywords":    []string{"elevation", "terrain"},
				"created":     "2020-06-01",
				"updated":     "2023-01-15",
			},
		})
	})

	rec, err := client.GetRecord(context.Background(), "catalog", "rec-1")
	require.NoError(t, err)
	require.Equal(t, "rec-1", rec.ID)
	require.Equal(t, "Elevation Model", rec.Title)
	require.Equal(t, "dataset", rec.Type)
	require.Equal(t, []string{"elevation", "terrain"}, rec.Keywords)
	require.Equal(t, []float64{5.9, 47.3, 15.0, 55.0}, rec.BBox)
	require.Equal(t, "2023-01-15", rec.Updated)
}

func TestGetRecord_Defaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(w, map[string]any{"properties": map[string]any{}})
	})

	rec, err := client.GetRecord(context.Background(), "catalog", "rec-9")
	require.NoError(t, err)
	require.Equal(t, "rec-9", rec.ID)
	require.Equal(t, "rec-9", rec.Title)
	require.Nil(t, rec.BBox)
}

func TestGetRecord_BBoxFromPolygon(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(w, map[string]any{
			"id": "rec-2",
			"geometry": map[string]any{
				"type": "Polygon",
				"coordinates": [][][]float64{{
					{5.9, 47.3}, {15.0, 47.3}, {15.0, 55.0}, {5.9, 55.0}, {5.9, 47.3},
				}},
			},
			"properties": map[string]any{"title": "Coverage"},
		})
	})

	rec, err := client.GetRecord(context.Background(), "catalog", "rec-2")
	require.NoError(t, err)
	require.Equal(t, []float64{5.9, 47.3, 15.0, 55.0}, rec.BBox)
}

func TestPolygonBBox(t *testing.T) {
	mustRaw := func(v any) json.RawMessage {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return b
	}

	tests := []struct {
		name string
		geom *geometryDoc
		want []float64
	}{
		{
			name: "nil geometry",
			geom: nil,
			want: nil,
		},
		{
			name: "point ignored",
			geom: &geometryDoc{Type: "Point", Coordinates: mustRaw([]float64{7, 50})},
			want: nil,
		},
		{
			name: "polygon with hole uses all rings",
			geom: &geometryDoc{Type: "Polygon", Coordinates: mustRaw([][][]float64{
				{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
				{{-1, 4}, {5, 4}, {5, 6}, {-1, 6}, {-1, 4}},
			})},
			want: []float64{-1, 0, 10, 10},
		},
		{
			name: "empty rings",
			geom: &geometryDoc{Type: "Polygon", Coordinates: mustRaw([][][]float64{})},
			want: nil,
		},
		{
			name: "malformed coordinates",
			geom: &geometryDoc{Type: "Polygon", Coordinates: mustRaw("not rings")},
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, polygonBBox(tc.geom))
		})
	}
}
