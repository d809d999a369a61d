package ogc

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEDRCollection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/wind", r.URL.Path)
		writeDoc(w, map[string]any{
			"id":          "wind",
			"title":       "Wind Observations",
			"description": "Surface wind measurements",
			"parameter_names": map[string]any{
				"windspeed": map[string]any{
					"observedProperty": map[string]any{"label": "Wind speed"},
					"unit": map[string]any{
						"label":  map[string]any{"en": "metres per second"},
						"symbol": map[string]any{"value": "m/s"},
					},
				},
				"direction": map[string]any{
					"id":    "wind-direction",
					"label": "Wind direction",
					"unit":  map[string]any{"symbol": "deg"},
				},
			},
			"data_queries": map[string]any{
				"position": map[string]any{},
				"area":     map[string]any{},
			},
		})
	})

	col, err := client.GetEDRCollection(context.Background(), "wind")
	require.NoError(t, err)
	require.Equal(t, "wind", col.ID)
	require.Equal(t, "Wind Observations", col.Title)
	require.Equal(t, []string{"position", "area"}, col.QueryTypes)

	require.Len(t, col.Parameters, 2)
	// Parameters come back sorted by map key.
	require.Equal(t, "wind-direction", col.Parameters[0].ID)
	require.Equal(t, "Wind direction", col.Parameters[0].Label)
	require.Equal(t, "deg", col.Parameters[0].Unit)
	require.Equal(t, "windspeed", col.Parameters[1].ID)
	require.Equal(t, "Wind speed", col.Parameters[1].Label)
	require.Equal(t, "m/s", col.Parameters[1].Unit)
	require.Equal(t, "metres per second", col.Parameters[1].UnitLabel)
}

func TestGetEDRCollection_HyphenatedParameterNames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(w, map[string]any{
			"id": "temp",
			"parameter-names": map[string]any{
				"t2m": map[string]any{"label": "Air temperature"},
			},
			"links": []map[string]string{
				{"href": "https://example.com/collections/temp/position?f=json", "rel": "data"},
			},
		})
	})

	col, err := client.GetEDRCollection(context.Background(), "temp")
	require.NoError(t, err)
	require.Len(t, col.Parameters, 1)
	require.Equal(t, "t2m", col.Parameters[0].ID)
	require.Equal(t, "Air temperature", col.Parameters[0].Label)
	// No data_queries member, so query types fall back to link scanning.
	require.Equal(t, []string{"position"}, col.QueryTypes)
}

func TestGetEDRCollection_Defaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(w, map[string]any{})
	})

	col, err := client.GetEDRCollection(context.Background(), "bare")
	require.NoError(t, err)
	require.Equal(t, "bare", col.ID)
	require.Equal(t, "bare", col.Title)
	require.Nil(t, col.Parameters)
	require.Nil(t, col.QueryTypes)
}

func TestGetEDRCollection_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetEDRCollection(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCollectionNotFound)
	require.ErrorIs(t, err, ErrClient)
}

func TestQueryEDRPosition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/wind/position", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "POINT(7.1 50.7)", q.Get("coords"))
		require.Equal(t, "windspeed,direction", q.Get("parameter-name"))
		require.Equal(t, "2024-01-01T00:00:00Z", q.Get("datetime"))
		require.Equal(t, "850", q.Get("z"))
		writeDoc(w, map[string]any{"type": "Coverage"})
	})

	doc, err := client.QueryEDRPosition(context.Background(), "wind", "POINT(7.1 50.7)", EDRQuery{
		ParameterNames: []string{"windspeed", "direction"},
		Datetime:       "2024-01-01T00:00:00Z",
		Z:              "850",
	})
	require.NoError(t, err)
	require.Equal(t, "Coverage", doc["type"])
}

func TestQueryEDRArea(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/wind/area", r.URL.Path)
		require.Equal(t, "POLYGON((7 50, 8 50, 8 51, 7 51, 7 50))", r.URL.Query().Get("coords"))
		require.Empty(t, r.URL.Query().Get("parameter-name"))
		writeDoc(w, map[string]any{"type": "Coverage"})
	})

	_, err := client.QueryEDRArea(context.Background(), "wind", "POLYGON((7 50, 8 50, 8 51, 7 51, 7 50))", EDRQuery{})
	require.NoError(t, err)
}

func TestQueryEDRPosition_NoEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.QueryEDRPosition(context.Background(), "lakes", "POINT(1 2)", EDRQuery{})
	require.ErrorIs(t, err, ErrCollectionNotFound)
	require.Contains(t, err.Error(), "position")
}

func TestLabelText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"plain string", `"Wind speed"`, "Wind speed"},
		{"i18n prefers en", `{"de": "Windgeschwindigkeit", "en": "Wind speed"}`, "Wind speed"},
		{"i18n without en picks first key", `{"fr": "vent", "de": "Wind"}`, "Wind"},
		{"unparseable", `42`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, labelText([]byte(tc.raw)))
		})
	}
}

func TestSymbolText(t *testing.T) {
	require.Equal(t, "m/s", symbolText([]byte(`"m/s"`)))
	require.Equal(t, "m/s", symbolText([]byte(`{"value": "m/s", "type": "unit"}`)))
	require.Equal(t, "", symbolText(nil))
}
