package ogc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// RecordQuery carries the optional filters for SearchRecords.
type RecordQuery struct {
	// Q is a free-text search term.
	Q string
	// BBox is "minLon,minLat,maxLon,maxLat", passed verbatim.
	BBox string
	// Datetime is an ISO-8601 instant or interval.
	Datetime string
	// Limit caps returned records; values <= 0 mean the default of 10.
	Limit int
}

// SearchRecords searches a catalog collection (itemType "record") and
// returns the raw GeoJSON-shaped result document.
func (c *Client) SearchRecords(ctx context.Context, catalogID string, q RecordQuery) (map[string]any, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	params := map[string]string{"limit": strconv.Itoa(limit)}
	if q.Q != "" {
		params["q"] = q.Q
	}
	if q.BBox != "" {
		params["bbox"] = q.BBox
	}
	if q.Datetime != "" {
		params["datetime"] = q.Datetime
	}

	var out map[string]any
	err := c.get(ctx, "/collections/"+catalogID+"/items", params, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("catalog %q does not exist on %s: %w", catalogID, c.baseURL, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

type recordDoc struct {
	ID         string          `json:"id"`
	BBox       []float64       `json:"bbox"`
	Geometry   *geometryDoc    `json:"geometry"`
	Properties recordPropsDoc  `json:"properties"`
	Time       json.RawMessage `json:"time"`
}

type geometryDoc struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type recordPropsDoc struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Keywords    []string `json:"keywords"`
	Created     string   `json:"created"`
	Updated     string   `json:"updated"`
}

// GetRecord fetches one catalog record. When the server omits a bbox,
// one is derived from the min/max of a Polygon geometry's ring
// coordinates; Point and LineString geometries yield no derived bbox.
func (c *Client) GetRecord(ctx context.Context, catalogID, recordID string) (*Record, error) {
	var doc recordDoc
	err := c.get(ctx, "/collections/"+catalogID+"/items/"+recordID, nil, &doc)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:          doc.ID,
		Title:       doc.Properties.Title,
		Description: doc.Properties.Description,
		Type:        doc.Properties.Type,
		Keywords:    doc.Properties.Keywords,
		BBox:        doc.BBox,
		Created:     doc.Properties.Created,
		Updated:     doc.Properties.Updated,
	}
	if rec.ID == "" {
		rec.ID = recordID
	}
	if rec.Title == "" {
		rec.Title = rec.ID
	}
	if len(rec.BBox) == 0 {
		rec.BBox = polygonBBox(doc.Geometry)
	}
	return rec, nil
}

// polygonBBox derives a [minLon, minLat, maxLon, maxLat] box from a
// Polygon geometry by scanning every ring vertex. Other geometry types
// return nil.
func polygonBBox(geom *geometryDoc) []float64 {
	if geom == nil || geom.Type != "Polygon" {
		return nil
	}
	var rings [][][]float64
	if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
		return nil
	}

	first := true
	var minLon, minLat, maxLon, maxLat float64
	for _, ring := range rings {
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			lon, lat := pt[0], pt[1]
			if first {
				minLon, maxLon = lon, lon
				minLat, maxLat = lat, lat
				first = false
				continue
			}
			if lon < minLon {
				minLon = lon
			}
			if lon > maxLon {
				maxLon = lon
			}
			if lat < minLat {
				minLat = lat
			}
			if lat > maxLat {
				maxLat = lat
			}
		}
	}
	if first {
		return nil
	}
	return []float64{minLon, minLat, maxLon, maxLat}
}
