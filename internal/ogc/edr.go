package ogc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

type edrCollectionDoc struct {
	ID             string                     `json:"id"`
	Title          string                     `json:"title"`
	Description    string                     `json:"description"`
	ParameterNames map[string]edrParameterDoc `json:"parameter_names"`
	// Some servers spell the member with a hyphen.
	ParameterNamesAlt map[string]edrParameterDoc `json:"parameter-names"`
	DataQueries       map[string]json.RawMessage `json:"data_queries"`
	Extent            *Extent                    `json:"extent"`
	Links             []Link                     `json:"links"`
}

type edrParameterDoc struct {
	ID               string          `json:"id"`
	Label            json.RawMessage `json:"label"`
	Description      json.RawMessage `json:"description"`
	Unit             *edrUnitDoc     `json:"unit"`
	ObservedProperty *struct {
		Label json.RawMessage `json:"label"`
	} `json:"observedProperty"`
}

type edrUnitDoc struct {
	Label  json.RawMessage `json:"label"`
	Symbol json.RawMessage `json:"symbol"`
}

// GetEDRCollection fetches an EDR collection's metadata: its measurable
// parameters and the query types it answers. Query types come from the
// structured data_queries map when the server declares one, otherwise
// from scanning link hrefs for recognized query-type path segments.
func (c *Client) GetEDRCollection(ctx context.Context, collectionID string) (*EDRCollection, error) {
	var doc edrCollectionDoc
	err := c.get(ctx, "/collections/"+collectionID, nil, &doc)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("collection %q does not exist on %s: %w", collectionID, c.baseURL, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, err
	}

	col := &EDRCollection{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Parameters:  parseEDRParameters(doc),
		QueryTypes:  edrQueryTypesFor(doc),
		Extent:      doc.Extent,
		Links:       doc.Links,
	}
	if col.ID == "" {
		col.ID = collectionID
	}
	if col.Title == "" {
		col.Title = col.ID
	}
	return col, nil
}

func parseEDRParameters(doc edrCollectionDoc) []EDRParameter {
	names := doc.ParameterNames
	if len(names) == 0 {
		names = doc.ParameterNamesAlt
	}
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]EDRParameter, 0, len(keys))
	for _, key := range keys {
		p := names[key]
		param := EDRParameter{
			ID:          p.ID,
			Label:       labelText(p.Label),
			Description: labelText(p.Description),
		}
		if param.ID == "" {
			param.ID = key
		}
		if param.Label == "" && p.ObservedProperty != nil {
			param.Label = labelText(p.ObservedProperty.Label)
		}
		if p.Unit != nil {
			param.UnitLabel = labelText(p.Unit.Label)
			param.Unit = symbolText(p.Unit.Symbol)
		}
		params = append(params, param)
	}
	return params
}

func edrQueryTypesFor(doc edrCollectionDoc) []string {
	if len(doc.DataQueries) > 0 {
		var types []string
		for _, qt := range edrQueryTypes {
			if _, ok := doc.DataQueries[qt]; ok {
				types = append(types, qt)
			}
		}
		return types
	}
	return detectEDRQueryTypes(doc.Links)
}

// labelText extracts human-readable text from a value that servers
// encode as either a plain string or an i18n object like {"en": "..."}.
func labelText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil {
		if en, ok := m["en"]; ok {
			return en
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			return m[keys[0]]
		}
	}
	return ""
}

// symbolText extracts a unit symbol encoded as either a plain string or
// an object carrying a "value" member.
func symbolText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

// EDRQuery carries the optional filters for EDR position/area queries.
type EDRQuery struct {
	// ParameterNames restricts the response to the named quantities.
	ParameterNames []string
	// Datetime is an ISO-8601 instant or interval.
	Datetime string
	// Z is a vertical level selector.
	Z string
}

// QueryEDRPosition queries environmental values at a WKT point, e.g.
// "POINT(7.1 50.7)". The WKT is passed through unvalidated: malformed
// coordinates surface as whatever error the upstream returns.
func (c *Client) QueryEDRPosition(ctx context.Context, collectionID, wktPoint string, q EDRQuery) (map[string]any, error) {
	return c.edrQuery(ctx, collectionID, "position", wktPoint, q)
}

// QueryEDRArea queries environmental values within a WKT polygon, e.g.
// "POLYGON((7 50, 8 50, 8 51, 7 51, 7 50))".
func (c *Client) QueryEDRArea(ctx context.Context, collectionID, wktPolygon string, q EDRQuery) (map[string]any, error) {
	return c.edrQuery(ctx, collectionID, "area", wktPolygon, q)
}

func (c *Client) edrQuery(ctx context.Context, collectionID, queryType, coords string, q EDRQuery) (map[string]any, error) {
	params := map[string]string{"coords": coords}
	if len(q.ParameterNames) > 0 {
		params["parameter-name"] = strings.Join(q.ParameterNames, ",")
	}
	if q.Datetime != "" {
		params["datetime"] = q.Datetime
	}
	if q.Z != "" {
		params["z"] = q.Z
	}

	var out map[string]any
	err := c.get(ctx, "/collections/"+collectionID+"/"+queryType, params, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("collection %q has no %s query endpoint on %s: %w", collectionID, queryType, c.baseURL, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
