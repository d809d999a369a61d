package ogc

import "strings"

// capabilityRels maps each detectable capability to the link relation
// identifiers that advertise it. Both short names and namespaced OGC
// rel URIs are accepted because conforming servers use either form.
var capabilityRels = map[string][]string{
	CapFeatures:  {"data", "collections"},
	CapProcesses: {"processes", "http://www.opengis.net/def/rel/ogc/1.0/processes"},
	CapTiles:     {"tiling-schemes", "http://www.opengis.net/def/rel/ogc/1.0/tiling-schemes"},
	CapJobs:      {"job-list", "http://www.opengis.net/def/rel/ogc/1.0/job-list"},
}

// capabilityOrder fixes the order capabilities are reported in.
var capabilityOrder = []string{CapFeatures, CapProcesses, CapTiles, CapJobs}

// DetectCapabilities inspects landing-page links and returns the
// capabilities they advertise. This is a heuristic: a missing link does
// not prove a capability is absent, so the result may be incomplete.
// Records and EDR support are classified per collection, not here.
func DetectCapabilities(links []Link) []string {
	var caps []string
	for _, cap := range capabilityOrder {
		if linksAdvertise(links, capabilityRels[cap]) {
			caps = append(caps, cap)
		}
	}
	return caps
}

// linksAdvertise reports whether any link's rel exactly equals, or
// path-suffix-matches, one of the accepted relation identifiers.
func linksAdvertise(links []Link, rels []string) bool {
	for _, link := range links {
		for _, rel := range rels {
			if link.Rel == rel || strings.HasSuffix(link.Rel, "/"+rel) {
				return true
			}
		}
	}
	return false
}

// edrQueryTypes lists the query types defined by OGC API - EDR, in the
// order they are reported.
var edrQueryTypes = []string{"position", "area", "cube", "trajectory", "radius", "corridor", "locations"}

// ClassifyCollection decides what kind of collection this is:
// "record" for catalogs, "edr" when the collection advertises EDR query
// endpoints, otherwise the declared item type (default "feature").
func ClassifyCollection(col Collection) string {
	if col.ItemType == "record" {
		return "record"
	}
	if len(detectEDRQueryTypes(col.Links)) > 0 {
		return "edr"
	}
	if col.ItemType == "" {
		return "feature"
	}
	return col.ItemType
}

// detectEDRQueryTypes scans link hrefs for recognized EDR query-type
// path segments. Best effort: used only when a collection document does
// not declare a structured data_queries map.
func detectEDRQueryTypes(links []Link) []string {
	var found []string
	for _, qt := range edrQueryTypes {
		for _, link := range links {
			href := strings.TrimSuffix(link.Href, "/")
			if q := strings.IndexByte(href, '?'); q >= 0 {
				href = href[:q]
			}
			if strings.HasSuffix(href, "/"+qt) {
				found = append(found, qt)
				break
			}
		}
	}
	return found
}
