package pipeline

import (
	"math"
	"strconv"

	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/sndb"
)

// OccupationType tags every occupation taken from the SNDB occupation table
const OccupationType = "Beruf"

// BiographyTables holds the SNDB rows used to enrich selected persons
type BiographyTables struct {
	PlaceLinks  []sndb.PlaceLink
	PlaceNames  []sndb.PlaceName
	PlaceCoords []sndb.PlaceCoord
	Occupations []sndb.Occupation
}

// EnrichStats counts what EnrichBiography attached or had to skip
type EnrichStats struct {
	Places          int
	Occupations     int
	UnresolvedLinks int // place links without a main name or valid coordinates
	BadCoords       int // coordinate rows that do not parse or lie out of range
}

type coord struct{ lat, lon float64 }

// EnrichBiography attaches places and occupations. A place is attached only
// when its id resolves to both a main name and a valid coordinate pair.
// Persons keep their place links in table order; duplicates are preserved.
func EnrichBiography(st *State, t BiographyTables) EnrichStats {
	var stats EnrichStats

	names := make(map[string]string, len(t.PlaceNames))
	for _, n := range t.PlaceNames {
		if n.Main && n.Name != "" {
			names[n.ID] = n.Name
		}
	}

	coords := make(map[string]coord, len(t.PlaceCoords))
	for _, c := range t.PlaceCoords {
		if c.Lat == "" || c.Lon == "" {
			continue
		}
		lat, lon, ok := parseCoord(c.Lat, c.Lon)
		if !ok {
			stats.BadCoords++
			continue
		}
		coords[c.ID] = coord{lat: lat, lon: lon}
	}

	for _, link := range t.PlaceLinks {
		p, ok := st.Person(link.PersonID)
		if !ok || link.PlaceID == "" {
			continue
		}
		name, hasName := names[link.PlaceID]
		c, hasCoord := coords[link.PlaceID]
		if !hasName || !hasCoord {
			stats.UnresolvedLinks++
			continue
		}
		p.Places = append(p.Places, model.PlaceRef{Name: name, Lat: c.lat, Lon: c.lon, Type: link.Kind})
		stats.Places++
	}

	for _, o := range t.Occupations {
		p, ok := st.Person(o.PersonID)
		if !ok || o.Label == "" {
			continue
		}
		p.Occupations = append(p.Occupations, model.Occupation{Name: o.Label, Type: OccupationType})
		stats.Occupations++
	}
	return stats
}

// parseCoord accepts finite decimal degrees within the WGS84 bounds
func parseCoord(latText, lonText string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(lonText, 64)
	if err != nil {
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}
