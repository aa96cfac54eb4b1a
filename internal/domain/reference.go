package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/microseq-dashboard/internal/tabular"
)

// BuildReferenceCoords builds the region-name → fallback-coordinate lookup
// from parsed reference CSV records. Rows with a blank name or a
// non-finite coordinate are skipped; a repeated name overwrites the
// earlier entry. Names carrying a bracket annotation ("Ontario [CA-ON]")
// are additionally registered under their short form ("Ontario") so both
// spellings resolve.
func BuildReferenceCoords(records []tabular.Record) ReferenceCoords {
	coords := make(ReferenceCoords, len(records))
	for _, rec := range records {
		name := rec.Value(RefFieldName)
		if name == "" {
			continue
		}
		lat, okLat := parseFinite(rec.Value(RefFieldLatitude))
		lon, okLon := parseFinite(rec.Value(RefFieldLongitude))
		if !okLat || !okLon {
			continue
		}
		coords[name] = Geo{Lat: lat, Lon: lon}

		short := strings.TrimSpace(strings.SplitN(name, " [", 2)[0])
		if short != "" && short != name {
			coords[short] = Geo{Lat: lat, Lon: lon}
		}
	}
	return coords
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
