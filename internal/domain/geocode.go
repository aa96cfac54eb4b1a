package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// CoordinateKind selects the range check applied by ParseCoordinate.
type CoordinateKind int

const (
	Latitude  CoordinateKind = iota // valid range [-90, 90]
	Longitude                       // valid range [-180, 180]
)

// coordinateRe matches a leading signed decimal optionally followed by a
// hemisphere letter, e.g. "43.82 N" or "-79.03".
var coordinateRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*([NSEWnsew])?`)

// ParseCoordinate converts a free-form coordinate string into signed
// decimal degrees. The sentinels "--" and any value containing
// "not provided" (case-insensitive), a missing leading number, and
// out-of-range values all report ok=false. It never fails on malformed
// input.
func ParseCoordinate(raw string, kind CoordinateKind) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "--" || strings.Contains(strings.ToLower(s), "not provided") {
		return 0, false
	}

	m := coordinateRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToUpper(m[2]) {
	case "S", "W":
		value = -abs(value)
	case "N", "E":
		value = abs(value)
	}

	limit := 90.0
	if kind == Longitude {
		limit = 180.0
	}
	if value < -limit || value > limit {
		return 0, false
	}
	return value, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
