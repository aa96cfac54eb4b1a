package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/microseq-dashboard/internal/tabular"
)

// Defaults for the categorical breakdown. Earlier dashboard revisions
// grouped by assay type with a limit of 6; both are configuration now.
const (
	DefaultBreakdownField = FieldEnvSite
	DefaultBreakdownLimit = 8
)

// OtherCategory is the overflow bucket label for categories outside the
// top N. UnknownCategory stands in for rows with a blank breakdown field.
const (
	OtherCategory   = "Other"
	UnknownCategory = "Unknown"
)

var (
	// bracketRe matches one ontology annotation span, e.g. "[ENVO:00002001]".
	bracketRe = regexp.MustCompile(`\[[^\]]*\]`)

	yearRe      = regexp.MustCompile(`^(\d{4})`)
	yearMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})`)
)

// Options configure an aggregation run. Zero values select the defaults.
type Options struct {
	// BreakdownField is the dataset column grouped into the categorical
	// breakdown.
	BreakdownField string
	// BreakdownLimit is how many categories keep their own label before
	// the rest collapse into "Other".
	BreakdownLimit int
}

func (o Options) withDefaults() Options {
	if o.BreakdownField == "" {
		o.BreakdownField = DefaultBreakdownField
	}
	if o.BreakdownLimit <= 0 {
		o.BreakdownLimit = DefaultBreakdownLimit
	}
	return o
}

// TrimBrackets removes every "[...]" annotation span from a value and
// trims surrounding whitespace. An unclosed bracket is left in place.
func TrimBrackets(s string) string {
	out := strings.TrimSpace(s)
	for strings.Contains(out, "[") {
		next := strings.TrimSpace(bracketRe.ReplaceAllString(out, ""))
		if next == out {
			break
		}
		out = next
	}
	return out
}

// Aggregate transforms parsed dataset rows into the dashboard payload in
// one pass plus derived-series construction. Malformed or missing fields
// never fail the run; the affected row is simply excluded from the
// aggregates those fields feed. A nil or empty coords lookup disables
// coordinate fallback without affecting rows that carry explicit
// coordinates.
func Aggregate(rows []tabular.Record, coords ReferenceCoords, opts Options) Payload {
	opts = opts.withDefaults()

	sites := make(map[string]struct{})
	organisms := make(map[string]struct{})
	organizations := make(map[string]struct{})
	coordCounts := make(map[Geo]int)
	yearCounts := make(map[int]int)
	categoryCounts := make(map[string]int)
	sampleRows := make([]SampleRow, 0, len(rows))

	var minYear, maxYear int
	haveYear := false

	for _, row := range rows {
		if site := row.Value(FieldSite); site != "" {
			sites[site] = struct{}{}
		}
		if organism := row.Value(FieldOrganism); organism != "" {
			organisms[organism] = struct{}{}
		}
		if org := row.Value(FieldOrganization); org != "" {
			organizations[org] = struct{}{}
		}

		if geo, ok := resolveCoordinate(row, coords); ok {
			coordCounts[geo]++
		}

		date := row.Value(FieldStartDate)
		if year, ok := parseYear(date); ok {
			if !haveYear || year < minYear {
				minYear = year
			}
			if !haveYear || year > maxYear {
				maxYear = year
			}
			haveYear = true
			yearCounts[year]++
		}

		category := TrimBrackets(row[opts.BreakdownField])
		if category == "" {
			category = UnknownCategory
		}
		categoryCounts[category]++

		sampleRows = append(sampleRows, projectRow(row, date))
	}

	summary := Summary{
		Records:     len(rows),
		Sites:       len(sites),
		Organisms:   len(organisms),
		DataSources: len(organizations),
	}
	if haveYear {
		start, end := minYear, maxYear
		summary.TimeSpan = TimeSpan{Start: &start, End: &end}
	}

	return Payload{
		Summary:             summary,
		Growth:              buildGrowth(yearCounts, minYear, maxYear, haveYear),
		Breakdown:           buildBreakdown(categoryCounts, opts.BreakdownLimit),
		CoveragePoints:      buildCoveragePoints(coordCounts),
		Fields:              []string{"All Records"},
		SampleFieldSpecRows: sampleRows,
		AxisOptions:         axisOptions(),
	}
}

// resolveCoordinate parses the row's explicit coordinates, falling back to
// the region's reference pair when either one is missing or unparseable.
func resolveCoordinate(row tabular.Record, coords ReferenceCoords) (Geo, bool) {
	lat, okLat := ParseCoordinate(row[FieldLatitude], Latitude)
	lon, okLon := ParseCoordinate(row[FieldLongitude], Longitude)
	if okLat && okLon {
		return Geo{Lat: lat, Lon: lon}, true
	}
	region := row.Value(FieldRegion)
	if region == "" {
		return Geo{}, false
	}
	geo, ok := coords[region]
	return geo, ok
}

func parseYear(date string) (int, bool) {
	m := yearRe.FindStringSubmatch(date)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

func parseYearMonth(date string) (string, bool) {
	m := yearMonthRe.FindStringSubmatch(date)
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2], true
}

// projectRow builds the denormalized pivot row for one dataset record.
func projectRow(row tabular.Record, date string) SampleRow {
	s := SampleRow{
		Organism:  TrimBrackets(row[FieldOrganism]),
		Purpose:   TrimBrackets(row[FieldPurpose]),
		Region:    TrimBrackets(row[FieldRegion]),
		EnvSite:   TrimBrackets(row[FieldEnvSite]),
		Device:    TrimBrackets(row[FieldDevice]),
		AssayType: TrimBrackets(row[FieldAssayType]),
	}
	if year, ok := parseYear(date); ok {
		s.Year = &year
	}
	if ym, ok := parseYearMonth(date); ok {
		s.YearMonth = &ym
	}
	return s
}

// buildGrowth derives the cumulative growth series, one point per year
// from min to max inclusive with gap years carrying the running total.
func buildGrowth(yearCounts map[int]int, minYear, maxYear int, haveYear bool) []GrowthPoint {
	if !haveYear {
		return []GrowthPoint{}
	}
	growth := make([]GrowthPoint, 0, maxYear-minYear+1)
	cumulative := 0
	for year := minYear; year <= maxYear; year++ {
		cumulative += yearCounts[year]
		growth = append(growth, GrowthPoint{Year: year, Records: cumulative})
	}
	return growth
}

// buildBreakdown ranks categories by frequency, keeps the top limit labels,
// and folds the remainder into "Other". "Other" always sorts last; the
// rest sort by count descending with label as the tie-break.
func buildBreakdown(categoryCounts map[string]int, limit int) []BreakdownEntry {
	ranked := make([]BreakdownEntry, 0, len(categoryCounts))
	for category, count := range categoryCounts {
		ranked = append(ranked, BreakdownEntry{Category: category, Value: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Category < ranked[j].Category
	})

	top := make(map[string]struct{}, limit)
	for i, e := range ranked {
		if i >= limit {
			break
		}
		top[e.Category] = struct{}{}
	}

	folded := make(map[string]int, limit+1)
	for category, count := range categoryCounts {
		if _, ok := top[category]; !ok {
			category = OtherCategory
		}
		folded[category] += count
	}

	entries := make([]BreakdownEntry, 0, len(folded))
	for category, count := range folded {
		entries = append(entries, BreakdownEntry{Category: category, Value: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		iOther := strings.EqualFold(entries[i].Category, OtherCategory)
		jOther := strings.EqualFold(entries[j].Category, OtherCategory)
		if iOther != jOther {
			return jOther
		}
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Category < entries[j].Category
	})
	return entries
}

// buildCoveragePoints flattens the coordinate buckets, sorted by count
// descending with latitude then longitude as tie-breaks.
func buildCoveragePoints(coordCounts map[Geo]int) []CoveragePoint {
	points := make([]CoveragePoint, 0, len(coordCounts))
	for geo, count := range coordCounts {
		points = append(points, CoveragePoint{Latitude: geo.Lat, Longitude: geo.Lon, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Count != points[j].Count {
			return points[i].Count > points[j].Count
		}
		if points[i].Latitude != points[j].Latitude {
			return points[i].Latitude < points[j].Latitude
		}
		return points[i].Longitude < points[j].Longitude
	})
	return points
}

// axisOptions lists the pivot axes the frontend offers. The set is fixed:
// the six projected columns plus the two derived date axes.
func axisOptions() []AxisOption {
	values := []string{
		FieldOrganism,
		FieldPurpose,
		FieldRegion,
		FieldEnvSite,
		FieldDevice,
		FieldAssayType,
		"Year",
		"Year-Month",
	}
	options := make([]AxisOption, 0, len(values))
	for _, v := range values {
		options = append(options, AxisOption{Value: v, Label: v})
	}
	return options
}
