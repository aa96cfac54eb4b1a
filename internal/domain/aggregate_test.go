package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/microseq-dashboard/internal/tabular"
)

func rowWith(fields map[string]string) tabular.Record {
	rec := tabular.Record{}
	for k, v := range fields {
		rec[k] = v
	}
	return rec
}

func rowsWithDates(dates ...string) []tabular.Record {
	rows := make([]tabular.Record, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, rowWith(map[string]string{FieldStartDate: d}))
	}
	return rows
}

func TestAggregate_GrowthFillsGapYears(t *testing.T) {
	payload := Aggregate(rowsWithDates("2020-01-15", "2020-06-01", "2022-03-10"), nil, Options{})

	assert.Equal(t, []GrowthPoint{
		{Year: 2020, Records: 2},
		{Year: 2021, Records: 2},
		{Year: 2022, Records: 3},
	}, payload.Growth)

	require.NotNil(t, payload.Summary.TimeSpan.Start)
	require.NotNil(t, payload.Summary.TimeSpan.End)
	assert.Equal(t, 2020, *payload.Summary.TimeSpan.Start)
	assert.Equal(t, 2022, *payload.Summary.TimeSpan.End)
}

func TestAggregate_NoParseableYears(t *testing.T) {
	payload := Aggregate(rowsWithDates("", "soon", "n/a"), nil, Options{})

	assert.Empty(t, payload.Growth)
	assert.Nil(t, payload.Summary.TimeSpan.Start)
	assert.Nil(t, payload.Summary.TimeSpan.End)
	assert.Equal(t, 3, payload.Summary.Records)
}

func TestAggregate_YearOnlyDateCounts(t *testing.T) {
	payload := Aggregate(rowsWithDates("2021"), nil, Options{})

	assert.Equal(t, []GrowthPoint{{Year: 2021, Records: 1}}, payload.Growth)
	require.Len(t, payload.SampleFieldSpecRows, 1)
	require.NotNil(t, payload.SampleFieldSpecRows[0].Year)
	assert.Equal(t, 2021, *payload.SampleFieldSpecRows[0].Year)
	assert.Nil(t, payload.SampleFieldSpecRows[0].YearMonth)
}

func TestAggregate_SummaryCardinalities(t *testing.T) {
	rows := []tabular.Record{
		rowWith(map[string]string{FieldSite: "Plant A", FieldOrganism: "SARS-CoV-2", FieldOrganization: "PHU North"}),
		rowWith(map[string]string{FieldSite: "Plant A ", FieldOrganism: "Influenza A", FieldOrganization: "PHU North"}),
		rowWith(map[string]string{FieldSite: "Plant B", FieldOrganism: "", FieldOrganization: "   "}),
	}

	payload := Aggregate(rows, nil, Options{})

	assert.Equal(t, 3, payload.Summary.Records)
	assert.Equal(t, 2, payload.Summary.Sites) // "Plant A" trims to one value
	assert.Equal(t, 2, payload.Summary.Organisms)
	assert.Equal(t, 1, payload.Summary.DataSources)
}

func TestAggregate_BreakdownTopNWithOther(t *testing.T) {
	// 10 rows across 8 labels: a×3, b×1..h×1.
	rows := make([]tabular.Record, 0, 10)
	for i := 0; i < 3; i++ {
		rows = append(rows, rowWith(map[string]string{FieldEnvSite: "a"}))
	}
	for _, label := range []string{"b", "c", "d", "e", "f", "g", "h"} {
		rows = append(rows, rowWith(map[string]string{FieldEnvSite: label}))
	}

	payload := Aggregate(rows, nil, Options{BreakdownLimit: 6})

	require.Len(t, payload.Breakdown, 7) // 6 kept + Other

	sum := 0
	for _, e := range payload.Breakdown {
		sum += e.Value
	}
	assert.Equal(t, 10, sum)

	assert.Equal(t, BreakdownEntry{Category: "a", Value: 3}, payload.Breakdown[0])
	assert.Equal(t, OtherCategory, payload.Breakdown[6].Category)
	assert.Equal(t, 2, payload.Breakdown[6].Value)
}

func TestAggregate_BreakdownNoOverflowOmitsOther(t *testing.T) {
	rows := []tabular.Record{
		rowWith(map[string]string{FieldEnvSite: "wastewater"}),
		rowWith(map[string]string{FieldEnvSite: "soil"}),
	}

	payload := Aggregate(rows, nil, Options{})

	assert.Len(t, payload.Breakdown, 2)
	for _, e := range payload.Breakdown {
		assert.NotEqual(t, OtherCategory, e.Category)
	}
}

func TestAggregate_BreakdownBlankIsUnknown(t *testing.T) {
	payload := Aggregate([]tabular.Record{rowWith(map[string]string{FieldEnvSite: "  "})}, nil, Options{})

	require.Len(t, payload.Breakdown, 1)
	assert.Equal(t, UnknownCategory, payload.Breakdown[0].Category)
}

func TestAggregate_BreakdownTrimsBracketAnnotations(t *testing.T) {
	rows := []tabular.Record{
		rowWith(map[string]string{FieldEnvSite: "wastewater [ENVO:00002001]"}),
		rowWith(map[string]string{FieldEnvSite: "wastewater"}),
	}

	payload := Aggregate(rows, nil, Options{})

	require.Len(t, payload.Breakdown, 1)
	assert.Equal(t, BreakdownEntry{Category: "wastewater", Value: 2}, payload.Breakdown[0])
}

func TestAggregate_BreakdownFieldConfigurable(t *testing.T) {
	rows := []tabular.Record{
		rowWith(map[string]string{FieldAssayType: "qPCR", FieldEnvSite: "soil"}),
		rowWith(map[string]string{FieldAssayType: "qPCR", FieldEnvSite: "air"}),
		rowWith(map[string]string{FieldAssayType: "WGS", FieldEnvSite: "air"}),
	}

	payload := Aggregate(rows, nil, Options{BreakdownField: FieldAssayType, BreakdownLimit: 6})

	require.Len(t, payload.Breakdown, 2)
	assert.Equal(t, BreakdownEntry{Category: "qPCR", Value: 2}, payload.Breakdown[0])
	assert.Equal(t, BreakdownEntry{Category: "WGS", Value: 1}, payload.Breakdown[1])
}

func TestAggregate_CoverageExplicitCoordinates(t *testing.T) {
	rows := []tabular.Record{
		rowWith(map[string]string{FieldLatitude: "43.82 N", FieldLongitude: "79.03 W"}),
		rowWith(map[string]string{FieldLatitude: "43.82", FieldLongitude: "-79.03"}),
	}

	payload := Aggregate(rows, nil, Options{})

	require.Len(t, payload.CoveragePoints, 1)
	assert.Equal(t, CoveragePoint{Latitude: 43.82, Longitude: -79.03, Count: 2}, payload.CoveragePoints[0])
}

func TestAggregate_CoverageFallbackToRegion(t *testing.T) {
	coords := ReferenceCoords{"Ontario": {Lat: 43.65, Lon: -79.38}}
	rows := []tabular.Record{
		// Latitude present but longitude missing still triggers fallback.
		rowWith(map[string]string{FieldLatitude: "43.82", FieldLongitude: "--", FieldRegion: "Ontario"}),
		rowWith(map[string]string{FieldRegion: "Ontario"}),
		rowWith(map[string]string{FieldRegion: "Atlantis"}),
		rowWith(map[string]string{}),
	}

	payload := Aggregate(rows, coords, Options{})

	require.Len(t, payload.CoveragePoints, 1)
	assert.Equal(t, CoveragePoint{Latitude: 43.65, Longitude: -79.38, Count: 2}, payload.CoveragePoints[0])
}

func TestAggregate_CoverageCountsSumToResolvableRows(t *testing.T) {
	coords := ReferenceCoords{"Ontario": {Lat: 43.65, Lon: -79.38}}
	rows := []tabular.Record{
		rowWith(map[string]string{FieldLatitude: "50", FieldLongitude: "-100"}),
		rowWith(map[string]string{FieldLatitude: "50", FieldLongitude: "-100"}),
		rowWith(map[string]string{FieldRegion: "Ontario"}),
		rowWith(map[string]string{FieldLatitude: "95", FieldLongitude: "-100"}), // out of range, no region
	}

	payload := Aggregate(rows, coords, Options{})

	sum := 0
	for _, p := range payload.CoveragePoints {
		sum += p.Count
	}
	assert.Equal(t, 3, sum)
}

func TestAggregate_CoverageSortedByCountDescending(t *testing.T) {
	rows := []tabular.Record{
		rowWith(map[string]string{FieldLatitude: "1", FieldLongitude: "1"}),
		rowWith(map[string]string{FieldLatitude: "2", FieldLongitude: "2"}),
		rowWith(map[string]string{FieldLatitude: "2", FieldLongitude: "2"}),
	}

	payload := Aggregate(rows, nil, Options{})

	require.Len(t, payload.CoveragePoints, 2)
	assert.Equal(t, 2, payload.CoveragePoints[0].Count)
	assert.Equal(t, 2.0, payload.CoveragePoints[0].Latitude)
}

func TestAggregate_SampleRowProjection(t *testing.T) {
	rows := []tabular.Record{
		rowWith(map[string]string{
			FieldOrganism:  "SARS-CoV-2 [NCBITaxon:2697049]",
			FieldPurpose:   "surveillance",
			FieldRegion:    "Ontario",
			FieldEnvSite:   "wastewater [ENVO:00002001]",
			FieldDevice:    "autosampler",
			FieldAssayType: "qPCR",
			FieldStartDate: "2023-05-17",
		}),
	}

	payload := Aggregate(rows, nil, Options{})

	require.Len(t, payload.SampleFieldSpecRows, 1)
	row := payload.SampleFieldSpecRows[0]
	assert.Equal(t, "SARS-CoV-2", row.Organism)
	assert.Equal(t, "wastewater", row.EnvSite)
	assert.Equal(t, "surveillance", row.Purpose)
	require.NotNil(t, row.Year)
	assert.Equal(t, 2023, *row.Year)
	require.NotNil(t, row.YearMonth)
	assert.Equal(t, "2023-05", *row.YearMonth)
}

func TestAggregate_SampleRowMissingFieldsEmpty(t *testing.T) {
	payload := Aggregate([]tabular.Record{rowWith(map[string]string{})}, nil, Options{})

	require.Len(t, payload.SampleFieldSpecRows, 1)
	row := payload.SampleFieldSpecRows[0]
	assert.Equal(t, "", row.Organism)
	assert.Nil(t, row.Year)
	assert.Nil(t, row.YearMonth)
}

func TestAggregate_FieldsAndAxisOptions(t *testing.T) {
	payload := Aggregate(nil, nil, Options{})

	assert.Equal(t, []string{"All Records"}, payload.Fields)
	require.Len(t, payload.AxisOptions, 8)
	assert.Equal(t, AxisOption{Value: FieldOrganism, Label: FieldOrganism}, payload.AxisOptions[0])
	assert.Equal(t, AxisOption{Value: "Year-Month", Label: "Year-Month"}, payload.AxisOptions[7])
}

func TestAggregate_Idempotent(t *testing.T) {
	// A spread of rows exercising every aggregate, run twice: the payloads
	// must match structurally and serialize byte-identically.
	coords := ReferenceCoords{"Ontario": {Lat: 43.65, Lon: -79.38}}
	rows := make([]tabular.Record, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, rowWith(map[string]string{
			FieldSite:      fmt.Sprintf("site-%d", i%7),
			FieldOrganism:  fmt.Sprintf("organism-%d", i%5),
			FieldEnvSite:   fmt.Sprintf("category-%d", i%11),
			FieldLatitude:  fmt.Sprintf("%d.5 N", 40+i%4),
			FieldLongitude: fmt.Sprintf("%d.25 W", 70+i%3),
			FieldRegion:    "Ontario",
			FieldStartDate: fmt.Sprintf("20%02d-0%d-01", 18+i%6, 1+i%9),
		}))
	}

	first := Aggregate(rows, coords, Options{})
	second := Aggregate(rows, coords, Options{})

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("payloads differ (-first +second):\n%s", diff)
	}

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestTrimBrackets(t *testing.T) {
	assert.Equal(t, "wastewater", TrimBrackets("wastewater [ENVO:00002001]"))
	assert.Equal(t, "a  b", TrimBrackets("a [x] b [y]")) // interior whitespace kept
	assert.Equal(t, "c]", TrimBrackets("[a [b] c]"))     // nested spans are not re-scanned
	assert.Equal(t, "", TrimBrackets("   "))
	assert.Equal(t, "plain", TrimBrackets("plain"))
	assert.Equal(t, "left [unclosed", TrimBrackets("left [unclosed"))
}
