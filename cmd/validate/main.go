// Command validate checks a dashboard payload JSON against the dataset it
// was built from. It recomputes row counts, the year range, and the
// aggregate sums directly from the TSV and verifies the payload's
// invariants: coverage counts sum to resolvable-coordinate rows, the
// growth series is cumulative and gap-free, and the breakdown sums to the
// row total with "Other" last.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dataset data/imicroseq.tsv \
//	  -coords data/ProvinceCapitalCoords.csv \
//	  -payload data/data.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/microseq-dashboard/internal/domain"
	"github.com/couchcryptid/microseq-dashboard/internal/tabular"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetPath := flag.String("dataset", "", "path to the dataset TSV")
	coordsPath := flag.String("coords", "", "path to the province coordinate CSV (optional)")
	payloadPath := flag.String("payload", "", "path to the payload JSON to validate")
	flag.Parse()

	if *datasetPath == "" || *payloadPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*datasetPath, *coordsPath, *payloadPath); code != 0 {
		os.Exit(code)
	}
}

func run(datasetPath, coordsPath, payloadPath string) int {
	datasetText, err := os.ReadFile(datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading dataset: %v\n", err)
		return 1
	}
	rows := tabular.Parse(string(datasetText), tabular.Tab)

	var coords domain.ReferenceCoords
	if coordsPath != "" {
		coordsText, err := os.ReadFile(coordsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading coords: %v\n", err)
			return 1
		}
		coords = domain.BuildReferenceCoords(tabular.Parse(string(coordsText), tabular.Comma))
	}

	payloadData, err := os.ReadFile(payloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading payload: %v\n", err)
		return 1
	}
	var payload domain.Payload
	if err := json.Unmarshal(payloadData, &payload); err != nil {
		fmt.Fprintf(os.Stderr, "parsing payload: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkSummary(rows, payload),
		checkGrowth(rows, payload),
		checkBreakdown(rows, payload),
		checkCoverage(rows, coords, payload),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed (%d rows)\n", len(phases), len(rows))
	return 0
}

func checkSummary(rows []tabular.Record, payload domain.Payload) *phase {
	p := &phase{name: "summary cardinalities"}

	if payload.Summary.Records != len(rows) {
		p.errorf("records: payload %d, dataset %d", payload.Summary.Records, len(rows))
	}

	distinct := func(field string) int {
		set := make(map[string]struct{})
		for _, row := range rows {
			if v := row.Value(field); v != "" {
				set[v] = struct{}{}
			}
		}
		return len(set)
	}
	if got := distinct(domain.FieldSite); payload.Summary.Sites != got {
		p.errorf("sites: payload %d, dataset %d", payload.Summary.Sites, got)
	}
	if got := distinct(domain.FieldOrganism); payload.Summary.Organisms != got {
		p.errorf("organisms: payload %d, dataset %d", payload.Summary.Organisms, got)
	}
	if got := distinct(domain.FieldOrganization); payload.Summary.DataSources != got {
		p.errorf("dataSources: payload %d, dataset %d", payload.Summary.DataSources, got)
	}
	return p
}

func checkGrowth(rows []tabular.Record, payload domain.Payload) *phase {
	p := &phase{name: "growth series"}

	usableYears := 0
	for _, row := range rows {
		s := row.Value(domain.FieldStartDate)
		if len(s) >= 4 && allDigits(s[:4]) {
			usableYears++
		}
	}

	if len(payload.Growth) == 0 {
		if usableYears != 0 {
			p.errorf("empty growth series but %d rows carry a year", usableYears)
		}
		return p
	}

	last := payload.Growth[0]
	for _, point := range payload.Growth[1:] {
		if point.Year != last.Year+1 {
			p.errorf("year gap: %d follows %d", point.Year, last.Year)
		}
		if point.Records < last.Records {
			p.errorf("cumulative total decreased at %d: %d < %d", point.Year, point.Records, last.Records)
		}
		last = point
	}
	if last.Records != usableYears {
		p.errorf("final cumulative total %d, dataset has %d rows with a year", last.Records, usableYears)
	}

	if payload.Summary.TimeSpan.Start == nil || payload.Summary.TimeSpan.End == nil {
		p.errorf("timeSpan is null but growth series is non-empty")
	} else {
		if *payload.Summary.TimeSpan.Start != payload.Growth[0].Year {
			p.errorf("timeSpan.start %d, first growth year %d", *payload.Summary.TimeSpan.Start, payload.Growth[0].Year)
		}
		if *payload.Summary.TimeSpan.End != last.Year {
			p.errorf("timeSpan.end %d, last growth year %d", *payload.Summary.TimeSpan.End, last.Year)
		}
	}
	return p
}

func checkBreakdown(rows []tabular.Record, payload domain.Payload) *phase {
	p := &phase{name: "category breakdown"}

	sum := 0
	others := 0
	for i, entry := range payload.Breakdown {
		sum += entry.Value
		if strings.EqualFold(entry.Category, domain.OtherCategory) {
			others++
			if i != len(payload.Breakdown)-1 {
				p.errorf("%q at position %d, expected last", entry.Category, i)
			}
		}
	}
	if sum != len(rows) {
		p.errorf("breakdown sum %d, dataset %d rows", sum, len(rows))
	}
	if others > 1 {
		p.errorf("%d entries labeled %q, expected at most one", others, domain.OtherCategory)
	}
	return p
}

func checkCoverage(rows []tabular.Record, coords domain.ReferenceCoords, payload domain.Payload) *phase {
	p := &phase{name: "coverage points"}

	resolvable := 0
	for _, row := range rows {
		_, okLat := domain.ParseCoordinate(row[domain.FieldLatitude], domain.Latitude)
		_, okLon := domain.ParseCoordinate(row[domain.FieldLongitude], domain.Longitude)
		if okLat && okLon {
			resolvable++
			continue
		}
		if region := row.Value(domain.FieldRegion); region != "" {
			if _, ok := coords[region]; ok {
				resolvable++
			}
		}
	}

	sum := 0
	prev := -1
	for i, point := range payload.CoveragePoints {
		sum += point.Count
		if prev >= 0 && point.Count > prev {
			p.errorf("counts not descending at position %d", i)
		}
		prev = point.Count
	}
	if sum != resolvable {
		p.errorf("coverage counts sum %d, dataset has %d resolvable rows", sum, resolvable)
	}
	return p
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
