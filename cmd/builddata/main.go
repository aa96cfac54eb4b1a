// Command builddata builds the dashboard payload offline from local files.
// It reads the dataset TSV (optionally gzip-compressed) and the province
// coordinate CSV, runs the same aggregation as the service, and writes the
// payload as plain JSON plus a gzip snapshot the service can serve as a
// fallback.
//
// Usage:
//
//	go run ./cmd/builddata \
//	  -dataset data/imicroseq.tsv.gz \
//	  -coords data/ProvinceCapitalCoords.csv \
//	  -out-json data/data.json \
//	  -out-gzip public/data/portalData.json.gz
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/microseq-dashboard/internal/adapter/snapshot"
	"github.com/couchcryptid/microseq-dashboard/internal/domain"
	"github.com/couchcryptid/microseq-dashboard/internal/tabular"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	datasetPath := flag.String("dataset", "", "path to the dataset TSV (\".gz\" accepted)")
	coordsPath := flag.String("coords", "", "path to the province coordinate CSV (optional)")
	outJSON := flag.String("out-json", "", "output path for the payload JSON")
	outGzip := flag.String("out-gzip", "", "output path for the gzip payload snapshot (optional)")
	breakdownField := flag.String("breakdown-field", domain.DefaultBreakdownField, "dataset column for the categorical breakdown")
	breakdownLimit := flag.Int("breakdown-limit", domain.DefaultBreakdownLimit, "categories kept before folding into Other")
	flag.Parse()

	if *datasetPath == "" || *outJSON == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -dataset, -out-json")
	}

	datasetText, err := readMaybeGzip(*datasetPath)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}
	rows := tabular.Parse(datasetText, tabular.Tab)

	var coords domain.ReferenceCoords
	if *coordsPath != "" {
		coordsText, err := readMaybeGzip(*coordsPath)
		if err != nil {
			return fmt.Errorf("reading coords: %w", err)
		}
		coords = domain.BuildReferenceCoords(tabular.Parse(coordsText, tabular.Comma))
		log.Printf("reference coordinates: %d regions", len(coords))
	}

	payload := domain.Aggregate(rows, coords, domain.Options{
		BreakdownField: *breakdownField,
		BreakdownLimit: *breakdownLimit,
	})

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	if err := os.WriteFile(*outJSON, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *outJSON, err)
	}
	log.Printf("wrote %s (%d records)", *outJSON, payload.Summary.Records)

	if *outGzip != "" {
		if err := snapshot.NewStore(*outGzip).Write(data); err != nil {
			return err
		}
		log.Printf("wrote %s (snapshot)", *outGzip)
	}
	return nil
}

func readMaybeGzip(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gz.Close()
		reader = gz
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
