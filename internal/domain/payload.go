package domain

// Dataset column names referenced by the aggregation. The upstream export
// uses lower-case, space-separated headers verbatim.
const (
	FieldSite         = "geo loc name (site)"
	FieldOrganism     = "organism"
	FieldOrganization = "sample collected by organisation name"
	FieldLatitude     = "geo loc latitude"
	FieldLongitude    = "geo loc longitude"
	FieldRegion       = "geo loc name (state/province/territory)"
	FieldStartDate    = "sample collection start date"
	FieldEnvSite      = "environmental site"
	FieldAssayType    = "assay type"
	FieldPurpose      = "purpose of sampling"
	FieldDevice       = "collection device"
)

// Reference CSV column names.
const (
	RefFieldName      = "Province"
	RefFieldLatitude  = "Latitude"
	RefFieldLongitude = "Longitude"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64
	Lon float64
}

// ReferenceCoords maps a region name to its fallback coordinate.
type ReferenceCoords map[string]Geo

// TimeSpan is the inclusive year range observed in the dataset.
// Both ends are nil when no row carried a parseable year.
type TimeSpan struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
}

// Summary holds the dataset-wide cardinalities.
type Summary struct {
	Records     int      `json:"records"`
	Sites       int      `json:"sites"`
	TimeSpan    TimeSpan `json:"timeSpan"`
	Organisms   int      `json:"organisms"`
	DataSources int      `json:"dataSources"`
}

// GrowthPoint is one year of the cumulative growth series.
type GrowthPoint struct {
	Year    int `json:"year"`
	Records int `json:"records"`
}

// BreakdownEntry is one category of the top-N breakdown.
type BreakdownEntry struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

// CoveragePoint is a map marker: how many rows resolved to this exact pair.
type CoveragePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
}

// SampleRow is the denormalized projection of one dataset row, used by the
// frontend for ad-hoc pivoting. Year and YearMonth are derived from the
// collection start date and nil when it has no parseable prefix.
type SampleRow struct {
	Organism  string  `json:"organism"`
	Purpose   string  `json:"purpose of sampling"`
	Region    string  `json:"geo loc name (state/province/territory)"`
	EnvSite   string  `json:"environmental site"`
	Device    string  `json:"collection device"`
	AssayType string  `json:"assay type"`
	Year      *int    `json:"Year"`
	YearMonth *string `json:"Year-Month"`
}

// AxisOption describes one pivot axis the frontend may select.
type AxisOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Payload is the complete dashboard API response. It is constructed once
// per aggregation run and never mutated afterwards.
type Payload struct {
	Summary             Summary          `json:"summary"`
	Growth              []GrowthPoint    `json:"growth"`
	Breakdown           []BreakdownEntry `json:"breakdown"`
	CoveragePoints      []CoveragePoint  `json:"coveragePoints"`
	Fields              []string         `json:"fields"`
	SampleFieldSpecRows []SampleRow      `json:"sampleFieldSpecRows"`
	AxisOptions         []AxisOption     `json:"axisOptions"`
}
