// Package domain models the environmental microbial sequencing dataset
// behind the public dashboard and aggregates it into the dashboard payload.
//
// # Data Source
//
// The primary dataset is a tab-separated export of environmental sequencing
// sample records. The first line carries column headers; columns are
// referenced by name, including:
//
//	geo loc name (site)                          sampling site name
//	organism                                     target organism
//	sample collected by organisation name        contributing organization
//	geo loc latitude / geo loc longitude         explicit coordinates
//	geo loc name (state/province/territory)      region, used for fallback
//	sample collection start date                 "YYYY", "YYYY-MM", or "YYYY-MM-DD"
//	environmental site                           categorical, default breakdown field
//	assay type, purpose of sampling,
//	collection device                            passed through to the projection
//
// The reference input is a comma-separated file of province capital
// coordinates with columns Province, Latitude, Longitude. It supplies a
// fallback coordinate for rows whose explicit latitude or longitude is
// missing or unparseable.
//
// # Field Conventions
//
// Coordinate format:
//
//	"<decimal>" or "<decimal> <hemisphere>"  →  e.g. "43.82 N", "79.03 W".
//	S and W force the value negative, N and E positive. The sentinels "--"
//	and any value containing "not provided" (case-insensitive) mean absent.
//	Latitude outside [-90, 90] and longitude outside [-180, 180] are
//	rejected as absent rather than clamped.
//
// Bracket annotations:
//
//	Controlled-vocabulary values carry ontology IDs in square brackets,
//	e.g. "wastewater [ENVO:00002001]". Every "[...]" span is removed
//	before a value is used as a category or projected field.
//
// Dates:
//
//	Only the leading four digits (year) and, when present, the leading
//	"YYYY-MM" prefix are used. Anything else in the date field is ignored.
//
// # Aggregation
//
// [Aggregate] performs one pass over the parsed rows producing summary
// cardinalities, a cumulative per-year growth series (gaps filled with the
// running total), a top-N categorical breakdown with a trailing "Other"
// bucket, a coordinate density list, and a denormalized projection for
// ad-hoc pivoting. Malformed fields never fail the pass; a row simply
// does not contribute to the aggregates its bad fields would have fed.
// Output ordering is fully deterministic so identical input produces a
// byte-identical payload.
package domain
