package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/microseq-dashboard/internal/tabular"
)

func refRecord(name, lat, lon string) tabular.Record {
	return tabular.Record{
		RefFieldName:      name,
		RefFieldLatitude:  lat,
		RefFieldLongitude: lon,
	}
}

func TestBuildReferenceCoords(t *testing.T) {
	coords := BuildReferenceCoords([]tabular.Record{
		refRecord("Ontario", "43.65", "-79.38"),
		refRecord("Quebec", "46.81", "-71.21"),
	})

	require.Len(t, coords, 2)
	assert.Equal(t, Geo{Lat: 43.65, Lon: -79.38}, coords["Ontario"])
}

func TestBuildReferenceCoords_SkipsBlankName(t *testing.T) {
	coords := BuildReferenceCoords([]tabular.Record{
		refRecord("", "43.65", "-79.38"),
		refRecord("   ", "43.65", "-79.38"),
	})

	assert.Empty(t, coords)
}

func TestBuildReferenceCoords_SkipsUnparseableCoordinate(t *testing.T) {
	coords := BuildReferenceCoords([]tabular.Record{
		refRecord("Ontario", "not a number", "-79.38"),
		refRecord("Quebec", "46.81", ""),
		refRecord("Yukon", "NaN", "-135.05"),
	})

	assert.Empty(t, coords)
}

func TestBuildReferenceCoords_LastWriteWins(t *testing.T) {
	coords := BuildReferenceCoords([]tabular.Record{
		refRecord("Ontario", "1", "2"),
		refRecord("Ontario", "43.65", "-79.38"),
	})

	assert.Equal(t, Geo{Lat: 43.65, Lon: -79.38}, coords["Ontario"])
}

func TestBuildReferenceCoords_ShortNameAlias(t *testing.T) {
	coords := BuildReferenceCoords([]tabular.Record{
		refRecord("Ontario [CA-ON]", "43.65", "-79.38"),
	})

	require.Len(t, coords, 2)
	assert.Equal(t, coords["Ontario [CA-ON]"], coords["Ontario"])
}
