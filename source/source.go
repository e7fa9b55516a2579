/*
Package source reads contour features from files and databases.

Files are read with GDAL/OGR and clipped with GEOS while reading. PostGIS
tables are queried with lib/pq and the clip is done by the database.
*/
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/omniscale/contour-osm/boundary"
	"github.com/omniscale/contour-osm/geom"
	"github.com/omniscale/contour-osm/proj"
)

type Options struct {
	// Layer is the layer or table name, first layer if empty.
	Layer string
	// FeatureField is the preferred elevation field.
	FeatureField string
	// GeometryField is the preferred geometry field.
	GeometryField string
	// SRS of the stored geometries. EPSG 0 uses the SRID of the layer.
	SRS proj.SRS
}

// Source is an opened layer with resolved elevation and geometry fields.
type Source interface {
	// Fetch returns all features, clipped to b if b is not nil.
	Fetch(ctx context.Context, b *boundary.Boundary) (geom.FeatureIterator, error)
	// SRID returns the EPSG code of the layer, 0 if unknown.
	SRID() int
	// FeatureCount returns the number of features the last Fetch
	// selects, -1 if it is not known without reading them.
	FeatureCount() int64
	Close() error
	String() string
}

// ConfigurationError is returned if the layer or one of the fields
// could not be resolved.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{fmt.Sprintf(format, args...)}
}

// IsPostGIS returns true for PostgreSQL connection strings.
func IsPostGIS(locator string) bool {
	for _, prefix := range []string{"PG:", "postgres://", "postgresql://", "postgis://"} {
		if strings.HasPrefix(locator, prefix) {
			return true
		}
	}
	return false
}

// Open opens the datasource locator. PostgreSQL connection strings
// (PG:dbname=..., postgres://...) return a source that clips in the
// database, everything else is opened with OGR and clipped locally.
func Open(locator string, opts Options) (Source, error) {
	if locator == "" {
		return nil, configErrorf("no datasource given")
	}
	if IsPostGIS(locator) {
		return openPostGIS(locator, opts)
	}
	return openOGR(locator, opts)
}

// resolveSRS returns srs with the layer SRID if srs has no EPSG code.
func resolveSRS(srs proj.SRS, layerSRID int) proj.SRS {
	if srs.EPSG != 0 {
		return srs
	}
	if layerSRID != 0 {
		srs.EPSG = layerSRID
		return srs
	}
	srs.EPSG = proj.WGS84.EPSG
	return srs
}

type fields struct {
	layer   string
	feature string
	geom    string
}

func (f fields) String() string {
	return fmt.Sprintf("layer %s (elevation: %s, geometry: %s)", f.layer, f.feature, f.geom)
}
