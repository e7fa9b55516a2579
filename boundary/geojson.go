package boundary

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// FromGeoJSON reads all (Multi)Polygons of a GeoJSON geometry, feature or
// feature collection. Coordinates need to be WGS84 lon/lat.
func FromGeoJSON(path string) (*Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening geojson")
	}
	polygons, err := parseGeoJSON(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newBoundary(name, polygons), nil
}

func parseGeoJSON(data []byte) (orb.MultiPolygon, error) {
	var geoms []orb.Geometry

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && fc.Type == "FeatureCollection" {
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(data); err == nil && f.Type == "Feature" {
		geoms = append(geoms, f.Geometry)
	} else {
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, g.Geometry())
	}

	var polygons orb.MultiPolygon
	for _, g := range geoms {
		switch g := g.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		case nil:
		default:
			return nil, errors.Errorf("unsupported geometry type %s, expected (Multi)Polygon", g.GeoJSONType())
		}
	}
	if len(polygons) == 0 {
		return nil, errors.New("no polygons found")
	}
	return polygons, nil
}
