/*
Package boundary reads the region contour lines are clipped to.

Boundaries are stored as WGS84 lon/lat multipolygons and can be read from
Osmosis poly-files, GeoJSON files or created from a bounding box.
*/
package boundary

import (
	"path/filepath"
	"strings"

	"github.com/omniscale/contour-osm/proj"
	"github.com/paulmach/orb"
)

type Boundary struct {
	Name     string
	polygons orb.MultiPolygon
}

func newBoundary(name string, polygons orb.MultiPolygon) *Boundary {
	for _, poly := range polygons {
		for i, ring := range poly {
			poly[i] = closeRing(ring)
		}
	}
	return &Boundary{Name: name, polygons: polygons}
}

func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// FromBoundingBox returns a rectangular boundary named "bbox".
func FromBoundingBox(minLon, maxLon, minLat, maxLat float64) *Boundary {
	ring := orb.Ring{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}
	return newBoundary("bbox", orb.MultiPolygon{orb.Polygon{ring}})
}

// Load reads a GeoJSON file if path ends with .geojson or .json, and a
// poly-file otherwise.
func Load(path string) (*Boundary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return FromGeoJSON(path)
	}
	return FromFile(path)
}

// Polygons returns a copy of the WGS84 polygons.
func (b *Boundary) Polygons() orb.MultiPolygon {
	return orb.Clone(b.polygons).(orb.MultiPolygon)
}

// Bound returns the WGS84 bounding box.
func (b *Boundary) Bound() orb.Bound {
	return b.polygons.Bound()
}

// Geometry returns the polygons reprojected into target.
func (b *Boundary) Geometry(target proj.SRS) (orb.MultiPolygon, error) {
	r, err := proj.NewReprojector(proj.WGS84, target, 0)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	g, err := r.Reproject(b.polygons)
	if err != nil {
		return nil, err
	}
	return g.(orb.MultiPolygon), nil
}
