package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
*/
import "C"

import "github.com/omniscale/contour-osm/log"

// predicate converts the char result of GEOS predicates. 2 signals an
// exception, the message was already passed to the notice handler.
func predicate(op string, result C.char) (bool, error) {
	switch result {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, &Error{Op: op}
}

func (g *Geos) Contains(a, b *Geom) (bool, error) {
	return predicate("contains", C.GEOSContains_r(g.v, a.v, b.v))
}

func (g *Geos) Intersects(a, b *Geom) (bool, error) {
	return predicate("intersects", C.GEOSIntersects_r(g.v, a.v, b.v))
}

// Intersection returns a new geometry or nil on errors.
func (g *Geos) Intersection(a, b *Geom) *Geom {
	result := C.GEOSIntersection_r(g.v, a.v, b.v)
	if result == nil {
		return nil
	}
	return &Geom{result}
}

// PreparedGeom speeds up repeated predicates against the same geometry.
// The source geometry must outlive the prepared geometry.
type PreparedGeom struct {
	v *C.GEOSPreparedGeometry
}

func (g *Geos) Prepare(geom *Geom) *PreparedGeom {
	prep := C.GEOSPrepare_r(g.v, geom.v)
	if prep == nil {
		return nil
	}
	return &PreparedGeom{prep}
}

func (g *Geos) PreparedContains(a *PreparedGeom, b *Geom) (bool, error) {
	return predicate("prepared contains", C.GEOSPreparedContains_r(g.v, a.v, b.v))
}

func (g *Geos) PreparedIntersects(a *PreparedGeom, b *Geom) (bool, error) {
	return predicate("prepared intersects", C.GEOSPreparedIntersects_r(g.v, a.v, b.v))
}

func (g *Geos) PreparedDestroy(geom *PreparedGeom) {
	if geom.v == nil {
		log.Printf("[warn] GEOS: prepared geometry already destroyed")
		return
	}
	C.GEOSPreparedGeom_destroy_r(g.v, geom.v)
	geom.v = nil
}

// UnionPolygons merges polygons into a single (Multi)Polygon. Consumes
// polygons.
func (g *Geos) UnionPolygons(polygons []*Geom) *Geom {
	switch len(polygons) {
	case 0:
		return nil
	case 1:
		return polygons[0]
	}
	collection := g.MultiPolygon(polygons)
	if collection == nil {
		return nil
	}
	defer g.Destroy(collection)

	result := C.GEOSUnaryUnion_r(g.v, collection.v)
	if result == nil {
		return nil
	}
	return &Geom{result}
}

// LineMerge joins lines that share end points. Consumes lines and returns
// new LineStrings.
func (g *Geos) LineMerge(lines []*Geom) []*Geom {
	if len(lines) <= 1 {
		return lines
	}
	collection := g.MultiLineString(lines)
	if collection == nil {
		return nil
	}
	defer g.Destroy(collection)

	merged := C.GEOSLineMerge_r(g.v, collection.v)
	if merged == nil {
		return nil
	}
	result := &Geom{merged}
	if g.Type(result) == "LineString" {
		return []*Geom{result}
	}
	parts := make([]*Geom, 0, g.NumGeoms(result))
	for _, part := range g.Geoms(result) {
		parts = append(parts, g.Clone(part))
	}
	g.Destroy(result)
	return parts
}
