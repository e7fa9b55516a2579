/*
Package geom contains the feature type passed through the conversion
pipeline and helpers to take geometries apart.
*/
package geom

import (
	"github.com/paulmach/orb"
)

// LineStrings returns all linear parts of g in order: linestrings as they
// are, polygon rings as closed linestrings. Points are skipped.
// The returned linestrings share their points with g.
func LineStrings(g orb.Geometry) []orb.LineString {
	var result []orb.LineString
	appendLineStrings(&result, g)
	return result
}

func appendLineStrings(result *[]orb.LineString, g orb.Geometry) {
	switch g := g.(type) {
	case orb.LineString:
		*result = append(*result, g)
	case orb.MultiLineString:
		for _, ls := range g {
			*result = append(*result, ls)
		}
	case orb.Ring:
		*result = append(*result, orb.LineString(g))
	case orb.Polygon:
		for _, r := range g {
			*result = append(*result, orb.LineString(r))
		}
	case orb.MultiPolygon:
		for _, p := range g {
			appendLineStrings(result, p)
		}
	case orb.Collection:
		for _, part := range g {
			appendLineStrings(result, part)
		}
	}
}

// NumPoints returns the number of vertices of all parts of g.
func NumPoints(g orb.Geometry) int {
	switch g := g.(type) {
	case orb.Point:
		return 1
	case orb.MultiPoint:
		return len(g)
	case orb.LineString:
		return len(g)
	case orb.Ring:
		return len(g)
	case orb.MultiLineString:
		n := 0
		for _, ls := range g {
			n += len(ls)
		}
		return n
	case orb.Polygon:
		n := 0
		for _, r := range g {
			n += len(r)
		}
		return n
	case orb.MultiPolygon:
		n := 0
		for _, p := range g {
			n += NumPoints(p)
		}
		return n
	case orb.Collection:
		n := 0
		for _, part := range g {
			n += NumPoints(part)
		}
		return n
	case orb.Bound:
		return 4
	}
	return 0
}

// IsEmpty returns true for nil geometries and geometries without vertices.
func IsEmpty(g orb.Geometry) bool {
	return NumPoints(g) == 0
}
