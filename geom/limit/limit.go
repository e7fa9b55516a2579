/*
Package limit clips geometries to a boundary polygon with GEOS.
*/
package limit

import (
	"strings"

	"github.com/omniscale/contour-osm/geom"
	"github.com/omniscale/contour-osm/geom/geos"
	"github.com/omniscale/contour-osm/log"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Limiter clips geometries to a fixed boundary. A Limiter owns a GEOS
// handle and is not safe for concurrent use.
type Limiter struct {
	g        *geos.Geos
	boundary *geos.Geom
	prepared *geos.PreparedGeom
}

// New prepares boundary for clipping. boundary needs to be in the same
// reference system as the geometries passed to Clip.
func New(boundary orb.MultiPolygon) (*Limiter, error) {
	if len(boundary) == 0 {
		return nil, errors.New("empty clipping boundary")
	}
	g := geos.NewGeos()
	b, err := g.FromOrb(boundary)
	if err != nil {
		g.Finish()
		return nil, errors.Wrap(err, "reading clipping boundary")
	}
	if !g.IsValid(b) {
		log.Printf("[warn] clipping boundary is not a valid polygon, results may be incomplete")
	}
	prep := g.Prepare(b)
	if prep == nil {
		g.Destroy(b)
		g.Finish()
		return nil, &geos.Error{Op: "preparing clipping boundary"}
	}
	return &Limiter{g: g, boundary: b, prepared: prep}, nil
}

// Close releases the boundary and the GEOS handle.
func (l *Limiter) Close() {
	if l.g == nil {
		return
	}
	l.g.PreparedDestroy(l.prepared)
	l.g.Destroy(l.boundary)
	l.g.Finish()
	l.g = nil
}

// Clip returns the part of geometry inside the boundary. It returns nil if
// geometry does not intersect the boundary. Geometries fully inside the
// boundary are returned unchanged.
//
// The result has the dimension of the input: clipped lines only contain
// lines, points from lines touching the boundary are dropped. Line parts
// are merged where possible.
func (l *Limiter) Clip(geometry orb.Geometry) (orb.Geometry, error) {
	if geometry == nil || geom.IsEmpty(geometry) {
		return nil, nil
	}
	g := l.g

	gg, err := g.FromOrb(geometry)
	if err != nil {
		return nil, errors.Wrap(err, "reading geometry for clipping")
	}
	defer g.Destroy(gg)

	contains, err := g.PreparedContains(l.prepared, gg)
	if err != nil {
		return nil, err
	}
	if contains {
		return geometry, nil
	}
	intersects, err := g.PreparedIntersects(l.prepared, gg)
	if err != nil {
		return nil, err
	}
	if !intersects {
		return nil, nil
	}

	geomType := baseType(g.Type(gg))
	intersection := g.Intersection(l.boundary, gg)
	if intersection == nil {
		return nil, &geos.Error{Op: "intersection"}
	}
	if g.IsEmpty(intersection) {
		g.Destroy(intersection)
		return nil, nil
	}

	parts := filterGeometryByType(g, intersection, geomType)
	parts = mergeGeometries(g, parts, geomType)
	return l.toOrb(parts)
}

// toOrb converts and destroys parts.
func (l *Limiter) toOrb(parts []*geos.Geom) (orb.Geometry, error) {
	g := l.g
	defer func() {
		for _, p := range parts {
			g.Destroy(p)
		}
	}()

	var result []orb.Geometry
	for _, p := range parts {
		o, err := g.ToOrb(p)
		if err != nil {
			return nil, errors.Wrap(err, "converting clipped geometry")
		}
		if o != nil {
			result = append(result, o)
		}
	}

	switch len(result) {
	case 0:
		return nil, nil
	case 1:
		return result[0], nil
	}

	lines := make(orb.MultiLineString, 0, len(result))
	for _, r := range result {
		switch r := r.(type) {
		case orb.LineString:
			lines = append(lines, r)
		case orb.MultiLineString:
			lines = append(lines, r...)
		default:
			return orb.Collection(result), nil
		}
	}
	return lines, nil
}

// baseType returns the single part type of multi geometries.
func baseType(geomType string) string {
	return strings.TrimPrefix(geomType, "Multi")
}

// filterGeometryByType returns all parts of geom with targetType.
// Consumes geom.
func filterGeometryByType(g *geos.Geos, geom *geos.Geom, targetType string) []*geos.Geom {
	geomType := g.Type(geom)

	if geomType == targetType || geomType == "Multi"+targetType {
		return []*geos.Geom{geom}
	}

	// GeometryCollection, e.g. a line partly along the boundary.
	var geoms []*geos.Geom
	if g.NumGeoms(geom) >= 1 {
		for _, part := range g.Geoms(geom) {
			partType := g.Type(part)
			if partType == targetType || partType == "Multi"+targetType {
				geoms = append(geoms, g.Clone(part))
			}
		}
	}
	g.Destroy(geom)
	return geoms
}

func flattenParts(g *geos.Geos, geoms []*geos.Geom) []*geos.Geom {
	var result []*geos.Geom
	for _, geom := range geoms {
		if strings.HasPrefix(g.Type(geom), "Multi") {
			for _, part := range g.Geoms(geom) {
				result = append(result, g.Clone(part))
			}
			g.Destroy(geom)
		} else {
			result = append(result, geom)
		}
	}
	return result
}

func filterInvalidLineStrings(g *geos.Geos, geoms []*geos.Geom) []*geos.Geom {
	var result []*geos.Geom
	for _, geom := range geoms {
		if g.Length(geom) > 1e-9 {
			result = append(result, geom)
		} else {
			g.Destroy(geom)
		}
	}
	return result
}

// mergeGeometries merges the intersection parts back into as few
// geometries as possible. Consumes geoms.
func mergeGeometries(g *geos.Geos, geoms []*geos.Geom, geomType string) []*geos.Geom {
	if len(geoms) == 0 {
		return nil
	}
	switch geomType {
	case "Polygon":
		polygon := g.UnionPolygons(flattenParts(g, geoms))
		if polygon == nil {
			return nil
		}
		return []*geos.Geom{polygon}
	case "LineString":
		linestrings := filterInvalidLineStrings(g, flattenParts(g, geoms))
		if len(linestrings) == 0 {
			return nil
		}
		return g.LineMerge(linestrings)
	}
	return geoms
}

// ClipIterator yields the clipped features of another iterator.
type ClipIterator struct {
	it       geom.FeatureIterator
	limiter  *Limiter
	current  geom.Feature
	err      error
	examined int
	retained int
	closed   bool
}

// ClipFeatures returns an iterator with all features of it clipped to
// the boundary of limiter. Features outside of the boundary are skipped,
// elevation and SRID are kept. Closing the iterator closes it, but not
// limiter.
func ClipFeatures(it geom.FeatureIterator, limiter *Limiter) *ClipIterator {
	return &ClipIterator{it: it, limiter: limiter}
}

func (c *ClipIterator) Next() bool {
	if c.err != nil || c.closed {
		return false
	}
	for c.it.Next() {
		f := c.it.Feature()
		c.examined++
		clipped, err := c.limiter.Clip(f.Geometry)
		if err != nil {
			c.err = errors.Wrapf(err, "clipping feature with elevation %v", f.Elevation)
			return false
		}
		if clipped == nil {
			continue
		}
		f.Geometry = clipped
		c.current = f
		c.retained++
		return true
	}
	c.err = c.it.Err()
	return false
}

func (c *ClipIterator) Feature() geom.Feature {
	return c.current
}

func (c *ClipIterator) Err() error {
	return c.err
}

// Stats returns the number of features read from the wrapped iterator
// and the number of features that intersected the boundary.
func (c *ClipIterator) Stats() (examined, retained int) {
	return c.examined, c.retained
}

func (c *ClipIterator) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	log.Printf("[info] clipped features: %d examined, %d retained", c.examined, c.retained)
	return c.it.Close()
}
