package proj

import (
	"github.com/paulmach/orb"
)

// Reprojector transforms geometries from one SRS into another.
type Reprojector struct {
	src, dst SRS
	t        transformer
}

// NewReprojector returns a Reprojector from src to dst. A src without
// EPSG code falls back to declared (the SRID the data source reports) or
// to WGS84 if declared is 0 as well.
func NewReprojector(src, dst SRS, declared int) (*Reprojector, error) {
	if src.EPSG == 0 {
		if declared != 0 {
			src.EPSG = declared
		} else {
			src.EPSG = WGS84.EPSG
		}
	}
	if dst.EPSG == 0 {
		dst.EPSG = WGS84.EPSG
	}
	t, err := newTransformer(src.EPSG, dst.EPSG)
	if err != nil {
		return nil, &TransformError{Src: src, Dst: dst, Err: err}
	}
	return &Reprojector{src: src, dst: dst, t: t}, nil
}

func (r *Reprojector) Src() SRS { return r.src }
func (r *Reprojector) Dst() SRS { return r.dst }

// IsIdentity returns true if Reproject never changes coordinates.
func (r *Reprojector) IsIdentity() bool {
	_, ok := r.t.(identity)
	return ok && r.src.AxisOrder == r.dst.AxisOrder
}

// Reproject returns a transformed copy of g. nil stays nil.
func (r *Reprojector) Reproject(g orb.Geometry) (orb.Geometry, error) {
	if g == nil {
		return nil, nil
	}
	g = orb.Clone(g)
	if r.IsIdentity() {
		return g, nil
	}
	result, err := eachPoints(g, r.transform)
	if err != nil {
		return nil, &TransformError{Src: r.src, Dst: r.dst, Err: err}
	}
	return result, nil
}

func (r *Reprojector) transform(points []orb.Point) error {
	if r.src.AxisOrder == LatLon {
		swap(points)
	}
	if err := r.t.transform(points); err != nil {
		return err
	}
	if r.dst.AxisOrder == LatLon {
		swap(points)
	}
	return nil
}

func (r *Reprojector) Close() {
	if r.t != nil {
		r.t.close()
		r.t = nil
	}
}

func swap(points []orb.Point) {
	for i, p := range points {
		points[i][0], points[i][1] = p[1], p[0]
	}
}

// eachPoints calls fn for every point sequence of g. fn modifies the
// points in place; single points are returned as new values.
func eachPoints(g orb.Geometry, fn func([]orb.Point) error) (orb.Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		p := []orb.Point{g}
		if err := fn(p); err != nil {
			return nil, err
		}
		return p[0], nil
	case orb.MultiPoint:
		return g, fn(g)
	case orb.LineString:
		return g, fn(g)
	case orb.Ring:
		return g, fn(g)
	case orb.MultiLineString:
		for _, ls := range g {
			if err := fn(ls); err != nil {
				return nil, err
			}
		}
		return g, nil
	case orb.Polygon:
		for _, r := range g {
			if err := fn(r); err != nil {
				return nil, err
			}
		}
		return g, nil
	case orb.MultiPolygon:
		for _, p := range g {
			if _, err := eachPoints(p, fn); err != nil {
				return nil, err
			}
		}
		return g, nil
	case orb.Collection:
		for i, part := range g {
			result, err := eachPoints(part, fn)
			if err != nil {
				return nil, err
			}
			g[i] = result
		}
		return g, nil
	case orb.Bound:
		points := []orb.Point{g.Min, g.Max}
		if err := fn(points); err != nil {
			return nil, err
		}
		return orb.MultiPoint(points).Bound(), nil
	}
	return g, nil
}
