package proj

import (
	"github.com/omniscale/contour-osm/geom/ogr"
	"github.com/paulmach/orb"
)

// transformer transforms x/y pairs in place.
type transformer interface {
	transform(points []orb.Point) error
	close()
}

type identity struct{}

func (identity) transform([]orb.Point) error { return nil }
func (identity) close()                      {}

type toMerc struct{}

func (toMerc) transform(points []orb.Point) error {
	for i, p := range points {
		points[i][0], points[i][1] = WgsToMerc(p[0], p[1])
	}
	return nil
}
func (toMerc) close() {}

type fromMerc struct{}

func (fromMerc) transform(points []orb.Point) error {
	for i, p := range points {
		points[i][0], points[i][1] = MercToWgs(p[0], p[1])
	}
	return nil
}
func (fromMerc) close() {}

type osrTransformer struct {
	ct     *ogr.CoordinateTransformation
	xs, ys []float64
}

func newOsrTransformer(src, dst int) (*osrTransformer, error) {
	ct, err := ogr.NewCoordinateTransformation(src, dst)
	if err != nil {
		return nil, err
	}
	return &osrTransformer{ct: ct}, nil
}

func (t *osrTransformer) transform(points []orb.Point) error {
	t.xs = t.xs[:0]
	t.ys = t.ys[:0]
	for _, p := range points {
		t.xs = append(t.xs, p[0])
		t.ys = append(t.ys, p[1])
	}
	if err := t.ct.Transform(t.xs, t.ys); err != nil {
		return err
	}
	for i := range points {
		points[i][0], points[i][1] = t.xs[i], t.ys[i]
	}
	return nil
}

func (t *osrTransformer) close() {
	t.ct.Destroy()
}

func newTransformer(src, dst int) (transformer, error) {
	switch {
	case src == dst:
		return identity{}, nil
	case src == 4326 && isMerc(dst):
		return toMerc{}, nil
	case isMerc(src) && dst == 4326:
		return fromMerc{}, nil
	case isMerc(src) && isMerc(dst):
		return identity{}, nil
	}
	return newOsrTransformer(src, dst)
}

// AuthorityAxisOrder returns the axis order the EPSG registry defines for
// the geographic system epsg. Projected systems are always LonLat.
func AuthorityAxisOrder(epsg int) (AxisOrder, error) {
	srs, err := ogr.NewSpatialReference(epsg)
	if err != nil {
		return LonLat, err
	}
	defer srs.Destroy()
	if srs.EPSGTreatsAsLatLong() {
		return LatLon, nil
	}
	return LonLat, nil
}
