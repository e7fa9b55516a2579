package source

import (
	"context"

	"github.com/omniscale/contour-osm/boundary"
	"github.com/omniscale/contour-osm/geom"
	"github.com/omniscale/contour-osm/geom/limit"
	"github.com/omniscale/contour-osm/geom/ogr"
	"github.com/omniscale/contour-osm/log"
	"github.com/omniscale/contour-osm/proj"
	"github.com/pkg/errors"
)

// IterableSource reads an OGR layer and clips the features with GEOS.
type IterableSource struct {
	names   fields
	ds      *ogr.DataSource
	layer   *ogr.Layer
	featIdx int
	geomIdx int
	srid    int
	srs     proj.SRS
	limiter *limit.Limiter
}

func openOGR(locator string, opts Options) (*IterableSource, error) {
	ds, err := ogr.Open(locator)
	if err != nil {
		return nil, err
	}
	s := &IterableSource{ds: ds}
	if err := s.resolve(opts); err != nil {
		ds.Close()
		return nil, err
	}
	log.Printf("[info] using %s", s.names)
	return s, nil
}

func (s *IterableSource) resolve(opts Options) error {
	var err error
	s.names.layer, err = resolveLayer(opts.Layer, s.ds.LayerNames())
	if err != nil {
		return err
	}
	s.layer, err = s.ds.LayerByName(s.names.layer)
	if err != nil {
		return err
	}

	fieldNames := s.layer.FieldNames()
	geomNames := s.layer.GeomFieldNames()

	s.names.feature, err = resolveField("elevation", opts.FeatureField, elevationCandidates(fieldNames, geomNames))
	if err != nil {
		return err
	}
	s.names.geom, err = resolveField("geometry", opts.GeometryField, geomNames)
	if err != nil {
		return err
	}
	s.featIdx = indexOf(fieldNames, s.names.feature)
	s.geomIdx = indexOf(geomNames, s.names.geom)

	s.srid = s.layer.EPSG()
	s.srs = resolveSRS(opts.SRS, s.srid)
	return nil
}

func (s *IterableSource) String() string {
	return s.names.String()
}

// FeatureCount returns the number of features within the spatial filter
// of the last Fetch. Features outside of the boundary but within its
// bounding box are included.
func (s *IterableSource) FeatureCount() int64 {
	return s.layer.FeatureCount()
}

func (s *IterableSource) SRID() int {
	return s.srid
}

// Fetch returns the features of the layer. With a boundary, the bounding
// box of the boundary is used as OGR spatial filter and all features are
// clipped to the boundary.
func (s *IterableSource) Fetch(ctx context.Context, b *boundary.Boundary) (geom.FeatureIterator, error) {
	if s.limiter != nil {
		s.limiter.Close()
		s.limiter = nil
	}
	s.layer.ClearSpatialFilter()
	s.layer.ResetReading()
	it := &layerIterator{ctx: ctx, layer: s.layer, featIdx: s.featIdx, geomIdx: s.geomIdx, srid: s.srs.EPSG}
	if b == nil {
		return it, nil
	}

	g, err := b.Geometry(s.srs)
	if err != nil {
		return nil, errors.Wrapf(err, "transforming boundary %s", b.Name)
	}
	bbox := g.Bound()
	s.layer.SetSpatialFilterRect(bbox.Min[0], bbox.Min[1], bbox.Max[0], bbox.Max[1])
	s.layer.ResetReading()

	s.limiter, err = limit.New(g)
	if err != nil {
		return nil, errors.Wrapf(err, "preparing boundary %s", b.Name)
	}
	return limit.ClipFeatures(it, s.limiter), nil
}

func (s *IterableSource) Close() error {
	if s.limiter != nil {
		s.limiter.Close()
		s.limiter = nil
	}
	if s.ds != nil {
		s.ds.Close()
		s.ds = nil
	}
	return nil
}

type layerIterator struct {
	ctx     context.Context
	layer   *ogr.Layer
	featIdx int
	geomIdx int
	srid    int
	current geom.Feature
	err     error
	done    bool
}

func (it *layerIterator) Next() bool {
	if it.done {
		return false
	}
	for {
		if err := it.ctx.Err(); err != nil {
			it.err = err
			it.done = true
			return false
		}
		f := it.layer.NextFeature()
		if f == nil {
			it.done = true
			return false
		}
		elevation, ok := f.FieldAsDouble(it.featIdx)
		wkb := f.GeomFieldWkb(it.geomIdx)
		f.Destroy()
		if !ok {
			log.Printf("[debug] skipping feature without elevation")
			continue
		}
		if len(wkb) == 0 {
			log.Printf("[debug] skipping feature without geometry (ele=%v)", elevation)
			continue
		}
		g, err := geom.FromWKB(wkb)
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		if geom.IsEmpty(g) {
			log.Printf("[debug] skipping feature with empty geometry (ele=%v)", elevation)
			continue
		}
		it.current = geom.Feature{Elevation: elevation, Geometry: g, SRID: it.srid}
		return true
	}
}

func (it *layerIterator) Feature() geom.Feature { return it.current }
func (it *layerIterator) Err() error            { return it.err }

func (it *layerIterator) Close() error {
	it.done = true
	return nil
}
