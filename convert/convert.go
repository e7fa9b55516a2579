/*
Package convert runs a single conversion from a contour datasource to an
OSM XML file.
*/
package convert

import (
	"context"
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/omniscale/contour-osm/boundary"
	"github.com/omniscale/contour-osm/cache"
	"github.com/omniscale/contour-osm/config"
	"github.com/omniscale/contour-osm/geom"
	"github.com/omniscale/contour-osm/log"
	"github.com/omniscale/contour-osm/mapping"
	"github.com/omniscale/contour-osm/proj"
	"github.com/omniscale/contour-osm/source"
	"github.com/omniscale/contour-osm/stats"
	"github.com/omniscale/contour-osm/writer"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// Run converts all features of opts.Datasource within the optional
// boundary into opts.Output.
func Run(ctx context.Context, opts *config.Options) error {
	step := log.Step("Converting contours")
	defer step()

	b, err := loadBoundary(opts)
	if err != nil {
		return err
	}

	src, err := source.Open(opts.Datasource, source.Options{
		Layer:         opts.Layer,
		FeatureField:  opts.FeatureField,
		GeometryField: opts.GeometryField,
		SRS:           opts.SourceSRS(),
	})
	if err != nil {
		return err
	}
	defer src.Close()

	reprojector, err := proj.NewReprojector(opts.SourceSRS(), opts.DestSRS(), src.SRID())
	if err != nil {
		return err
	}
	defer reprojector.Close()
	log.Printf("[info] reprojecting from %s to %s", reprojector.Src(), reprojector.Dst())
	checkAxisOrder(reprojector.Src())

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	w, err := writer.Create(opts.Output, store, mapping.Classifier{
		Major:  opts.Major,
		Medium: opts.Medium,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	it, err := src.Fetch(ctx, b)
	if err != nil {
		return err
	}
	defer it.Close()

	p := NewPipeline(reprojector, w)
	p.Progress = newProgressBar(src.FeatureCount(), opts.Quiet)
	if err := p.Process(ctx, it); err != nil {
		return err
	}
	if err := it.Close(); err != nil {
		return errors.Wrap(err, "closing features")
	}

	writeStep := log.Step("Writing " + opts.Output)
	err = w.Flush()
	writeStep()
	if err != nil {
		return errors.Wrapf(err, "writing %s", opts.Output)
	}
	log.Printf("[info] %s", p.Stats)
	return nil
}

func loadBoundary(opts *config.Options) (*boundary.Boundary, error) {
	if opts.Poly != "" {
		b, err := boundary.Load(opts.Poly)
		if err != nil {
			return nil, errors.Wrapf(err, "loading boundary %s", opts.Poly)
		}
		log.Printf("[info] clipping to %s (%v)", b.Name, b.Bound())
		return b, nil
	}
	if minLon, maxLon, minLat, maxLat, ok := opts.BoundingBox(); ok {
		return boundary.FromBoundingBox(minLon, maxLon, minLat, maxLat), nil
	}
	return nil, nil
}

func openStore(opts *config.Options) (writer.Store, error) {
	if opts.CacheDir == "" {
		return writer.NewMemStore(), nil
	}
	s, err := cache.Open(opts.CacheDir, opts.CacheBackend)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache in %s", opts.CacheDir)
	}
	return s, nil
}

// checkAxisOrder logs if srs is read in another axis order than the EPSG
// registry defines. Reading EPSG:4326 as lon/lat is the common case, only
// lat/lon for a system defined as lon/lat is suspicious.
func checkAxisOrder(srs proj.SRS) {
	authority, err := proj.AuthorityAxisOrder(srs.EPSG)
	if err != nil {
		log.Printf("[debug] no axis order for EPSG:%d: %s", srs.EPSG, err)
		return
	}
	if authority == srs.AxisOrder {
		return
	}
	if srs.AxisOrder == proj.LatLon {
		log.Printf("[warn] EPSG:%d defines %s axis order, but input is read as %s (-src-axis)", srs.EPSG, authority, srs.AxisOrder)
		return
	}
	log.Printf("[debug] EPSG:%d defines %s axis order, input is read as %s", srs.EPSG, authority, srs.AxisOrder)
}

// newProgressBar returns a bar for total features, or a spinner if total is
// negative.
func newProgressBar(total int64, quiet bool) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStderr()),
		progressbar.OptionSetDescription("Reading features"),
		progressbar.OptionSetItsString("features"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionSetVisibility(!quiet),
		progressbar.OptionClearOnFinish(),
	)
}

// Pipeline reprojects features and adds them to an OsmWriter.
type Pipeline struct {
	reprojector *proj.Reprojector
	writer      *writer.OsmWriter
	Stats       *stats.Statistics
	// Progress is optional.
	Progress *progressbar.ProgressBar
}

func NewPipeline(reprojector *proj.Reprojector, w *writer.OsmWriter) *Pipeline {
	return &Pipeline{
		reprojector: reprojector,
		writer:      w,
		Stats:       stats.New(),
	}
}

// Process adds all features of it in input order. It does not
// close it or flush the writer.
func (p *Pipeline) Process(ctx context.Context, it geom.FeatureIterator) error {
	defer p.finishProgress()
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := it.Feature()
		p.Stats.AddFeature()
		if p.Progress != nil {
			p.Progress.Add(1)
		}
		if f.Geometry == nil {
			p.Stats.AddSkipped()
			continue
		}
		g, err := p.reprojector.Reproject(f.Geometry)
		if err != nil {
			return errors.Wrapf(err, "reprojecting feature with elevation %v", f.Elevation)
		}
		if err := p.writer.AddGeometry(f.Elevation, g); err != nil {
			return err
		}
	}
	p.Stats.SetElements(p.writer.Stats())
	return it.Err()
}

func (p *Pipeline) finishProgress() {
	if p.Progress != nil {
		p.Progress.Finish()
	}
}
