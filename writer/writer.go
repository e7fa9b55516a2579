/*
Package writer converts contour geometries into OSM nodes and ways and
writes them as OSM XML.
*/
package writer

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/omniscale/contour-osm/geom"
	"github.com/omniscale/contour-osm/mapping"
	osm "github.com/omniscale/go-osm"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

var ErrFlushed = errors.New("osm writer already flushed")

// OsmWriter collects nodes and ways with negative IDs and writes them with
// Flush. Nodes and ways share one ID sequence (-1, -2, ...) in the order
// they are added. An OsmWriter is not safe for concurrent use.
type OsmWriter struct {
	out        io.Writer
	closers    []io.Closer
	path       string
	store      Store
	classifier mapping.Classifier
	lastID     int64
	nodes      int64
	ways       int64
	flushed    bool
}

// New returns an OsmWriter writing to out. Elements are kept in store
// until Flush.
func New(out io.Writer, store Store, classifier mapping.Classifier) *OsmWriter {
	return &OsmWriter{
		out:        out,
		store:      store,
		classifier: classifier,
	}
}

// Create returns an OsmWriter writing to the file path. The output is
// gzip compressed if path ends with .gz. The file is closed by Flush, or
// removed by Close if Flush was not called.
func Create(path string, store Store, classifier mapping.Classifier) (*OsmWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating output")
	}
	w := New(f, store, classifier)
	w.path = path
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		w.out = gz
		w.closers = append(w.closers, gz)
	}
	w.closers = append(w.closers, f)
	return w, nil
}

func (w *OsmWriter) nextID() int64 {
	w.lastID--
	return w.lastID
}

// AddGeometry adds one way for each linestring or polygon ring of g, with
// one new node for each vertex. Points are ignored.
func (w *OsmWriter) AddGeometry(elevation float64, g orb.Geometry) error {
	if w.flushed {
		return ErrFlushed
	}
	tags := w.classifier.Tags(elevation)
	for _, ls := range geom.LineStrings(g) {
		if len(ls) == 0 {
			continue
		}
		refs := make([]int64, len(ls))
		for i, p := range ls {
			nd := osm.Node{Long: p[0], Lat: p[1]}
			nd.ID = w.nextID()
			if err := w.store.PutNode(&nd); err != nil {
				return errors.Wrapf(err, "storing node %d", nd.ID)
			}
			refs[i] = nd.ID
			w.nodes++
		}
		way := osm.Way{Refs: refs}
		way.ID = w.nextID()
		way.Tags = tags
		if err := w.store.PutWay(&way); err != nil {
			return errors.Wrapf(err, "storing way %d", way.ID)
		}
		w.ways++
	}
	return nil
}

// Flush writes all nodes followed by all ways and closes the output if it
// was opened by Create. Flush can only be called once.
func (w *OsmWriter) Flush() error {
	if w.flushed {
		return ErrFlushed
	}
	w.flushed = true

	err := w.writeXML()
	if cerr := w.closeOutput(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close discards all elements if Flush was not called. An output file
// opened by Create is closed and removed. Close is a no-op after Flush.
func (w *OsmWriter) Close() error {
	if w.flushed {
		return nil
	}
	w.flushed = true
	err := w.closeOutput()
	if w.path != "" {
		if rerr := os.Remove(w.path); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = errors.Wrap(rerr, "removing incomplete output")
		}
	}
	return err
}

func (w *OsmWriter) closeOutput() error {
	var err error
	for _, c := range w.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing output")
		}
	}
	w.closers = nil
	return err
}

// Stats returns the number of nodes and ways added.
func (w *OsmWriter) Stats() (nodes, ways int64) {
	return w.nodes, w.ways
}
