package geom

import "github.com/paulmach/orb"

// Feature is a single contour line read from a source.
type Feature struct {
	Elevation float64
	Geometry  orb.Geometry
	// SRID of Geometry as declared by the source, 0 if unknown.
	SRID int
}

// FeatureIterator yields features one at a time. Next must be called
// before the first Feature. Close releases all resources of the iterator
// and is safe to call more than once.
type FeatureIterator interface {
	Next() bool
	Feature() Feature
	Err() error
	Close() error
}

type sliceIterator struct {
	features []Feature
	idx      int
}

// NewSliceIterator returns a FeatureIterator over in-memory features.
func NewSliceIterator(features []Feature) FeatureIterator {
	return &sliceIterator{features: features, idx: -1}
}

func (it *sliceIterator) Next() bool {
	if it.idx+1 >= len(it.features) {
		it.idx = len(it.features)
		return false
	}
	it.idx++
	return true
}

func (it *sliceIterator) Feature() Feature {
	return it.features[it.idx]
}

func (it *sliceIterator) Err() error   { return nil }
func (it *sliceIterator) Close() error { return nil }

// Collect drains it and closes it.
func Collect(it FeatureIterator) ([]Feature, error) {
	defer it.Close()
	var result []Feature
	for it.Next() {
		result = append(result, it.Feature())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return result, it.Close()
}
