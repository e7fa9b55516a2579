package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/pkg/errors"
)

// FromWKB decodes a 2D WKB geometry. Empty input returns nil without error.
func FromWKB(data []byte) (orb.Geometry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "decoding wkb")
	}
	return g, nil
}

// AsWKB encodes g as little endian WKB.
func AsWKB(g orb.Geometry) ([]byte, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s as wkb", g.GeoJSONType())
	}
	return data, nil
}
