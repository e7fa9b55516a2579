package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/omniscale/contour-osm/geom"
	"github.com/paulmach/orb"
)

// FromWkb returns nil for empty or invalid input.
func (this *Geos) FromWkb(wkb []byte) *Geom {
	if len(wkb) == 0 {
		return nil
	}
	g := C.GEOSGeomFromWKB_buf_r(this.v, (*C.uchar)(unsafe.Pointer(&wkb[0])), C.size_t(len(wkb)))
	if g == nil {
		return nil
	}
	return &Geom{g}
}

func (this *Geos) AsWkb(g *Geom) []byte {
	var size C.size_t
	buf := C.GEOSGeomToWKB_buf_r(this.v, g.v, &size)
	if buf == nil {
		return nil
	}
	defer C.GEOSFree_r(this.v, unsafe.Pointer(buf))
	return C.GoBytes(unsafe.Pointer(buf), C.int(size))
}

// FromOrb converts g into a new GEOS geometry.
func (this *Geos) FromOrb(g orb.Geometry) (*Geom, error) {
	wkb, err := geom.AsWKB(g)
	if err != nil {
		return nil, err
	}
	result := this.FromWkb(wkb)
	if result == nil {
		return nil, &Error{Op: "reading " + g.GeoJSONType()}
	}
	return result, nil
}

// ToOrb converts g. Empty geometries return nil.
func (this *Geos) ToOrb(g *Geom) (orb.Geometry, error) {
	if this.IsEmpty(g) {
		return nil, nil
	}
	wkb := this.AsWkb(g)
	if wkb == nil {
		return nil, &Error{Op: "writing " + this.Type(g)}
	}
	return geom.FromWKB(wkb)
}
