/*
Package geos wraps the GEOS C API for the few topology operations needed
to clip contour lines.

A Geos handle is not safe for concurrent use. Geometries created with a
handle need to be destroyed with the same handle.
*/
package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>

extern GEOSContextHandle_t initGEOSContext();
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/omniscale/contour-osm/log"
)

//export goNotice
func goNotice(msg *C.char) {
	log.Printf("[debug] GEOS: %s", C.GoString(msg))
}

// Errors are also returned as *Error by the failed operation.
//
//export goError
func goError(msg *C.char) {
	log.Printf("[warn] GEOS: %s", C.GoString(msg))
}

// Error is returned for failed GEOS operations.
type Error struct {
	Op string
}

func (e *Error) Error() string {
	return fmt.Sprintf("GEOS %s failed", e.Op)
}

type Geos struct {
	v C.GEOSContextHandle_t
}

type Geom struct {
	v *C.GEOSGeometry
}

func NewGeos() *Geos {
	geos := &Geos{}
	geos.v = C.initGEOSContext()
	return geos
}

func (this *Geos) Finish() {
	if this.v != nil {
		C.GEOS_finish_r(this.v)
		this.v = nil
	}
}

func (this *Geos) Destroy(geom *Geom) {
	if geom.v != nil {
		C.GEOSGeom_destroy_r(this.v, geom.v)
		geom.v = nil
	} else {
		log.Printf("[warn] GEOS: double free?")
	}
}

func (this *Geos) Clone(geom *Geom) *Geom {
	result := C.GEOSGeom_clone_r(this.v, geom.v)
	if result == nil {
		return nil
	}
	return &Geom{result}
}

// Type returns the geometry type name, e.g. "LineString".
func (this *Geos) Type(geom *Geom) string {
	geomType := C.GEOSGeomType_r(this.v, geom.v)
	if geomType == nil {
		return "Unknown"
	}
	defer C.GEOSFree_r(this.v, unsafe.Pointer(geomType))
	return C.GoString(geomType)
}

func (this *Geos) IsEmpty(geom *Geom) bool {
	return C.GEOSisEmpty_r(this.v, geom.v) == 1
}

func (this *Geos) IsValid(geom *Geom) bool {
	return C.GEOSisValid_r(this.v, geom.v) == 1
}

func (this *Geos) NumGeoms(geom *Geom) int32 {
	count := int32(C.GEOSGetNumGeometries_r(this.v, geom.v))
	return count
}

// Geoms returns the parts of a multi geometry or collection. The parts
// are owned by geom and must not be destroyed.
func (this *Geos) Geoms(geom *Geom) []*Geom {
	count := this.NumGeoms(geom)
	var result []*Geom
	for i := 0; int32(i) < count; i++ {
		part := C.GEOSGetGeometryN_r(this.v, geom.v, C.int(i))
		if part == nil {
			return nil
		}
		result = append(result, &Geom{part})
	}
	return result
}

func (this *Geos) Length(geom *Geom) float64 {
	var length C.double
	if ret := C.GEOSLength_r(this.v, geom.v, &length); ret == 1 {
		return float64(length)
	}
	return 0
}

// MultiLineString creates a collection of lines. Takes ownership of lines.
func (this *Geos) MultiLineString(lines []*Geom) *Geom {
	return this.collection(C.GEOS_MULTILINESTRING, lines)
}

// MultiPolygon creates a collection of polygons. Takes ownership of polygons.
func (this *Geos) MultiPolygon(polygons []*Geom) *Geom {
	return this.collection(C.GEOS_MULTIPOLYGON, polygons)
}

func (this *Geos) collection(typeID C.int, geoms []*Geom) *Geom {
	if len(geoms) == 0 {
		return nil
	}
	ptrs := make([]*C.GEOSGeometry, len(geoms))
	for i, geom := range geoms {
		ptrs[i] = geom.v
	}
	geom := C.GEOSGeom_createCollection_r(this.v, typeID, &ptrs[0], C.uint(len(geoms)))
	if geom == nil {
		return nil
	}
	return &Geom{geom}
}
