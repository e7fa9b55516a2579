package ogr

/*
#cgo LDFLAGS: -lgdal
#include "ogr_srs_api.h"
#include "cpl_error.h"
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"strconv"
)

// SpatialReference is an EPSG based OSR spatial reference that always
// uses the traditional GIS axis order (easting/longitude first).
type SpatialReference struct {
	v C.OGRSpatialReferenceH
}

func NewSpatialReference(epsg int) (*SpatialReference, error) {
	srs := C.OSRNewSpatialReference(nil)
	if srs == nil {
		return nil, lastOgrError("failed to create spatial reference")
	}
	C.CPLErrorReset()
	if C.OSRImportFromEPSG(srs, C.int(epsg)) != C.OGRERR_NONE {
		C.OSRDestroySpatialReference(srs)
		return nil, lastOgrError(fmt.Sprintf("unknown EPSG:%d", epsg))
	}
	C.OSRSetAxisMappingStrategy(srs, C.OAMS_TRADITIONAL_GIS_ORDER)
	return &SpatialReference{srs}, nil
}

// EPSGTreatsAsLatLong returns true if the authority defines
// latitude/longitude axis order for this system.
func (s *SpatialReference) EPSGTreatsAsLatLong() bool {
	return C.OSREPSGTreatsAsLatLong(s.v) != 0
}

func (s *SpatialReference) Destroy() {
	if s.v != nil {
		C.OSRDestroySpatialReference(s.v)
		s.v = nil
	}
}

func epsgCode(srs C.OGRSpatialReferenceH) int {
	clone := C.OSRClone(srs)
	if clone == nil {
		return 0
	}
	defer C.OSRDestroySpatialReference(clone)
	C.OSRAutoIdentifyEPSG(clone)
	code := C.OSRGetAuthorityCode(clone, nil)
	if code == nil {
		return 0
	}
	epsg, err := strconv.Atoi(C.GoString(code))
	if err != nil {
		return 0
	}
	return epsg
}

type CoordinateTransformation struct {
	v        C.OGRCoordinateTransformationH
	src, dst *SpatialReference
}

func NewCoordinateTransformation(srcEPSG, dstEPSG int) (*CoordinateTransformation, error) {
	src, err := NewSpatialReference(srcEPSG)
	if err != nil {
		return nil, err
	}
	dst, err := NewSpatialReference(dstEPSG)
	if err != nil {
		src.Destroy()
		return nil, err
	}
	C.CPLErrorReset()
	ct := C.OCTNewCoordinateTransformation(src.v, dst.v)
	if ct == nil {
		src.Destroy()
		dst.Destroy()
		return nil, lastOgrError(fmt.Sprintf("no transformation from EPSG:%d to EPSG:%d", srcEPSG, dstEPSG))
	}
	return &CoordinateTransformation{v: ct, src: src, dst: dst}, nil
}

// Transform transforms the coordinates in place.
func (ct *CoordinateTransformation) Transform(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return &OgrError{"coordinate slices differ in length"}
	}
	if len(xs) == 0 {
		return nil
	}
	C.CPLErrorReset()
	if C.OCTTransform(ct.v, C.int(len(xs)), (*C.double)(&xs[0]), (*C.double)(&ys[0]), nil) == 0 {
		return lastOgrError("coordinate transformation failed")
	}
	return nil
}

func (ct *CoordinateTransformation) Destroy() {
	if ct.v != nil {
		C.OCTDestroyCoordinateTransformation(ct.v)
		ct.v = nil
	}
	ct.src.Destroy()
	ct.dst.Destroy()
}
