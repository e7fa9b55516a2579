/*
Package ogr wraps the parts of the GDAL/OGR C API needed to read contour
layers from files and to transform coordinates between EPSG systems.

Requires GDAL 3 or newer.
*/
package ogr

/*
#cgo LDFLAGS: -lgdal
#include "ogr_api.h"
#include "ogr_srs_api.h"
#include "cpl_error.h"
#include "cpl_conv.h"
#include <stdlib.h>
*/
import "C"
import (
	"strconv"
	"unsafe"
)

func init() {
	C.OGRRegisterAll()
}

type DataSource struct {
	v C.OGRDataSourceH
}

type Layer struct {
	v C.OGRLayerH
}

type Feature struct {
	v C.OGRFeatureH
}

type OgrError struct {
	message string
}

func (e *OgrError) Error() string {
	return e.message
}

func lastOgrError(fallback string) error {
	msg := C.CPLGetLastErrorMsg()
	if msg == nil {
		return &OgrError{fallback}
	}
	str := C.GoString(msg)
	if str == "" {
		return &OgrError{fallback}
	}
	return &OgrError{fallback + ": " + str}
}

// Open opens name read-only.
func Open(name string) (*DataSource, error) {
	namec := C.CString(name)
	defer C.free(unsafe.Pointer(namec))
	C.CPLErrorReset()
	ds := C.OGROpen(namec, 0, nil)
	if ds == nil {
		return nil, lastOgrError("failed to open " + name)
	}
	return &DataSource{ds}, nil
}

func (ds *DataSource) Close() {
	if ds.v != nil {
		C.OGR_DS_Destroy(ds.v)
		ds.v = nil
	}
}

func (ds *DataSource) LayerCount() int {
	return int(C.OGR_DS_GetLayerCount(ds.v))
}

func (ds *DataSource) Layer(idx int) (*Layer, error) {
	layer := C.OGR_DS_GetLayer(ds.v, C.int(idx))
	if layer == nil {
		return nil, lastOgrError("failed to get layer " + strconv.Itoa(idx))
	}
	return &Layer{layer}, nil
}

func (ds *DataSource) LayerByName(name string) (*Layer, error) {
	namec := C.CString(name)
	defer C.free(unsafe.Pointer(namec))
	layer := C.OGR_DS_GetLayerByName(ds.v, namec)
	if layer == nil {
		return nil, lastOgrError("failed to get layer " + name)
	}
	return &Layer{layer}, nil
}

func (ds *DataSource) LayerNames() []string {
	var names []string
	for i := 0; i < ds.LayerCount(); i++ {
		layer, err := ds.Layer(i)
		if err != nil {
			continue
		}
		names = append(names, layer.Name())
	}
	return names
}

func (layer *Layer) Name() string {
	return C.GoString(C.OGR_L_GetName(layer.v))
}

// FieldNames returns the attribute field names in definition order.
func (layer *Layer) FieldNames() []string {
	defn := C.OGR_L_GetLayerDefn(layer.v)
	count := int(C.OGR_FD_GetFieldCount(defn))
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		field := C.OGR_FD_GetFieldDefn(defn, C.int(i))
		names = append(names, C.GoString(C.OGR_Fld_GetNameRef(field)))
	}
	return names
}

// GeomFieldNames returns the geometry field names in definition order.
// Formats with a single anonymous geometry (e.g. Shapefile) return [""].
func (layer *Layer) GeomFieldNames() []string {
	defn := C.OGR_L_GetLayerDefn(layer.v)
	count := int(C.OGR_FD_GetGeomFieldCount(defn))
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		field := C.OGR_FD_GetGeomFieldDefn(defn, C.int(i))
		names = append(names, C.GoString(C.OGR_GFld_GetNameRef(field)))
	}
	return names
}

// EPSG returns the EPSG code of the layer spatial reference or 0.
func (layer *Layer) EPSG() int {
	srs := C.OGR_L_GetSpatialRef(layer.v)
	if srs == nil {
		return 0
	}
	return epsgCode(srs)
}

// FeatureCount returns the number of features or -1 if counting would
// require a full scan.
func (layer *Layer) FeatureCount() int64 {
	return int64(C.OGR_L_GetFeatureCount(layer.v, 0))
}

func (layer *Layer) SetSpatialFilterRect(minX, minY, maxX, maxY float64) {
	C.OGR_L_SetSpatialFilterRect(layer.v, C.double(minX), C.double(minY), C.double(maxX), C.double(maxY))
}

// ClearSpatialFilter removes the filter set by SetSpatialFilterRect.
func (layer *Layer) ClearSpatialFilter() {
	C.OGR_L_SetSpatialFilter(layer.v, nil)
}

func (layer *Layer) ResetReading() {
	C.OGR_L_ResetReading(layer.v)
}

// NextFeature returns the next feature or nil when the layer is
// exhausted. The feature needs to be destroyed by the caller.
func (layer *Layer) NextFeature() *Feature {
	feature := C.OGR_L_GetNextFeature(layer.v)
	if feature == nil {
		return nil
	}
	return &Feature{feature}
}

// FieldAsDouble returns the value of field idx and false if the field is
// unset or NULL.
func (f *Feature) FieldAsDouble(idx int) (float64, bool) {
	if C.OGR_F_IsFieldSetAndNotNull(f.v, C.int(idx)) == 0 {
		return 0, false
	}
	return float64(C.OGR_F_GetFieldAsDouble(f.v, C.int(idx))), true
}

// GeomFieldWkb returns geometry field idx as 2D WKB or nil if the
// feature has no geometry.
func (f *Feature) GeomFieldWkb(idx int) []byte {
	geom := C.OGR_F_GetGeomFieldRef(f.v, C.int(idx))
	if geom == nil {
		return nil
	}
	flat := C.OGR_G_Clone(geom)
	defer C.OGR_G_DestroyGeometry(flat)
	C.OGR_G_FlattenTo2D(flat)

	size := C.OGR_G_WkbSize(flat)
	if size <= 0 {
		return nil
	}
	buf := make([]byte, size)
	C.OGR_G_ExportToWkb(flat, C.wkbNDR, (*C.uchar)(&buf[0]))
	return buf
}

func (f *Feature) Destroy() {
	if f.v != nil {
		C.OGR_F_Destroy(f.v)
		f.v = nil
	}
}
