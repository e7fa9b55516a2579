/*
Package proj reprojects geometries between EPSG reference systems.

Coordinates are transformed in the traditional GIS order (easting or
longitude first). The AxisOrder of the source and destination SRS
decides whether pairs are swapped before and after the numeric
transformation.
*/
package proj

import (
	"fmt"
	"strings"
)

type AxisOrder int

const (
	LonLat AxisOrder = iota
	LatLon
)

func (a AxisOrder) String() string {
	if a == LatLon {
		return "latlon"
	}
	return "lonlat"
}

func ParseAxisOrder(s string) (AxisOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lonlat", "xy":
		return LonLat, nil
	case "latlon", "yx":
		return LatLon, nil
	}
	return LonLat, fmt.Errorf("unknown axis order %q, expected lonlat or latlon", s)
}

// SRS is a reference system identified by its EPSG code together with
// the order in which coordinates are stored.
type SRS struct {
	EPSG      int
	AxisOrder AxisOrder
}

var WGS84 = SRS{EPSG: 4326, AxisOrder: LonLat}

// EPSG returns the SRS for code with lon/lat axis order.
func EPSG(code int) SRS {
	return SRS{EPSG: code}
}

func (s SRS) String() string {
	if s.AxisOrder == LatLon {
		return fmt.Sprintf("EPSG:%d (latlon)", s.EPSG)
	}
	return fmt.Sprintf("EPSG:%d", s.EPSG)
}

type TransformError struct {
	Src, Dst SRS
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transforming from %s to %s: %s", e.Src, e.Dst, e.Err)
}

func (e *TransformError) Cause() error {
	return e.Err
}
