package mapping

import (
	"strconv"

	osm "github.com/omniscale/go-osm"
)

type Class int

const (
	Minor Class = iota
	Medium
	Major
)

func (c Class) String() string {
	switch c {
	case Major:
		return "major"
	case Medium:
		return "medium"
	}
	return "minor"
}

// Tag returns the contour_ext value of the class.
func (c Class) Tag() string {
	return "elevation_" + c.String()
}

// Classifier holds the contour intervals. An interval of zero or less
// never matches.
type Classifier struct {
	Major  int64
	Medium int64
}

var DefaultClassifier = Classifier{Major: 500, Medium: 100}

func (c Classifier) Classify(elevation float64) Class {
	e := int64(elevation)
	if c.Major > 0 && e%c.Major == 0 {
		return Major
	}
	if c.Medium > 0 && e%c.Medium == 0 {
		return Medium
	}
	return Minor
}

// Tags returns the tags for a contour line with elevation.
func (c Classifier) Tags(elevation float64) osm.Tags {
	return osm.Tags{
		"ele":         FormatElevation(elevation),
		"contour":     "elevation",
		"contour_ext": c.Classify(elevation).Tag(),
	}
}

// FormatElevation formats elevation without trailing zeros.
func FormatElevation(elevation float64) string {
	return strconv.FormatFloat(elevation, 'f', -1, 64)
}
