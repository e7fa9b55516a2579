/*
Package mapping maps contour elevations to OSM tags.

Contours are classified by the integer part of their elevation: multiples of
the major interval are major contours, remaining multiples of the medium
interval are medium contours, everything else is minor. The class is written
as contour_ext tag, next to ele and contour=elevation.
*/
package mapping
