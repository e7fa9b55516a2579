package boundary

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omniscale/contour-osm/proj"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const ostbelgien = `ostbelgien
1
   6.051   50.4792
   6.1232  50.4792
   6.1232  50.5191
   6.051   50.5191
   6.051   50.4792
END
!1_hole
   6.08    50.49
   6.09    50.49
   6.09    50.50
   6.08    50.49
END
2

   7.0     51.0
   7.5     51.0
   7.5     51.5
END
END
`

func TestParse(t *testing.T) {
	b, err := Parse("ostbelgien.poly", strings.NewReader(ostbelgien))
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "ostbelgien" {
		t.Fatalf("unexpected name %q", b.Name)
	}
	polygons := b.Polygons()
	if len(polygons) != 2 {
		t.Fatalf("expected two polygons, got %d", len(polygons))
	}
	if len(polygons[0]) != 2 {
		t.Fatalf("expected polygon with hole, got %d rings", len(polygons[0]))
	}
	if len(polygons[1]) != 1 {
		t.Fatalf("expected polygon without hole, got %d rings", len(polygons[1]))
	}
	for _, poly := range polygons {
		for _, ring := range poly {
			if !ring.Closed() {
				t.Errorf("ring not closed %v", ring)
			}
		}
	}
	// second polygon was not closed in the file
	if len(polygons[1][0]) != 4 {
		t.Fatalf("unexpected ring %v", polygons[1][0])
	}
}

func TestParseRoundTrip(t *testing.T) {
	b, err := Parse("ostbelgien.poly", strings.NewReader(ostbelgien))
	if err != nil {
		t.Fatal(err)
	}
	g, err := b.Geometry(proj.WGS84)
	if err != nil {
		t.Fatal(err)
	}
	expected := orb.Ring{
		{6.051, 50.4792},
		{6.1232, 50.4792},
		{6.1232, 50.5191},
		{6.051, 50.5191},
		{6.051, 50.4792},
	}
	if !orb.Equal(g[0][0], expected) {
		t.Fatalf("%v != %v", g[0][0], expected)
	}

	// modifying the result does not change the boundary
	g[0][0][0][0] = 0
	if b.Polygons()[0][0][0][0] != 6.051 {
		t.Fatal("geometry aliases boundary")
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		poly string
		line int
	}{
		{"name\n1\n 6.0 50.0\n 6.x 50.1\nEND\nEND\n", 4},
		{"name\n1\n 6.0 50.0\n 6.1 fifty\nEND\nEND\n", 4},
		{"name\n1\n 6.0\nEND\nEND\n", 3},
	} {
		_, err := Parse("test.poly", strings.NewReader(tc.poly))
		if err == nil {
			t.Errorf("expected error for %q", tc.poly)
			continue
		}
		perr, ok := errors.Cause(err).(*ParseError)
		if !ok {
			perr, ok = err.(*ParseError)
		}
		if !ok {
			t.Errorf("expected ParseError, got %T %v", err, err)
			continue
		}
		if perr.Line != tc.line || perr.File != "test.poly" {
			t.Errorf("expected error in line %d, got %v", tc.line, perr)
		}
	}
}

func TestFromBoundingBox(t *testing.T) {
	b := FromBoundingBox(6.051, 6.1232, 50.4792, 50.5191)
	if b.Name != "bbox" {
		t.Fatal(b.Name)
	}
	bound := b.Bound()
	if bound.Min != (orb.Point{6.051, 50.4792}) || bound.Max != (orb.Point{6.1232, 50.5191}) {
		t.Fatalf("unexpected bound %v", bound)
	}
	ring := b.Polygons()[0][0]
	if len(ring) != 5 || !ring.Closed() {
		t.Fatalf("unexpected ring %v", ring)
	}
}

func TestGeometryReprojected(t *testing.T) {
	b := FromBoundingBox(0, 1, 0, 1)

	g, err := b.Geometry(proj.SRS{EPSG: 4326, AxisOrder: proj.LatLon})
	if err != nil {
		t.Fatal(err)
	}
	if g[0][0][1] != (orb.Point{0, 1}) {
		t.Fatalf("axis order not swapped: %v", g[0][0])
	}

	g, err = b.Geometry(proj.EPSG(3857))
	if err != nil {
		t.Fatal(err)
	}
	p := g[0][0][2]
	x, y := proj.WgsToMerc(1, 1)
	if math.Abs(p[0]-x) > 1e-6 || math.Abs(p[1]-y) > 1e-6 {
		t.Fatalf("%v != %v %v", p, x, y)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	polyFile := filepath.Join(dir, "area.poly")
	if err := os.WriteFile(polyFile, []byte(ostbelgien), 0644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(polyFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Polygons()) != 2 {
		t.Fatal("poly-file not loaded")
	}

	jsonFile := filepath.Join(dir, "area.geojson")
	geojson := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {
			"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}},
		{"type": "Feature", "properties": {}, "geometry": {
			"type": "MultiPolygon", "coordinates": [[[[5, 5], [6, 5], [6, 6], [5, 5]]]]}}
	]}`
	if err := os.WriteFile(jsonFile, []byte(geojson), 0644); err != nil {
		t.Fatal(err)
	}
	b, err = Load(jsonFile)
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "area" || len(b.Polygons()) != 2 {
		t.Fatalf("unexpected boundary %s %v", b.Name, b.Polygons())
	}

	if _, err := Load(filepath.Join(dir, "missing.poly")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
