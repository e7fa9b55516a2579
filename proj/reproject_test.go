package proj

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestReprojectIdentity(t *testing.T) {
	r, err := NewReprojector(WGS84, WGS84, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if !r.IsIdentity() {
		t.Fatal("4326 -> 4326 is not identity")
	}

	ls := orb.LineString{{6.05, 50.48}, {6.12, 50.51}}
	g, err := r.Reproject(ls)
	if err != nil {
		t.Fatal(err)
	}
	if !orb.Equal(g, ls) {
		t.Fatalf("%v != %v", g, ls)
	}
	// result must not alias the input
	g.(orb.LineString)[0][0] = 99
	if ls[0][0] != 6.05 {
		t.Fatal("reprojected geometry aliases input")
	}

	g, err = r.Reproject(nil)
	if g != nil || err != nil {
		t.Fatalf("expected nil for nil geometry, got %v %v", g, err)
	}

	g, err = r.Reproject(orb.LineString{})
	if err != nil || len(g.(orb.LineString)) != 0 {
		t.Fatalf("empty geometry changed: %v %v", g, err)
	}
}

func TestReprojectAxisOrder(t *testing.T) {
	src := SRS{EPSG: 4326, AxisOrder: LatLon}
	r, err := NewReprojector(src, WGS84, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.IsIdentity() {
		t.Fatal("differing axis order is identity")
	}

	// stored as lat/lon, output must be lon/lat
	g, err := r.Reproject(orb.LineString{{50.48, 6.05}, {50.51, 6.12}})
	if err != nil {
		t.Fatal(err)
	}
	expected := orb.LineString{{6.05, 50.48}, {6.12, 50.51}}
	if !orb.Equal(g, expected) {
		t.Fatalf("%v != %v", g, expected)
	}

	// same axis order on both sides, no swap
	r2, err := NewReprojector(src, src, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	g, err = r2.Reproject(orb.Point{50.48, 6.05})
	if err != nil {
		t.Fatal(err)
	}
	if g != (orb.Point{50.48, 6.05}) {
		t.Fatalf("unexpected swap %v", g)
	}
}

func TestReprojectMerc(t *testing.T) {
	r, err := NewReprojector(WGS84, EPSG(3857), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	g, err := r.Reproject(orb.Polygon{{{8, 53}, {9, 53}, {9, 54}, {8, 53}}})
	if err != nil {
		t.Fatal(err)
	}
	p := g.(orb.Polygon)[0][0]
	if math.Abs(p[0]-890555.9263461898) > 1e-6 || math.Abs(p[1]-6982997.920389788) > 1e-6 {
		t.Fatalf("%v", p)
	}

	back, err := NewReprojector(EPSG(3857), WGS84, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer back.Close()
	g, err = back.Reproject(g)
	if err != nil {
		t.Fatal(err)
	}
	p = g.(orb.Polygon)[0][2]
	if math.Abs(p[0]-9) > 1e-6 || math.Abs(p[1]-54) > 1e-6 {
		t.Fatalf("%v", p)
	}
}

func TestReprojectFallback(t *testing.T) {
	r, err := NewReprojector(SRS{}, WGS84, 3857)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Src().EPSG != 3857 {
		t.Fatalf("expected declared srs, got %s", r.Src())
	}

	r2, err := NewReprojector(SRS{}, SRS{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	if r2.Src() != WGS84 || r2.Dst() != WGS84 {
		t.Fatalf("expected wgs84, got %s %s", r2.Src(), r2.Dst())
	}
}

func TestReprojectOsr(t *testing.T) {
	// ETRS89 / UTM zone 32N, central meridian 9
	r, err := NewReprojector(WGS84, EPSG(25832), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	g, err := r.Reproject(orb.MultiLineString{{{9, 0}, {9, 0}}})
	if err != nil {
		t.Fatal(err)
	}
	p := g.(orb.MultiLineString)[0][0]
	if math.Abs(p[0]-500000) > 1e-3 || math.Abs(p[1]) > 1e-3 {
		t.Fatalf("%v", p)
	}

	if _, err := NewReprojector(WGS84, EPSG(999999), 0); err == nil {
		t.Fatal("expected error for unknown EPSG code")
	}
}

func TestParseAxisOrder(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected AxisOrder
		err      bool
	}{
		{"", LonLat, false},
		{"lonlat", LonLat, false},
		{"LatLon", LatLon, false},
		{"yx", LatLon, false},
		{"north", LonLat, true},
	} {
		a, err := ParseAxisOrder(tc.in)
		if (err != nil) != tc.err {
			t.Errorf("%q: unexpected error %v", tc.in, err)
		}
		if a != tc.expected {
			t.Errorf("%q: %s != %s", tc.in, a, tc.expected)
		}
	}
}

func TestAuthorityAxisOrder(t *testing.T) {
	for epsg, expected := range map[int]AxisOrder{
		4326:  LatLon,
		4258:  LatLon,
		3857:  LonLat,
		25832: LonLat,
	} {
		a, err := AuthorityAxisOrder(epsg)
		if err != nil {
			t.Fatal(err)
		}
		if a != expected {
			t.Errorf("EPSG:%d: %s != %s", epsg, a, expected)
		}
	}
	if _, err := AuthorityAxisOrder(999999); err == nil {
		t.Fatal("expected error for unknown EPSG code")
	}
}
