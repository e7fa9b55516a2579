package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/omniscale/contour-osm/cache"
	"github.com/omniscale/contour-osm/proj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	opts, err := parse([]string{"--datasource", "contours.shp"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "contours.shp", opts.Datasource)
	assert.Equal(t, proj.WGS84, opts.SourceSRS())
	assert.Equal(t, proj.WGS84, opts.DestSRS())
	assert.Equal(t, "contour.osm", opts.Output)
	assert.Equal(t, int64(500), opts.Major)
	assert.Equal(t, int64(100), opts.Medium)
	assert.Equal(t, "badger", opts.CacheBackend)
	_, _, _, _, ok := opts.BoundingBox()
	assert.False(t, ok)
}

func TestParseFlags(t *testing.T) {
	opts, err := parse([]string{
		"-datasource", "PG:dbname=dem",
		"-layername", "contours",
		"-layer-feature", "height",
		"-layer-geom", "geom",
		"-src-srs", "25832",
		"-src-axis", "latlon",
		"-dst-srs", "3857",
		"-bbox", "6.051,6.1232,50.4792,50.5191",
		"-major", "100",
		"-medium", "20",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "contours", opts.Layer)
	assert.Equal(t, "height", opts.FeatureField)
	assert.Equal(t, "geom", opts.GeometryField)
	assert.Equal(t, proj.SRS{EPSG: 25832, AxisOrder: proj.LatLon}, opts.SourceSRS())
	assert.Equal(t, proj.EPSG(3857), opts.DestSRS())
	minLon, maxLon, minLat, maxLat, ok := opts.BoundingBox()
	assert.True(t, ok)
	assert.Equal(t, []float64{6.051, 6.1232, 50.4792, 50.5191}, []float64{minLon, maxLon, minLat, maxLat})
	assert.Equal(t, int64(100), opts.Major)
	assert.Equal(t, int64(20), opts.Medium)
}

func TestParseCacheBackends(t *testing.T) {
	for _, backend := range cache.Backends {
		opts, err := parse([]string{"-datasource", "x.shp", "-cachebackend", backend}, io.Discard)
		require.NoError(t, err, backend)
		assert.Equal(t, backend, opts.CacheBackend)
	}
}

func TestParseErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"-datasource", "x.shp", "-src-axis", "north"},
		{"-datasource", "x.shp", "-bbox", "1,2,3"},
		{"-datasource", "x.shp", "-bbox", "2,1,3,4"},
		{"-datasource", "x.shp", "-bbox", "1,2,3,4", "-poly", "area.poly"},
		{"-datasource", "x.shp", "-cachebackend", "rocksdb"},
		{"-datasource", "x.shp", "-dst-srs", "0"},
		{"-datasource", "x.shp", "-major", "-1"},
		{"-datasource", "x.shp", "extra"},
	} {
		_, err := parse(args, io.Discard)
		if _, ok := err.(Errors); !ok {
			t.Errorf("expected Errors for %v, got %#v", args, err)
		}
	}

	_, err := parse([]string{"-unknown"}, io.Discard)
	assert.Error(t, err)
	_, err = parse([]string{"-help"}, io.Discard)
	assert.Equal(t, flag.ErrHelp, err)
}

func TestParseConfigFile(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "contour-osm.yaml")
	require.NoError(t, os.WriteFile(conf, []byte(`
datasource: PG:dbname=dem
layer: contours
fields:
  elevation: height
src_srs: 0
dst_srs: 3857
output: contours.osm.gz
classification:
  major: 100
  medium: 20
cache:
  dir: /tmp/contour-osm
  backend: leveldb
`), 0644))

	opts, err := parse([]string{"-config", conf, "-layername", "other", "-medium", "50"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "PG:dbname=dem", opts.Datasource)
	// command line wins
	assert.Equal(t, "other", opts.Layer)
	assert.Equal(t, int64(50), opts.Medium)

	assert.Equal(t, "height", opts.FeatureField)
	assert.Equal(t, 0, opts.SrcSRS)
	assert.Equal(t, 3857, opts.DstSRS)
	assert.Equal(t, "contours.osm.gz", opts.Output)
	assert.Equal(t, int64(100), opts.Major)
	assert.Equal(t, "/tmp/contour-osm", opts.CacheDir)
	assert.Equal(t, "leveldb", opts.CacheBackend)
}

func TestParseInvalidConfigFile(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "contour-osm.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("datasource: x\nunknown_key: 1\n"), 0644))
	_, err := parse([]string{"-config", conf}, io.Discard)
	assert.Error(t, err)

	_, err = parse([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, io.Discard)
	assert.Error(t, err)
}
