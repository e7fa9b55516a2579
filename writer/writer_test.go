package writer

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/omniscale/contour-osm/mapping"
	"github.com/paulmach/orb"
	posm "github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOSM(t *testing.T, r io.Reader) ([]*posm.Node, []*posm.Way) {
	t.Helper()
	scanner := osmxml.New(context.Background(), r)
	defer scanner.Close()

	var nodes []*posm.Node
	var ways []*posm.Way
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *posm.Node:
			nodes = append(nodes, o)
		case *posm.Way:
			ways = append(ways, o)
		default:
			t.Fatalf("unexpected object %T", o)
		}
	}
	require.NoError(t, scanner.Err())
	return nodes, ways
}

func refs(way *posm.Way) []int64 {
	var result []int64
	for _, nd := range way.Nodes {
		result = append(result, int64(nd.ID))
	}
	return result
}

func TestAddGeometry(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, NewMemStore(), mapping.DefaultClassifier)

	require.NoError(t, w.AddGeometry(500, orb.LineString{{0.1, 0.1}, {0.5, 0.5}, {0.9, 0.2}}))
	require.NoError(t, w.AddGeometry(150, orb.LineString{{1, 2}, {3, 4}}))
	require.NoError(t, w.Flush())

	nodes, ways := readOSM(t, buf)
	require.Len(t, nodes, 5)
	require.Len(t, ways, 2)

	assert.Equal(t, posm.NodeID(-1), nodes[0].ID)
	assert.Equal(t, posm.NodeID(-3), nodes[2].ID)
	assert.Equal(t, posm.NodeID(-5), nodes[3].ID)
	assert.Equal(t, 0.9, nodes[2].Lon)
	assert.Equal(t, 0.2, nodes[2].Lat)

	assert.Equal(t, posm.WayID(-4), ways[0].ID)
	assert.Equal(t, posm.WayID(-7), ways[1].ID)
	assert.Equal(t, []int64{-1, -2, -3}, refs(ways[0]))
	assert.Equal(t, []int64{-5, -6}, refs(ways[1]))

	assert.Equal(t, "500", ways[0].Tags.Find("ele"))
	assert.Equal(t, "elevation", ways[0].Tags.Find("contour"))
	assert.Equal(t, "elevation_major", ways[0].Tags.Find("contour_ext"))
	assert.Equal(t, "150", ways[1].Tags.Find("ele"))
	assert.Equal(t, "elevation_minor", ways[1].Tags.Find("contour_ext"))

	n, wy := w.Stats()
	assert.Equal(t, int64(5), n)
	assert.Equal(t, int64(2), wy)
}

func TestAddGeometryParts(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, NewMemStore(), mapping.DefaultClassifier)

	poly := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {3, 2}, {3, 3}, {2, 2}},
	}
	require.NoError(t, w.AddGeometry(100, poly))
	require.NoError(t, w.AddGeometry(100, orb.MultiLineString{{{0, 0}, {1, 1}}, {}, {{2, 2}, {3, 3}}}))
	require.NoError(t, w.AddGeometry(100, orb.Point{1, 1}))
	require.NoError(t, w.AddGeometry(100, orb.LineString{}))
	require.NoError(t, w.AddGeometry(100, nil))
	require.NoError(t, w.Flush())

	nodes, ways := readOSM(t, buf)
	assert.Len(t, nodes, 5+4+2+2)
	require.Len(t, ways, 4)
	// closed rings get a node for each vertex
	assert.Len(t, ways[0].Nodes, 5)
	assert.NotEqual(t, ways[0].Nodes[0].ID, ways[0].Nodes[4].ID)
	assert.Len(t, ways[1].Nodes, 4)
}

// V vertices in N geometries result in V nodes and N ways, each way
// references exactly the nodes added before it.
func TestNodeAndWayCounts(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, NewMemStore(), mapping.DefaultClassifier)

	vertices := 0
	for i := 0; i < 50; i++ {
		var ls orb.LineString
		for j := 0; j <= i%7+1; j++ {
			ls = append(ls, orb.Point{float64(i), float64(j)})
		}
		vertices += len(ls)
		require.NoError(t, w.AddGeometry(float64(i*10), ls))
	}
	require.NoError(t, w.Flush())

	nodes, ways := readOSM(t, buf)
	require.Len(t, nodes, vertices)
	require.Len(t, ways, 50)

	seen := map[int64]bool{}
	nodeIdx := 0
	for _, way := range ways {
		for _, nd := range way.Nodes {
			require.Equal(t, nodes[nodeIdx].ID, nd.ID)
			require.False(t, seen[int64(nd.ID)], "node %d reused", nd.ID)
			seen[int64(nd.ID)] = true
			nodeIdx++
		}
		// way ID follows the IDs of its nodes
		require.Equal(t, int64(way.Nodes[len(way.Nodes)-1].ID)-1, int64(way.ID))
	}
	assert.Equal(t, vertices, nodeIdx)
}

func TestFlushEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, NewMemStore(), mapping.DefaultClassifier)
	require.NoError(t, w.Flush())

	var doc struct {
		XMLName   xml.Name   `xml:"osm"`
		Version   string     `xml:"version,attr"`
		Generator string     `xml:"generator,attr"`
		Upload    string     `xml:"upload,attr"`
		Nodes     []struct{} `xml:"node"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "0.6", doc.Version)
	assert.Equal(t, "false", doc.Upload)
	assert.True(t, strings.HasPrefix(doc.Generator, "contour-osm "))
	assert.Empty(t, doc.Nodes)
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
}

func TestFlushTwice(t *testing.T) {
	w := New(io.Discard, NewMemStore(), mapping.DefaultClassifier)
	require.NoError(t, w.Flush())
	assert.Equal(t, ErrFlushed, w.Flush())
	assert.Equal(t, ErrFlushed, w.AddGeometry(100, orb.LineString{{0, 0}, {1, 1}}))
}

func TestCreateGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contour.osm.gz")
	w, err := Create(path, NewMemStore(), mapping.DefaultClassifier)
	require.NoError(t, err)
	require.NoError(t, w.AddGeometry(1000, orb.LineString{{7, 50}, {7.1, 50.1}}))
	require.NoError(t, w.Flush())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	nodes, ways := readOSM(t, gz)
	assert.Len(t, nodes, 2)
	require.Len(t, ways, 1)
	assert.Equal(t, "elevation_major", ways[0].Tags.Find("contour_ext"))
}

func TestCreatePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contour.osm")
	w, err := Create(path, NewMemStore(), mapping.Classifier{Major: 100, Medium: 20})
	require.NoError(t, err)
	require.NoError(t, w.AddGeometry(40, orb.LineString{{7, 50}, {7.1, 50.1}}))
	require.NoError(t, w.Flush())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, ways := readOSM(t, f)
	require.Len(t, ways, 1)
	assert.Equal(t, "elevation_medium", ways[0].Tags.Find("contour_ext"))
}

func TestCloseWithoutFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contour.osm.gz")
	w, err := Create(path, NewMemStore(), mapping.DefaultClassifier)
	require.NoError(t, err)
	require.NoError(t, w.AddGeometry(500, orb.LineString{{7, 50}, {7.1, 50.1}}))

	require.NoError(t, w.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "incomplete output not removed")
	assert.Equal(t, ErrFlushed, w.AddGeometry(500, orb.LineString{{7, 50}, {7.1, 50.1}}))
	assert.Equal(t, ErrFlushed, w.Flush())
	assert.NoError(t, w.Close())
}

func TestCloseAfterFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contour.osm")
	w, err := Create(path, NewMemStore(), mapping.DefaultClassifier)
	require.NoError(t, err)
	require.NoError(t, w.AddGeometry(500, orb.LineString{{7, 50}, {7.1, 50.1}}))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, ways := readOSM(t, f)
	assert.Len(t, ways, 1)
}
