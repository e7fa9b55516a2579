/*
Package cache stores OSM nodes and ways on disk until they are written.

A Store implements writer.Store for outputs that do not fit into memory.
Elements are keyed by their negated ID, so that iteration returns the
negative IDs of the writer in insertion order.
*/
package cache

import (
	bin "encoding/binary"
	"os"
	"path/filepath"

	"github.com/omniscale/contour-osm/cache/binary"
	"github.com/omniscale/contour-osm/log"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

const (
	Badger  = "badger"
	LevelDB = "leveldb"
)

// Backends lists all supported backends, the first is the default.
var Backends = []string{Badger, LevelDB}

type kv interface {
	put(key, value []byte) error
	iter(fn func(key, value []byte) error) error
	close() error
}

type Store struct {
	dir   string
	nodes kv
	ways  kv
}

// Open creates a store in a new subdirectory of dir with backend. An empty
// backend selects badger. dir is created if it does not exist. Close only
// removes the subdirectory, dir and other files in it are kept.
func Open(dir, backend string) (*Store, error) {
	if backend == "" {
		backend = Badger
	}
	var open func(string) (kv, error)
	switch backend {
	case Badger:
		open = openBadger
	case LevelDB:
		open = openLevelDB
	default:
		return nil, errors.Errorf("unknown cache backend %q", backend)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	tmp, err := os.MkdirTemp(dir, "contour-osm-")
	if err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	s := &Store{dir: tmp}
	if s.nodes, err = open(filepath.Join(tmp, "nodes")); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "opening nodes cache")
	}
	if s.ways, err = open(filepath.Join(tmp, "ways")); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "opening ways cache")
	}
	log.Printf("[debug] opened %s cache in %s", backend, tmp)
	return s, nil
}

func idToKey(id int64) []byte {
	key := make([]byte, 8)
	bin.BigEndian.PutUint64(key, uint64(-id))
	return key
}

func keyToID(key []byte) int64 {
	return -int64(bin.BigEndian.Uint64(key))
}

func (s *Store) PutNode(node *osm.Node) error {
	data, err := binary.MarshalNode(node)
	if err != nil {
		return err
	}
	return s.nodes.put(idToKey(node.ID), data)
}

func (s *Store) PutWay(way *osm.Way) error {
	data, err := binary.MarshalWay(way)
	if err != nil {
		return err
	}
	return s.ways.put(idToKey(way.ID), data)
}

func (s *Store) IterNodes(fn func(*osm.Node) error) error {
	return s.nodes.iter(func(key, value []byte) error {
		node, err := binary.UnmarshalNode(value)
		if err != nil {
			return err
		}
		node.ID = keyToID(key)
		return fn(node)
	})
}

func (s *Store) IterWays(fn func(*osm.Way) error) error {
	return s.ways.iter(func(key, value []byte) error {
		way, err := binary.UnmarshalWay(value)
		if err != nil {
			return err
		}
		way.ID = keyToID(key)
		return fn(way)
	})
}

// Close closes the databases and removes the directory created by Open.
func (s *Store) Close() error {
	var err error
	for _, db := range []*kv{&s.nodes, &s.ways} {
		if *db == nil {
			continue
		}
		if cerr := (*db).close(); cerr != nil && err == nil {
			err = cerr
		}
		*db = nil
	}
	if s.dir != "" {
		if rerr := os.RemoveAll(s.dir); rerr != nil && err == nil {
			err = errors.Wrap(rerr, "removing cache dir")
		}
		s.dir = ""
	}
	return err
}
