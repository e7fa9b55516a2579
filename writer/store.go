package writer

import (
	osm "github.com/omniscale/go-osm"
)

// Store holds the nodes and ways of an OsmWriter until they are written.
// Iteration order is insertion order.
type Store interface {
	PutNode(*osm.Node) error
	PutWay(*osm.Way) error
	IterNodes(func(*osm.Node) error) error
	IterWays(func(*osm.Way) error) error
	Close() error
}

type memStore struct {
	nodes []osm.Node
	ways  []osm.Way
}

// NewMemStore returns a Store that keeps all elements in memory.
func NewMemStore() Store {
	return &memStore{}
}

func (s *memStore) PutNode(n *osm.Node) error {
	s.nodes = append(s.nodes, *n)
	return nil
}

func (s *memStore) PutWay(w *osm.Way) error {
	s.ways = append(s.ways, *w)
	return nil
}

func (s *memStore) IterNodes(fn func(*osm.Node) error) error {
	for i := range s.nodes {
		if err := fn(&s.nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) IterWays(fn func(*osm.Way) error) error {
	for i := range s.ways {
		if err := fn(&s.ways[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) Close() error {
	s.nodes = nil
	s.ways = nil
	return nil
}
