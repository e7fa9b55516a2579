/*
Package stats counts the features and elements of a conversion run.
*/
package stats

import (
	"fmt"
	"sync/atomic"
)

type Statistics struct {
	features *RpsCounter
	skipped  int64
	nodes    int64
	ways     int64
}

func New() *Statistics {
	return &Statistics{features: NewRpsCounter()}
}

// AddFeature counts one feature read from the source.
func (s *Statistics) AddFeature() {
	s.features.Add(1)
	s.features.Tick()
}

// AddSkipped counts one feature that was not written.
func (s *Statistics) AddSkipped() {
	atomic.AddInt64(&s.skipped, 1)
}

func (s *Statistics) SetElements(nodes, ways int64) {
	atomic.StoreInt64(&s.nodes, nodes)
	atomic.StoreInt64(&s.ways, ways)
}

func (s *Statistics) Features() int64 {
	return s.features.Value()
}

func (s *Statistics) Skipped() int64 {
	return atomic.LoadInt64(&s.skipped)
}

func (s *Statistics) String() string {
	return fmt.Sprintf("Features: %d (%.0f/s) Skipped: %d Nodes: %d Ways: %d",
		s.features.Value(),
		s.features.Rps(),
		s.Skipped(),
		atomic.LoadInt64(&s.nodes),
		atomic.LoadInt64(&s.ways),
	)
}
