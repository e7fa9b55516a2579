package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

func NewRpsCounter() *RpsCounter {
	return &RpsCounter{
		mu: &sync.Mutex{},
	}
}

// RpsCounter counts records and the records per second between the first
// Add and the last Tick.
type RpsCounter struct {
	counter int64
	start   time.Time
	stop    time.Time
	updated bool
	mu      *sync.Mutex
}

func (r *RpsCounter) Add(n int) {
	atomic.AddInt64(&r.counter, int64(n))
	if n > 0 {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.start.IsZero() {
			r.start = time.Now()
		}
		r.updated = true
	}
}

func (r *RpsCounter) Value() int64 {
	return atomic.LoadInt64(&r.counter)
}

func (r *RpsCounter) Rps() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	dur := r.stop.Sub(r.start).Seconds()
	if dur <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&r.counter)) / dur
}

func (r *RpsCounter) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updated {
		r.stop = time.Now()
		r.updated = false
	}
}
