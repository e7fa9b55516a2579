// Package log writes leveled log lines to stderr.
//
// The level is taken from the first [level] tag of each line, e.g.
// log.Printf("[warn] more than one layer found"). Lines without a known
// tag are always written.
package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var DefaultLogger *log.Logger
var defaultFilter *levelFilter

type Level string

const (
	LDebug = Level("debug")
	LStep  = Level("step")
	LInfo  = Level("info")
	LWarn  = Level("warn")
	LError = Level("error")
	LFatal = Level("fatal")
)

var levelRank = map[Level]int{
	LDebug: 0,
	LStep:  1,
	LInfo:  2,
	LWarn:  3,
	LError: 4,
	LFatal: 5,
}

func init() {
	defaultFilter = &levelFilter{
		start:    time.Now(),
		writer:   os.Stderr,
		minLevel: levelRank[LStep],
	}
	DefaultLogger = log.New(defaultFilter, "", 0)
}

// levelFilter drops lines below minLevel and prefixes all others with
// the wall clock and the elapsed time since start.
type levelFilter struct {
	mu       sync.Mutex
	start    time.Time
	writer   io.Writer
	minLevel int
}

// lineLevel returns the rank of the first [tag] in line, or -1 if the
// line has no known tag.
func lineLevel(line []byte) int {
	x := bytes.IndexByte(line, '[')
	if x < 0 {
		return -1
	}
	y := bytes.IndexByte(line[x:], ']')
	if y < 0 {
		return -1
	}
	rank, ok := levelRank[Level(line[x+1:x+y])]
	if !ok {
		return -1
	}
	return rank
}

func (f *levelFilter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rank := lineLevel(p); rank >= 0 && rank < f.minLevel {
		return len(p), nil
	}

	now := time.Now()
	elapsed := now.Sub(f.start).Truncate(time.Second)
	h := int(elapsed.Hours())
	m := int(elapsed.Minutes()) % 60
	s := int(elapsed.Seconds()) % 60

	// log.Logger calls Write once per line
	b := bytes.Buffer{}
	fmt.Fprintf(&b, "[%s] %d:%02d:%02d ", now.Format(time.RFC3339), h, m, s)
	b.Write(p)
	if _, err := f.writer.Write(b.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetMinLevel hides all tagged lines below lvl.
func SetMinLevel(lvl Level) {
	rank, ok := levelRank[lvl]
	if !ok {
		return
	}
	defaultFilter.mu.Lock()
	defaultFilter.minLevel = rank
	defaultFilter.mu.Unlock()
}

// SetOutput redirects all log lines to w. Used by tests to capture
// warnings.
func SetOutput(w io.Writer) {
	defaultFilter.mu.Lock()
	defaultFilter.writer = w
	defaultFilter.mu.Unlock()
}

func Println(v ...interface{}) {
	DefaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	DefaultLogger.Printf(format, v...)
}

func Fatal(v ...interface{}) {
	DefaultLogger.Fatal(v...)
}

func Fatalf(format string, v ...interface{}) {
	DefaultLogger.Fatalf(format, v...)
}

// Step logs the start of name and returns a func that logs the
// duration when called.
func Step(name string) func() {
	start := time.Now()
	Println("[step] Starting:", name)
	return func() {
		Printf("[step] Finished: %s in %s", name, time.Since(start).Round(time.Millisecond))
	}
}
