package boundary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ParseError is returned for malformed lines in poly-files.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Err)
}

func (e *ParseError) Cause() error {
	return e.Err
}

// FromFile reads an Osmosis poly-file.
func FromFile(path string) (*Boundary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening poly-file")
	}
	defer f.Close()
	return Parse(path, f)
}

type polyReader struct {
	file    string
	scanner *bufio.Scanner
	line    int
}

func (r *polyReader) next() (string, bool) {
	if !r.scanner.Scan() {
		return "", false
	}
	r.line++
	return r.scanner.Text(), true
}

func (r *polyReader) errorf(format string, args ...interface{}) error {
	return &ParseError{File: r.file, Line: r.line, Err: fmt.Errorf(format, args...)}
}

// Parse reads a poly-file from r. file is only used in errors.
//
// The first line is the name, followed by sections of `lon lat` lines,
// each introduced by a section name and terminated by END. Sections with
// a name starting with ! are holes of the preceding polygon. A single END
// instead of a section name terminates the file.
func Parse(file string, r io.Reader) (*Boundary, error) {
	pr := &polyReader{file: file, scanner: bufio.NewScanner(r)}

	name, ok := pr.next()
	if !ok {
		if err := pr.scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "reading poly-file")
		}
		return nil, pr.errorf("empty poly-file")
	}

	var polygons orb.MultiPolygon
	for {
		section, ok := pr.next()
		if !ok {
			break
		}
		section = strings.TrimSpace(section)
		if section == "END" {
			break
		}
		if section == "" {
			continue
		}
		ring, err := pr.readRing()
		if err != nil {
			return nil, err
		}
		if len(ring) == 0 {
			continue
		}
		if strings.HasPrefix(section, "!") && len(polygons) > 0 {
			last := len(polygons) - 1
			polygons[last] = append(polygons[last], ring)
		} else {
			polygons = append(polygons, orb.Polygon{ring})
		}
	}
	if err := pr.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading poly-file")
	}
	return newBoundary(strings.TrimSpace(name), polygons), nil
}

func (r *polyReader) readRing() (orb.Ring, error) {
	var ring orb.Ring
	for {
		line, ok := r.next()
		if !ok || strings.HasPrefix(strings.TrimSpace(line), "END") {
			return ring, nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, r.errorf("expected lon lat, got %q", line)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, r.errorf("invalid longitude %q", fields[0])
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, r.errorf("invalid latitude %q", fields[1])
		}
		ring = append(ring, orb.Point{lon, lat})
	}
}
