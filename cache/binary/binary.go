/*
Package binary encodes nodes and ways for the element cache.

Values are written with the varint primitives of gogo/protobuf. Coordinates
are stored as raw float64 bits since they are not necessarily WGS84, way
refs are delta encoded. IDs are not part of the value, they are the keys of
the cache.
*/
package binary

import (
	"math"
	"sort"

	"github.com/gogo/protobuf/proto"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

func MarshalNode(node *osm.Node) ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, 16+tagsSize(node.Tags)))
	if err := buf.EncodeFixed64(math.Float64bits(node.Long)); err != nil {
		return nil, err
	}
	if err := buf.EncodeFixed64(math.Float64bits(node.Lat)); err != nil {
		return nil, err
	}
	if err := marshalTags(buf, node.Tags); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func UnmarshalNode(data []byte) (*osm.Node, error) {
	buf := proto.NewBuffer(data)
	long, err := buf.DecodeFixed64()
	if err != nil {
		return nil, errors.Wrap(err, "decoding node")
	}
	lat, err := buf.DecodeFixed64()
	if err != nil {
		return nil, errors.Wrap(err, "decoding node")
	}
	node := &osm.Node{
		Long: math.Float64frombits(long),
		Lat:  math.Float64frombits(lat),
	}
	node.Tags, err = unmarshalTags(buf)
	if err != nil {
		return nil, errors.Wrap(err, "decoding node")
	}
	return node, nil
}

// MarshalWay encodes the refs and tags of way. way.Refs is not modified.
func MarshalWay(way *osm.Way) ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, 1+len(way.Refs)*2+tagsSize(way.Tags)))
	if err := buf.EncodeVarint(uint64(len(way.Refs))); err != nil {
		return nil, err
	}
	last := int64(0)
	for _, ref := range way.Refs {
		if err := buf.EncodeZigzag64(uint64(ref - last)); err != nil {
			return nil, err
		}
		last = ref
	}
	if err := marshalTags(buf, way.Tags); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func UnmarshalWay(data []byte) (*osm.Way, error) {
	buf := proto.NewBuffer(data)
	n, err := buf.DecodeVarint()
	if err != nil {
		return nil, errors.Wrap(err, "decoding way")
	}
	if n > uint64(len(data)) {
		return nil, errors.Errorf("decoding way: invalid number of refs %d", n)
	}
	way := &osm.Way{Refs: make([]int64, n)}
	last := int64(0)
	for i := range way.Refs {
		delta, err := buf.DecodeZigzag64()
		if err != nil {
			return nil, errors.Wrap(err, "decoding way refs")
		}
		last += int64(delta)
		way.Refs[i] = last
	}
	way.Tags, err = unmarshalTags(buf)
	if err != nil {
		return nil, errors.Wrap(err, "decoding way")
	}
	return way, nil
}

func tagsSize(tags osm.Tags) int {
	n := 1
	for k, v := range tags {
		n += len(k) + len(v) + 2
	}
	return n
}

// marshalTags writes the number of tags followed by key/value pairs,
// sorted by key.
func marshalTags(buf *proto.Buffer, tags osm.Tags) error {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := buf.EncodeVarint(uint64(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := buf.EncodeStringBytes(k); err != nil {
			return err
		}
		if err := buf.EncodeStringBytes(tags[k]); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalTags(buf *proto.Buffer) (osm.Tags, error) {
	n, err := buf.DecodeVarint()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	tags := make(osm.Tags, n)
	for i := uint64(0); i < n; i++ {
		k, err := buf.DecodeStringBytes()
		if err != nil {
			return nil, err
		}
		v, err := buf.DecodeStringBytes()
		if err != nil {
			return nil, err
		}
		tags[k] = v
	}
	return tags, nil
}
