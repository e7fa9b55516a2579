package writer

import (
	"encoding/xml"
	"sort"
	"strconv"

	contourosm "github.com/omniscale/contour-osm"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

type xmlTag struct {
	Key   string `xml:"k,attr"`
	Value string `xml:"v,attr"`
}

type xmlNd struct {
	Ref int64 `xml:"ref,attr"`
}

type xmlNode struct {
	XMLName xml.Name `xml:"node"`
	ID      int64    `xml:"id,attr"`
	Lat     string   `xml:"lat,attr"`
	Lon     string   `xml:"lon,attr"`
	Tags    []xmlTag `xml:"tag"`
}

type xmlWay struct {
	XMLName xml.Name `xml:"way"`
	ID      int64    `xml:"id,attr"`
	Nds     []xmlNd  `xml:"nd"`
	Tags    []xmlTag `xml:"tag"`
}

func xmlTags(tags osm.Tags) []xmlTag {
	if len(tags) == 0 {
		return nil
	}
	result := make([]xmlTag, 0, len(tags))
	for k, v := range tags {
		result = append(result, xmlTag{k, v})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

func formatCoord(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

func (w *OsmWriter) writeXML() error {
	enc := xml.NewEncoder(w.out)
	enc.Indent("", " ")

	if err := enc.EncodeToken(xml.ProcInst{
		Target: "xml",
		Inst:   []byte(`version="1.0" encoding="UTF-8"`),
	}); err != nil {
		return errors.Wrap(err, "writing xml header")
	}
	root := xml.StartElement{
		Name: xml.Name{Local: "osm"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "version"}, Value: "0.6"},
			{Name: xml.Name{Local: "generator"}, Value: "contour-osm " + contourosm.Version},
			{Name: xml.Name{Local: "upload"}, Value: "false"},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return errors.Wrap(err, "writing osm element")
	}

	err := w.store.IterNodes(func(n *osm.Node) error {
		return enc.Encode(xmlNode{
			ID:   n.ID,
			Lat:  formatCoord(n.Lat),
			Lon:  formatCoord(n.Long),
			Tags: xmlTags(n.Tags),
		})
	})
	if err != nil {
		return errors.Wrap(err, "writing nodes")
	}

	err = w.store.IterWays(func(way *osm.Way) error {
		nds := make([]xmlNd, len(way.Refs))
		for i, ref := range way.Refs {
			nds[i].Ref = ref
		}
		return enc.Encode(xmlWay{
			ID:   way.ID,
			Nds:  nds,
			Tags: xmlTags(way.Tags),
		})
	})
	if err != nil {
		return errors.Wrap(err, "writing ways")
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return errors.Wrap(err, "writing osm element")
	}
	if err := enc.Flush(); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}
