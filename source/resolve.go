package source

import (
	"strings"

	"github.com/omniscale/contour-osm/log"
)

// resolveLayer returns preferred or the first layer.
func resolveLayer(preferred string, layers []string) (string, error) {
	if preferred != "" {
		for _, l := range layers {
			if l == preferred {
				return l, nil
			}
		}
		return "", configErrorf("layer %q not found, available layers: %s",
			preferred, strings.Join(layers, ", "))
	}
	if len(layers) == 0 {
		return "", configErrorf("no layer found and none was given")
	}
	if len(layers) > 1 {
		log.Printf("[warn] more than one layer found, using %s", layers[0])
	}
	return layers[0], nil
}

// elevationCandidates returns all fields except id and geometry fields.
func elevationCandidates(fields, geomFields []string) []string {
	var result []string
next:
	for _, f := range fields {
		if strings.ToLower(f) == "id" {
			continue
		}
		for _, g := range geomFields {
			if f == g {
				continue next
			}
		}
		result = append(result, f)
	}
	return result
}

// resolveField returns preferred if it is one of candidates, otherwise
// the first candidate. kind is only used for messages.
func resolveField(kind, preferred string, candidates []string) (string, error) {
	if preferred != "" {
		for _, c := range candidates {
			if c == preferred {
				return c, nil
			}
		}
	}
	if len(candidates) == 0 {
		return "", configErrorf("no %s field found and none was given", kind)
	}
	if preferred != "" {
		log.Printf("[warn] %s field %q not found, using %q", kind, preferred, candidates[0])
	} else if len(candidates) > 1 {
		log.Printf("[warn] more than one %s field found, using %q", kind, candidates[0])
	}
	return candidates[0], nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
