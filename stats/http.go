package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/omniscale/contour-osm/log"
)

// StartHttpPProf serves the pprof handlers on bind in the background.
func StartHttpPProf(bind string) {
	go func() {
		log.Println("[error]", http.ListenAndServe(bind, nil))
	}()
}
