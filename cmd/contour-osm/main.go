package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	contourosm "github.com/omniscale/contour-osm"
	"github.com/omniscale/contour-osm/config"
	"github.com/omniscale/contour-osm/convert"
	"github.com/omniscale/contour-osm/log"
	"github.com/omniscale/contour-osm/stats"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("%s %s(%s-%s)\n", contourosm.Version, runtime.Version(), runtime.GOARCH, runtime.GOOS)
		os.Exit(0)
	}

	opts, err := config.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		if errs, ok := err.(config.Errors); ok {
			for _, e := range errs {
				log.Printf("[error] %s", e)
			}
			config.Usage(os.Stderr)
			os.Exit(1)
		}
		log.Fatal("[fatal] ", err)
	}

	if opts.Quiet {
		log.SetMinLevel(log.LInfo)
	}
	if opts.Debug {
		log.SetMinLevel(log.LDebug)
	}
	if opts.Httpprofile != "" {
		stats.StartHttpPProf(opts.Httpprofile)
	}
	if opts.Cpuprofile != "" {
		f, err := os.Create(opts.Cpuprofile)
		if err != nil {
			log.Fatal("[fatal] ", err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := convert.Run(ctx, opts); err != nil {
		pprof.StopCPUProfile()
		log.Fatal("[fatal] ", err)
	}
}
