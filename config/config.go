/*
Package config parses the command line flags and the optional YAML
configuration file of contour-osm.
*/
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/omniscale/contour-osm/cache"
	"github.com/omniscale/contour-osm/proj"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is the content of a YAML configuration file. Values apply to all
// options not set on the command line.
type Config struct {
	Datasource string `yaml:"datasource"`
	Layer      string `yaml:"layer"`
	Fields     struct {
		Elevation string `yaml:"elevation"`
		Geometry  string `yaml:"geometry"`
	} `yaml:"fields"`
	SrcSRS         *int   `yaml:"src_srs"`
	SrcAxis        string `yaml:"src_axis"`
	DstSRS         *int   `yaml:"dst_srs"`
	Poly           string `yaml:"poly"`
	BBox           string `yaml:"bbox"`
	Output         string `yaml:"output"`
	Classification struct {
		Major  *int64 `yaml:"major"`
		Medium *int64 `yaml:"medium"`
	} `yaml:"classification"`
	Cache struct {
		Dir     string `yaml:"dir"`
		Backend string `yaml:"backend"`
	} `yaml:"cache"`
}

const (
	defaultSRS          = 4326
	defaultOutput       = "contour.osm"
	defaultMajor        = 500
	defaultMedium       = 100
	defaultCacheBackend = cache.Badger
)

type Options struct {
	Datasource    string
	Layer         string
	FeatureField  string
	GeometryField string
	SrcSRS        int
	SrcAxis       string
	DstSRS        int
	Poly          string
	BBox          string
	Output        string
	Major         int64
	Medium        int64
	CacheDir      string
	CacheBackend  string
	ConfigFile    string
	Httpprofile   string
	Cpuprofile    string
	Quiet         bool
	Debug         bool

	// set by check
	srcAxisOrder proj.AxisOrder
	bbox         []float64
}

// SourceSRS returns the reference system of the input.
func (o *Options) SourceSRS() proj.SRS {
	return proj.SRS{EPSG: o.SrcSRS, AxisOrder: o.srcAxisOrder}
}

// DestSRS returns the reference system of the output, always lon/lat.
func (o *Options) DestSRS() proj.SRS {
	return proj.SRS{EPSG: o.DstSRS, AxisOrder: proj.LonLat}
}

// BoundingBox returns minlon, maxlon, minlat, maxlat of -bbox and false if
// no bbox was set.
func (o *Options) BoundingBox() (minLon, maxLon, minLat, maxLat float64, ok bool) {
	if len(o.bbox) != 4 {
		return 0, 0, 0, 0, false
	}
	return o.bbox[0], o.bbox[1], o.bbox[2], o.bbox[3], true
}

// Errors is returned by Parse for invalid options.
type Errors []error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "errors in config/options: " + strings.Join(msgs, "; ")
}

func newFlagSet(opts *Options) *flag.FlagSet {
	flags := flag.NewFlagSet("contour-osm", flag.ContinueOnError)
	flags.StringVar(&opts.Datasource, "datasource", "", "database connection string (PG:...) or filename")
	flags.StringVar(&opts.Layer, "layername", "", "database table or layer name with the contours, first layer if omitted")
	flags.StringVar(&opts.FeatureField, "layer-feature", "", "database column or layer field with the elevation")
	flags.StringVar(&opts.GeometryField, "layer-geom", "", "database column or layer geometry with the contour")
	flags.IntVar(&opts.SrcSRS, "src-srs", defaultSRS, "EPSG code of the input, 0 for the SRID of the layer")
	flags.StringVar(&opts.SrcAxis, "src-axis", "lonlat", "axis order of the input (lonlat or latlon)")
	flags.IntVar(&opts.DstSRS, "dst-srs", defaultSRS, "EPSG code of the output")
	flags.StringVar(&opts.Poly, "poly", "", "poly-file or GeoJSON with the boundary to process")
	flags.StringVar(&opts.BBox, "bbox", "", "boundary to process as minlon,maxlon,minlat,maxlat")
	flags.StringVar(&opts.Output, "output", defaultOutput, "output file, gzip compressed if it ends with .gz")
	flags.Int64Var(&opts.Major, "major", defaultMajor, "interval of major contours")
	flags.Int64Var(&opts.Medium, "medium", defaultMedium, "interval of medium contours")
	flags.StringVar(&opts.CacheDir, "cachedir", "", "store elements in this directory instead of memory")
	flags.StringVar(&opts.CacheBackend, "cachebackend", defaultCacheBackend, "cache backend (badger or leveldb)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config (yaml)")
	flags.StringVar(&opts.Httpprofile, "httpprofile", "", "bind address for profile server")
	flags.StringVar(&opts.Cpuprofile, "cpuprofile", "", "filename of cpu profile output")
	flags.BoolVar(&opts.Quiet, "quiet", false, "quiet log output, no progress")
	flags.BoolVar(&opts.Debug, "debug", false, "debug log output")
	return flags
}

// Parse parses args (without the program name). Invalid options are
// returned as Errors. flag.ErrHelp is returned for -help.
func Parse(args []string) (*Options, error) {
	return parse(args, os.Stderr)
}

func parse(args []string, output io.Writer) (*Options, error) {
	opts := &Options{}
	flags := newFlagSet(opts)
	flags.SetOutput(output)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, Errors{fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))}
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := opts.updateFromConfig(set); err != nil {
		return nil, err
	}
	if errs := opts.check(); len(errs) != 0 {
		return nil, Errors(errs)
	}
	return opts, nil
}

// Usage prints all flags to w.
func Usage(w io.Writer) {
	flags := newFlagSet(&Options{})
	flags.SetOutput(w)
	fmt.Fprintf(w, "Usage: %s [args]\n       %s version\n\n", os.Args[0], os.Args[0])
	flags.PrintDefaults()
}

func (o *Options) updateFromConfig(set map[string]bool) error {
	if o.ConfigFile == "" {
		return nil
	}
	data, err := os.ReadFile(o.ConfigFile)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	conf := &Config{}
	if err := yaml.UnmarshalStrict(data, conf); err != nil {
		return errors.Wrapf(err, "parsing config %s", o.ConfigFile)
	}

	setString := func(name string, dst *string, v string) {
		if !set[name] && v != "" {
			*dst = v
		}
	}
	setString("datasource", &o.Datasource, conf.Datasource)
	setString("layername", &o.Layer, conf.Layer)
	setString("layer-feature", &o.FeatureField, conf.Fields.Elevation)
	setString("layer-geom", &o.GeometryField, conf.Fields.Geometry)
	setString("src-axis", &o.SrcAxis, conf.SrcAxis)
	setString("poly", &o.Poly, conf.Poly)
	setString("bbox", &o.BBox, conf.BBox)
	setString("output", &o.Output, conf.Output)
	setString("cachedir", &o.CacheDir, conf.Cache.Dir)
	setString("cachebackend", &o.CacheBackend, conf.Cache.Backend)

	if !set["src-srs"] && conf.SrcSRS != nil {
		o.SrcSRS = *conf.SrcSRS
	}
	if !set["dst-srs"] && conf.DstSRS != nil {
		o.DstSRS = *conf.DstSRS
	}
	if !set["major"] && conf.Classification.Major != nil {
		o.Major = *conf.Classification.Major
	}
	if !set["medium"] && conf.Classification.Medium != nil {
		o.Medium = *conf.Classification.Medium
	}
	return nil
}

func parseBBox(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid -bbox %q, expected minlon,maxlon,minlat,maxlat", s)
	}
	bbox := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -bbox %q: %q is not a number", s, p)
		}
		bbox[i] = v
	}
	if bbox[0] >= bbox[1] || bbox[2] >= bbox[3] {
		return nil, fmt.Errorf("invalid -bbox %q, min values need to be smaller than max values", s)
	}
	return bbox, nil
}

func (o *Options) check() []error {
	errs := []error{}
	if o.Datasource == "" {
		errs = append(errs, errors.New("missing -datasource"))
	}
	axis, err := proj.ParseAxisOrder(o.SrcAxis)
	if err != nil {
		errs = append(errs, err)
	}
	o.srcAxisOrder = axis

	if o.SrcSRS < 0 {
		errs = append(errs, errors.New("-src-srs needs to be a positive EPSG code or 0"))
	}
	if o.DstSRS <= 0 {
		errs = append(errs, errors.New("-dst-srs needs to be a positive EPSG code"))
	}

	if o.BBox != "" {
		if o.Poly != "" {
			errs = append(errs, errors.New("-poly and -bbox can not be used together"))
		}
		bbox, err := parseBBox(o.BBox)
		if err != nil {
			errs = append(errs, err)
		}
		o.bbox = bbox
	}

	if o.Major < 0 || o.Medium < 0 {
		errs = append(errs, errors.New("-major and -medium can not be negative"))
	}
	if o.Output == "" {
		errs = append(errs, errors.New("missing -output"))
	}

	validBackend := false
	for _, b := range cache.Backends {
		if o.CacheBackend == b {
			validBackend = true
		}
	}
	if !validBackend {
		errs = append(errs, fmt.Errorf("unknown -cachebackend %q, expected one of %s",
			o.CacheBackend, strings.Join(cache.Backends, ", ")))
	}
	return errs
}
