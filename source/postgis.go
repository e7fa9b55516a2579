package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/lib/pq"
	"github.com/omniscale/contour-osm/boundary"
	"github.com/omniscale/contour-osm/geom"
	"github.com/omniscale/contour-osm/log"
	"github.com/omniscale/contour-osm/proj"
	"github.com/pkg/errors"
)

type SQLError struct {
	Query string
	Err   error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.Err.Error(), e.Query)
}

func (e *SQLError) Cause() error {
	return e.Err
}

// QueryableSource reads a PostGIS table. Clipping is done by the
// database.
type QueryableSource struct {
	names  fields
	db     *sql.DB
	schema string
	table  string
	srid   int
	srs    proj.SRS
}

type geometryColumn struct {
	schema string
	table  string
	column string
	srid   int
}

func (c geometryColumn) layerName() string {
	if c.schema == "public" {
		return c.table
	}
	return c.schema + "." + c.table
}

// connectionParams converts PG: and postgres:// locators into lib/pq
// connection parameters.
func connectionParams(locator string) (string, error) {
	var params string
	if strings.HasPrefix(locator, "PG:") {
		params = strings.TrimSpace(strings.TrimPrefix(locator, "PG:"))
	} else {
		if strings.HasPrefix(locator, "postgis://") {
			locator = strings.Replace(locator, "postgis", "postgres", 1)
		}
		var err error
		params, err = pq.ParseURL(locator)
		if err != nil {
			return "", configErrorf("invalid connection string: %s", err)
		}
	}
	return disableDefaultSslOnLocalhost(params), nil
}

// disableDefaultSslOnLocalhost adds sslmode=disable to params
// when host is localhost/127.0.0.1 and the sslmode param and
// PGSSLMODE environment are both not set.
func disableDefaultSslOnLocalhost(params string) string {
	parts := strings.Fields(params)
	isLocalHost := false
	for _, p := range parts {
		if strings.HasPrefix(p, "sslmode=") {
			return params
		}
		if p == "host=localhost" || p == "host=127.0.0.1" {
			isLocalHost = true
		}
	}
	if !isLocalHost {
		return params
	}
	if _, ok := os.LookupEnv("PGSSLMODE"); ok {
		return params
	}
	return params + " sslmode=disable"
}

func openPostGIS(locator string, opts Options) (*QueryableSource, error) {
	params, err := connectionParams(locator)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", params)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// sql.Open is lazy, check that the connection actually works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to database")
	}

	s := &QueryableSource{db: db}
	if err := s.resolve(context.Background(), opts); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[info] using %s", s.names)
	return s, nil
}

func (s *QueryableSource) geometryColumns(ctx context.Context) ([]geometryColumn, error) {
	query := `SELECT f_table_schema, f_table_name, f_geometry_column, srid
FROM geometry_columns ORDER BY f_table_schema, f_table_name, f_geometry_column`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &SQLError{query, err}
	}
	defer rows.Close()

	var result []geometryColumn
	for rows.Next() {
		var c geometryColumn
		if err := rows.Scan(&c.schema, &c.table, &c.column, &c.srid); err != nil {
			return nil, &SQLError{query, err}
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &SQLError{query, err}
	}
	return result, nil
}

func (s *QueryableSource) columns(ctx context.Context, schema, table string) ([]string, error) {
	query := `SELECT column_name FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position`
	rows, err := s.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, &SQLError{query, err}
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &SQLError{query, err}
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &SQLError{query, err}
	}
	return result, nil
}

func (s *QueryableSource) resolve(ctx context.Context, opts Options) error {
	geomColumns, err := s.geometryColumns(ctx)
	if err != nil {
		return err
	}

	var layers []string
	for _, c := range geomColumns {
		if name := c.layerName(); len(layers) == 0 || layers[len(layers)-1] != name {
			layers = append(layers, name)
		}
	}
	preferred := opts.Layer
	if preferred != "" && !strings.Contains(preferred, ".") {
		// unqualified tables outside of public
		for _, c := range geomColumns {
			if c.table == preferred && c.schema != "public" {
				preferred = c.layerName()
				break
			}
		}
	}
	s.names.layer, err = resolveLayer(preferred, layers)
	if err != nil {
		return err
	}

	var layerGeoms []geometryColumn
	var geomNames []string
	for _, c := range geomColumns {
		if c.layerName() == s.names.layer {
			layerGeoms = append(layerGeoms, c)
			geomNames = append(geomNames, c.column)
		}
	}
	s.schema, s.table = layerGeoms[0].schema, layerGeoms[0].table

	columns, err := s.columns(ctx, s.schema, s.table)
	if err != nil {
		return err
	}
	s.names.feature, err = resolveField("elevation", opts.FeatureField, elevationCandidates(columns, geomNames))
	if err != nil {
		return err
	}
	s.names.geom, err = resolveField("geometry", opts.GeometryField, geomNames)
	if err != nil {
		return err
	}
	s.srid = layerGeoms[indexOf(geomNames, s.names.geom)].srid
	s.srs = resolveSRS(opts.SRS, s.srid)
	return nil
}

func (s *QueryableSource) String() string {
	return s.names.String()
}

// FeatureCount always returns -1, counting would need a second scan of
// the table.
func (s *QueryableSource) FeatureCount() int64 {
	return -1
}

func (s *QueryableSource) SRID() int {
	return s.srid
}

func (s *QueryableSource) tableName() string {
	return pq.QuoteIdentifier(s.schema) + "." + pq.QuoteIdentifier(s.table)
}

func (s *QueryableSource) query(clipped bool) string {
	feat := pq.QuoteIdentifier(s.names.feature)
	geomCol := pq.QuoteIdentifier(s.names.geom)
	if !clipped {
		return fmt.Sprintf(`SELECT t.%[1]s, ST_AsBinary(ST_Force2D(t.%[2]s)) FROM %[3]s t`,
			feat, geomCol, s.tableName())
	}
	return fmt.Sprintf(`SELECT t.%[1]s, ST_AsBinary(ST_Force2D(ST_Intersection(t.%[2]s, p.boundary)))
FROM (SELECT ST_GeomFromWKB($1, $2) AS boundary) p, %[3]s t
WHERE ST_Intersects(t.%[2]s, p.boundary)`,
		feat, geomCol, s.tableName())
}

// boundarySRS returns the storage SRID of the table with the axis order
// of the input.
func (s *QueryableSource) boundarySRS() proj.SRS {
	if s.srid == 0 {
		return s.srs
	}
	return proj.SRS{EPSG: s.srid, AxisOrder: s.srs.AxisOrder}
}

// Fetch queries all features. With a boundary, the boundary is
// transformed into the SRID of the table and the intersection is
// calculated by PostGIS.
func (s *QueryableSource) Fetch(ctx context.Context, b *boundary.Boundary) (geom.FeatureIterator, error) {
	var rows *sql.Rows
	var err error
	query := s.query(b != nil)
	if b == nil {
		rows, err = s.db.QueryContext(ctx, query)
	} else {
		g, gerr := b.Geometry(s.boundarySRS())
		if gerr != nil {
			return nil, errors.Wrapf(gerr, "transforming boundary %s", b.Name)
		}
		wkb, gerr := geom.AsWKB(g)
		if gerr != nil {
			return nil, gerr
		}
		log.Printf("[debug] clipping with %s in EPSG:%d", b.Name, s.srid)
		rows, err = s.db.QueryContext(ctx, query, wkb, s.srid)
	}
	if err != nil {
		return nil, &SQLError{query, err}
	}
	return &rowsIterator{rows: rows, query: query, srid: s.srs.EPSG}, nil
}

func (s *QueryableSource) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type rowsIterator struct {
	rows    *sql.Rows
	query   string
	srid    int
	current geom.Feature
	err     error
}

func (it *rowsIterator) Next() bool {
	if it.err != nil {
		return false
	}
	for it.rows.Next() {
		var elevation sql.NullFloat64
		var wkb []byte
		if err := it.rows.Scan(&elevation, &wkb); err != nil {
			it.err = &SQLError{it.query, err}
			return false
		}
		if !elevation.Valid {
			log.Printf("[debug] skipping feature without elevation")
			continue
		}
		g, err := geom.FromWKB(wkb)
		if err != nil {
			it.err = err
			return false
		}
		if geom.IsEmpty(g) {
			log.Printf("[debug] skipping feature without geometry (ele=%v)", elevation.Float64)
			continue
		}
		it.current = geom.Feature{Elevation: elevation.Float64, Geometry: g, SRID: it.srid}
		return true
	}
	if err := it.rows.Err(); err != nil {
		it.err = &SQLError{it.query, err}
	}
	return false
}

func (it *rowsIterator) Feature() geom.Feature { return it.current }
func (it *rowsIterator) Err() error            { return it.err }

func (it *rowsIterator) Close() error {
	return it.rows.Close()
}
