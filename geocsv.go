package vectortile

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

//ReadCSVLayer builds a point layer from CSV rows. Coordinates come from the
//x/y columns, in tile pixels; an "id" column sets feature ids; every other
//non-empty cell becomes metadata. Rows that cannot be read are skipped with
//a warning.
func ReadCSVLayer(r io.Reader, name string) (Layer, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return Layer{}, errors.Wrap(err, "read csv header")
	}
	ix, iy, iid := GetGeomCol(headers)
	if ix < 0 || iy < 0 {
		return Layer{}, errors.Newf("csv layer %s: no x/y columns in %v", name, headers)
	}

	l := Layer{Version: DefaultVersion, Name: name, Extent: DefaultExtent}
	rownum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rownum++
		if err != nil {
			log.Warningf("%s: reader line(%d) failed, error: %s", name, rownum, err)
			continue
		}
		if ix >= len(row) || iy >= len(row) || len(row[ix]) == 0 || len(row[iy]) == 0 {
			log.Warningf("%s: line(%d) nil geometry.", name, rownum)
			continue
		}
		x, errx := strconv.ParseInt(strings.TrimSpace(row[ix]), 10, 64)
		y, erry := strconv.ParseInt(strings.TrimSpace(row[iy]), 10, 64)
		if errx != nil || erry != nil {
			log.Warningf("%s: line(%d) bad coordinate %q,%q.", name, rownum, row[ix], row[iy])
			continue
		}

		f := Feature[Point]{
			Metadata:   make(map[string]Value),
			Geometries: []Point{{X: x, Y: y}},
		}
		for i, c := range row {
			if i == ix || i == iy || i >= len(headers) || len(c) == 0 {
				continue
			}
			if i == iid {
				if id, err := strconv.ParseUint(c, 10, 64); err == nil {
					f.ID = id
					continue
				}
			}
			f.Metadata[headers[i]] = ParseCSVValue(c)
		}
		l.Points = append(l.Points, f)
	}
	return l, nil
}

//ParseCSVValue types a cell: numbers become Double, true/false Bool, the
//rest String.
func ParseCSVValue(c string) Value {
	if f, err := strconv.ParseFloat(c, 64); err == nil {
		return DoubleValue(f)
	}
	switch c {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	return StringValue(c)
}

//GetGeomCol finds the coordinate and id columns by header name.
func GetGeomCol(headers []string) (ix, iy, iid int) {
	getColumn := func(cols []string) int {
		for _, c := range cols {
			for i, n := range headers {
				if c == strings.ToLower(strings.TrimSpace(n)) {
					return i
				}
			}
		}
		return -1
	}
	ix = getColumn([]string{"x", "px", "tile_x"})
	iy = getColumn([]string{"y", "py", "tile_y"})
	iid = getColumn([]string{"id", "fid"})
	return
}
