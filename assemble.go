package vectortile

// cursor is the running absolute position of one feature's command stream.
// A fresh cursor starts at the origin for every feature.
type cursor struct {
	at Point
}

func (c *cursor) move(d Delta) Point {
	c.at = c.at.Add(d)
	return c.at
}

func (c *cursor) delta(p Point) Delta {
	d := p.Sub(c.at)
	c.at = p
	return d
}

// DecodePoints assembles a Point or MultiPoint stream: a single MoveTo whose
// parameter pairs each yield one point.
func DecodePoints(cmds []Command) ([]Point, error) {
	if len(cmds) == 0 {
		return nil, geometryErrorf("empty point geometry")
	}
	if len(cmds) != 1 || cmds[0].ID != MoveTo {
		return nil, geometryErrorf("point geometry must be a single MoveTo, got %d records starting with %s", len(cmds), cmds[0].ID)
	}
	if len(cmds[0].Params) == 0 {
		return nil, geometryErrorf("point MoveTo without parameters")
	}
	var c cursor
	points := make([]Point, 0, len(cmds[0].Params))
	for _, d := range cmds[0].Params {
		points = append(points, c.move(d))
	}
	return points, nil
}

// DecodeLineStrings assembles MoveTo(1) LineTo(k>=1) groups, one line each.
func DecodeLineStrings(cmds []Command) ([]LineString, error) {
	var c cursor
	var lines []LineString
	for i := 0; i < len(cmds); i += 2 {
		mv := cmds[i]
		if mv.ID != MoveTo {
			return nil, geometryErrorf("%s at record %d without preceding MoveTo", mv.ID, i)
		}
		if len(mv.Params) != 1 {
			return nil, geometryErrorf("linestring MoveTo at record %d has count %d, want 1", i, len(mv.Params))
		}
		if i+1 >= len(cmds) || cmds[i+1].ID != LineTo {
			return nil, geometryErrorf("linestring MoveTo at record %d not followed by LineTo", i)
		}
		lt := cmds[i+1]
		if len(lt.Params) == 0 {
			return nil, geometryErrorf("linestring LineTo at record %d has count 0", i+1)
		}
		line := make(LineString, 0, 1+len(lt.Params))
		line = append(line, c.move(mv.Params[0]))
		for _, d := range lt.Params {
			line = append(line, c.move(d))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, geometryErrorf("empty linestring geometry")
	}
	return lines, nil
}

// DecodePolygons assembles MoveTo(1) LineTo(k>=2) ClosePath groups into
// rings and groups them by winding: an exterior ring opens a new polygon,
// an interior ring becomes a hole of the latest one.
func DecodePolygons(cmds []Command) ([]Polygon, error) {
	var c cursor
	var polys []Polygon
	for i := 0; i < len(cmds); i += 3 {
		mv := cmds[i]
		if mv.ID != MoveTo {
			return nil, geometryErrorf("%s at record %d without preceding MoveTo", mv.ID, i)
		}
		if len(mv.Params) != 1 {
			return nil, geometryErrorf("polygon MoveTo at record %d has count %d, want 1", i, len(mv.Params))
		}
		if i+1 >= len(cmds) || cmds[i+1].ID != LineTo {
			return nil, geometryErrorf("polygon MoveTo at record %d not followed by LineTo", i)
		}
		lt := cmds[i+1]
		if len(lt.Params) < 2 {
			return nil, geometryErrorf("ring at record %d has %d points, want at least 3", i, 1+len(lt.Params))
		}
		if i+2 >= len(cmds) || cmds[i+2].ID != ClosePath {
			return nil, geometryErrorf("ring at record %d not closed by ClosePath", i)
		}

		ring := make(Ring, 0, 1+len(lt.Params))
		ring = append(ring, c.move(mv.Params[0]))
		for _, d := range lt.Params {
			ring = append(ring, c.move(d))
		}

		switch {
		case ring.IsExterior():
			polys = append(polys, Polygon{ring})
		case ring.IsInterior():
			if len(polys) == 0 {
				return nil, geometryErrorf("interior ring at record %d before any exterior ring", i)
			}
			last := len(polys) - 1
			polys[last] = append(polys[last], ring)
		default:
			return nil, geometryErrorf("ring at record %d has zero area", i)
		}
	}
	if len(polys) == 0 {
		return nil, geometryErrorf("empty polygon geometry")
	}
	return polys, nil
}

// EncodePoints emits a single MoveTo carrying every point.
func EncodePoints(points []Point) []Command {
	if len(points) == 0 {
		return nil
	}
	var c cursor
	params := make([]Delta, 0, len(points))
	for _, p := range points {
		params = append(params, c.delta(p))
	}
	return []Command{{ID: MoveTo, Count: uint32(len(params)), Params: params}}
}

// EncodeLineStrings emits one MoveTo LineTo group per line.
func EncodeLineStrings(lines []LineString) []Command {
	var c cursor
	cmds := make([]Command, 0, 2*len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		cmds = append(cmds, Command{ID: MoveTo, Count: 1, Params: []Delta{c.delta(line[0])}})
		params := make([]Delta, 0, len(line)-1)
		for _, p := range line[1:] {
			params = append(params, c.delta(p))
		}
		cmds = append(cmds, Command{ID: LineTo, Count: uint32(len(params)), Params: params})
	}
	return cmds
}

// EncodePolygons emits one MoveTo LineTo ClosePath group per ring. The
// first ring of each polygon is written with exterior winding and the rest
// with interior winding, reversing stored rings where needed.
func EncodePolygons(polys []Polygon) []Command {
	var c cursor
	var cmds []Command
	for _, poly := range polys {
		for j, ring := range poly {
			if len(ring) == 0 {
				continue
			}
			if (j == 0 && ring.IsInterior()) || (j > 0 && ring.IsExterior()) {
				ring = ring.Reversed()
			}
			cmds = append(cmds, Command{ID: MoveTo, Count: 1, Params: []Delta{c.delta(ring[0])}})
			params := make([]Delta, 0, len(ring)-1)
			for _, p := range ring[1:] {
				params = append(params, c.delta(p))
			}
			cmds = append(cmds,
				Command{ID: LineTo, Count: uint32(len(params)), Params: params},
				Command{ID: ClosePath, Count: 1},
			)
		}
	}
	return cmds
}
