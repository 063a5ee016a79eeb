package vectortile

//Point is a tile-local pixel coordinate, origin top-left, Y grows downward.
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

//LessThan orders points row-major: by Y, then X.
func (a Point) LessThan(b Point) bool {
	return a.Y < b.Y || (a.Y == b.Y && a.X < b.X)
}

//Equal a equal to b
func (a Point) Equal(b Point) bool {
	return a.X == b.X && a.Y == b.Y
}

//Add returns a translated by d.
func (a Point) Add(d Delta) Point {
	return Point{a.X + int64(d.DX), a.Y + int64(d.DY)}
}

//Sub returns the delta that moves b onto a.
func (a Point) Sub(b Point) Delta {
	return Delta{DX: int32(a.X - b.X), DY: int32(a.Y - b.Y)}
}

//LineString is an open path of at least two points.
type LineString []Point

//Ring is a closed loop. The closing point is implicit and never stored.
type Ring []Point

//Polygon holds an exterior ring followed by its holes.
type Polygon []Ring

//Geometry is the set of geometry kinds a Feature can carry.
type Geometry interface {
	Point | LineString | Polygon
}

// ExteriorSign is the sign of Ring.Area2 that marks an exterior ring.
// With Y growing downward, MVT 2.1 exterior rings are clockwise on screen,
// which the shoelace sum reports as positive.
const ExteriorSign int64 = 1

// Area2 returns twice the signed shoelace area of the ring.
func (r Ring) Area2() int64 {
	n := len(r)
	var area int64
	for k := 0; k < n; k++ {
		next := r[(k+1)%n]
		area += r[k].X*next.Y - r[k].Y*next.X
	}
	return area
}

// IsExterior reports whether the ring's winding marks it as an exterior ring.
func (r Ring) IsExterior() bool {
	return r.Area2()*ExteriorSign > 0
}

// IsInterior reports whether the ring's winding marks it as a hole.
func (r Ring) IsInterior() bool {
	return r.Area2()*ExteriorSign < 0
}

// Reversed returns the ring traversed the other way round, starting from
// the same first point.
func (r Ring) Reversed() Ring {
	if len(r) == 0 {
		return Ring{}
	}
	out := make(Ring, 0, len(r))
	out = append(out, r[0])
	for i := len(r) - 1; i > 0; i-- {
		out = append(out, r[i])
	}
	return out
}
