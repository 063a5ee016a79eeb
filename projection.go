package vectortile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const webMercatorMax = 20037508.342789244

//Projection maps tile-local pixel coordinates to output coordinates.
type Projection interface {
	UnProject(t maptile.Tile, extent uint32, p Point) orb.Point
}

//EPSG projection info
type EPSG struct {
	Name  string
	Alias string
}

//EPSG4326 plate carree lon/lat
type EPSG4326 EPSG

//EPSG3857 web mercator meters
type EPSG3857 EPSG

//TileLocal keeps tile pixel coordinates unchanged.
type TileLocal struct{}

//ProjectionByName resolves an EPSG code or "tile".
func ProjectionByName(name string) (Projection, error) {
	switch name {
	case "EPSG:4326":
		return EPSG4326{"EPSG:4326", "urn:ogc:def:crs:OGC:1.3:CRS84"}, nil
	case "EPSG:3857":
		return EPSG3857{"EPSG:3857", "urn:ogc:def:crs:EPSG::3857"}, nil
	case "tile", "":
		return TileLocal{}, nil
	}
	return nil, fmt.Errorf("unsupported projection %q", name)
}

// worldFraction returns p as a fraction of the whole world, 0..1 on each axis.
func worldFraction(t maptile.Tile, extent uint32, p Point) (fx, fy float64) {
	if extent == 0 {
		extent = DefaultExtent
	}
	n := float64(uint64(1) << uint(t.Z))
	fx = (float64(t.X) + float64(p.X)/float64(extent)) / n
	fy = (float64(t.Y) + float64(p.Y)/float64(extent)) / n
	return
}

//UnProject tile pixel to lon/lat
func (proj EPSG4326) UnProject(t maptile.Tile, extent uint32, p Point) orb.Point {
	fx, fy := worldFraction(t, extent, p)
	lon := fx*360.0 - 180.0
	lat := math.Atan(math.Sinh(math.Pi*(1-2.0*fy))) * 180.0 / math.Pi
	return orb.Point{lon, lat}
}

//UnProject tile pixel to mercator meters
func (proj EPSG3857) UnProject(t maptile.Tile, extent uint32, p Point) orb.Point {
	fx, fy := worldFraction(t, extent, p)
	return orb.Point{(fx*2.0 - 1.0) * webMercatorMax, (1.0 - fy*2.0) * webMercatorMax}
}

//UnProject identity
func (TileLocal) UnProject(_ maptile.Tile, _ uint32, p Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}
