package vectortile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// ToGeoJSON renders the layer's features, points first, then lines, then
// polygons, with coordinates mapped through proj.
func (l Layer) ToGeoJSON(t maptile.Tile, proj Projection) *geojson.FeatureCollection {
	if proj == nil {
		proj = TileLocal{}
	}
	at := func(p Point) orb.Point { return proj.UnProject(t, l.Extent, p) }

	fc := geojson.NewFeatureCollection()
	for _, f := range l.Points {
		mp := make(orb.MultiPoint, 0, len(f.Geometries))
		for _, p := range f.Geometries {
			mp = append(mp, at(p))
		}
		var g orb.Geometry = mp
		if len(mp) == 1 {
			g = mp[0]
		}
		fc.Append(newGeoJSONFeature(g, f.ID, f.Metadata))
	}
	for _, f := range l.LineStrings {
		mls := make(orb.MultiLineString, 0, len(f.Geometries))
		for _, line := range f.Geometries {
			ls := make(orb.LineString, 0, len(line))
			for _, p := range line {
				ls = append(ls, at(p))
			}
			mls = append(mls, ls)
		}
		var g orb.Geometry = mls
		if len(mls) == 1 {
			g = mls[0]
		}
		fc.Append(newGeoJSONFeature(g, f.ID, f.Metadata))
	}
	for _, f := range l.Polygons {
		mp := make(orb.MultiPolygon, 0, len(f.Geometries))
		for _, poly := range f.Geometries {
			op := make(orb.Polygon, 0, len(poly))
			for _, ring := range poly {
				r := make(orb.Ring, 0, len(ring)+1)
				for _, p := range ring {
					r = append(r, at(p))
				}
				if len(ring) > 0 {
					r = append(r, r[0])
				}
				op = append(op, r)
			}
			mp = append(mp, op)
		}
		var g orb.Geometry = mp
		if len(mp) == 1 {
			g = mp[0]
		}
		fc.Append(newGeoJSONFeature(g, f.ID, f.Metadata))
	}
	return fc
}

// ToGeoJSON renders every layer, keyed by layer name. Layers sharing a
// name are merged in tile order.
func (t Tile) ToGeoJSON(tile maptile.Tile, proj Projection) map[string]*geojson.FeatureCollection {
	out := make(map[string]*geojson.FeatureCollection, len(t.Layers))
	for _, l := range t.Layers {
		fc := l.ToGeoJSON(tile, proj)
		if prev, ok := out[l.Name]; ok {
			prev.Features = append(prev.Features, fc.Features...)
			continue
		}
		out[l.Name] = fc
	}
	return out
}

func newGeoJSONFeature(g orb.Geometry, id uint64, md map[string]Value) *geojson.Feature {
	f := geojson.NewFeature(g)
	if id != 0 {
		f.ID = id
	}
	for k, v := range md {
		f.Properties[k] = v.Interface()
	}
	return f
}
