package vectortile

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

// Feature is one decoded feature. Multi-geometries are carried as several
// entries in Geometries. Metadata is never nil after decoding.
type Feature[G Geometry] struct {
	ID         uint64           `json:"id,omitempty"`
	Metadata   map[string]Value `json:"metadata"`
	Geometries []G              `json:"geometries"`
}

// Layer is a decoded layer with its features split by geometry kind.
type Layer struct {
	Version     uint32                `json:"version"`
	Name        string                `json:"name"`
	Points      []Feature[Point]      `json:"points,omitempty"`
	LineStrings []Feature[LineString] `json:"linestrings,omitempty"`
	Polygons    []Feature[Polygon]    `json:"polygons,omitempty"`
	Extent      uint32                `json:"extent"`
}

// Len returns the number of features across all three collections.
func (l Layer) Len() int {
	return len(l.Points) + len(l.LineStrings) + len(l.Polygons)
}

func decodeFeature[G Geometry](raw RawFeature, keys []string, values []RawValue, assemble func([]Command) ([]G, error)) (Feature[G], error) {
	cmds, err := DecodeCommands(raw.Geometry)
	if err != nil {
		return Feature[G]{}, err
	}
	geoms, err := assemble(cmds)
	if err != nil {
		return Feature[G]{}, err
	}
	md, err := ResolveMetadata(keys, values, raw.Tags)
	if err != nil {
		return Feature[G]{}, err
	}
	return Feature[G]{ID: raw.ID, Metadata: md, Geometries: geoms}, nil
}

// decodeLayer routes each raw feature to the collection of its geometry
// type. Features of unknown type are dropped.
func decodeLayer(raw RawLayer, logger log.FieldLogger) (Layer, error) {
	l := Layer{
		Version: raw.Version,
		Name:    raw.Name,
		Extent:  DefaultExtent,
	}
	if raw.Extent != nil {
		l.Extent = *raw.Extent
	}
	if raw.Version != DefaultVersion {
		logger.WithField("layer", raw.Name).Warningf("layer version %d, expected %d", raw.Version, DefaultVersion)
	}

	dropped := 0
	for i, f := range raw.Features {
		var err error
		switch f.Type {
		case GeomPoint:
			var pf Feature[Point]
			if pf, err = decodeFeature(f, raw.Keys, raw.Values, DecodePoints); err == nil {
				l.Points = append(l.Points, pf)
			}
		case GeomLineString:
			var lf Feature[LineString]
			if lf, err = decodeFeature(f, raw.Keys, raw.Values, DecodeLineStrings); err == nil {
				l.LineStrings = append(l.LineStrings, lf)
			}
		case GeomPolygon:
			var pf Feature[Polygon]
			if pf, err = decodeFeature(f, raw.Keys, raw.Values, DecodePolygons); err == nil {
				l.Polygons = append(l.Polygons, pf)
			}
		default:
			dropped++
		}
		if err != nil {
			return Layer{}, errors.Wrapf(err, "feature %d (%s)", i, f.Type)
		}
	}

	featuresDropped.Add(float64(dropped))
	if l.Len() == 0 {
		return Layer{}, errors.Mark(errors.Newf("no decodable features among %d", len(raw.Features)), ErrEmptyLayer)
	}
	featuresDecoded.WithLabelValues(GeomPoint.String()).Add(float64(len(l.Points)))
	featuresDecoded.WithLabelValues(GeomLineString.String()).Add(float64(len(l.LineStrings)))
	featuresDecoded.WithLabelValues(GeomPolygon.String()).Add(float64(len(l.Polygons)))
	layersDecoded.Inc()

	logger.WithFields(log.Fields{
		"layer":       l.Name,
		"points":      len(l.Points),
		"linestrings": len(l.LineStrings),
		"polygons":    len(l.Polygons),
		"dropped":     dropped,
	}).Debug("decoded layer")
	return l, nil
}

// encodeLayer flattens the typed collections, points first, then lines,
// then polygons, and rebuilds the shared tables in one pass.
func encodeLayer(l Layer) RawLayer {
	n := l.Len()
	feats := make([]RawFeature, 0, n)
	mds := make([]map[string]Value, 0, n)
	for _, f := range l.Points {
		feats = append(feats, RawFeature{ID: f.ID, Type: GeomPoint, Geometry: EncodeCommands(EncodePoints(f.Geometries))})
		mds = append(mds, f.Metadata)
	}
	for _, f := range l.LineStrings {
		feats = append(feats, RawFeature{ID: f.ID, Type: GeomLineString, Geometry: EncodeCommands(EncodeLineStrings(f.Geometries))})
		mds = append(mds, f.Metadata)
	}
	for _, f := range l.Polygons {
		feats = append(feats, RawFeature{ID: f.ID, Type: GeomPolygon, Geometry: EncodeCommands(EncodePolygons(f.Geometries))})
		mds = append(mds, f.Metadata)
	}

	keys, values, tags := BuildTables(mds)
	for i := range feats {
		feats[i].Tags = tags[i]
	}
	extent := l.Extent
	layersEncoded.Inc()
	return RawLayer{
		Version:  l.Version,
		Name:     l.Name,
		Features: feats,
		Keys:     keys,
		Values:   values,
		Extent:   &extent,
	}
}
