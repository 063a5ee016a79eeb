package vectortile

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func sampleTile() Tile {
	return Tile{Layers: []Layer{
		{
			Version: 2,
			Name:    "places",
			Extent:  4096,
			Points: []Feature[Point]{
				{ID: 1, Metadata: map[string]Value{"name": StringValue("a"), "rank": IntValue(3)}, Geometries: []Point{{2, 2}}},
				{ID: 2, Metadata: map[string]Value{"name": StringValue("b"), "rank": IntValue(3)}, Geometries: []Point{{5, 7}, {3, 2}, {-10, 4100}}},
			},
			LineStrings: []Feature[LineString]{
				{Metadata: map[string]Value{}, Geometries: []LineString{
					{{2, 2}, {2, 10}, {10, 10}},
					{{1, 1}, {3, 5}},
				}},
			},
			Polygons: []Feature[Polygon]{
				{ID: 9, Metadata: map[string]Value{"name": StringValue("a"), "area": DoubleValue(12.5)}, Geometries: []Polygon{
					{{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
					{
						{{11, 11}, {20, 11}, {20, 20}, {11, 20}},
						{{13, 13}, {13, 17}, {17, 17}, {17, 13}},
					},
				}},
			},
		},
		{
			Version: 2,
			Name:    "water",
			Extent:  512,
			Polygons: []Feature[Polygon]{
				{Metadata: map[string]Value{
					"f":    FloatValue(0.5),
					"u":    UintValue(1 << 63),
					"s":    SintValue(-42),
					"i":    IntValue(-42),
					"wet":  BoolValue(true),
					"name": StringValue("lake"),
				}, Geometries: []Polygon{{{{0, 0}, {20, 0}, {20, 20}, {0, 20}}, {{0, 0}, {0, 10}, {10, 10}, {10, 0}}}}},
			},
		},
	}}
}

func TestDecodeLayerPointScenario(t *testing.T) {
	l, err := DecodeLayer(RawLayer{
		Version:  2,
		Features: []RawFeature{{Type: GeomPoint, Geometry: []uint32{9, 4, 4}}},
	})
	require.NoError(t, err)
	require.Equal(t, Layer{
		Version: 2,
		Extent:  4096,
		Points: []Feature[Point]{
			{Metadata: map[string]Value{}, Geometries: []Point{{2, 2}}},
		},
	}, l)
	require.Empty(t, l.LineStrings)
	require.Empty(t, l.Polygons)
}

func TestDecodeLayerUnknownOnly(t *testing.T) {
	_, err := DecodeLayer(RawLayer{
		Version:  2,
		Name:     "l",
		Features: []RawFeature{{Type: GeomUnknown, Geometry: []uint32{9, 4, 4}}},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEmptyLayer), "got %v", err)

	_, err = DecodeLayer(RawLayer{Version: 2, Name: "l"})
	require.True(t, errors.Is(err, ErrEmptyLayer), "got %v", err)
}

func TestDecodeLayerPartitionsByType(t *testing.T) {
	l, err := DecodeLayer(RawLayer{
		Version: 2,
		Name:    "mixed",
		Keys:    []string{"k"},
		Values:  []RawValue{EncodeValue(StringValue("v"))},
		Features: []RawFeature{
			{ID: 1, Type: GeomLineString, Geometry: []uint32{9, 4, 4, 10, 2, 2}},
			{ID: 2, Type: GeomPoint, Geometry: []uint32{9, 4, 4}, Tags: []uint32{0, 0}},
			{ID: 3, Type: GeomUnknown, Geometry: []uint32{99}},
			{ID: 4, Type: GeomPoint, Geometry: []uint32{9, 2, 2}},
			{ID: 5, Type: GeomPolygon, Geometry: []uint32{9, 6, 12, 18, 10, 12, 24, 44, 15}},
		},
	})
	require.NoError(t, err)
	require.Len(t, l.Points, 2)
	require.Equal(t, uint64(2), l.Points[0].ID)
	require.Equal(t, map[string]Value{"k": StringValue("v")}, l.Points[0].Metadata)
	require.Equal(t, uint64(4), l.Points[1].ID)
	require.Len(t, l.LineStrings, 1)
	require.Equal(t, []LineString{{{2, 2}, {3, 3}}}, l.LineStrings[0].Geometries)
	require.Len(t, l.Polygons, 1)
	require.Equal(t, []Polygon{{{{3, 6}, {8, 12}, {20, 34}}}}, l.Polygons[0].Geometries)
	require.Equal(t, 4, l.Len())
}

func TestDecodeLayerFeatureErrors(t *testing.T) {
	cases := []struct {
		name string
		f    RawFeature
		kind error
	}{
		{"command", RawFeature{Type: GeomPoint, Geometry: []uint32{9, 4}}, ErrCommandStream},
		{"geometry", RawFeature{Type: GeomPoint, Geometry: []uint32{10, 4, 4}}, ErrGeometryAssembly},
		{"metadata", RawFeature{Type: GeomPoint, Geometry: []uint32{9, 4, 4}, Tags: []uint32{0}}, ErrMetadata},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := DecodeLayer(RawLayer{Version: 2, Features: []RawFeature{c.f}})
			require.True(t, errors.Is(err, c.kind), "got %v", err)
		})
	}
}

func TestEncodeLayerCanonicalOrder(t *testing.T) {
	raw := EncodeLayer(sampleTile().Layers[0])
	require.NotNil(t, raw.Extent)
	require.Equal(t, uint32(4096), *raw.Extent)
	var types []GeomType
	for _, f := range raw.Features {
		types = append(types, f.Type)
	}
	require.Equal(t, []GeomType{GeomPoint, GeomPoint, GeomLineString, GeomPolygon}, types)
	require.Equal(t, []string{"name", "rank", "area"}, raw.Keys)
	require.Equal(t, []uint32{9, 4, 4}, raw.Features[0].Geometry)
	// "rank"=3 is shared by both points
	require.Equal(t, raw.Features[0].Tags[3], raw.Features[1].Tags[3])
}

func TestTileRoundTrip(t *testing.T) {
	want := sampleTile()
	got, err := DecodeTile(EncodeTile(want))
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = Unmarshal(Marshal(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestTileRoundTripParallel(t *testing.T) {
	want := sampleTile()
	for i := 0; i < 10; i++ {
		want.Layers = append(want.Layers, sampleTile().Layers...)
	}
	conv := NewConverter(Options{Workers: 4})
	got, err := conv.Unmarshal(conv.Marshal(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func badTile() RawTile {
	good := EncodeTile(sampleTile()).Layers[0]
	return RawTile{Layers: []RawLayer{
		good,
		{Version: 2, Name: "odd", Features: []RawFeature{{Type: GeomPoint, Geometry: []uint32{9, 4, 4}, Tags: []uint32{1}}}},
		good,
		{Version: 2, Name: "unknown", Features: []RawFeature{{Type: GeomUnknown}}},
	}}
}

func TestDecodeTileFailFast(t *testing.T) {
	for _, workers := range []int{1, 4} {
		conv := NewConverter(Options{Workers: workers})
		got, err := conv.DecodeTile(badTile())
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrOddTagCount), "workers=%d got %v", workers, err)
		require.False(t, errors.Is(err, ErrEmptyLayer))
		require.Empty(t, got.Layers)
	}
}

func TestDecodeTileCollectErrors(t *testing.T) {
	conv := NewConverter(Options{Workers: 2, CollectErrors: true})
	_, err := conv.DecodeTile(badTile())
	require.Error(t, err)
	le, ok := err.(LayerErrors)
	require.True(t, ok, "got %T", err)
	require.Len(t, le, 2)
	require.True(t, errors.Is(le[0], ErrMetadata))
	require.True(t, errors.Is(le[1], ErrEmptyLayer))
	require.ErrorIs(t, err, ErrEmptyLayer)
	require.Contains(t, err.Error(), "odd")
}

func TestDecodeTileEmpty(t *testing.T) {
	got, err := Unmarshal(nil)
	require.NoError(t, err)
	require.Empty(t, got.Layers)
}

func TestDefaultWorkers(t *testing.T) {
	t.Setenv("MAX_THREADS", "6")
	require.Equal(t, 4, DefaultWorkers())
	t.Setenv("MAX_THREADS", "1")
	require.Equal(t, 1, DefaultWorkers())
	t.Setenv("MAX_THREADS", "0")
	require.Equal(t, 1, DefaultWorkers())
	t.Setenv("MAX_THREADS", "")
	n := DefaultWorkers()
	require.GreaterOrEqual(t, n, 1)
	require.Zero(t, n&(n-1))
}
