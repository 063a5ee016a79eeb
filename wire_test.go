package vectortile

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestDecodeMessageUnpackedAndUnknownFields(t *testing.T) {
	var feat []byte
	feat = protowire.AppendTag(feat, featureType, protowire.VarintType)
	feat = protowire.AppendVarint(feat, uint64(GeomPoint))
	for _, v := range []uint64{9, 4, 4} {
		feat = protowire.AppendTag(feat, featureGeometry, protowire.VarintType)
		feat = protowire.AppendVarint(feat, v)
	}
	feat = protowire.AppendTag(feat, 99, protowire.BytesType)
	feat = protowire.AppendString(feat, "zz")

	var layer []byte
	layer = protowire.AppendTag(layer, layerName, protowire.BytesType)
	layer = protowire.AppendString(layer, "l")
	layer = protowire.AppendTag(layer, layerFeatures, protowire.BytesType)
	layer = protowire.AppendBytes(layer, feat)
	layer = protowire.AppendTag(layer, 42, protowire.Fixed64Type)
	layer = protowire.AppendFixed64(layer, 7)
	layer = protowire.AppendTag(layer, layerVersion, protowire.VarintType)
	layer = protowire.AppendVarint(layer, 2)

	var tile []byte
	tile = protowire.AppendTag(tile, tileLayers, protowire.BytesType)
	tile = protowire.AppendBytes(tile, layer)

	raw, err := DecodeMessage(tile)
	require.NoError(t, err)
	require.Len(t, raw.Layers, 1)
	rl := raw.Layers[0]
	require.Equal(t, "l", rl.Name)
	require.Equal(t, uint32(2), rl.Version)
	require.Nil(t, rl.Extent)
	require.Equal(t, []RawFeature{{Type: GeomPoint, Geometry: []uint32{9, 4, 4}}}, rl.Features)
}

func TestDecodeMessageMalformed(t *testing.T) {
	cases := map[string][]byte{
		"truncated layer":   {0x1a, 0x05, 0x01},
		"truncated varint":  {0x1a, 0x02, 0x78, 0xff},
		"bad tag":           {0x00},
		"truncated feature": {0x1a, 0x03, 0x12, 0x05, 0x08},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeMessage(data)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrWireDecode), "got %v", err)
		})
	}
}

func TestDecodeMessageUnknownGeomType(t *testing.T) {
	raw := RawTile{Layers: []RawLayer{{
		Version:  2,
		Name:     "l",
		Features: []RawFeature{{Type: GeomPolygon, Geometry: []uint32{9, 4, 4}}},
	}}}
	data := EncodeMessage(raw)
	// rewrite the enum value 3 of the only feature to 9
	for i := range data {
		if data[i] == 0x18 && i+1 < len(data) && data[i+1] == 0x03 {
			data[i+1] = 0x09
			break
		}
	}
	got, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, GeomUnknown, got.Layers[0].Features[0].Type)
}

func TestSintValueWireForm(t *testing.T) {
	require.Equal(t, []byte{0x30, 0x09}, appendRawValue(nil, EncodeValue(SintValue(-5))))
	require.Equal(t, []byte{0x38, 0x01}, appendRawValue(nil, EncodeValue(BoolValue(true))))
}

func TestEncodeDecodeMessage(t *testing.T) {
	extent := uint32(512)
	raw := RawTile{Layers: []RawLayer{
		{
			Version: 2,
			Name:    "roads",
			Features: []RawFeature{
				{ID: 7, Tags: []uint32{0, 0, 1, 1}, Type: GeomLineString, Geometry: []uint32{9, 4, 4, 18, 0, 16, 16, 0}},
				{Type: GeomPoint, Geometry: []uint32{9, 300, 300}},
			},
			Keys: []string{"name", "lanes"},
			Values: []RawValue{
				EncodeValue(StringValue("main")),
				EncodeValue(SintValue(-2)),
				EncodeValue(FloatValue(1.25)),
				EncodeValue(DoubleValue(-3.5)),
				EncodeValue(IntValue(-1)),
				EncodeValue(UintValue(1 << 40)),
				EncodeValue(BoolValue(false)),
			},
			Extent: &extent,
		},
		{Version: 1, Name: "empty"},
	}}
	got, err := DecodeMessage(EncodeMessage(raw))
	require.NoError(t, err)
	require.Equal(t, raw, got)
}
