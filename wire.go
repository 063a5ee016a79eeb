package vectortile

import (
	"math"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// fieldFunc handles one field whose tag has been consumed. It returns the
// number of bytes of b it consumed, or -1 to have the field skipped.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func consumeFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return protowire.ParseError(m)
			}
		}
		b = b[m:]
	}
	return nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

// appendUint32s reads a repeated uint32 field in packed or unpacked form.
func appendUint32s(dst []uint32, typ protowire.Type, b []byte) ([]uint32, int, error) {
	switch typ {
	case protowire.VarintType:
		v, n, err := consumeVarint(b)
		if err != nil {
			return dst, 0, err
		}
		return append(dst, uint32(v)), n, nil
	case protowire.BytesType:
		packed, n, err := consumeBytes(b)
		if err != nil {
			return dst, 0, err
		}
		for len(packed) > 0 {
			v, m, err := consumeVarint(packed)
			if err != nil {
				return dst, 0, err
			}
			dst = append(dst, uint32(v))
			packed = packed[m:]
		}
		return dst, n, nil
	}
	return dst, -1, nil
}

// DecodeMessage parses the protobuf encoding of a Tile. Unknown fields are
// skipped; malformed input yields an error marked ErrWireDecode.
func DecodeMessage(data []byte) (RawTile, error) {
	var t RawTile
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != tileLayers || typ != protowire.BytesType {
			return -1, nil
		}
		msg, n, err := consumeBytes(b)
		if err != nil {
			return 0, err
		}
		l, err := decodeRawLayer(msg)
		if err != nil {
			return 0, errors.Wrapf(err, "layer %d", len(t.Layers))
		}
		t.Layers = append(t.Layers, l)
		return n, nil
	})
	if err != nil {
		return RawTile{}, errors.Mark(errors.Wrap(err, "decode tile"), ErrWireDecode)
	}
	return t, nil
}

func decodeRawLayer(data []byte) (RawLayer, error) {
	l := RawLayer{Version: 1}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == layerVersion && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			l.Version = uint32(v)
			return n, err
		case num == layerName && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			l.Name = string(v)
			return n, err
		case num == layerFeatures && typ == protowire.BytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			f, err := decodeRawFeature(msg)
			if err != nil {
				return 0, errors.Wrapf(err, "feature %d", len(l.Features))
			}
			l.Features = append(l.Features, f)
			return n, nil
		case num == layerKeys && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			l.Keys = append(l.Keys, string(v))
			return n, err
		case num == layerValues && typ == protowire.BytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			v, err := decodeRawValue(msg)
			if err != nil {
				return 0, errors.Wrapf(err, "value %d", len(l.Values))
			}
			l.Values = append(l.Values, v)
			return n, nil
		case num == layerExtent && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			extent := uint32(v)
			l.Extent = &extent
			return n, err
		}
		return -1, nil
	})
	return l, err
}

func decodeRawFeature(data []byte) (RawFeature, error) {
	var f RawFeature
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var n int
		var err error
		switch num {
		case featureID:
			if typ != protowire.VarintType {
				return -1, nil
			}
			f.ID, n, err = consumeVarint(b)
		case featureTags:
			f.Tags, n, err = appendUint32s(f.Tags, typ, b)
		case featureType:
			if typ != protowire.VarintType {
				return -1, nil
			}
			var v uint64
			v, n, err = consumeVarint(b)
			// values outside the enum are discarded as Unknown
			if v <= uint64(GeomPolygon) {
				f.Type = GeomType(v)
			} else {
				f.Type = GeomUnknown
			}
		case featureGeometry:
			f.Geometry, n, err = appendUint32s(f.Geometry, typ, b)
		default:
			return -1, nil
		}
		return n, err
	})
	return f, err
}

func decodeRawValue(data []byte) (RawValue, error) {
	var v RawValue
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == valueString && typ == protowire.BytesType:
			s, n, err := consumeBytes(b)
			str := string(s)
			v.StringValue = &str
			return n, err
		case num == valueFloat && typ == protowire.Fixed32Type:
			bits, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			f := math.Float32frombits(bits)
			v.FloatValue = &f
			return n, nil
		case num == valueDouble && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			f := math.Float64frombits(bits)
			v.DoubleValue = &f
			return n, nil
		case num == valueInt && typ == protowire.VarintType:
			x, n, err := consumeVarint(b)
			i := int64(x)
			v.IntValue = &i
			return n, err
		case num == valueUint && typ == protowire.VarintType:
			x, n, err := consumeVarint(b)
			v.UintValue = &x
			return n, err
		case num == valueSint && typ == protowire.VarintType:
			x, n, err := consumeVarint(b)
			i := protowire.DecodeZigZag(x)
			v.SintValue = &i
			return n, err
		case num == valueBool && typ == protowire.VarintType:
			x, n, err := consumeVarint(b)
			bv := protowire.DecodeBool(x)
			v.BoolValue = &bv
			return n, err
		}
		return -1, nil
	})
	return v, err
}

// EncodeMessage serialises a Tile. Repeated integers are always packed.
func EncodeMessage(t RawTile) []byte {
	var b []byte
	for _, l := range t.Layers {
		b = protowire.AppendTag(b, tileLayers, protowire.BytesType)
		b = protowire.AppendBytes(b, appendRawLayer(nil, l))
	}
	return b
}

func appendRawLayer(b []byte, l RawLayer) []byte {
	b = protowire.AppendTag(b, layerName, protowire.BytesType)
	b = protowire.AppendString(b, l.Name)
	for _, f := range l.Features {
		b = protowire.AppendTag(b, layerFeatures, protowire.BytesType)
		b = protowire.AppendBytes(b, appendRawFeature(nil, f))
	}
	for _, k := range l.Keys {
		b = protowire.AppendTag(b, layerKeys, protowire.BytesType)
		b = protowire.AppendString(b, k)
	}
	for _, v := range l.Values {
		b = protowire.AppendTag(b, layerValues, protowire.BytesType)
		b = protowire.AppendBytes(b, appendRawValue(nil, v))
	}
	if l.Extent != nil {
		b = protowire.AppendTag(b, layerExtent, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*l.Extent))
	}
	b = protowire.AppendTag(b, layerVersion, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(l.Version))
}

func appendPacked(b []byte, num protowire.Number, vs []uint32) []byte {
	if len(vs) == 0 {
		return b
	}
	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))
	for _, v := range vs {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}

func appendRawFeature(b []byte, f RawFeature) []byte {
	if f.ID != 0 {
		b = protowire.AppendTag(b, featureID, protowire.VarintType)
		b = protowire.AppendVarint(b, f.ID)
	}
	b = appendPacked(b, featureTags, f.Tags)
	if f.Type != GeomUnknown {
		b = protowire.AppendTag(b, featureType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.Type))
	}
	return appendPacked(b, featureGeometry, f.Geometry)
}

func appendRawValue(b []byte, v RawValue) []byte {
	if v.StringValue != nil {
		b = protowire.AppendTag(b, valueString, protowire.BytesType)
		b = protowire.AppendString(b, *v.StringValue)
	}
	if v.FloatValue != nil {
		b = protowire.AppendTag(b, valueFloat, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(*v.FloatValue))
	}
	if v.DoubleValue != nil {
		b = protowire.AppendTag(b, valueDouble, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(*v.DoubleValue))
	}
	if v.IntValue != nil {
		b = protowire.AppendTag(b, valueInt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*v.IntValue))
	}
	if v.UintValue != nil {
		b = protowire.AppendTag(b, valueUint, protowire.VarintType)
		b = protowire.AppendVarint(b, *v.UintValue)
	}
	if v.SintValue != nil {
		b = protowire.AppendTag(b, valueSint, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(*v.SintValue))
	}
	if v.BoolValue != nil {
		b = protowire.AppendTag(b, valueBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(*v.BoolValue))
	}
	return b
}
