package vectortile

// Field numbers of the vector_tile.proto messages (MVT 2.1).
const (
	tileLayers = 3

	layerVersion  = 15
	layerName     = 1
	layerFeatures = 2
	layerKeys     = 3
	layerValues   = 4
	layerExtent   = 5

	featureID       = 1
	featureTags     = 2
	featureType     = 3
	featureGeometry = 4
)

// Field numbers of Tile.Value, in decode priority order.
const (
	valueString = iota + 1
	valueFloat
	valueDouble
	valueInt
	valueUint
	valueSint
	valueBool
)

const (
	//DefaultExtent is the extent assumed when a layer omits it.
	DefaultExtent uint32 = 4096
	//DefaultVersion is the MVT major version this codec writes.
	DefaultVersion uint32 = 2
)

//GeomType is the Feature.type enum of the wire form.
type GeomType uint8

const (
	GeomUnknown    GeomType = 0
	GeomPoint      GeomType = 1
	GeomLineString GeomType = 2
	GeomPolygon    GeomType = 3
)

func (t GeomType) String() string {
	switch t {
	case GeomPoint:
		return "point"
	case GeomLineString:
		return "linestring"
	case GeomPolygon:
		return "polygon"
	}
	return "unknown"
}

//RawValue is Tile.Value as carried on the wire. At most one field is set;
//the codec rejects values with none set.
type RawValue struct {
	StringValue *string
	FloatValue  *float32
	DoubleValue *float64
	IntValue    *int64
	UintValue   *uint64
	SintValue   *int64 // already unzigzagged
	BoolValue   *bool
}

//RawFeature is Tile.Feature. Tags and Geometry reference the owning
//layer's tables and the command grammar respectively.
type RawFeature struct {
	ID       uint64
	Tags     []uint32
	Type     GeomType
	Geometry []uint32
}

//RawLayer is Tile.Layer. Extent is nil when the field was absent.
type RawLayer struct {
	Version  uint32
	Name     string
	Features []RawFeature
	Keys     []string
	Values   []RawValue
	Extent   *uint32
}

//RawTile is the top level Tile message.
type RawTile struct {
	Layers []RawLayer
}
