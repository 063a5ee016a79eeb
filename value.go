package vectortile

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// ValueKind names the populated variant of a Value.
type ValueKind uint8

const (
	KindString ValueKind = iota + 1
	KindFloat
	KindDouble
	KindInt
	KindUint
	KindSint
	KindBool
)

var kindNames = [...]string{
	KindString: "string",
	KindFloat:  "float",
	KindDouble: "double",
	KindInt:    "int",
	KindUint:   "uint",
	KindSint:   "sint",
	KindBool:   "bool",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "invalid"
}

// Value is a metadata value: exactly one of seven variants. Values are
// comparable, and == is structural equality including the variant.
type Value struct {
	kind ValueKind
	s    string
	f32  float32
	f64  float64
	i    int64
	u    uint64
	b    bool
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func FloatValue(f float32) Value { return Value{kind: KindFloat, f32: f} }
func DoubleValue(f float64) Value { return Value{kind: KindDouble, f64: f} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func UintValue(u uint64) Value { return Value{kind: KindUint, u: u} }
func SintValue(i int64) Value { return Value{kind: KindSint, i: i} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Str() string { return v.s }
func (v Value) Float32() float32 { return v.f32 }
func (v Value) Float64() float64 { return v.f64 }
func (v Value) Int64() int64 { return v.i }
func (v Value) Uint64() uint64 { return v.u }
func (v Value) Bool() bool { return v.b }
func (v Value) IsValid() bool { return v.kind >= KindString && v.kind <= KindBool }

// Interface returns the payload as a plain Go value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.s
	case KindFloat:
		return v.f32
	case KindDouble:
		return v.f64
	case KindInt, KindSint:
		return v.i
	case KindUint:
		return v.u
	case KindBool:
		return v.b
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindFloat:
		return strconv.FormatFloat(float64(v.f32), 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case KindInt, KindSint:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "<invalid>"
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// DecodeValue picks the first populated field of the wire value in field
// order.
func DecodeValue(rv RawValue) (Value, error) {
	switch {
	case rv.StringValue != nil:
		return StringValue(*rv.StringValue), nil
	case rv.FloatValue != nil:
		return FloatValue(*rv.FloatValue), nil
	case rv.DoubleValue != nil:
		return DoubleValue(*rv.DoubleValue), nil
	case rv.IntValue != nil:
		return IntValue(*rv.IntValue), nil
	case rv.UintValue != nil:
		return UintValue(*rv.UintValue), nil
	case rv.SintValue != nil:
		return SintValue(*rv.SintValue), nil
	case rv.BoolValue != nil:
		return BoolValue(*rv.BoolValue), nil
	}
	return Value{}, ErrValue
}

// EncodeValue sets the single wire field matching v.
func EncodeValue(v Value) RawValue {
	var rv RawValue
	switch v.kind {
	case KindString:
		s := v.s
		rv.StringValue = &s
	case KindFloat:
		f := v.f32
		rv.FloatValue = &f
	case KindDouble:
		f := v.f64
		rv.DoubleValue = &f
	case KindInt:
		i := v.i
		rv.IntValue = &i
	case KindUint:
		u := v.u
		rv.UintValue = &u
	case KindSint:
		i := v.i
		rv.SintValue = &i
	case KindBool:
		b := v.b
		rv.BoolValue = &b
	}
	return rv
}
