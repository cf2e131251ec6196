// Package pbdata converts Values to and from the protobuf struct
// representation, mainly to render them as JSON for host-side tools.
package pbdata

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/protobuf/jsonpb"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/datalink.go/pkg/data"
)

var (
	// ErrNotRepresentable indicates a protobuf value has no Value equivalent.
	ErrNotRepresentable = errors.New("not representable")
)

// ToProto converts v into a structpb.Value. Integers become numbers, so
// 64-bit values beyond 2^53 lose precision.
func ToProto(v data.Value) *structpb.Value {
	switch v.Kind() {
	case data.KindNull:
		return &structpb.Value{Kind: &structpb.Value_NullValue{}}
	case data.KindBool:
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v.AsBool()}}
	case data.KindString:
		return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v.AsString()}}
	case data.KindArray:
		lst := &structpb.ListValue{Values: make([]*structpb.Value, v.Len())}
		for n := range lst.Values {
			lst.Values[n] = ToProto(v.Index(n))
		}
		return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: lst}}
	}
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: number(v)}}
}

func number(v data.Value) float64 {
	switch v.Kind() {
	case data.KindInt8:
		return float64(v.AsInt8())
	case data.KindInt16:
		return float64(v.AsInt16())
	case data.KindInt32:
		return float64(v.AsInt32())
	case data.KindInt64:
		return float64(v.AsInt64())
	case data.KindUInt8:
		return float64(v.AsUInt8())
	case data.KindUInt16:
		return float64(v.AsUInt16())
	case data.KindUInt32:
		return float64(v.AsUInt32())
	case data.KindUInt64:
		return float64(v.AsUInt64())
	}
	return 0
}

// FromProto converts a structpb.Value into a Value. Numbers must be
// integral and become Int64. Structs are not representable.
func FromProto(pv *structpb.Value) (data.Value, error) {
	switch k := pv.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return data.Null(), nil
	case *structpb.Value_BoolValue:
		return data.Bool(k.BoolValue), nil
	case *structpb.Value_StringValue:
		return data.String(k.StringValue), nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return data.Value{}, fmt.Errorf("number %v: %w", n, ErrNotRepresentable)
		}
		return data.Int64(int64(n)), nil
	case *structpb.Value_ListValue:
		elems := make([]data.Value, len(k.ListValue.GetValues()))
		for n, elem := range k.ListValue.GetValues() {
			v, err := FromProto(elem)
			if err != nil {
				return data.Value{}, err
			}
			elems[n] = v
		}
		return data.Array(elems...), nil
	}
	return data.Value{}, fmt.Errorf("struct: %w", ErrNotRepresentable)
}

// MarshalJSON renders v as JSON.
func MarshalJSON(v data.Value) (string, error) {
	var m jsonpb.Marshaler
	return m.MarshalToString(ToProto(v))
}

// UnmarshalJSON parses JSON into a Value.
func UnmarshalJSON(s string) (data.Value, error) {
	var pv structpb.Value
	if err := jsonpb.UnmarshalString(s, &pv); err != nil {
		return data.Value{}, err
	}
	return FromProto(&pv)
}
