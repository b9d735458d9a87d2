package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat64 is a float that may be absent. Arithmetic helpers propagate absence:
// any operation with a missing operand yields a missing result.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// SomeFloat returns a present value. NaN is treated as absent.
func SomeFloat(v float64) NullFloat64 {
	if math.IsNaN(v) {
		return NullFloat64{}
	}
	return NullFloat64{Float64: v, Valid: true}
}

// NoFloat returns an absent value.
func NoFloat() NullFloat64 {
	return NullFloat64{}
}

// Map applies fn to a present value.
func (n NullFloat64) Map(fn func(float64) float64) NullFloat64 {
	if !n.Valid {
		return n
	}
	return SomeFloat(fn(n.Float64))
}

// CombineFloat applies fn when both operands are present.
func CombineFloat(a, b NullFloat64, fn func(x, y float64) float64) NullFloat64 {
	if !a.Valid || !b.Valid {
		return NullFloat64{}
	}
	return SomeFloat(fn(a.Float64, b.Float64))
}

// OrNaN returns the value or NaN when absent.
func (n NullFloat64) OrNaN() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

// String renders the value for flat-file output at float32 precision, the precision
// of the source reports. Absent values render empty.
func (n NullFloat64) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 32)
}

// MarshalJSON encodes absent values as null.
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// NullInt32 is a 32-bit integer that may be absent.
type NullInt32 struct {
	Int32 int32
	Valid bool
}

// SomeInt returns a present value.
func SomeInt(v int32) NullInt32 {
	return NullInt32{Int32: v, Valid: true}
}

// Sub returns n - other, absent if either is absent.
func (n NullInt32) Sub(other NullInt32) NullInt32 {
	if !n.Valid || !other.Valid {
		return NullInt32{}
	}
	return SomeInt(n.Int32 - other.Int32)
}

// String renders the value for flat-file output; absent values render empty.
func (n NullInt32) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(int64(n.Int32), 10)
}

// MarshalJSON encodes absent values as null.
func (n NullInt32) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int32)
}
