// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package exemplar

// PropertyDataType is the wire tag identifying an exemplar property's
// value type.
type PropertyDataType uint16

const (
	Boolean PropertyDataType = 0x0B00
	UInt8   PropertyDataType = 0x0100
	UInt16  PropertyDataType = 0x0200
	UInt32  PropertyDataType = 0x0300
	SInt32  PropertyDataType = 0x0700
	SInt64  PropertyDataType = 0x0800
	Float32 PropertyDataType = 0x0900
	String  PropertyDataType = 0x0C00
)

func (t PropertyDataType) String() string {
	switch t {
	case Boolean:
		return "Boolean"
	case UInt8:
		return "UInt8"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case SInt32:
		return "SInt32"
	case SInt64:
		return "SInt64"
	case Float32:
		return "Float32"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

// PropertyValue is a closed set of typed property payloads. The concrete
// type implementing it identifies the property's wire type; DataType
// reports the corresponding tag.
type PropertyValue interface {
	DataType() PropertyDataType
	count() int
}

// BoolValues is the payload of a Boolean property.
type BoolValues []bool

func (BoolValues) DataType() PropertyDataType { return Boolean }
func (v BoolValues) count() int               { return len(v) }

// UInt8Values is the payload of a UInt8 property.
type UInt8Values []uint8

func (UInt8Values) DataType() PropertyDataType { return UInt8 }
func (v UInt8Values) count() int               { return len(v) }

// UInt16Values is the payload of a UInt16 property.
type UInt16Values []uint16

func (UInt16Values) DataType() PropertyDataType { return UInt16 }
func (v UInt16Values) count() int               { return len(v) }

// UInt32Values is the payload of a UInt32 property.
type UInt32Values []uint32

func (UInt32Values) DataType() PropertyDataType { return UInt32 }
func (v UInt32Values) count() int               { return len(v) }

// SInt32Values is the payload of a SInt32 property.
type SInt32Values []int32

func (SInt32Values) DataType() PropertyDataType { return SInt32 }
func (v SInt32Values) count() int               { return len(v) }

// SInt64Values is the payload of a SInt64 property.
type SInt64Values []int64

func (SInt64Values) DataType() PropertyDataType { return SInt64 }
func (v SInt64Values) count() int               { return len(v) }

// Float32Values is the payload of a Float32 property.
type Float32Values []float32

func (Float32Values) DataType() PropertyDataType { return Float32 }
func (v Float32Values) count() int               { return len(v) }

// StringValue is the payload of a String property. Strings always carry
// their byte length as the wire rep count and are never treated as an
// array of characters.
type StringValue string

func (StringValue) DataType() PropertyDataType { return String }
func (v StringValue) count() int { return len(v) }

// Property is one entry in an exemplar's property collection.
type Property struct {
	ID    uint32
	Value PropertyValue
}

// isArray reports whether v should be written with the array key type:
// true for any multi-valued property, and unconditionally true for
// String regardless of its length.
func isArray(v PropertyValue) bool {
	return v.count() > 1 || v.DataType() == String
}
