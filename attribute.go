package ndcore

import (
	"fmt"
	"strings"
)

// AttrKind identifies the type of value stored in an Attribute: one of
// the 8 numeric element kinds, a string kind, or undefined (no value).
type AttrKind int

const (
	AttrUndefined AttrKind = iota
	AttrInt8
	AttrUInt8
	AttrInt16
	AttrUInt16
	AttrInt32
	AttrUInt32
	AttrFloat32
	AttrFloat64
	AttrString
)

func (k AttrKind) String() string {
	switch k {
	case AttrUndefined:
		return "Undefined"
	case AttrInt8:
		return "Int8"
	case AttrUInt8:
		return "UInt8"
	case AttrInt16:
		return "Int16"
	case AttrUInt16:
		return "UInt16"
	case AttrInt32:
		return "Int32"
	case AttrUInt32:
		return "UInt32"
	case AttrFloat32:
		return "Float32"
	case AttrFloat64:
		return "Float64"
	case AttrString:
		return "String"
	default:
		return "Unknown"
	}
}

// attrValue is the tagged-union payload of an Attribute: one field per
// numeric kind (8 in all), plus an owned string for the string kind.
// Only the field matching Kind is live.
type attrValue struct {
	i8  int8
	ui8 uint8
	i16 int16
	ui16 uint16
	i32  int32
	ui32 uint32
	f32  float32
	f64  float64
	str  string
}

// Attribute is a named, typed, optionally-described metadata value
// attached to an Array. Name comparison is case-insensitive everywhere
// an Attribute is looked up.
type Attribute struct {
	name        string
	description string
	kind        AttrKind
	value       attrValue
}

// NewAttribute creates an Attribute with the given name, kind
// AttrUndefined, and no description, matching the NDAttribute(pName)
// constructor.
func NewAttribute(name string) *Attribute {
	return &Attribute{name: name, kind: AttrUndefined}
}

// Name returns the attribute's name.
func (a *Attribute) Name() string { return a.name }

// Description returns the attribute's description, or "" if none was set.
func (a *Attribute) Description() string { return a.description }

// Kind returns the attribute's current value kind.
func (a *Attribute) Kind() AttrKind { return a.kind }

// SetDescription copies text into the attribute's description. Setting
// the same text is a no-op, avoiding an allocation.
func (a *Attribute) SetDescription(text string) {
	if a.description == text {
		return
	}
	a.description = text
}

// SetValue replaces the stored value. For AttrUndefined the payload is
// ignored. For every other kind SetValue expects the matching Go type in
// value and fails with ErrInvalidArgument if value is nil. Setting a
// string attribute to its current value is a no-op.
func (a *Attribute) SetValue(kind AttrKind, value any) error {
	if kind != AttrUndefined && value == nil {
		return ErrInvalidArgument
	}
	switch kind {
	case AttrUndefined:
		a.kind = kind
		return nil
	case AttrString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: expected string for AttrString", ErrInvalidArgument)
		}
		if a.kind == AttrString && a.value.str == s {
			return nil
		}
		a.kind = kind
		a.value = attrValue{str: s}
		return nil
	case AttrInt8:
		v, ok := value.(int8)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{i8: v}
	case AttrUInt8:
		v, ok := value.(uint8)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{ui8: v}
	case AttrInt16:
		v, ok := value.(int16)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{i16: v}
	case AttrUInt16:
		v, ok := value.(uint16)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{ui16: v}
	case AttrInt32:
		v, ok := value.(int32)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{i32: v}
	case AttrUInt32:
		v, ok := value.(uint32)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{ui32: v}
	case AttrFloat32:
		v, ok := value.(float32)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{f32: v}
	case AttrFloat64:
		v, ok := value.(float64)
		if !ok {
			return typeArgError(kind)
		}
		a.kind, a.value = kind, attrValue{f64: v}
	default:
		return fmt.Errorf("%w: kind %v", ErrUnsupportedType, kind)
	}
	return nil
}

func typeArgError(kind AttrKind) error {
	return fmt.Errorf("%w: value does not match kind %v", ErrInvalidArgument, kind)
}

// Value returns the stored value as an any, failing with ErrTypeMismatch
// if kind does not match the stored kind. There is no implicit
// conversion between kinds: callers that need narrowing or widening do
// it themselves after retrieving the native value.
func (a *Attribute) Value(kind AttrKind) (any, error) {
	if kind != a.kind {
		return nil, ErrTypeMismatch
	}
	switch kind {
	case AttrUndefined:
		return nil, nil
	case AttrString:
		return a.value.str, nil
	case AttrInt8:
		return a.value.i8, nil
	case AttrUInt8:
		return a.value.ui8, nil
	case AttrInt16:
		return a.value.i16, nil
	case AttrUInt16:
		return a.value.ui16, nil
	case AttrInt32:
		return a.value.i32, nil
	case AttrUInt32:
		return a.value.ui32, nil
	case AttrFloat32:
		return a.value.f32, nil
	case AttrFloat64:
		return a.value.f64, nil
	default:
		return nil, ErrUnsupportedType
	}
}

// ValueSize returns the storage size of the current value in bytes; for
// AttrString this is the length of the string plus one, mirroring the C
// "including terminator" convention the original uses for buffer sizing.
func (a *Attribute) ValueSize() int {
	switch a.kind {
	case AttrUndefined:
		return 0
	case AttrString:
		return len(a.value.str) + 1
	case AttrInt8, AttrUInt8:
		return 1
	case AttrInt16, AttrUInt16:
		return 2
	case AttrInt32, AttrUInt32, AttrFloat32:
		return 4
	case AttrFloat64:
		return 8
	default:
		return 0
	}
}

// String renders the attribute as a human-readable report fragment, used
// by Array.Report when per-attribute detail is requested.
func (a *Attribute) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attribute %q:\n", a.name)
	if a.description != "" {
		fmt.Fprintf(&b, "  description=%s\n", a.description)
	}
	switch a.kind {
	case AttrString:
		fmt.Fprintf(&b, "  kind=String, value=%s\n", a.value.str)
	case AttrUndefined:
		fmt.Fprintf(&b, "  kind=Undefined\n")
	default:
		v, _ := a.Value(a.kind)
		fmt.Fprintf(&b, "  kind=%s, value=%v\n", a.kind, v)
	}
	return b.String()
}

// equalFoldName reports whether two attribute names match case-insensitively.
func equalFoldName(a, b string) bool {
	return strings.EqualFold(a, b)
}
