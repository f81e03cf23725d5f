package ndcore

// ElementType identifies one of the 8 fixed-width numeric kinds an Array
// may hold. The set is closed: there is no generic/any element type.
type ElementType int

const (
	Int8 ElementType = iota
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float32
	Float64
)

// String returns the canonical name of the element type.
func (t ElementType) String() string {
	switch t {
	case Int8:
		return "Int8"
	case UInt8:
		return "UInt8"
	case Int16:
		return "Int16"
	case UInt16:
		return "UInt16"
	case Int32:
		return "Int32"
	case UInt32:
		return "UInt32"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	default:
		return "Unsupported"
	}
}

// byteSize returns the fixed byte size of one element of this type, and
// false if the type is outside the closed set.
func (t ElementType) byteSize() (int, bool) {
	switch t {
	case Int8, UInt8:
		return 1, true
	case Int16, UInt16:
		return 2, true
	case Int32, UInt32, Float32:
		return 4, true
	case Float64:
		return 8, true
	default:
		return 0, false
	}
}

// valid reports whether t is one of the 8 supported kinds.
func (t ElementType) valid() bool {
	_, ok := t.byteSize()
	return ok
}
