package ndcore

import "testing"

func TestAttributeSetValueUndefinedAllowsNil(t *testing.T) {
	a := NewAttribute("foo")
	if err := a.SetValue(AttrUndefined, nil); err != nil {
		t.Fatalf("SetValue(Undefined, nil) = %v, want nil", err)
	}
	if a.Kind() != AttrUndefined {
		t.Errorf("Kind() = %v, want Undefined", a.Kind())
	}
}

func TestAttributeSetValueRequiresValueForNonUndefined(t *testing.T) {
	a := NewAttribute("foo")
	tests := []struct {
		name string
		kind AttrKind
	}{
		{"int8", AttrInt8},
		{"uint32", AttrUInt32},
		{"float64", AttrFloat64},
		{"string", AttrString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.SetValue(tt.kind, nil); err != ErrInvalidArgument {
				t.Errorf("SetValue(%v, nil) = %v, want ErrInvalidArgument", tt.kind, err)
			}
		})
	}
}

func TestAttributeGetValueTypeMismatch(t *testing.T) {
	a := NewAttribute("foo")
	if err := a.SetValue(AttrInt32, int32(42)); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if _, err := a.Value(AttrFloat32); err != ErrTypeMismatch {
		t.Errorf("Value(Float32) on an Int32 attribute = %v, want ErrTypeMismatch", err)
	}
	v, err := a.Value(AttrInt32)
	if err != nil {
		t.Fatalf("Value(Int32): %v", err)
	}
	if v.(int32) != 42 {
		t.Errorf("Value = %v, want 42", v)
	}
}

func TestAttributeStringValue(t *testing.T) {
	a := NewAttribute("label")
	if err := a.SetValue(AttrString, "hello"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	v, err := a.Value(AttrString)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.(string) != "hello" {
		t.Errorf("Value = %q, want %q", v, "hello")
	}
	if got, want := a.ValueSize(), len("hello")+1; got != want {
		t.Errorf("ValueSize() = %d, want %d", got, want)
	}
}

func TestAttributeSetDescriptionNoOpOnSameText(t *testing.T) {
	a := NewAttribute("foo")
	a.SetDescription("first")
	if a.Description() != "first" {
		t.Fatalf("Description() = %q, want %q", a.Description(), "first")
	}
	a.SetDescription("first")
	if a.Description() != "first" {
		t.Errorf("Description() changed unexpectedly to %q", a.Description())
	}
	a.SetDescription("second")
	if a.Description() != "second" {
		t.Errorf("Description() = %q, want %q", a.Description(), "second")
	}
}

func TestAttributeValueSizeByKind(t *testing.T) {
	tests := []struct {
		kind AttrKind
		val  any
		want int
	}{
		{AttrInt8, int8(1), 1},
		{AttrUInt8, uint8(1), 1},
		{AttrInt16, int16(1), 2},
		{AttrUInt16, uint16(1), 2},
		{AttrInt32, int32(1), 4},
		{AttrUInt32, uint32(1), 4},
		{AttrFloat32, float32(1), 4},
		{AttrFloat64, float64(1), 8},
	}
	for _, tt := range tests {
		a := NewAttribute("n")
		if err := a.SetValue(tt.kind, tt.val); err != nil {
			t.Fatalf("SetValue(%v): %v", tt.kind, err)
		}
		if got := a.ValueSize(); got != tt.want {
			t.Errorf("ValueSize(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
