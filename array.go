package ndcore

import (
	"container/list"
	"fmt"
	"sync"
)

// Array is a typed N-dimensional buffer plus identity and attribute
// metadata. Arrays are always constructed by a Pool; the zero value is
// not useful on its own.
type Array struct {
	ElementType ElementType
	NDims       int
	Dims        [MaxDims]Dimension

	Data     []byte
	UniqueID int
	Timestamp float64

	owner *Pool

	refCount int // guarded by owner's mutex, not attrMu

	// externallyBacked is true when Data currently points at a
	// caller-supplied buffer adopted by Allocate without copying. Such
	// buffers are never charged against the pool's memorySize and are
	// never freed by the pool (see DESIGN.md, Open Question 1).
	externallyBacked bool

	attrMu sync.Mutex
	attrs  []*Attribute

	// freeElem is this array's node in the owner Pool's free list
	// (a container/list), nil when the array is in use. It lets Release/Allocate
	// locate and detach a free array in O(1) without a linear scan.
	freeElem *list.Element
}

// newArray constructs a bare Array with no owner, zero dims, and an
// empty attribute list. Only Pool should call this.
func newArray() *Array {
	return &Array{}
}

// Info returns bytesPerElement, nElements and totalBytes derived from
// ElementType and Dims[0:NDims]. It fails with ErrUnsupportedType if
// ElementType is outside the closed set.
func (a *Array) Info() (bytesPerElement, nElements, totalBytes int, err error) {
	bytesPerElement, ok := a.ElementType.byteSize()
	if !ok {
		return 0, 0, 0, ErrUnsupportedType
	}
	nElements = 1
	for i := 0; i < a.NDims; i++ {
		nElements *= a.Dims[i].Size
	}
	totalBytes = nElements * bytesPerElement
	return bytesPerElement, nElements, totalBytes, nil
}

// InitDim returns a Dimension{size, offset=0, binning=1, reverse=false},
// the array-method mirror of the package-level InitDim helper.
func (a *Array) InitDim(size int) Dimension {
	return InitDim(size)
}

// Reserve increments the reference count via the owning Pool. It fails
// with ErrNoOwner if the array has no owner.
func (a *Array) Reserve() error {
	if a.owner == nil {
		return ErrNoOwner
	}
	return a.owner.Reserve(a)
}

// Release decrements the reference count via the owning Pool. It fails
// with ErrNoOwner if the array has no owner.
func (a *Array) Release() error {
	if a.owner == nil {
		return ErrNoOwner
	}
	return a.owner.Release(a)
}

// Owner returns the Pool that allocated this array, or nil.
func (a *Array) Owner() *Pool { return a.owner }

// RefCount returns the current reference count. Intended for tests and
// diagnostics; ordinary callers should use Reserve/Release.
func (a *Array) RefCount() int {
	if a.owner == nil {
		return a.refCount
	}
	a.owner.mu.Lock()
	defer a.owner.mu.Unlock()
	return a.refCount
}

// find locates an attribute by case-insensitive name without locking;
// callers must hold attrMu.
func (a *Array) find(name string) *Attribute {
	for _, attr := range a.attrs {
		if equalFoldName(attr.name, name) {
			return attr
		}
	}
	return nil
}

// Add ensures an attribute with the given name exists, creating it if
// necessary, and returns it. Equivalent to NDArray::addAttribute(pName).
func (a *Array) Add(name string) *Attribute {
	a.attrMu.Lock()
	defer a.attrMu.Unlock()
	if attr := a.find(name); attr != nil {
		return attr
	}
	attr := NewAttribute(name)
	a.attrs = append(a.attrs, attr)
	return attr
}

// AddValue ensures an attribute with the given name exists and sets its
// kind and value, overwriting any prior value. Equivalent to
// NDArray::addAttribute(pName, dataType, pValue).
func (a *Array) AddValue(name string, kind AttrKind, value any) (*Attribute, error) {
	attr := a.Add(name)
	if err := attr.SetValue(kind, value); err != nil {
		return nil, err
	}
	return attr, nil
}

// AddValueDescribed ensures an attribute with the given name exists and
// sets its description, kind and value. Equivalent to
// NDArray::addAttribute(pName, pDescription, dataType, pValue).
func (a *Array) AddValueDescribed(name, description string, kind AttrKind, value any) (*Attribute, error) {
	attr := a.Add(name)
	attr.SetDescription(description)
	if err := attr.SetValue(kind, value); err != nil {
		return nil, err
	}
	return attr, nil
}

// AddAttribute copies the fields of an existing Attribute into this
// array's attribute list, creating or updating by name. Equivalent to
// NDArray::addAttribute(NDAttribute *pIn).
func (a *Array) AddAttribute(in *Attribute) (*Attribute, error) {
	attr := a.Add(in.name)
	attr.SetDescription(in.description)
	var value any
	if in.kind == AttrString {
		value = in.value.str
	} else if in.kind != AttrUndefined {
		v, err := in.Value(in.kind)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if err := attr.SetValue(in.kind, value); err != nil {
		return nil, err
	}
	return attr, nil
}

// Find returns the attribute matching name (case-insensitive), or nil.
func (a *Array) Find(name string) *Attribute {
	a.attrMu.Lock()
	defer a.attrMu.Unlock()
	return a.find(name)
}

// Next returns the attribute following prev in insertion order, or the
// first attribute if prev is nil. Returns nil at the end of the list.
func (a *Array) Next(prev *Attribute) *Attribute {
	a.attrMu.Lock()
	defer a.attrMu.Unlock()
	if prev == nil {
		if len(a.attrs) == 0 {
			return nil
		}
		return a.attrs[0]
	}
	for i, attr := range a.attrs {
		if attr == prev {
			if i+1 < len(a.attrs) {
				return a.attrs[i+1]
			}
			return nil
		}
	}
	return nil
}

// Count returns the number of attributes currently attached.
func (a *Array) Count() int {
	a.attrMu.Lock()
	defer a.attrMu.Unlock()
	return len(a.attrs)
}

// Delete removes the attribute matching name (case-insensitive). It
// reports whether an attribute was found and removed.
func (a *Array) Delete(name string) bool {
	a.attrMu.Lock()
	defer a.attrMu.Unlock()
	for i, attr := range a.attrs {
		if equalFoldName(attr.name, name) {
			a.attrs = append(a.attrs[:i], a.attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every attribute.
func (a *Array) Clear() {
	a.attrMu.Lock()
	defer a.attrMu.Unlock()
	a.attrs = nil
}

// CopyAttributesTo appends a copy of every attribute on a to other. It
// does not clear other's existing attributes first; callers that want a
// fresh copy must call other.Clear() themselves (Pool.Copy does exactly
// that; Pool.Convert copies onto an Array that Allocate has just
// cleared).
func (a *Array) CopyAttributesTo(other *Array) error {
	a.attrMu.Lock()
	srcs := make([]*Attribute, len(a.attrs))
	copy(srcs, a.attrs)
	a.attrMu.Unlock()

	for _, src := range srcs {
		if _, err := other.AddAttribute(src); err != nil {
			return err
		}
	}
	return nil
}

// Report renders a human-readable summary of the array. When details
// exceeds 5, every attribute is rendered too, mirroring the detail
// threshold NDArray::report gates per-attribute dumps behind.
func (a *Array) Report(details int) string {
	bpe, nElem, total, _ := a.Info()
	s := fmt.Sprintf("Array address=%p:\n  ndims=%d dims=%v\n  elementType=%s dataSize=%d bytesPerElement=%d nElements=%d totalBytes=%d\n  uniqueId=%d timestamp=%f\n  attributes=%d\n",
		a, a.NDims, a.Dims[:a.NDims], a.ElementType, len(a.Data), bpe, nElem, total, a.UniqueID, a.Timestamp, a.Count())
	if details > 5 {
		a.attrMu.Lock()
		defer a.attrMu.Unlock()
		for _, attr := range a.attrs {
			s += attr.String()
		}
	}
	return s
}
