package ndcore

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// PoolConfig bounds the resources a Pool may consume.
// MaxBuffers <= 0 means unlimited buffers; MaxMemory <= 0 means
// unlimited cumulative data memory.
type PoolConfig struct {
	MaxBuffers int
	MaxMemory  int64
}

// Pool is a bounded, reference-counted object pool of Arrays. It recycles
// freed Arrays (and their backing buffers, when large enough) rather than
// allocating fresh ones on every request, and it enforces hard caps on
// both the number of Array objects and the cumulative bytes of buffer
// memory it owns.
//
// A Pool is safe for concurrent use by multiple goroutines.
type Pool struct {
	mu sync.Mutex

	cfg    PoolConfig
	logger zerolog.Logger

	numBuffers int
	memorySize int64
	numFree    int
	freeList   *list.List // of *Array

	// all is every Array this pool has ever constructed, used only by
	// DebugAssertRefCounts; it is never shrunk.
	all []*Array
}

// NewPool creates a Pool bounded by cfg. logger is annotated with a
// "component" field and stored; the pool logs allocation failures at
// Warn level (they are also returned as errors), reference-count
// underflow at Error level (logged only, not returned), and Report
// summaries at Info level.
func NewPool(cfg PoolConfig, logger zerolog.Logger) *Pool {
	return &Pool{
		cfg:      cfg,
		logger:   logger.With().Str("component", "ndcore.pool").Logger(),
		freeList: list.New(),
	}
}

func (p *Pool) buffersUnlimited() bool { return p.cfg.MaxBuffers <= 0 }
func (p *Pool) memoryUnlimited() bool  { return p.cfg.MaxMemory <= 0 }

// NumBuffers returns the number of Array objects the pool has
// constructed and not destroyed (the pool never destroys an Array until
// the pool itself is dropped).
func (p *Pool) NumBuffers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numBuffers
}

// MemorySize returns the cumulative bytes of internally-owned buffer
// memory currently charged to the pool. Externally-supplied buffers
// (see Allocate) are never charged.
func (p *Pool) MemorySize() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memorySize
}

// NumFree returns the number of Arrays currently on the free list.
func (p *Pool) NumFree() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numFree
}

// Allocate obtains an Array with ndims dimensions sized per dims, of the
// given element type. It revives a free Array from the pool if one is
// available, resizing its backing buffer as needed, or constructs a new
// one if the pool has not reached MaxBuffers.
//
// If dataSizeHint is 0 the required size is computed from ndims/dims/
// elementType. If externalBuffer is non-nil it is adopted as the
// Array's data without copying, trusting dataSizeHint as its true size;
// externally-supplied buffers are never charged against the pool's
// MaxMemory and are never freed by the pool (see DESIGN.md Open
// Question 1).
//
// On success the returned Array has reference count 1.
func (p *Pool) Allocate(ndims int, dims []int, elementType ElementType, dataSizeHint int, externalBuffer []byte) (*Array, error) {
	if ndims < 0 || ndims > MaxDims || len(dims) < ndims {
		return nil, ErrInvalidDimension
	}
	for i := 0; i < ndims; i++ {
		if dims[i] < 0 {
			return nil, ErrInvalidDimension
		}
	}
	if !elementType.valid() {
		return nil, ErrUnsupportedType
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	arr, err := p.takeFreeOrNewLocked()
	if err != nil {
		return nil, err
	}

	arr.ElementType = elementType
	arr.NDims = ndims
	for i := 0; i < MaxDims; i++ {
		if i < ndims {
			arr.Dims[i] = InitDim(dims[i])
		} else {
			arr.Dims[i] = Dimension{}
		}
	}
	arr.Clear()

	_, _, requiredBytes, err := arr.Info()
	if err != nil {
		p.returnToFreeListLocked(arr)
		return nil, err
	}
	if dataSizeHint == 0 {
		dataSizeHint = requiredBytes
	}
	if dataSizeHint < requiredBytes {
		p.logger.Warn().
			Int("required_bytes", requiredBytes).
			Int("supplied_bytes", dataSizeHint).
			Msg("allocate: supplied buffer too small")
		p.returnToFreeListLocked(arr)
		return nil, ErrBufferTooSmall
	}

	switch {
	case externalBuffer != nil:
		arr.Data = externalBuffer
		arr.externallyBacked = true

	case arr.externallyBacked || cap(arr.Data) < dataSizeHint:
		if !arr.externallyBacked {
			p.memorySize -= int64(cap(arr.Data))
		}
		if !p.memoryUnlimited() && p.memorySize+int64(dataSizeHint) > p.cfg.MaxMemory {
			p.logger.Warn().
				Int64("memory_size", p.memorySize).
				Int64("max_memory", p.cfg.MaxMemory).
				Int("requested", dataSizeHint).
				Msg("allocate: memory limit reached")
			arr.Data = nil
			p.returnToFreeListLocked(arr)
			return nil, ErrMemoryLimit
		}
		arr.Data = make([]byte, dataSizeHint)
		arr.externallyBacked = false
		p.memorySize += int64(dataSizeHint)

	default:
		// Existing internal buffer has enough capacity; reuse it as-is.
		// Matches the original's behavior of not re-zeroing a buffer
		// that is merely being resliced, not reallocated.
		arr.Data = arr.Data[:dataSizeHint]
	}

	arr.refCount = 1
	if arr.freeElem != nil {
		p.freeList.Remove(arr.freeElem)
		arr.freeElem = nil
		p.numFree--
	}
	return arr, nil
}

// takeFreeOrNewLocked detaches the head of the free list, or constructs
// a fresh Array if the pool has not reached MaxBuffers. Caller must hold
// p.mu.
func (p *Pool) takeFreeOrNewLocked() (*Array, error) {
	if front := p.freeList.Front(); front != nil {
		arr := front.Value.(*Array)
		p.freeList.Remove(front)
		arr.freeElem = nil
		p.numFree--
		return arr, nil
	}
	if !p.buffersUnlimited() && p.numBuffers >= p.cfg.MaxBuffers {
		p.logger.Warn().
			Int("num_buffers", p.numBuffers).
			Int("max_buffers", p.cfg.MaxBuffers).
			Msg("allocate: buffer limit reached")
		return nil, ErrBufferLimit
	}
	arr := newArray()
	arr.owner = p
	p.numBuffers++
	p.all = append(p.all, arr)
	return arr, nil
}

// returnToFreeListLocked puts arr back on the free list after a failed
// allocate attempt partway through initialization. Caller must hold p.mu.
func (p *Pool) returnToFreeListLocked(arr *Array) {
	arr.refCount = 0
	arr.freeElem = p.freeList.PushBack(arr)
	p.numFree++
}

// Reserve increments array's reference count. It fails with ErrNotOwner
// if array was not allocated by this pool.
func (p *Pool) Reserve(array *Array) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if array.owner != p {
		return ErrNotOwner
	}
	array.refCount++
	return nil
}

// Release decrements array's reference count. When the count reaches
// zero the Array is returned to the free list. A negative reference
// count is a caller bug: it is logged and the Array is not re-queued,
// since an already-free Array must never be queued twice.
func (p *Pool) Release(array *Array) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if array.owner != p {
		return ErrNotOwner
	}
	array.refCount--
	switch {
	case array.refCount == 0:
		array.freeElem = p.freeList.PushBack(array)
		p.numFree++
	case array.refCount < 0:
		p.logger.Error().
			Int("ref_count", array.refCount).
			Msg("release: reference count underflow")
	}
	return nil
}

// Copy produces an Array with the same identity, shape and element type
// as in. If out is nil one is allocated with in's shape and type. If
// copyData is true the element data is copied too (truncated to the
// smaller of the two buffers). Attributes are always copied: out's
// existing attributes are cleared first, then in's are appended.
func (p *Pool) Copy(in *Array, out *Array, copyData bool) (*Array, error) {
	if out == nil {
		dims := make([]int, in.NDims)
		for i := 0; i < in.NDims; i++ {
			dims[i] = in.Dims[i].Size
		}
		var err error
		out, err = p.Allocate(in.NDims, dims, in.ElementType, 0, nil)
		if err != nil {
			return nil, err
		}
	}

	out.UniqueID = in.UniqueID
	out.Timestamp = in.Timestamp
	out.NDims = in.NDims
	out.Dims = in.Dims
	out.ElementType = in.ElementType

	if copyData {
		_, _, totalBytes, err := in.Info()
		if err != nil {
			return nil, err
		}
		n := totalBytes
		if len(out.Data) < n {
			n = len(out.Data)
		}
		copy(out.Data[:n], in.Data[:n])
	}

	out.Clear()
	if err := in.CopyAttributesTo(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Convert produces a new Array from in, with independent choices of
// element type, per-dimension size, sub-region offset, integer binning
// and axis reversal described by outDimsTemplate (one entry per input
// dimension). outDimsTemplate.Size is divided by outDimsTemplate.Binning
// to get the output size along that axis; a non-positive result fails
// with ErrInvalidDimension, as does a template whose Offset is negative
// or whose Offset+Size*Binning reaches past in's extent on that axis.
func (p *Pool) Convert(in *Array, outDimsTemplate []Dimension, elementTypeOut ElementType) (*Array, error) {
	ndims := in.NDims
	if len(outDimsTemplate) < ndims {
		return nil, ErrInvalidDimension
	}

	tmpl := make([]Dimension, ndims)
	copy(tmpl, outDimsTemplate[:ndims])

	changed := false
	dimSizeOut := make([]int, ndims)
	for i := 0; i < ndims; i++ {
		if tmpl[i].Binning <= 0 {
			return nil, ErrInvalidDimension
		}
		tmpl[i].Size = tmpl[i].Size / tmpl[i].Binning
		if tmpl[i].Size <= 0 {
			return nil, ErrInvalidDimension
		}
		if tmpl[i].Offset < 0 || tmpl[i].Offset+tmpl[i].Size*tmpl[i].Binning > in.Dims[i].Size {
			return nil, ErrInvalidDimension
		}
		dimSizeOut[i] = tmpl[i].Size
		if in.Dims[i].Size != tmpl[i].Size || tmpl[i].Offset != 0 || tmpl[i].Binning != 1 || tmpl[i].Reverse {
			changed = true
		}
	}

	out, err := p.Allocate(ndims, dimSizeOut, elementTypeOut, 0, nil)
	if err != nil {
		return nil, err
	}

	out.UniqueID = in.UniqueID
	out.Timestamp = in.Timestamp
	for i := 0; i < ndims; i++ {
		out.Dims[i] = tmpl[i]
	}
	if err := in.CopyAttributesTo(out); err != nil {
		p.Release(out)
		return nil, err
	}

	_, nElements, totalBytes, err := out.Info()
	if err != nil {
		p.Release(out)
		return nil, err
	}

	if !changed {
		if in.ElementType == out.ElementType {
			byteCopyConvert(in, out, totalBytes)
		} else if err := sameShapeConvert(in, out, nElements); err != nil {
			p.Release(out)
			return nil, err
		}
	} else {
		clear(out.Data[:totalBytes])
		if err := shapeChangingConvert(in, out, ndims); err != nil {
			p.Release(out)
			return nil, err
		}
	}

	for i := 0; i < ndims; i++ {
		out.Dims[i].Offset = in.Dims[i].Offset + tmpl[i].Offset
		out.Dims[i].Binning = in.Dims[i].Binning * tmpl[i].Binning
		out.Dims[i].Reverse = in.Dims[i].Reverse != tmpl[i].Reverse
	}

	p.applyColorModeCollapse(out)

	return out, nil
}

// applyColorModeCollapse rewrites a RGB1/RGB2/RGB3 "ColorMode" attribute
// to Mono when the conversion has collapsed the corresponding color axis
// away from size 3.
func (p *Pool) applyColorModeCollapse(out *Array) {
	attr := out.Find("ColorMode")
	if attr == nil || attr.Kind() != AttrInt32 {
		return
	}
	v, err := attr.Value(AttrInt32)
	if err != nil {
		return
	}
	mode := ColorMode(v.(int32))

	axis := -1
	switch mode {
	case ColorModeRGB1:
		axis = 0
	case ColorModeRGB2:
		axis = 1
	case ColorModeRGB3:
		axis = 2
	default:
		return
	}
	if axis >= out.NDims || out.Dims[axis].Size == 3 {
		return
	}
	_ = attr.SetValue(AttrInt32, int32(ColorModeMono))
}

// Report returns a human-readable summary of the pool's buffer and
// memory accounting, and logs the same summary at Info level.
func (p *Pool) Report(details int) string {
	p.mu.Lock()
	numBuffers, maxBuffers := p.numBuffers, p.cfg.MaxBuffers
	memorySize, maxMemory := p.memorySize, p.cfg.MaxMemory
	numFree := p.numFree
	p.mu.Unlock()

	s := fmt.Sprintf("Pool:\n  numBuffers=%d, maxBuffers=%d\n  memorySize=%d, maxMemory=%d\n  numFree=%d\n",
		numBuffers, maxBuffers, memorySize, maxMemory, numFree)
	p.logger.Info().
		Int("num_buffers", numBuffers).
		Int("max_buffers", maxBuffers).
		Int64("memory_size", memorySize).
		Int64("max_memory", maxMemory).
		Int("num_free", numFree).
		Msg("pool report")
	return s
}

// DebugAssertRefCounts verifies the invariant that an Array is on the
// free list if and only if its reference count is zero, across every
// Array this pool has ever constructed. It returns an error describing
// the first violation found, or nil. Intended for use in tests and
// debug builds, per the design's Open Question 2.
func (p *Pool) DebugAssertRefCounts() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, arr := range p.all {
		onFreeList := arr.freeElem != nil
		zero := arr.refCount == 0
		if onFreeList != zero {
			return fmt.Errorf("ndcore: array %p ref_count=%d on_free_list=%v violates free-list invariant", arr, arr.refCount, onFreeList)
		}
	}
	return nil
}
