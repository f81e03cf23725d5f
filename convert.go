package ndcore

import "unsafe"

// numeric is the closed set of 8 element kinds the conversion kernel
// dispatches over, expressed as a type-parameter constraint so the inner
// loop of every (in, out) pair is compiled as a distinct, branch-free
// monomorphized function — the same "generate the 8x8 variants at
// compile time" strategy the original template-based kernel uses,
// expressed with Go generics rather than C++ templates.
type numeric interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// bytesAsSlice reinterprets a byte buffer as a slice of T without
// copying. The result has len(b)/sizeof(T) elements; trailing bytes
// that do not fill a whole element are left out.
func bytesAsSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	n := len(b) / elemSize
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// byteCopyConvert performs the degenerate case: identical shape and
// identical element type between in and out. A plain byte copy.
func byteCopyConvert(in, out *Array, totalBytes int) {
	n := totalBytes
	if len(out.Data) < n {
		n = len(out.Data)
	}
	if len(in.Data) < n {
		n = len(in.Data)
	}
	copy(out.Data[:n], in.Data[:n])
}

// sameShapeConvert iterates the flat element sequence of in and assigns
// into out with a per-element static cast, for arrays of identical
// logical shape but different element types. Cast rules follow Go's
// ordinary numeric conversion: truncation toward zero on float->integer,
// wraparound on out-of-range integer narrowing. No saturation, no
// rounding.
func sameShapeConvert(in, out *Array, nElements int) error {
	switch out.ElementType {
	case Int8:
		return sameShapeConvertOut[int8](in, out.Data, nElements)
	case UInt8:
		return sameShapeConvertOut[uint8](in, out.Data, nElements)
	case Int16:
		return sameShapeConvertOut[int16](in, out.Data, nElements)
	case UInt16:
		return sameShapeConvertOut[uint16](in, out.Data, nElements)
	case Int32:
		return sameShapeConvertOut[int32](in, out.Data, nElements)
	case UInt32:
		return sameShapeConvertOut[uint32](in, out.Data, nElements)
	case Float32:
		return sameShapeConvertOut[float32](in, out.Data, nElements)
	case Float64:
		return sameShapeConvertOut[float64](in, out.Data, nElements)
	default:
		return ErrUnsupportedType
	}
}

func sameShapeConvertOut[TOut numeric](in *Array, outData []byte, nElements int) error {
	out := bytesAsSlice[TOut](outData)
	switch in.ElementType {
	case Int8:
		return sameShapeConvertPair[int8, TOut](in.Data, out, nElements)
	case UInt8:
		return sameShapeConvertPair[uint8, TOut](in.Data, out, nElements)
	case Int16:
		return sameShapeConvertPair[int16, TOut](in.Data, out, nElements)
	case UInt16:
		return sameShapeConvertPair[uint16, TOut](in.Data, out, nElements)
	case Int32:
		return sameShapeConvertPair[int32, TOut](in.Data, out, nElements)
	case UInt32:
		return sameShapeConvertPair[uint32, TOut](in.Data, out, nElements)
	case Float32:
		return sameShapeConvertPair[float32, TOut](in.Data, out, nElements)
	case Float64:
		return sameShapeConvertPair[float64, TOut](in.Data, out, nElements)
	default:
		return ErrUnsupportedType
	}
}

func sameShapeConvertPair[TIn, TOut numeric](inData []byte, out []TOut, nElements int) error {
	in := bytesAsSlice[TIn](inData)
	for i := 0; i < nElements; i++ {
		out[i] = TOut(in[i])
	}
	return nil
}

// shapeChangingConvert performs the sub-region/binning/reverse N-d
// traversal described in the design: recursive descent from the
// outermost dimension (ndims-1) down to 0, accumulating binned input
// elements into each output element. out.Data must already be zeroed
// by the caller, since binning accumulates rather than overwrites.
func shapeChangingConvert(in, out *Array, ndims int) error {
	switch out.ElementType {
	case Int8:
		return shapeChangingConvertOut[int8](in, out, ndims)
	case UInt8:
		return shapeChangingConvertOut[uint8](in, out, ndims)
	case Int16:
		return shapeChangingConvertOut[int16](in, out, ndims)
	case UInt16:
		return shapeChangingConvertOut[uint16](in, out, ndims)
	case Int32:
		return shapeChangingConvertOut[int32](in, out, ndims)
	case UInt32:
		return shapeChangingConvertOut[uint32](in, out, ndims)
	case Float32:
		return shapeChangingConvertOut[float32](in, out, ndims)
	case Float64:
		return shapeChangingConvertOut[float64](in, out, ndims)
	default:
		return ErrUnsupportedType
	}
}

func shapeChangingConvertOut[TOut numeric](in, out *Array, ndims int) error {
	outSlice := bytesAsSlice[TOut](out.Data)
	switch in.ElementType {
	case Int8:
		return shapeChangingConvertPair[int8, TOut](in, out, outSlice, ndims)
	case UInt8:
		return shapeChangingConvertPair[uint8, TOut](in, out, outSlice, ndims)
	case Int16:
		return shapeChangingConvertPair[int16, TOut](in, out, outSlice, ndims)
	case UInt16:
		return shapeChangingConvertPair[uint16, TOut](in, out, outSlice, ndims)
	case Int32:
		return shapeChangingConvertPair[int32, TOut](in, out, outSlice, ndims)
	case UInt32:
		return shapeChangingConvertPair[uint32, TOut](in, out, outSlice, ndims)
	case Float32:
		return shapeChangingConvertPair[float32, TOut](in, out, outSlice, ndims)
	case Float64:
		return shapeChangingConvertPair[float64, TOut](in, out, outSlice, ndims)
	default:
		return ErrUnsupportedType
	}
}

func shapeChangingConvertPair[TIn, TOut numeric](in, out *Array, outSlice []TOut, ndims int) error {
	inSlice := bytesAsSlice[TIn](in.Data)
	if ndims == 0 {
		// A 0-dimensional array holds exactly one scalar element.
		if len(inSlice) > 0 && len(outSlice) > 0 {
			outSlice[0] += TOut(inSlice[0])
		}
		return nil
	}
	convertDim[TIn, TOut](inSlice, outSlice, in.Dims[:ndims], out.Dims[:ndims], ndims-1, 0, 0)
	return nil
}

// convertDim is the recursive per-dimension traversal. dim counts down
// from ndims-1 (outermost) to 0 (innermost). inBase/outBase are element
// offsets (not byte offsets) into inSlice/outSlice at entry to this
// level.
func convertDim[TIn, TOut numeric](inSlice []TIn, outSlice []TOut, inDims, outDims []Dimension, dim, inBase, outBase int) {
	inStep := 1
	outStep := 1
	for i := 0; i < dim; i++ {
		inStep *= inDims[i].Size
		outStep *= outDims[i].Size
	}

	d := outDims[dim]
	inOffset := d.Offset
	inDir := 1
	if d.Reverse {
		inOffset += d.Size*d.Binning - 1
		inDir = -1
	}
	inc := inDir * inStep

	pIn := inBase + inOffset*inStep
	pOut := outBase
	for out := 0; out < d.Size; out++ {
		for bin := 0; bin < d.Binning; bin++ {
			if dim > 0 {
				convertDim(inSlice, outSlice, inDims, outDims, dim-1, pIn, pOut)
			} else {
				outSlice[pOut] += TOut(inSlice[pIn])
			}
			pIn += inc
		}
		pOut += outStep
	}
}
