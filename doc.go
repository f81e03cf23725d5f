// Package ndcore implements a bounded, reference-counted pool of typed
// N-dimensional array buffers ("Arrays"), together with a conversion
// kernel and an attribute sidecar, for a detector/area-imaging data
// pipeline.
//
// # Overview
//
// Producers (drivers) allocate Arrays from a Pool, fill them with
// sampled data, and hand them to consumers (plugins) that read,
// transform, or forward them. The Pool bounds both the number of Array
// objects and the cumulative memory footprint, recycling freed Arrays to
// avoid allocator churn on the hot path.
//
// # Basic Usage
//
//	pool := ndcore.NewPool(ndcore.PoolConfig{MaxBuffers: 8, MaxMemory: 64 << 20}, zerolog.Nop())
//
//	arr, err := pool.Allocate(2, []int{4, 3}, ndcore.UInt16, 0, nil)
//	if err != nil {
//		// handle ErrBufferLimit / ErrMemoryLimit / ErrBufferTooSmall / ...
//	}
//	defer arr.Release()
//
//	// Fill arr.Data, attach attributes, hand off to a consumer.
//	arr.AddValue("ColorMode", ndcore.AttrInt32, int32(ndcore.ColorModeMono))
//
// A consumer that needs to retain the Array beyond a callback calls
// Reserve before returning, and Release when done:
//
//	arr.Reserve()
//	go func() {
//		defer arr.Release()
//		// process arr.Data
//	}()
//
// # Conversion
//
// Pool.Convert produces a new Array from an existing one, with
// independent choices of element type, per-dimension size, sub-region
// offset, integer binning, and axis reversal:
//
//	dims := []ndcore.Dimension{
//		{Size: 4, Binning: 2}, // bin pairs of columns (Dims[0] varies fastest)
//		{Size: 3, Binning: 1},
//	}
//	out, err := pool.Convert(arr, dims, ndcore.UInt16)
//
// # Thread Safety
//
// Pool is safe for concurrent use: one mutex guards its free list and
// counters, and one mutex per Array guards that Array's attribute list.
// Conversion and same-shape copy read the input and write the output
// without locking either — the contract is that the producer of an
// Array has exclusive access until it hands the Array to consumers via
// Reserve/Release.
//
// # Resource Caps
//
// PoolConfig.MaxBuffers and PoolConfig.MaxMemory are hard ceilings:
// exceeding them yields an error from Allocate, never a wait.
//
// # Reporting
//
// Pool.Report and Array.Report render human-readable summaries of pool
// and array state. Pool.Report also logs its summary through the Pool's
// configured zerolog.Logger; Array.Report only returns the string.
package ndcore
