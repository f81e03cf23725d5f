package ndcore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPoolAllocateAndRelease covers spec §8 scenarios 1 and 2: a fresh
// allocation is zeroed and charged against memorySize, and releasing it
// puts it on the free list without discharging the memory; a later
// smaller allocation reuses the freed array rather than growing the
// pool's buffer count.
func TestPoolAllocateAndRelease(t *testing.T) {
	pool := newTestPool(0, 0)

	arr, err := pool.Allocate(2, []int{3, 4}, Int16, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, arr.RefCount())
	assert.Equal(t, 1, pool.NumBuffers())
	assert.EqualValues(t, 24, pool.MemorySize())
	for _, b := range arr.Data {
		assert.Zero(t, b)
	}

	require.NoError(t, pool.Release(arr))
	assert.Equal(t, 0, arr.RefCount())
	assert.Equal(t, 1, pool.NumFree())
	assert.EqualValues(t, 24, pool.MemorySize())

	arr2, err := pool.Allocate(1, []int{4}, Int16, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pool.NumBuffers(), "reused the freed array instead of growing the pool")
	assert.Equal(t, 0, pool.NumFree())
	assert.EqualValues(t, 24, pool.MemorySize(), "8 bytes needed fit inside the already-charged 24 byte buffer")
	assert.Same(t, arr, arr2)
}

func TestPoolAllocateBufferLimit(t *testing.T) {
	pool := newTestPool(1, 0)

	_, err := pool.Allocate(1, []int{1}, Int8, 0, nil)
	require.NoError(t, err)

	_, err = pool.Allocate(1, []int{1}, Int8, 0, nil)
	assert.ErrorIs(t, err, ErrBufferLimit)
}

func TestPoolAllocateMemoryLimit(t *testing.T) {
	pool := newTestPool(0, 8)

	_, err := pool.Allocate(1, []int{8}, UInt8, 0, nil)
	require.NoError(t, err)

	_, err = pool.Allocate(1, []int{1}, UInt8, 0, nil)
	assert.ErrorIs(t, err, ErrMemoryLimit)
}

func TestPoolAllocateBufferTooSmall(t *testing.T) {
	pool := newTestPool(0, 0)

	_, err := pool.Allocate(1, []int{4}, Int32, 8, nil)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestPoolAllocateInvalidDimension(t *testing.T) {
	pool := newTestPool(0, 0)

	_, err := pool.Allocate(2, []int{4}, Int8, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = pool.Allocate(MaxDims+1, make([]int, MaxDims+1), Int8, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestPoolAllocateUnsupportedType(t *testing.T) {
	pool := newTestPool(0, 0)
	_, err := pool.Allocate(1, []int{1}, ElementType(99), 0, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestPoolAllocateExternalBufferNotCharged(t *testing.T) {
	pool := newTestPool(0, 0)
	buf := make([]byte, 16)

	arr, err := pool.Allocate(1, []int{4}, Int32, 16, buf)
	require.NoError(t, err)
	assert.Same(t, &buf[0], &arr.Data[0])
	assert.Zero(t, pool.MemorySize())
	require.NoError(t, pool.Release(arr))

	// Reallocating the same recycled array without an external buffer
	// must discard the adopted buffer and charge a fresh internal one.
	arr2, err := pool.Allocate(1, []int{4}, Int32, 0, nil)
	require.NoError(t, err)
	assert.Same(t, arr, arr2)
	assert.NotSame(t, &buf[0], &arr2.Data[0])
	assert.EqualValues(t, 16, pool.MemorySize())
}

func TestPoolReserveReleaseNotOwner(t *testing.T) {
	poolA := newTestPool(0, 0)
	poolB := newTestPool(0, 0)

	arr, err := poolA.Allocate(1, []int{1}, Int8, 0, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, poolB.Reserve(arr), ErrNotOwner)
	assert.ErrorIs(t, poolB.Release(arr), ErrNotOwner)
}

func TestPoolReleaseUnderflowDoesNotRequeue(t *testing.T) {
	pool := newTestPool(0, 0)
	arr, err := pool.Allocate(1, []int{1}, Int8, 0, nil)
	require.NoError(t, err)

	require.NoError(t, pool.Release(arr))
	assert.Equal(t, 1, pool.NumFree())

	require.NoError(t, pool.Release(arr))
	assert.Equal(t, -1, arr.RefCount())
	assert.Equal(t, 1, pool.NumFree(), "an already-free array must not be re-queued")
}

func TestPoolCopyRoundTrip(t *testing.T) {
	pool := newTestPool(0, 0)
	in, err := pool.Allocate(1, []int{4}, UInt8, 0, nil)
	require.NoError(t, err)
	copy(in.Data, []byte{1, 2, 3, 4})
	in.UniqueID = 42
	_, err = in.AddValue("Gain", AttrFloat32, float32(1.5))
	require.NoError(t, err)

	out, err := pool.Copy(in, nil, true)
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, 42, out.UniqueID)
	assert.NotSame(t, in, out)

	gain := out.Find("Gain")
	require.NotNil(t, gain)
	v, err := gain.Value(AttrFloat32)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), v)
}

func TestPoolConvertIdentityShapeAndType(t *testing.T) {
	pool := newTestPool(0, 0)
	in, err := pool.Allocate(1, []int{3}, Int16, 0, nil)
	require.NoError(t, err)
	copy(in.Data, []byte{1, 2, 3, 4, 5, 6})

	dims := []Dimension{InitDim(3)}
	out, err := pool.Convert(in, dims, Int16)
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
	assert.NotSame(t, in, out)
}

func TestPoolDebugAssertRefCounts(t *testing.T) {
	pool := newTestPool(0, 0)
	arr, err := pool.Allocate(1, []int{1}, Int8, 0, nil)
	require.NoError(t, err)
	assert.NoError(t, pool.DebugAssertRefCounts())

	require.NoError(t, pool.Release(arr))
	assert.NoError(t, pool.DebugAssertRefCounts())
}

// TestPoolConcurrentAllocateReleaseRespectsBufferCap covers spec §8
// scenario 6: many goroutines allocating and releasing against a small
// MaxBuffers must never push NumBuffers past the cap.
func TestPoolConcurrentAllocateReleaseRespectsBufferCap(t *testing.T) {
	const maxBuffers = 8
	const goroutines = 16
	const iterations = 200

	pool := newTestPool(maxBuffers, 0)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				arr, err := pool.Allocate(1, []int{4}, Int32, 0, nil)
				if err != nil {
					continue
				}
				if pool.NumBuffers() > maxBuffers {
					t.Errorf("NumBuffers = %d, exceeds cap %d", pool.NumBuffers(), maxBuffers)
				}
				_ = pool.Release(arr)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, pool.NumBuffers(), maxBuffers)
	assert.NoError(t, pool.DebugAssertRefCounts())
}
