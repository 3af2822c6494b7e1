package mirrorbuf

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ringkit/ringkit/internal/vmem"
)

func TestNew_RoundsToPageSize(t *testing.T) {
	ps := vmem.PageSize()

	b, err := New(1, 1)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, ps, b.Capacity())
	assert.Equal(t, ps, b.Free())
	assert.Zero(t, b.Used())
	assert.True(t, b.Empty())
	assert.False(t, b.Full())

	// Zero means exactly one page.
	b2, err := New(0, 0)
	require.NoError(t, err)
	defer b2.Close()
	assert.Equal(t, ps, b2.Capacity())

	// One byte past a page multiple rounds up to the next page.
	b3, err := New(ps+1, 0)
	require.NoError(t, err)
	defer b3.Close()
	assert.Equal(t, 2*ps, b3.Capacity())
}

func TestNew_InvalidAlign(t *testing.T) {
	for _, align := range []int{-1, 3, 5, 7, 16} {
		_, err := New(0, align)
		assert.ErrorIs(t, err, ErrInvalidAlign, "align=%d", align)
	}
}

func TestBuffer_WriteReadRoundTrip(t *testing.T) {
	b, err := New(1, 1)
	require.NoError(t, err)
	defer b.Close()

	cap := b.Capacity()

	// Write 100 bytes of 0x41 and publish them.
	ws := b.WriteBytes()
	require.Len(t, ws, cap)
	for i := 0; i < 100; i++ {
		ws[i] = 0x41
	}
	require.Equal(t, 100, b.Commit(100))

	assert.Equal(t, cap-100, b.Free())
	assert.Equal(t, 100, b.Used())

	rs := b.ReadBytes()
	require.Len(t, rs, 100)
	assert.Equal(t, bytes.Repeat([]byte{0x41}, 100), rs)

	require.Equal(t, 100, b.Consume(100))
	assert.True(t, b.Empty())
	assert.Equal(t, cap, b.Free())
}

func TestBuffer_AlignmentRounding(t *testing.T) {
	b, err := New(1, 4)
	require.NoError(t, err)
	defer b.Close()

	cap := b.Capacity()

	// Committing one byte costs a full alignment unit; the other three
	// bytes become an unreadable hole.
	b.WriteBytes()[0] = 0x7F
	assert.Equal(t, 4, b.Commit(1))
	assert.Equal(t, cap-4, b.Free())
	assert.Equal(t, 4, b.Used())
	assert.Equal(t, 4, b.WriteIndex())

	// Consuming one byte releases the whole unit too.
	assert.Equal(t, 4, b.Consume(1))
	assert.True(t, b.Empty())
	assert.Equal(t, 4, b.ReadIndex())

	// Exact multiples are not adjusted.
	assert.Equal(t, 8, b.Commit(8))
	assert.Equal(t, 8, b.Consume(8))
}

func TestBuffer_CommitClamped(t *testing.T) {
	b, err := New(1, 0)
	require.NoError(t, err)
	defer b.Close()

	cap := b.Capacity()

	// Asking for more than the capacity commits only what was free.
	assert.Equal(t, cap, b.Commit(cap+12345))
	assert.True(t, b.Full())
	assert.Zero(t, b.WriteIndex(), "a full-capacity commit wraps the index to zero")

	// Nothing free: further commits are no-ops.
	assert.Zero(t, b.Commit(1))

	// Consume is clamped to what is used.
	assert.Equal(t, cap, b.Consume(cap*2))
	assert.True(t, b.Empty())
	assert.Zero(t, b.Consume(1))
}

func TestBuffer_Conservation(t *testing.T) {
	b, err := New(1, 2)
	require.NoError(t, err)
	defer b.Close()

	cap := b.Capacity()

	// used + free == capacity after every operation.
	for i, n := range []int{1, 7, 64, 2, 501, 33, 1000, 9} {
		b.Commit(n)
		require.Equal(t, cap, b.Used()+b.Free(), "after commit %d", i)
		b.Consume(n / 2)
		require.Equal(t, cap, b.Used()+b.Free(), "after consume %d", i)
	}
	b.Drain()
	assert.Equal(t, cap, b.Used()+b.Free())
}

func TestBuffer_Drain(t *testing.T) {
	b, err := New(1, 0)
	require.NoError(t, err)
	defer b.Close()

	b.Commit(600)
	b.Consume(100)

	rd := b.ReadIndex()
	assert.Equal(t, 500, b.Drain())
	assert.True(t, b.Empty())
	assert.Equal(t, (rd+500)%b.Capacity(), b.ReadIndex())

	// Draining an empty buffer is a no-op.
	assert.Zero(t, b.Drain())
}

func TestBuffer_WraparoundOrder(t *testing.T) {
	b, err := New(1, 0)
	require.NoError(t, err)
	defer b.Close()

	// Commit and consume 60% of capacity repeatedly. The read and write
	// spans cross the capacity boundary on most iterations; the mirror
	// must keep every span contiguous and in order.
	chunk := b.Capacity() * 3 / 5
	var seq byte
	for iter := 0; iter < 1000; iter++ {
		ws := b.WriteBytes()
		require.GreaterOrEqual(t, len(ws), chunk)
		want := make([]byte, chunk)
		for i := range want {
			want[i] = seq
			ws[i] = seq
			seq++
		}
		require.Equal(t, chunk, b.Commit(chunk))

		rs := b.ReadBytes()
		require.Len(t, rs, chunk)
		require.True(t, bytes.Equal(want, rs), "data out of order at iteration %d", iter)
		require.Equal(t, chunk, b.Consume(chunk))
	}
}

func TestBuffer_MirrorSpansBoundary(t *testing.T) {
	b, err := New(1, 0)
	require.NoError(t, err)
	defer b.Close()

	cap := b.Capacity()

	// Park the indices near the end of the buffer.
	b.Commit(cap - 8)
	b.Consume(cap - 8)
	require.Equal(t, cap-8, b.WriteIndex())

	// A 64-byte record now straddles the physical end; the view is still
	// one contiguous slice.
	ws := b.WriteBytes()
	for i := 0; i < 64; i++ {
		ws[i] = byte(i)
	}
	b.Commit(64)

	rs := b.ReadBytes()
	require.Len(t, rs, 64)
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(i), rs[i])
	}
	b.Consume(64)
	assert.Equal(t, 64-8, b.ReadIndex())
}

func TestBuffer_CloseIdempotent(t *testing.T) {
	b, err := New(1, 0)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}

func TestBuffer_SPSC(t *testing.T) {
	b, err := New(1, 0)
	require.NoError(t, err)
	defer b.Close()

	const total = 4 << 20

	var g errgroup.Group

	// Producer: stream an incrementing byte pattern, yielding when full.
	g.Go(func() error {
		var seq byte
		sent := 0
		for sent < total {
			ws := b.WriteBytes()
			if len(ws) == 0 {
				runtime.Gosched()
				continue
			}
			n := len(ws)
			if n > total-sent {
				n = total - sent
			}
			for i := 0; i < n; i++ {
				ws[i] = seq
				seq++
			}
			b.Commit(n)
			sent += n
		}
		return nil
	})

	// Consumer: verify the exact byte order, yielding when empty.
	g.Go(func() error {
		var seq byte
		got := 0
		for got < total {
			rs := b.ReadBytes()
			if len(rs) == 0 {
				runtime.Gosched()
				continue
			}
			for i := range rs {
				if rs[i] != seq {
					t.Errorf("byte %d: got %#x, want %#x", got+i, rs[i], seq)
					return nil
				}
				seq++
			}
			got += len(rs)
			b.Consume(len(rs))
		}
		return nil
	})

	require.NoError(t, g.Wait())
	assert.True(t, b.Empty())
}

func BenchmarkBuffer_CommitConsume(b *testing.B) {
	buf, err := New(1<<16, 0)
	if err != nil {
		b.Fatal(err)
	}
	defer buf.Close()

	const chunk = 4096
	b.SetBytes(chunk)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Commit(chunk)
		buf.Consume(chunk)
	}
}
