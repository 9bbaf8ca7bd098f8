package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/stream"
)

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	m := stream.NewMemory()
	n, err := m.Write([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	require.NoError(t, m.Reset())
	buf := make([]byte, 5)
	n, err = m.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

// TestMemorySeekInvariant checks that after seek(k, SET),
// tell() == clamp(k, bound_start, bound_end).
func TestMemorySeekInvariant(t *testing.T) {
	m := stream.NewMemoryFromBytes([]byte("0123456789"))
	pos, err := m.Seek(4, stream.SeekSet)
	require.NoError(t, err)
	assert.EqualValues(t, 4, pos)
	assert.EqualValues(t, 4, m.Tell())

	// Seeking past the bound clamps rather than erroring.
	pos, err = m.Seek(1000, stream.SeekSet)
	require.NoError(t, err)
	assert.EqualValues(t, 10, pos)
}

func TestMemoryReadPastBoundReturnsEOS(t *testing.T) {
	m := stream.NewMemoryFromBytes([]byte("abc"))
	_, _ = m.Seek(0, stream.SeekEnd)
	buf := make([]byte, 4)
	n, err := m.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, m.Eos())
}

func TestMemorySubstreamSharesBackingStore(t *testing.T) {
	m := stream.NewMemoryFromBytes([]byte("0123456789"))
	sub, err := m.Substream(2, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 3, sub.Length())

	buf := make([]byte, 3)
	n, err := sub.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "234", string(buf[:n]))
}

func TestMemoryLengthIsZeroUntilWritten(t *testing.T) {
	m := stream.NewMemory()
	assert.EqualValues(t, 0, m.Length())
	_, _ = m.Write([]byte("x"))
	assert.EqualValues(t, 1, m.Length())
}

func TestMemoryWriteGrowsBuffer(t *testing.T) {
	m := stream.NewMemory()
	_, err := m.Write([]byte("abcdefgh"))
	require.NoError(t, err)
	require.NoError(t, m.Reset())
	assert.Equal(t, []byte("abcdefgh"), m.Bytes())
}
