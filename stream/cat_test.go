package stream_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/gmerr"
	"github.com/mailchannels/gomime/stream"
)

func TestCatConcatenatesChildrenTransparently(t *testing.T) {
	a := stream.NewMemoryFromBytes([]byte("abc"))
	b := stream.NewMemoryFromBytes([]byte("defgh"))
	cat, err := stream.NewCat(a, b)
	require.NoError(t, err)
	assert.EqualValues(t, 8, cat.Length())

	var out bytes.Buffer
	_, err = io.Copy(&out, cat)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", out.String())
}

func TestCatSeekCrossesChildBoundary(t *testing.T) {
	a := stream.NewMemoryFromBytes([]byte("abc"))
	b := stream.NewMemoryFromBytes([]byte("defgh"))
	cat, err := stream.NewCat(a, b)
	require.NoError(t, err)

	_, err = cat.Seek(4, stream.SeekSet)
	require.NoError(t, err)
	buf := make([]byte, 2)
	n, err := cat.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(buf[:n]))
}

// TestCatNonSeekableChildFailsReset: reset on a Cat of non-seekable children fails with
// ErrNotSeekable.
func TestCatNonSeekableChildFailsReset(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		_, _ = pw.Write([]byte("x"))
		pw.Close()
	}()
	pipeStream := stream.NewPipe(&pipeReadWriter{r: pr})
	mem := stream.NewMemoryFromBytes([]byte("y"))

	cat, err := stream.NewCat(mem, pipeStream)
	require.NoError(t, err)
	assert.ErrorIs(t, cat.Reset(), gmerr.ErrNotSeekable)
}

type pipeReadWriter struct {
	r *io.PipeReader
}

func (p *pipeReadWriter) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeReadWriter) Write(b []byte) (int, error) { return len(b), nil }
