package stream_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/gmerr"
	"github.com/mailchannels/gomime/stream"
)

type rwBuffer struct {
	bytes.Buffer
}

func TestPipeWriteReadRoundTrip(t *testing.T) {
	rw := &rwBuffer{}
	p := stream.NewPipe(rw)

	_, err := p.WriteString("hello")
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestPipeSeekAndResetAreNotSeekable(t *testing.T) {
	p := stream.NewPipe(&rwBuffer{})

	_, err := p.Seek(0, stream.SeekSet)
	assert.ErrorIs(t, err, gmerr.ErrNotSeekable)

	err = p.Reset()
	assert.ErrorIs(t, err, gmerr.ErrNotSeekable)
}

func TestPipeSubstreamFails(t *testing.T) {
	p := stream.NewPipe(&rwBuffer{})
	_, err := p.Substream(0, 10)
	assert.ErrorIs(t, err, gmerr.ErrNotSeekable)
}

func TestPipeEosAfterClose(t *testing.T) {
	p := stream.NewPipe(&rwBuffer{})
	assert.False(t, p.Eos())
	require.NoError(t, p.Close())
	assert.True(t, p.Eos())
}
