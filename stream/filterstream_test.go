package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/filter"
	"github.com/mailchannels/gomime/lineproto"
	"github.com/mailchannels/gomime/stream"
)

func TestFilterStreamReadAppliesPipelineInReadOrder(t *testing.T) {
	backing := stream.NewMemoryFromBytes([]byte("a\r\nb\r\n"))
	pipeline := filter.NewPipeline(lineproto.NewCRLFFilter(lineproto.CRLFDecode))
	fs := stream.NewFilterStream(backing, pipeline)

	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := fs.Read(buf)
		out = append(out, buf[:n]...)
		require.NoError(t, err)
		if n == 0 && fs.Eos() {
			break
		}
	}

	assert.Equal(t, "a\nb\n", string(out))
}

func TestFilterStreamWriteAppliesPipelineInReverseOrder(t *testing.T) {
	backing := stream.NewMemory()
	pipeline := filter.NewPipeline(lineproto.NewCRLFFilter(lineproto.CRLFEncode))
	fs := stream.NewFilterStream(backing, pipeline)

	_, err := fs.WriteString("a\nb\n")
	require.NoError(t, err)
	require.NoError(t, fs.Flush())

	assert.Equal(t, "a\r\nb\r\n", string(backing.Bytes()))
}

func TestFilterStreamResetRewindsBackingAndPipeline(t *testing.T) {
	backing := stream.NewMemoryFromBytes([]byte("x\r\n"))
	pipeline := filter.NewPipeline(lineproto.NewCRLFFilter(lineproto.CRLFDecode))
	fs := stream.NewFilterStream(backing, pipeline)

	buf := make([]byte, 16)
	n, err := fs.Read(buf)
	require.NoError(t, err)
	require.NotZero(t, n)

	require.NoError(t, fs.Reset())
	assert.False(t, fs.Eos())
	assert.Equal(t, int64(0), fs.Tell())
}

func TestFilterStreamSeekUnsupported(t *testing.T) {
	backing := stream.NewMemory()
	pipeline := filter.NewPipeline(lineproto.NewCRLFFilter(lineproto.CRLFDecode))
	fs := stream.NewFilterStream(backing, pipeline)

	_, err := fs.Seek(0, stream.SeekSet)
	assert.Error(t, err)
}
