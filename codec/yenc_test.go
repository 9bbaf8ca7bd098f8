package codec_test

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/codec"
	"github.com/mailchannels/gomime/filter"
)

func TestYEncEncodeEscapesCriticalBytes(t *testing.T) {
	var state codec.YEncState
	out := codec.YEncEncodeStep([]byte{0x00}, &state) // (0+42)=42='*' safe, try a byte that maps to NUL
	assert.NotContains(t, out, byte(0x00))

	state = codec.YEncState{}
	out = codec.YEncEncodeStep([]byte{0xd6}, &state) // 0xd6+42 = 0x100 -> wraps to 0x00
	assert.Contains(t, string(out), "=")
}

// TestYEncEncodeEscapesSpaceAndTabAtLineEdges: TAB and space are
// critical only as the first or last byte of an output line; mid-line
// they pass through raw.
func TestYEncEncodeEscapesSpaceAndTabAtLineEdges(t *testing.T) {
	var state codec.YEncState
	out := codec.YEncEncodeStep([]byte{0xf6}, &state) // 0xf6+42 wraps to 0x20 (space), column 0
	assert.Equal(t, []byte{'=', 0x20 + 64}, out)

	state = codec.YEncState{}
	out = codec.YEncEncodeStep([]byte{0xdf}, &state) // 0xdf+42 wraps to 0x09 (TAB), column 0
	assert.Equal(t, []byte{'=', 0x09 + 64}, out)

	state = codec.YEncState{}
	out = codec.YEncEncodeStep([]byte{0x00, 0xf6, 0x00}, &state) // space mid-line stays raw
	require.Len(t, out, 3)
	assert.Equal(t, byte(0x20), out[1])

	// a space landing on the last column of a line is escaped too
	state = codec.YEncState{}
	in := append(bytes.Repeat([]byte{0x00}, codec.YEncLineLength-1), 0xf6)
	out = codec.YEncEncodeStep(in, &state)
	assert.Equal(t, byte('='), out[codec.YEncLineLength-1])
	assert.Equal(t, byte(0x20+64), out[codec.YEncLineLength])
}

func TestYEncRoundTripViaFilter(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("hi"),
		bytes.Repeat([]byte{0x00, 0xff, 0x0a, 0x0d, '='}, 40),
		[]byte("Many hands make light work, repeated enough to cross one yEncode line of 128 bytes for sure."),
	}
	for _, data := range cases {
		enc := filter.NewPipeline(codec.NewYEncEncodeFilter("payload.bin", int64(len(data))))
		encoded := enc.Apply(data, false)
		encoded = append(encoded, enc.Apply(nil, true)...)

		require.True(t, bytes.HasPrefix(encoded, []byte("=ybegin")))
		require.True(t, bytes.Contains(encoded, []byte("=yend")))

		dec := filter.NewPipeline(codec.NewYEncDecodeFilter())
		decoded := dec.Apply(encoded, false)
		decoded = append(decoded, dec.Apply(nil, true)...)

		assert.Equal(t, data, decoded)
	}
}

func TestYEncEncodeEndReportsCorrectCRC(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	var state codec.YEncState
	codec.YEncEncodeStep(data, &state)
	trailer := codec.YEncEncodeEnd(&state, int64(len(data)), false)

	want := fmt.Sprintf("crc32=%08x", crc32.ChecksumIEEE(data))
	assert.Contains(t, string(trailer), want)
}

func FuzzYEncRoundTrip(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("hello"))
	f.Add([]byte{0x00, 0x0a, 0x0d, '=', '.', 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		enc := filter.NewPipeline(codec.NewYEncEncodeFilter("f", int64(len(data))))
		encoded := enc.Apply(data, false)
		encoded = append(encoded, enc.Apply(nil, true)...)

		dec := filter.NewPipeline(codec.NewYEncDecodeFilter())
		decoded := dec.Apply(encoded, false)
		decoded = append(decoded, dec.Apply(nil, true)...)

		if string(decoded) != string(data) {
			t.Fatalf("round trip mismatch: got %q want %q", decoded, data)
		}
	})
}
