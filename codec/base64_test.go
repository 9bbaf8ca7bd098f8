package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/codec"
	"github.com/mailchannels/gomime/filter"
)

// TestBase64EncodeShortInput encodes exactly 27
// bytes produces a single unbroken line (no wrap needed under 57 input
// bytes).
func TestBase64EncodeShortInput(t *testing.T) {
	f := codec.NewBase64EncodeFilter()
	out := f.Flush([]byte("Many hands make light work."))
	assert.Equal(t, "TWFueSBoYW5kcyBtYWtlIGxpZ2h0IHdvcmsu", string(out))
}

func TestBase64EncodeWrapsAt76Columns(t *testing.T) {
	input := make([]byte, 60) // > 57 input bytes must wrap
	for i := range input {
		input[i] = byte('a' + i%26)
	}
	f := codec.NewBase64EncodeFilter()
	out := f.Flush(input)
	require.Contains(t, string(out), "\r\n")
}

func TestBase64DecodeTolerantOfWhitespace(t *testing.T) {
	f := codec.NewBase64DecodeFilter()
	out := f.Flush([]byte("SGVs\r\nbG8g\r\nV29y\r\nbGQ="))
	assert.Equal(t, "Hello World", string(out))
}

func TestBase64DecodeStopsAtPadding(t *testing.T) {
	f := codec.NewBase64DecodeFilter()
	out := f.Flush([]byte("SGVsbG8=garbage"))
	assert.Equal(t, "Hello", string(out))
}

func TestBase64RoundTripPipeline(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("a"),
		[]byte("ab"),
		[]byte("abc"),
		[]byte("The quick brown fox jumps over the lazy dog, repeatedly, to pad this out past one line."),
		{0x00, 0xff, 0x10, 0x20, 0x7f, 0x80},
	}
	for _, data := range cases {
		enc := filter.NewPipeline(codec.NewBase64EncodeFilter())
		encoded := enc.Apply(data, false)
		encoded = append(encoded, enc.Apply(nil, true)...)

		dec := filter.NewPipeline(codec.NewBase64DecodeFilter())
		decoded := dec.Apply(encoded, false)
		decoded = append(decoded, dec.Apply(nil, true)...)

		assert.Equal(t, data, decoded)
	}
}

// FuzzBase64RoundTrip verifies the round-trip law:
// decode(encode(X)) == X for arbitrary byte strings.
func FuzzBase64RoundTrip(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("a"))
	f.Add([]byte("Many hands make light work."))
	f.Add([]byte{0x00, 0xff, 0x7f, 0x80})

	f.Fuzz(func(t *testing.T, data []byte) {
		var state codec.Base64State
		encoded := codec.Base64EncodeStep(data, &state)
		encoded = append(encoded, codec.Base64EncodeClose(&state)...)

		var dstate codec.Base64State
		decoded := codec.Base64DecodeStep(encoded, &dstate)

		if string(decoded) != string(data) {
			t.Fatalf("round trip mismatch: got %q want %q", decoded, data)
		}
	})
}
