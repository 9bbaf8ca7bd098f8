package codec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailchannels/gomime/codec"
	"github.com/mailchannels/gomime/filter"
)

// TestQPEncodeNonASCII encodes UTF-8 bytes as =HH escapes.
func TestQPEncodeNonASCII(t *testing.T) {
	f := codec.NewQuotedPrintableEncodeFilter()
	out := f.Flush([]byte("Héllo"))
	assert.Equal(t, "H=C3=A9llo", string(out))
}

func TestQPEncodeSoftBreaksLongLines(t *testing.T) {
	f := codec.NewQuotedPrintableEncodeFilter()
	out := f.Flush([]byte(strings.Repeat("x", 100)))
	assert.Contains(t, string(out), "=\r\n", "a line over 76 columns must get a soft break")
}

func TestQPEncodeEscapesTrailingWhitespace(t *testing.T) {
	f := codec.NewQuotedPrintableEncodeFilter()
	out := f.Flush([]byte("trailing space \nnext line"))
	assert.Contains(t, string(out), "=20\r\n")
}

// TestQPEncodeBacksUpSplitCRLF feeds a CRLF pair split across two Step
// calls (the shape a chunked stream read produces when the pair lands
// on a buffer boundary): the bare CR must be deferred, not escaped, so
// the chunked encoding matches the whole-input encoding.
func TestQPEncodeBacksUpSplitCRLF(t *testing.T) {
	p := filter.NewPipeline(codec.NewQuotedPrintableEncodeFilter())
	var out []byte
	out = append(out, p.Apply([]byte("a\r"), false)...)
	out = append(out, p.Apply([]byte("\nb"), false)...)
	out = append(out, p.Apply(nil, true)...)
	assert.Equal(t, "a\r\nb", string(out))
}

// A trailing space is equally ambiguous mid-stream: it must be escaped
// only if the next chunk opens with a line break.
func TestQPEncodeBacksUpTrailingWhitespaceAcrossChunks(t *testing.T) {
	p := filter.NewPipeline(codec.NewQuotedPrintableEncodeFilter())
	var out []byte
	out = append(out, p.Apply([]byte("x "), false)...)
	out = append(out, p.Apply([]byte("\n"), false)...)
	out = append(out, p.Apply(nil, true)...)
	assert.Equal(t, "x=20\r\n", string(out))

	p = filter.NewPipeline(codec.NewQuotedPrintableEncodeFilter())
	out = nil
	out = append(out, p.Apply([]byte("x "), false)...)
	out = append(out, p.Apply([]byte("y"), false)...)
	out = append(out, p.Apply(nil, true)...)
	assert.Equal(t, "x y", string(out))
}

func TestQPEncodeStepConsumedCount(t *testing.T) {
	var state codec.QPState
	out, consumed := codec.QPEncodeStep([]byte("ab\r"), &state)
	assert.Equal(t, "ab", string(out))
	assert.Equal(t, 2, consumed, "a trailing bare CR must be backed up")

	state = codec.QPState{}
	out, consumed = codec.QPEncodeStep([]byte("ab \t"), &state)
	assert.Equal(t, "ab", string(out))
	assert.Equal(t, 2, consumed, "trailing whitespace must be backed up")
}

func TestQPDecodeSoftBreak(t *testing.T) {
	f := codec.NewQuotedPrintableDecodeFilter()
	out := f.Flush([]byte("line one=\r\nline two"))
	assert.Equal(t, "line oneline two", string(out))
}

func TestQPDecodeBackUpSplitEscape(t *testing.T) {
	// simulate a chunk boundary landing inside an "=HH" escape
	out1, consumed1 := codec.QPDecodeStep([]byte("abc=4"))
	assert.Equal(t, "abc", string(out1))
	assert.Equal(t, 3, consumed1, "the partial '=4' escape must be backed up")

	out2, consumed2 := codec.QPDecodeStep([]byte("=41xyz"))
	assert.Equal(t, "Axyz", string(out2))
	assert.Equal(t, 6, consumed2)
}

// TestQPEncodeEscapesStandaloneCR covers the round-trip law for a
// bare CR not immediately followed by LF: it must be escaped rather
// than dropped, or decode(encode(X)) != X.
func TestQPEncodeEscapesStandaloneCR(t *testing.T) {
	f := codec.NewQuotedPrintableEncodeFilter()
	out := f.Flush([]byte("a\rb"))
	assert.Equal(t, "a=0Db", string(out))

	d := codec.NewQuotedPrintableDecodeFilter()
	decoded := d.Flush(out)
	assert.Equal(t, "a\rb", string(decoded))
}

func TestQPRoundTripPipeline(t *testing.T) {
	cases := []string{
		"",
		"plain ascii",
		"Héllo, éèê world!",
		strings.Repeat("mixed=stuff ", 20),
		"a\rb\rc",
		"trailing cr\r",
	}
	for _, s := range cases {
		enc := filter.NewPipeline(codec.NewQuotedPrintableEncodeFilter())
		encoded := enc.Apply([]byte(s), false)
		encoded = append(encoded, enc.Apply(nil, true)...)

		dec := filter.NewPipeline(codec.NewQuotedPrintableDecodeFilter())
		decoded := dec.Apply(encoded, false)
		decoded = append(decoded, dec.Apply(nil, true)...)

		assert.Equal(t, s, string(decoded))
	}
}

// FuzzQPRoundTrip verifies the round-trip law for
// quoted-printable.
func FuzzQPRoundTrip(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("Héllo"))
	f.Add([]byte{0x00, 0x7f, 0xff, '\r', '\n', '='})
	f.Add([]byte("a\rb\rc"))

	f.Fuzz(func(t *testing.T, data []byte) {
		var state codec.QPState
		encoded, consumed := codec.QPEncodeStep(data, &state)
		encoded = append(encoded, codec.QPEncodeClose(data[consumed:], &state)...)

		var out []byte
		rest := encoded
		for len(rest) > 0 {
			chunk, consumed := codec.QPDecodeStep(rest)
			out = append(out, chunk...)
			if consumed == 0 {
				break
			}
			rest = rest[consumed:]
		}

		if string(out) != string(data) {
			t.Fatalf("round trip mismatch: got %q want %q", out, data)
		}
	})
}
