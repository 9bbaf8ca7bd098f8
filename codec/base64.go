// Package codec implements the bit-exact transfer-encoding codecs:
// base64, quoted-printable, uuencode and yEncode. Each codec
// exposes pure EncodeStep/EncodeClose/DecodeStep functions plus a
// filter.Filter wrapper, grounded on the decode shape go-guerrilla uses in
// mail/envelope.go (fromBase64/fromQuotedP call encoding/base64 and
// mime/quotedprintable for one-shot use); here they're rewritten as
// streaming step functions since the streaming back-up/flush contract needs
// state the stdlib one-shot readers don't expose.
package codec

import "github.com/mailchannels/gomime/filter"

// base64Alphabet is the standard RFC 4648 alphabet used for encoding.
const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// base64Decode is a 256-entry accept table: -1 for invalid/ignored bytes,
// 0-63 for alphabet characters, -2 for the '=' pad character.
var base64Decode [256]int8

func init() {
	for i := range base64Decode {
		base64Decode[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		base64Decode[base64Alphabet[i]] = int8(i)
	}
	base64Decode['='] = -2
}

// Base64State is the small fixed-size decode/encode state: a
// bit accumulator, a saved-bit count (0, 8 or 16 when encoding; 0, 2, 4
// or 6 when decoding), and (for encoding) a running output column used
// to break lines at 76 chars.
type Base64State struct {
	save     uint32
	saveBits int
	col      int // encode: chars written on the current output line
	padSeen  bool
}

// Reset returns the state to its initial (empty) value.
func (s *Base64State) Reset() { *s = Base64State{} }

// Base64EncodeBound returns a tight upper bound for EncodeStep(n bytes)
// given the current line position.
func Base64EncodeBound(n int) int {
	return (n/3+1)*4 + n/57*2 + 1
}

// Base64EncodeStep encodes as many complete 3-byte groups of input as
// possible, wrapping output at 76 columns (57 input bytes per line) with
// CRLF, and returns the encoded bytes. Any trailing 1-2 bytes remain in
// state until the next call or EncodeClose.
func Base64EncodeStep(input []byte, state *Base64State) []byte {
	out := make([]byte, 0, Base64EncodeBound(len(input)))
	i := 0
	for i < len(input) {
		state.save = (state.save << 8) | uint32(input[i])
		state.saveBits += 8
		i++
		if state.saveBits == 24 {
			out = appendBase64Quad(out, state.save, state)
			state.save = 0
			state.saveBits = 0
		}
	}
	return out
}

func appendBase64Quad(out []byte, val uint32, state *Base64State) []byte {
	quad := [4]byte{
		base64Alphabet[(val>>18)&0x3f],
		base64Alphabet[(val>>12)&0x3f],
		base64Alphabet[(val>>6)&0x3f],
		base64Alphabet[val&0x3f],
	}
	for _, c := range quad {
		out = append(out, c)
		state.col++
		if state.col == 76 {
			out = append(out, '\r', '\n')
			state.col = 0
		}
	}
	return out
}

// Base64EncodeClose flushes any saved partial group, padding with '='
// as needed. The final output line is not followed by a line break.
func Base64EncodeClose(state *Base64State) []byte {
	var out []byte
	switch state.saveBits {
	case 8:
		val := state.save << 16
		out = appendBase64Quad(out, val, state)
		out[len(out)-1] = '='
		out[len(out)-2] = '='
	case 16:
		val := state.save << 8
		out = appendBase64Quad(out, val, state)
		out[len(out)-1] = '='
	}
	state.col = 0
	state.save = 0
	state.saveBits = 0
	return out
}

// Base64DecodeBound returns a tight upper bound for DecodeStep(n bytes).
func Base64DecodeBound(n int) int { return n }

// Base64DecodeStep decodes input, accepting any whitespace and ignoring
// invalid bytes per the 256-entry accept table, and stops accumulating
// once '=' padding is seen.
func Base64DecodeStep(input []byte, state *Base64State) []byte {
	out := make([]byte, 0, Base64DecodeBound(len(input)))
	for _, b := range input {
		if state.padSeen {
			continue
		}
		v := base64Decode[b]
		if v == -1 {
			continue
		}
		if v == -2 {
			state.padSeen = true
			continue
		}
		state.save = (state.save << 6) | uint32(v)
		state.saveBits += 6
		if state.saveBits >= 8 {
			state.saveBits -= 8
			out = append(out, byte(state.save>>uint(state.saveBits)))
		}
	}
	return out
}

// base64Filter adapts the base64 step functions to filter.Filter.
type base64Filter struct {
	encode bool
	state  Base64State
}

// NewBase64EncodeFilter returns a filter.Filter that base64-encodes its
// input, line-wrapped at 76 columns with CRLF.
func NewBase64EncodeFilter() filter.Filter { return &base64Filter{encode: true} }

// NewBase64DecodeFilter returns a filter.Filter that base64-decodes its
// input, tolerant of interleaved whitespace.
func NewBase64DecodeFilter() filter.Filter { return &base64Filter{encode: false} }

func (f *base64Filter) Step(input []byte) ([]byte, int) {
	if f.encode {
		// only consume in multiples of 3: a trailing partial group is
		// backed up by the Pipeline and re-presented with the next input.
		usable := len(input) - len(input)%3
		return Base64EncodeStep(input[:usable], &f.state), usable
	}
	return Base64DecodeStep(input, &f.state), len(input)
}

func (f *base64Filter) Flush(input []byte) []byte {
	if f.encode {
		out := Base64EncodeStep(input, &f.state)
		return append(out, Base64EncodeClose(&f.state)...)
	}
	return Base64DecodeStep(input, &f.state)
}

func (f *base64Filter) Reset() { f.state.Reset() }

func (f *base64Filter) Copy() filter.Filter {
	cp := *f
	return &cp
}
