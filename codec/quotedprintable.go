package codec

import "github.com/mailchannels/gomime/filter"

// qpSafe is the RFC 2045 §6.7 "safe" byte class: printable ASCII except
// '=', with tab and space allowed mid-line (trailing whitespace needs
// special handling at end-of-line, handled separately below).
var qpSafe [256]bool

func init() {
	for b := 33; b <= 126; b++ {
		qpSafe[b] = true
	}
	qpSafe['='] = false
	qpSafe[' '] = true
	qpSafe['\t'] = true
}

const qpLineLimit = 76

const hexDigits = "0123456789ABCDEF"

// QPState is the quoted-printable codec state: the output column
// counter used to place soft breaks at <=76 columns. Bytes whose
// encoding depends on what follows (a split "=HH" or "=\r\n" on decode,
// a bare CR or trailing whitespace on encode) are handled through the
// consumed-count back-up contract — the caller re-presents the
// unconsumed suffix on the next call — rather than saved here.
type QPState struct {
	col int // encode: current output column
}

// Reset returns the state to its initial value.
func (s *QPState) Reset() { *s = QPState{} }

// QPEncodeBound returns a tight upper bound for EncodeStep(n bytes).
func QPEncodeBound(n int) int { return 3*n + n/24 + 2 }

// QPEncodeStep quoted-printable-encodes input. Bytes in qpSafe pass
// through; others become "=HH". Soft line breaks ("=\r\n") are inserted
// so no output line exceeds qpLineLimit columns. Trailing whitespace
// before a hard break is escaped so it survives transport. Returns the
// encoded bytes and the count of input bytes consumed — a trailing bare
// CR (which may turn out to be half of a split CRLF) or a trailing run
// of whitespace (which may turn out to precede a line break) is backed
// up rather than resolved, since the next chunk decides how it must be
// encoded. QPEncodeClose resolves whatever is still pending at EOS.
func QPEncodeStep(input []byte, state *QPState) (output []byte, consumed int) {
	// Defer the suffix the next chunk could reinterpret: optional
	// blanks followed by an optional bare CR.
	hold := 0
	n := len(input)
	if n > 0 && input[n-1] == '\r' {
		hold = 1
	}
	for n-1-hold >= 0 && (input[n-1-hold] == ' ' || input[n-1-hold] == '\t') {
		hold++
	}
	return qpEncode(input[:n-hold], state, false), n - hold
}

func qpEncode(input []byte, state *QPState, eos bool) []byte {
	out := make([]byte, 0, QPEncodeBound(len(input)))
	for i := 0; i < len(input); i++ {
		b := input[i]
		if b == '\n' {
			out = append(out, '\r', '\n')
			state.col = 0
			continue
		}
		if b == '\r' {
			if i+1 < len(input) && input[i+1] == '\n' {
				continue // normalized via the \n case above
			}
			// Standalone CR, not part of a CRLF pair: escape it rather
			// than dropping it, so decode(encode(X)) == X holds for
			// input containing a bare CR. Only reachable with full
			// lookahead (a trailing CR is backed up by QPEncodeStep).
			out = appendQPEscaped(out, b, state)
			continue
		}
		atLineEnd := (eos && i+1 >= len(input)) ||
			(i+1 < len(input) && input[i+1] == '\n') ||
			(i+1 < len(input) && input[i+1] == '\r' && (eos && i+2 >= len(input) || i+2 < len(input) && input[i+2] == '\n'))
		if (b == ' ' || b == '\t') && atLineEnd {
			out = appendQPEscaped(out, b, state)
			continue
		}
		if qpSafe[b] {
			if state.col >= qpLineLimit-1 {
				out = append(out, '=', '\r', '\n')
				state.col = 0
			}
			out = append(out, b)
			state.col++
			continue
		}
		out = appendQPEscaped(out, b, state)
	}
	return out
}

func appendQPEscaped(out []byte, b byte, state *QPState) []byte {
	if state.col >= qpLineLimit-3 {
		out = append(out, '=', '\r', '\n')
		state.col = 0
	}
	out = append(out, '=', hexDigits[b>>4], hexDigits[b&0xf])
	state.col += 3
	return out
}

// QPEncodeClose finalizes a quoted-printable encode, consuming input in
// full (pass any bytes QPEncodeStep backed up, followed by whatever
// remains): a bare CR or trailing whitespace left hanging at end of
// stream is escaped here, where no further chunk can reinterpret it.
// Resets state afterward.
func QPEncodeClose(input []byte, state *QPState) []byte {
	out := qpEncode(input, state, true)
	state.Reset()
	return out
}

// QPDecodeBound returns a tight upper bound for DecodeStep(n bytes).
func QPDecodeBound(n int) int { return n + 1 }

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'F') || (b >= 'a' && b <= 'f')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	default:
		return b - 'a' + 10
	}
}

// QPDecodeStep decodes quoted-printable input. "=\r\n" and "=\n" (a soft
// break) become nothing; "=HH" becomes one byte; a bare "=" followed by a
// non-hex byte (or EOS) passes through literally. Returns the
// decoded bytes and the count of input bytes consumed — a trailing "="
// or "=H" at the end of the chunk is backed up since it might be the
// start of a split escape.
func QPDecodeStep(input []byte) (output []byte, consumed int) {
	out := make([]byte, 0, QPDecodeBound(len(input)))
	i := 0
	for i < len(input) {
		b := input[i]
		if b != '=' {
			out = append(out, b)
			i++
			continue
		}
		// Possible escape; make sure we have enough lookahead.
		if i+1 >= len(input) {
			return out, i // back up the trailing '='
		}
		if input[i+1] == '\n' {
			i += 2
			continue
		}
		if input[i+1] == '\r' {
			if i+2 >= len(input) {
				return out, i // back up "=\r", could be "=\r\n"
			}
			if input[i+2] == '\n' {
				i += 3
				continue
			}
			// "=\r" not followed by \n: treat '=' literally.
			out = append(out, '=')
			i++
			continue
		}
		if i+2 >= len(input) {
			return out, i // back up, could be a split "=HH"
		}
		if isHex(input[i+1]) && isHex(input[i+2]) {
			out = append(out, hexVal(input[i+1])<<4|hexVal(input[i+2]))
			i += 3
			continue
		}
		// bare '=' not followed by a valid escape: literal pass-through.
		out = append(out, '=')
		i++
	}
	return out, i
}

type qpFilter struct {
	encode bool
	state  QPState
}

// NewQuotedPrintableEncodeFilter returns a filter.Filter that
// quoted-printable encodes its input.
func NewQuotedPrintableEncodeFilter() filter.Filter { return &qpFilter{encode: true} }

// NewQuotedPrintableDecodeFilter returns a filter.Filter that
// quoted-printable decodes its input.
func NewQuotedPrintableDecodeFilter() filter.Filter { return &qpFilter{encode: false} }

func (f *qpFilter) Step(input []byte) ([]byte, int) {
	if f.encode {
		return QPEncodeStep(input, &f.state)
	}
	out, consumed := QPDecodeStep(input)
	return out, consumed
}

func (f *qpFilter) Flush(input []byte) []byte {
	if f.encode {
		return QPEncodeClose(input, &f.state)
	}
	out, consumed := QPDecodeStep(input)
	// at EOS a trailing "=" or "=H" cannot complete an escape: pass it
	// through literally.
	return append(out, input[consumed:]...)
}

func (f *qpFilter) Reset() { f.state.Reset() }

func (f *qpFilter) Copy() filter.Filter {
	cp := *f
	return &cp
}
