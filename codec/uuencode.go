package codec

import (
	"bytes"
	"strconv"

	"github.com/mailchannels/gomime/filter"
)

// UUPhase is the uuencode decoder's phase.
type UUPhase int

const (
	UUPhaseBegin UUPhase = iota
	UUPhaseBody
	UUPhaseEnd
)

// UUState is the uuencode codec state: phase, saved partial-line
// bytes, and the name and mode taken from the "begin" line. Starting
// with Phase set to UUPhaseBody (as NewUUDecodeFilter(true) does) lets a
// caller (such as the MIME parser, which may have already consumed the
// "begin MODE NAME" line itself while scanning headers) skip the scan
// for that line — the role of GMIME_UUDECODE_STATE_BEGIN in the original
// source.
type UUState struct {
	Phase      UUPhase
	saved      []byte
	Name       string
	Mode       int
	sawAnyLine bool
}

// Reset returns the state to its initial (pre-begin-line) value.
func (s *UUState) Reset() { *s = UUState{} }

func uuEncodeChar(v byte) byte {
	v &= 0x3f
	if v == 0 {
		return '`'
	}
	return v + 32
}

func uuDecodeChar(b byte) byte {
	if b == '`' {
		return 0
	}
	return (b - 32) & 0x3f
}

// UUEncodeBound returns a tight upper bound for EncodeStep(n bytes).
func UUEncodeBound(n int) int { return n + n/45*4 + 2 }

// UUEncodeBegin returns the "begin MODE NAME\n" header line.
func UUEncodeBegin(name string, mode int) []byte {
	if mode == 0 {
		mode = 0644
	}
	return []byte("begin " + strconv.FormatInt(int64(mode), 8) + " " + name + "\n")
}

// UUEncodeStep encodes complete 45-byte groups from input into
// length-prefixed 60-column lines. Any trailing <45 bytes are left for
// EncodeClose.
func UUEncodeStep(input []byte) (output []byte, consumed int) {
	out := make([]byte, 0, UUEncodeBound(len(input)))
	i := 0
	for len(input)-i >= 45 {
		out = appendUULine(out, input[i:i+45])
		i += 45
	}
	return out, i
}

func appendUULine(out []byte, group []byte) []byte {
	out = append(out, uuEncodeChar(byte(len(group))))
	for i := 0; i < len(group); i += 3 {
		var b0, b1, b2 byte
		b0 = group[i]
		if i+1 < len(group) {
			b1 = group[i+1]
		}
		if i+2 < len(group) {
			b2 = group[i+2]
		}
		out = append(out, uuEncodeChar(b0>>2))
		out = append(out, uuEncodeChar((b0<<4)|(b1>>4)))
		out = append(out, uuEncodeChar((b1<<2)|(b2>>6)))
		out = append(out, uuEncodeChar(b2))
	}
	out = append(out, '\n')
	return out
}

// UUEncodeClose flushes any trailing partial group (<45 bytes) as a short
// line, then emits the zero-length terminator line and "end\n".
func UUEncodeClose(remainder []byte) []byte {
	var out []byte
	if len(remainder) > 0 {
		out = appendUULine(out, remainder)
	}
	out = append(out, '`', '\n')
	out = append(out, []byte("end\n")...)
	return out
}

// UUDecodeBound returns a tight upper bound for DecodeStep(n bytes).
func UUDecodeBound(n int) int { return n }

// UUDecodeStep decodes uuencoded lines. If state.Phase is UUPhaseBegin
// and !sawAnyLine, it first scans for (and discards) a "begin MODE
// NAME" line; UUPhaseBody decodes length-prefixed lines; a
// zero-length-byte line transitions to UUPhaseEnd, and the parser stops decoding further
// lines once there.
func UUDecodeStep(input []byte, state *UUState) (output []byte, consumed int) {
	out := make([]byte, 0, UUDecodeBound(len(input)))
	data := input
	if len(state.saved) > 0 {
		data = append(append([]byte{}, state.saved...), input...)
		state.saved = nil
	}
	pos := 0
	for state.Phase != UUPhaseEnd {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl == -1 {
			state.saved = append([]byte{}, data[pos:]...)
			return out, len(input)
		}
		line := data[pos : pos+nl]
		lineEnd := pos + nl + 1

		if state.Phase == UUPhaseBegin {
			if bytes.HasPrefix(line, []byte("begin ")) {
				parseBeginLine(line, state)
				state.Phase = UUPhaseBody
				state.sawAnyLine = true
				pos = lineEnd
				continue
			}
			// tolerate leading blank/garbage lines before "begin"
			pos = lineEnd
			continue
		}

		if len(line) == 0 {
			state.Phase = UUPhaseEnd
			pos = lineEnd
			break
		}
		n := int(uuDecodeChar(line[0]))
		if n == 0 {
			state.Phase = UUPhaseEnd
			pos = lineEnd
			break
		}
		body := line[1:]
		decoded := 0
		for i := 0; i < len(body) && decoded < n; i += 4 {
			var c [4]byte
			for j := 0; j < 4; j++ {
				if i+j < len(body) {
					c[j] = uuDecodeChar(body[i+j])
				}
			}
			b0 := (c[0] << 2) | (c[1] >> 4)
			b1 := (c[1] << 4) | (c[2] >> 2)
			b2 := (c[2] << 6) | c[3]
			if decoded < n {
				out = append(out, b0)
				decoded++
			}
			if decoded < n {
				out = append(out, b1)
				decoded++
			}
			if decoded < n {
				out = append(out, b2)
				decoded++
			}
		}
		pos = lineEnd
	}
	if pos < len(data) {
		state.saved = append([]byte{}, data[pos:]...)
	}
	consumedOfInput := len(input)
	if len(input) > len(data)-pos {
		consumedOfInput = len(input) - (len(data) - pos)
		if consumedOfInput < 0 {
			consumedOfInput = 0
		}
	}
	return out, consumedOfInput
}

func parseBeginLine(line []byte, state *UUState) {
	fields := bytes.Fields(line)
	if len(fields) >= 3 {
		if mode, err := strconv.ParseInt(string(fields[1]), 8, 32); err == nil {
			state.Mode = int(mode)
		}
		state.Name = string(fields[2])
	}
}

type uuFilter struct {
	encode bool
	state  UUState
	buf    []byte
	name   string
	mode   int
	began  bool
}

// NewUUEncodeFilter returns a filter.Filter that uuencodes its input,
// emitting the "begin" header on the first Step call.
func NewUUEncodeFilter(name string, mode int) filter.Filter {
	return &uuFilter{encode: true, name: name, mode: mode}
}

// NewUUDecodeFilter returns a filter.Filter that uudecodes its input.
// If the caller has already consumed the "begin" line itself (e.g. the
// MIME parser scanning headers), set skipBegin to start directly in
// UUPhaseBody.
func NewUUDecodeFilter(skipBegin bool) filter.Filter {
	f := &uuFilter{encode: false}
	if skipBegin {
		f.state.Phase = UUPhaseBody
		f.state.sawAnyLine = true
	}
	return f
}

func (f *uuFilter) Step(input []byte) ([]byte, int) {
	if f.encode {
		var out []byte
		if !f.began {
			out = append(out, UUEncodeBegin(f.name, f.mode)...)
			f.began = true
		}
		data := append(f.buf, input...)
		enc, consumed := UUEncodeStep(data)
		out = append(out, enc...)
		f.buf = append([]byte{}, data[consumed:]...)
		return out, len(input)
	}
	return UUDecodeStep(input, &f.state)
}

func (f *uuFilter) Flush(input []byte) []byte {
	if f.encode {
		out, consumed := f.Step(input)
		_ = consumed
		out = append(out, UUEncodeClose(f.buf)...)
		f.buf = nil
		return out
	}
	out, _ := UUDecodeStep(input, &f.state)
	return out
}

func (f *uuFilter) Reset() {
	f.state.Reset()
	f.buf = nil
	f.began = false
}

func (f *uuFilter) Copy() filter.Filter {
	cp := *f
	cp.buf = append([]byte{}, f.buf...)
	return &cp
}
