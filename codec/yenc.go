package codec

import (
	"bytes"
	"fmt"
	"hash/crc32"

	"github.com/mailchannels/gomime/filter"
)

// yEncLineLength is the number of encoded output bytes (escape pairs
// counting as two) after which yEncode breaks the line.
const yEncLineLength = 128

// YEncLineLength exposes the default line length for callers building
// "=ybegin line=" headers of their own.
const YEncLineLength = yEncLineLength

// yEncNeedsEscape marks bytes that must always be escaped in yEncode
// output even though (b+42)%256 would otherwise produce a safe byte:
// NUL, LF, CR, and '=' (after the +42 shift).
func yEncNeedsEscape(encoded byte) bool {
	switch encoded {
	case 0x00, 0x0A, 0x0D, '=':
		return true
	default:
		return false
	}
}

// yEncEdgeEscape marks bytes escaped only when they fall at a line
// edge: TAB and space as the first or last byte of an output line.
func yEncEdgeEscape(encoded byte) bool {
	return encoded == 0x09 || encoded == 0x20
}

// YEncPhase tracks progress through the yEncode envelope: begin, an
// optional part header, the decode body, and the end trailer.
type YEncPhase int

const (
	YEncPhaseBegin YEncPhase = iota
	YEncPhasePart
	YEncPhaseDecode
	YEncPhaseEnd
)

// YEncState is the yEncode codec state: an escape-pending flag
// (for a "=X" split across buffer boundaries), the running whole-file
// CRC32, the running per-part CRC32, and the phase bits.
type YEncState struct {
	Phase        YEncPhase
	escapePend   bool
	crc          uint32
	partCRC      uint32
	Name         string
	Size         int64
	Line         int
	PartBegin    int64
	PartEnd      int64
	col          int
	saved        []byte
	sawCRC       uint32
	sawPartCRC   uint32
	hasPartTrail bool
}

// Reset returns the state to its initial value, with fresh CRC
// accumulators.
func (s *YEncState) Reset() {
	*s = YEncState{crc: 0, partCRC: 0}
}

// YEncEncodeBound returns a tight upper bound for EncodeStep(n bytes).
func YEncEncodeBound(n int) int { return 2*n + n/yEncLineLength*4 + 64 }

// YEncEncodeBegin returns the "=ybegin ..." header line.
func YEncEncodeBegin(name string, size int64, line int) []byte {
	if line <= 0 {
		line = yEncLineLength
	}
	return []byte(fmt.Sprintf("=ybegin line=%d size=%d name=%s\r\n", line, size, name))
}

// YEncEncodeStep yEncodes input, updating the running whole-file and
// per-part CRC32s, escaping critical bytes and wrapping once a line
// holds yEncLineLength encoded bytes.
func YEncEncodeStep(input []byte, state *YEncState) []byte {
	out := make([]byte, 0, YEncEncodeBound(len(input)))
	state.crc = crc32.Update(state.crc, crc32.IEEETable, input)
	state.partCRC = crc32.Update(state.partCRC, crc32.IEEETable, input)
	for _, b := range input {
		enc := b + 42
		atEdge := state.col == 0 || state.col+1 >= yEncLineLength
		if yEncNeedsEscape(enc) || (yEncEdgeEscape(enc) && atEdge) {
			out = append(out, '=', enc+64)
			state.col += 2
		} else {
			out = append(out, enc)
			state.col++
		}
		if state.col >= yEncLineLength {
			out = append(out, '\r', '\n')
			state.col = 0
		}
	}
	return out
}

// YEncEncodeEnd returns the "=yend ..." trailer, including the
// whole-file CRC32 and, when hasPart is true, the per-part CRC32.
func YEncEncodeEnd(state *YEncState, size int64, hasPart bool) []byte {
	var out []byte
	if state.col > 0 {
		out = append(out, '\r', '\n')
		state.col = 0
	}
	if hasPart {
		out = append(out, []byte(fmt.Sprintf("=yend size=%d pcrc32=%08x crc32=%08x\r\n",
			size, state.partCRC, state.crc))...)
	} else {
		out = append(out, []byte(fmt.Sprintf("=yend size=%d crc32=%08x\r\n", size, state.crc))...)
	}
	return out
}

// YEncDecodeBound returns a tight upper bound for DecodeStep(n bytes).
func YEncDecodeBound(n int) int { return n }

// YEncDecodeStep advances the phase-bit state machine through begin,
// optional part, decode and end, accumulating the running CRC32s as
// bytes are decoded. Recognizes "=y" control lines by a line-anchored
// prefix match.
func YEncDecodeStep(input []byte, state *YEncState) (output []byte, consumed int) {
	out := make([]byte, 0, YEncDecodeBound(len(input)))
	data := input
	if len(state.saved) > 0 {
		data = append(append([]byte{}, state.saved...), input...)
		state.saved = nil
	}
	pos := 0
	for state.Phase != YEncPhaseEnd {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl == -1 {
			state.saved = append([]byte{}, data[pos:]...)
			return out, len(input)
		}
		line := bytes.TrimRight(data[pos:pos+nl], "\r")
		lineEnd := pos + nl + 1

		switch state.Phase {
		case YEncPhaseBegin:
			if bytes.HasPrefix(line, []byte("=ybegin")) {
				parseYEncHeader(line, state)
				if bytes.Contains(line, []byte(" part=")) {
					state.Phase = YEncPhasePart // a "=ypart" line follows
				} else {
					state.Phase = YEncPhaseDecode
				}
			}
			pos = lineEnd
			continue
		case YEncPhasePart:
			if bytes.HasPrefix(line, []byte("=ypart")) {
				state.Phase = YEncPhaseDecode
			}
			pos = lineEnd
			continue
		case YEncPhaseDecode:
			if bytes.HasPrefix(line, []byte("=yend")) {
				state.Phase = YEncPhaseEnd
				pos = lineEnd
				continue
			}
			decoded := decodeYEncLine(line, state)
			out = append(out, decoded...)
			pos = lineEnd
			continue
		}
	}
	if pos < len(data) {
		state.saved = append([]byte{}, data[pos:]...)
	}
	consumedOfInput := len(input) - (len(data) - pos)
	if consumedOfInput < 0 {
		consumedOfInput = 0
	}
	state.crc = crc32.Update(state.crc, crc32.IEEETable, out)
	state.partCRC = crc32.Update(state.partCRC, crc32.IEEETable, out)
	return out, consumedOfInput
}

func decodeYEncLine(line []byte, state *YEncState) []byte {
	out := make([]byte, 0, len(line))
	escaped := state.escapePend
	state.escapePend = false
	for _, b := range line {
		if escaped {
			out = append(out, b-64-42)
			escaped = false
			continue
		}
		if b == '=' {
			escaped = true
			continue
		}
		out = append(out, b-42)
	}
	state.escapePend = escaped
	return out
}

func parseYEncHeader(line []byte, state *YEncState) {
	fields := bytes.Fields(line)
	for _, f := range fields {
		kv := bytes.SplitN(f, []byte("="), 2)
		if len(kv) != 2 {
			continue
		}
		switch string(kv[0]) {
		case "name":
			state.Name = string(kv[1])
		case "line":
			fmt.Sscanf(string(kv[1]), "%d", &state.Line)
		case "size":
			fmt.Sscanf(string(kv[1]), "%d", &state.Size)
		}
	}
}

type yencFilter struct {
	encode bool
	state  YEncState
	name   string
	size   int64
	began  bool
}

// NewYEncEncodeFilter returns a filter.Filter that yEncodes its input,
// emitting "=ybegin" on first Step and "=yend" on Flush.
func NewYEncEncodeFilter(name string, size int64) filter.Filter {
	return &yencFilter{encode: true, name: name, size: size}
}

// NewYEncDecodeFilter returns a filter.Filter that yDecodes its input.
func NewYEncDecodeFilter() filter.Filter { return &yencFilter{encode: false} }

func (f *yencFilter) Step(input []byte) ([]byte, int) {
	if f.encode {
		var out []byte
		if !f.began {
			out = append(out, YEncEncodeBegin(f.name, f.size, yEncLineLength)...)
			f.began = true
		}
		out = append(out, YEncEncodeStep(input, &f.state)...)
		return out, len(input)
	}
	return YEncDecodeStep(input, &f.state)
}

func (f *yencFilter) Flush(input []byte) []byte {
	if f.encode {
		out, _ := f.Step(input)
		out = append(out, YEncEncodeEnd(&f.state, f.size, false)...)
		return out
	}
	out, _ := YEncDecodeStep(input, &f.state)
	return out
}

func (f *yencFilter) Reset() {
	f.state.Reset()
	f.began = false
}

func (f *yencFilter) Copy() filter.Filter {
	cp := *f
	return &cp
}
