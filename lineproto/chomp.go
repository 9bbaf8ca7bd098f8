package lineproto

import "github.com/mailchannels/gomime/filter"

// ChompFilter removes exactly one trailing line terminator (CRLF or bare
// LF) from the very end of the stream, used when materializing a MIME
// part's decoded body where the final boundary line's preceding newline
// is conventionally not considered part of the content.
//
// Because "is this the last newline" can't be known until EOS, a chunk's
// trailing CR, LF or CRLF (and only that) is held back until either more
// bytes arrive (at which point the held-back bytes are released ahead of
// them) or Flush is called (at which point a trailing terminator, if any,
// is dropped).
type ChompFilter struct {
	held []byte // at most 2 bytes: potential trailing CRLF/LF
	out  []byte
}

// NewChompFilter returns a new ChompFilter.
func NewChompFilter() *ChompFilter { return &ChompFilter{} }

func (f *ChompFilter) Step(input []byte) (output []byte, consumed int) {
	f.out = f.out[:0]
	data := append(append([]byte{}, f.held...), input...)
	f.held = f.held[:0]

	// release everything except a possible trailing CRLF/LF/CR, which we
	// hold back in case it turns out to be the final terminator.
	end := len(data)
	switch {
	case end >= 2 && data[end-2] == '\r' && data[end-1] == '\n':
		f.held = append(f.held, data[end-2:end]...)
		end -= 2
	case end >= 1 && (data[end-1] == '\n' || data[end-1] == '\r'):
		f.held = append(f.held, data[end-1])
		end--
	}
	f.out = append(f.out, data[:end]...)
	return f.out, len(input)
}

func (f *ChompFilter) Flush(input []byte) []byte {
	f.out = f.out[:0]
	data := append(f.held, input...)
	f.held = f.held[:0]

	if n := len(data); n >= 2 && data[n-2] == '\r' && data[n-1] == '\n' {
		data = data[:n-2]
	} else if n >= 1 && (data[n-1] == '\n' || data[n-1] == '\r') {
		data = data[:n-1]
	}
	f.out = append(f.out, data...)
	return f.out
}

func (f *ChompFilter) Reset() {
	f.held = f.held[:0]
	f.out = f.out[:0]
}

func (f *ChompFilter) Copy() filter.Filter {
	return &ChompFilter{}
}
