package lineproto

import (
	"github.com/mailchannels/gomime/filter"
	"github.com/mailchannels/gomime/packed"
)

// StripFilter removes trailing whitespace (space/tab) from the end of
// every line, the canonicalization RFC 3676 flowed-text generation and
// outgoing-message hygiene both require. Pending whitespace is memoized
// in a packed.Array rather than a plain slice — a line of a thousand
// trailing spaces costs one run, not a thousand bytes — and is only
// flushed to the output once a non-whitespace byte or a line terminator
// resolves whether it was trailing.
type StripFilter struct {
	pending packed.Array
	out     []byte
}

// NewStripFilter returns a new, empty StripFilter.
func NewStripFilter() *StripFilter { return &StripFilter{} }

func (f *StripFilter) Step(input []byte) (output []byte, consumed int) {
	f.out = f.out[:0]
	for _, b := range input {
		switch b {
		case ' ', '\t':
			f.pending.Append(b, 1)
		case '\n':
			// trailing whitespace on this line is discarded
			f.pending.Reset()
			f.out = append(f.out, '\n')
		default:
			f.out = f.pending.Flush(f.out)
			f.out = append(f.out, b)
		}
	}
	return f.out, len(input)
}

func (f *StripFilter) Flush(input []byte) []byte {
	out, _ := f.Step(input)
	// any whitespace still pending at EOS was trailing on the final,
	// unterminated line: discard it, matching mid-stream behavior.
	f.pending.Reset()
	return out
}

func (f *StripFilter) Reset() {
	f.pending.Reset()
	f.out = f.out[:0]
}

func (f *StripFilter) Copy() filter.Filter {
	return &StripFilter{}
}
