package lineproto

import (
	"github.com/mailchannels/gomime/charset"
	"github.com/mailchannels/gomime/filter"
)

// BestCharsetFilter is a transparent pass-through filter that narrows a
// charset.CandidateBitset as UTF-8 text flows past, letting a caller
// learn the narrowest charset able to represent an outgoing body without
// buffering the whole thing separately — the streaming counterpart to
// charset.BestCharset for data too large to hold twice.
type BestCharsetFilter struct {
	candidates *charset.CandidateBitset
}

// NewBestCharsetFilter returns a filter starting from a fresh candidate
// set (every enumerated charset still possible).
func NewBestCharsetFilter() *BestCharsetFilter {
	return &BestCharsetFilter{candidates: charset.NewCandidateBitset()}
}

func (f *BestCharsetFilter) Step(input []byte) (output []byte, consumed int) {
	f.candidates.ObserveUTF8(input)
	return input, len(input)
}

func (f *BestCharsetFilter) Flush(input []byte) []byte {
	f.candidates.ObserveUTF8(input)
	return input
}

// Result returns the narrowest charset name consistent with everything
// observed so far.
func (f *BestCharsetFilter) Result() string {
	return f.candidates.Best().Name()
}

func (f *BestCharsetFilter) Reset() {
	f.candidates.Reset()
}

func (f *BestCharsetFilter) Copy() filter.Filter {
	return NewBestCharsetFilter()
}
