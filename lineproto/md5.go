package lineproto

import (
	"crypto/md5"
	"hash"

	"github.com/mailchannels/gomime/filter"
)

// MD5Filter is a transparent pass-through filter that accumulates a
// running MD5 digest of everything that flows through it, the streaming
// equivalent of go-guerrilla's checksum-on-the-fly helpers in chunk. Used
// to compute Content-MD5 without a second pass over a part's body.
type MD5Filter struct {
	h hash.Hash
}

// NewMD5Filter returns a new MD5Filter.
func NewMD5Filter() *MD5Filter {
	return &MD5Filter{h: md5.New()}
}

func (f *MD5Filter) Step(input []byte) (output []byte, consumed int) {
	f.h.Write(input)
	return input, len(input)
}

func (f *MD5Filter) Flush(input []byte) []byte {
	f.h.Write(input)
	return input
}

// Sum returns the MD5 digest of everything observed so far.
func (f *MD5Filter) Sum() [16]byte {
	var out [16]byte
	copy(out[:], f.h.Sum(nil))
	return out
}

func (f *MD5Filter) Reset() {
	f.h = md5.New()
}

func (f *MD5Filter) Copy() filter.Filter {
	return NewMD5Filter()
}
