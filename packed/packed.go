// Package packed implements a run-length compressed byte sequence —
// (byte, run_length) pairs with run_length <= 255 — used by the
// whitespace-strip filter (lineproto.Strip) to memoize a pending
// trailing-whitespace run without allocating a contiguous buffer.
package packed

// run is one (byte, run_length) pair.
type run struct {
	b   byte
	len uint8 // 1..255
}

// Array is an append-only run-length-encoded byte sequence.
type Array struct {
	runs []run
	size int
}

// New returns an empty Array.
func New() *Array { return &Array{} }

// Len returns the total number of logical bytes represented.
func (a *Array) Len() int { return a.size }

// Append adds n copies of b to the end of the sequence, splitting across
// multiple runs if n exceeds 255.
func (a *Array) Append(b byte, n int) {
	for n > 0 {
		chunk := n
		if chunk > 255 {
			chunk = 255
		}
		if len(a.runs) > 0 {
			last := &a.runs[len(a.runs)-1]
			if last.b == b && int(last.len)+chunk <= 255 {
				last.len += uint8(chunk)
				a.size += chunk
				n -= chunk
				continue
			}
		}
		a.runs = append(a.runs, run{b: b, len: uint8(chunk)})
		a.size += chunk
		n -= chunk
	}
}

// Reset discards every run, returning the Array to empty.
func (a *Array) Reset() {
	a.runs = a.runs[:0]
	a.size = 0
}

// Flush appends the fully expanded byte sequence to dst and resets the
// Array, returning the grown slice.
func (a *Array) Flush(dst []byte) []byte {
	for _, r := range a.runs {
		for i := uint8(0); i < r.len; i++ {
			dst = append(dst, r.b)
		}
	}
	a.Reset()
	return dst
}

// Bytes expands the whole sequence into a new slice without resetting.
func (a *Array) Bytes() []byte {
	out := make([]byte, 0, a.size)
	for _, r := range a.runs {
		for i := uint8(0); i < r.len; i++ {
			out = append(out, r.b)
		}
	}
	return out
}
