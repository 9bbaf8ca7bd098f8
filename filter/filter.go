// Package filter implements the chained byte-transform pipeline:
// stateful Filters with back-up semantics, composed into an ordered
// Pipeline that can be attached to a stream.Stream.
package filter

// Filter is a stateful byte transformer. Step is called for each chunk of
// input as it becomes available; Flush is called exactly once, when the
// upstream source reaches EOS, with any final input.
//
// A Filter may decline to consume a trailing prefix of the bytes it was
// given — a "back-up" — by returning a consumed count smaller than
// len(input). The Pipeline re-presents the unconsumed suffix prepended
// to the next Step call. Filters never allocate a back-up buffer
// themselves: they only report how much of their input they used.
type Filter interface {
	// Step transforms input, returning the bytes produced and how many
	// leading bytes of input were consumed. consumed may be less than
	// len(input); the remainder is backed up by the caller.
	Step(input []byte) (output []byte, consumed int)

	// Flush is called once, with any remaining input, when the source
	// reaches EOS. It must consume everything (there is no back-up after
	// Flush).
	Flush(input []byte) (output []byte)

	// Reset clears all internal state back to what NewXxx would produce.
	// Back-up bytes the Pipeline holds for this filter are discarded by
	// Pipeline.Reset, not by this method.
	Reset()

	// Copy returns a new Filter with equivalent initial state (not a
	// shared reference) — used when the same filter configuration must be
	// attached to more than one pipeline.
	Copy() Filter
}

// outbuf is a filter's output buffer: it grows monotonically within one
// Step/Flush call and may be reallocated between calls, matching the
// prespace headroom policy. Filters that need scratch space to build
// their output embed one of these, mirroring go-guerrilla's captureBuffer
// wrapper in mail/mime/mime.go.
type outbuf struct {
	buf      []byte
	prespace int
}

func (o *outbuf) reset() {
	o.buf = o.buf[:0]
}

// setSize ensures cap(o.buf) >= o.prespace+n. If keep is false the
// backing array may be freed and reallocated; callers must not retain a
// pointer into the old buffer across a setSize(_, false) call.
func (o *outbuf) setSize(n int, keep bool) {
	need := o.prespace + n
	if cap(o.buf) >= need {
		return
	}
	nb := make([]byte, len(o.buf), need)
	if keep {
		copy(nb, o.buf)
	}
	o.buf = nb
}

func (o *outbuf) append(b ...byte) {
	o.buf = append(o.buf, b...)
}

func (o *outbuf) appendSlice(b []byte) {
	o.buf = append(o.buf, b...)
}
