package filter

// Pipeline is an ordered sequence of Filters attached (conceptually) to a
// stream. On read, bytes pulled from the underlying stream pass through
// filters in insertion order; on write, the inverse (reverse order).
//
// The Pipeline owns each filter's back-up buffer: after a Step call that
// reports consumed < len(input), the unconsumed suffix is retained and
// prepended — exactly once — to that filter's next input.
type Pipeline struct {
	filters []Filter
	backup  [][]byte // backup[i] is unconsumed bytes still owed to filters[i]
	eosSent bool
}

// NewPipeline composes filters into a Pipeline in the given (read) order.
func NewPipeline(filters ...Filter) *Pipeline {
	return &Pipeline{
		filters: filters,
		backup:  make([][]byte, len(filters)),
	}
}

// Add appends a filter to the end of the read-order chain.
func (p *Pipeline) Add(f Filter) {
	p.filters = append(p.filters, f)
	p.backup = append(p.backup, nil)
}

// Len reports how many filters are chained.
func (p *Pipeline) Len() int { return len(p.filters) }

// Apply pushes input through the chain in read order, returning the
// final output. If eos is true, the last stage in the chain to see bytes
// gets Flush instead of Step, and Flush propagates through every
// downstream filter in turn so the whole chain drains together.
func (p *Pipeline) Apply(input []byte, eos bool) []byte {
	data := input
	for i, f := range p.filters {
		if len(p.backup[i]) > 0 {
			data = append(append([]byte{}, p.backup[i]...), data...)
			p.backup[i] = nil
		}
		if eos {
			data = f.Flush(data)
			continue
		}
		out, consumed := f.Step(data)
		if consumed < len(data) {
			p.backup[i] = append([]byte{}, data[consumed:]...)
		}
		data = out
	}
	return data
}

// Reset resets every filter in insertion order and discards all pending
// back-up bytes.
func (p *Pipeline) Reset() {
	for i, f := range p.filters {
		f.Reset()
		p.backup[i] = nil
	}
	p.eosSent = false
}

// Copy returns a Pipeline with independently-copied filters and its own
// copy of any pending back-up bytes.
func (p *Pipeline) Copy() *Pipeline {
	cp := &Pipeline{
		filters: make([]Filter, len(p.filters)),
		backup:  make([][]byte, len(p.filters)),
	}
	for i, f := range p.filters {
		cp.filters[i] = f.Copy()
		if len(p.backup[i]) > 0 {
			cp.backup[i] = append([]byte{}, p.backup[i]...)
		}
	}
	return cp
}

// ReverseApply runs the chain in reverse order — used for the write-side
// direction of a FilterStream.
func (p *Pipeline) ReverseApply(input []byte, eos bool) []byte {
	data := input
	for i := len(p.filters) - 1; i >= 0; i-- {
		f := p.filters[i]
		if len(p.backup[i]) > 0 {
			data = append(append([]byte{}, p.backup[i]...), data...)
			p.backup[i] = nil
		}
		if eos {
			data = f.Flush(data)
			continue
		}
		out, consumed := f.Step(data)
		if consumed < len(data) {
			p.backup[i] = append([]byte{}, data[consumed:]...)
		}
		data = out
	}
	return data
}
