package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/codec"
	"github.com/mailchannels/gomime/filter"
)

// splitFeedFilter is a minimal Filter that only consumes input in pairs
// of bytes, backing up a lone trailing byte — used to exercise the
// Pipeline's back-up bookkeeping independent of any real codec.
type splitFeedFilter struct{ out []byte }

func (f *splitFeedFilter) Step(input []byte) ([]byte, int) {
	usable := len(input) - len(input)%2
	f.out = f.out[:0]
	f.out = append(f.out, input[:usable]...)
	return f.out, usable
}

func (f *splitFeedFilter) Flush(input []byte) []byte {
	return append([]byte{}, input...)
}

func (f *splitFeedFilter) Reset()            { f.out = nil }
func (f *splitFeedFilter) Copy() filter.Filter { return &splitFeedFilter{} }

func TestPipelineBacksUpUnconsumedSuffix(t *testing.T) {
	p := filter.NewPipeline(&splitFeedFilter{})

	out1 := p.Apply([]byte("a"), false)
	assert.Empty(t, out1, "a lone byte should be backed up, not emitted")

	out2 := p.Apply([]byte("bc"), false)
	assert.Equal(t, "ab", string(out2), "the backed-up 'a' rejoins 'bc' and the pair 'ab' is consumed")

	out3 := p.Apply(nil, true)
	assert.Equal(t, "c", string(out3))
}

// TestPipelineConcatenationLaw checks that feeding a base64 encode in
// arbitrary chunks and concatenating every chunk's output equals feeding
// it all at once.
func TestPipelineConcatenationLaw(t *testing.T) {
	input := []byte("Many hands make light work, this time split weirdly across calls.")

	whole := filter.NewPipeline(codec.NewBase64EncodeFilter())
	wholeOut := whole.Apply(input, false)
	wholeOut = append(wholeOut, whole.Apply(nil, true)...)

	split := filter.NewPipeline(codec.NewBase64EncodeFilter())
	var splitOut []byte
	for i := 0; i < len(input); i += 3 {
		end := i + 3
		if end > len(input) {
			end = len(input)
		}
		splitOut = append(splitOut, split.Apply(input[i:end], false)...)
	}
	splitOut = append(splitOut, split.Apply(nil, true)...)

	require.Equal(t, string(wholeOut), string(splitOut))
}

func TestPipelineResetClearsBackup(t *testing.T) {
	p := filter.NewPipeline(&splitFeedFilter{})
	p.Apply([]byte("x"), false)
	p.Reset()
	out := p.Apply([]byte("yz"), false)
	assert.Equal(t, "yz", string(out), "reset must drop the pending back-up byte from before it")
}

func TestPipelineCopyIsIndependent(t *testing.T) {
	p1 := filter.NewPipeline(codec.NewBase64EncodeFilter())
	p1.Apply([]byte("ab"), false) // both bytes are backed up in the pipeline

	p2 := p1.Copy()
	out1 := p1.Apply(nil, true)
	out2 := p2.Apply(nil, true)
	assert.Equal(t, out1, out2, "a copy taken mid-stream must finish identically")
}
