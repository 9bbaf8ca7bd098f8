package charset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailchannels/gomime/charset"
)

func TestNextCharASCII(t *testing.T) {
	r, n := charset.NextChar([]byte("A"))
	assert.Equal(t, 'A', r)
	assert.Equal(t, 1, n)
}

func TestNextCharMultiByte(t *testing.T) {
	r, n := charset.NextChar([]byte("é"))
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, n)
}

func TestNextCharInvalidContinuationReturnsReplacement(t *testing.T) {
	r, n := charset.NextChar([]byte{0xC2, 0x20})
	assert.Equal(t, rune(0xFFFD), r)
	assert.Equal(t, 1, n)
}

func TestNextCharRejectsSurrogates(t *testing.T) {
	// 0xED 0xA0 0x80 encodes U+D800, a surrogate: invalid in UTF-8.
	r, n := charset.NextChar([]byte{0xED, 0xA0, 0x80})
	assert.Equal(t, rune(0xFFFD), r)
	assert.Equal(t, 1, n)
}

func TestValidAcceptsWellFormedText(t *testing.T) {
	assert.True(t, charset.Valid([]byte("hello, 世界")))
}

func TestValidRejectsTruncatedSequence(t *testing.T) {
	assert.False(t, charset.Valid([]byte{0xE4, 0xB8}))
}
