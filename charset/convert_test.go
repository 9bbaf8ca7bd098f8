package charset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/charset"
)

func TestAliasResolvesCommonVariants(t *testing.T) {
	assert.Equal(t, "iso-8859-1", charset.Alias("latin1"))
	assert.Equal(t, "us-ascii", charset.Alias("ASCII"))
	assert.Equal(t, "shift-jis", charset.Alias("SJIS"))
}

func TestAliasPassesThroughUnknownLowercased(t *testing.T) {
	assert.Equal(t, "something-weird", charset.Alias("Something-Weird"))
}

func TestOpenTextISO88591RoundTrip(t *testing.T) {
	conv, err := charset.OpenText("iso-8859-1")
	require.NoError(t, err)
	defer conv.Close()

	out, err := conv.Convert([]byte{0xE9}) // é in Latin-1
	require.NoError(t, err)
	assert.Equal(t, "é", string(out))
}

func TestOpenReturnsConverterForKnownCharset(t *testing.T) {
	conv, err := charset.Open("utf-8")
	if err == nil {
		defer conv.Close()
		out, cerr := conv.Convert([]byte("hello"))
		require.NoError(t, cerr)
		assert.Equal(t, "hello", string(out))
	}
}
