package lineproto_test

import (
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailchannels/gomime/filter"
	"github.com/mailchannels/gomime/lineproto"
)

func TestMD5FilterMatchesStdlibSum(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	m := lineproto.NewMD5Filter()
	p := filter.NewPipeline(m)
	out := p.Apply(data, true)

	assert.Equal(t, data, out, "MD5Filter is pass-through")
	assert.Equal(t, md5.Sum(data), m.Sum())
}

func TestMD5FilterAccumulatesAcrossSteps(t *testing.T) {
	m := lineproto.NewMD5Filter()
	m.Step([]byte("hello "))
	m.Step([]byte("world"))
	m.Flush(nil)
	assert.Equal(t, md5.Sum([]byte("hello world")), m.Sum())
}

func TestMD5FilterResetClearsDigest(t *testing.T) {
	m := lineproto.NewMD5Filter()
	m.Step([]byte("garbage"))
	m.Reset()
	m.Flush([]byte("clean"))
	assert.Equal(t, md5.Sum([]byte("clean")), m.Sum())
}
