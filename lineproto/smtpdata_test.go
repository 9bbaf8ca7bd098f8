package lineproto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailchannels/gomime/filter"
	"github.com/mailchannels/gomime/lineproto"
)

func TestDotStuffDoublesLeadingDot(t *testing.T) {
	f := filter.NewPipeline(lineproto.NewDotStuffFilter(lineproto.DotStuff))
	out := f.Apply([]byte(".hidden\r\nnormal\r\n..already\r\n"), true)
	assert.Equal(t, "..hidden\r\nnormal\r\n...already\r\n", string(out))
}

func TestDotUnstuffRemovesOneLeadingDot(t *testing.T) {
	f := filter.NewPipeline(lineproto.NewDotStuffFilter(lineproto.DotUnstuff))
	out := f.Apply([]byte("..hidden\r\nnormal\r\n...already\r\n"), true)
	assert.Equal(t, ".hidden\r\nnormal\r\n..already\r\n", string(out))
}

func TestDotStuffLeavesInteriorDotsAlone(t *testing.T) {
	f := filter.NewPipeline(lineproto.NewDotStuffFilter(lineproto.DotStuff))
	out := f.Apply([]byte("a.b.c\r\n"), true)
	assert.Equal(t, "a.b.c\r\n", string(out))
}

func TestFindDataTerminator(t *testing.T) {
	buf := []byte("HELO\r\nMAIL FROM:<a@b>\r\n\r\n.\r\n")
	idx := lineproto.FindDataTerminator(buf)
	assert.NotEqual(t, -1, idx)
	assert.Equal(t, buf[idx:idx+5], []byte(lineproto.DataTerminator))
}

func TestFindDataTerminatorAbsent(t *testing.T) {
	assert.Equal(t, -1, lineproto.FindDataTerminator([]byte("no terminator here")))
}
