package stream

import (
	"fmt"
	"io"

	"github.com/mailchannels/gomime/gmerr"
)

// Null is a sink stream: it counts bytes written and discards their
// content, and returns EOS on every read.
type Null struct {
	base
}

// NewNull returns a new Null sink stream.
func NewNull() *Null {
	return &Null{base: newBase(0, Unbounded)}
}

func (n *Null) Read(p []byte) (int, error) { return 0, nil }

func (n *Null) Write(p []byte) (int, error) {
	n.pos += int64(len(p))
	n.noteWrite(n.pos)
	return len(p), nil
}

func (n *Null) Flush() error { return nil }
func (n *Null) Close() error { return nil }
func (n *Null) Eos() bool    { return true }

func (n *Null) Reset() error {
	n.pos = n.bounds.Start
	return nil
}

func (n *Null) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case SeekSet:
		n.pos = n.clamp(offset)
	case SeekCur:
		n.pos = n.clamp(n.pos + offset)
	case SeekEnd:
		n.pos = n.clamp(n.effectiveEnd() + offset)
	default:
		return 0, gmerr.ErrInvalidSeek
	}
	return n.pos, nil
}

func (n *Null) Tell() int64   { return n.tell() }
func (n *Null) Length() int64 { return n.length() }

func (n *Null) Substream(start, end int64) (Stream, error) {
	return &Null{base: newBase(start, end)}, nil
}

func (n *Null) SetBounds(start, end int64) { n.setBounds(start, end) }

func (n *Null) WriteTo(w io.Writer) (int64, error) { return 0, nil }

func (n *Null) WriteString(s string) (int, error) { return n.Write([]byte(s)) }

func (n *Null) Printf(format string, args ...interface{}) (int, error) {
	return n.Write([]byte(fmt.Sprintf(format, args...)))
}

func (n *Null) Writev(bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		total += int64(len(b))
	}
	n.pos += total
	n.noteWrite(n.pos)
	return total, nil
}

var _ Stream = (*Null)(nil)
