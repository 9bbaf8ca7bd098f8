package stream

import (
	"fmt"
	"io"

	"github.com/mailchannels/gomime/gmerr"
)

// Pipe wraps an io.ReadWriter that lacks Seek support — a network
// connection or os.Pipe() descriptor. Seek and Reset fail with
// gmerr.ErrNotSeekable.
type Pipe struct {
	base
	rw     io.ReadWriter
	closed bool
}

// NewPipe wraps rw as a non-seekable Stream.
func NewPipe(rw io.ReadWriter) *Pipe {
	return &Pipe{rw: rw, base: newBase(0, Unbounded)}
}

func (p *Pipe) Read(buf []byte) (int, error) {
	if p.closed {
		return 0, gmerr.ErrClosed
	}
	n, err := p.rw.Read(buf)
	p.pos += int64(n)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (p *Pipe) Write(buf []byte) (int, error) {
	if p.closed {
		return 0, gmerr.ErrClosed
	}
	n, err := p.rw.Write(buf)
	p.pos += int64(n)
	p.noteWrite(p.pos)
	return n, err
}

func (p *Pipe) Flush() error { return nil }

func (p *Pipe) Close() error {
	p.closed = true
	if c, ok := p.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Pipe) Eos() bool { return p.closed }

func (p *Pipe) Reset() error { return gmerr.ErrNotSeekable }

func (p *Pipe) Seek(offset int64, whence int) (int64, error) {
	return 0, gmerr.ErrNotSeekable
}

func (p *Pipe) Tell() int64   { return p.tell() }
func (p *Pipe) Length() int64 { return Unbounded }

func (p *Pipe) Substream(start, end int64) (Stream, error) {
	return nil, gmerr.ErrNotSeekable
}

func (p *Pipe) SetBounds(start, end int64) { p.setBounds(start, end) }

func (p *Pipe) WriteTo(w io.Writer) (int64, error) {
	n, err := io.Copy(w, p.rw)
	p.pos += n
	return n, err
}

func (p *Pipe) WriteString(s string) (int, error) { return p.Write([]byte(s)) }

func (p *Pipe) Printf(format string, args ...interface{}) (int, error) {
	return p.Write([]byte(fmt.Sprintf(format, args...)))
}

func (p *Pipe) Writev(bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		n, err := p.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

var _ Stream = (*Pipe)(nil)
