package stream

import (
	"fmt"
	"io"

	"github.com/mailchannels/gomime/gmerr"
)

// Cat presents a sequence of streams as one virtual concatenation,
// seeking through an offset table built from each child's Length.
// Reset/Seek fail with
// gmerr.ErrNotSeekable unless every child stream supports seeking.
type Cat struct {
	base
	children []Stream
	offsets  []int64 // offsets[i] = absolute start of children[i]
	cur      int      // index of the child the cursor is logically in
	seekable bool
}

// NewCat concatenates children in order. Returns an error if any child
// has unknown (-1) length while not being the last one, since only the
// final child may be unbounded.
func NewCat(children ...Stream) (*Cat, error) {
	c := &Cat{children: children, seekable: true}
	var total int64
	for i, ch := range children {
		c.offsets = append(c.offsets, total)
		l := ch.Length()
		if l == Unbounded {
			if i != len(children)-1 {
				return nil, fmt.Errorf("gomime: cat: only the last child may be unbounded")
			}
			c.seekable = false
			total = Unbounded
			break
		}
		total += l
		if !canSeek(ch) {
			c.seekable = false
		}
	}
	c.base = newBase(0, total)
	return c, nil
}

func canSeek(s Stream) bool {
	_, err := s.Seek(0, SeekCur)
	return err == nil
}

func (c *Cat) locate(pos int64) (idx int, rel int64) {
	for i := len(c.offsets) - 1; i >= 0; i-- {
		if pos >= c.offsets[i] {
			return i, pos - c.offsets[i]
		}
	}
	return 0, 0
}

func (c *Cat) Read(p []byte) (int, error) {
	if c.pos >= c.effectiveEnd() && c.bounds.End != Unbounded {
		return 0, nil
	}
	idx, rel := c.locate(c.pos)
	if idx >= len(c.children) {
		return 0, nil
	}
	child := c.children[idx]
	if _, err := child.Seek(rel, SeekSet); err != nil {
		return 0, err
	}
	n, err := child.Read(p)
	c.pos += int64(n)
	if n == 0 && err == nil && idx < len(c.children)-1 {
		c.cur = idx + 1
		return c.Read(p)
	}
	return n, err
}

func (c *Cat) Write(p []byte) (int, error) {
	idx, rel := c.locate(c.pos)
	if idx >= len(c.children) {
		return 0, gmerr.ErrInvalidSeek
	}
	child := c.children[idx]
	if _, err := child.Seek(rel, SeekSet); err != nil {
		return 0, err
	}
	n, err := child.Write(p)
	c.pos += int64(n)
	c.noteWrite(c.pos)
	return n, err
}

func (c *Cat) Flush() error {
	for _, ch := range c.children {
		if err := ch.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cat) Close() error {
	var first error
	for _, ch := range c.children {
		if err := ch.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Cat) Eos() bool { return c.eos() }

func (c *Cat) Reset() error {
	if !c.seekable {
		return gmerr.ErrNotSeekable
	}
	c.pos = c.bounds.Start
	return nil
}

func (c *Cat) Seek(offset int64, whence int) (int64, error) {
	if !c.seekable {
		return 0, gmerr.ErrNotSeekable
	}
	var target int64
	switch whence {
	case SeekSet:
		target = c.bounds.Start + offset
	case SeekCur:
		target = c.pos + offset
	case SeekEnd:
		target = c.effectiveEnd() + offset
	default:
		return 0, gmerr.ErrInvalidSeek
	}
	if target < 0 {
		return 0, gmerr.ErrInvalidSeek
	}
	c.pos = c.clamp(target)
	return c.pos, nil
}

func (c *Cat) Tell() int64   { return c.tell() }
func (c *Cat) Length() int64 { return c.length() }

func (c *Cat) Substream(start, end int64) (Stream, error) {
	return nil, fmt.Errorf("gomime: cat: substream not supported")
}

func (c *Cat) SetBounds(start, end int64) { c.setBounds(start, end) }

func (c *Cat) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := c.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
}

func (c *Cat) WriteString(s string) (int, error) { return c.Write([]byte(s)) }

func (c *Cat) Printf(format string, args ...interface{}) (int, error) {
	return c.Write([]byte(fmt.Sprintf(format, args...)))
}

func (c *Cat) Writev(bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		n, err := c.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

var _ Stream = (*Cat)(nil)
