package stream

import (
	"fmt"
	"io"

	"github.com/mailchannels/gomime/gmerr"
)

// Memory is a growable in-memory Stream, backed by a byte slice. Length
// is always defined.
type Memory struct {
	base
	buf    []byte
	closed bool
}

// NewMemory creates an empty, unbounded Memory stream.
func NewMemory() *Memory {
	return &Memory{base: newBase(0, Unbounded)}
}

// NewMemoryFromBytes creates a Memory stream seeded with data. The slice
// is not copied; callers must not mutate it concurrently with the stream.
func NewMemoryFromBytes(data []byte) *Memory {
	m := &Memory{base: newBase(0, int64(len(data))), buf: data}
	m.noteWrite(int64(len(data)))
	return m
}

func (m *Memory) Read(p []byte) (int, error) {
	if m.closed {
		return 0, gmerr.ErrClosed
	}
	end := m.effectiveEnd()
	if m.pos >= end || int64(len(m.buf)) <= m.pos {
		return 0, nil
	}
	avail := end - m.pos
	if avail > int64(len(m.buf))-m.pos {
		avail = int64(len(m.buf)) - m.pos
	}
	if avail <= 0 {
		return 0, nil
	}
	if int64(len(p)) < avail {
		avail = int64(len(p))
	}
	n := copy(p, m.buf[m.pos:m.pos+avail])
	m.pos += int64(n)
	return n, nil
}

func (m *Memory) Write(p []byte) (int, error) {
	if m.closed {
		return 0, gmerr.ErrClosed
	}
	needed := m.pos + int64(len(p))
	if needed > int64(len(m.buf)) {
		grown := make([]byte, needed)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += int64(n)
	m.noteWrite(m.pos)
	return n, nil
}

func (m *Memory) Flush() error { return nil }

func (m *Memory) Close() error {
	m.closed = true
	return nil
}

func (m *Memory) Eos() bool { return m.eos() }

func (m *Memory) Reset() error {
	m.pos = m.bounds.Start
	return nil
}

func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case SeekSet:
		target = m.bounds.Start + offset
	case SeekCur:
		target = m.pos + offset
	case SeekEnd:
		target = m.effectiveEnd() + offset
	default:
		return 0, gmerr.ErrInvalidSeek
	}
	if target < 0 {
		return 0, gmerr.ErrInvalidSeek
	}
	m.pos = m.clamp(target)
	return m.pos, nil
}

func (m *Memory) Tell() int64 { return m.tell() }
func (m *Memory) Length() int64 {
	if l := m.length(); l != Unbounded {
		return l
	}
	return 0
}

func (m *Memory) Substream(start, end int64) (Stream, error) {
	if end != Unbounded && end < start {
		return nil, gmerr.ErrInvalidSeek
	}
	return &Memory{base: newBase(start, end), buf: m.buf}, nil
}

func (m *Memory) SetBounds(start, end int64) { m.setBounds(start, end) }

func (m *Memory) WriteTo(w io.Writer) (int64, error) {
	end := m.effectiveEnd()
	if end > int64(len(m.buf)) {
		end = int64(len(m.buf))
	}
	if m.pos >= end {
		return 0, nil
	}
	n, err := w.Write(m.buf[m.pos:end])
	m.pos += int64(n)
	return int64(n), err
}

func (m *Memory) WriteString(s string) (int, error) { return m.Write([]byte(s)) }

func (m *Memory) Printf(format string, args ...interface{}) (int, error) {
	return m.Write([]byte(fmt.Sprintf(format, args...)))
}

func (m *Memory) Writev(bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		n, err := m.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the portion of the underlying buffer within the current
// bounds, without copying.
func (m *Memory) Bytes() []byte {
	end := m.effectiveEnd()
	if end > int64(len(m.buf)) {
		end = int64(len(m.buf))
	}
	if m.bounds.Start >= end {
		return nil
	}
	return m.buf[m.bounds.Start:end]
}

var _ Stream = (*Memory)(nil)
