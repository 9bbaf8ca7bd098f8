package stream

import (
	"fmt"
	"io"
	"os"

	"github.com/mailchannels/gomime/gmerr"
	"golang.org/x/sys/unix"
)

// Mmap memory-maps a file for reading and writing. Read/Write are plain
// memcpy against the mapping; Flush triggers an Msync. Grounded on the raw-descriptor style the pack's
// runZeroInc tcpinfo packages use for golang.org/x/sys/unix plumbing.
type Mmap struct {
	base
	f      *os.File
	data   []byte
	closed bool
}

// OpenMmap memory-maps path read/write. The file is resized to size if
// size > its current length.
func OpenMmap(path string, size int64) (*Mmap, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("gomime: mmap open: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	length := info.Size()
	if size > length {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, err
		}
		length = size
	}
	if length == 0 {
		length = 1
		if err := f.Truncate(length); err != nil {
			f.Close()
			return nil, err
		}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gomime: mmap: %w", err)
	}
	m := &Mmap{f: f, data: data, base: newBase(0, length)}
	m.noteWrite(length)
	return m, nil
}

func (m *Mmap) Read(p []byte) (int, error) {
	if m.closed {
		return 0, gmerr.ErrClosed
	}
	end := m.effectiveEnd()
	if m.pos >= end {
		return 0, nil
	}
	avail := end - m.pos
	if int64(len(p)) > avail {
		p = p[:avail]
	}
	n := copy(p, m.data[m.pos:m.pos+int64(len(p))])
	m.pos += int64(n)
	return n, nil
}

func (m *Mmap) Write(p []byte) (int, error) {
	if m.closed {
		return 0, gmerr.ErrClosed
	}
	end := m.effectiveEnd()
	if m.pos+int64(len(p)) > end {
		return 0, fmt.Errorf("gomime: mmap: write exceeds mapped size")
	}
	n := copy(m.data[m.pos:], p)
	m.pos += int64(n)
	m.noteWrite(m.pos)
	return n, nil
}

func (m *Mmap) Flush() error {
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("gomime: msync: %w", err)
	}
	return nil
}

func (m *Mmap) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if err := m.Flush(); err != nil {
		return err
	}
	if err := unix.Munmap(m.data); err != nil {
		return err
	}
	return m.f.Close()
}

func (m *Mmap) Eos() bool { return m.eos() }

func (m *Mmap) Reset() error {
	m.pos = m.bounds.Start
	return nil
}

func (m *Mmap) Seek(offset int64, whence int) (int64, error) {
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

func (m *Mmap) Tell() int64   { return m.tell() }
func (m *Mmap) Length() int64 { return m.length() }

func (m *Mmap) Substream(start, end int64) (Stream, error) {
	if end != Unbounded && end < start {
		return nil, gmerr.ErrInvalidSeek
	}
	return &Mmap{f: m.f, data: m.data, base: newBase(start, end)}, nil
}

func (m *Mmap) SetBounds(start, end int64) { m.setBounds(start, end) }

func (m *Mmap) WriteTo(w io.Writer) (int64, error) {
	end := m.effectiveEnd()
	if m.pos >= end {
		return 0, nil
	}
	n, err := w.Write(m.data[m.pos:end])
	m.pos += int64(n)
	return int64(n), err
}

func (m *Mmap) WriteString(s string) (int, error) { return m.Write([]byte(s)) }

func (m *Mmap) Printf(format string, args ...interface{}) (int, error) {
	return m.Write([]byte(fmt.Sprintf(format, args...)))
}

func (m *Mmap) Writev(bufs [][]byte) (int64, error) {
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

var _ Stream = (*Mmap)(nil)
