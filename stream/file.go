package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mailchannels/gomime/gmerr"
)

// File wraps a buffered *os.File, the way go-guerrilla's mail.reader.go
// layers bufio.Reader + textproto.Reader over a descriptor. The "owns"
// flag controls whether Close() closes the underlying *os.File — set it
// false when a caller hands in a file they intend to manage themselves.
type File struct {
	base
	f      *os.File
	br     *bufio.Reader
	bw     *bufio.Writer
	owns   bool
	closed bool
}

// OpenFile opens path for reading and writing (creating it if absent) and
// returns a File stream that owns the descriptor.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("gomime: open file: %w", err)
	}
	return NewFile(f, true), nil
}

// NewFile wraps an already-open *os.File. owns controls whether Close
// closes f.
func NewFile(f *os.File, owns bool) *File {
	fs := &File{f: f, owns: owns, base: newBase(0, Unbounded)}
	fs.br = bufio.NewReader(f)
	fs.bw = bufio.NewWriter(f)
	if info, err := f.Stat(); err == nil {
		fs.bounds.End = Unbounded
		fs.maxWritten = info.Size()
	}
	return fs
}

func (s *File) Read(p []byte) (int, error) {
	if s.closed {
		return 0, gmerr.ErrClosed
	}
	end := s.effectiveEnd()
	if s.pos >= end {
		return 0, nil
	}
	max := end - s.pos
	if int64(len(p)) > max {
		p = p[:max]
	}
	n, err := s.br.Read(p)
	s.pos += int64(n)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (s *File) Write(p []byte) (int, error) {
	if s.closed {
		return 0, gmerr.ErrClosed
	}
	n, err := s.bw.Write(p)
	s.pos += int64(n)
	s.noteWrite(s.pos)
	return n, err
}

func (s *File) Flush() error {
	if err := s.bw.Flush(); err != nil {
		return fmt.Errorf("gomime: flush: %w", err)
	}
	return nil
}

func (s *File) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.Flush(); err != nil {
		return err
	}
	if s.owns {
		return s.f.Close()
	}
	return nil
}

func (s *File) Eos() bool { return s.eos() }

func (s *File) Reset() error {
	_, err := s.Seek(0, SeekSet)
	return err
}

func (s *File) Seek(offset int64, whence int) (int64, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case SeekSet:
		target = s.bounds.Start + offset
	case SeekCur:
		target = s.pos + offset
	case SeekEnd:
		if info, err := s.f.Stat(); err == nil {
			target = info.Size() + offset
		} else {
			target = s.effectiveEnd() + offset
		}
	default:
		return 0, gmerr.ErrInvalidSeek
	}
	if target < 0 {
		return 0, gmerr.ErrInvalidSeek
	}
	target = s.clamp(target)
	if _, err := s.f.Seek(target, io.SeekStart); err != nil {
		return 0, fmt.Errorf("gomime: seek: %w", err)
	}
	s.br.Reset(s.f)
	s.pos = target
	return target, nil
}

func (s *File) Tell() int64   { return s.tell() }
func (s *File) Length() int64 { return s.length() }

func (s *File) Substream(start, end int64) (Stream, error) {
	if end != Unbounded && end < start {
		return nil, gmerr.ErrInvalidSeek
	}
	sub := &File{f: s.f, owns: false, base: newBase(start, end)}
	sub.br = bufio.NewReader(s.f)
	sub.bw = s.bw
	return sub, nil
}

func (s *File) SetBounds(start, end int64) { s.setBounds(start, end) }

func (s *File) WriteTo(w io.Writer) (int64, error) {
	end := s.effectiveEnd()
	var total int64
	buf := make([]byte, 32*1024)
	for s.pos < end {
		max := end - s.pos
		if int64(len(buf)) < max {
			max = int64(len(buf))
		}
		n, err := s.br.Read(buf[:max])
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			s.pos += int64(n)
			if werr != nil {
				return total, werr
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return total, err
		}
	}
	return total, nil
}

func (s *File) WriteString(str string) (int, error) { return s.Write([]byte(str)) }

func (s *File) Printf(format string, args ...interface{}) (int, error) {
	return s.Write([]byte(fmt.Sprintf(format, args...)))
}

func (s *File) Writev(bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		n, err := s.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

var _ Stream = (*File)(nil)
