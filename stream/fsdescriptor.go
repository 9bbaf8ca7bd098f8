package stream

import (
	"fmt"
	"io"
	"syscall"

	"github.com/mailchannels/gomime/gmerr"
	"golang.org/x/sys/unix"
)

// Fs wraps a raw file descriptor, retrying read/write loops until any
// EINTR is cleared. Grounded on the
// raw-descriptor idiom used by the pack's runZeroInc-conniver/sockstats
// tcpinfo packages (github.com/higebu/netfd, golang.org/x/sys/unix).
type Fs struct {
	base
	fd     int
	owns   bool
	closed bool
}

// NewFs wraps an already-open descriptor. owns controls whether Close
// closes it.
func NewFs(fd int, owns bool) *Fs {
	return &Fs{fd: fd, owns: owns, base: newBase(0, Unbounded)}
}

func (s *Fs) Read(p []byte) (int, error) {
	if s.closed {
		return 0, gmerr.ErrClosed
	}
	for {
		n, err := unix.Read(s.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			if err == unix.EBADF {
				return 0, gmerr.ErrBadDescriptor
			}
			return 0, fmt.Errorf("%w: %v", gmerr.ErrIO, err)
		}
		s.pos += int64(n)
		return n, nil
	}
}

func (s *Fs) Write(p []byte) (int, error) {
	if s.closed {
		return 0, gmerr.ErrClosed
	}
	var total int
	for total < len(p) {
		n, err := unix.Write(s.fd, p[total:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			if err == unix.EBADF {
				return total, gmerr.ErrBadDescriptor
			}
			return total, fmt.Errorf("%w: %v", gmerr.ErrIO, err)
		}
		total += n
		s.pos += int64(n)
		s.noteWrite(s.pos)
	}
	return total, nil
}

func (s *Fs) Flush() error { return nil }

func (s *Fs) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.owns {
		return unix.Close(s.fd)
	}
	return nil
}

func (s *Fs) Eos() bool { return s.eos() }

func (s *Fs) Reset() error {
	_, err := s.Seek(s.bounds.Start, SeekSet)
	return err
}

func (s *Fs) Seek(offset int64, whence int) (int64, error) {
	var sysWhence int
	switch whence {
	case SeekSet:
		sysWhence = unix.SEEK_SET
	case SeekCur:
		sysWhence = unix.SEEK_CUR
	case SeekEnd:
		sysWhence = unix.SEEK_END
	default:
		return 0, gmerr.ErrInvalidSeek
	}
	n, err := unix.Seek(s.fd, offset, sysWhence)
	if err != nil {
		if err == syscall.ESPIPE {
			return 0, gmerr.ErrNotSeekable
		}
		return 0, gmerr.ErrInvalidSeek
	}
	s.pos = n
	return n, nil
}

func (s *Fs) Tell() int64   { return s.tell() }
func (s *Fs) Length() int64 { return s.length() }

func (s *Fs) Substream(start, end int64) (Stream, error) {
	return &Fs{fd: s.fd, owns: false, base: newBase(start, end)}, nil
}

func (s *Fs) SetBounds(start, end int64) { s.setBounds(start, end) }

func (s *Fs) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := s.Read(buf)
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

func (s *Fs) WriteString(str string) (int, error) { return s.Write([]byte(str)) }

func (s *Fs) Printf(format string, args ...interface{}) (int, error) {
	return s.Write([]byte(fmt.Sprintf(format, args...)))
}

func (s *Fs) Writev(bufs [][]byte) (int64, error) {
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

var _ Stream = (*Fs)(nil)
