package stream

import (
	"fmt"
	"io"

	"github.com/mailchannels/gomime/filter"
)

// FilterStream wraps an underlying Stream with a filter.Pipeline: reads
// pull raw bytes from the backing stream and push them through the
// pipeline in read order; writes push the caller's bytes through the
// pipeline in reverse order before handing them to the backing stream.
type FilterStream struct {
	base
	backing  Stream
	pipeline *filter.Pipeline
	pending  []byte // filtered bytes produced but not yet consumed by Read
	readEOS  bool
	rawBuf   []byte
}

// NewFilterStream attaches pipeline to backing.
func NewFilterStream(backing Stream, pipeline *filter.Pipeline) *FilterStream {
	return &FilterStream{
		backing:  backing,
		pipeline: pipeline,
		base:     newBase(0, Unbounded),
		rawBuf:   make([]byte, 8192),
	}
}

func (fs *FilterStream) Read(p []byte) (int, error) {
	for len(fs.pending) == 0 && !fs.readEOS {
		n, err := fs.backing.Read(fs.rawBuf)
		if n > 0 {
			fs.pending = fs.pipeline.Apply(fs.rawBuf[:n], false)
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			fs.readEOS = true
			fs.pending = append(fs.pending, fs.pipeline.Apply(nil, true)...)
		}
	}
	n := copy(p, fs.pending)
	fs.pending = fs.pending[n:]
	fs.pos += int64(n)
	return n, nil
}

func (fs *FilterStream) Write(p []byte) (int, error) {
	out := fs.pipeline.ReverseApply(p, false)
	if len(out) > 0 {
		if _, err := fs.backing.Write(out); err != nil {
			return 0, err
		}
	}
	fs.pos += int64(len(p))
	fs.noteWrite(fs.pos)
	return len(p), nil
}

func (fs *FilterStream) Flush() error {
	out := fs.pipeline.ReverseApply(nil, true)
	if len(out) > 0 {
		if _, err := fs.backing.Write(out); err != nil {
			return err
		}
	}
	return fs.backing.Flush()
}

func (fs *FilterStream) Close() error {
	if err := fs.Flush(); err != nil {
		return err
	}
	return fs.backing.Close()
}

func (fs *FilterStream) Eos() bool {
	return fs.readEOS && len(fs.pending) == 0
}

// Reset rewinds the backing stream and resets the pipeline's filter
// state and back-up buffers.
func (fs *FilterStream) Reset() error {
	if err := fs.backing.Reset(); err != nil {
		return err
	}
	fs.pipeline.Reset()
	fs.pending = nil
	fs.readEOS = false
	fs.pos = fs.bounds.Start
	return nil
}

func (fs *FilterStream) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("gomime: FilterStream does not support arbitrary seek, only Reset")
}

func (fs *FilterStream) Tell() int64   { return fs.tell() }
func (fs *FilterStream) Length() int64 { return Unbounded }

func (fs *FilterStream) Substream(start, end int64) (Stream, error) {
	return nil, fmt.Errorf("gomime: FilterStream does not support substreams")
}

func (fs *FilterStream) SetBounds(start, end int64) { fs.setBounds(start, end) }

func (fs *FilterStream) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := fs.Read(buf)
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
		if n == 0 && fs.Eos() {
			return total, nil
		}
	}
}

func (fs *FilterStream) WriteString(s string) (int, error) { return fs.Write([]byte(s)) }

func (fs *FilterStream) Printf(format string, args ...interface{}) (int, error) {
	return fs.Write([]byte(fmt.Sprintf(format, args...)))
}

func (fs *FilterStream) Writev(bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		n, err := fs.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

var _ Stream = (*FilterStream)(nil)
