package lineproto

import (
	"bytes"
	"compress/flate"
	"hash/crc32"
	"io"

	"github.com/mailchannels/gomime/filter"
)

// gzip member framing constants (RFC 1952). There is no ecosystem
// streaming-filter-style gzip library in the example pack (only the
// stdlib's io.Reader/io.Writer-oriented compress/gzip), so the header
// and trailer are framed by hand around stdlib compress/flate's raw
// DEFLATE implementation — see DESIGN.md for why this one component
// reaches into the standard library instead of a third-party codec.
const (
	gzipMagic1 = 0x1f
	gzipMagic2 = 0x8b
	gzipMethodDeflate = 8
)

// GzipMode selects the direction of GzipFilter.
type GzipMode int

const (
	GzipCompress GzipMode = iota
	GzipDecompress
)

// GzipFilter wraps compress/flate with a hand-rolled gzip member
// header/trailer, giving the filter.Filter Step/Flush shape the rest of
// this package's filters share instead of flate's io.Reader/io.Writer
// shape. Both directions buffer their entire input until Flush (Step
// emits nothing); for decompression this is because flate.Reader has no
// incremental "not enough input yet" signal that maps cleanly onto the
// back-up protocol. This is acceptable for MIME bodies, which are
// bounded by a part's content-length.
type GzipFilter struct {
	mode GzipMode
	buf  bytes.Buffer
	out  []byte
	crc  uint32
	size uint32
}

// NewGzipFilter returns a filter performing mode's transformation.
func NewGzipFilter(mode GzipMode) *GzipFilter {
	return &GzipFilter{mode: mode}
}

func (f *GzipFilter) Step(input []byte) (output []byte, consumed int) {
	f.buf.Write(input)
	return nil, len(input)
}

func (f *GzipFilter) Flush(input []byte) []byte {
	f.buf.Write(input)
	switch f.mode {
	case GzipCompress:
		return f.flushCompress()
	default:
		return f.flushDecompress()
	}
}

func (f *GzipFilter) flushCompress() []byte {
	raw := f.buf.Bytes()
	var out bytes.Buffer
	out.Write([]byte{gzipMagic1, gzipMagic2, gzipMethodDeflate, 0, 0, 0, 0, 0, 0, 0xff})
	fw, _ := flate.NewWriter(&out, flate.DefaultCompression)
	fw.Write(raw)
	fw.Close()
	crc := crc32.ChecksumIEEE(raw)
	var trailer [8]byte
	putLE32(trailer[0:4], crc)
	putLE32(trailer[4:8], uint32(len(raw)))
	out.Write(trailer[:])
	f.buf.Reset()
	return out.Bytes()
}

func (f *GzipFilter) flushDecompress() []byte {
	raw := f.buf.Bytes()
	f.buf.Reset()
	if len(raw) < 10 || raw[0] != gzipMagic1 || raw[1] != gzipMagic2 {
		return nil
	}
	flg := raw[3]
	i := 10
	if flg&0x04 != 0 && i+2 <= len(raw) { // FEXTRA
		xlen := int(raw[i]) | int(raw[i+1])<<8
		i += 2 + xlen
	}
	if flg&0x08 != 0 { // FNAME
		for i < len(raw) && raw[i] != 0 {
			i++
		}
		i++
	}
	if flg&0x10 != 0 { // FCOMMENT
		for i < len(raw) && raw[i] != 0 {
			i++
		}
		i++
	}
	if flg&0x02 != 0 { // FHCRC
		i += 2
	}
	if i > len(raw)-8 {
		return nil
	}
	body := raw[i : len(raw)-8]
	fr := flate.NewReader(bytes.NewReader(body))
	defer fr.Close()
	out, _ := io.ReadAll(fr)
	return out
}

func putLE32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func (f *GzipFilter) Reset() {
	f.buf.Reset()
	f.crc = 0
	f.size = 0
}

func (f *GzipFilter) Copy() filter.Filter {
	return &GzipFilter{mode: f.mode}
}
