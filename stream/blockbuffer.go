package stream

import (
	"fmt"
	"io"
)

// BlockBuffer wraps an underlying Stream with a fixed block size,
// exposing explicit BlockRead/BlockWrite modes in addition to the normal
// byte-oriented Read/Write.
type BlockBuffer struct {
	Stream
	blockSize int
}

// NewBlockBuffer wraps underlying with the given block size (bytes).
func NewBlockBuffer(underlying Stream, blockSize int) *BlockBuffer {
	if blockSize <= 0 {
		blockSize = 4096
	}
	return &BlockBuffer{Stream: underlying, blockSize: blockSize}
}

// BlockRead reads exactly one block (or fewer at EOS), returning the
// slice actually filled.
func (b *BlockBuffer) BlockRead() ([]byte, error) {
	buf := make([]byte, b.blockSize)
	n, err := b.Read(buf)
	return buf[:n], err
}

// BlockWrite writes data out in blockSize-sized chunks.
func (b *BlockBuffer) BlockWrite(data []byte) (int, error) {
	var total int
	for len(data) > 0 {
		n := b.blockSize
		if n > len(data) {
			n = len(data)
		}
		wn, err := b.Write(data[:n])
		total += wn
		if err != nil {
			return total, err
		}
		data = data[n:]
	}
	return total, nil
}

func (b *BlockBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		chunk, err := b.BlockRead()
		if len(chunk) > 0 {
			n, werr := w.Write(chunk)
			total += int64(n)
			if werr != nil {
				return total, werr
			}
		}
		if err != nil {
			return total, err
		}
		if len(chunk) == 0 {
			return total, nil
		}
	}
}

func (b *BlockBuffer) Printf(format string, args ...interface{}) (int, error) {
	return b.Write([]byte(fmt.Sprintf(format, args...)))
}
