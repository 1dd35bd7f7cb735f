package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// maxFrameSize bounds the decoded size a frame may claim
const maxFrameSize = 10 << 20

// LZ4Compressor compresses payloads with LZ4 blocks. The frame carries the
// decoded length so decompression allocates once. Incompressible payloads
// fall back to a raw frame.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string { return "lz4" }

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return rawFrame(data), nil
	}

	header := make([]byte, 1+binary.MaxVarintLen64)
	header[0] = tagLZ4
	n := 1 + binary.PutUvarint(header[1:], uint64(len(data)))

	buf := make([]byte, n+lz4.CompressBlockBound(len(data)))
	copy(buf, header[:n])

	size, err := lz4.CompressBlock(data, buf[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if size == 0 || n+size >= 1+len(data) {
		return rawFrame(data), nil
	}
	return buf[:n+size], nil
}

func (c *LZ4Compressor) Decompress(frame []byte) ([]byte, error) {
	return decode(frame)
}

func decodeLZ4(body []byte) ([]byte, error) {
	size, n := binary.Uvarint(body)
	if n <= 0 || size > maxFrameSize {
		return nil, ErrCorruptFrame
	}

	out := make([]byte, size)
	got, err := lz4.UncompressBlock(body[n:], out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if uint64(got) != size {
		return nil, fmt.Errorf("%w: decoded %d of %d bytes", ErrCorruptFrame, got, size)
	}
	return out, nil
}
