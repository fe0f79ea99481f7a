package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression identifies how an encoded document body is stored. The tag
// is the first byte of every encoded document.
type Compression uint8

const (
	// CompressionNone stores the CBOR body as is. Used for tiny documents
	// where zstd framing would make the output larger.
	CompressionNone Compression = 0

	// CompressionZstd stores the CBOR body zstd-compressed.
	CompressionZstd Compression = 2
)

// String returns the name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns data prefixed with its compression tag, choosing zstd
// only when it makes the body smaller.
func compress(data []byte) []byte {
	compressed := zstdEncoder.EncodeAll(data, make([]byte, 1, len(data)/2+1))
	if len(compressed)-1 < len(data) {
		compressed[0] = byte(CompressionZstd)
		return compressed
	}
	out := make([]byte, 1+len(data))
	out[0] = byte(CompressionNone)
	copy(out[1:], data)
	return out
}

func decompress(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, ErrEmpty
	}
	switch tag := Compression(blob[0]); tag {
	case CompressionNone:
		return blob[1:], nil
	case CompressionZstd:
		data, err := zstdDecoder.DecodeAll(blob[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, tag)
	}
}
