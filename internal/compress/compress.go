// Package compress frames byte blocks with an optional LZ4 or ZSTD payload.
//
// Block format: [Type uint8][UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 means Data is stored raw.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies the compression algorithm of a block.
type Type uint8

const (
	// None stores blocks raw.
	None Type = 0
	// LZ4 is fast and suited to hot data.
	LZ4 Type = 1
	// ZSTD has the better ratio.
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ErrCorrupt is returned when a block header or payload is inconsistent.
var ErrCorrupt = errors.New("compress: corrupt block")

const headerSize = 9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode frames data as a block of type t. If compression does not save at
// least 10% the payload is stored raw.
func Encode(data []byte, t Type) ([]byte, error) {
	var compressed []byte
	var err error

	switch t {
	case None:
	case LZ4:
		compressed, err = encodeLZ4(data)
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("compress: unsupported type %v", t)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, headerSize+len(data))
		putHeader(out, t, len(data), 0)
		copy(out[headerSize:], data)
		return out, nil
	}

	out := make([]byte, headerSize+len(compressed))
	putHeader(out, t, len(data), len(compressed))
	copy(out[headerSize:], compressed)
	return out, nil
}

func putHeader(dst []byte, t Type, uncompressed, compressed int) {
	dst[0] = byte(t)
	binary.LittleEndian.PutUint32(dst[1:], uint32(uncompressed))
	binary.LittleEndian.PutUint32(dst[5:], uint32(compressed))
}

func encodeLZ4(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	// n == 0 means incompressible.
	return buf[:n], nil
}

// Decode returns the payload of a block produced by Encode.
func Decode(block []byte) ([]byte, error) {
	if len(block) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(block))
	}

	t := Type(block[0])
	uncompressed := binary.LittleEndian.Uint32(block[1:])
	compressed := binary.LittleEndian.Uint32(block[5:])
	body := block[headerSize:]

	if compressed == 0 {
		if uint32(len(body)) < uncompressed {
			return nil, fmt.Errorf("%w: raw payload truncated", ErrCorrupt)
		}
		return body[:uncompressed], nil
	}
	if uint32(len(body)) < compressed {
		return nil, fmt.Errorf("%w: compressed payload truncated", ErrCorrupt)
	}
	body = body[:compressed]
	out := make([]byte, uncompressed)

	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != uncompressed {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(body, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != uncompressed {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %v", ErrCorrupt, t)
	}
}
