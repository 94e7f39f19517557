package encoding

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Run-length wire scheme for chunk block grids: a sequence of
// (value:u8, count:u8) pairs in flat index order. A run longer than 255
// splits into consecutive (value,255) pairs plus a final remainder pair.
// Counts are never 0 and never exceed 255.

const maxRun = 255

// ErrVolumeMismatch marks a decoded stream whose counts do not sum to the
// expected chunk volume. Such a chunk must be rejected, not truncated or
// padded.
var ErrVolumeMismatch = errors.New("rle: count sum does not match chunk volume")

// ErrTruncatedPair marks a stream with a trailing value byte and no count.
var ErrTruncatedPair = errors.New("rle: truncated pair")

// EncodeRLE encodes a block array into run-length pairs.
func EncodeRLE(blocks []byte) []byte {
	out := make([]byte, 0, 256)
	i := 0
	for i < len(blocks) {
		v := blocks[i]
		run := 1
		for i+run < len(blocks) && blocks[i+run] == v {
			run++
		}
		i += run
		for run > maxRun {
			out = append(out, v, maxRun)
			run -= maxRun
		}
		out = append(out, v, byte(run))
	}
	return out
}

// DecodeRLE expands run-length pairs into exactly volume blocks. A stream
// whose counts sum to anything else is a protocol error.
func DecodeRLE(data []byte, volume int) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedPair, len(data))
	}
	out := make([]byte, 0, volume)
	for i := 0; i < len(data); i += 2 {
		v, n := data[i], int(data[i+1])
		if n == 0 {
			return nil, fmt.Errorf("rle: zero-length run at pair %d", i/2)
		}
		if len(out)+n > volume {
			return nil, fmt.Errorf("%w: overflow at pair %d", ErrVolumeMismatch, i/2)
		}
		for k := 0; k < n; k++ {
			out = append(out, v)
		}
	}
	if len(out) != volume {
		return nil, fmt.Errorf("%w: got %d want %d", ErrVolumeMismatch, len(out), volume)
	}
	return out, nil
}

// EncodeText wraps an RLE stream for the JSON wire.
func EncodeText(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeText inverts EncodeText.
func DecodeText(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
