package felt

import (
	"fmt"

	"github.com/pkg/errors"
)

// ChunkSize is the number of bytes packed per felt. 31 bytes is 248 bits, three bits
// under the 251 bit modulus, so any chunk value is a valid field element.
const ChunkSize = 31

var ErrMalformedFelts = errors.New("malformed felt encoded bytes")

// ChunkOverflowError means a chunk did not fit in the field. It should be unreachable
// and indicates a codec bug.
type ChunkOverflowError struct {
	Index int
	Err   error
}

func (e *ChunkOverflowError) Error() string {
	return fmt.Sprintf("chunk %d overflows the field modulus: %v", e.Index, e.Err)
}

func (e *ChunkOverflowError) Unwrap() error { return e.Err }

// BytesToFelts encodes data as [len(data), chunk_0, ..., chunk_k]. Each chunk holds
// ChunkSize big-endian bytes; the last one holds whatever remains.
func BytesToFelts(data []byte) ([]Felt, error) {
	felts := make([]Felt, 0, 1+(len(data)+ChunkSize-1)/ChunkSize)
	felts = append(felts, New(uint64(len(data))))
	for i := 0; i < len(data); i += ChunkSize {
		end := i + ChunkSize
		if end > len(data) {
			end = len(data)
		}
		f, err := FromBytes(data[i:end])
		if err != nil {
			return nil, &ChunkOverflowError{Index: i / ChunkSize, Err: err}
		}
		felts = append(felts, f)
	}
	return felts, nil
}

// BytesFromFelts reverses BytesToFelts. Every chunk is restored to its full slot width,
// which keeps leading zero bytes intact.
func BytesFromFelts(felts []Felt) ([]byte, error) {
	if len(felts) == 0 {
		return nil, errors.Wrap(ErrMalformedFelts, "missing length prefix")
	}
	length, ok := felts[0].Uint64()
	if !ok {
		return nil, errors.Wrapf(ErrMalformedFelts, "length prefix %s does not fit in 64 bits", felts[0])
	}
	chunks := felts[1:]
	if length > uint64(len(chunks))*ChunkSize {
		return nil, errors.Wrapf(ErrMalformedFelts, "length %d exceeds the %d bytes held by %d chunks", length, len(chunks)*ChunkSize, len(chunks))
	}
	if want := (length + ChunkSize - 1) / ChunkSize; uint64(len(chunks)) != want {
		return nil, errors.Wrapf(ErrMalformedFelts, "length %d needs %d chunks, got %d", length, want, len(chunks))
	}

	out := make([]byte, 0, length)
	remaining := int(length)
	for i, c := range chunks {
		width := ChunkSize
		if remaining < width {
			width = remaining
		}
		raw := c.Bytes()
		if len(raw) > width {
			return nil, errors.Wrapf(ErrMalformedFelts, "chunk %d is %d bytes wide, slot holds %d", i, len(raw), width)
		}
		chunk := make([]byte, width)
		copy(chunk[width-len(raw):], raw)
		out = append(out, chunk...)
		remaining -= width
	}
	return out, nil
}
