package codec

import (
	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
)

var ErrMalformed = errors.New("malformed felt payload")

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}

// Reader walks a flat felt payload such as calldata or event data.
type Reader struct {
	data []felt.Felt
	pos  int
}

func NewReader(data []felt.Felt) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) Next() (felt.Felt, error) {
	if r.pos >= len(r.data) {
		return felt.Felt{}, malformed("unexpected end at felt %d", r.pos)
	}
	f := r.data[r.pos]
	r.pos++
	return f, nil
}

func (r *Reader) Take(n int) ([]felt.Felt, error) {
	if n < 0 || n > r.Remaining() {
		return nil, malformed("need %d felts at %d, %d remaining", n, r.pos, r.Remaining())
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *Reader) Uint64() (uint64, error) {
	f, err := r.Next()
	if err != nil {
		return 0, err
	}
	v, ok := f.Uint64()
	if !ok {
		return 0, malformed("felt %d: %s does not fit in 64 bits", r.pos-1, f)
	}
	return v, nil
}

// Len reads a length prefix, bounded by what is left in the payload.
func (r *Reader) Len() (int, error) {
	v, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	if v > uint64(r.Remaining()) {
		return 0, malformed("length %d exceeds the %d remaining felts", v, r.Remaining())
	}
	return int(v), nil
}

// Array reads a length prefixed felt array.
func (r *Reader) Array() ([]felt.Felt, error) {
	n, err := r.Len()
	if err != nil {
		return nil, err
	}
	out, err := r.Take(n)
	if err != nil || n == 0 {
		return nil, err
	}
	return out, nil
}

func (r *Reader) Done() error {
	if r.Remaining() != 0 {
		return malformed("%d trailing felts", r.Remaining())
	}
	return nil
}
