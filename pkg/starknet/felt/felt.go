// Package felt implements starknet field elements and the helpers used to move
// arbitrary bytes and hex encoded keys in and out of them.
package felt

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// P = 2^251 + 17*2^192 + 1
const modulusHex = "0800000000000011000000000000000000000000000000000000000000000001"

var (
	modulus uint256.Int

	ErrOutOfRange = errors.New("value is not a valid field element")
	ErrEmpty      = errors.New("empty felt string")
)

func init() {
	raw, err := hex.DecodeString(modulusHex)
	if err != nil {
		panic(err)
	}
	modulus.SetBytes(raw)
}

// Modulus returns a copy of the field prime.
func Modulus() *big.Int {
	return modulus.ToBig()
}

// Felt is a field element. The zero value is 0. Values are always < P.
type Felt struct {
	v uint256.Int
}

func New(u uint64) Felt {
	var f Felt
	f.v.SetUint64(u)
	return f
}

// FromBytes interprets b as a big-endian integer.
func FromBytes(b []byte) (Felt, error) {
	var f Felt
	if len(b) > 32 {
		return f, errors.Wrapf(ErrOutOfRange, "%d bytes exceed 32", len(b))
	}
	f.v.SetBytes(b)
	if !f.v.Lt(&modulus) {
		return Felt{}, errors.Wrapf(ErrOutOfRange, "0x%x", b)
	}
	return f, nil
}

func FromBig(b *big.Int) (Felt, error) {
	if b == nil || b.Sign() < 0 {
		return Felt{}, errors.Wrapf(ErrOutOfRange, "%v", b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow || !v.Lt(&modulus) {
		return Felt{}, errors.Wrapf(ErrOutOfRange, "%s", b.String())
	}
	return Felt{v: *v}, nil
}

// FromHex parses a hex string with or without a 0x prefix.
func FromHex(s string) (Felt, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return Felt{}, ErrEmpty
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Felt{}, errors.Wrapf(err, "invalid hex felt %q", s)
	}
	// tolerate zero padding beyond 32 bytes
	for len(raw) > 32 && raw[0] == 0 {
		raw = raw[1:]
	}
	return FromBytes(raw)
}

// FromString accepts 0x-prefixed hex or base 10, the two forms starknet tooling emits.
func FromString(s string) (Felt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Felt{}, ErrEmpty
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return FromHex(s)
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Felt{}, errors.Errorf("invalid decimal felt %q", s)
	}
	return FromBig(b)
}

func MustFromString(s string) Felt {
	f, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Felt) Big() *big.Int {
	return f.v.ToBig()
}

func (f Felt) Bytes32() [32]byte {
	return f.v.Bytes32()
}

// Bytes returns the minimal big-endian representation (empty for zero).
func (f Felt) Bytes() []byte {
	return f.v.Bytes()
}

func (f Felt) Uint64() (uint64, bool) {
	return f.v.Uint64(), f.v.IsUint64()
}

func (f Felt) IsZero() bool {
	return f.v.IsZero()
}

func (f Felt) Cmp(o Felt) int {
	return f.v.Cmp(&o.v)
}

func (f Felt) Equal(o Felt) bool {
	return f.v.Eq(&o.v)
}

// String returns the 0x-prefixed hex form without leading zeros.
func (f Felt) String() string {
	return "0x" + f.v.ToBig().Text(16)
}

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Felt) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Strings formats a felt slice, mostly for logging and JSON output.
func Strings(fs []Felt) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.String()
	}
	return out
}
