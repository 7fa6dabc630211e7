package felt

import (
	"golang.org/x/crypto/sha3"
)

// Selector returns the starknet keccak of name: keccak256 truncated to 250 bits.
// Used for entry point selectors and event keys.
func Selector(name string) Felt {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	sum := h.Sum(nil)
	sum[0] &= 0x03
	var f Felt
	f.v.SetBytes(sum)
	return f
}
