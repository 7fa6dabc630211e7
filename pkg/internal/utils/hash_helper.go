package utils

import (
	"crypto/rand"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
)

// NewFelt returns a random non-zero felt, suitable as a contract address or tx hash.
func NewFelt() felt.Felt {
	b := make([]byte, felt.ChunkSize)
	for {
		if _, err := rand.Read(b); err != nil {
			panic(err)
		}
		// 31 bytes are always below the modulus
		f, err := felt.FromBytes(b)
		if err != nil {
			panic(err)
		}
		if !f.IsZero() {
			return f
		}
	}
}
