package cltest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/chainlink-starknet/pkg/internal/utils"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
)

// Chain Specific Test utils

// Secret is the deployment secret used across tests.
var Secret = []byte("awe accuse polygon tonic depart acuity onyx inform bound gilbert expire")

// Oracles returns n oracles with random signer and transmitter addresses.
func Oracles(n int) []codec.Oracle {
	out := make([]codec.Oracle, n)
	for i := range out {
		out[i] = codec.Oracle{Signer: utils.NewFelt(), Transmitter: utils.NewFelt()}
	}
	return out
}

// Request returns a valid update for a fresh contract with n oracles tolerating f faults.
func Request(t *testing.T, n int, f uint8) setconfig.Request {
	cfg := offchainconfig.Fixture(n)
	require.NoError(t, cfg.Validate())
	return setconfig.Request{
		Contract: utils.NewFelt(),
		Oracles:  Oracles(n),
		F:        f,
		Config:   cfg,
		Secret:   Secret,
	}
}
