package setconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/diff"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

var (
	ErrReceiptNotFound  = errors.New("transaction receipt not found")
	ErrReviewRejected   = errors.New("config update rejected during review")
	ErrInvalidState     = errors.New("step not allowed in current state")
	ErrUpdateInProgress = errors.New("another config update is in flight for this contract")
)

// ChainTimeoutError means no receipt arrived in time. The transaction may still land.
type ChainTimeoutError struct {
	TxHash felt.Felt
	Waited time.Duration
}

func (e *ChainTimeoutError) Error() string {
	return fmt.Sprintf("no receipt for tx %s after %s; it may still be included", e.TxHash, e.Waited)
}

// VerificationMismatchError describes how the on-chain config differs from the
// intended one. It is reported in Result, not returned.
type VerificationMismatchError struct {
	Expected offchainconfig.OffchainConfig
	Actual   offchainconfig.OffchainConfig
	Delta    diff.Delta
	// Pretty is a field by field rendering of Expected against Actual.
	Pretty string
	// Reasons lists mismatches outside the offchain config, such as the roster or f.
	Reasons []string
}

func (e *VerificationMismatchError) Error() string {
	parts := append([]string(nil), e.Reasons...)
	for _, c := range e.Delta {
		parts = append(parts, c.String())
	}
	return "on-chain config does not match intended config: " + strings.Join(parts, "; ")
}
