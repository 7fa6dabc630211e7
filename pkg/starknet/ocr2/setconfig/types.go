// Package setconfig runs the OCR2 set_config workflow: encode, review, submit, await
// the receipt and verify the emitted ConfigSet event against what was intended.
package setconfig

import (
	"context"
	"math/big"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/diff"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/event"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

type State string

const (
	StateIdle               State = "idle"
	StateEncoded            State = "encoded"
	StateSubmitted          State = "submitted"
	StateConfirmed          State = "confirmed"
	StateVerified           State = "verified"
	StateRejected           State = "rejected"
	StateVerificationFailed State = "verification_failed"
)

// Final reports whether no further step can run.
func (s State) Final() bool {
	return s == StateVerified || s == StateRejected || s == StateVerificationFailed
}

type TxStatus string

const (
	TxStatusNotReceived  TxStatus = "NOT_RECEIVED"
	TxStatusReceived     TxStatus = "RECEIVED"
	TxStatusPending      TxStatus = "PENDING"
	TxStatusAcceptedOnL2 TxStatus = "ACCEPTED_ON_L2"
	TxStatusAcceptedOnL1 TxStatus = "ACCEPTED_ON_L1"
	TxStatusRejected     TxStatus = "REJECTED"
)

func (s TxStatus) Accepted() bool {
	return s == TxStatusAcceptedOnL2 || s == TxStatusAcceptedOnL1
}

type Receipt struct {
	TxHash      felt.Felt
	Status      TxStatus
	StatusData  string
	BlockNumber uint64
	Events      []event.Event
}

//go:generate mockery --name Client --output ./mocks/ --case=underscore

// Client is the chain access the protocol needs. Account handling, signing and fee
// estimation live behind it.
type Client interface {
	// Invoke submits a transaction calling entrypoint on contract and returns its hash.
	Invoke(ctx context.Context, contract felt.Felt, entrypoint string, calldata []felt.Felt, maxFee *big.Int) (felt.Felt, error)
	// Receipt returns ErrReceiptNotFound while the node has not seen the transaction.
	Receipt(ctx context.Context, txHash felt.Felt) (Receipt, error)
	// LatestConfigSet returns the most recent ConfigSet event of contract, or
	// event.ErrNotFound if it was never configured.
	LatestConfigSet(ctx context.Context, contract felt.Felt) (event.ConfigSet, error)
}

// Request is the caller supplied input of one update. It is not modified.
type Request struct {
	Contract felt.Felt
	Oracles  []codec.Oracle
	F        uint8
	Config   offchainconfig.OffchainConfig
	Secret   []byte
}

// Review is what the operator sees before submission.
type Review struct {
	Contract felt.Felt
	// FirstConfiguration is set when the contract has no ConfigSet event yet.
	FirstConfiguration bool
	Previous           *offchainconfig.OffchainConfig
	// PreviousErr is set when the previous config exists but could not be decoded.
	PreviousErr error
	Intended    offchainconfig.OffchainConfig
	Delta       diff.Delta
	// Rendered is the delta tree, or the full config when there is nothing to diff.
	Rendered string
}

// Result describes how far an update got. SuccessfulConfiguration is only true once
// the on-chain config has been verified.
type Result struct {
	State   State
	History []State

	Input   codec.ContractInput
	Review  *Review
	TxHash  *felt.Felt
	Receipt *Receipt
	Event   *event.ConfigSet
	Decoded *offchainconfig.OffchainConfig

	SuccessfulConfiguration bool
	Mismatch                *VerificationMismatchError
}
