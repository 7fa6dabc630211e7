package setconfig

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/event"
)

var _ Client = (*SimulatedChain)(nil)

// SimulatedChain is an in-memory aggregator deployment. It accepts set_config
// invocations, emits ConfigSet events the way the contract does and serves receipts.
type SimulatedChain struct {
	ChainID string
	// Entrypoint is the only function the simulated contract exposes.
	Entrypoint string
	// RejectReason, when set, makes every transaction end up REJECTED.
	RejectReason string
	// PendingPolls is the number of receipt polls a transaction stays PENDING for.
	PendingPolls int
	// OmitReceiptEvents strips events from receipts, forcing readers to query them.
	OmitReceiptEvents bool
	// Tamper edits emitted events before they are stored.
	Tamper func(*event.ConfigSet)

	mu        sync.Mutex
	block     uint64
	nonce     uint64
	contracts map[felt.Felt]*simulatedContract
	receipts  map[felt.Felt]Receipt
	pending   map[felt.Felt]int
}

type simulatedContract struct {
	latest      event.ConfigSet
	latestBlock uint64
}

func NewSimulatedChain(chainID string) *SimulatedChain {
	return &SimulatedChain{
		ChainID:    chainID,
		Entrypoint: "set_config",
		contracts:  map[felt.Felt]*simulatedContract{},
		receipts:   map[felt.Felt]Receipt{},
		pending:    map[felt.Felt]int{},
	}
}

func (s *SimulatedChain) Invoke(ctx context.Context, contract felt.Felt, entrypoint string, calldata []felt.Felt, maxFee *big.Int) (felt.Felt, error) {
	if err := ctx.Err(); err != nil {
		return felt.Felt{}, err
	}
	if entrypoint != s.Entrypoint {
		return felt.Felt{}, fmt.Errorf("contract %s has no entrypoint %q", contract, entrypoint)
	}
	if maxFee == nil || maxFee.Sign() <= 0 {
		return felt.Felt{}, errors.New("max fee must be positive")
	}
	in, err := codec.ParseCalldata(calldata)
	if err != nil {
		return felt.Felt{}, errors.Wrap(err, "invalid calldata")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce++
	hash := s.txHash(contract)
	s.pending[hash] = s.PendingPolls

	if s.RejectReason != "" {
		s.receipts[hash] = Receipt{TxHash: hash, Status: TxStatusRejected, StatusData: s.RejectReason}
		return hash, nil
	}
	if err = codec.ValidateRoster(in.Oracles, in.F); err != nil {
		s.receipts[hash] = Receipt{TxHash: hash, Status: TxStatusRejected, StatusData: err.Error()}
		return hash, nil
	}

	c, ok := s.contracts[contract]
	if !ok {
		c = &simulatedContract{}
	}
	ev := event.ConfigSet{
		PreviousConfigBlockNumber: c.latestBlock,
		ConfigCount:               c.latest.ConfigCount + 1,
		Oracles:                   in.Oracles,
		F:                         in.F,
		OnchainConfig:             in.OnchainConfig,
		OffchainConfigVersion:     in.OffchainConfigVersion,
		OffchainConfig:            in.OffchainConfig,
	}
	cc, err := ev.ContractConfig()
	if err != nil {
		return felt.Felt{}, errors.Wrap(err, "invalid offchain config")
	}
	ev.LatestConfigDigest, err = event.OffchainConfigDigester{ChainID: s.ChainID, Contract: contract}.ConfigDigest(cc)
	if err != nil {
		return felt.Felt{}, err
	}
	if s.Tamper != nil {
		s.Tamper(&ev)
	}
	data, err := ev.MarshalFelts()
	if err != nil {
		return felt.Felt{}, err
	}
	s.block++
	c.latest, c.latestBlock = ev, s.block
	s.contracts[contract] = c

	receipt := Receipt{TxHash: hash, Status: TxStatusAcceptedOnL2, BlockNumber: s.block}
	if !s.OmitReceiptEvents {
		receipt.Events = []event.Event{{FromAddress: contract, Keys: []felt.Felt{event.ConfigSetSelector}, Data: data}}
	}
	s.receipts[hash] = receipt
	return hash, nil
}

func (s *SimulatedChain) txHash(contract felt.Felt) felt.Felt {
	h := sha256.New()
	b := contract.Bytes32()
	h.Write(b[:])
	_ = binary.Write(h, binary.BigEndian, s.nonce)
	sum := h.Sum(nil)
	// 31 bytes always fit below the field modulus
	hash, _ := felt.FromBytes(sum[:felt.ChunkSize])
	return hash
}

func (s *SimulatedChain) Receipt(ctx context.Context, txHash felt.Felt) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[txHash]
	if !ok {
		return Receipt{}, ErrReceiptNotFound
	}
	if s.pending[txHash] > 0 {
		s.pending[txHash]--
		return Receipt{TxHash: txHash, Status: TxStatusPending}, nil
	}
	return r, nil
}

func (s *SimulatedChain) LatestConfigSet(ctx context.Context, contract felt.Felt) (event.ConfigSet, error) {
	if err := ctx.Err(); err != nil {
		return event.ConfigSet{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[contract]
	if !ok {
		return event.ConfigSet{}, event.ErrNotFound
	}
	return c.latest, nil
}
