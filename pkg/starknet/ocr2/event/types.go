// Package event decodes the events the OCR2 aggregator emits.
package event

import (
	"encoding/binary"
	"fmt"

	"github.com/smartcontractkit/libocr/offchainreporting2/types"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
)

const ConfigDigestPrefixStarknet types.ConfigDigestPrefix = 4

var ConfigSetSelector = felt.Selector("ConfigSet")

// Event is a raw emitted event as returned by the node.
type Event struct {
	FromAddress felt.Felt   `json:"from_address"`
	Keys        []felt.Felt `json:"keys"`
	Data        []felt.Felt `json:"data"`
}

// ConfigSet is emitted by set_config. Data layout:
// [previous_config_block_number, latest_config_digest, config_count, n,
//  (signer, transmitter) * n, f, onchain_len, onchain..., version, offchain_len, offchain...]
type ConfigSet struct {
	PreviousConfigBlockNumber uint64
	LatestConfigDigest        types.ConfigDigest
	ConfigCount               uint64
	Oracles                   []codec.Oracle
	F                         uint8
	OnchainConfig             []felt.Felt
	OffchainConfigVersion     uint64
	OffchainConfig            []felt.Felt
}

// UnmarshalFelts decodes the event data.
func (e *ConfigSet) UnmarshalFelts(data []felt.Felt) error {
	r := codec.NewReader(data)
	prev, err := r.Uint64()
	if err != nil {
		return fmt.Errorf("previous config block number: %w", err)
	}
	digest, err := r.Next()
	if err != nil {
		return fmt.Errorf("config digest: %w", err)
	}
	count, err := r.Uint64()
	if err != nil {
		return fmt.Errorf("config count: %w", err)
	}
	// the remainder is laid out exactly like set_config calldata
	in, err := codec.ParseCalldata(data[3:])
	if err != nil {
		return err
	}
	*e = ConfigSet{
		PreviousConfigBlockNumber: prev,
		LatestConfigDigest:        digest.Bytes32(),
		ConfigCount:               count,
		Oracles:                   in.Oracles,
		F:                         in.F,
		OnchainConfig:             in.OnchainConfig,
		OffchainConfigVersion:     in.OffchainConfigVersion,
		OffchainConfig:            in.OffchainConfig,
	}
	return nil
}

// MarshalFelts is the inverse of UnmarshalFelts.
func (e ConfigSet) MarshalFelts() ([]felt.Felt, error) {
	digest, err := felt.FromBytes(e.LatestConfigDigest[:])
	if err != nil {
		return nil, fmt.Errorf("config digest: %w", err)
	}
	out := []felt.Felt{felt.New(e.PreviousConfigBlockNumber), digest, felt.New(e.ConfigCount)}
	return append(out, e.Input().Calldata()...), nil
}

// Input returns the set_config arguments the event records.
func (e ConfigSet) Input() codec.ContractInput {
	return codec.ContractInput{
		Oracles:               e.Oracles,
		F:                     e.F,
		OnchainConfig:         e.OnchainConfig,
		OffchainConfigVersion: e.OffchainConfigVersion,
		OffchainConfig:        e.OffchainConfig,
	}
}

// DigestPrefix returns the two leading bytes of the digest.
func (e ConfigSet) DigestPrefix() types.ConfigDigestPrefix {
	return types.ConfigDigestPrefix(binary.BigEndian.Uint16(e.LatestConfigDigest[:2]))
}

// CheckDigestPrefix fails if the digest was not produced for this chain family.
func (e ConfigSet) CheckDigestPrefix() error {
	if p := e.DigestPrefix(); p != ConfigDigestPrefixStarknet {
		return fmt.Errorf("config digest %s has prefix %d, expected %d", e.LatestConfigDigest.Hex(), p, ConfigDigestPrefixStarknet)
	}
	return nil
}

// ContractConfig converts the event into the libocr view of a contract config.
func (e ConfigSet) ContractConfig() (types.ContractConfig, error) {
	signers := []types.OnchainPublicKey{}
	transmitters := []types.Account{}
	for _, o := range e.Oracles {
		key := o.Signer.Bytes32()
		signers = append(signers, key[:])
		transmitters = append(transmitters, types.Account(o.Transmitter.String()))
	}
	onchain := []byte{}
	for _, f := range e.OnchainConfig {
		w := f.Bytes32()
		onchain = append(onchain, w[:]...)
	}
	offchain, err := felt.BytesFromFelts(e.OffchainConfig)
	if err != nil {
		return types.ContractConfig{}, fmt.Errorf("offchain config: %w", err)
	}
	return types.ContractConfig{
		ConfigDigest:          e.LatestConfigDigest,
		ConfigCount:           e.ConfigCount,
		Signers:               signers,
		Transmitters:          transmitters,
		F:                     e.F,
		OnchainConfig:         onchain,
		OffchainConfigVersion: e.OffchainConfigVersion,
		OffchainConfig:        offchain,
	}, nil
}
