package event

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/smartcontractkit/libocr/offchainreporting2/types"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
)

// OffchainConfigDigester computes config digests locally, for simulated chains and
// tooling. It hashes the chain id, contract and every config field with sha256 and
// stamps the starknet prefix on the result.
type OffchainConfigDigester struct {
	ChainID  string
	Contract felt.Felt
}

func (d OffchainConfigDigester) ConfigDigest(cfg types.ContractConfig) (types.ConfigDigest, error) {
	configDigest := types.ConfigDigest{}
	buf := sha256.New()

	if _, err := buf.Write([]byte(d.ChainID)); err != nil {
		return configDigest, err
	}
	contract := d.Contract.Bytes32()
	if _, err := buf.Write(contract[:]); err != nil {
		return configDigest, err
	}
	if err := binary.Write(buf, binary.BigEndian, cfg.ConfigCount); err != nil {
		return configDigest, err
	}

	if len(cfg.Signers) != len(cfg.Transmitters) {
		return configDigest, fmt.Errorf("%d signers but %d transmitters", len(cfg.Signers), len(cfg.Transmitters))
	}
	if err := binary.Write(buf, binary.BigEndian, uint8(len(cfg.Signers))); err != nil {
		return configDigest, err
	}
	for i, signer := range cfg.Signers {
		if _, err := buf.Write(signer); err != nil {
			return configDigest, err
		}
		transmitter, err := felt.ParseKey(string(cfg.Transmitters[i]))
		if err != nil {
			return configDigest, fmt.Errorf("unable to parse transmitter (%s): %w", cfg.Transmitters[i], err)
		}
		t := transmitter.Bytes32()
		if _, err := buf.Write(t[:]); err != nil {
			return configDigest, err
		}
	}

	if err := binary.Write(buf, binary.BigEndian, cfg.F); err != nil {
		return configDigest, err
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(cfg.OnchainConfig))); err != nil {
		return configDigest, err
	}
	if _, err := buf.Write(cfg.OnchainConfig); err != nil {
		return configDigest, err
	}
	if err := binary.Write(buf, binary.BigEndian, cfg.OffchainConfigVersion); err != nil {
		return configDigest, err
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(cfg.OffchainConfig))); err != nil {
		return configDigest, err
	}
	if _, err := buf.Write(cfg.OffchainConfig); err != nil {
		return configDigest, err
	}

	copy(configDigest[:], buf.Sum(nil))
	configDigest[0] = 0x00
	configDigest[1] = uint8(ConfigDigestPrefixStarknet)
	return configDigest, nil
}

func (d OffchainConfigDigester) ConfigDigestPrefix() types.ConfigDigestPrefix {
	return ConfigDigestPrefixStarknet
}
