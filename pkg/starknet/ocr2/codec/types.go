// Package codec turns an offchain config plus oracle roster into set_config calldata
// and back.
package codec

import (
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
)

const (
	// OffchainConfigVersion is the version the aggregator contract expects.
	OffchainConfigVersion uint64 = 2
	// MaxOracles is the aggregator's roster limit.
	MaxOracles = 31
	// EnvelopeVersion prefixes the encoded offchain config bytes.
	EnvelopeVersion uint8 = 1
)

// Oracle is a single network participant as stored by the aggregator.
type Oracle struct {
	Signer      felt.Felt `json:"signer"`
	Transmitter felt.Felt `json:"transmitter"`
}

// ContractInput is the set_config argument tuple. It is built per update and never persisted.
type ContractInput struct {
	Oracles               []Oracle
	F                     uint8
	OnchainConfig         []felt.Felt
	OffchainConfigVersion uint64
	OffchainConfig        []felt.Felt
}

// Calldata flattens the input:
// [n, signer_0, transmitter_0, ..., f, len(onchain), onchain..., version, m, offchain...]
// where m is the number of offchain config felts.
func (in ContractInput) Calldata() []felt.Felt {
	out := make([]felt.Felt, 0, 5+2*len(in.Oracles)+len(in.OnchainConfig)+len(in.OffchainConfig))
	out = append(out, felt.New(uint64(len(in.Oracles))))
	for _, o := range in.Oracles {
		out = append(out, o.Signer, o.Transmitter)
	}
	out = append(out, felt.New(uint64(in.F)))
	out = append(out, felt.New(uint64(len(in.OnchainConfig))))
	out = append(out, in.OnchainConfig...)
	out = append(out, felt.New(in.OffchainConfigVersion))
	out = append(out, felt.New(uint64(len(in.OffchainConfig))))
	out = append(out, in.OffchainConfig...)
	return out
}

// ParseCalldata is the inverse of Calldata.
func ParseCalldata(data []felt.Felt) (ContractInput, error) {
	r := NewReader(data)
	var in ContractInput
	n, err := r.Len()
	if err != nil {
		return in, err
	}
	for i := 0; i < n; i++ {
		pair, err := r.Take(2)
		if err != nil {
			return in, err
		}
		in.Oracles = append(in.Oracles, Oracle{Signer: pair[0], Transmitter: pair[1]})
	}
	f, err := r.Uint64()
	if err != nil {
		return in, err
	}
	if f > 255 {
		return in, malformed("f %d does not fit in a byte", f)
	}
	in.F = uint8(f)
	if in.OnchainConfig, err = r.Array(); err != nil {
		return in, err
	}
	if in.OffchainConfigVersion, err = r.Uint64(); err != nil {
		return in, err
	}
	if in.OffchainConfig, err = r.Array(); err != nil {
		return in, err
	}
	if err = r.Done(); err != nil {
		return in, err
	}
	return in, nil
}
