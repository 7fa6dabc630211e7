package codec

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/encryption"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
)

// ValidateRoster checks f against the roster size and that no signer or transmitter
// repeats. Violations are reported as *offchainconfig.EncodingError.
func ValidateRoster(oracles []Oracle, f uint8) error {
	var merr error
	n := len(oracles)
	if f < 1 {
		merr = multierr.Append(merr, encodingErr("f", "must be at least 1"))
	}
	if 3*int(f)+1 > n {
		merr = multierr.Append(merr, encodingErr("oracles", fmt.Sprintf("%d oracles cannot tolerate f=%d, need at least %d", n, f, 3*int(f)+1)))
	}
	if n > MaxOracles {
		merr = multierr.Append(merr, encodingErr("oracles", fmt.Sprintf("%d oracles exceed the maximum of %d", n, MaxOracles)))
	}
	signers := make(map[felt.Felt]int, n)
	transmitters := make(map[felt.Felt]int, n)
	for i, o := range oracles {
		if j, ok := signers[o.Signer]; ok {
			merr = multierr.Append(merr, encodingErr(fmt.Sprintf("oracles[%d].signer", i), fmt.Sprintf("duplicate of oracles[%d]", j)))
		}
		if j, ok := transmitters[o.Transmitter]; ok {
			merr = multierr.Append(merr, encodingErr(fmt.Sprintf("oracles[%d].transmitter", i), fmt.Sprintf("duplicate of oracles[%d]", j)))
		}
		signers[o.Signer] = i
		transmitters[o.Transmitter] = i
	}
	return merr
}

func encodingErr(field, reason string) error {
	return &offchainconfig.EncodingError{Field: field, Reason: reason}
}

// Encode validates the roster and config and builds the set_config input. The offchain
// config on the wire is the projection of c: config public keys are only used to
// encrypt the shared secret for each oracle.
func Encode(oracles []Oracle, f uint8, c offchainconfig.OffchainConfig, secret []byte) (ContractInput, error) {
	if err := multierr.Combine(ValidateRoster(oracles, f), c.ValidateFor(len(oracles))); err != nil {
		return ContractInput{}, err
	}
	felts, err := EncodeOffchainConfig(c, secret)
	if err != nil {
		return ContractInput{}, err
	}
	return ContractInput{
		Oracles:               append([]Oracle(nil), oracles...),
		F:                     f,
		OffchainConfigVersion: OffchainConfigVersion,
		OffchainConfig:        felts,
	}, nil
}

// Decode recovers the offchain config from a contract input.
func Decode(in ContractInput, secret []byte) (offchainconfig.OffchainConfig, error) {
	return DecodeOffchainConfig(in.OffchainConfig, secret)
}

// EncodeOffchainConfig runs serialize, encrypt and chunk.
func EncodeOffchainConfig(c offchainconfig.OffchainConfig, secret []byte) ([]felt.Felt, error) {
	raw, err := EncodeOffchainConfigBytes(c, secret)
	if err != nil {
		return nil, err
	}
	return felt.BytesToFelts(raw)
}

// EncodeOffchainConfigBytes returns the envelope bytes before chunking.
func EncodeOffchainConfigBytes(c offchainconfig.OffchainConfig, secret []byte) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	plaintext, err := offchainconfig.Serialize(c.Projection())
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(c.ConfigPublicKeys))
	for i, k := range c.ConfigPublicKeys {
		keys[i] = k
	}
	sse, err := encryption.NewSharedSecretEncryptions(secret, keys)
	if err != nil {
		return nil, err
	}
	ct, err := encryption.Encrypt(plaintext, secret)
	if err != nil {
		return nil, err
	}
	return envelope{
		Version:                 EnvelopeVersion,
		SharedSecretEncryptions: fromSSE(sse),
		Ciphertext:              ct,
	}.marshal()
}

// DecodeOffchainConfig reverses EncodeOffchainConfig. A secret other than the one used
// to encode yields a *encryption.DecryptionError.
func DecodeOffchainConfig(felts []felt.Felt, secret []byte) (offchainconfig.OffchainConfig, error) {
	ss, err := encryption.DeriveSharedSecret(secret)
	if err != nil {
		return offchainconfig.OffchainConfig{}, err
	}
	return decode(felts, func(sse encryption.SharedSecretEncryptions) (encryption.SharedSecret, error) {
		if !sse.Verify(ss) {
			return ss, &encryption.DecryptionError{Reason: "secret does not match the shared secret hash"}
		}
		return ss, nil
	})
}

// DecodeOffchainConfigAsOracle decodes the config the way oracle i does, using its config
// private key instead of the operator secret.
func DecodeOffchainConfigAsOracle(felts []felt.Felt, i int, configPrivateKey []byte) (offchainconfig.OffchainConfig, error) {
	return decode(felts, func(sse encryption.SharedSecretEncryptions) (encryption.SharedSecret, error) {
		return sse.Decrypt(i, configPrivateKey)
	})
}

func decode(felts []felt.Felt, sharedSecret func(encryption.SharedSecretEncryptions) (encryption.SharedSecret, error)) (offchainconfig.OffchainConfig, error) {
	raw, err := felt.BytesFromFelts(felts)
	if err != nil {
		return offchainconfig.OffchainConfig{}, err
	}
	env, err := unmarshalEnvelope(raw)
	if err != nil {
		return offchainconfig.OffchainConfig{}, err
	}
	ss, err := sharedSecret(env.SharedSecretEncryptions.toSSE())
	if err != nil {
		return offchainconfig.OffchainConfig{}, err
	}
	plaintext, err := encryption.Open(ss, env.Ciphertext)
	if err != nil {
		return offchainconfig.OffchainConfig{}, err
	}
	return offchainconfig.Deserialize(plaintext)
}
