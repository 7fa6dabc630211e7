package input

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
)

var ErrMissingSecret = errors.New("secret is required, set -secret or SECRET")

// OnchainConfig accepts an empty JSON array, an empty string or null.
type OnchainConfig []string

func (o *OnchainConfig) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte(`""`)) || bytes.Equal(b, []byte("null")) {
		*o = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*o = out
	return nil
}

// SetConfigInput is the operator facing set_config input, as written by deployment
// tooling. Signer, transmitter and key strings may carry the node export prefixes.
type SetConfigInput struct {
	F                     uint8                         `json:"f"`
	Signers               []string                      `json:"signers"`
	Transmitters          []string                      `json:"transmitters"`
	OnchainConfig         OnchainConfig                 `json:"onchainConfig"`
	OffchainConfig        offchainconfig.OffchainConfig `json:"offchainConfig"`
	OffchainConfigVersion uint64                        `json:"offchainConfigVersion"`
	Secret                string                        `json:"secret,omitempty"`
	// RandomSecret replaces any configured secret with a freshly generated one.
	RandomSecret bool `json:"randomSecret,omitempty"`
}

// NewRandomSecret returns 32 random bytes as 0x-prefixed hex.
func NewRandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate secret")
	}
	return "0x" + hex.EncodeToString(b), nil
}

// LoadSetConfigInput reads a JSON encoded SetConfigInput.
func LoadSetConfigInput(r io.Reader) (SetConfigInput, error) {
	var in SetConfigInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return in, errors.Wrap(err, "failed to decode set_config input")
	}
	return in, nil
}

// Oracles parses the signer and transmitter lists.
func (in SetConfigInput) Oracles() ([]codec.Oracle, error) {
	if len(in.Signers) != len(in.Transmitters) {
		return nil, &offchainconfig.EncodingError{Field: "transmitters", Reason: "must have one entry per signer"}
	}
	var errs error
	oracles := make([]codec.Oracle, len(in.Signers))
	for i := range in.Signers {
		signer, err := felt.ParseKey(in.Signers[i])
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "signers[%d]", i))
		}
		transmitter, err := felt.ParseKey(in.Transmitters[i])
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "transmitters[%d]", i))
		}
		oracles[i] = codec.Oracle{Signer: signer, Transmitter: transmitter}
	}
	return oracles, errs
}

// Request validates the input and builds an update of contract. fallbackSecret is
// used when the input carries no secret.
func (in SetConfigInput) Request(contract felt.Felt, fallbackSecret string) (setconfig.Request, error) {
	oracles, err := in.Oracles()
	if len(in.OnchainConfig) != 0 {
		err = multierr.Append(err, &offchainconfig.EncodingError{Field: "onchainConfig", Reason: "must be empty"})
	}
	if in.OffchainConfigVersion != codec.OffchainConfigVersion {
		err = multierr.Append(err, &offchainconfig.EncodingError{Field: "offchainConfigVersion", Reason: "must be 2"})
	}
	err = multierr.Append(err, in.OffchainConfig.ValidateFor(len(in.Signers)))
	if err != nil {
		return setconfig.Request{}, err
	}

	secret := in.Secret
	if secret == "" {
		secret = fallbackSecret
	}
	if in.RandomSecret {
		if secret, err = NewRandomSecret(); err != nil {
			return setconfig.Request{}, err
		}
	}
	if secret == "" {
		return setconfig.Request{}, ErrMissingSecret
	}
	return setconfig.Request{
		Contract: contract,
		Oracles:  oracles,
		F:        in.F,
		Config:   in.OffchainConfig.Clone(),
		Secret:   []byte(secret),
	}, nil
}
