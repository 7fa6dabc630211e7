package felt

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// Key material prefixes emitted by chainlink nodes, e.g. ocr2on_starknet_<hex>.
const (
	OnchainKeyPrefix  = "ocr2on_starknet_"
	OffchainKeyPrefix = "ocr2off_starknet_"
	ConfigKeyPrefix   = "ocr2cfg_starknet_"
)

var keyPrefixes = []string{OnchainKeyPrefix, OffchainKeyPrefix, ConfigKeyPrefix}

// StripKeyPrefix removes a known key prefix if present.
func StripKeyPrefix(key string) string {
	key = strings.TrimSpace(key)
	for _, p := range keyPrefixes {
		if strings.HasPrefix(key, p) {
			return strings.TrimPrefix(key, p)
		}
	}
	return key
}

// NormalizeHex strips known key prefixes and returns a lower case, 0x-prefixed string.
func NormalizeHex(s string) string {
	s = StripKeyPrefix(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return "0x" + strings.ToLower(s)
}

// ParseKey normalizes a signer, transmitter or address string and converts it to a felt.
// "ocr2on_starknet_<hex>", "<hex>" and "0x<hex>" all yield the same value.
func ParseKey(s string) (Felt, error) {
	f, err := FromHex(NormalizeHex(s))
	if err != nil {
		return Felt{}, errors.Wrapf(err, "invalid key %q", s)
	}
	return f, nil
}

// DecodeKeyBytes returns the raw bytes of a hex encoded public key, accepting the same
// prefixed and bare forms as ParseKey.
func DecodeKeyBytes(s string) ([]byte, error) {
	h := strings.TrimPrefix(NormalizeHex(s), "0x")
	if len(h)%2 == 1 {
		return nil, errors.Errorf("odd length hex key %q", s)
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex key %q", s)
	}
	return raw, nil
}
