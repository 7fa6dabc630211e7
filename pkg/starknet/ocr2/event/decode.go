package event

import (
	"errors"
	"fmt"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
)

var ErrNotFound = errors.New("no ConfigSet event found")

// Decode extracts a typed event using its first key as the discriminator.
func Decode(e Event) (interface{}, error) {
	if len(e.Keys) == 0 {
		return nil, fmt.Errorf("event from %s has no keys", e.FromAddress)
	}
	if e.Keys[0].Equal(ConfigSetSelector) {
		var out ConfigSet
		if err := out.UnmarshalFelts(e.Data); err != nil {
			return nil, fmt.Errorf("failed to decode event of type '%T': %w", out, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unrecognised event selector %s", e.Keys[0])
}

// FindConfigSet picks the ConfigSet event out of a transaction's events. Events keyed
// with the ConfigSet selector win; otherwise the first event emitted by contract is
// tried, for nodes that omit keys.
func FindConfigSet(events []Event, contract felt.Felt) (ConfigSet, error) {
	for _, e := range events {
		if len(e.Keys) > 0 && e.Keys[0].Equal(ConfigSetSelector) && e.FromAddress.Equal(contract) {
			decoded, err := Decode(e)
			if err != nil {
				return ConfigSet{}, err
			}
			return decoded.(ConfigSet), nil
		}
	}
	for _, e := range events {
		if e.FromAddress.Equal(contract) && len(e.Keys) == 0 {
			var out ConfigSet
			if err := out.UnmarshalFelts(e.Data); err != nil {
				return ConfigSet{}, fmt.Errorf("failed to decode event of type '%T': %w", out, err)
			}
			return out, nil
		}
	}
	return ConfigSet{}, ErrNotFound
}
