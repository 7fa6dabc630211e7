package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/smartcontractkit/chainlink-relay/pkg/utils"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/db"
)

// Env is the process level configuration read from the environment.
type Env struct {
	RPCEndpoint string
	ChainID     string
	Account     string
	// Secret keys the offchain config encryption. A command line flag takes precedence.
	Secret string
	Chain  db.ChainCfg
}

// ParseEnv reads the STARKNET_* variables and SECRET.
func ParseEnv() (Env, error) {
	env := Env{}

	if err := parseEnvVars(&env); err != nil {
		return env, err
	}

	applyDefaults(&env)

	return env, nil
}

func parseEnvVars(env *Env) error {
	if value, isPresent := os.LookupEnv("STARKNET_RPC_ENDPOINT"); isPresent {
		env.RPCEndpoint = value
	}
	if value, isPresent := os.LookupEnv("STARKNET_CHAIN_ID"); isPresent {
		env.ChainID = value
	}
	if value, isPresent := os.LookupEnv("STARKNET_ACCOUNT"); isPresent {
		env.Account = value
	}
	if value, isPresent := os.LookupEnv("SECRET"); isPresent {
		env.Secret = value
	}

	for name, target := range map[string]**utils.Duration{
		"STARKNET_CONFIRM_POLL_PERIOD": &env.Chain.ConfirmPollPeriod,
		"STARKNET_TX_CONFIRM_TIMEOUT":  &env.Chain.TxConfirmTimeout,
		"STARKNET_REQUEST_TIMEOUT":     &env.Chain.RequestTimeout,
	} {
		value, isPresent := os.LookupEnv(name)
		if !isPresent {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("failed to parse env var %s, see https://pkg.go.dev/time#ParseDuration: %w", name, err)
		}
		ud, err := utils.NewDuration(d)
		if err != nil {
			return fmt.Errorf("invalid duration in env var %s: %w", name, err)
		}
		*target = &ud
	}

	if value, isPresent := os.LookupEnv("STARKNET_MAX_FEE"); isPresent {
		env.Chain.MaxFee = null.StringFrom(value)
	}
	if value, isPresent := os.LookupEnv("STARKNET_OCR2_ENTRYPOINT"); isPresent {
		env.Chain.OCR2Entrypoint = null.StringFrom(value)
	}
	return nil
}

func applyDefaults(env *Env) {
	if env.RPCEndpoint == "" {
		env.RPCEndpoint = defaultRPCEndpoint
	}
	if env.ChainID == "" {
		env.ChainID = defaultChainID
	}
}

const (
	defaultRPCEndpoint = "http://127.0.0.1:5050/rpc"
	defaultChainID     = "SN_GOERLI"
)
