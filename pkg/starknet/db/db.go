package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gopkg.in/guregu/null.v4"

	"github.com/smartcontractkit/chainlink-relay/pkg/utils"
)

// ChainCfg holds per chain overrides. Unset fields fall back to the defaults.
type ChainCfg struct {
	ConfirmPollPeriod *utils.Duration
	TxConfirmTimeout  *utils.Duration
	RequestTimeout    *utils.Duration

	MaxFee         null.String // decimal, in wei
	OCR2Entrypoint null.String
}

func (c *ChainCfg) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(b, c)
}

func (c *ChainCfg) Value() (driver.Value, error) {
	return json.Marshal(c)
}
