package config

import (
	"math/big"
	"sync"
	"time"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/db"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/logger"
)

// Global starknet defaults.
var defaultConfigSet = configSet{
	ConfirmPollPeriod: time.Second,     // polling for tx receipts
	TxConfirmTimeout:  5 * time.Minute, // duration before giving up on a receipt
	RequestTimeout:    10 * time.Second,
	MaxFee:            big.NewInt(30000000000000), // upper bound on the fee paid per set_config
	OCR2Entrypoint:    "set_config",
}

type Config interface {
	ConfirmPollPeriod() time.Duration
	TxConfirmTimeout() time.Duration
	RequestTimeout() time.Duration
	MaxFee() *big.Int
	OCR2Entrypoint() string

	// Update sets new chain config values.
	Update(db.ChainCfg)
}

type configSet struct {
	ConfirmPollPeriod time.Duration
	TxConfirmTimeout  time.Duration
	RequestTimeout    time.Duration
	MaxFee            *big.Int
	OCR2Entrypoint    string
}

var _ Config = (*config)(nil)

type config struct {
	defaults configSet
	chain    db.ChainCfg
	chainMu  sync.RWMutex
	lggr     logger.Logger
}

// NewConfig returns a Config with defaults overridden by dbcfg.
func NewConfig(dbcfg db.ChainCfg, lggr logger.Logger) *config {
	return &config{
		defaults: defaultConfigSet,
		chain:    dbcfg,
		lggr:     lggr,
	}
}

func (c *config) Update(dbcfg db.ChainCfg) {
	c.chainMu.Lock()
	c.chain = dbcfg
	c.chainMu.Unlock()
}

func (c *config) ConfirmPollPeriod() time.Duration {
	c.chainMu.RLock()
	ch := c.chain.ConfirmPollPeriod
	c.chainMu.RUnlock()
	if ch != nil {
		if ch.Duration() > 0 {
			return ch.Duration()
		}
		c.lggr.Warnf(invalidFallbackMsg, "ConfirmPollPeriod", ch.Duration(), c.defaults.ConfirmPollPeriod)
	}
	return c.defaults.ConfirmPollPeriod
}

func (c *config) TxConfirmTimeout() time.Duration {
	c.chainMu.RLock()
	ch := c.chain.TxConfirmTimeout
	c.chainMu.RUnlock()
	if ch != nil {
		if ch.Duration() > 0 {
			return ch.Duration()
		}
		c.lggr.Warnf(invalidFallbackMsg, "TxConfirmTimeout", ch.Duration(), c.defaults.TxConfirmTimeout)
	}
	return c.defaults.TxConfirmTimeout
}

func (c *config) RequestTimeout() time.Duration {
	c.chainMu.RLock()
	ch := c.chain.RequestTimeout
	c.chainMu.RUnlock()
	if ch != nil {
		if ch.Duration() > 0 {
			return ch.Duration()
		}
		c.lggr.Warnf(invalidFallbackMsg, "RequestTimeout", ch.Duration(), c.defaults.RequestTimeout)
	}
	return c.defaults.RequestTimeout
}

func (c *config) MaxFee() *big.Int {
	c.chainMu.RLock()
	ch := c.chain.MaxFee
	c.chainMu.RUnlock()
	if ch.Valid {
		fee, ok := new(big.Int).SetString(ch.String, 10)
		if ok && fee.Sign() > 0 {
			return fee
		}
		c.lggr.Warnf(invalidFallbackMsg, "MaxFee", ch.String, c.defaults.MaxFee)
	}
	return new(big.Int).Set(c.defaults.MaxFee)
}

func (c *config) OCR2Entrypoint() string {
	c.chainMu.RLock()
	ch := c.chain.OCR2Entrypoint
	c.chainMu.RUnlock()
	if ch.Valid && ch.String != "" {
		return ch.String
	}
	return c.defaults.OCR2Entrypoint
}

const invalidFallbackMsg = `Invalid value provided for %s, "%v" - falling back to default "%v"`
