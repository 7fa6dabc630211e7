package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/smartcontractkit/chainlink-relay/pkg/logger"
	"github.com/smartcontractkit/chainlink-relay/pkg/utils"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/config"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/db"
)

// Chain Agnostic Test Utils

// Context returns a context with the test's deadline, if available.
func Context(tb testing.TB) context.Context {
	ctx := context.Background()
	var cancel func()
	switch t := tb.(type) {
	case *testing.T:
		if d, ok := t.Deadline(); ok {
			ctx, cancel = context.WithDeadline(ctx, d)
		}
	}
	if cancel == nil {
		ctx, cancel = context.WithCancel(ctx)
	}
	tb.Cleanup(cancel)
	return ctx
}

// DefaultWaitTimeout is the default wait timeout. If you have a *testing.T, use WaitTimeout instead.
const DefaultWaitTimeout = 30 * time.Second

// WaitTimeout returns a timeout based on the test's Deadline, if available.
func WaitTimeout(t *testing.T) time.Duration {
	if d, ok := t.Deadline(); ok {
		// 10% buffer for cleanup and scheduling delay
		return time.Until(d) * 9 / 10
	}
	return DefaultWaitTimeout
}

// TestInterval is just a sensible poll interval that gives fast tests without
// risk of spamming
const TestInterval = 10 * time.Millisecond

// NewConfig returns a chain config that polls every TestInterval and gives up on
// receipts after a second, with overrides.
func NewConfig(t *testing.T, overrideFn func(*db.ChainCfg)) config.Config {
	poll, err := utils.NewDuration(TestInterval)
	if err != nil {
		t.Fatal(err)
	}
	timeout, err := utils.NewDuration(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	cfg := db.ChainCfg{
		ConfirmPollPeriod: &poll,
		TxConfirmTimeout:  &timeout,
	}
	if overrideFn != nil {
		overrideFn(&cfg)
	}
	return config.NewConfig(cfg, logger.Test(t))
}
