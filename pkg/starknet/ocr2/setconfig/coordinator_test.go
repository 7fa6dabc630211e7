package setconfig_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/chainlink-starknet/pkg/internal/cltest"
	"github.com/smartcontractkit/chainlink-starknet/pkg/internal/testutils"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
)

func TestCoordinator(t *testing.T) {
	blocked := cltest.Request(t, 4, 1)
	other := cltest.Request(t, 4, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	reviewer := setconfig.ReviewerFunc(func(ctx context.Context, r setconfig.Review) error {
		if r.Contract.Equal(blocked.Contract) {
			close(started)
			<-release
		}
		return nil
	})
	p, _ := newProtocol(t, setconfig.NewSimulatedChain("SN_GOERLI"), setconfig.WithReviewer(reviewer))
	c := setconfig.NewCoordinator(p)
	ctx := testutils.Context(t)

	type outcome struct {
		res setconfig.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := c.Run(ctx, blocked)
		done <- outcome{res, err}
	}()
	<-started

	_, err := c.TryRun(ctx, blocked)
	assert.True(t, errors.Is(err, setconfig.ErrUpdateInProgress))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Run(cancelled, blocked)
	assert.True(t, errors.Is(err, context.Canceled))

	// other contracts are not serialized behind it
	res, err := c.TryRun(ctx, other)
	require.NoError(t, err)
	assert.True(t, res.SuccessfulConfiguration)

	close(release)
	out := <-done
	require.NoError(t, out.err)
	assert.True(t, out.res.SuccessfulConfiguration)

	res, err = c.TryRun(ctx, blocked)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Event.ConfigCount)
}
