package setconfig

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
)

// Coordinator allows at most one update in flight per contract. Concurrent submissions
// from the same account would race on the account nonce.
type Coordinator struct {
	protocol *Protocol

	mu    sync.Mutex
	locks map[felt.Felt]*semaphore.Weighted
}

func NewCoordinator(p *Protocol) *Coordinator {
	return &Coordinator{protocol: p, locks: map[felt.Felt]*semaphore.Weighted{}}
}

func (c *Coordinator) lock(contract felt.Felt) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()
	sem, ok := c.locks[contract]
	if !ok {
		sem = semaphore.NewWeighted(1)
		c.locks[contract] = sem
	}
	return sem
}

// Run waits for any update of the same contract to finish, then runs req.
func (c *Coordinator) Run(ctx context.Context, req Request) (Result, error) {
	sem := c.lock(req.Contract)
	if err := sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer sem.Release(1)
	return c.protocol.Run(ctx, req)
}

// TryRun fails with ErrUpdateInProgress instead of waiting.
func (c *Coordinator) TryRun(ctx context.Context, req Request) (Result, error) {
	sem := c.lock(req.Contract)
	if !sem.TryAcquire(1) {
		return Result{}, ErrUpdateInProgress
	}
	defer sem.Release(1)
	return c.protocol.Run(ctx, req)
}
