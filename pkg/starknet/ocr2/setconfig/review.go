package setconfig

import (
	"context"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/logger"
)

// Reviewer approves an update before it is submitted. Returning an error aborts the
// update; ErrReviewRejected is the conventional veto.
type Reviewer interface {
	Review(ctx context.Context, r Review) error
}

type ReviewerFunc func(ctx context.Context, r Review) error

func (f ReviewerFunc) Review(ctx context.Context, r Review) error {
	return f(ctx, r)
}

// LogReviewer logs the review and approves it.
type LogReviewer struct {
	Lggr logger.Logger
}

func (l LogReviewer) Review(_ context.Context, r Review) error {
	switch {
	case r.FirstConfiguration:
		l.Lggr.Infow("No previous config found, reviewing full config", "contract", r.Contract.String())
	case r.PreviousErr != nil:
		l.Lggr.Warnw("Previous config could not be decoded, reviewing full config", "contract", r.Contract.String(), "err", r.PreviousErr)
	case r.Delta.Empty():
		l.Lggr.Infow("Config is unchanged", "contract", r.Contract.String())
	}
	l.Lggr.Infof("Offchain config review for %s:\n%s", r.Contract, r.Rendered)
	return nil
}
