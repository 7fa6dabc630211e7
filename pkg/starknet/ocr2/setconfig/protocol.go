package setconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/config"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/logger"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/metrics"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/diff"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/event"
)

// Protocol holds the collaborators shared by updates. It keeps no per update state.
type Protocol struct {
	client   Client
	cfg      config.Config
	lggr     logger.Logger
	reviewer Reviewer
	metrics  metrics.SetConfig
}

type Option func(*Protocol)

func WithReviewer(r Reviewer) Option {
	return func(p *Protocol) { p.reviewer = r }
}

func WithMetrics(m metrics.SetConfig) Option {
	return func(p *Protocol) { p.metrics = m }
}

func New(client Client, cfg config.Config, lggr logger.Logger, opts ...Option) *Protocol {
	p := &Protocol{
		client:   client,
		cfg:      cfg,
		lggr:     lggr,
		reviewer: LogReviewer{Lggr: lggr},
		metrics:  metrics.NewSetConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every step of an update. A rejected transaction or a verification
// mismatch is reported in the Result with a nil error.
//
// Cancelling ctx after Submit has returned does not withdraw the transaction: it
// may still be included even though Run returns an error.
func (p *Protocol) Run(ctx context.Context, req Request) (Result, error) {
	u := p.Begin(req)
	err := u.run(ctx)
	res := u.Result()

	outcome := "failed"
	if err == nil && res.State.Final() {
		outcome = string(res.State)
	}
	p.metrics.IncOutcome(req.Contract.String(), outcome)
	return res, err
}

// Begin starts an update whose steps are driven by the caller.
func (p *Protocol) Begin(req Request) *Update {
	u := &Update{p: p, req: req, contract: req.Contract.String()}
	u.transition(StateIdle)
	return u
}

// Update is a single invocation of the protocol. Steps must be called in order:
// Encode, Review (optional), Submit, Await, Verify.
type Update struct {
	p        *Protocol
	req      Request
	res      Result
	contract string
}

func (u *Update) run(ctx context.Context) error {
	if err := u.Encode(); err != nil {
		return err
	}
	if err := u.Review(ctx); err != nil {
		return err
	}
	if err := u.Submit(ctx); err != nil {
		return err
	}
	if err := u.Await(ctx); err != nil {
		return err
	}
	if u.res.State == StateRejected {
		return nil
	}
	return u.Verify(ctx)
}

// Result returns a snapshot of the update so far.
func (u *Update) Result() Result {
	res := u.res
	res.History = append([]State(nil), u.res.History...)
	return res
}

func (u *Update) State() State {
	return u.res.State
}

func (u *Update) transition(s State) {
	u.res.State = s
	u.res.History = append(u.res.History, s)
}

func (u *Update) expect(s State) error {
	if u.res.State != s {
		return errors.Wrapf(ErrInvalidState, "update is %s, step needs %s", u.res.State, s)
	}
	return nil
}

func (u *Update) requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, u.p.cfg.RequestTimeout())
}

// Encode validates the request and builds the set_config input.
func (u *Update) Encode() error {
	if err := u.expect(StateIdle); err != nil {
		return err
	}
	in, err := codec.Encode(u.req.Oracles, u.req.F, u.req.Config, u.req.Secret)
	if err != nil {
		return err
	}
	u.res.Input = in
	u.transition(StateEncoded)
	u.p.metrics.SetOffchainConfigFelts(u.contract, len(in.OffchainConfig))
	u.p.lggr.Infow("Encoded offchain config", "contract", u.contract, "oracles", len(in.Oracles), "f", in.F, "felts", len(in.OffchainConfig))
	return nil
}

// Review compares the intended config with the one currently on-chain and hands the
// result to the reviewer. A contract that was never configured is reviewed in full.
func (u *Update) Review(ctx context.Context) error {
	if err := u.expect(StateEncoded); err != nil {
		return err
	}
	r := Review{Contract: u.req.Contract, Intended: u.req.Config.Projection()}

	rctx, cancel := u.requestCtx(ctx)
	prev, err := u.p.client.LatestConfigSet(rctx, u.req.Contract)
	cancel()
	switch {
	case errors.Is(err, event.ErrNotFound):
		r.FirstConfiguration = true
	case err != nil:
		return errors.Wrap(err, "failed to fetch previous config")
	default:
		decoded, err := codec.Decode(prev.Input(), u.req.Secret)
		if err != nil {
			r.PreviousErr = err
		} else {
			r.Previous = &decoded
			r.Delta = diff.Diff(decoded, r.Intended)
		}
	}
	if r.Previous != nil {
		r.Rendered = diff.Render(r.Delta)
	} else {
		r.Rendered = diff.Dump(r.Intended)
	}
	u.res.Review = &r

	if err := u.p.reviewer.Review(ctx, r); err != nil {
		u.p.lggr.Warnw("Config update rejected in review", "contract", u.contract, "err", err)
		return err
	}
	return nil
}

// Submit sends the encoded input to the chain.
func (u *Update) Submit(ctx context.Context) error {
	if err := u.expect(StateEncoded); err != nil {
		return err
	}
	rctx, cancel := u.requestCtx(ctx)
	defer cancel()
	hash, err := u.p.client.Invoke(rctx, u.req.Contract, u.p.cfg.OCR2Entrypoint(), u.res.Input.Calldata(), u.p.cfg.MaxFee())
	if err != nil {
		return errors.Wrap(err, "failed to submit set_config")
	}
	u.res.TxHash = &hash
	u.transition(StateSubmitted)
	u.p.lggr.Infow("Submitted set_config", "contract", u.contract, "txHash", hash.String())
	return nil
}

// Await polls for the receipt. A receipt that is not there yet or still pending is
// waited on until the confirm timeout, which yields a *ChainTimeoutError.
func (u *Update) Await(ctx context.Context) error {
	if err := u.expect(StateSubmitted); err != nil {
		return err
	}
	hash := *u.res.TxHash
	timeout := u.p.cfg.TxConfirmTimeout()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(u.p.cfg.ConfirmPollPeriod())
	defer ticker.Stop()

	for {
		rctx, cancel := u.requestCtx(ctx)
		receipt, err := u.p.client.Receipt(rctx, hash)
		cancel()
		switch {
		case errors.Is(err, ErrReceiptNotFound):
			u.p.lggr.Debugw("Receipt not available yet", "txHash", hash.String())
		case err != nil:
			return errors.Wrapf(err, "failed to fetch receipt for tx %s", hash)
		case receipt.Status == TxStatusRejected:
			u.res.Receipt = &receipt
			u.transition(StateRejected)
			u.p.lggr.Warnw("set_config transaction rejected", "contract", u.contract, "txHash", hash.String(), "reason", receipt.StatusData)
			return nil
		case receipt.Status.Accepted():
			u.res.Receipt = &receipt
			u.transition(StateConfirmed)
			u.p.lggr.Infow("set_config transaction accepted", "contract", u.contract, "txHash", hash.String(), "status", receipt.Status, "block", receipt.BlockNumber)
			return nil
		default:
			u.p.lggr.Debugw("Transaction pending", "txHash", hash.String(), "status", receipt.Status)
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "stopped waiting for tx %s; it may still be included", hash)
		case <-deadline.C:
			return &ChainTimeoutError{TxHash: hash, Waited: timeout}
		case <-ticker.C:
		}
	}
}

// Verify decodes the emitted ConfigSet event and compares it with the request.
// Differences are recorded in Result.Mismatch. Only failures to obtain or decrypt
// the event are returned as errors.
func (u *Update) Verify(ctx context.Context) error {
	if err := u.expect(StateConfirmed); err != nil {
		return err
	}
	ev, err := event.FindConfigSet(u.res.Receipt.Events, u.req.Contract)
	if errors.Is(err, event.ErrNotFound) {
		rctx, cancel := u.requestCtx(ctx)
		ev, err = u.p.client.LatestConfigSet(rctx, u.req.Contract)
		cancel()
	}
	if err != nil {
		u.transition(StateVerificationFailed)
		return errors.Wrap(err, "failed to read ConfigSet event")
	}
	u.res.Event = &ev

	var reasons []string
	if err = ev.CheckDigestPrefix(); err != nil {
		reasons = append(reasons, err.Error())
	}
	if ev.F != u.req.F {
		reasons = append(reasons, fmt.Sprintf("f is %d, expected %d", ev.F, u.req.F))
	}
	if len(ev.OnchainConfig) != 0 {
		reasons = append(reasons, fmt.Sprintf("onchain config has %d felts, expected none", len(ev.OnchainConfig)))
	}
	if ev.OffchainConfigVersion != codec.OffchainConfigVersion {
		reasons = append(reasons, fmt.Sprintf("offchain config version is %d, expected %d", ev.OffchainConfigVersion, codec.OffchainConfigVersion))
	}
	reasons = append(reasons, compareOracles(u.req.Oracles, ev.Oracles)...)

	decoded, err := codec.Decode(ev.Input(), u.req.Secret)
	if err != nil {
		u.transition(StateVerificationFailed)
		return errors.Wrap(err, "failed to decode on-chain offchain config")
	}
	u.res.Decoded = &decoded

	expected := u.req.Config.Projection()
	delta := diff.Diff(expected, decoded)
	if len(reasons) > 0 || !delta.Empty() {
		pretty, _ := diff.PrettyDiff(expected, decoded)
		u.res.Mismatch = &VerificationMismatchError{Expected: expected, Actual: decoded, Delta: delta, Pretty: pretty, Reasons: reasons}
		u.transition(StateVerificationFailed)
		u.p.lggr.Errorw("On-chain config does not match intended config", "contract", u.contract, "err", u.res.Mismatch, "diff", pretty)
		return nil
	}
	u.res.SuccessfulConfiguration = true
	u.transition(StateVerified)
	u.p.lggr.Infow("Config verified", "contract", u.contract, "configCount", ev.ConfigCount, "digest", ev.LatestConfigDigest.Hex())
	return nil
}

func compareOracles(expected, actual []codec.Oracle) []string {
	if len(expected) != len(actual) {
		return []string{fmt.Sprintf("%d oracles on-chain, expected %d", len(actual), len(expected))}
	}
	var out []string
	for i := range expected {
		if !expected[i].Signer.Equal(actual[i].Signer) {
			out = append(out, fmt.Sprintf("oracles[%d].signer is %s, expected %s", i, actual[i].Signer, expected[i].Signer))
		}
		if !expected[i].Transmitter.Equal(actual[i].Transmitter) {
			out = append(out, fmt.Sprintf("oracles[%d].transmitter is %s, expected %s", i, actual[i].Transmitter, expected[i].Transmitter))
		}
	}
	return out
}

