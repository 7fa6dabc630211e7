package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/config"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/logger"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/codec"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/diff"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/input"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/offchainconfig"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/rpc"
)

const reviewAttempts = 3

func run(ctx context.Context, opts options, env config.Env, lggr logger.Logger, in io.Reader, out io.Writer) error {
	switch opts.typ {
	case "encode":
		return encode(opts, env, out)
	case "decode":
		return decode(opts, env, out)
	case "diff":
		return diffConfigs(opts, out)
	case "verify":
		return verify(ctx, opts, env, lggr, out)
	case "run":
		return runUpdate(ctx, opts, env, lggr, in, out)
	}
	return errors.Errorf("unknown -type %q", opts.typ)
}

type encodeOutput struct {
	Calldata       []felt.Felt `json:"calldata"`
	OffchainConfig []felt.Felt `json:"offchainConfig"`
	// Secret is only set when it was generated, so it can be recorded.
	Secret string `json:"secret,omitempty"`
}

func encode(opts options, env config.Env, out io.Writer) error {
	req, generated, err := loadRequest(opts, env)
	if err != nil {
		return err
	}
	contractInput, err := codec.Encode(req.Oracles, req.F, req.Config, req.Secret)
	if err != nil {
		return err
	}
	output := encodeOutput{Calldata: contractInput.Calldata(), OffchainConfig: contractInput.OffchainConfig}
	if generated {
		output.Secret = string(req.Secret)
	}
	return writeJSON(out, output)
}

func decode(opts options, env config.Env, out io.Writer) error {
	if opts.felts == "" {
		return errors.New("-felts is required")
	}
	var felts []felt.Felt
	if err := readJSON(opts.felts, &felts); err != nil {
		return err
	}
	secret, err := secretFrom(opts, env)
	if err != nil {
		return err
	}
	c, err := codec.DecodeOffchainConfig(felts, []byte(secret))
	if err != nil {
		return err
	}
	return writeJSON(out, c)
}

func diffConfigs(opts options, out io.Writer) error {
	if opts.prev == "" || opts.next == "" {
		return errors.New("-prev and -next are required")
	}
	var prev, next offchainconfig.OffchainConfig
	if err := readJSON(opts.prev, &prev); err != nil {
		return err
	}
	if err := readJSON(opts.next, &next); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, diff.Render(diff.Diff(prev.Projection(), next.Projection())))
	return err
}

// verify compares the latest on-chain config of a contract with the input.
func verify(ctx context.Context, opts options, env config.Env, lggr logger.Logger, out io.Writer) error {
	req, generated, err := loadRequest(opts, env)
	if err != nil {
		return err
	}
	if generated {
		return errors.New("verify needs the secret the config was encoded with, not a random one")
	}
	account, err := felt.ParseKey(env.Account)
	if err != nil && env.Account != "" {
		return errors.Wrap(err, "invalid STARKNET_ACCOUNT")
	}
	cfg := config.NewConfig(env.Chain, lggr)
	client := rpc.NewClient(env.RPCEndpoint, env.ChainID, account, unsupportedSigner{}, lggr)

	rctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
	defer cancel()
	ev, err := client.LatestConfigSet(rctx, req.Contract)
	if err != nil {
		return err
	}
	if err = ev.CheckDigestPrefix(); err != nil {
		return err
	}
	onchain, err := codec.Decode(ev.Input(), req.Secret)
	if err != nil {
		return err
	}
	expected := req.Config.Projection()
	delta := diff.Diff(expected, onchain)
	if _, err = fmt.Fprintln(out, diff.Render(delta)); err != nil {
		return err
	}
	if !delta.Empty() {
		pretty, _ := diff.PrettyDiff(expected, onchain)
		lggr.Errorw("On-chain config differs from input", "contract", req.Contract.String(), "diff", pretty)
		return errors.Errorf("on-chain config of %s differs from input in %d fields", req.Contract, len(delta))
	}
	return nil
}

type runOutput struct {
	State                   setconfig.State   `json:"state"`
	History                 []setconfig.State `json:"history"`
	TxHash                  *felt.Felt        `json:"txHash,omitempty"`
	ConfigCount             uint64            `json:"configCount,omitempty"`
	SuccessfulConfiguration bool              `json:"successfulConfiguration"`
	Mismatch                string            `json:"mismatch,omitempty"`
	Diff                    string            `json:"diff,omitempty"`
	Secret                  string            `json:"secret,omitempty"`
}

func runUpdate(ctx context.Context, opts options, env config.Env, lggr logger.Logger, in io.Reader, out io.Writer) error {
	if !opts.simulate {
		return errors.New("run submits transactions and needs a signer; only -simulate is available from the command line")
	}
	req, generated, err := loadRequest(opts, env)
	if err != nil {
		return err
	}
	var reviewer setconfig.Reviewer = setconfig.LogReviewer{Lggr: lggr}
	if !opts.yes {
		reviewer = input.ConfirmReviewer(input.NewReaderProvider(in, out), out, reviewAttempts)
	}
	chain := setconfig.NewSimulatedChain(env.ChainID)
	p := setconfig.New(chain, config.NewConfig(env.Chain, lggr), lggr, setconfig.WithReviewer(reviewer))

	res, err := setconfig.NewCoordinator(p).Run(ctx, req)
	if err != nil {
		return err
	}
	summary := runOutput{
		State:                   res.State,
		History:                 res.History,
		TxHash:                  res.TxHash,
		SuccessfulConfiguration: res.SuccessfulConfiguration,
	}
	if res.Event != nil {
		summary.ConfigCount = res.Event.ConfigCount
	}
	if generated {
		summary.Secret = string(req.Secret)
	}
	if res.Mismatch != nil {
		summary.Mismatch = res.Mismatch.Error()
		summary.Diff = res.Mismatch.Pretty
	}
	return writeJSON(out, summary)
}

// loadRequest reads -input or -rdd. generated reports whether the secret was
// freshly generated for this request.
func loadRequest(opts options, env config.Env) (req setconfig.Request, generated bool, err error) {
	var contract felt.Felt
	if opts.contract != "" {
		if contract, err = felt.ParseKey(opts.contract); err != nil {
			return setconfig.Request{}, false, errors.Wrap(err, "invalid -contract")
		}
	}
	secret, err := secretFrom(opts, env)
	if err != nil {
		return setconfig.Request{}, false, err
	}

	var in input.SetConfigInput
	switch {
	case opts.input != "":
		f, err := os.Open(opts.input)
		if err != nil {
			return setconfig.Request{}, false, err
		}
		defer f.Close()
		if in, err = input.LoadSetConfigInput(f); err != nil {
			return setconfig.Request{}, false, err
		}
	case opts.rdd != "":
		if opts.contract == "" {
			return setconfig.Request{}, false, errors.New("-rdd needs -contract")
		}
		f, err := os.Open(opts.rdd)
		if err != nil {
			return setconfig.Request{}, false, err
		}
		defer f.Close()
		rdd, err := input.LoadRDD(f)
		if err != nil {
			return setconfig.Request{}, false, err
		}
		if in, err = rdd.SetConfigInput(opts.contract, secret); err != nil {
			return setconfig.Request{}, false, err
		}
	default:
		return setconfig.Request{}, false, errors.New("one of -input or -rdd is required")
	}
	in.RandomSecret = in.RandomSecret || opts.random
	req, err = in.Request(contract, secret)
	return req, in.RandomSecret, err
}

// secretFrom prefers the flag over $SECRET. It may still be empty when the input
// file carries its own secret.
func secretFrom(opts options, env config.Env) (string, error) {
	if opts.secret != "" {
		return opts.secret, nil
	}
	if opts.typ == "decode" && env.Secret == "" {
		return "", input.ErrMissingSecret
	}
	return env.Secret, nil
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(b, v), "failed to parse %s", path)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type unsupportedSigner struct{}

func (unsupportedSigner) SignInvoke(context.Context, rpc.InvokeTransaction) ([]felt.Felt, error) {
	return nil, errors.New("signing is not supported from the command line")
}
