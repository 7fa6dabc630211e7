package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartcontractkit/chainlink-relay/pkg/logger"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/config"
)

type options struct {
	typ      string
	input    string
	rdd      string
	contract string
	secret   string
	random   bool
	felts    string
	prev     string
	next     string
	simulate bool
	yes      bool
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ocr2config", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&opts.typ, "type", "", "one of encode, decode, diff, verify, run")
	fs.StringVar(&opts.input, "input", "", "set_config input JSON file")
	fs.StringVar(&opts.rdd, "rdd", "", "RDD JSON file, used with -contract instead of -input")
	fs.StringVar(&opts.contract, "contract", "", "aggregator contract address")
	fs.StringVar(&opts.secret, "secret", "", "offchain config secret (defaults to $SECRET)")
	fs.BoolVar(&opts.random, "random-secret", false, "generate a fresh secret; it is printed with the output")
	fs.StringVar(&opts.felts, "felts", "", "JSON array of offchain config felts to decode")
	fs.StringVar(&opts.prev, "prev", "", "offchain config JSON file to diff from")
	fs.StringVar(&opts.next, "next", "", "offchain config JSON file to diff to")
	fs.BoolVar(&opts.simulate, "simulate", false, "run against an in-memory chain")
	fs.BoolVar(&opts.yes, "yes", false, "approve the review without prompting")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.typ == "" {
		fs.Usage()
		return opts, fmt.Errorf("-type is required")
	}
	return opts, nil
}

func main() {
	lggr, err := logger.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	lggr = logger.With(lggr, "project", "starknet", "component", "ocr2config")

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	env, err := config.ParseEnv()
	if err != nil {
		lggr.Errorw("failed to parse environment", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = run(ctx, opts, env, lggr, os.Stdin, os.Stdout); err != nil {
		lggr.Errorw("ocr2config failed", "type", opts.typ, "error", err)
		cancel()
		os.Exit(1)
	}
}
