// Package rpc implements the chain access of the set_config workflow over the node's
// JSON-RPC API.
package rpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/logger"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/event"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
)

// Signer signs invoke transactions on behalf of the account. Key custody stays with
// the implementation.
type Signer interface {
	SignInvoke(ctx context.Context, tx InvokeTransaction) ([]felt.Felt, error)
}

var _ setconfig.Client = (*Client)(nil)

type Client struct {
	rpc     jsonrpc.RPCClient
	chainID string
	account felt.Felt
	signer  Signer
	lggr    logger.Logger
}

func NewClient(endpoint, chainID string, account felt.Felt, signer Signer, lggr logger.Logger) *Client {
	return &Client{
		rpc:     jsonrpc.NewClient(endpoint),
		chainID: chainID,
		account: account,
		signer:  signer,
		lggr:    lggr,
	}
}

// Call runs a read-only contract call against the latest block.
func (c *Client) Call(ctx context.Context, call FunctionCall) ([]felt.Felt, error) {
	if call.Calldata == nil {
		call.Calldata = []felt.Felt{}
	}
	var out []felt.Felt
	if err := c.rpc.CallForInto(ctx, &out, "starknet_call", []interface{}{call, latestBlock}); err != nil {
		return nil, errors.Wrapf(err, "starknet_call %s", call.ContractAddress)
	}
	return out, nil
}

// Nonce reads the account nonce.
func (c *Client) Nonce(ctx context.Context) (felt.Felt, error) {
	out, err := c.Call(ctx, FunctionCall{ContractAddress: c.account, EntryPointSelector: getNonceSelector})
	if err != nil {
		return felt.Felt{}, err
	}
	if len(out) != 1 {
		return felt.Felt{}, errors.Errorf("get_nonce returned %d values", len(out))
	}
	return out[0], nil
}

// Invoke wraps the call in a single-call __execute__ of the account, signs it and
// submits it.
func (c *Client) Invoke(ctx context.Context, contract felt.Felt, entrypoint string, calldata []felt.Felt, maxFee *big.Int) (felt.Felt, error) {
	if maxFee == nil || maxFee.Sign() <= 0 {
		return felt.Felt{}, errors.New("max fee must be positive")
	}
	nonce, err := c.Nonce(ctx)
	if err != nil {
		return felt.Felt{}, errors.Wrap(err, "failed to read account nonce")
	}
	tx := InvokeTransaction{
		FunctionCall: FunctionCall{
			ContractAddress:    c.account,
			EntryPointSelector: executeSelector,
			Calldata:           executeCalldata(contract, felt.Selector(entrypoint), calldata, nonce),
		},
		MaxFee:  new(big.Int).Set(maxFee),
		Version: invokeVersion,
		Nonce:   nonce,
		ChainID: c.chainID,
	}
	signature, err := c.signer.SignInvoke(ctx, tx)
	if err != nil {
		return felt.Felt{}, errors.Wrap(err, "failed to sign invoke transaction")
	}
	if signature == nil {
		signature = []felt.Felt{}
	}

	var out addInvokeResponse
	params := []interface{}{tx.FunctionCall, signature, "0x" + tx.MaxFee.Text(16), fmt.Sprintf("0x%x", tx.Version)}
	if err = c.rpc.CallForInto(ctx, &out, "starknet_addInvokeTransaction", params); err != nil {
		return felt.Felt{}, errors.Wrapf(err, "starknet_addInvokeTransaction %s.%s", contract, entrypoint)
	}
	c.lggr.Debugw("Invoke transaction accepted by node", "contract", contract.String(), "entrypoint", entrypoint, "txHash", out.TransactionHash.String(), "nonce", nonce.String())
	return out.TransactionHash, nil
}

// executeCalldata lays out a single call for an account's __execute__:
// [1, to, selector, data_offset=0, data_len, calldata_len, calldata..., nonce]
func executeCalldata(to, selector felt.Felt, calldata []felt.Felt, nonce felt.Felt) []felt.Felt {
	n := felt.New(uint64(len(calldata)))
	out := make([]felt.Felt, 0, 7+len(calldata))
	out = append(out, felt.New(1), to, selector, felt.New(0), n, n)
	out = append(out, calldata...)
	return append(out, nonce)
}

// Receipt returns setconfig.ErrReceiptNotFound while the node does not know the hash.
func (c *Client) Receipt(ctx context.Context, txHash felt.Felt) (setconfig.Receipt, error) {
	var out receiptResponse
	err := c.rpc.CallForInto(ctx, &out, "starknet_getTransactionReceipt", []interface{}{txHash})
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) && (rpcErr.Code == errCodeInvalidTxHash || rpcErr.Code == errCodeTxHashNotFound) {
		return setconfig.Receipt{}, setconfig.ErrReceiptNotFound
	}
	if err != nil {
		return setconfig.Receipt{}, errors.Wrapf(err, "starknet_getTransactionReceipt %s", txHash)
	}
	return out.receipt(), nil
}

// LatestConfigSet reads latest_config_details from the aggregator and fetches the
// ConfigSet event emitted in that block.
func (c *Client) LatestConfigSet(ctx context.Context, contract felt.Felt) (event.ConfigSet, error) {
	details, err := c.Call(ctx, FunctionCall{ContractAddress: contract, EntryPointSelector: latestConfigDetailsSelector})
	if err != nil {
		return event.ConfigSet{}, err
	}
	// (config_count, block_number, config_digest)
	if len(details) != 3 {
		return event.ConfigSet{}, errors.Errorf("latest_config_details returned %d values", len(details))
	}
	if details[0].IsZero() {
		return event.ConfigSet{}, event.ErrNotFound
	}
	block, ok := details[1].Uint64()
	if !ok {
		return event.ConfigSet{}, errors.Errorf("block number %s out of range", details[1])
	}

	filter := eventFilter{
		FromBlock: blockID{BlockNumber: block},
		ToBlock:   blockID{BlockNumber: block},
		Address:   contract,
		Keys:      []felt.Felt{event.ConfigSetSelector},
		PageSize:  pageSize,
	}
	for {
		var page eventsResponse
		if err = c.rpc.CallForInto(ctx, &page, "starknet_getEvents", []interface{}{filter}); err != nil {
			return event.ConfigSet{}, errors.Wrapf(err, "starknet_getEvents %s at block %d", contract, block)
		}
		ev, err := event.FindConfigSet(page.Events, contract)
		if err == nil {
			return ev, nil
		}
		if !errors.Is(err, event.ErrNotFound) {
			return event.ConfigSet{}, err
		}
		if page.IsLastPage || len(page.Events) == 0 {
			return event.ConfigSet{}, errors.Errorf("ConfigSet event of %s not found in block %d", contract, block)
		}
		filter.PageNumber++
	}
}
