package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/smartcontractkit/chainlink-relay/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/chainlink-starknet/pkg/internal/cltest"
	"github.com/smartcontractkit/chainlink-starknet/pkg/internal/testutils"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/event"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type handler func(t *testing.T, params []json.RawMessage) (interface{}, *rpcError)

// stubNode serves JSON-RPC requests from per-method handlers and records every call.
type stubNode struct {
	t        *testing.T
	handlers map[string]handler

	mu    sync.Mutex
	calls []string
}

func newStubNode(t *testing.T, handlers map[string]handler) (*stubNode, string) {
	n := &stubNode{t: t, handlers: handlers}
	srv := httptest.NewServer(n)
	t.Cleanup(srv.Close)
	return n, srv.URL
}

func (n *stubNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	n.Do(func() {
		n.calls = append(n.calls, req.Method)
		h, ok := n.handlers[req.Method]
		if !ok {
			resp["error"] = rpcError{Code: -32601, Message: "method not found"}
		} else if result, rerr := h(n.t, req.Params); rerr != nil {
			resp["error"] = rerr
		} else {
			resp["result"] = result
		}
	})
	w.Header().Set("Content-Type", "application/json")
	require.NoError(n.t, json.NewEncoder(w).Encode(resp))
}

// Do runs fn while no handler is running, for state shared with handlers.
func (n *stubNode) Do(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn()
}

func (n *stubNode) Calls() (out []string) {
	n.Do(func() { out = append(out, n.calls...) })
	return out
}

type fakeSigner struct {
	tx  InvokeTransaction
	sig []felt.Felt
	err error
}

func (s *fakeSigner) SignInvoke(_ context.Context, tx InvokeTransaction) ([]felt.Felt, error) {
	s.tx = tx
	return s.sig, s.err
}

var (
	testAccount  = felt.MustFromString("0x0555")
	testContract = felt.MustFromString("0x0abc")
)

func decodeCall(t *testing.T, params []json.RawMessage) FunctionCall {
	require.Len(t, params, 2)
	var call FunctionCall
	require.NoError(t, json.Unmarshal(params[0], &call))
	var block string
	require.NoError(t, json.Unmarshal(params[1], &block))
	assert.Equal(t, "latest", block)
	return call
}

func TestClient_Invoke(t *testing.T) {
	calldata := []felt.Felt{felt.New(1), felt.New(2), felt.New(3)}
	var submitted []json.RawMessage
	node, url := newStubNode(t, map[string]handler{
		"starknet_call": func(t *testing.T, params []json.RawMessage) (interface{}, *rpcError) {
			call := decodeCall(t, params)
			assert.Equal(t, testAccount, call.ContractAddress)
			assert.Equal(t, getNonceSelector, call.EntryPointSelector)
			return []string{"0x7"}, nil
		},
		"starknet_addInvokeTransaction": func(t *testing.T, params []json.RawMessage) (interface{}, *rpcError) {
			submitted = params
			return map[string]string{"transaction_hash": "0xfeed"}, nil
		},
	})
	signer := &fakeSigner{sig: []felt.Felt{felt.New(0x51), felt.New(0x52)}}
	c := NewClient(url, "SN_GOERLI", testAccount, signer, logger.Test(t))

	hash, err := c.Invoke(testutils.Context(t), testContract, "set_config", calldata, big.NewInt(30000000000000))
	require.NoError(t, err)
	assert.Equal(t, felt.New(0xfeed), hash)
	assert.Equal(t, []string{"starknet_call", "starknet_addInvokeTransaction"}, node.Calls())

	wantCalldata := []felt.Felt{
		felt.New(1), testContract, felt.Selector("set_config"), felt.New(0), felt.New(3),
		felt.New(3), felt.New(1), felt.New(2), felt.New(3),
		felt.New(7),
	}
	assert.Equal(t, testAccount, signer.tx.ContractAddress)
	assert.Equal(t, executeSelector, signer.tx.EntryPointSelector)
	assert.Equal(t, wantCalldata, signer.tx.Calldata)
	assert.Equal(t, felt.New(7), signer.tx.Nonce)
	assert.Equal(t, "SN_GOERLI", signer.tx.ChainID)
	assert.Equal(t, invokeVersion, signer.tx.Version)

	node.Do(func() {}) // sync with the handler
	require.Len(t, submitted, 4)
	var call FunctionCall
	require.NoError(t, json.Unmarshal(submitted[0], &call))
	assert.Equal(t, wantCalldata, call.Calldata)
	var sig []felt.Felt
	require.NoError(t, json.Unmarshal(submitted[1], &sig))
	assert.Equal(t, signer.sig, sig)
	assert.JSONEq(t, `"0x1b48eb57e000"`, string(submitted[2]))
	assert.JSONEq(t, `"0x0"`, string(submitted[3]))
}

func TestClient_InvokeErrors(t *testing.T) {
	_, url := newStubNode(t, map[string]handler{
		"starknet_call": func(*testing.T, []json.RawMessage) (interface{}, *rpcError) {
			return []string{"0x0"}, nil
		},
		"starknet_addInvokeTransaction": func(*testing.T, []json.RawMessage) (interface{}, *rpcError) {
			return nil, &rpcError{Code: 40, Message: "contract error"}
		},
	})
	ctx := testutils.Context(t)

	c := NewClient(url, "SN_GOERLI", testAccount, &fakeSigner{}, logger.Test(t))
	_, err := c.Invoke(ctx, testContract, "set_config", nil, big.NewInt(0))
	assert.Error(t, err)

	_, err = c.Invoke(ctx, testContract, "set_config", nil, big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract error")

	signErr := errors.New("locked keystore")
	c = NewClient(url, "SN_GOERLI", testAccount, &fakeSigner{err: signErr}, logger.Test(t))
	_, err = c.Invoke(ctx, testContract, "set_config", nil, big.NewInt(1))
	assert.True(t, errors.Is(err, signErr))
}

func TestClient_Receipt(t *testing.T) {
	found := felt.New(0x1)
	unknown := felt.New(0x2)
	broken := felt.New(0x3)
	_, url := newStubNode(t, map[string]handler{
		"starknet_getTransactionReceipt": func(t *testing.T, params []json.RawMessage) (interface{}, *rpcError) {
			require.Len(t, params, 1)
			var hash felt.Felt
			require.NoError(t, json.Unmarshal(params[0], &hash))
			switch {
			case hash.Equal(found):
				return map[string]interface{}{
					"transaction_hash": "0x1",
					"status":           "ACCEPTED_ON_L2",
					"block_number":     12,
					"events": []map[string]interface{}{
						{"from_address": "0xabc", "keys": []string{"0x9"}, "data": []string{"0x1", "0x2"}},
					},
				}, nil
			case hash.Equal(unknown):
				return nil, &rpcError{Code: errCodeInvalidTxHash, Message: "Invalid transaction hash"}
			}
			return nil, &rpcError{Code: -32603, Message: "internal error"}
		},
	})
	c := NewClient(url, "SN_GOERLI", testAccount, &fakeSigner{}, logger.Test(t))
	ctx := testutils.Context(t)

	r, err := c.Receipt(ctx, found)
	require.NoError(t, err)
	assert.Equal(t, setconfig.TxStatusAcceptedOnL2, r.Status)
	assert.True(t, r.Status.Accepted())
	assert.Equal(t, uint64(12), r.BlockNumber)
	require.Len(t, r.Events, 1)
	assert.Equal(t, testContract, r.Events[0].FromAddress)
	assert.Equal(t, []felt.Felt{felt.New(1), felt.New(2)}, r.Events[0].Data)

	_, err = c.Receipt(ctx, unknown)
	assert.True(t, errors.Is(err, setconfig.ErrReceiptNotFound))

	_, err = c.Receipt(ctx, broken)
	require.Error(t, err)
	assert.False(t, errors.Is(err, setconfig.ErrReceiptNotFound))
}

// emittedConfigSet runs an update on a simulated chain and returns the raw event.
func emittedConfigSet(t *testing.T) (event.ConfigSet, event.Event) {
	chain := setconfig.NewSimulatedChain("SN_GOERLI")
	req := cltest.Request(t, 4, 1)
	req.Contract = testContract
	p := setconfig.New(chain, testutils.NewConfig(t, nil), logger.Test(t), setconfig.WithReviewer(setconfig.ReviewerFunc(func(context.Context, setconfig.Review) error { return nil })))
	res, err := p.Run(testutils.Context(t), req)
	require.NoError(t, err)
	require.True(t, res.SuccessfulConfiguration)
	require.Len(t, res.Receipt.Events, 1)
	return *res.Event, res.Receipt.Events[0]
}

func TestClient_LatestConfigSet(t *testing.T) {
	want, raw := emittedConfigSet(t)
	other := raw
	other.FromAddress = felt.New(0xdead)

	configured := true
	var pages []int
	node, url := newStubNode(t, map[string]handler{
		"starknet_call": func(t *testing.T, params []json.RawMessage) (interface{}, *rpcError) {
			call := decodeCall(t, params)
			assert.Equal(t, testContract, call.ContractAddress)
			assert.Equal(t, latestConfigDetailsSelector, call.EntryPointSelector)
			if !configured {
				return []string{"0x0", "0x0", "0x0"}, nil
			}
			return []string{"0x1", "0x2a", "0x4abcd"}, nil
		},
		"starknet_getEvents": func(t *testing.T, params []json.RawMessage) (interface{}, *rpcError) {
			require.Len(t, params, 1)
			var filter eventFilter
			require.NoError(t, json.Unmarshal(params[0], &filter))
			assert.Equal(t, uint64(42), filter.FromBlock.BlockNumber)
			assert.Equal(t, uint64(42), filter.ToBlock.BlockNumber)
			assert.Equal(t, testContract, filter.Address)
			assert.Equal(t, []felt.Felt{event.ConfigSetSelector}, filter.Keys)
			pages = append(pages, filter.PageNumber)
			if filter.PageNumber == 0 {
				return eventsResponse{Events: []event.Event{other}, PageNumber: 0}, nil
			}
			return eventsResponse{Events: []event.Event{raw}, PageNumber: filter.PageNumber, IsLastPage: true}, nil
		},
	})
	c := NewClient(url, "SN_GOERLI", testAccount, &fakeSigner{}, logger.Test(t))
	ctx := testutils.Context(t)

	got, err := c.LatestConfigSet(ctx, testContract)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	node.Do(func() {
		assert.Equal(t, []int{0, 1}, pages)
		configured = false
	})
	_, err = c.LatestConfigSet(ctx, testContract)
	assert.True(t, errors.Is(err, event.ErrNotFound))
	assert.Equal(t, []string{"starknet_call", "starknet_getEvents", "starknet_getEvents", "starknet_call"}, node.Calls())
}

func TestClient_LatestConfigSetMissingEvent(t *testing.T) {
	_, url := newStubNode(t, map[string]handler{
		"starknet_call": func(*testing.T, []json.RawMessage) (interface{}, *rpcError) {
			return []string{"0x1", "0x2a", "0x4abcd"}, nil
		},
		"starknet_getEvents": func(*testing.T, []json.RawMessage) (interface{}, *rpcError) {
			return eventsResponse{IsLastPage: true}, nil
		},
	})
	c := NewClient(url, "SN_GOERLI", testAccount, &fakeSigner{}, logger.Test(t))
	_, err := c.LatestConfigSet(testutils.Context(t), testContract)
	require.Error(t, err)
	assert.False(t, errors.Is(err, event.ErrNotFound))
}

func TestExecuteCalldata(t *testing.T) {
	out := executeCalldata(testContract, felt.New(9), nil, felt.New(4))
	assert.Equal(t, []felt.Felt{felt.New(1), testContract, felt.New(9), felt.New(0), felt.New(0), felt.New(0), felt.New(4)}, out)
}
