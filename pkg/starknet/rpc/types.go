package rpc

import (
	"math/big"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/felt"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/event"
	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
)

const (
	errCodeInvalidTxHash  = 25
	errCodeTxHashNotFound = 29

	latestBlock = "latest"
	pageSize    = 100

	// invokeVersion is the transaction version of a cairo 0 account __execute__ call.
	invokeVersion uint64 = 0
)

var (
	executeSelector             = felt.Selector("__execute__")
	getNonceSelector            = felt.Selector("get_nonce")
	latestConfigDetailsSelector = felt.Selector("latest_config_details")
)

type FunctionCall struct {
	ContractAddress    felt.Felt   `json:"contract_address"`
	EntryPointSelector felt.Felt   `json:"entry_point_selector"`
	Calldata           []felt.Felt `json:"calldata"`
}

// InvokeTransaction is an account __execute__ call ready to be signed.
type InvokeTransaction struct {
	FunctionCall
	MaxFee  *big.Int
	Version uint64
	Nonce   felt.Felt
	ChainID string
}

type addInvokeResponse struct {
	TransactionHash felt.Felt `json:"transaction_hash"`
}

type receiptResponse struct {
	TransactionHash felt.Felt     `json:"transaction_hash"`
	Status          string        `json:"status"`
	StatusData      string        `json:"status_data"`
	BlockNumber     uint64        `json:"block_number"`
	Events          []event.Event `json:"events"`
}

func (r receiptResponse) receipt() setconfig.Receipt {
	return setconfig.Receipt{
		TxHash:      r.TransactionHash,
		Status:      setconfig.TxStatus(r.Status),
		StatusData:  r.StatusData,
		BlockNumber: r.BlockNumber,
		Events:      r.Events,
	}
}

type blockID struct {
	BlockNumber uint64 `json:"block_number"`
}

type eventFilter struct {
	FromBlock  blockID     `json:"from_block"`
	ToBlock    blockID     `json:"to_block"`
	Address    felt.Felt   `json:"address"`
	Keys       []felt.Felt `json:"keys"`
	PageSize   int         `json:"page_size"`
	PageNumber int         `json:"page_number"`
}

type eventsResponse struct {
	Events     []event.Event `json:"events"`
	PageNumber int           `json:"page_number"`
	IsLastPage bool          `json:"is_last_page"`
}
