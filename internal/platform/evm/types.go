package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FilterQuery describes an eth_getLogs filter: a contract address, an ordered
// topic list, and an inclusive block range.
type FilterQuery struct {
	FromBlock uint64
	ToBlock   uint64
	Address   common.Address
	Topics    []common.Hash
}

// Log is one raw ledger event occurrence exactly as returned by eth_getLogs.
// It is immutable once retrieved; the first topic is the event signature
// hash and the data payload holds the non-indexed fields, fixed-width and
// concatenated.
type Log struct {
	Address         common.Address `json:"address"`
	Topics          []common.Hash  `json:"topics"`
	Data            hexutil.Bytes  `json:"data"`
	BlockNumber     hexutil.Uint64 `json:"blockNumber"`
	TransactionHash common.Hash    `json:"transactionHash"`
	LogIndex        hexutil.Uint64 `json:"logIndex"`
	Removed         bool           `json:"removed"`
}

// filterParams is the wire form of FilterQuery with hex-encoded block
// numbers.
type filterParams struct {
	FromBlock string        `json:"fromBlock"`
	ToBlock   string        `json:"toBlock"`
	Address   string        `json:"address"`
	Topics    []common.Hash `json:"topics"`
}

// callParams is the wire form of an eth_call transaction object.
type callParams struct {
	To   string `json:"to"`
	Data string `json:"data"`
}
