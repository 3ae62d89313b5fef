package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DecodedFill is the structured view of one OrderFilled event. Asset ids and
// amounts are arbitrary-precision: 256-bit on-chain values must never pass
// through float64 before decimal scaling.
type DecodedFill struct {
	Maker             common.Address
	Taker             common.Address
	MakerAssetID      *big.Int
	TakerAssetID      *big.Int
	MakerAmountFilled *big.Int
	TakerAmountFilled *big.Int
	TxHash            common.Hash
	BlockNumber       uint64
}

// ClassifiedFill is a fill attributed to the tracked wallet, with direction,
// price, and size resolved. AssetID is the decimal string form of the traded
// outcome-token id, ready for a metadata lookup.
type ClassifiedFill struct {
	Side     TradeSide
	AssetID  string
	SizeUSDC float64
	Price    float64
	TxHash   common.Hash
}
