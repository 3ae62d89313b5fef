package pipeline

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// Asset id 0 is the exchange's reserved identifier for the quote currency
// (USDC) leg of a fill.
//
// Decimal conventions: USDC amounts are 6-decimal base units. Outcome-share
// amounts in fill events carry an extra 1e6 price-scale factor on top of the
// 6 share decimals, so one share is 1e12 base units. Dividing the scaled
// quote units by the scaled share units yields the quote-per-share price
// directly.
const (
	quoteUnit = 1e6
	shareUnit = 1e12
)

// ClassifyError reports a degenerate fill that cannot be priced, i.e. a zero
// amount on either leg.
type ClassifyError struct {
	TxHash common.Hash
	Reason string
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("pipeline: classify fill %s: %s", e.TxHash.Hex(), e.Reason)
}

// Classify determines whether the tracked wallet participated in the fill
// and, if so, derives side, traded asset, price, and size.
//
// It returns ok=false (not an error) when neither maker nor taker is the
// target. When the target appears on both sides of a self-trade, the maker
// role takes precedence. A zero amount on either leg fails with
// ClassifyError before any ratio is computed.
func Classify(fill domain.DecodedFill, target common.Address) (domain.ClassifiedFill, bool, error) {
	var ownAsset, ownAmount, counterAsset, counterAmount *big.Int
	switch {
	case fill.Maker == target:
		ownAsset, ownAmount = fill.MakerAssetID, fill.MakerAmountFilled
		counterAsset, counterAmount = fill.TakerAssetID, fill.TakerAmountFilled
	case fill.Taker == target:
		ownAsset, ownAmount = fill.TakerAssetID, fill.TakerAmountFilled
		counterAsset, counterAmount = fill.MakerAssetID, fill.MakerAmountFilled
	default:
		return domain.ClassifiedFill{}, false, nil
	}

	if ownAmount.Sign() == 0 || counterAmount.Sign() == 0 {
		return domain.ClassifiedFill{}, false, &ClassifyError{
			TxHash: fill.TxHash,
			Reason: "zero amount filled",
		}
	}

	// If the target gave the quote asset they received shares (BUY); the
	// traded asset is the counterparty's. Otherwise they gave shares (SELL).
	var side domain.TradeSide
	var assetID, quoteRaw, shareRaw *big.Int
	if ownAsset.Sign() == 0 {
		side = domain.SideBuy
		assetID = counterAsset
		quoteRaw = ownAmount
		shareRaw = counterAmount
	} else {
		side = domain.SideSell
		assetID = ownAsset
		quoteRaw = counterAmount
		shareRaw = ownAmount
	}

	quoteUnits := new(big.Float).Quo(new(big.Float).SetInt(quoteRaw), big.NewFloat(quoteUnit))
	shareUnits := new(big.Float).Quo(new(big.Float).SetInt(shareRaw), big.NewFloat(shareUnit))

	size, _ := quoteUnits.Float64()
	price, _ := new(big.Float).Quo(quoteUnits, shareUnits).Float64()

	return domain.ClassifiedFill{
		Side:     side,
		AssetID:  assetID.String(),
		SizeUSDC: size,
		Price:    price,
		TxHash:   fill.TxHash,
	}, true, nil
}
