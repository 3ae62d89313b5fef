// Package pipeline contains the on-chain ingestion pipeline: decoding raw
// fill logs, classifying them against the tracked wallet, resolving market
// metadata, and coordinating the block-range scan.
package pipeline

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polymirror/internal/domain"
	"github.com/alanyoungcy/polymirror/internal/platform/evm"
)

// fillDataLen is the minimum data payload of an OrderFilled event: four
// consecutive 32-byte big-endian integers (makerAssetId, takerAssetId,
// makerAmountFilled, takerAmountFilled).
const fillDataLen = 4 * 32

// fillTopicCount is the event signature topic plus the two indexed address
// topics.
const fillTopicCount = 3

// DecodeError reports a malformed fill log payload. For correctly filtered
// logs this indicates a topic/schema mismatch and is treated as a logic
// invariant violation by the coordinator.
type DecodeError struct {
	TxHash common.Hash
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pipeline: decode fill %s: %s", e.TxHash.Hex(), e.Reason)
}

// DecodeFill extracts the structured fill from a raw OrderFilled log. It is
// total and pure: no I/O, no filtering by tracked wallet (that is the
// classifier's job).
//
// Layout: topic[1] and topic[2] carry the maker and taker addresses in their
// lower 20 bytes; the data payload carries the four amount fields.
func DecodeFill(log evm.Log) (domain.DecodedFill, error) {
	if len(log.Topics) < fillTopicCount {
		return domain.DecodedFill{}, &DecodeError{
			TxHash: log.TransactionHash,
			Reason: fmt.Sprintf("expected at least %d topics, got %d", fillTopicCount, len(log.Topics)),
		}
	}
	if len(log.Data) < fillDataLen {
		return domain.DecodedFill{}, &DecodeError{
			TxHash: log.TransactionHash,
			Reason: fmt.Sprintf("data payload %d bytes, want at least %d", len(log.Data), fillDataLen),
		}
	}

	data := []byte(log.Data)
	return domain.DecodedFill{
		// BytesToAddress keeps the lower 20 bytes of the 32-byte topic.
		Maker:             common.BytesToAddress(log.Topics[1].Bytes()),
		Taker:             common.BytesToAddress(log.Topics[2].Bytes()),
		MakerAssetID:      new(big.Int).SetBytes(data[0:32]),
		TakerAssetID:      new(big.Int).SetBytes(data[32:64]),
		MakerAmountFilled: new(big.Int).SetBytes(data[64:96]),
		TakerAmountFilled: new(big.Int).SetBytes(data[96:128]),
		TxHash:            log.TransactionHash,
		BlockNumber:       uint64(log.BlockNumber),
	}, nil
}
