package pipeline

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/alanyoungcy/polymirror/internal/platform/evm"
)

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func fillLog(maker, taker common.Address, makerAsset, takerAsset, makerAmt, takerAmt *big.Int) evm.Log {
	data := make([]byte, 0, fillDataLen)
	for _, v := range []*big.Int{makerAsset, takerAsset, makerAmt, takerAmt} {
		data = append(data, common.LeftPadBytes(v.Bytes(), 32)...)
	}
	return evm.Log{
		Topics: []common.Hash{
			common.HexToHash("0x367819359e75e3532e2174f05537c9e13e43073e047f9e1f3768ba95139a130e"),
			addressTopic(maker),
			addressTopic(taker),
		},
		Data:            hexutil.Bytes(data),
		BlockNumber:     hexutil.Uint64(12345),
		TransactionHash: common.HexToHash("0xdead"),
	}
}

func TestDecodeFill(t *testing.T) {
	makerAmt := new(big.Int)
	makerAmt.SetString("2000000000000", 10)

	log := fillLog(targetAddr, otherAddr, big.NewInt(77), big.NewInt(0), makerAmt, big.NewInt(1_000_000))

	fill, err := DecodeFill(log)
	if err != nil {
		t.Fatalf("DecodeFill() error = %v", err)
	}

	if fill.Maker != targetAddr {
		t.Errorf("Maker = %s, want %s", fill.Maker.Hex(), targetAddr.Hex())
	}
	if fill.Taker != otherAddr {
		t.Errorf("Taker = %s, want %s", fill.Taker.Hex(), otherAddr.Hex())
	}
	if fill.MakerAssetID.Cmp(big.NewInt(77)) != 0 {
		t.Errorf("MakerAssetID = %s, want 77", fill.MakerAssetID)
	}
	if fill.TakerAssetID.Sign() != 0 {
		t.Errorf("TakerAssetID = %s, want 0", fill.TakerAssetID)
	}
	if fill.MakerAmountFilled.Cmp(makerAmt) != 0 {
		t.Errorf("MakerAmountFilled = %s, want %s", fill.MakerAmountFilled, makerAmt)
	}
	if fill.TakerAmountFilled.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Errorf("TakerAmountFilled = %s, want 1000000", fill.TakerAmountFilled)
	}
	if fill.BlockNumber != 12345 {
		t.Errorf("BlockNumber = %d, want 12345", fill.BlockNumber)
	}
	if fill.TxHash != log.TransactionHash {
		t.Errorf("TxHash = %s, want %s", fill.TxHash.Hex(), log.TransactionHash.Hex())
	}
}

func TestDecodeFillLargeAssetID(t *testing.T) {
	// Asset ids are full 256-bit token ids in production; they must survive
	// decoding without truncation.
	assetID := new(big.Int)
	assetID.SetString("65818619657568813474341868652308942079804600407180455332660572090427604545837", 10)

	log := fillLog(targetAddr, otherAddr, assetID, big.NewInt(0), big.NewInt(1), big.NewInt(1))

	fill, err := DecodeFill(log)
	if err != nil {
		t.Fatalf("DecodeFill() error = %v", err)
	}
	if fill.MakerAssetID.Cmp(assetID) != 0 {
		t.Errorf("MakerAssetID = %s, want %s", fill.MakerAssetID, assetID)
	}
}

func TestDecodeFillMalformed(t *testing.T) {
	valid := fillLog(targetAddr, otherAddr, big.NewInt(1), big.NewInt(0), big.NewInt(1), big.NewInt(1))

	tests := []struct {
		name   string
		mutate func(l *evm.Log)
	}{
		{"missing indexed topics", func(l *evm.Log) { l.Topics = l.Topics[:1] }},
		{"short data payload", func(l *evm.Log) { l.Data = l.Data[:100] }},
		{"empty data payload", func(l *evm.Log) { l.Data = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := valid
			log.Topics = append([]common.Hash(nil), valid.Topics...)
			log.Data = append(hexutil.Bytes(nil), valid.Data...)
			tt.mutate(&log)

			_, err := DecodeFill(log)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeFill() error = %v, want *DecodeError", err)
			}
		})
	}
}
