package easytx

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/script"
)

const (
	SatoshiPerBitcoin = 100000000
	// MaxAmount 币的最大供应量
	MaxAmount = 21000000 * SatoshiPerBitcoin

	// minTxOutSize 8字节金额 + 1字节脚本长度
	minTxOutSize = 8 + 1
)

var ErrAmountOutOfRange = errors.New("amount out of range")

type TxOut struct {
	Amount    uint64               // 金额，单位聪
	PubScript *script.PubkeyScript // 锁定脚本
}

func NewTxOut(amount uint64, pubScript *script.PubkeyScript) (*TxOut, error) {
	if amount > MaxAmount {
		return nil, errors.Wrapf(ErrAmountOutOfRange, "%d", amount)
	}
	if pubScript == nil {
		pubScript = script.NewPubkeyScript()
	}
	return &TxOut{Amount: amount, PubScript: pubScript}, nil
}

// NewTxOutToAddress 按地址生成锁定脚本
func NewTxOutToAddress(amount uint64, address string) (*TxOut, error) {
	pubScript := script.NewPubkeyScript()
	if err := pubScript.SetToAddress(address); err != nil {
		return nil, errors.Wrap(err, "generate pubkey script failed")
	}
	return NewTxOut(amount, pubScript)
}

func (out *TxOut) Serialize(w *stream.Writer) {
	w.WriteUint64(out.Amount)
	out.pubScript().Serialize(w)
}

func (out *TxOut) Deserialize(r *stream.Reader) error {
	amount, err := r.ReadUint64()
	if err != nil {
		return errors.Wrap(err, "output amount")
	}
	if amount > MaxAmount {
		return errors.Wrapf(ErrAmountOutOfRange, "%d", amount)
	}

	pubScript := script.NewPubkeyScript()
	if err = pubScript.Deserialize(r); err != nil {
		return errors.Wrap(err, "output script")
	}

	out.Amount = amount
	out.PubScript = pubScript
	return nil
}

func (out *TxOut) pubScript() *script.PubkeyScript {
	if out.PubScript == nil {
		return script.NewPubkeyScript()
	}
	return out.PubScript
}

// BTC 以币为单位的金额
func (out *TxOut) BTC() string {
	return fmt.Sprintf("%d.%08d", out.Amount/SatoshiPerBitcoin, out.Amount%SatoshiPerBitcoin)
}
