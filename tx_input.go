package easytx

import (
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/script"
	"github.com/treeforest/easytx/varint"
)

const (
	// MaxSequence 序列号的最大值，表示输入已最终确定
	MaxSequence uint32 = 0xffffffff
	// rbfSequenceBound 小于该值的序列号表示允许手续费替换（BIP125）
	rbfSequenceBound uint32 = 0xfffffffe

	// minTxInSize 36字节 outpoint + 1字节脚本长度 + 4字节序列号
	minTxInSize = OutpointSize + 1 + 4
)

type TxIn struct {
	Outpoint     Outpoint                // 引用的上一笔交易输出
	SigScript    *script.SignatureScript // 解锁脚本
	CoinbaseData []byte                  // 创币交易的输入脚本位置可以是任意字节，不做脚本解析
	Sequence     uint32
}

func NewTxIn(prev *Outpoint, sigScript *script.SignatureScript) *TxIn {
	if sigScript == nil {
		sigScript = script.NewSignatureScript()
	}
	return &TxIn{Outpoint: *prev, SigScript: sigScript, Sequence: MaxSequence}
}

func NewCoinbaseTxIn(coinbaseData []byte) *TxIn {
	return &TxIn{Outpoint: *NewCoinbaseOutpoint(), CoinbaseData: coinbaseData, Sequence: MaxSequence}
}

func (in *TxIn) IsCoinbase() bool {
	return in.Outpoint.IsCoinbase()
}

// IsFinal 序列号为最大值
func (in *TxIn) IsFinal() bool {
	return in.Sequence == MaxSequence
}

// IsRBF 是否标记为可替换
func (in *TxIn) IsRBF() bool {
	return in.Sequence < rbfSequenceBound
}

// ScriptBytes 输入脚本的原始字节
func (in *TxIn) ScriptBytes() []byte {
	if in.IsCoinbase() {
		return in.CoinbaseData
	}
	if in.SigScript == nil {
		return nil
	}
	return in.SigScript.Bytes()
}

func (in *TxIn) Serialize(w *stream.Writer) {
	in.Outpoint.Serialize(w)
	raw := in.ScriptBytes()
	varint.CompactInt(len(raw)).Serialize(w)
	_, _ = w.Write(raw)
	w.WriteUint32(in.Sequence)
}

func (in *TxIn) Deserialize(r *stream.Reader) error {
	var prev Outpoint
	if err := prev.Deserialize(r); err != nil {
		return err
	}

	n, err := varint.ReadLength(r)
	if err != nil {
		return errors.Wrap(err, "input script length")
	}
	raw, err := r.ReadBytes(n)
	if err != nil {
		return err
	}

	var (
		sigScript    *script.SignatureScript
		coinbaseData []byte
	)
	if prev.IsCoinbase() {
		coinbaseData = raw
	} else if sigScript, err = script.ParseSignatureScript(raw); err != nil {
		return errors.Wrapf(err, "input %s", prev)
	}

	sequence, err := r.ReadUint32()
	if err != nil {
		return errors.Wrap(err, "input sequence")
	}

	in.Outpoint = prev
	in.SigScript = sigScript
	in.CoinbaseData = coinbaseData
	in.Sequence = sequence
	return nil
}
