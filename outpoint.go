package easytx

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
)

const (
	// OutpointSize 32字节交易哈希 + 4字节输出索引
	OutpointSize = chainhash.HashSize + 4

	coinbaseIndex = 0xffffffff
)

// Outpoint 引用的上一笔交易输出，创币交易的哈希全为0、索引为 0xffffffff
type Outpoint struct {
	Hash  chainhash.Hash // 自然字节序，展示时反转
	Index uint32
}

func NewOutpoint(hash chainhash.Hash, index uint32) *Outpoint {
	return &Outpoint{Hash: hash, Index: index}
}

// NewOutpointFromTxId txid 为反转后的十六进制展示形式
func NewOutpointFromTxId(txId string, index uint32) (*Outpoint, error) {
	hash, err := chainhash.NewHashFromStr(txId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Outpoint{Hash: *hash, Index: index}, nil
}

func NewCoinbaseOutpoint() *Outpoint {
	return &Outpoint{Index: coinbaseIndex}
}

// TxId 反转后的十六进制交易哈希
func (o *Outpoint) TxId() string {
	return o.Hash.String()
}

func (o *Outpoint) IsCoinbase() bool {
	return o.Index == coinbaseIndex && o.Hash == chainhash.Hash{}
}

func (o *Outpoint) Serialize(w *stream.Writer) {
	_, _ = w.Write(o.Hash[:])
	w.WriteUint32(o.Index)
}

func (o *Outpoint) Deserialize(r *stream.Reader) error {
	b, err := r.ReadBytes(chainhash.HashSize)
	if err != nil {
		return errors.Wrap(err, "outpoint hash")
	}
	index, err := r.ReadUint32()
	if err != nil {
		return errors.Wrap(err, "outpoint index")
	}
	copy(o.Hash[:], b)
	o.Index = index
	return nil
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxId(), o.Index)
}
