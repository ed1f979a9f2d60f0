package easytx

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/config"
	"github.com/treeforest/easytx/hashing"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/script"
	"github.com/treeforest/easytx/varint"
)

const (
	// MinTxSize 一输入一输出且脚本为空时的最小交易字节数
	MinTxSize = 4 + 1 + minTxInSize + 1 + minTxOutSize + 4

	witnessMarker byte = 0x00
	witnessFlag   byte = 0x01

	// WitnessScaleFactor 非见证字节的权重系数
	WitnessScaleFactor = 4
)

var (
	ErrTxTooSmall    = errors.New("transaction too small")
	ErrTxTooLarge    = errors.New("transaction too large")
	ErrInvalidMarker = errors.New("invalid segwit marker")
	ErrCountOverflow = errors.New("count exceeds remaining bytes")
)

// Transaction 交易
type Transaction struct {
	Version     int32
	TxInList    []*TxIn
	TxOutList   []*TxOut
	WitnessList []*script.WitnessScript // 与 TxInList 一一对应，仅隔离见证交易存在
	LockTime    LockTime
}

func NewTransaction() *Transaction {
	return &Transaction{Version: 1}
}

// NewCoinbaseTransaction 创币交易
func NewCoinbaseTransaction(coinbaseData []byte, outs ...*TxOut) *Transaction {
	tx := NewTransaction()
	tx.AddTxIn(NewCoinbaseTxIn(coinbaseData))
	for _, out := range outs {
		tx.AddTxOut(out)
	}
	return tx
}

// NewTransactionFromBytes 使用默认的最大交易大小解析
func NewTransactionFromBytes(raw []byte) (*Transaction, error) {
	tx := new(Transaction)
	r := stream.NewReader(raw)
	if err := tx.Deserialize(r); err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, errors.Wrapf(script.ErrTrailingData, "%d bytes after transaction", r.Remaining())
	}
	return tx, nil
}

func NewTransactionFromHex(h string) (*Transaction, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewTransactionFromBytes(raw)
}

func (tx *Transaction) AddTxIn(in *TxIn) {
	tx.TxInList = append(tx.TxInList, in)
}

func (tx *Transaction) AddTxOut(out *TxOut) {
	tx.TxOutList = append(tx.TxOutList, out)
}

// AddWitness 为第 index 个输入设置见证数据
func (tx *Transaction) AddWitness(index int, w *script.WitnessScript) {
	for len(tx.WitnessList) < len(tx.TxInList) {
		tx.WitnessList = append(tx.WitnessList, script.NewWitnessScript())
	}
	tx.WitnessList[index] = w
}

func (tx *Transaction) IsCoinbase() bool {
	return len(tx.TxInList) == 1 && tx.TxInList[0].IsCoinbase()
}

// HasWitness 至少有一个输入带有非空见证
func (tx *Transaction) HasWitness() bool {
	for _, w := range tx.WitnessList {
		if w != nil && !w.Empty() {
			return true
		}
	}
	return false
}

// Serialize 存在见证数据时写出 marker 和 flag
func (tx *Transaction) Serialize(w *stream.Writer) {
	tx.serialize(w, tx.HasWitness())
}

// SerializeWithoutWitness 用于计算交易哈希的传统格式
func (tx *Transaction) SerializeWithoutWitness(w *stream.Writer) {
	tx.serialize(w, false)
}

func (tx *Transaction) serialize(w *stream.Writer, witness bool) {
	w.WriteInt32(tx.Version)
	if witness {
		_ = w.WriteByte(witnessMarker)
		_ = w.WriteByte(witnessFlag)
	}

	varint.CompactInt(len(tx.TxInList)).Serialize(w)
	for _, in := range tx.TxInList {
		in.Serialize(w)
	}

	varint.CompactInt(len(tx.TxOutList)).Serialize(w)
	for _, out := range tx.TxOutList {
		out.Serialize(w)
	}

	if witness {
		for i := range tx.TxInList {
			tx.witness(i).Serialize(w)
		}
	}

	w.WriteUint32(uint32(tx.LockTime))
}

func (tx *Transaction) witness(i int) *script.WitnessScript {
	if i < len(tx.WitnessList) && tx.WitnessList[i] != nil {
		return tx.WitnessList[i]
	}
	return script.NewWitnessScript()
}

// Deserialize 使用默认的最大交易大小
func (tx *Transaction) Deserialize(r *stream.Reader) error {
	return tx.DeserializeWithLimit(r, config.DefaultMaxTxSize)
}

// DeserializeWithLimit 从游标处读取一笔交易，失败时交易内容保持不变
func (tx *Transaction) DeserializeWithLimit(r *stream.Reader, maxSize int) error {
	start := r.Position()
	if r.Remaining() < MinTxSize {
		return errors.Wrapf(ErrTxTooSmall, "%d bytes", r.Remaining())
	}

	var (
		t   Transaction
		err error
	)
	if t.Version, err = r.ReadInt32(); err != nil {
		return errors.Wrap(err, "version")
	}

	witness := false
	if marker, err := r.PeekByte(); err == nil && marker == witnessMarker {
		_, _ = r.ReadByte()
		flag, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(err, "segwit flag")
		}
		if flag != witnessFlag {
			return errors.Wrapf(ErrInvalidMarker, "marker 0x%02x flag 0x%02x", marker, flag)
		}
		witness = true
	}

	inCount, err := readCount(r, minTxInSize, "inputs")
	if err != nil {
		return err
	}
	t.TxInList = make([]*TxIn, 0, inCount)
	for i := 0; i < inCount; i++ {
		in := new(TxIn)
		if err = in.Deserialize(r); err != nil {
			return errors.WithMessagef(err, "input %d", i)
		}
		t.TxInList = append(t.TxInList, in)
	}

	outCount, err := readCount(r, minTxOutSize, "outputs")
	if err != nil {
		return err
	}
	t.TxOutList = make([]*TxOut, 0, outCount)
	for i := 0; i < outCount; i++ {
		out := new(TxOut)
		if err = out.Deserialize(r); err != nil {
			return errors.WithMessagef(err, "output %d", i)
		}
		t.TxOutList = append(t.TxOutList, out)
	}

	if witness {
		t.WitnessList = make([]*script.WitnessScript, 0, inCount)
		for i := 0; i < inCount; i++ {
			ws := script.NewWitnessScript()
			if err = ws.Deserialize(r); err != nil {
				return errors.WithMessagef(err, "witness %d", i)
			}
			t.WitnessList = append(t.WitnessList, ws)
		}
		// 全部见证为空时不能再写出 marker，原始字节无法还原
		if !t.HasWitness() {
			return errors.Wrap(ErrInvalidMarker, "segwit marker with no witness data")
		}
	}

	lockTime, err := r.ReadUint32()
	if err != nil {
		return errors.Wrap(err, "lock time")
	}
	t.LockTime = LockTime(lockTime)

	if size := r.Position() - start; size > maxSize {
		return errors.Wrapf(ErrTxTooLarge, "%d bytes, limit %d", size, maxSize)
	}

	*tx = t
	return nil
}

// readCount 读取元素个数，元素最小尺寸乘以个数不能超过剩余字节
func readCount(r *stream.Reader, minSize int, what string) (int, error) {
	c, err := varint.ReadCompactInt(r)
	if err != nil {
		return 0, errors.WithMessage(err, what)
	}
	if uint64(c) > uint64(r.Remaining()/minSize) {
		return 0, errors.Wrapf(ErrCountOverflow, "%d %s with %d bytes left", uint64(c), what, r.Remaining())
	}
	return int(c), nil
}

// Bytes 完整序列化结果
func (tx *Transaction) Bytes() []byte {
	w := stream.NewWriter()
	tx.Serialize(w)
	return w.Bytes()
}

// BaseBytes 不含见证数据的序列化结果
func (tx *Transaction) BaseBytes() []byte {
	w := stream.NewWriter()
	tx.SerializeWithoutWitness(w)
	return w.Bytes()
}

func (tx *Transaction) Hex() string {
	return hex.EncodeToString(tx.Bytes())
}

// BaseSize 不含见证数据的字节数
func (tx *Transaction) BaseSize() int {
	return len(tx.BaseBytes())
}

// TotalSize 含见证数据的字节数
func (tx *Transaction) TotalSize() int {
	return len(tx.Bytes())
}

// Weight base*3 + total
func (tx *Transaction) Weight() int {
	return tx.BaseSize()*(WitnessScaleFactor-1) + tx.TotalSize()
}

// VirtualSize weight/4，向下取整
func (tx *Transaction) VirtualSize() int {
	return tx.Weight() / WitnessScaleFactor
}

// Hash 交易哈希，对不含见证数据的序列化结果做两次 sha256
func (tx *Transaction) Hash() chainhash.Hash {
	return chainhash.Hash(hashing.DoubleSum256(tx.BaseBytes()))
}

// TxId 交易哈希反转后的十六进制
func (tx *Transaction) TxId() string {
	return tx.Hash().String()
}

// WitnessHash 对完整序列化结果做两次 sha256，没有见证数据时与 Hash 相同
func (tx *Transaction) WitnessHash() chainhash.Hash {
	return chainhash.Hash(hashing.DoubleSum256(tx.Bytes()))
}

func (tx *Transaction) WTxId() string {
	return tx.WitnessHash().String()
}

// TotalOut 输出金额之和，单个金额或累计超过 MaxAmount 时返回错误
func (tx *Transaction) TotalOut() (uint64, error) {
	var total uint64
	for i, out := range tx.TxOutList {
		if out.Amount > MaxAmount || total > MaxAmount-out.Amount {
			return 0, errors.Wrapf(ErrAmountOutOfRange, "output %d", i)
		}
		total += out.Amount
	}
	return total, nil
}

func (tx *Transaction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transaction %s\n", tx.TxId())
	if tx.HasWitness() {
		fmt.Fprintf(&b, "  WTxId:    %s\n", tx.WTxId())
	}
	fmt.Fprintf(&b, "  Version:  %d\n", tx.Version)
	fmt.Fprintf(&b, "  Size:     %d (base %d, vsize %d, weight %d)\n",
		tx.TotalSize(), tx.BaseSize(), tx.VirtualSize(), tx.Weight())
	fmt.Fprintf(&b, "  LockTime: %s\n", tx.LockTime)

	for i, in := range tx.TxInList {
		fmt.Fprintf(&b, "  Input %d:\n", i)
		if in.IsCoinbase() {
			fmt.Fprintf(&b, "    Coinbase:  %x\n", in.CoinbaseData)
		} else {
			fmt.Fprintf(&b, "    Outpoint:  %s\n", in.Outpoint)
			if in.SigScript != nil {
				fmt.Fprintf(&b, "    SigScript: %s\n", in.SigScript)
			}
		}
		fmt.Fprintf(&b, "    Sequence:  0x%08x\n", in.Sequence)
		if w := tx.witness(i); !w.Empty() {
			fmt.Fprintf(&b, "    Witness:   %s\n", w)
		}
	}

	for i, out := range tx.TxOutList {
		fmt.Fprintf(&b, "  Output %d:\n", i)
		fmt.Fprintf(&b, "    Amount:    %s BTC\n", out.BTC())
		ps := out.pubScript()
		fmt.Fprintf(&b, "    PubScript: %s (%s)\n", ps, ps.Type())
	}
	return b.String()
}
