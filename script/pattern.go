package script

import (
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/hashing"
	log "github.com/treeforest/logger"
)

const (
	// MaxPubKeysPerMultiSig OP_CHECKMULTISIG 允许的最大公钥数
	MaxPubKeysPerMultiSig = 20

	compressedPubKeyLen   = 33
	uncompressedPubKeyLen = 65
)

var (
	hash160Size = hashing.Hash160{}.HashByteSize()
	sha256Size  = hashing.Sha256{}.HashByteSize()
)

// pushedData 数据压栈（非数字压栈）携带的数据
func pushedData(op Operation) ([]byte, bool) {
	p, ok := op.(*PushDataOp)
	if !ok || p.IsNumber() {
		return nil, false
	}
	return p.Data, true
}

func pushedDataOfSize(op Operation, sizes ...int) ([]byte, bool) {
	data, ok := pushedData(op)
	if !ok {
		return nil, false
	}
	for _, size := range sizes {
		if len(data) == size {
			return data, true
		}
	}
	return nil, false
}

// pushedNumber 数字压栈的值
func pushedNumber(op Operation) (int64, bool) {
	p, ok := op.(*PushDataOp)
	if !ok {
		return 0, false
	}
	return p.Code.Number()
}

// pushedInt 数字压栈或最短编码的数据压栈
func pushedInt(op Operation, maxLen int) (int64, bool) {
	if n, ok := pushedNumber(op); ok {
		return n, true
	}
	data, ok := pushedData(op)
	if !ok {
		return 0, false
	}
	n, err := DecodeScriptNum(data, true, maxLen)
	return n, err == nil
}

func isCode(op Operation, code OpCode) bool {
	c, ok := op.(*CodeOp)
	return ok && c.Code == code
}

func isPush(op Operation) bool {
	_, ok := op.(*PushDataOp)
	return ok
}

// witnessProgram [OP_0, push(size)]
func witnessProgram(ops []Operation, size int) ([]byte, bool) {
	if len(ops) != 2 {
		return nil, false
	}
	if n, ok := pushedNumber(ops[0]); !ok || n != 0 {
		return nil, false
	}
	return pushedDataOfSize(ops[1], size)
}

// isMultiSigShape [push(m), push...(pubkeys), push(n), OP_CHECKMULTISIG]
//
// 只检查形状，m、n 与公钥数量是否一致由 MultiSigInfo 校验。
func isMultiSigShape(ops []Operation) bool {
	l := len(ops)
	if l < 4 || !isCode(ops[l-1], OP_CHECKMULTISIG) {
		return false
	}
	if !isPush(ops[0]) || !isPush(ops[l-2]) {
		return false
	}
	for _, op := range ops[1 : l-2] {
		if _, ok := pushedData(op); !ok {
			return false
		}
	}
	return true
}

// MultiSig 多重签名脚本的参数
type MultiSig struct {
	M       int
	N       int
	PubKeys [][]byte
}

// multiSigInfo 严格校验 1 <= m <= n <= 20、n 等于公钥个数、公钥长度为33或65
func multiSigInfo(ops []Operation) (*MultiSig, error) {
	if !isMultiSigShape(ops) {
		return nil, errors.Wrap(ErrInvalidMultiSig, "not a multisig script")
	}
	l := len(ops)
	m, ok := pushedInt(ops[0], 1)
	if !ok {
		return nil, errors.Wrap(ErrInvalidMultiSig, "m is not a number")
	}
	n, ok := pushedInt(ops[l-2], 1)
	if !ok {
		return nil, errors.Wrap(ErrInvalidMultiSig, "n is not a number")
	}
	if m < 1 || m > n || n > MaxPubKeysPerMultiSig {
		return nil, errors.Wrapf(ErrInvalidMultiSig, "m=%d n=%d", m, n)
	}

	keys := make([][]byte, 0, l-3)
	for _, op := range ops[1 : l-2] {
		key, ok := pushedDataOfSize(op, compressedPubKeyLen, uncompressedPubKeyLen)
		if !ok {
			return nil, errors.Wrap(ErrInvalidMultiSig, "public key must be 33 or 65 bytes")
		}
		keys = append(keys, key)
	}
	if int(n) != len(keys) {
		log.Debugf("multisig declares %d keys but carries %d", n, len(keys))
		return nil, errors.Wrapf(ErrInvalidMultiSig, "n=%d with %d public keys", n, len(keys))
	}
	return &MultiSig{M: int(m), N: int(n), PubKeys: keys}, nil
}

// multiSigOps 构造多重签名脚本，m、n 超出范围属于调用方错误
func multiSigOps(m int, pubKeys [][]byte) ([]Operation, error) {
	n := len(pubKeys)
	if m < 1 || m > n || n > MaxPubKeysPerMultiSig {
		panic("script: multisig needs 1 <= m <= n <= 20")
	}

	ops := make([]Operation, 0, n+3)
	ops = append(ops, pushInt(int64(m)))
	for _, key := range pubKeys {
		if err := checkPubKey(key); err != nil {
			return nil, err
		}
		ops = append(ops, NewPushDataOp(key))
	}
	ops = append(ops, pushInt(int64(n)), &CodeOp{Code: OP_CHECKMULTISIG})
	return ops, nil
}

// pushInt [-1,16] 用数字压栈，其它值压入脚本数字编码
func pushInt(n int64) *PushDataOp {
	if _, ok := NumberOpCode(n); ok {
		return NewPushNumberOp(n)
	}
	return NewPushDataOp(EncodeScriptNum(n))
}

func checkPubKey(key []byte) error {
	if len(key) == 0 {
		panic("script: empty public key")
	}
	if len(key) != compressedPubKeyLen && len(key) != uncompressedPubKeyLen {
		return errors.Wrapf(ErrInvalidPubKey, "%d bytes", len(key))
	}
	return nil
}

// checkHash 哈希长度必须等于对应哈希函数的输出长度
func checkHash(h hashing.Hasher, hash []byte) error {
	if len(hash) == 0 {
		panic("script: empty hash")
	}
	if len(hash) != h.HashByteSize() {
		return errors.Wrapf(ErrHashLengthMismatch, "want %d bytes, got %d", h.HashByteSize(), len(hash))
	}
	return nil
}

func mustData(name string, data []byte) {
	if len(data) == 0 {
		panic("script: empty " + name)
	}
}
