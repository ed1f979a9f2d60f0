package script

import (
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/address"
	"github.com/treeforest/easytx/config"
	"github.com/treeforest/easytx/hashing"
	"github.com/treeforest/easytx/pkg/stream"
	log "github.com/treeforest/logger"
)

// PubkeyScriptType 输出脚本类型
type PubkeyScriptType int

const (
	PubkeyUnknown PubkeyScriptType = iota
	PubkeyEmpty
	PubkeyP2PK
	PubkeyP2PKH
	PubkeyP2SH
	PubkeyP2MS
	PubkeyP2WPKH
	PubkeyP2WSH
	PubkeyReturn
)

var pubkeyTypeNames = [...]string{
	PubkeyUnknown: "Unknown",
	PubkeyEmpty:   "Empty",
	PubkeyP2PK:    "P2PK",
	PubkeyP2PKH:   "P2PKH",
	PubkeyP2SH:    "P2SH",
	PubkeyP2MS:    "P2MS",
	PubkeyP2WPKH:  "P2WPKH",
	PubkeyP2WSH:   "P2WSH",
	PubkeyReturn:  "NullData",
}

func (t PubkeyScriptType) String() string {
	if int(t) < len(pubkeyTypeNames) {
		return pubkeyTypeNames[t]
	}
	return "Unknown"
}

// PubkeyScript 交易输出的锁定脚本
type PubkeyScript struct {
	Script
}

func NewPubkeyScript() *PubkeyScript {
	return &PubkeyScript{}
}

// ParsePubkeyScript 从不带长度前缀的原始字节解析
func ParsePubkeyScript(raw []byte) (*PubkeyScript, error) {
	s := NewPubkeyScript()
	if err := s.SetFromBytes(raw); err != nil {
		return nil, err
	}
	return s, nil
}

// Type 按操作序列的结构识别脚本类型
func (s *PubkeyScript) Type() PubkeyScriptType {
	ops := s.Ops
	switch len(ops) {
	case 0:
		return PubkeyEmpty
	case 1:
		if _, ok := ops[0].(*ReturnOp); ok {
			return PubkeyReturn
		}
	case 2:
		if _, ok := pushedDataOfSize(ops[0], compressedPubKeyLen, uncompressedPubKeyLen); ok && isCode(ops[1], OP_CHECKSIG) {
			return PubkeyP2PK
		}
		if _, ok := witnessProgram(ops, hash160Size); ok {
			return PubkeyP2WPKH
		}
		if _, ok := witnessProgram(ops, sha256Size); ok {
			return PubkeyP2WSH
		}
	case 3:
		if isCode(ops[0], OP_HASH160) && isCode(ops[2], OP_EQUAL) {
			if _, ok := pushedDataOfSize(ops[1], hash160Size); ok {
				return PubkeyP2SH
			}
		}
	case 5:
		if isCode(ops[0], OP_DUP) && isCode(ops[1], OP_HASH160) &&
			isCode(ops[3], OP_EQUALVERIFY) && isCode(ops[4], OP_CHECKSIG) {
			if _, ok := pushedDataOfSize(ops[2], hash160Size); ok {
				return PubkeyP2PKH
			}
		}
	}
	if isMultiSigShape(ops) {
		return PubkeyP2MS
	}
	return PubkeyUnknown
}

// Hash 嵌入在 P2PKH、P2SH、P2WPKH、P2WSH 脚本中的哈希
func (s *PubkeyScript) Hash() ([]byte, bool) {
	switch s.Type() {
	case PubkeyP2PKH:
		return pushedData(s.Ops[2])
	case PubkeyP2SH, PubkeyP2WPKH, PubkeyP2WSH:
		return pushedData(s.Ops[1])
	}
	return nil, false
}

// PubKey P2PK 脚本中的公钥
func (s *PubkeyScript) PubKey() ([]byte, bool) {
	if s.Type() != PubkeyP2PK {
		return nil, false
	}
	return pushedData(s.Ops[0])
}

// ReturnData OP_RETURN 之后的原始字节
func (s *PubkeyScript) ReturnData() ([]byte, bool) {
	if s.Type() != PubkeyReturn {
		return nil, false
	}
	return s.Ops[0].(*ReturnOp).Data, true
}

// MultiSigInfo 严格解析多重签名参数
func (s *PubkeyScript) MultiSigInfo() (*MultiSig, error) {
	return multiSigInfo(s.Ops)
}

// SetToP2PK <pubkey> OP_CHECKSIG
func (s *PubkeyScript) SetToP2PK(pubKey []byte) error {
	if err := checkPubKey(pubKey); err != nil {
		return err
	}
	s.Ops = []Operation{NewPushDataOp(pubKey), &CodeOp{Code: OP_CHECKSIG}}
	return nil
}

// SetToP2PKH OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG
func (s *PubkeyScript) SetToP2PKH(hash []byte) error {
	if err := checkHash(hashing.Hash160{}, hash); err != nil {
		return err
	}
	s.Ops = []Operation{
		&CodeOp{Code: OP_DUP},
		&CodeOp{Code: OP_HASH160},
		NewPushDataOp(hash),
		&CodeOp{Code: OP_EQUALVERIFY},
		&CodeOp{Code: OP_CHECKSIG},
	}
	return nil
}

// SetToP2SH OP_HASH160 <hash> OP_EQUAL
func (s *PubkeyScript) SetToP2SH(hash []byte) error {
	if err := checkHash(hashing.Hash160{}, hash); err != nil {
		return err
	}
	s.Ops = []Operation{&CodeOp{Code: OP_HASH160}, NewPushDataOp(hash), &CodeOp{Code: OP_EQUAL}}
	return nil
}

// SetToP2WPKH OP_0 <20字节哈希>
func (s *PubkeyScript) SetToP2WPKH(hash []byte) error {
	if err := checkHash(hashing.Hash160{}, hash); err != nil {
		return err
	}
	s.Ops = []Operation{NewPushNumberOp(0), NewPushDataOp(hash)}
	return nil
}

// SetToP2WSH OP_0 <32字节哈希>
func (s *PubkeyScript) SetToP2WSH(hash []byte) error {
	if err := checkHash(hashing.Sha256{}, hash); err != nil {
		return err
	}
	s.Ops = []Operation{NewPushNumberOp(0), NewPushDataOp(hash)}
	return nil
}

// SetToMultiSig <m> <pubkey>... <n> OP_CHECKMULTISIG
func (s *PubkeyScript) SetToMultiSig(m int, pubKeys [][]byte) error {
	ops, err := multiSigOps(m, pubKeys)
	if err != nil {
		return err
	}
	s.Ops = ops
	return nil
}

// SetToReturn OP_RETURN <data>，data 为空时只有 OP_RETURN
func (s *PubkeyScript) SetToReturn(data []byte) {
	op := &ReturnOp{}
	if len(data) > 0 {
		w := stream.NewWriter()
		NewPushDataOp(data).serialize(w, false)
		op.Data = w.Bytes()
	}
	s.Ops = []Operation{op}
}

// SetToAddress 按地址类型构造对应的锁定脚本
func (s *PubkeyScript) SetToAddress(addr string) error {
	a, err := address.Decode(addr)
	if err != nil {
		log.Debugf("set pubkey script from address failed: %v", err)
		return err
	}
	return s.setToDecoded(a)
}

// SetToAddressFor 只接受指定网络的地址
func (s *PubkeyScript) SetToAddressFor(addr string, net *config.NetParams) error {
	a, err := address.DecodeFor(addr, net)
	if err != nil {
		return err
	}
	return s.setToDecoded(a)
}

func (s *PubkeyScript) setToDecoded(a *address.Address) error {
	switch a.Type {
	case address.P2PKH:
		return s.SetToP2PKH(a.Hash)
	case address.P2SH:
		return s.SetToP2SH(a.Hash)
	case address.P2WPKH:
		return s.SetToP2WPKH(a.Hash)
	case address.P2WSH:
		return s.SetToP2WSH(a.Hash)
	}
	return errors.Wrap(address.ErrInvalidAddress, a.Type.String())
}

// Address 锁定脚本对应的地址，P2PK、P2MS 等没有地址形式
func (s *PubkeyScript) Address(net *config.NetParams) (string, error) {
	hash, _ := s.Hash()
	switch t := s.Type(); t {
	case PubkeyP2PKH:
		return address.EncodeP2PKH(hash, net)
	case PubkeyP2SH:
		return address.EncodeP2SH(hash, net)
	case PubkeyP2WPKH:
		return address.EncodeP2WPKH(hash, net)
	case PubkeyP2WSH:
		return address.EncodeP2WSH(hash, net)
	default:
		return "", errors.Wrapf(ErrUnexpectedScriptType, "%s has no address", t)
	}
}
