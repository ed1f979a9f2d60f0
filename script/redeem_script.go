package script

import (
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/hashing"
)

// RedeemScriptType 赎回脚本类型
type RedeemScriptType int

const (
	RedeemUnknown RedeemScriptType = iota
	RedeemEmpty
	RedeemP2SHP2WPKH
	RedeemP2SHP2WSH
	RedeemP2MS
	RedeemCheckLocktimeVerify
)

func (t RedeemScriptType) String() string {
	switch t {
	case RedeemEmpty:
		return "Empty"
	case RedeemP2SHP2WPKH:
		return "P2SH-P2WPKH"
	case RedeemP2SHP2WSH:
		return "P2SH-P2WSH"
	case RedeemP2MS:
		return "P2MS"
	case RedeemCheckLocktimeVerify:
		return "CheckLocktimeVerify"
	}
	return "Unknown"
}

// RedeemScript P2SH 的赎回脚本，也用作 P2WSH 的见证脚本
type RedeemScript struct {
	Script
}

func NewRedeemScript() *RedeemScript {
	return &RedeemScript{}
}

func ParseRedeemScript(raw []byte) (*RedeemScript, error) {
	s := NewRedeemScript()
	if err := s.SetFromBytes(raw); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RedeemScript) Type() RedeemScriptType {
	ops := s.Ops
	switch len(ops) {
	case 0:
		return RedeemEmpty
	case 2:
		if _, ok := witnessProgram(ops, hash160Size); ok {
			return RedeemP2SHP2WPKH
		}
		if _, ok := witnessProgram(ops, sha256Size); ok {
			return RedeemP2SHP2WSH
		}
	case 5:
		// <locktime> OP_CHECKLOCKTIMEVERIFY OP_DROP <pubkey> OP_CHECKSIG
		if n, ok := pushedInt(ops[0], LockTimeNumLen); ok && n >= 0 &&
			isCode(ops[1], OP_CHECKLOCKTIMEVERIFY) && isCode(ops[2], OP_DROP) && isCode(ops[4], OP_CHECKSIG) {
			if _, ok := pushedDataOfSize(ops[3], compressedPubKeyLen, uncompressedPubKeyLen); ok {
				return RedeemCheckLocktimeVerify
			}
		}
	}
	if isMultiSigShape(ops) {
		return RedeemP2MS
	}
	return RedeemUnknown
}

// ScriptHash P2SH 锁定脚本中使用的 HASH160
func (s *RedeemScript) ScriptHash() []byte {
	return hashing.Hash160{}.ComputeHash(s.Bytes())
}

// WitnessScriptHash P2WSH 锁定脚本中使用的 SHA-256
func (s *RedeemScript) WitnessScriptHash() []byte {
	return hashing.Sha256{}.ComputeHash(s.Bytes())
}

func (s *RedeemScript) MultiSigInfo() (*MultiSig, error) {
	return multiSigInfo(s.Ops)
}

// LockTime CLTV 脚本中的锁定时间
func (s *RedeemScript) LockTime() (int64, bool) {
	if s.Type() != RedeemCheckLocktimeVerify {
		return 0, false
	}
	return pushedInt(s.Ops[0], LockTimeNumLen)
}

func (s *RedeemScript) SetToMultiSig(m int, pubKeys [][]byte) error {
	ops, err := multiSigOps(m, pubKeys)
	if err != nil {
		return err
	}
	s.Ops = ops
	return nil
}

// SetToP2SHP2WPKH OP_0 <20字节公钥哈希>
func (s *RedeemScript) SetToP2SHP2WPKH(hash []byte) error {
	if err := checkHash(hashing.Hash160{}, hash); err != nil {
		return err
	}
	s.Ops = []Operation{NewPushNumberOp(0), NewPushDataOp(hash)}
	return nil
}

// SetToP2SHP2WSH OP_0 <32字节见证脚本哈希>
func (s *RedeemScript) SetToP2SHP2WSH(hash []byte) error {
	if err := checkHash(hashing.Sha256{}, hash); err != nil {
		return err
	}
	s.Ops = []Operation{NewPushNumberOp(0), NewPushDataOp(hash)}
	return nil
}

// SetToCheckLocktimeVerify <locktime> OP_CHECKLOCKTIMEVERIFY OP_DROP <pubkey> OP_CHECKSIG
func (s *RedeemScript) SetToCheckLocktimeVerify(lockTime uint32, pubKey []byte) error {
	if err := checkPubKey(pubKey); err != nil {
		return err
	}
	s.Ops = []Operation{
		pushInt(int64(lockTime)),
		&CodeOp{Code: OP_CHECKLOCKTIMEVERIFY},
		&CodeOp{Code: OP_DROP},
		NewPushDataOp(pubKey),
		&CodeOp{Code: OP_CHECKSIG},
	}
	return nil
}

// ConvertP2WPKHToP2PKH 把 OP_0 <hash> 改写为使用同一哈希的 P2PKH 锁定脚本
func (s *RedeemScript) ConvertP2WPKHToP2PKH() (*PubkeyScript, error) {
	if s.Type() != RedeemP2SHP2WPKH {
		return nil, errors.Wrapf(ErrUnexpectedScriptType, "%s is not a P2WPKH program", s.Type())
	}
	ps := NewPubkeyScript()
	ps.Ops = []Operation{
		&CodeOp{Code: OP_DUP},
		&CodeOp{Code: OP_HASH160},
		s.Ops[1],
		&CodeOp{Code: OP_EQUALVERIFY},
		&CodeOp{Code: OP_CHECKSIG},
	}
	return ps, nil
}
