package script

import "github.com/pkg/errors"

// SignatureScript 交易输入的解锁脚本
type SignatureScript struct {
	Script
}

func NewSignatureScript() *SignatureScript {
	return &SignatureScript{}
}

func ParseSignatureScript(raw []byte) (*SignatureScript, error) {
	s := NewSignatureScript()
	if err := s.SetFromBytes(raw); err != nil {
		return nil, err
	}
	return s, nil
}

// IsPushOnly 解锁脚本只应包含压栈操作
func (s *SignatureScript) IsPushOnly() bool {
	for _, op := range s.Ops {
		if !isPush(op) {
			return false
		}
	}
	return true
}

// SetToP2PKH <sig> <pubkey>
func (s *SignatureScript) SetToP2PKH(sig, pubKey []byte) error {
	mustData("signature", sig)
	if err := checkPubKey(pubKey); err != nil {
		return err
	}
	s.Ops = []Operation{NewPushDataOp(sig), NewPushDataOp(pubKey)}
	return nil
}

// SetToP2PK <sig>
func (s *SignatureScript) SetToP2PK(sig []byte) {
	mustData("signature", sig)
	s.Ops = []Operation{NewPushDataOp(sig)}
}

// SetToP2SHP2WPKH 只压入赎回脚本，签名在见证中
func (s *SignatureScript) SetToP2SHP2WPKH(redeem *RedeemScript) error {
	if redeem == nil {
		panic("script: nil redeem script")
	}
	if t := redeem.Type(); t != RedeemP2SHP2WPKH && t != RedeemP2SHP2WSH {
		return errors.Wrapf(ErrUnexpectedScriptType, "redeem script is %s", t)
	}
	s.Ops = []Operation{NewPushDataOp(redeem.Bytes())}
	return nil
}

// SetToMultiSig OP_0 <sig>... <redeem script>
func (s *SignatureScript) SetToMultiSig(sigs [][]byte, redeem *RedeemScript) error {
	if redeem == nil {
		panic("script: nil redeem script")
	}
	info, err := redeem.MultiSigInfo()
	if err != nil {
		return err
	}
	if len(sigs) != info.M {
		panic("script: signature count does not match m")
	}

	ops := make([]Operation, 0, len(sigs)+2)
	ops = append(ops, NewPushNumberOp(0))
	for _, sig := range sigs {
		mustData("signature", sig)
		ops = append(ops, NewPushDataOp(sig))
	}
	s.Ops = append(ops, NewPushDataOp(redeem.Bytes()))
	return nil
}
