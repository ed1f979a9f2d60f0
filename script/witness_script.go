package script

import "bytes"

// WitnessScript 一个输入的见证数据，每一项都是一次数据压栈
type WitnessScript struct {
	Script
}

func NewWitnessScript(items ...[]byte) *WitnessScript {
	return &WitnessScript{Script: *NewWitness(items...)}
}

// Items 各项原始数据
func (s *WitnessScript) Items() [][]byte {
	items := make([][]byte, 0, len(s.Ops))
	for _, op := range s.Ops {
		if p, ok := op.(*PushDataOp); ok {
			items = append(items, p.Value())
		}
	}
	return items
}

// Equal 按压栈的数据比较。线上格式只保存数据，数字压栈解析回来后变成等值的数据压栈
func (s *WitnessScript) Equal(o *WitnessScript) bool {
	if s == nil || o == nil {
		return s == o
	}
	a, b := s.Items(), o.Items()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SetToP2WPKH <sig> <pubkey>
func (s *WitnessScript) SetToP2WPKH(sig, pubKey []byte) error {
	mustData("signature", sig)
	if err := checkPubKey(pubKey); err != nil {
		return err
	}
	s.Script = *NewWitness(sig, pubKey)
	return nil
}

// SetToP2WSH <item>... <witness script>
func (s *WitnessScript) SetToP2WSH(items [][]byte, witnessScript *RedeemScript) {
	if witnessScript == nil || witnessScript.Empty() {
		panic("script: empty witness script")
	}
	all := make([][]byte, 0, len(items)+1)
	all = append(all, items...)
	all = append(all, witnessScript.Bytes())
	s.Script = *NewWitness(all...)
}
