package script

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/hashing"
	"github.com/treeforest/easytx/script/stack"
)

type opFunc func(code OpCode, st *stack.OpData) error

// opTable 可执行的单字节操作码；压栈、OP_RETURN、条件块各自有独立的 Operation 类型
var opTable map[OpCode]opFunc

func init() {
	opTable = map[OpCode]opFunc{
		OP_NOP:           opNop,
		OP_NOP1:          opNop,
		OP_NOP4:          opNop,
		OP_NOP5:          opNop,
		OP_NOP6:          opNop,
		OP_NOP7:          opNop,
		OP_NOP8:          opNop,
		OP_NOP9:          opNop,
		OP_NOP10:         opNop,
		OP_CODESEPARATOR: opNop,

		OP_VERIFY: opVerify,

		OP_TOALTSTACK:   opToAltStack,
		OP_FROMALTSTACK: opFromAltStack,
		OP_2DROP:        op2Drop,
		OP_2DUP:         opDupN(2),
		OP_3DUP:         opDupN(3),
		OP_2OVER:        op2Over,
		OP_2ROT:         op2Rot,
		OP_2SWAP:        op2Swap,
		OP_IFDUP:        opIfDup,
		OP_DEPTH:        opDepth,
		OP_DROP:         opDrop,
		OP_DUP:          opDupN(1),
		OP_NIP:          opNip,
		OP_OVER:         opOver,
		OP_PICK:         opPickRoll,
		OP_ROLL:         opPickRoll,
		OP_ROT:          opRot,
		OP_SWAP:         opSwap,
		OP_TUCK:         opTuck,
		OP_SIZE:         opSize,

		OP_EQUAL:       opEqualVerify,
		OP_EQUALVERIFY: opEqualVerify,

		OP_1ADD:      opUnary(func(a int64) int64 { return a + 1 }),
		OP_1SUB:      opUnary(func(a int64) int64 { return a - 1 }),
		OP_NEGATE:    opUnary(func(a int64) int64 { return -a }),
		OP_ABS:       opUnary(abs),
		OP_NOT:       opUnary(func(a int64) int64 { return b2i(a == 0) }),
		OP_0NOTEQUAL: opUnary(func(a int64) int64 { return b2i(a != 0) }),

		OP_ADD:                opBinary(func(a, b int64) int64 { return a + b }),
		OP_SUB:                opBinary(func(a, b int64) int64 { return a - b }),
		OP_BOOLAND:            opBinary(func(a, b int64) int64 { return b2i(a != 0 && b != 0) }),
		OP_BOOLOR:             opBinary(func(a, b int64) int64 { return b2i(a != 0 || b != 0) }),
		OP_NUMEQUAL:           opBinary(func(a, b int64) int64 { return b2i(a == b) }),
		OP_NUMEQUALVERIFY:     opBinary(func(a, b int64) int64 { return b2i(a == b) }),
		OP_NUMNOTEQUAL:        opBinary(func(a, b int64) int64 { return b2i(a != b) }),
		OP_LESSTHAN:           opBinary(func(a, b int64) int64 { return b2i(a < b) }),
		OP_GREATERTHAN:        opBinary(func(a, b int64) int64 { return b2i(a > b) }),
		OP_LESSTHANOREQUAL:    opBinary(func(a, b int64) int64 { return b2i(a <= b) }),
		OP_GREATERTHANOREQUAL: opBinary(func(a, b int64) int64 { return b2i(a >= b) }),
		OP_MIN:                opBinary(min64),
		OP_MAX:                opBinary(max64),
		OP_WITHIN:             opWithin,

		OP_RIPEMD160: opHash(hashing.Ripemd160{}),
		OP_SHA1:      opHash(hashing.Sha1{}),
		OP_SHA256:    opHash(hashing.Sha256{}),
		OP_HASH160:   opHash(hashing.Hash160{}),
		OP_HASH256:   opHash(hashing.DoubleSha256{}),

		OP_CHECKLOCKTIMEVERIFY: opCheckLockTime,
		OP_CHECKSEQUENCEVERIFY: opCheckLockTime,
	}
}

// need 检查主栈深度
func need(st *stack.OpData, code OpCode, n int) error {
	if !st.Has(n) {
		return errors.Wrapf(stack.ErrStackUnderflow, "%s needs %d items, have %d", code, n, st.ItemCount())
	}
	return nil
}

func popNum(st *stack.OpData) (int64, error) {
	return DecodeScriptNum(st.Pop(), st.StrictNumbers, MaxScriptNumLen)
}

func opNop(OpCode, *stack.OpData) error { return nil }

func opVerify(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 1); err != nil {
		return err
	}
	if !IsTrue(st.Pop()) {
		return errors.Wrap(ErrVerifyFailed, code.String())
	}
	return nil
}

func opToAltStack(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 1); err != nil {
		return err
	}
	st.AltPush(st.Pop())
	return nil
}

func opFromAltStack(code OpCode, st *stack.OpData) error {
	if st.AltItemCount() < 1 {
		return errors.Wrapf(stack.ErrStackUnderflow, "%s: alt stack is empty", code)
	}
	st.Push(st.AltPop())
	return nil
}

func op2Drop(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 2); err != nil {
		return err
	}
	st.PopMulti(2)
	return nil
}

// opDupN 复制栈顶n个元素，保持顺序
func opDupN(n int) opFunc {
	return func(code OpCode, st *stack.OpData) error {
		if err := need(st, code, n); err != nil {
			return err
		}
		st.PushMulti(st.PeekMulti(n)...)
		return nil
	}
}

// x1 x2 x3 x4 -> x1 x2 x3 x4 x1 x2
func op2Over(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 4); err != nil {
		return err
	}
	st.Push(st.PeekAtIndex(3))
	st.Push(st.PeekAtIndex(3))
	return nil
}

// x1 x2 x3 x4 x5 x6 -> x3 x4 x5 x6 x1 x2
func op2Rot(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 6); err != nil {
		return err
	}
	x1 := st.PopAtIndex(5)
	x2 := st.PopAtIndex(4)
	st.PushMulti(x1, x2)
	return nil
}

// x1 x2 x3 x4 -> x3 x4 x1 x2
func op2Swap(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 4); err != nil {
		return err
	}
	x1 := st.PopAtIndex(3)
	x2 := st.PopAtIndex(2)
	st.PushMulti(x1, x2)
	return nil
}

func opIfDup(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 1); err != nil {
		return err
	}
	if IsTrue(st.Peek()) {
		st.Push(st.Peek())
	}
	return nil
}

func opDepth(_ OpCode, st *stack.OpData) error {
	st.Push(EncodeScriptNum(int64(st.ItemCount())))
	return nil
}

func opDrop(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 1); err != nil {
		return err
	}
	st.Pop()
	return nil
}

func opNip(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 2); err != nil {
		return err
	}
	st.PopAtIndex(1)
	return nil
}

func opOver(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 2); err != nil {
		return err
	}
	st.Push(st.PeekAtIndex(1))
	return nil
}

// opPickRoll 弹出索引n，OP_PICK 复制深度n的元素到栈顶，OP_ROLL 将其移动到栈顶
func opPickRoll(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 1); err != nil {
		return err
	}
	n, err := popNum(st)
	if err != nil {
		return err
	}
	if n < 0 || n >= int64(st.ItemCount()) {
		return errors.Wrapf(stack.ErrStackUnderflow, "%s index %d with %d items", code, n, st.ItemCount())
	}
	if code == OP_PICK {
		st.Push(st.PeekAtIndex(int(n)))
	} else {
		st.Push(st.PopAtIndex(int(n)))
	}
	return nil
}

// x1 x2 x3 -> x2 x3 x1
func opRot(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 3); err != nil {
		return err
	}
	st.Push(st.PopAtIndex(2))
	return nil
}

func opSwap(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 2); err != nil {
		return err
	}
	st.Push(st.PopAtIndex(1))
	return nil
}

// x1 x2 -> x2 x1 x2
func opTuck(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 2); err != nil {
		return err
	}
	st.Insert(st.Peek(), 2)
	return nil
}

func opSize(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 1); err != nil {
		return err
	}
	st.Push(EncodeScriptNum(int64(len(st.Peek()))))
	return nil
}

func opEqualVerify(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 2); err != nil {
		return err
	}
	equal := bytes.Equal(st.Pop(), st.Pop())
	if code == OP_EQUALVERIFY {
		if !equal {
			return errors.Wrap(ErrVerifyFailed, code.String())
		}
		return nil
	}
	st.Push(encodeBool(equal))
	return nil
}

func opUnary(fn func(a int64) int64) opFunc {
	return func(code OpCode, st *stack.OpData) error {
		if err := need(st, code, 1); err != nil {
			return err
		}
		a, err := popNum(st)
		if err != nil {
			return err
		}
		st.Push(EncodeScriptNum(fn(a)))
		return nil
	}
}

// opBinary 栈顶为 b，其下为 a
func opBinary(fn func(a, b int64) int64) opFunc {
	return func(code OpCode, st *stack.OpData) error {
		if err := need(st, code, 2); err != nil {
			return err
		}
		b, err := popNum(st)
		if err != nil {
			return err
		}
		a, err := popNum(st)
		if err != nil {
			return err
		}
		v := fn(a, b)
		if code == OP_NUMEQUALVERIFY {
			if v == 0 {
				return errors.Wrap(ErrVerifyFailed, code.String())
			}
			return nil
		}
		st.Push(EncodeScriptNum(v))
		return nil
	}
}

// x min max -> min <= x < max
func opWithin(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 3); err != nil {
		return err
	}
	var nums [3]int64
	for i := 2; i >= 0; i-- {
		n, err := popNum(st)
		if err != nil {
			return err
		}
		nums[i] = n
	}
	x, lo, hi := nums[0], nums[1], nums[2]
	st.Push(encodeBool(lo <= x && x < hi))
	return nil
}

func opHash(h hashing.Hasher) opFunc {
	return func(code OpCode, st *stack.OpData) error {
		if err := need(st, code, 1); err != nil {
			return err
		}
		st.Push(h.ComputeHash(st.Pop()))
		return nil
	}
}

// opCheckLockTime 没有交易上下文，只校验操作数本身，栈保持不变
func opCheckLockTime(code OpCode, st *stack.OpData) error {
	if err := need(st, code, 1); err != nil {
		return err
	}
	n, err := DecodeScriptNum(st.Peek(), st.StrictNumbers, LockTimeNumLen)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.Wrapf(ErrNegativeLockTime, "%s operand %d", code, n)
	}
	return nil
}

func b2i(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func abs(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
