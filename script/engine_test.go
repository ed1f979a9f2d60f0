package script

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/treeforest/easytx/hashing"
	"github.com/treeforest/easytx/script/stack"
)

func code(c OpCode) *CodeOp {
	return &CodeOp{Code: c}
}

func item(v ...byte) []byte {
	return v
}

func runOn(t *testing.T, st *stack.OpData, ops ...Operation) {
	require.NoError(t, Run(ops, st))
}

func TestDupFamily(t *testing.T) {
	st := stack.NewWith(item(1), item(2), item(3))
	runOn(t, st, code(OP_DUP))
	require.Equal(t, [][]byte{{1}, {2}, {3}, {3}}, st.Items())

	st = stack.NewWith(item(1), item(2), item(3))
	runOn(t, st, code(OP_2DUP))
	require.Equal(t, [][]byte{{1}, {2}, {3}, {2}, {3}}, st.Items())

	st = stack.NewWith(item(1), item(2), item(3))
	runOn(t, st, code(OP_3DUP))
	require.Equal(t, [][]byte{{1}, {2}, {3}, {1}, {2}, {3}}, st.Items())
}

func TestStackShuffles(t *testing.T) {
	tests := []struct {
		op   OpCode
		in   [][]byte
		want [][]byte
	}{
		{OP_2OVER, [][]byte{{1}, {2}, {3}, {4}}, [][]byte{{1}, {2}, {3}, {4}, {1}, {2}}},
		{OP_2ROT, [][]byte{{1}, {2}, {3}, {4}, {5}, {6}}, [][]byte{{3}, {4}, {5}, {6}, {1}, {2}}},
		{OP_2SWAP, [][]byte{{1}, {2}, {3}, {4}}, [][]byte{{3}, {4}, {1}, {2}}},
		{OP_2DROP, [][]byte{{1}, {2}, {3}}, [][]byte{{1}}},
		{OP_NIP, [][]byte{{1}, {2}}, [][]byte{{2}}},
		{OP_OVER, [][]byte{{1}, {2}}, [][]byte{{1}, {2}, {1}}},
		{OP_ROT, [][]byte{{1}, {2}, {3}}, [][]byte{{2}, {3}, {1}}},
		{OP_SWAP, [][]byte{{1}, {2}}, [][]byte{{2}, {1}}},
		{OP_TUCK, [][]byte{{1}, {2}}, [][]byte{{2}, {1}, {2}}},
		{OP_IFDUP, [][]byte{{1}}, [][]byte{{1}, {1}}},
		{OP_IFDUP, [][]byte{{0x80}}, [][]byte{{0x80}}},
		{OP_DEPTH, [][]byte{{7}, {7}}, [][]byte{{7}, {7}, {2}}},
		{OP_SIZE, [][]byte{{1, 2, 3}}, [][]byte{{1, 2, 3}, {3}}},
	}
	for _, tt := range tests {
		st := stack.NewWith(tt.in...)
		runOn(t, st, code(tt.op))
		require.Equal(t, tt.want, st.Items(), tt.op.String())
	}
}

func TestPickRoll(t *testing.T) {
	st := stack.NewWith(item(10), item(11), item(12))
	runOn(t, st, NewPushNumberOp(2), code(OP_PICK))
	require.Equal(t, [][]byte{{10}, {11}, {12}, {10}}, st.Items())

	st = stack.NewWith(item(10), item(11), item(12))
	runOn(t, st, NewPushNumberOp(2), code(OP_ROLL))
	require.Equal(t, [][]byte{{11}, {12}, {10}}, st.Items())

	st = stack.NewWith(item(10), item(11))
	runOn(t, st, NewPushNumberOp(0), code(OP_ROLL))
	require.Equal(t, [][]byte{{10}, {11}}, st.Items())

	for _, n := range []int64{-1, 2} {
		st = stack.NewWith(item(10), item(11))
		err := Run([]Operation{NewPushNumberOp(n), code(OP_PICK)}, st)
		require.True(t, errors.Is(err, stack.ErrStackUnderflow), "index %d", n)
	}
}

func TestEmptyStackUnderflow(t *testing.T) {
	free := map[OpCode]bool{OP_DEPTH: true, OP_CODESEPARATOR: true, OP_NOP: true, OP_NOP1: true}
	for c := OP_NOP4; c <= OP_NOP10; c++ {
		free[c] = true
	}

	for c := range opTable {
		err := code(c).Run(stack.New())
		if free[c] {
			require.NoError(t, err, c.String())
			continue
		}
		require.True(t, errors.Is(err, stack.ErrStackUnderflow), "%s: %v", c, err)
	}

	err := (&IfElseOp{Code: OP_IF, Main: []Operation{code(OP_NOP)}}).Run(stack.New())
	require.True(t, errors.Is(err, stack.ErrStackUnderflow))
}

func TestEqual(t *testing.T) {
	st := stack.NewWith(item(1, 2), item(1, 2))
	runOn(t, st, code(OP_EQUAL))
	require.Equal(t, [][]byte{{1}}, st.Items())

	st = stack.NewWith(item(1, 2), item(1, 3))
	runOn(t, st, code(OP_EQUAL))
	require.Equal(t, [][]byte{nil}, st.Items())

	st = stack.NewWith(item(1, 2), item(1, 3))
	err := code(OP_EQUALVERIFY).Run(st)
	require.True(t, errors.Is(err, ErrVerifyFailed))

	st = stack.NewWith(item(0x80))
	err = code(OP_VERIFY).Run(st)
	require.True(t, errors.Is(err, ErrVerifyFailed))
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		ops  []Operation
		want []byte
	}{
		{[]Operation{NewPushNumberOp(2), NewPushNumberOp(3), code(OP_ADD)}, EncodeScriptNum(5)},
		{[]Operation{NewPushNumberOp(2), NewPushNumberOp(3), code(OP_SUB)}, EncodeScriptNum(-1)},
		{[]Operation{NewPushNumberOp(-1), code(OP_ABS)}, EncodeScriptNum(1)},
		{[]Operation{NewPushNumberOp(5), code(OP_NEGATE)}, EncodeScriptNum(-5)},
		{[]Operation{NewPushNumberOp(0), code(OP_NOT)}, EncodeScriptNum(1)},
		{[]Operation{NewPushNumberOp(7), code(OP_0NOTEQUAL)}, EncodeScriptNum(1)},
		{[]Operation{NewPushNumberOp(16), code(OP_1ADD)}, EncodeScriptNum(17)},
		{[]Operation{NewPushNumberOp(3), NewPushNumberOp(9), code(OP_MIN)}, EncodeScriptNum(3)},
		{[]Operation{NewPushNumberOp(3), NewPushNumberOp(9), code(OP_MAX)}, EncodeScriptNum(9)},
		{[]Operation{NewPushNumberOp(3), NewPushNumberOp(9), code(OP_LESSTHAN)}, EncodeScriptNum(1)},
		{[]Operation{NewPushNumberOp(1), NewPushNumberOp(0), code(OP_BOOLAND)}, EncodeScriptNum(0)},
		{[]Operation{NewPushNumberOp(1), NewPushNumberOp(0), code(OP_BOOLOR)}, EncodeScriptNum(1)},
		{[]Operation{NewPushNumberOp(5), NewPushNumberOp(1), NewPushNumberOp(5), code(OP_WITHIN)}, EncodeScriptNum(0)},
		{[]Operation{NewPushNumberOp(4), NewPushNumberOp(1), NewPushNumberOp(5), code(OP_WITHIN)}, EncodeScriptNum(1)},
	}
	for i, tt := range tests {
		st := stack.New()
		runOn(t, st, tt.ops...)
		require.Equal(t, 1, st.ItemCount(), "case %d", i)
		require.Equal(t, tt.want, st.Peek(), "case %d", i)
	}

	err := Run([]Operation{NewPushNumberOp(2), NewPushNumberOp(3), code(OP_NUMEQUALVERIFY)}, stack.New())
	require.True(t, errors.Is(err, ErrVerifyFailed))
}

func TestStrictNumbers(t *testing.T) {
	ops := []Operation{NewPushDataOp(item(1, 0)), code(OP_1ADD)}

	err := Run(ops, stack.New())
	require.True(t, errors.Is(err, ErrInvalidNumericEncoding))

	st := stack.New()
	st.StrictNumbers = false
	runOn(t, st, ops...)
	require.Equal(t, EncodeScriptNum(2), st.Peek())

	// 超过4字节的操作数
	err = Run([]Operation{NewPushDataOp(item(1, 2, 3, 4, 5)), code(OP_1ADD)}, stack.New())
	require.True(t, errors.Is(err, ErrInvalidNumericEncoding))
}

func TestHashOps(t *testing.T) {
	data := []byte("hello")
	tests := map[OpCode]hashing.Hasher{
		OP_RIPEMD160: hashing.Ripemd160{},
		OP_SHA1:      hashing.Sha1{},
		OP_SHA256:    hashing.Sha256{},
		OP_HASH160:   hashing.Hash160{},
		OP_HASH256:   hashing.DoubleSha256{},
	}
	for c, h := range tests {
		st := stack.NewWith(data)
		runOn(t, st, code(c))
		require.Equal(t, h.ComputeHash(data), st.Peek(), c.String())
		require.Len(t, st.Peek(), h.HashByteSize())
	}
}

func TestAltStackOps(t *testing.T) {
	st := stack.NewWith(item(1), item(2))
	runOn(t, st, code(OP_TOALTSTACK))
	require.Equal(t, [][]byte{{1}}, st.Items())
	require.Equal(t, [][]byte{{2}}, st.AltItems())

	runOn(t, st, code(OP_FROMALTSTACK))
	require.Equal(t, [][]byte{{1}, {2}}, st.Items())
	require.Equal(t, 0, st.AltItemCount())
}

func TestConditionalRun(t *testing.T) {
	ifOp := &IfElseOp{
		Code: OP_IF,
		Main: []Operation{NewPushNumberOp(10)},
		Else: []Operation{NewPushNumberOp(11)},
	}

	st := stack.NewWith(item(1))
	runOn(t, st, ifOp)
	require.Equal(t, [][]byte{{10}}, st.Items())

	st = stack.NewWith(item(0x80))
	runOn(t, st, ifOp)
	require.Equal(t, [][]byte{{11}}, st.Items())

	notIf := &IfElseOp{Code: OP_NOTIF, Main: []Operation{NewPushNumberOp(12)}}
	st = stack.NewWith(item(1))
	runOn(t, st, notIf)
	require.True(t, st.Empty())

	st = stack.NewWith(nil)
	runOn(t, st, notIf)
	require.Equal(t, [][]byte{{12}}, st.Items())

	failing := &IfElseOp{Code: OP_IF, Main: []Operation{code(OP_DROP)}}
	err := failing.Run(stack.NewWith(item(1)))
	require.True(t, errors.Is(err, stack.ErrStackUnderflow))
}

func TestNotRunnable(t *testing.T) {
	for _, c := range []OpCode{OP_CHECKSIG, OP_CHECKSIGVERIFY, OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY, OP_VER, OP_RESERVED, OpCode(0xba)} {
		op := code(c)
		require.False(t, op.IsRunnable())
		err := op.Run(stack.NewWith(item(1), item(2), item(3)))
		require.True(t, errors.Is(err, ErrNotRunnable), c.String())
	}

	err := (&ReturnOp{}).Run(stack.New())
	require.True(t, errors.Is(err, ErrReturn))
}

func TestCheckLockTime(t *testing.T) {
	st := stack.NewWith(EncodeScriptNum(500000000))
	runOn(t, st, code(OP_CHECKLOCKTIMEVERIFY), code(OP_CHECKSEQUENCEVERIFY))
	require.Equal(t, 1, st.ItemCount())

	st = stack.NewWith(EncodeScriptNum(4294967295))
	runOn(t, st, code(OP_CHECKLOCKTIMEVERIFY))

	err := code(OP_CHECKLOCKTIMEVERIFY).Run(stack.NewWith(EncodeScriptNum(-1)))
	require.True(t, errors.Is(err, ErrNegativeLockTime))

	err = code(OP_CHECKLOCKTIMEVERIFY).Run(stack.NewWith(item(1, 2, 3, 4, 5, 6)))
	require.True(t, errors.Is(err, ErrInvalidNumericEncoding))
}

func TestEvaluate(t *testing.T) {
	s := New(NewPushNumberOp(2), NewPushNumberOp(3), code(OP_ADD), NewPushNumberOp(5), code(OP_EQUAL))
	ok, err := s.Evaluate()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = New().Evaluate()
	require.NoError(t, err)
	require.False(t, ok)

	_, err = New(code(OP_DUP)).Evaluate()
	require.Error(t, err)
}

func BenchmarkEngine_Run(b *testing.B) {
	secret := []byte("this is a mock preimage")
	s := New(
		code(OP_SHA256),
		NewPushDataOp(hashing.Sha256{}.ComputeHash(secret)),
		code(OP_EQUALVERIFY),
		NewPushNumberOp(1),
	)

	for i := 0; i < b.N; i++ {
		st := stack.NewWith(secret)
		require.NoError(b, s.Run(st))
		require.Equal(b, 1, st.ItemCount())
	}
}
