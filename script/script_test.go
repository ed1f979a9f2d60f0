package script

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/varint"
	"pgregory.net/rapid"
)

func TestParseConditionals(t *testing.T) {
	tests := []struct {
		hex string
		err error
	}{
		{"516351", ErrUnbalancedConditional},     // 缺少 OP_ENDIF
		{"5163516768", ErrEmptyConditionalBranch}, // 空的 OP_ELSE 分支
		{"6368", ErrEmptyConditionalBranch},
		{"67", ErrUnbalancedConditional},
		{"68", ErrUnbalancedConditional},
		{"63516751675168", ErrUnbalancedConditional}, // 两个 OP_ELSE
		{"7e", ErrDisabledOpcode},
		{"63517e68", ErrDisabledOpcode},
		{"65", ErrInvalidOpcode},
		{"66", ErrInvalidOpcode},
		{"050102", ErrTrailingData},
		{"4c", varint.ErrMalformedLength},
		{"4c01ff", varint.ErrMalformedLength},
	}
	for _, tt := range tests {
		_, err := ParseHex(tt.hex)
		require.True(t, errors.Is(err, tt.err), "%s: %v", tt.hex, err)
	}
}

func TestParseNestedIf(t *testing.T) {
	raw := "63" + "63" + "51" + "68" + "67" + "52" + "68"
	s, err := ParseHex(raw)
	require.NoError(t, err)
	require.Len(t, s.Ops, 1)

	outer, ok := s.Ops[0].(*IfElseOp)
	require.True(t, ok)
	require.Equal(t, OP_IF, outer.Code)
	require.True(t, outer.HasElse())
	require.Len(t, outer.Main, 1)

	inner, ok := outer.Main[0].(*IfElseOp)
	require.True(t, ok)
	require.False(t, inner.HasElse())

	require.Equal(t, raw, s.Hex())
	require.Equal(t, "OP_IF OP_IF OP_1 OP_ENDIF OP_ELSE OP_2 OP_ENDIF", s.String())
}

func TestReturnSwallowsRemainder(t *testing.T) {
	s, err := ParseHex("6a04deadbeef7e65ff")
	require.NoError(t, err)
	require.Len(t, s.Ops, 1)

	ret, ok := s.Ops[0].(*ReturnOp)
	require.True(t, ok)
	require.Equal(t, "04deadbeef7e65ff", hex.EncodeToString(ret.Data))
	require.Equal(t, "6a04deadbeef7e65ff", s.Hex())

	s, err = ParseHex("6a")
	require.NoError(t, err)
	require.Equal(t, "OP_RETURN", s.String())
}

func TestScriptString(t *testing.T) {
	s, err := ParseHex("76a91489abcdefabbaabbaabbaabbaabbaabbaabbaabba88ac")
	require.NoError(t, err)
	require.Equal(t, "OP_DUP OP_HASH160 <89abcdefabbaabbaabbaabbaabbaabbaabbaabba> OP_EQUALVERIFY OP_CHECKSIG", s.String())

	s = New(NewPushNumberOp(-1), NewPushNumberOp(0), NewPushNumberOp(16), &CodeOp{Code: 0xba})
	require.Equal(t, "OP_1NEGATE OP_0 OP_16 OP_UNKNOWN186", s.String())
}

func TestPushDataHeaders(t *testing.T) {
	tests := []struct {
		size   int
		header string
	}{
		{1, "01"},
		{75, "4b"},
		{76, "4c4c"},
		{255, "4cff"},
		{256, "4d0001"},
		{65535, "4dffff"},
		{65536, "4e00000100"},
	}
	for _, tt := range tests {
		data := bytes.Repeat([]byte{0xab}, tt.size)
		op := NewPushDataOp(data)
		raw := New(op).Bytes()
		require.Equal(t, tt.header, hex.EncodeToString(raw[:len(raw)-tt.size]), "size %d", tt.size)

		s, err := Parse(raw)
		require.NoError(t, err)
		require.True(t, OpsEqual([]Operation{op}, s.Ops))
	}

	require.Equal(t, OP_0, NewPushDataOp(nil).Code)
	require.Panics(t, func() { NewPushNumberOp(17) })
	require.Panics(t, func() { NewPushNumberOp(-2) })
}

func TestSerializeWithLengthPrefix(t *testing.T) {
	s := New(&CodeOp{Code: OP_DUP}, NewPushDataOp([]byte{1, 2, 3}))
	w := stream.NewWriter()
	s.Serialize(w)
	_, _ = w.Write([]byte{0xee})
	require.Equal(t, "057603010203ee", hex.EncodeToString(w.Bytes()))
	require.Equal(t, 6, s.Size())

	r := stream.NewReader(w.Bytes())
	got := new(Script)
	require.NoError(t, got.Deserialize(r))
	require.True(t, s.Equal(got))
	require.Equal(t, 1, r.Remaining())

	// 声明的长度超过剩余字节
	r = stream.NewReader([]byte{0x05, 0x76})
	err := got.Deserialize(r)
	require.True(t, errors.Is(err, varint.ErrMalformedLength))
	require.True(t, s.Equal(got), "failed deserialize must not modify the script")

	// 推送数据越过脚本结尾
	r = stream.NewReader([]byte{0x02, 0x03, 0x01, 0x02, 0x03})
	err = new(Script).Deserialize(r)
	require.True(t, errors.Is(err, ErrTrailingData))
}

func TestWitnessSerialization(t *testing.T) {
	big := bytes.Repeat([]byte{7}, 300)
	s := NewWitness([]byte{1, 2}, nil, big)

	w := stream.NewWriter()
	s.Serialize(w)
	raw := w.Bytes()
	require.Equal(t, byte(3), raw[0])
	require.Equal(t, "020102", hex.EncodeToString(raw[1:4]))
	require.Equal(t, byte(0), raw[4])
	require.Equal(t, "fd2c01", hex.EncodeToString(raw[5:8]))
	require.Len(t, raw, 8+300)

	got := NewWitnessScript()
	require.NoError(t, got.Deserialize(stream.NewReader(raw)))
	require.True(t, s.Equal(&got.Script))
	require.Equal(t, [][]byte{{1, 2}, nil, big}, got.Items())

	fromBytes := NewWitnessScript()
	require.NoError(t, fromBytes.SetFromBytes(raw[1:]))
	require.True(t, s.Equal(&fromBytes.Script))

	// 项数超过剩余字节
	err := NewWitnessScript().Deserialize(stream.NewReader([]byte{0x05, 0x00}))
	require.True(t, errors.Is(err, varint.ErrMalformedLength))
}

var plainCodes = []OpCode{
	OP_DUP, OP_HASH160, OP_EQUAL, OP_EQUALVERIFY, OP_CHECKSIG, OP_CHECKMULTISIG, OP_NOP, OP_ADD,
	OP_VERIFY, OP_CHECKLOCKTIMEVERIFY, OP_DROP, OP_SWAP, OP_RESERVED, OP_VER, OP_CODESEPARATOR,
	OpCode(0xba), OP_INVALIDOPCODE,
}

func genOps(t *rapid.T, depth int) []Operation {
	n := rapid.IntRange(1, 5).Draw(t, "n")
	ops := make([]Operation, 0, n)
	for i := 0; i < n; i++ {
		kind := rapid.IntRange(0, 3).Draw(t, "kind")
		if depth == 0 && kind == 3 {
			kind = 2
		}
		switch kind {
		case 0:
			ops = append(ops, NewPushDataOp(rapid.SliceOfN(rapid.Byte(), 1, 300).Draw(t, "data")))
		case 1:
			ops = append(ops, NewPushNumberOp(rapid.Int64Range(-1, 16).Draw(t, "num")))
		case 2:
			ops = append(ops, &CodeOp{Code: rapid.SampledFrom(plainCodes).Draw(t, "code")})
		case 3:
			op := &IfElseOp{
				Code: rapid.SampledFrom([]OpCode{OP_IF, OP_NOTIF}).Draw(t, "if"),
				Main: genOps(t, depth-1),
			}
			if rapid.Bool().Draw(t, "else") {
				op.Else = genOps(t, depth-1)
			}
			ops = append(ops, op)
		}
	}
	return ops
}

func TestScriptRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(genOps(t, 2)...)
		if rapid.Bool().Draw(t, "return") {
			s.Ops = append(s.Ops, &ReturnOp{Data: rapid.SliceOfN(rapid.Byte(), 1, 20).Draw(t, "ret")})
		}

		w := stream.NewWriter()
		s.Serialize(w)

		got := new(Script)
		if err := got.Deserialize(stream.NewReader(w.Bytes())); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if !s.Equal(got) {
			t.Fatalf("round trip mismatch: %s != %s", s, got)
		}
		if !bytes.Equal(s.Bytes(), got.Bytes()) {
			t.Fatalf("bytes mismatch for %s", s)
		}
	})
}

func TestWitnessRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(rapid.SliceOfN(rapid.Byte(), 0, 80), 0, 5).Draw(t, "items")
		s := NewWitnessScript(items...)

		w := stream.NewWriter()
		s.Serialize(w)

		got := NewWitnessScript()
		if err := got.Deserialize(stream.NewReader(w.Bytes())); err != nil {
			t.Fatal(err)
		}
		back := got.Items()
		if len(back) != len(items) {
			t.Fatalf("%d items != %d", len(back), len(items))
		}
		for i := range items {
			if !bytes.Equal(back[i], items[i]) {
				t.Fatalf("item %d mismatch", i)
			}
		}
	})
}

func TestWitnessNumberPush(t *testing.T) {
	s := &WitnessScript{Script: *NewWitness()}
	s.Ops = append(s.Ops, NewPushNumberOp(1), NewPushNumberOp(0), NewPushDataOp([]byte{0xab}))

	w := stream.NewWriter()
	s.Serialize(w)
	require.Equal(t, "0301010001ab", hex.EncodeToString(w.Bytes()))

	got := NewWitnessScript()
	require.NoError(t, got.Deserialize(stream.NewReader(w.Bytes())))

	// 数字压栈以数据形式回来
	require.False(t, OpsEqual(s.Ops, got.Ops))
	require.True(t, s.Equal(got))
	items := got.Items()
	require.Len(t, items, 3)
	require.Equal(t, []byte{0x01}, items[0])
	require.Empty(t, items[1])
	require.Equal(t, []byte{0xab}, items[2])

	require.False(t, s.Equal(NewWitnessScript([]byte{0x01})))
	require.False(t, s.Equal(nil))
}
