package script

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/script/stack"
	"github.com/treeforest/easytx/varint"
)

// Script 有序的操作序列
//
// 普通脚本以 CompactInt 字节长度为前缀，数据使用 StackInt 长度头；
// 见证脚本以 CompactInt 项数为前缀，每项使用 CompactInt 长度头。
type Script struct {
	Ops       []Operation
	IsWitness bool
}

func New(ops ...Operation) *Script {
	return &Script{Ops: ops}
}

// NewWitness 每一项作为一个数据压栈
func NewWitness(items ...[]byte) *Script {
	s := &Script{IsWitness: true, Ops: make([]Operation, 0, len(items))}
	for _, item := range items {
		s.Ops = append(s.Ops, NewPushDataOp(item))
	}
	return s
}

// Parse 从不带长度前缀的原始字节解析普通脚本
func Parse(raw []byte) (*Script, error) {
	s := new(Script)
	if err := s.SetFromBytes(raw); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseHex 同 Parse，输入为十六进制
func ParseHex(h string) (*Script, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Parse(raw)
}

// Bytes 不带长度前缀的脚本字节
func (s *Script) Bytes() []byte {
	w := stream.NewWriter()
	for _, op := range s.Ops {
		op.serialize(w, s.IsWitness)
	}
	return w.Bytes()
}

// Serialize 写出长度前缀和脚本字节
func (s *Script) Serialize(w *stream.Writer) {
	if s.IsWitness {
		varint.CompactInt(len(s.Ops)).Serialize(w)
		for _, op := range s.Ops {
			op.serialize(w, true)
		}
		return
	}
	body := s.Bytes()
	varint.CompactInt(len(body)).Serialize(w)
	_, _ = w.Write(body)
}

// Size 序列化后的总字节数（含长度前缀）
func (s *Script) Size() int {
	w := stream.NewWriter()
	s.Serialize(w)
	return w.Len()
}

// Deserialize 从游标处读取带长度前缀的脚本，失败时脚本内容保持不变
func (s *Script) Deserialize(r *stream.Reader) error {
	var (
		ops []Operation
		err error
	)
	if s.IsWitness {
		var count varint.CompactInt
		if count, err = varint.ReadCompactInt(r); err != nil {
			return err
		}
		// 每一项至少有一个字节的长度头
		if uint64(count) > uint64(r.Remaining()) {
			return errors.Wrapf(varint.ErrMalformedLength, "%d witness items with %d bytes left", count, r.Remaining())
		}
		ops, err = parseWitness(r, int(count))
	} else {
		var n int
		if n, err = varint.ReadLength(r); err != nil {
			return err
		}
		ops, err = parseScript(r, r.Position()+n)
	}
	if err != nil {
		return err
	}

	s.Ops = ops
	return nil
}

// SetFromBytes 用不带长度前缀的字节替换脚本内容
func (s *Script) SetFromBytes(raw []byte) error {
	r := stream.NewReader(raw)

	var (
		ops []Operation
		err error
	)
	if s.IsWitness {
		ops = make([]Operation, 0)
		for r.Remaining() > 0 {
			var items []Operation
			if items, err = parseWitness(r, 1); err != nil {
				return err
			}
			ops = append(ops, items...)
		}
	} else if ops, err = parseScript(r, len(raw)); err != nil {
		return err
	}

	s.Ops = ops
	return nil
}

func (s *Script) Hex() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Script) Len() int {
	return len(s.Ops)
}

func (s *Script) Empty() bool {
	return len(s.Ops) == 0
}

func (s *Script) Equal(o *Script) bool {
	return s.IsWitness == o.IsWitness && OpsEqual(s.Ops, o.Ops)
}

// String 助记符形式，仅用于展示
func (s *Script) String() string {
	return opsString(s.Ops)
}

// Run 在给定的栈上执行脚本
func (s *Script) Run(st *stack.OpData) error {
	return Run(s.Ops, st)
}

// Evaluate 在新栈上执行，执行成功且栈顶为真时返回 true
func (s *Script) Evaluate() (bool, error) {
	st := stack.New()
	if err := s.Run(st); err != nil {
		return false, err
	}
	if st.Empty() {
		return false, nil
	}
	return IsTrue(st.Peek()), nil
}
