package script

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/script/stack"
	"github.com/treeforest/easytx/varint"
)

// Operation 脚本中的一个操作
//
// 具体类型只有 *PushDataOp、*ReturnOp、*IfElseOp、*CodeOp 四种，
// serialize 未导出，包外无法扩展。
type Operation interface {
	OpCode() OpCode
	Run(st *stack.OpData) error
	String() string

	serialize(w *stream.Writer, witness bool)
}

// PushDataOp 压栈操作
//
// Code 为 OP_0、OP_1NEGATE、OP_1..OP_16 时是数字压栈，Data 为空；
// 否则 Code 是长度头的首字节，序列化时按 Data 长度重新计算。
type PushDataOp struct {
	Code OpCode
	Data []byte
}

// NewPushDataOp 按数据长度选择最短的长度头，空数据等价于 OP_0
func NewPushDataOp(data []byte) *PushDataOp {
	if len(data) == 0 {
		return &PushDataOp{Code: OP_0}
	}
	return &PushDataOp{Code: OpCode(varint.StackInt(len(data)).Bytes()[0]), Data: data}
}

// NewPushNumberOp 数字压栈，n 必须在 [-1,16] 内
func NewPushNumberOp(n int64) *PushDataOp {
	code, ok := NumberOpCode(n)
	if !ok {
		panic("script: push number out of range [-1, 16]")
	}
	return &PushDataOp{Code: code}
}

func (op *PushDataOp) OpCode() OpCode { return op.Code }

// IsNumber 是否是不带数据的数字压栈
func (op *PushDataOp) IsNumber() bool {
	return op.Code.IsNumberPush()
}

// Value 实际压入栈中的字节
func (op *PushDataOp) Value() []byte {
	if n, ok := op.Code.Number(); ok {
		return EncodeScriptNum(n)
	}
	return op.Data
}

func (op *PushDataOp) Run(st *stack.OpData) error {
	st.Push(op.Value())
	return nil
}

func (op *PushDataOp) serialize(w *stream.Writer, witness bool) {
	if witness {
		v := op.Value()
		varint.CompactInt(len(v)).Serialize(w)
		_, _ = w.Write(v)
		return
	}
	if op.IsNumber() {
		_ = w.WriteByte(byte(op.Code))
		return
	}
	varint.StackInt(len(op.Data)).Serialize(w)
	_, _ = w.Write(op.Data)
}

func (op *PushDataOp) String() string {
	if op.IsNumber() {
		return op.Code.String()
	}
	return "<" + hex.EncodeToString(op.Data) + ">"
}

// ReturnOp OP_RETURN 及其后的全部字节
type ReturnOp struct {
	Data []byte
}

func (op *ReturnOp) OpCode() OpCode { return OP_RETURN }

func (op *ReturnOp) Run(*stack.OpData) error {
	return errors.WithStack(ErrReturn)
}

func (op *ReturnOp) serialize(w *stream.Writer, _ bool) {
	_ = w.WriteByte(byte(OP_RETURN))
	_, _ = w.Write(op.Data)
}

func (op *ReturnOp) String() string {
	if len(op.Data) == 0 {
		return "OP_RETURN"
	}
	return "OP_RETURN <" + hex.EncodeToString(op.Data) + ">"
}

// IfElseOp OP_IF/OP_NOTIF 条件块，Else 为空表示没有 OP_ELSE 分支
type IfElseOp struct {
	Code OpCode
	Main []Operation
	Else []Operation
}

func (op *IfElseOp) OpCode() OpCode { return op.Code }

func (op *IfElseOp) HasElse() bool {
	return len(op.Else) > 0
}

func (op *IfElseOp) Run(st *stack.OpData) error {
	if err := need(st, op.Code, 1); err != nil {
		return err
	}
	cond := IsTrue(st.Pop())
	if op.Code == OP_NOTIF {
		cond = !cond
	}

	branch := op.Else
	if cond {
		branch = op.Main
	}
	return Run(branch, st)
}

func (op *IfElseOp) serialize(w *stream.Writer, witness bool) {
	_ = w.WriteByte(byte(op.Code))
	for _, sub := range op.Main {
		sub.serialize(w, witness)
	}
	if op.HasElse() {
		_ = w.WriteByte(byte(OP_ELSE))
		for _, sub := range op.Else {
			sub.serialize(w, witness)
		}
	}
	_ = w.WriteByte(byte(OP_ENDIF))
}

func (op *IfElseOp) String() string {
	var sb strings.Builder
	sb.WriteString(op.Code.String())
	if len(op.Main) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(opsString(op.Main))
	}
	if op.HasElse() {
		sb.WriteString(" OP_ELSE ")
		sb.WriteString(opsString(op.Else))
	}
	sb.WriteString(" OP_ENDIF")
	return sb.String()
}

// CodeOp 单字节操作，行为由操作码表决定；表中没有的操作码不可执行
type CodeOp struct {
	Code OpCode
}

func (op *CodeOp) OpCode() OpCode { return op.Code }

// IsRunnable 是否可以在手动解释器中执行
func (op *CodeOp) IsRunnable() bool {
	_, ok := opTable[op.Code]
	return ok
}

func (op *CodeOp) Run(st *stack.OpData) error {
	fn, ok := opTable[op.Code]
	if !ok {
		return errors.Wrap(ErrNotRunnable, op.Code.String())
	}
	return fn(op.Code, st)
}

func (op *CodeOp) serialize(w *stream.Writer, _ bool) {
	_ = w.WriteByte(byte(op.Code))
}

func (op *CodeOp) String() string {
	return op.Code.String()
}

// Run 依次执行操作，遇到第一个错误即停止
func Run(ops []Operation, st *stack.OpData) error {
	for _, op := range ops {
		if err := op.Run(st); err != nil {
			return err
		}
	}
	return nil
}

// OpsEqual 结构化比较两个操作序列
func OpsEqual(a, b []Operation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !opEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func opEqual(a, b Operation) bool {
	switch x := a.(type) {
	case *PushDataOp:
		y, ok := b.(*PushDataOp)
		return ok && x.Code == y.Code && bytes.Equal(x.Data, y.Data)
	case *ReturnOp:
		y, ok := b.(*ReturnOp)
		return ok && bytes.Equal(x.Data, y.Data)
	case *IfElseOp:
		y, ok := b.(*IfElseOp)
		return ok && x.Code == y.Code && OpsEqual(x.Main, y.Main) && OpsEqual(x.Else, y.Else)
	case *CodeOp:
		y, ok := b.(*CodeOp)
		return ok && x.Code == y.Code
	}
	return false
}

func opsString(ops []Operation) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, op.String())
	}
	return strings.Join(parts, " ")
}
