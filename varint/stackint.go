package varint

import (
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
)

// 脚本中数据压栈的长度头，值与 OP_PUSHDATA1/2/4 一致
const (
	MaxDirectPush = 0x4b // 75，大于它才需要 OP_PUSHDATA1
	PushData1     = 0x4c
	PushData2     = 0x4d
	PushData4     = 0x4e
)

// StackInt 脚本内数据压栈的长度头
//
//	<= 75       1 byte (即直接压栈操作码本身)
//	<= 0xff     OP_PUSHDATA1 + uint8
//	<= 0xffff   OP_PUSHDATA2 + uint16
//	else        OP_PUSHDATA4 + uint32
type StackInt uint32

func (s StackInt) Size() int {
	switch {
	case s <= MaxDirectPush:
		return 1
	case s <= 0xff:
		return 2
	case s <= 0xffff:
		return 3
	default:
		return 5
	}
}

func (s StackInt) Bytes() []byte {
	w := stream.NewWriter()
	s.Serialize(w)
	return w.Bytes()
}

func (s StackInt) Serialize(w *stream.Writer) {
	switch {
	case s <= MaxDirectPush:
		_ = w.WriteByte(byte(s))
	case s <= 0xff:
		_ = w.WriteByte(PushData1)
		_ = w.WriteByte(byte(s))
	case s <= 0xffff:
		_ = w.WriteByte(PushData2)
		w.WriteUint16(uint16(s))
	default:
		_ = w.WriteByte(PushData4)
		w.WriteUint32(uint32(s))
	}
}

// ReadStackInt 读取长度头，非最短编码视为格式错误
func ReadStackInt(r *stream.Reader) (StackInt, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, errors.Wrap(ErrMalformedLength, "stack int: missing first byte")
	}

	switch {
	case first <= MaxDirectPush:
		return StackInt(first), nil
	case first == PushData1:
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(ErrMalformedLength, "stack int: OP_PUSHDATA1 without size")
		}
		if b <= MaxDirectPush {
			return 0, errors.Wrapf(ErrMalformedLength, "stack int: OP_PUSHDATA1 used for %d bytes", b)
		}
		return StackInt(b), nil
	case first == PushData2:
		u, err := r.ReadUint16()
		if err != nil {
			return 0, errors.Wrap(ErrMalformedLength, "stack int: OP_PUSHDATA2 without size")
		}
		if u <= 0xff {
			return 0, errors.Wrapf(ErrMalformedLength, "stack int: OP_PUSHDATA2 used for %d bytes", u)
		}
		return StackInt(u), nil
	case first == PushData4:
		u, err := r.ReadUint32()
		if err != nil {
			return 0, errors.Wrap(ErrMalformedLength, "stack int: OP_PUSHDATA4 without size")
		}
		if u <= 0xffff {
			return 0, errors.Wrapf(ErrMalformedLength, "stack int: OP_PUSHDATA4 used for %d bytes", u)
		}
		return StackInt(u), nil
	default:
		return 0, errors.Wrapf(ErrMalformedLength, "stack int: 0x%02x is not a push opcode", first)
	}
}
