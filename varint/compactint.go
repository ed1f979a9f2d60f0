package varint

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
)

var ErrMalformedLength = errors.New("malformed length")

// CompactInt 交易层使用的变长整数（数量、脚本长度）
//
//	<= 0xfc        1 byte
//	<= 0xffff      0xfd + uint16
//	<= 0xffffffff  0xfe + uint32
//	else           0xff + uint64
type CompactInt uint64

const (
	compactMarker16 = 0xfd
	compactMarker32 = 0xfe
	compactMarker64 = 0xff
)

// Size 编码后的字节数
func (c CompactInt) Size() int {
	switch {
	case c <= 0xfc:
		return 1
	case c <= 0xffff:
		return 3
	case c <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// Bytes 最短编码
func (c CompactInt) Bytes() []byte {
	w := stream.NewWriter()
	c.Serialize(w)
	return w.Bytes()
}

func (c CompactInt) Serialize(w *stream.Writer) {
	switch {
	case c <= 0xfc:
		_ = w.WriteByte(byte(c))
	case c <= 0xffff:
		_ = w.WriteByte(compactMarker16)
		w.WriteUint16(uint16(c))
	case c <= 0xffffffff:
		_ = w.WriteByte(compactMarker32)
		w.WriteUint32(uint32(c))
	default:
		_ = w.WriteByte(compactMarker64)
		w.WriteUint64(uint64(c))
	}
}

// ReadCompactInt 读取并校验为最短编码
func ReadCompactInt(r *stream.Reader) (CompactInt, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, errors.Wrap(ErrMalformedLength, "compact int: missing first byte")
	}

	var v uint64
	switch first {
	case compactMarker16:
		u, err := r.ReadUint16()
		if err != nil {
			return 0, errors.Wrap(ErrMalformedLength, "compact int: not enough bytes for uint16")
		}
		if u <= 0xfc {
			return 0, errors.Wrapf(ErrMalformedLength, "compact int: %d should be encoded in 1 byte", u)
		}
		v = uint64(u)
	case compactMarker32:
		u, err := r.ReadUint32()
		if err != nil {
			return 0, errors.Wrap(ErrMalformedLength, "compact int: not enough bytes for uint32")
		}
		if u <= 0xffff {
			return 0, errors.Wrapf(ErrMalformedLength, "compact int: %d should be encoded in 3 bytes", u)
		}
		v = uint64(u)
	case compactMarker64:
		u, err := r.ReadUint64()
		if err != nil {
			return 0, errors.Wrap(ErrMalformedLength, "compact int: not enough bytes for uint64")
		}
		if u <= 0xffffffff {
			return 0, errors.Wrapf(ErrMalformedLength, "compact int: %d should be encoded in 5 bytes", u)
		}
		v = u
	default:
		v = uint64(first)
	}
	return CompactInt(v), nil
}

// ReadLength 读取一个长度并确认剩余字节足够，用于长度前缀的数据块
func ReadLength(r *stream.Reader) (int, error) {
	c, err := ReadCompactInt(r)
	if err != nil {
		return 0, err
	}
	if uint64(c) > uint64(r.Remaining()) {
		return 0, errors.Wrapf(ErrMalformedLength, "length %d exceeds remaining %d bytes", c, r.Remaining())
	}
	return int(c), nil
}

func (c CompactInt) String() string {
	return fmt.Sprintf("%d (0x%x)", uint64(c), c.Bytes())
}
