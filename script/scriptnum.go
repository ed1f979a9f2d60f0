package script

import (
	"github.com/pkg/errors"
)

const (
	// MaxScriptNumLen 算术运算操作数的最大字节数
	MaxScriptNumLen = 4
	// LockTimeNumLen CLTV/CSV 操作数允许5个字节
	LockTimeNumLen = 5

	maxNumLen = 8
)

// EncodeScriptNum 小端符号-数值编码，0 编码为空，符号位在最后一个字节的最高位
func EncodeScriptNum(n int64) []byte {
	if n == 0 {
		return nil
	}

	neg := n < 0
	abs := uint64(n)
	if neg {
		abs = uint64(-n)
	}

	out := make([]byte, 0, 9)
	for abs > 0 {
		out = append(out, byte(abs&0xff))
		abs >>= 8
	}

	// 最高位已被占用时追加一个字节存放符号
	if out[len(out)-1]&0x80 != 0 {
		if neg {
			out = append(out, 0x80)
		} else {
			out = append(out, 0x00)
		}
	} else if neg {
		out[len(out)-1] |= 0x80
	}
	return out
}

// DecodeScriptNum 解码脚本数字，strict 时拒绝多余的填充字节
func DecodeScriptNum(b []byte, strict bool, maxLen int) (int64, error) {
	if maxLen < 1 || maxLen > maxNumLen {
		panic("script: number length must be in [1, 8]")
	}
	if len(b) > maxLen {
		return 0, errors.Wrapf(ErrInvalidNumericEncoding, "%d bytes exceeds %d", len(b), maxLen)
	}
	if len(b) == 0 {
		return 0, nil
	}
	if strict && !isMinimalNum(b) {
		return 0, errors.Wrapf(ErrInvalidNumericEncoding, "%x is not minimally encoded", b)
	}

	var v uint64
	for i, c := range b {
		v |= uint64(c) << uint(8*i)
	}
	last := b[len(b)-1]
	if last&0x80 != 0 {
		v &^= uint64(0x80) << uint(8*(len(b)-1))
		return -int64(v), nil
	}
	return int64(v), nil
}

func isMinimalNum(b []byte) bool {
	last := b[len(b)-1]
	if last&0x7f != 0 {
		return true
	}
	// 最后一个字节只有符号位（或为0），仅当前一个字节最高位被占用时才是必要的
	return len(b) > 1 && b[len(b)-2]&0x80 != 0
}

// IsTrue 非0且不是负0即为真
func IsTrue(b []byte) bool {
	for i, c := range b {
		if c != 0 {
			if i == len(b)-1 && c == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

func encodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return nil
}
