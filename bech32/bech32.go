package bech32

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

	checksumLength = 6
	maxLength      = 90
	maxHRPLength   = 83
)

var (
	ErrInvalidCharacter = errors.New("invalid character")
	ErrInvalidChecksum  = errors.New("invalid checksum")
	ErrMixedCase        = errors.New("mixed case")
	ErrInvalidHRP       = errors.New("invalid human-readable part")
	ErrInvalidLength    = errors.New("invalid length")
	ErrInvalidPadding   = errors.New("invalid padding")
)

var generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

var charsetRev [128]int8

func init() {
	for i := range charsetRev {
		charsetRev[i] = -1
	}
	for i := 0; i < len(charset); i++ {
		charsetRev[charset[i]] = int8(i)
	}
}

// polymod BCH 校验码在 GF(32) 上的多项式取模
func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

// hrpExpand 高3位、分隔0、低5位
func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func verifyChecksum(hrp string, data []byte) bool {
	values := append(hrpExpand(hrp), data...)
	return polymod(values) == 1
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, make([]byte, checksumLength)...)
	mod := polymod(values) ^ 1
	out := make([]byte, checksumLength)
	for i := 0; i < checksumLength; i++ {
		out[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return out
}

func checkHRP(hrp string) error {
	if len(hrp) < 1 || len(hrp) > maxHRPLength {
		return errors.Wrapf(ErrInvalidHRP, "length %d", len(hrp))
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return errors.Wrapf(ErrInvalidHRP, "character 0x%02x", hrp[i])
		}
	}
	return nil
}

// Encode 将5位分组的数据编码为 bech32 字符串
func Encode(hrp string, data []byte) (string, error) {
	if err := checkHRP(hrp); err != nil {
		return "", err
	}
	if strings.ToLower(hrp) != hrp && strings.ToUpper(hrp) != hrp {
		return "", errors.WithStack(ErrMixedCase)
	}
	hrp = strings.ToLower(hrp)
	if len(hrp)+1+len(data)+checksumLength > maxLength {
		return "", errors.Wrapf(ErrInvalidLength, "%d data words", len(data))
	}

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + checksumLength)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, d := range data {
		if d >= 32 {
			return "", errors.Wrapf(ErrInvalidCharacter, "data word %d is not 5-bit", d)
		}
		sb.WriteByte(charset[d])
	}
	for _, d := range createChecksum(hrp, data) {
		sb.WriteByte(charset[d])
	}
	return sb.String(), nil
}

// Decode 解码并校验，返回小写的 hrp 和去掉校验码的5位分组数据
func Decode(s string) (string, []byte, error) {
	if len(s) < 8 || len(s) > maxLength {
		return "", nil, errors.Wrapf(ErrInvalidLength, "%d characters", len(s))
	}
	lower := strings.ToLower(s)
	if lower != s && strings.ToUpper(s) != s {
		return "", nil, errors.WithStack(ErrMixedCase)
	}
	s = lower

	pos := strings.LastIndexByte(s, '1')
	if pos < 1 || pos+checksumLength+1 > len(s) {
		return "", nil, errors.Wrapf(ErrInvalidLength, "separator at %d", pos)
	}
	hrp := s[:pos]
	if err := checkHRP(hrp); err != nil {
		return "", nil, err
	}

	data := make([]byte, 0, len(s)-pos-1)
	for i := pos + 1; i < len(s); i++ {
		c := s[i]
		if c >= 128 || charsetRev[c] < 0 {
			return "", nil, errors.Wrapf(ErrInvalidCharacter, "%q at position %d", c, i)
		}
		data = append(data, byte(charsetRev[c]))
	}
	if !verifyChecksum(hrp, data) {
		return "", nil, errors.WithStack(ErrInvalidChecksum)
	}
	return hrp, data[:len(data)-checksumLength], nil
}

func IsValid(s string) bool {
	_, _, err := Decode(s)
	return err == nil
}

// ConvertBits 在不同位宽的分组之间转换（8->5 编码时 pad=true，5->8 解码时 pad=false）
func ConvertBits(data []byte, fromBits, toBits uint8, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		panic("bech32: bit groups must be in [1, 8]")
	}

	var (
		acc    uint32
		bits   uint8
		maxV   = uint32(1)<<toBits - 1
		maxAcc = uint32(1)<<(fromBits+toBits-1) - 1
		out    = make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	)
	for _, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, errors.Wrapf(ErrInvalidCharacter, "value %d exceeds %d bits", b, fromBits)
		}
		acc = (acc<<fromBits | uint32(b)) & maxAcc
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxV))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxV))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxV != 0 {
		return nil, errors.WithStack(ErrInvalidPadding)
	}
	return out, nil
}
