package base58

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
)

const (
	// base58 编码基数表，去掉了容易混淆的 0 O I l
	Base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	// base43 编码基数表（Electrum 在二维码中使用）
	Base43Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ$*+-./:"
)

var ErrInvalidCharacter = errors.New("invalid character")

var (
	Base58 = NewEncoder(Base58Alphabet)
	Base43 = NewEncoder(Base43Alphabet)
)

// Encoder 以任意基数表做大整数进制转换，前导0字节编码为基数表首字符
type Encoder struct {
	alphabet string
	radix    *big.Int
	indexes  [256]int
	logBase  float64 // log(256)/log(radix)，用于估算编码长度
}

func NewEncoder(alphabet string) *Encoder {
	if len(alphabet) < 2 || len(alphabet) > 255 {
		panic("base58: alphabet length must be in [2, 255]")
	}
	e := &Encoder{
		alphabet: alphabet,
		radix:    big.NewInt(int64(len(alphabet))),
		logBase:  math.Log(256) / math.Log(float64(len(alphabet))),
	}
	for i := range e.indexes {
		e.indexes[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		if e.indexes[alphabet[i]] != -1 {
			panic("base58: duplicate character in alphabet")
		}
		e.indexes[alphabet[i]] = i
	}
	return e
}

func (e *Encoder) Alphabet() string {
	return e.alphabet
}

// Encode 编码
func (e *Encoder) Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	var (
		x    = new(big.Int).SetBytes(b[zeros:])
		zero = big.NewInt(0)
		mod  = new(big.Int)
		dst  = make([]byte, 0, zeros+int(float64(len(b)-zeros)*e.logBase)+1)
	)
	for x.Cmp(zero) != 0 {
		x.DivMod(x, e.radix, mod) // 除余法
		dst = append(dst, e.alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		dst = append(dst, e.alphabet[0])
	}

	reverse(dst)
	return string(dst)
}

// Decode 解码，遇到基数表以外的字符返回 ErrInvalidCharacter
func (e *Encoder) Decode(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == e.alphabet[0] {
		zeros++
	}

	r := big.NewInt(0)
	for i := zeros; i < len(s); i++ {
		idx := e.indexes[s[i]]
		if idx < 0 {
			return nil, errors.Wrapf(ErrInvalidCharacter, "%q at position %d", s[i], i)
		}
		r.Mul(r, e.radix)
		r.Add(r, big.NewInt(int64(idx)))
	}

	tail := r.Bytes()
	out := make([]byte, zeros+len(tail))
	copy(out[zeros:], tail)
	return out, nil
}

// IsValid 只检查字符集
func (e *Encoder) IsValid(s string) bool {
	for i := 0; i < len(s); i++ {
		if e.indexes[s[i]] < 0 {
			return false
		}
	}
	return true
}

func reverse(b []byte) {
	i, j := 0, len(b)-1
	for i < j {
		b[i], b[j] = b[j], b[i]
		i++
		j--
	}
}
