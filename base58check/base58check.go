package base58check

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/base58"
	"github.com/treeforest/easytx/hashing"
)

const checksumSize = 4

var (
	ErrInvalidChecksum = errors.New("invalid checksum")
	ErrTooShort        = errors.New("decoded data too short for checksum")
)

// Encode 附加双 SHA-256 校验码后做 base58 编码
func Encode(payload []byte) string {
	return EncodeWith(base58.Base58, payload)
}

// Decode 解码并校验，返回去掉校验码后的数据
func Decode(s string) ([]byte, error) {
	return DecodeWith(base58.Base58, s)
}

// EncodeWith 使用指定的基数表编码（例如 base43）
func EncodeWith(e *base58.Encoder, payload []byte) string {
	checksum := hashing.Checksum(payload)
	encoded := make([]byte, 0, len(payload)+checksumSize)
	encoded = append(encoded, payload...)
	encoded = append(encoded, checksum[:]...)
	return e.Encode(encoded)
}

func DecodeWith(e *base58.Encoder, s string) ([]byte, error) {
	encodedChecksum, err := e.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(encodedChecksum) < checksumSize {
		return nil, errors.WithStack(ErrTooShort)
	}

	payload := encodedChecksum[:len(encodedChecksum)-checksumSize]
	checksum := encodedChecksum[len(encodedChecksum)-checksumSize:]

	// 执行两次 SHA-256,验证校验码是否正确
	expected := hashing.Checksum(payload)
	if !bytes.Equal(expected[:], checksum) {
		return nil, errors.WithStack(ErrInvalidChecksum)
	}
	return payload, nil
}

func IsValid(s string) bool {
	_, err := Decode(s)
	return err == nil
}
