package hashing

import (
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Hasher 哈希函数提供者
type Hasher interface {
	ComputeHash(data []byte) []byte
	HashByteSize() int
}

type (
	Sha1         struct{}
	Sha256       struct{}
	Ripemd160    struct{}
	Hash160      struct{} // RIPEMD160(SHA256(x))
	DoubleSha256 struct{} // SHA256(SHA256(x))，即 OP_HASH256
)

func (Sha1) ComputeHash(data []byte) []byte {
	h := sha1.Sum(data)
	return h[:]
}

func (Sha1) HashByteSize() int { return sha1.Size }

func (Sha256) ComputeHash(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

func (Sha256) HashByteSize() int { return sha256.Size }

func (Ripemd160) ComputeHash(data []byte) []byte {
	r := ripemd160.New()
	r.Write(data)
	return r.Sum(nil)
}

func (Ripemd160) HashByteSize() int { return ripemd160.Size }

func (Hash160) ComputeHash(data []byte) []byte {
	sha := sha256.Sum256(data)
	return Ripemd160{}.ComputeHash(sha[:])
}

func (Hash160) HashByteSize() int { return ripemd160.Size }

func (DoubleSha256) ComputeHash(data []byte) []byte {
	h := DoubleSum256(data)
	return h[:]
}

func (DoubleSha256) HashByteSize() int { return sha256.Size }

// DoubleSum256 两次 SHA-256
func DoubleSum256(data []byte) [32]byte {
	hash := sha256.Sum256(data)
	return sha256.Sum256(hash[:])
}

// Checksum 双 SHA-256 的前4个字节
func Checksum(data []byte) [4]byte {
	var sum [4]byte
	h := DoubleSum256(data)
	copy(sum[:], h[:4])
	return sum
}
