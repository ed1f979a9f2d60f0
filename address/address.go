package address

import (
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/base58check"
	"github.com/treeforest/easytx/bech32"
	"github.com/treeforest/easytx/config"
	"github.com/treeforest/easytx/hashing"
	log "github.com/treeforest/logger"
)

var ErrInvalidAddress = errors.New("invalid address")

// Type 地址对应的输出脚本类型
type Type int

const (
	Unknown Type = iota
	P2PKH
	P2SH
	P2WPKH
	P2WSH
)

func (t Type) String() string {
	switch t {
	case P2PKH:
		return "P2PKH"
	case P2SH:
		return "P2SH"
	case P2WPKH:
		return "P2WPKH"
	case P2WSH:
		return "P2WSH"
	}
	return "Unknown"
}

// HashSize 该类型地址携带的哈希长度
func (t Type) HashSize() int {
	switch t {
	case P2PKH, P2SH, P2WPKH:
		return hashing.Hash160{}.HashByteSize()
	case P2WSH:
		return hashing.Sha256{}.HashByteSize()
	}
	return 0
}

// Address 解码后的地址
type Address struct {
	Type Type
	Hash []byte
	Net  *config.NetParams
}

func (a *Address) String() string {
	s, err := Encode(a.Type, a.Hash, a.Net)
	if err != nil {
		return ""
	}
	return s
}

const witnessVersion = 0

// Encode 按类型选择 Base58Check 或 Bech32 编码
func Encode(t Type, hash []byte, net *config.NetParams) (string, error) {
	if t == Unknown {
		return "", errors.Wrap(ErrInvalidAddress, "unknown address type")
	}
	if len(hash) != t.HashSize() {
		return "", errors.Wrapf(ErrInvalidAddress, "%s needs a %d-byte hash, got %d", t, t.HashSize(), len(hash))
	}

	switch t {
	case P2PKH:
		return encodeBase58(net.P2PKHVersion, hash), nil
	case P2SH:
		return encodeBase58(net.P2SHVersion, hash), nil
	default:
		data, err := bech32.ConvertBits(hash, 8, 5, true)
		if err != nil {
			return "", err
		}
		return bech32.Encode(net.Bech32HRP, append([]byte{witnessVersion}, data...))
	}
}

func EncodeP2PKH(hash []byte, net *config.NetParams) (string, error) {
	return Encode(P2PKH, hash, net)
}

func EncodeP2SH(hash []byte, net *config.NetParams) (string, error) {
	return Encode(P2SH, hash, net)
}

func EncodeP2WPKH(hash []byte, net *config.NetParams) (string, error) {
	return Encode(P2WPKH, hash, net)
}

func EncodeP2WSH(hash []byte, net *config.NetParams) (string, error) {
	return Encode(P2WSH, hash, net)
}

func encodeBase58(version byte, hash []byte) string {
	payload := make([]byte, 0, 1+len(hash))
	payload = append(payload, version)
	payload = append(payload, hash...)
	return base58check.Encode(payload)
}

// Decode 在所有已知网络中识别地址，任何不匹配都返回 ErrInvalidAddress
func Decode(s string) (*Address, error) {
	return decode(s, config.Networks)
}

// DecodeFor 只接受指定网络的地址
func DecodeFor(s string, net *config.NetParams) (*Address, error) {
	return decode(s, []*config.NetParams{net})
}

// TryDecode 不返回错误的解码形式
func TryDecode(s string) (*Address, bool) {
	a, err := Decode(s)
	if err != nil {
		log.Debugf("reject address %q: %v", s, err)
		return nil, false
	}
	return a, true
}

func IsValid(s string) bool {
	_, err := Decode(s)
	return err == nil
}

func decode(s string, nets []*config.NetParams) (*Address, error) {
	if payload, err := base58check.Decode(s); err == nil {
		return decodeBase58(payload, nets)
	}

	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q is neither base58check nor bech32: %v", s, err)
	}
	return decodeBech32(hrp, data, nets)
}

// decodeBase58 版本字节必须是某个网络的 P2PKH 或 P2SH 版本
func decodeBase58(payload []byte, nets []*config.NetParams) (*Address, error) {
	if len(payload) != 1+P2PKH.HashSize() {
		return nil, errors.Wrapf(ErrInvalidAddress, "base58 payload of %d bytes", len(payload))
	}

	version, hash := payload[0], payload[1:]
	for _, net := range nets {
		switch version {
		case net.P2PKHVersion:
			return &Address{Type: P2PKH, Hash: hash, Net: net}, nil
		case net.P2SHVersion:
			return &Address{Type: P2SH, Hash: hash, Net: net}, nil
		}
	}
	return nil, errors.Wrapf(ErrInvalidAddress, "unknown version byte %d", version)
}

func decodeBech32(hrp string, data []byte, nets []*config.NetParams) (*Address, error) {
	var net *config.NetParams
	for _, n := range nets {
		if n.Bech32HRP == hrp {
			net = n
			break
		}
	}
	if net == nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "unknown human-readable part %q", hrp)
	}

	if len(data) == 0 || data[0] != witnessVersion {
		return nil, errors.Wrap(ErrInvalidAddress, "unsupported witness version")
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "witness program: %v", err)
	}

	switch len(program) {
	case P2WPKH.HashSize():
		return &Address{Type: P2WPKH, Hash: program, Net: net}, nil
	case P2WSH.HashSize():
		return &Address{Type: P2WSH, Hash: program, Net: net}, nil
	}
	return nil, errors.Wrapf(ErrInvalidAddress, "witness program of %d bytes", len(program))
}
