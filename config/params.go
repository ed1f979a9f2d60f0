package config

import (
	"strings"

	"github.com/pkg/errors"
)

// DefaultMaxTxSize 一个区块的大小
const DefaultMaxTxSize = 4000000

var ErrUnknownNetwork = errors.New("unknown network")

// NetParams 地址编码相关的网络参数
type NetParams struct {
	Name         string
	P2PKHVersion byte
	P2SHVersion  byte
	Bech32HRP    string
}

var (
	MainNet = &NetParams{Name: "mainnet", P2PKHVersion: 0, P2SHVersion: 5, Bech32HRP: "bc"}
	TestNet = &NetParams{Name: "testnet", P2PKHVersion: 111, P2SHVersion: 196, Bech32HRP: "tb"}
	RegTest = &NetParams{Name: "regtest", P2PKHVersion: 0, P2SHVersion: 5, Bech32HRP: "bcrt"}
)

// Networks 按匹配优先级排列，mainnet 与 regtest 的版本字节相同时优先识别为 mainnet
var Networks = []*NetParams{MainNet, TestNet, RegTest}

func ParseNetwork(name string) (*NetParams, error) {
	switch strings.ToLower(name) {
	case "mainnet", "main", "":
		return MainNet, nil
	case "testnet", "testnet3", "test":
		return TestNet, nil
	case "regtest":
		return RegTest, nil
	}
	return nil, errors.Wrap(ErrUnknownNetwork, name)
}

func (p *NetParams) String() string {
	return p.Name
}
