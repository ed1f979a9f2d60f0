package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// 网络配置
	Network string `yaml:"network"` // mainnet、testnet 或 regtest

	// 编解码配置
	MaxTxSize     int  `yaml:"max_tx_size"`    // 反序列化允许的最大交易字节数
	StrictNumbers bool `yaml:"strict_numbers"` // 执行脚本时数字必须是最短编码

	// 交易存储配置
	LevelDBPath        string  `yaml:"leveldb_path"`         // 交易数据库路径
	BloomCapacity      uint    `yaml:"bloom_capacity"`       // 布隆过滤器预估元素个数
	BloomFalsePositive float64 `yaml:"bloom_false_positive"` // 布隆过滤器误判率

	LogLevel string `yaml:"log_level"` // debug、info、warn、error
}

func DefaultConfig() *Config {
	return &Config{
		Network:            MainNet.Name,
		MaxTxSize:          DefaultMaxTxSize,
		StrictNumbers:      true,
		LevelDBPath:        "./txdb",
		BloomCapacity:      1000000,
		BloomFalsePositive: 0.001,
		LogLevel:           "info",
	}
}

func (c *Config) Unmarshal(b []byte) error {
	return yaml.Unmarshal(b, c)
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// NetParams 配置的网络参数
func (c *Config) NetParams() (*NetParams, error) {
	return ParseNetwork(c.Network)
}

// Load 读取配置文件，未填写的字段使用默认值
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	conf := DefaultConfig()
	if err = conf.Unmarshal(data); err != nil {
		return nil, errors.WithStack(err)
	}

	if _, err = conf.NetParams(); err != nil {
		return nil, err
	}
	if conf.MaxTxSize <= 0 {
		return nil, errors.Errorf("max_tx_size must be positive, got %d", conf.MaxTxSize)
	}

	return conf, nil
}
